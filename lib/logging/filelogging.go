package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/rs/zerolog"
	"github.com/ziflex/lecho/v3"
)

// Logger writes JSON logs to STDOUT, or to a dated file next to logFilePath when one is configured.
func Logger(logFilePath string) *lecho.Logger {
	var target io.Writer = os.Stdout
	if logFilePath != "" {
		file, err := GetLoggingFile(logFilePath, time.Now())
		if err != nil {
			os.Stderr.WriteString("failed to create logging file: " + err.Error() + "\n")
		} else {
			target = file
		}
	}

	return lecho.From(
		zerolog.New(target).With().Timestamp().Logger(),
		lecho.WithLevel(log.DEBUG),
	)
}

// GetLoggingFile opens the log file for the day of now, appending when it already exists.
func GetLoggingFile(path string, now time.Time) (*os.File, error) {
	extension := filepath.Ext(path)
	if extension != "" {
		path = strings.TrimSuffix(path, extension) + now.Format("-2006-01-02") + extension
	} else {
		path = path + now.Format("-2006-01-02") + ".log"
	}

	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
}
