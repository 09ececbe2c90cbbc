package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/getAlby/invoiceflow/db/migrations"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/migrate"
	sqltrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/database/sql"
)

const serviceName = "invoiceflow"

func Open(config *service.Config) (*bun.DB, error) {
	dsn := config.DatabaseUri
	if !isPostgresDSN(dsn) {
		return nil, fmt.Errorf("Invalid database connection string %s, only (postgres|postgresql|unix):// is supported", dsn)
	}

	var dbConn *sql.DB
	//if Datadog is configured, send sql traces there
	if config.DatadogAgentUrl != "" {
		sqltrace.Register("postgres", pgdriver.Driver{}, sqltrace.WithServiceName(serviceName))
		dbConn = sqltrace.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	} else {
		dbConn = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	}
	db := bun.NewDB(dbConn, pgdialect.New())
	db.SetMaxOpenConns(config.DatabaseMaxConns)
	db.SetMaxIdleConns(config.DatabaseMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(config.DatabaseConnMaxLifetime) * time.Second)

	db.AddQueryHook(bundebug.NewQueryHook(
		// disable the hook
		bundebug.WithEnabled(false),
		// BUNDEBUG=1 logs failed queries
		// BUNDEBUG=2 logs all queries
		bundebug.FromEnv("BUNDEBUG"),
	))

	return db, nil
}

func isPostgresDSN(dsn string) bool {
	for _, scheme := range []string{"postgres://", "postgresql://", "unix://"} {
		if strings.HasPrefix(dsn, scheme) {
			return true
		}
	}
	return false
}

// Migrate brings the schema up to date and returns the migrations applied by this run.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to init migrations: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return group, nil
}
