package tokens

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AdminTokenMiddleware guards admin endpoints with a static bearer token. Without a
// configured token admin endpoints are not registered at all.
func AdminTokenMiddleware(token string) echo.MiddlewareFunc {
	return middleware.KeyAuth(func(auth string, c echo.Context) (bool, error) {
		return token != "" && auth == token, nil
	})
}
