package middleware

import (
	"github.com/OFFIS-RIT/textgraph/internal/setup"

	"github.com/labstack/echo/v4"
)

type AppContext struct {
	echo.Context
	App *setup.App
}

// AppContextMiddleware makes app available to handlers through AppContext.
func AppContextMiddleware(app *setup.App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}

// GetApp returns the App of a request handled behind AppContextMiddleware.
func GetApp(c echo.Context) *setup.App {
	if cc, ok := c.(*AppContext); ok {
		return cc.App
	}
	return nil
}
