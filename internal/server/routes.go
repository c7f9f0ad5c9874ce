package server

import (
	"github.com/OFFIS-RIT/textgraph/internal/server/routes"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Web UI
	e.GET("/", routes.GetIndexHandler)

	apiRoutes := e.Group("/api")

	apiRoutes.GET("/schema", routes.GetSchemaHandler)

	// Graph routes
	apiRoutes.POST("/graphs", routes.CreateGraphHandler)
	apiRoutes.GET("/graphs/latest", routes.GetLatestGraphHandler)
	apiRoutes.POST("/graphs/accumulated", routes.CreateAccumulatedGraphHandler)
	apiRoutes.GET("/graphs/accumulated", routes.GetAccumulatedGraphHandler)
}
