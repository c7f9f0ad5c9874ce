package routes

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/OFFIS-RIT/textgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"
	"github.com/OFFIS-RIT/textgraph/pkg/render"

	"github.com/labstack/echo/v4"
)

func GetLatestGraphHandler(c echo.Context) error {
	return servePage(c, render.AssembledFileName, "No graph has been generated yet")
}

func GetAccumulatedGraphHandler(c echo.Context) error {
	return servePage(c, render.AccumulatedFileName, "No accumulated graph has been built yet")
}

func servePage(c echo.Context, name, missing string) error {
	page, err := middleware.GetApp(c).Pipeline.ReadPage(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": missing})
		}
		logger.Error("Failed to read page", "name", name, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
	return c.HTMLBlob(http.StatusOK, page)
}

func GetSchemaHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.GetApp(c).Schema)
}
