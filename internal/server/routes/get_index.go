package routes

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed static/index.html
var indexPage []byte

func GetIndexHandler(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexPage)
}
