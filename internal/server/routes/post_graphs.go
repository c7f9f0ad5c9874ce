package routes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/textgraph/internal/pipeline"
	"github.com/OFFIS-RIT/textgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/textgraph/pkg/graph"
	"github.com/OFFIS-RIT/textgraph/pkg/loader"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// maxUploadSize caps uploaded text files.
const maxUploadSize = 5 << 20

type graphResponse struct {
	Message string                    `json:"message"`
	Result  *pipeline.GenerateOutcome `json:"result,omitempty"`
}

// CreateGraphHandler generates a graph from inline text, an uploaded .txt
// file, a URL or an S3 object key. Send exactly one of them.
func CreateGraphHandler(c echo.Context) error {
	type createGraphBody struct {
		Text  string `form:"text" json:"text"`
		URL   string `form:"url" json:"url" validate:"omitempty,url"`
		Key   string `form:"key" json:"key"`
		Name  string `form:"name" json:"name" validate:"max=255"`
		Store bool   `form:"store" json:"store"`
	}

	data := new(createGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, graphResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, graphResponse{
			Message: "Invalid request body",
		})
	}

	if file, err := c.FormFile("file"); err == nil {
		if !strings.EqualFold(filepath.Ext(file.Filename), ".txt") {
			return c.JSON(http.StatusBadRequest, graphResponse{
				Message: "Only .txt files are supported",
			})
		}
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, graphResponse{
				Message: "Failed to read uploaded file",
			})
		}
		defer src.Close()

		b, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
		if err != nil {
			return c.JSON(http.StatusBadRequest, graphResponse{
				Message: "Failed to read uploaded file",
			})
		}
		if len(b) > maxUploadSize {
			return c.JSON(http.StatusBadRequest, graphResponse{
				Message: fmt.Sprintf("File is too large, the limit is %d MB", maxUploadSize>>20),
			})
		}
		data.Text = string(b)
		if data.Name == "" {
			data.Name = file.Filename
		}
	}

	inputs := 0
	for _, v := range []string{data.Text, data.URL, data.Key} {
		if v != "" {
			inputs++
		}
	}
	switch inputs {
	case 0:
		return c.JSON(http.StatusBadRequest, graphResponse{
			Message: "Provide text, a .txt file, a url or an S3 key",
		})
	case 1:
	default:
		return c.JSON(http.StatusBadRequest, graphResponse{
			Message: "Provide only one input",
		})
	}

	app := middleware.GetApp(c)
	doc, err := app.Document(data.Name, data.Text, data.URL, data.Key)
	if err != nil {
		return c.JSON(http.StatusBadRequest, graphResponse{
			Message: err.Error(),
		})
	}

	out, err := app.Pipeline.Generate(c.Request().Context(), pipeline.GenerateRequest{
		Document: doc,
		Store:    data.Store,
	})
	if err != nil {
		if errors.Is(err, graph.ErrEmptyText) || errors.Is(err, loader.ErrNotUTF8) {
			return c.JSON(http.StatusBadRequest, graphResponse{
				Message: "Please provide some non-empty UTF-8 text",
			})
		}
		logger.Error("Failed to generate graph", "document", doc.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, graphResponse{
			Message: fmt.Sprintf("Failed to generate graph: %v", err),
		})
	}

	return c.JSON(http.StatusOK, graphResponse{
		Message: fmt.Sprintf("Generated a graph with %d nodes and %d relationships", len(out.Graph.Nodes), len(out.Graph.Relationships)),
		Result:  out,
	})
}
