package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/OFFIS-RIT/textgraph/internal/pipeline"
	"github.com/OFFIS-RIT/textgraph/internal/server/middleware"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"
	"github.com/OFFIS-RIT/textgraph/pkg/store"

	"github.com/labstack/echo/v4"
)

// CreateAccumulatedGraphHandler renders everything in the graph store.
func CreateAccumulatedGraphHandler(c echo.Context) error {
	type accumulatedResponse struct {
		Message string                       `json:"message"`
		Result  *pipeline.AccumulatedOutcome `json:"result,omitempty"`
	}

	app := middleware.GetApp(c)
	out, err := app.Pipeline.Accumulated(c.Request().Context())
	if err != nil {
		if errors.Is(err, store.ErrNotConfigured) {
			return c.JSON(http.StatusServiceUnavailable, accumulatedResponse{
				Message: "No graph store is configured",
			})
		}
		logger.Error("Failed to build accumulated graph", "err", err)
		return c.JSON(http.StatusInternalServerError, accumulatedResponse{
			Message: fmt.Sprintf("Failed to build accumulated graph: %v", err),
		})
	}

	return c.JSON(http.StatusOK, accumulatedResponse{
		Message: fmt.Sprintf("Accumulated graph has %d nodes and %d relationships", len(out.Graph.Nodes), len(out.Graph.Relationships)),
		Result:  out,
	})
}
