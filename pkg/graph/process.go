package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OFFIS-RIT/textgraph/internal/metrics"
	"github.com/OFFIS-RIT/textgraph/pkg/ai"
	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrEmptyText is returned when there is nothing to extract from.
var ErrEmptyText = errors.New("graph: input text is empty")

// GenerateResult is the outcome of one document.
type GenerateResult struct {
	ID      string
	Graph   *common.Graph
	Chunks  int
	Notices []string
	Metrics ai.ModelMetrics
}

// GenerateGraph chunks text, extracts a fragment per chunk and assembles
// them into one graph. When documentName is set the retained nodes carry
// provenance properties. Extraction failures abort without a partial graph.
func (g *GraphClient) GenerateGraph(ctx context.Context, text, documentName string) (*GenerateResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create run id: %w", err)
	}

	start := time.Now()
	chunks, err := g.chunker.Split(text)
	if err != nil {
		return nil, err
	}
	if chunks.Capped {
		metrics.ChunkCapTriggered.Inc()
	}
	logger.Info("[Graph] extracting graph", "run", id, "document", documentName, "chunks", len(chunks.Chunks))

	before := g.aiClient.GetMetrics()
	fragments, err := g.extractor.Extract(ctx, chunks.Chunks)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	after := g.aiClient.GetMetrics()

	assembled := AssembleGraph(fragments, AssembleOptions{
		DocumentName: documentName,
		Now:          g.now,
	})

	used := metricsDelta(before, after)
	logger.Info("[Graph] graph assembled",
		"run", id,
		"document", documentName,
		"nodes", len(assembled.Nodes),
		"relationships", len(assembled.Relationships),
		"duration", time.Since(start).String(),
		"input_tokens", used.InputTokens,
		"output_tokens", used.OutputTokens,
	)

	return &GenerateResult{
		ID:      id,
		Graph:   assembled,
		Chunks:  len(chunks.Chunks),
		Notices: chunks.Notices,
		Metrics: used,
	}, nil
}

// metricsDelta is an approximation when documents run concurrently on a
// shared client, since the client accumulates across requests.
func metricsDelta(before, after ai.ModelMetrics) ai.ModelMetrics {
	d := ai.ModelMetrics{
		Requests:     after.Requests - before.Requests,
		InputTokens:  after.InputTokens - before.InputTokens,
		OutputTokens: after.OutputTokens - before.OutputTokens,
		TotalTokens:  after.TotalTokens - before.TotalTokens,
		DurationMs:   after.DurationMs - before.DurationMs,
	}
	if d.DurationMs > 0 {
		d.TokenPerSecond = float32(float64(d.TotalTokens) * 1000.0 / float64(d.DurationMs))
	}
	return d
}
