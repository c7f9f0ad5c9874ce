// Package metrics holds the Prometheus collectors of the pipeline. They are
// registered on the default registry and served by the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerateRequests counts graph generation runs by result.
	GenerateRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textgraph_generate_requests_total",
		Help: "Total graph generation requests by result",
	}, []string{"result"})

	// ChunksExtracted counts chunks sent to the extraction model.
	ChunksExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "textgraph_chunks_extracted_total",
		Help: "Total text chunks sent to extraction",
	})

	// ChunkCapTriggered counts inputs that exceeded the chunk limit.
	ChunkCapTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "textgraph_chunk_cap_triggered_total",
		Help: "Total inputs truncated by the chunk limit",
	})

	// ExtractionDuration tracks the latency of a whole extraction batch.
	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "textgraph_extraction_duration_seconds",
		Help:    "Duration of one extraction batch in seconds",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4m
	})

	// SkippedItems counts nodes and relationships dropped by a stage.
	SkippedItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textgraph_skipped_items_total",
		Help: "Nodes and relationships skipped by stage and kind",
	}, []string{"stage", "kind"})

	// StoreOperations counts durable store calls by backend, operation and result.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textgraph_store_operations_total",
		Help: "Durable store operations by backend, operation and result",
	}, []string{"backend", "operation", "result"})
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)
