package graph

import (
	"time"

	"github.com/OFFIS-RIT/textgraph/pkg/ai"
	"github.com/OFFIS-RIT/textgraph/pkg/schema"
)

// GraphClient turns text into an assembled knowledge graph. It owns the
// chunking and extraction settings and is safe for concurrent use.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	aiClient  ai.GraphAIClient
	chunker   *Chunker
	extractor *Extractor
	now       func() time.Time
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// ChunkSize, ChunkOverlap and MaxChunks configure the chunker (characters).
// ParallelAiRequests bounds the concurrent model calls of one document.
// StrictMode drops nodes and relationships that Schema does not allow.
type NewGraphClientParams struct {
	AIClient ai.GraphAIClient

	TokenEncoder string
	ChunkSize    int
	ChunkOverlap int
	MaxChunks    int

	Schema             *schema.Schema
	StrictMode         bool
	ParallelAiRequests int
	ExtractionModel    string
	Temperature        float64

	// Now stamps created_at; defaults to time.Now.
	Now func() time.Time
}

// NewGraphClient creates and returns a new GraphClient.
//
// Example:
//
//	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
//		AIClient:           aiClient,
//		TokenEncoder:       "o200k_base",
//		ChunkSize:          1500,
//		ChunkOverlap:       200,
//		MaxChunks:          10,
//		Schema:             schema.Default(),
//		StrictMode:         true,
//		ParallelAiRequests: 4,
//	})
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	chunker, err := NewChunker(ChunkerParams{
		ChunkSize:    params.ChunkSize,
		ChunkOverlap: params.ChunkOverlap,
		MaxChunks:    params.MaxChunks,
		TokenEncoder: params.TokenEncoder,
	})
	if err != nil {
		return nil, err
	}

	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &GraphClient{
		aiClient: params.AIClient,
		chunker:  chunker,
		extractor: NewExtractor(ExtractorParams{
			Client:      params.AIClient,
			Schema:      params.Schema,
			Strict:      params.StrictMode,
			Parallel:    params.ParallelAiRequests,
			Model:       params.ExtractionModel,
			Temperature: params.Temperature,
		}),
		now: now,
	}, nil
}

// Schema returns the extraction schema in use.
func (g *GraphClient) Schema() *schema.Schema {
	return g.extractor.Schema()
}
