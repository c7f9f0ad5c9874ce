package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/textgraph/internal/pipeline"
	"github.com/OFFIS-RIT/textgraph/internal/storage"
	"github.com/OFFIS-RIT/textgraph/pkg/ai"
	oai "github.com/OFFIS-RIT/textgraph/pkg/ai/ollama"
	gai "github.com/OFFIS-RIT/textgraph/pkg/ai/openai"
	"github.com/OFFIS-RIT/textgraph/pkg/graph"
	"github.com/OFFIS-RIT/textgraph/pkg/loader"
	s3loader "github.com/OFFIS-RIT/textgraph/pkg/loader/s3"
	"github.com/OFFIS-RIT/textgraph/pkg/loader/web"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"
	"github.com/OFFIS-RIT/textgraph/pkg/schema"
	"github.com/OFFIS-RIT/textgraph/pkg/store"
	"github.com/OFFIS-RIT/textgraph/pkg/store/neo4j"
	graphstorage "github.com/OFFIS-RIT/textgraph/pkg/store/pgx"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewAIClient builds the extraction client selected by AIAdapter.
func NewAIClient(cfg Config) (ai.GraphAIClient, error) {
	switch strings.ToLower(cfg.AIAdapter) {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			ExtractionModel:       cfg.ExtractionModel,
			TokenEncoder:          cfg.TokenEncoder,
			BaseURL:               cfg.ChatURL,
			ApiKey:                cfg.ChatKey,
			MaxConcurrentRequests: int64(max(cfg.ParallelRequests, 1)),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return client, nil
	case "", "openai", "openrouter":
		if cfg.ChatKey == "" {
			logger.Warn("[Setup] no API key set, extraction requests will fail", "adapter", cfg.AIAdapter)
		}
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			ExtractionModel:  cfg.ExtractionModel,
			StructuredOutput: cfg.StructuredOutput,
			ChatURL:          cfg.ChatURL,
			ChatKey:          cfg.ChatKey,
		}), nil
	default:
		return nil, fmt.Errorf("unknown AI_ADAPTER %q", cfg.AIAdapter)
	}
}

// NewGraphClient builds the extraction pipeline around aiClient.
func NewGraphClient(cfg Config, aiClient ai.GraphAIClient) (*graph.GraphClient, error) {
	s, err := schema.Load(cfg.Schema)
	if err != nil {
		return nil, err
	}
	return graph.NewGraphClient(graph.NewGraphClientParams{
		AIClient:           aiClient,
		TokenEncoder:       cfg.TokenEncoder,
		ChunkSize:          cfg.ChunkSize,
		ChunkOverlap:       cfg.ChunkOverlap,
		MaxChunks:          cfg.MaxChunks,
		Schema:             s,
		StrictMode:         cfg.StrictMode,
		ParallelAiRequests: cfg.ParallelRequests,
		ExtractionModel:    cfg.ExtractionModel,
		Temperature:        cfg.Temperature,
	})
}

// NewStoreManager returns a Manager for the configured backend. Nothing is
// opened until the first store operation.
func NewStoreManager(cfg Config) (*store.Manager, error) {
	switch strings.ToLower(cfg.StoreAdapter) {
	case "neo4j":
		return store.NewManager("neo4j", func(ctx context.Context) (store.GraphStore, error) {
			s, err := neo4j.NewGraphNeo4jStorage(ctx, neo4j.Config{
				URI:      cfg.Neo4jURI,
				Username: cfg.Neo4jUsername,
				Password: cfg.Neo4jPassword,
				Database: cfg.Neo4jDatabase,
			},
				neo4j.WithBaseEntityLabel(cfg.BaseEntityLabel),
				neo4j.WithIncludeSource(cfg.IncludeSource),
			)
			if err != nil {
				return nil, err
			}
			return s, nil
		}), nil
	case "postgres", "postgresql":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORE_ADAPTER=%s requires DATABASE_URL", cfg.StoreAdapter)
		}
		return store.NewManager("postgres", func(ctx context.Context) (store.GraphStore, error) {
			if cfg.AutoMigrate {
				if err := graphstorage.Migrate(cfg.DatabaseURL); err != nil {
					return nil, err
				}
			}
			s, err := graphstorage.NewGraphDBStorage(ctx, cfg.DatabaseURL,
				graphstorage.WithIncludeSource(cfg.IncludeSource),
			)
			if err != nil {
				return nil, err
			}
			return s, nil
		}), nil
	case "", "none":
		return store.NewManager("none", nil), nil
	default:
		return nil, fmt.Errorf("unknown STORE_ADAPTER %q", cfg.StoreAdapter)
	}
}

// NewS3Client returns nil when no bucket is configured.
func NewS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	if cfg.AWSBucket == "" {
		return nil, nil
	}
	return storage.NewS3Client(ctx, storage.S3Params{
		Region:    cfg.AWSRegion,
		Endpoint:  cfg.AWSEndpoint,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
	})
}

// Sources resolves the non-inline inputs of a generate request.
type Sources struct {
	Web loader.TextLoader
	S3  loader.TextLoader
}

// App is everything a server or CLI process needs.
type App struct {
	Config   Config
	Pipeline *pipeline.Pipeline
	Stores   *store.Manager
	Sources  Sources
	Schema   *schema.Schema
}

// NewApp wires the AI client, graph client, store manager, S3 and pipeline.
func NewApp(ctx context.Context, cfg Config) (*App, error) {
	aiClient, err := NewAIClient(cfg)
	if err != nil {
		return nil, err
	}
	graphClient, err := NewGraphClient(cfg, aiClient)
	if err != nil {
		return nil, err
	}
	stores, err := NewStoreManager(cfg)
	if err != nil {
		return nil, err
	}

	sources := Sources{Web: web.NewWebTextLoader()}
	var artifacts pipeline.ArtifactSink

	s3Client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if s3Client != nil {
		sources.S3 = s3loader.NewS3TextLoaderWithClient(cfg.AWSBucket, s3Client)
		sink, err := storage.NewArtifactStore(s3Client, cfg.AWSBucket, cfg.AWSPrefix)
		if err != nil {
			return nil, err
		}
		artifacts = sink
	}

	logger.Info("[Setup] configured",
		"ai", cfg.AIAdapter,
		"model", cfg.ExtractionModel,
		"schema", graphClient.Schema().Name,
		"strict", cfg.StrictMode,
		"store", stores.Name(),
		"s3", s3Client != nil,
	)

	return &App{
		Config: cfg,
		Pipeline: pipeline.New(pipeline.Params{
			Generator: graphClient,
			Stores:    stores,
			Artifacts: artifacts,
			OutputDir: cfg.OutputDir,
		}),
		Stores:  stores,
		Sources: sources,
		Schema:  graphClient.Schema(),
	}, nil
}

// Document builds a loader.Document for one of the supported inputs.
// Exactly one of text, url or key should be set.
func (a *App) Document(name, text, url, key string) (loader.Document, error) {
	switch {
	case url != "":
		return loader.NewDocument(loader.NewDocumentParams{
			Name: name, Path: url, Kind: loader.DocumentKindURL, Loader: a.Sources.Web,
		}), nil
	case key != "":
		if a.Sources.S3 == nil {
			return loader.Document{}, fmt.Errorf("S3 is not configured")
		}
		return loader.NewDocument(loader.NewDocumentParams{
			Name: name, Path: key, Kind: loader.DocumentKindS3, Loader: a.Sources.S3,
		}), nil
	default:
		return loader.NewTextDocument(name, text), nil
	}
}

// Close releases the store handle.
func (a *App) Close(ctx context.Context) error {
	return a.Stores.Close(ctx)
}
