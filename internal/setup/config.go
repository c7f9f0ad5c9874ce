package setup

import (
	"github.com/OFFIS-RIT/textgraph/internal/util"
	"github.com/OFFIS-RIT/textgraph/pkg/graph"
)

// Config is the process configuration read from the environment.
type Config struct {
	AIAdapter        string
	ChatURL          string
	ChatKey          string
	ExtractionModel  string
	StructuredOutput bool
	Temperature      float64
	ParallelRequests int

	Schema       string
	StrictMode   bool
	ChunkSize    int
	ChunkOverlap int
	MaxChunks    int
	TokenEncoder string

	StoreAdapter    string
	Neo4jURI        string
	Neo4jUsername   string
	Neo4jPassword   string
	Neo4jDatabase   string
	BaseEntityLabel bool
	IncludeSource   bool
	DatabaseURL     string
	AutoMigrate     bool

	OutputDir string

	AWSRegion    string
	AWSEndpoint  string
	AWSAccessKey string
	AWSSecretKey string
	AWSBucket    string
	AWSPrefix    string
}

// ConfigFromEnv reads Config from the environment, applying defaults.
func ConfigFromEnv() Config {
	adapter := util.GetEnvString("AI_ADAPTER", "openai")
	chatURL := "https://openrouter.ai/api/v1"
	if adapter == "ollama" {
		// empty means the ollama client reads OLLAMA_HOST
		chatURL = ""
	}

	return Config{
		AIAdapter:        adapter,
		ChatURL:          util.GetEnvString("AI_CHAT_URL", chatURL),
		ChatKey:          util.GetEnvFirst("", "AI_CHAT_KEY", "OPENROUTER_API_KEY"),
		ExtractionModel:  util.GetEnvString("AI_CHAT_EXTRACT_MODEL", "microsoft/mai-ds-r1:free"),
		StructuredOutput: util.GetEnvBool("AI_STRUCTURED_OUTPUT", false),
		Temperature:      util.GetEnvNumeric("AI_TEMPERATURE", 0),
		ParallelRequests: util.GetEnvInt("AI_PARALLEL_REQ", 4),

		Schema:       util.GetEnvString("KG_SCHEMA", "general"),
		StrictMode:   util.GetEnvBool("KG_STRICT_MODE", true),
		ChunkSize:    util.GetEnvInt("CHUNK_SIZE", graph.DefaultChunkSize),
		ChunkOverlap: util.GetEnvInt("CHUNK_OVERLAP", graph.DefaultChunkOverlap),
		MaxChunks:    util.GetEnvInt("CHUNK_MAX", graph.DefaultMaxChunks),
		TokenEncoder: util.GetEnvString("TOKEN_ENCODER", "o200k_base"),

		StoreAdapter:    util.GetEnvString("STORE_ADAPTER", "neo4j"),
		Neo4jURI:        util.GetEnvString("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUsername:   util.GetEnvString("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword:   util.GetEnvString("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:   util.GetEnv("NEO4J_DATABASE"),
		BaseEntityLabel: util.GetEnvBool("STORE_BASE_ENTITY_LABEL", true),
		IncludeSource:   util.GetEnvBool("STORE_INCLUDE_SOURCE", false),
		DatabaseURL:     util.GetEnv("DATABASE_URL"),
		AutoMigrate:     util.GetEnvBool("STORE_AUTO_MIGRATE", true),

		OutputDir: util.GetEnvString("OUTPUT_DIR", "."),

		AWSRegion:    util.GetEnvString("AWS_REGION", "us-east-1"),
		AWSEndpoint:  util.GetEnv("AWS_ENDPOINT"),
		AWSAccessKey: util.GetEnv("AWS_ACCESS_KEY"),
		AWSSecretKey: util.GetEnv("AWS_SECRET_KEY"),
		AWSBucket:    util.GetEnv("AWS_BUCKET"),
		AWSPrefix:    util.GetEnvString("AWS_PREFIX", "graphs"),
	}
}
