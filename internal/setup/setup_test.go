package setup

import (
	"context"
	"testing"

	"github.com/OFFIS-RIT/textgraph/pkg/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"AI_ADAPTER", "AI_CHAT_URL", "AI_CHAT_KEY", "OPENROUTER_API_KEY", "STORE_ADAPTER", "CHUNK_MAX"} {
		t.Setenv(key, "")
	}
	cfg := ConfigFromEnv()
	assert.Equal(t, "openai", cfg.AIAdapter)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.ChatURL)
	assert.Equal(t, "neo4j", cfg.StoreAdapter)
	assert.Equal(t, 10, cfg.MaxChunks)
	assert.True(t, cfg.StrictMode)

	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("AI_ADAPTER", "ollama")
	cfg = ConfigFromEnv()
	assert.Equal(t, "or-key", cfg.ChatKey)
	assert.Equal(t, "", cfg.ChatURL)
}

func TestNewStoreManager(t *testing.T) {
	tests := []struct {
		adapter    string
		dbURL      string
		wantName   string
		configured bool
		wantErr    bool
	}{
		{adapter: "neo4j", wantName: "neo4j", configured: true},
		{adapter: "postgres", dbURL: "postgres://localhost/kg", wantName: "postgres", configured: true},
		{adapter: "postgres", wantErr: true},
		{adapter: "none", wantName: "none"},
		{adapter: "mongo", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.adapter+tt.dbURL, func(t *testing.T) {
			m, err := NewStoreManager(Config{StoreAdapter: tt.adapter, DatabaseURL: tt.dbURL})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, m.Name())
			assert.Equal(t, tt.configured, m.Configured())
		})
	}
}

func TestNewAIClient(t *testing.T) {
	_, err := NewAIClient(Config{AIAdapter: "openai", ChatURL: "http://localhost:1234/v1", ChatKey: "k"})
	assert.NoError(t, err)

	_, err = NewAIClient(Config{AIAdapter: "claude"})
	assert.Error(t, err)
}

func TestNewAppWithoutStoreOrS3(t *testing.T) {
	cfg := Config{
		AIAdapter:    "openai",
		ChatURL:      "http://localhost:1234/v1",
		ChatKey:      "k",
		Schema:       "biomedical",
		StoreAdapter: "none",
		OutputDir:    t.TempDir(),
	}
	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "biomedical", app.Schema.Name)
	assert.False(t, app.Stores.Configured())

	doc, err := app.Document("", "typed", "", "")
	require.NoError(t, err)
	assert.Equal(t, loader.DocumentKindText, doc.Kind)
	assert.Equal(t, loader.DefaultDocumentName, doc.Name)

	doc, err = app.Document("", "", "https://example.org/a", "")
	require.NoError(t, err)
	assert.Equal(t, loader.DocumentKindURL, doc.Kind)

	_, err = app.Document("", "", "", "docs/a.txt")
	assert.Error(t, err)

	assert.NoError(t, app.Close(context.Background()))
}
