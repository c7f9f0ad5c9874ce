package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/textgraph/internal/pipeline"
	"github.com/OFFIS-RIT/textgraph/internal/setup"
	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/graph"
	"github.com/OFFIS-RIT/textgraph/pkg/schema"
	"github.com/OFFIS-RIT/textgraph/pkg/store"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	err       error
	lastText  string
	lastName  string
	generated int
}

func (f *fakeGenerator) GenerateGraph(ctx context.Context, text, documentName string) (*graph.GenerateResult, error) {
	f.lastText, f.lastName = text, documentName
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(text) == "" {
		return nil, graph.ErrEmptyText
	}
	f.generated++
	return &graph.GenerateResult{
		ID: "run",
		Graph: &common.Graph{
			Nodes: []common.Node{{ID: "Marie Curie", Type: "Person"}, {ID: "Radium", Type: "Concept"}},
			Relationships: []common.Relationship{
				{SourceID: "Marie Curie", TargetID: "Radium", Type: "CREATED"},
			},
		},
		Chunks: 1,
	}, nil
}

func newTestServer(t *testing.T, gen *fakeGenerator) *echo.Echo {
	t.Helper()
	stores := store.NewManager("none", nil)
	app := &setup.App{
		Pipeline: pipeline.New(pipeline.Params{
			Generator: gen,
			Stores:    stores,
			OutputDir: t.TempDir(),
		}),
		Stores: stores,
		Schema: schema.Default(),
	}
	return New(app)
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

type response struct {
	Message string `json:"message"`
	Result  struct {
		DocumentName string       `json:"document_name"`
		Graph        common.Graph `json:"graph"`
		Notices      []string     `json:"notices"`
	} `json:"result"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var res response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestHealthAndIndex(t *testing.T) {
	e := newTestServer(t, &fakeGenerator{})

	rec := do(e, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = do(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Text to Knowledge Graph")

	rec = do(e, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = do(e, httptest.NewRequest(http.MethodGet, "/api/schema", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"general"`)
}

func TestCreateGraphFromText(t *testing.T) {
	gen := &fakeGenerator{}
	e := newTestServer(t, gen)

	rec := do(e, httptest.NewRequest(http.MethodGet, "/api/graphs/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, jsonRequest(http.MethodPost, "/api/graphs", `{"text":"Marie Curie created radium.","store":true}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode(t, rec)
	assert.Equal(t, "Manual Input", res.Result.DocumentName)
	assert.Len(t, res.Result.Graph.Nodes, 2)
	require.NotEmpty(t, res.Result.Notices)
	assert.Contains(t, res.Result.Notices[0], "No graph store")

	rec = do(e, httptest.NewRequest(http.MethodGet, "/api/graphs/latest", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.Contains(t, rec.Body.String(), "Radium")
}

func TestCreateGraphFromUpload(t *testing.T) {
	gen := &fakeGenerator{}
	e := newTestServer(t, gen)

	upload := func(name, content string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		fw, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, _ = fw.Write([]byte(content))
		require.NoError(t, w.WriteField("store", "false"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/graphs", &body)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		return do(e, req)
	}

	rec := upload("curie.txt", "Marie Curie created radium.")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "curie.txt", gen.lastName)
	assert.Equal(t, "Marie Curie created radium.", gen.lastText)

	rec = upload("curie.pdf", "%PDF")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Message, ".txt")

	limit := strings.Repeat("a", 5<<20)
	rec = upload("limit.txt", limit)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, gen.lastText, 5<<20)

	generated := gen.generated
	rec = upload("big.txt", limit+" TAIL-MARKER")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Message, "too large")
	assert.Equal(t, generated, gen.generated)
}

func TestCreateGraphBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no input", `{}`, "Provide text"},
		{"two inputs", `{"text":"a","url":"https://example.org"}`, "only one input"},
		{"blank text", `{"text":"   "}`, "non-empty"},
		{"bad url", `{"url":"not a url"}`, "Invalid request body"},
		{"s3 not configured", `{"key":"docs/a.txt"}`, "S3 is not configured"},
		{"malformed", `{"text":`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(t, &fakeGenerator{})
			rec := do(e, jsonRequest(http.MethodPost, "/api/graphs", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec).Message, tt.want)
		})
	}
}

func TestCreateGraphExtractionFailure(t *testing.T) {
	e := newTestServer(t, &fakeGenerator{err: errors.New("model unavailable")})

	rec := do(e, jsonRequest(http.MethodPost, "/api/graphs", `{"text":"Marie Curie"}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec).Message, "model unavailable")
}

func TestAccumulatedWithoutStore(t *testing.T) {
	e := newTestServer(t, &fakeGenerator{})

	rec := do(e, httptest.NewRequest(http.MethodPost, "/api/graphs/accumulated", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(e, httptest.NewRequest(http.MethodGet, "/api/graphs/accumulated", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
