package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/graph"
	"github.com/OFFIS-RIT/textgraph/pkg/loader"
	"github.com/OFFIS-RIT/textgraph/pkg/render"
	"github.com/OFFIS-RIT/textgraph/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	graph *common.Graph
	err   error
	names []string
}

func (f *fakeGenerator) GenerateGraph(ctx context.Context, text, documentName string) (*graph.GenerateResult, error) {
	f.names = append(f.names, documentName)
	if f.err != nil {
		return nil, f.err
	}
	return &graph.GenerateResult{ID: "run1", Graph: f.graph, Chunks: 1, Notices: []string{"chunk notice"}}, nil
}

type fakeStore struct {
	saveErr  error
	skipped  int
	saved    []*common.Graph
	entities []common.StoredNode
	rels     []common.StoredRelationship
}

func (f *fakeStore) SaveGraph(ctx context.Context, g *common.Graph, opts store.SaveOptions) (store.SaveResult, error) {
	if f.saveErr != nil {
		return store.SaveResult{}, f.saveErr
	}
	f.saved = append(f.saved, g)
	return store.SaveResult{
		NodesSaved:         len(g.Nodes) - f.skipped,
		NodesSkipped:       f.skipped,
		RelationshipsSaved: len(g.Relationships),
	}, nil
}

func (f *fakeStore) ListEntities(ctx context.Context) ([]common.StoredNode, error) {
	return f.entities, nil
}

func (f *fakeStore) ListRelationships(ctx context.Context) ([]common.StoredRelationship, error) {
	return f.rels, nil
}

func (f *fakeStore) Close(ctx context.Context) error { return nil }

type fakeSink struct {
	err   error
	pages map[string]string
}

func (f *fakeSink) PutFile(ctx context.Context, name string, file io.ReadSeeker) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(file)
	f.pages[name] = string(b)
	return "graphs/" + name, nil
}

func sampleGraph() *common.Graph {
	return &common.Graph{
		Nodes: []common.Node{
			{ID: "Marie Curie", Type: "Person"},
			{ID: "Radium", Type: "Concept"},
		},
		Relationships: []common.Relationship{
			{SourceID: "Marie Curie", TargetID: "Radium", Type: "CREATED"},
		},
	}
}

func managerFor(s store.GraphStore) *store.Manager {
	return store.NewManager("fake", func(ctx context.Context) (store.GraphStore, error) {
		return s, nil
	})
}

func TestGenerateStoresAndRenders(t *testing.T) {
	dir := t.TempDir()
	fs := &fakeStore{}
	sink := &fakeSink{pages: map[string]string{}}
	p := New(Params{
		Generator: &fakeGenerator{graph: sampleGraph()},
		Stores:    managerFor(fs),
		Artifacts: sink,
		OutputDir: dir,
	})

	out, err := p.Generate(context.Background(), GenerateRequest{
		Document: loader.NewTextDocument("", "Marie Curie created radium."),
		Store:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "run1", out.ID)
	assert.Equal(t, loader.DefaultDocumentName, out.DocumentName)
	assert.Equal(t, []string{"chunk notice"}, out.Notices)
	require.NotNil(t, out.Stored)
	assert.Equal(t, 2, out.Stored.NodesSaved)
	require.Len(t, fs.saved, 1)

	page, err := os.ReadFile(out.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Marie Curie")
	assert.Equal(t, p.OutputPath(render.AssembledFileName), out.HTMLPath)

	assert.Equal(t, "graphs/"+render.AssembledFileName, out.ArtifactKey)
	assert.Equal(t, string(page), sink.pages[render.AssembledFileName])

	latest, err := p.ReadPage(render.AssembledFileName)
	require.NoError(t, err)
	assert.Equal(t, page, latest)
}

func TestGenerateStoreFailureBecomesNotice(t *testing.T) {
	p := New(Params{
		Generator: &fakeGenerator{graph: sampleGraph()},
		Stores:    managerFor(&fakeStore{saveErr: errors.New("connection refused")}),
		OutputDir: t.TempDir(),
	})

	out, err := p.Generate(context.Background(), GenerateRequest{
		Document: loader.NewTextDocument("", "text"),
		Store:    true,
	})
	require.NoError(t, err)
	assert.Nil(t, out.Stored)
	require.Len(t, out.Notices, 2)
	assert.Contains(t, out.Notices[1], "connection refused")
	assert.FileExists(t, out.HTMLPath)
}

func TestGenerateNotices(t *testing.T) {
	tests := []struct {
		name   string
		stores *store.Manager
		sink   ArtifactSink
		store  bool
		want   string
	}{
		{"no store configured", store.NewManager("none", nil), nil, true, "No graph store"},
		{"skipped items", managerFor(&fakeStore{skipped: 1}), nil, true, "1 node(s) and 0 relationship(s)"},
		{"upload failure", nil, &fakeSink{err: errors.New("denied")}, false, "could not be uploaded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Params{
				Generator: &fakeGenerator{graph: sampleGraph()},
				Stores:    tt.stores,
				Artifacts: tt.sink,
				OutputDir: t.TempDir(),
			})
			out, err := p.Generate(context.Background(), GenerateRequest{
				Document: loader.NewTextDocument("", "text"),
				Store:    tt.store,
			})
			require.NoError(t, err)
			last := out.Notices[len(out.Notices)-1]
			assert.True(t, strings.Contains(last, tt.want), last)
		})
	}
}

func TestGenerateWithoutStoreSkipsPersistence(t *testing.T) {
	fs := &fakeStore{}
	p := New(Params{
		Generator: &fakeGenerator{graph: sampleGraph()},
		Stores:    managerFor(fs),
		OutputDir: t.TempDir(),
	})
	out, err := p.Generate(context.Background(), GenerateRequest{Document: loader.NewTextDocument("notes.txt", "text")})
	require.NoError(t, err)
	assert.Nil(t, out.Stored)
	assert.Empty(t, fs.saved)
	assert.Equal(t, "notes.txt", out.DocumentName)
}

func TestGenerateErrors(t *testing.T) {
	gen := &fakeGenerator{err: graph.ErrEmptyText}
	p := New(Params{Generator: gen, OutputDir: t.TempDir()})

	_, err := p.Generate(context.Background(), GenerateRequest{Document: loader.NewTextDocument("", "")})
	assert.ErrorIs(t, err, graph.ErrEmptyText)

	_, err = p.Generate(context.Background(), GenerateRequest{
		Document: loader.NewDocument(loader.NewDocumentParams{Path: "x", Kind: loader.DocumentKindFile}),
	})
	assert.ErrorIs(t, err, loader.ErrNoLoader)
	assert.Len(t, gen.names, 1)
}

func TestAccumulated(t *testing.T) {
	fs := &fakeStore{
		entities: []common.StoredNode{
			{InternalID: "4:a:1", ID: "Marie Curie", Type: "Person", Properties: map[string]any{"source_document": "notes.txt"}},
			{InternalID: "4:a:2", ID: "Radium", Type: "Concept"},
			{InternalID: "4:a:3", ID: "Paris", Type: "Location"},
		},
		rels: []common.StoredRelationship{
			{SourceInternalID: "4:a:1", TargetInternalID: "4:a:2", Type: "CREATED"},
			{SourceInternalID: "4:a:1", TargetInternalID: "4:a:9", Type: "LOCATED_IN"},
		},
	}
	p := New(Params{Stores: managerFor(fs), OutputDir: t.TempDir()})

	out, err := p.Accumulated(context.Background())
	require.NoError(t, err)
	assert.Len(t, out.Graph.Nodes, 3)
	assert.Len(t, out.Graph.Relationships, 1)

	page, err := p.ReadPage(render.AccumulatedFileName)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Paris")
	assert.Contains(t, string(page), "Source: notes.txt")
}

func TestAccumulatedNotConfigured(t *testing.T) {
	p := New(Params{Stores: store.NewManager("none", nil), OutputDir: t.TempDir()})
	_, err := p.Accumulated(context.Background())
	assert.ErrorIs(t, err, store.ErrNotConfigured)
}
