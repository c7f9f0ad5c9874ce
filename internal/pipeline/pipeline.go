package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/OFFIS-RIT/textgraph/internal/metrics"
	"github.com/OFFIS-RIT/textgraph/pkg/ai"
	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/graph"
	"github.com/OFFIS-RIT/textgraph/pkg/loader"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"
	"github.com/OFFIS-RIT/textgraph/pkg/render"
	"github.com/OFFIS-RIT/textgraph/pkg/store"
)

// Generator produces an assembled graph from text.
type Generator interface {
	GenerateGraph(ctx context.Context, text, documentName string) (*graph.GenerateResult, error)
}

// ArtifactSink receives rendered pages, for example an S3 bucket.
type ArtifactSink interface {
	PutFile(ctx context.Context, name string, file io.ReadSeeker) (string, error)
}

// Pipeline runs a document through generation, persistence and rendering.
// It is shared by the HTTP server and the CLI.
type Pipeline struct {
	generator Generator
	stores    *store.Manager
	artifacts ArtifactSink
	outputDir string
	render    []render.NetworkOption

	// pages are written to fixed file names
	publishMu sync.Mutex
}

// Params configures a Pipeline. Stores and Artifacts are optional.
type Params struct {
	Generator     Generator
	Stores        *store.Manager
	Artifacts     ArtifactSink
	OutputDir     string
	RenderOptions []render.NetworkOption
}

func New(params Params) *Pipeline {
	dir := params.OutputDir
	if dir == "" {
		dir = "."
	}
	return &Pipeline{
		generator: params.Generator,
		stores:    params.Stores,
		artifacts: params.Artifacts,
		outputDir: dir,
		render:    params.RenderOptions,
	}
}

// GenerateRequest is one document to turn into a graph. Store requests
// persistence of the assembled graph.
type GenerateRequest struct {
	Document loader.Document
	Store    bool
}

// GenerateOutcome is what the user gets back for one document.
type GenerateOutcome struct {
	ID           string            `json:"id"`
	DocumentName string            `json:"document_name"`
	Graph        *common.Graph     `json:"graph"`
	Chunks       int               `json:"chunks"`
	Notices      []string          `json:"notices"`
	Stored       *store.SaveResult `json:"stored,omitempty"`
	HTMLPath     string            `json:"html_path"`
	ArtifactKey  string            `json:"artifact_key,omitempty"`
	Metrics      ai.ModelMetrics   `json:"metrics"`
}

// Generate extracts, optionally stores, and renders the graph of one
// document. A storage or upload failure is reported as a notice and does
// not fail the request; loading, extraction and rendering failures do.
func (p *Pipeline) Generate(ctx context.Context, req GenerateRequest) (out *GenerateOutcome, err error) {
	defer func() {
		if err != nil {
			metrics.GenerateRequests.WithLabelValues(metrics.ResultError).Inc()
			return
		}
		metrics.GenerateRequests.WithLabelValues(metrics.ResultOK).Inc()
	}()

	text, err := req.Document.GetText(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	res, err := p.generator.GenerateGraph(ctx, text, req.Document.Name)
	if err != nil {
		return nil, err
	}

	out = &GenerateOutcome{
		ID:           res.ID,
		DocumentName: req.Document.Name,
		Graph:        res.Graph,
		Chunks:       res.Chunks,
		Notices:      append([]string{}, res.Notices...),
		Metrics:      res.Metrics,
	}

	if req.Store {
		out.Stored, out.Notices = p.persist(ctx, res.Graph, req.Document.Name, out.Notices)
	}

	net := render.AssembledNetwork(res.Graph, p.render...)
	out.HTMLPath, out.ArtifactKey, err = p.publish(ctx, net, render.AssembledFileName, &out.Notices)
	if err != nil {
		return nil, err
	}

	logger.Info("[Pipeline] graph generated",
		"run", out.ID,
		"document", out.DocumentName,
		"nodes", len(res.Graph.Nodes),
		"relationships", len(res.Graph.Relationships),
		"stored", out.Stored != nil,
		"notices", len(out.Notices),
	)
	return out, nil
}

func (p *Pipeline) persist(ctx context.Context, g *common.Graph, documentName string, notices []string) (*store.SaveResult, []string) {
	if !p.stores.Configured() {
		return nil, append(notices, "No graph store is configured. The graph was not saved.")
	}

	saved, err := p.stores.SaveGraph(ctx, g, store.SaveOptions{DocumentName: documentName})
	if err != nil {
		logger.Error("[Pipeline] failed to store graph", "backend", p.stores.Name(), "err", err)
		return nil, append(notices, fmt.Sprintf("Failed to save the graph to %s: %v", p.stores.Name(), err))
	}

	if skipped := saved.NodesSkipped + saved.RelationshipsSkipped; skipped > 0 {
		notices = append(notices, fmt.Sprintf(
			"%d node(s) and %d relationship(s) were rejected by %s and skipped.",
			saved.NodesSkipped, saved.RelationshipsSkipped, p.stores.Name(),
		))
	}
	return &saved, notices
}

// AccumulatedOutcome is the rendered view of everything stored so far.
type AccumulatedOutcome struct {
	Graph       *common.AccumulatedGraph `json:"graph"`
	HTMLPath    string                   `json:"html_path"`
	ArtifactKey string                   `json:"artifact_key,omitempty"`
	Notices     []string                 `json:"notices"`
}

// Accumulated reads the whole store and renders it.
func (p *Pipeline) Accumulated(ctx context.Context) (*AccumulatedOutcome, error) {
	if !p.stores.Configured() {
		return nil, store.ErrNotConfigured
	}

	g, err := graph.ReadAccumulatedGraph(ctx, p.stores)
	if err != nil {
		return nil, err
	}

	out := &AccumulatedOutcome{Graph: g, Notices: []string{}}
	net := render.AccumulatedNetwork(g, p.render...)
	out.HTMLPath, out.ArtifactKey, err = p.publish(ctx, net, render.AccumulatedFileName, &out.Notices)
	if err != nil {
		return nil, err
	}

	logger.Info("[Pipeline] accumulated graph rendered", "nodes", len(g.Nodes), "relationships", len(g.Relationships))
	return out, nil
}

// OutputPath is where the page with the given file name is written.
func (p *Pipeline) OutputPath(name string) string {
	return filepath.Join(p.outputDir, name)
}

// ReadPage returns the last written page with the given file name.
func (p *Pipeline) ReadPage(name string) ([]byte, error) {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()
	return readFile(p.OutputPath(name))
}

func (p *Pipeline) publish(ctx context.Context, net *render.Network, name string, notices *[]string) (string, string, error) {
	page, err := net.HTML()
	if err != nil {
		return "", "", fmt.Errorf("failed to render graph: %w", err)
	}

	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	path := p.OutputPath(name)
	if err := writeFile(path, page); err != nil {
		return "", "", err
	}

	if p.artifacts == nil {
		return path, "", nil
	}
	key, err := p.artifacts.PutFile(ctx, name, bytes.NewReader(page))
	if err != nil {
		logger.Warn("[Pipeline] failed to upload page", "name", name, "err", err)
		*notices = append(*notices, "The rendered page could not be uploaded.")
		return path, "", nil
	}
	return path, key, nil
}
