package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/OFFIS-RIT/textgraph/internal/metrics"
	"github.com/OFFIS-RIT/textgraph/pkg/ai"
	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"
	"github.com/OFFIS-RIT/textgraph/pkg/schema"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type extractNode struct {
	ID   string `json:"id" jsonschema_description:"Name or human-readable identifier of the entity as found in the text"`
	Type string `json:"type" jsonschema_description:"One of the allowed node types"`
}

type extractRelationship struct {
	SourceID   string `json:"source_id" jsonschema_description:"ID of the source node"`
	SourceType string `json:"source_type" jsonschema_description:"Type of the source node"`
	TargetID   string `json:"target_id" jsonschema_description:"ID of the target node"`
	TargetType string `json:"target_type" jsonschema_description:"Type of the target node"`
	Type       string `json:"type" jsonschema_description:"One of the allowed relationship types in UPPER_SNAKE_CASE"`
}

type extractResponse struct {
	Nodes         []extractNode         `json:"nodes" jsonschema_description:"Entities identified in the text"`
	Relationships []extractRelationship `json:"relationships" jsonschema_description:"Relationships between the identified entities"`
}

// Extractor turns chunks into raw graph fragments with an LLM.
type Extractor struct {
	client      ai.GraphAIClient
	schema      *schema.Schema
	strict      bool
	parallel    int
	model       string
	temperature float64
}

// ExtractorParams configures an Extractor.
//
// Parallel bounds the number of concurrent model calls of one batch.
// Model overrides the client's default extraction model when set.
type ExtractorParams struct {
	Client      ai.GraphAIClient
	Schema      *schema.Schema
	Strict      bool
	Parallel    int
	Model       string
	Temperature float64
}

func NewExtractor(params ExtractorParams) *Extractor {
	s := params.Schema
	if s == nil {
		s = schema.Default()
	}
	parallel := params.Parallel
	if parallel <= 0 {
		parallel = 1
	}
	return &Extractor{
		client:      params.Client,
		schema:      s,
		strict:      params.Strict,
		parallel:    parallel,
		model:       params.Model,
		temperature: params.Temperature,
	}
}

// Schema returns the extraction vocabulary in use.
func (e *Extractor) Schema() *schema.Schema {
	return e.schema
}

func (e *Extractor) systemPrompt() string {
	guidance := ""
	if e.strict {
		guidance = ai.StrictIDGuidance
	}
	return fmt.Sprintf(ai.ExtractGraphPrompt, e.schema.Describe(), guidance)
}

// Extract sends every chunk to the model and returns one fragment per
// chunk, in chunk order. The call blocks until the whole batch is done.
// Any failed chunk aborts the batch and no fragments are returned.
func (e *Extractor) Extract(ctx context.Context, chunks []common.Chunk) ([]common.Fragment, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	start := time.Now()
	prompt := e.systemPrompt()
	fragments := make([]common.Fragment, len(chunks))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallel)
	for i := range chunks {
		g.Go(func() error {
			frag, err := e.extractChunk(gCtx, prompt, chunks[i])
			if err != nil {
				return fmt.Errorf("failed to extract graph from chunk %d/%d: %w", chunks[i].Index+1, chunks[i].Total, err)
			}
			fragments[i] = frag
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.ChunksExtracted.Add(float64(len(chunks)))
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	return fragments, nil
}

func (e *Extractor) extractChunk(ctx context.Context, prompt string, chunk common.Chunk) (common.Fragment, error) {
	opts := []ai.GenerateOption{
		ai.WithSystemPrompts(prompt),
		ai.WithTemperature(e.temperature),
	}
	if e.model != "" {
		opts = append(opts, ai.WithModel(e.model))
	}

	var res extractResponse
	err := e.client.GenerateCompletionWithFormat(
		ctx,
		"extract_knowledge_graph",
		"Extract nodes and relationships from a text chunk.",
		chunk.Text,
		&res,
		opts...,
	)
	if err != nil {
		return common.Fragment{}, err
	}

	c := chunk
	frag := e.normalize(res)
	frag.Chunk = &c
	return frag, nil
}

// normalize canonicalizes ids and labels and, in strict mode, drops what
// the schema does not allow.
func (e *Extractor) normalize(res extractResponse) common.Fragment {
	frag := common.Fragment{
		Nodes:         make([]common.Node, 0, len(res.Nodes)),
		Relationships: make([]common.Relationship, 0, len(res.Relationships)),
	}

	// endpoint types the model left out are taken from the chunk's nodes
	nodeTypes := make(map[string]string, len(res.Nodes))

	for _, n := range res.Nodes {
		id := NormalizeID(n.ID)
		if id != "" && nodeTypes[id] == "" {
			nodeTypes[id] = NormalizeLabel(n.Type)
		}
		if id == "" {
			metrics.SkippedItems.WithLabelValues("extract", "node").Inc()
			continue
		}
		typ, ok := e.nodeType(n.Type)
		if !ok {
			logger.Debug("[Graph] dropping node of disallowed type", "id", id, "type", n.Type)
			metrics.SkippedItems.WithLabelValues("extract", "node").Inc()
			continue
		}
		frag.Nodes = append(frag.Nodes, common.Node{ID: id, Type: typ})
	}

	for _, r := range res.Relationships {
		src, tgt := NormalizeID(r.SourceID), NormalizeID(r.TargetID)
		relType := NormalizeRelationshipType(r.Type)
		if src == "" || tgt == "" || relType == "" {
			metrics.SkippedItems.WithLabelValues("extract", "relationship").Inc()
			continue
		}
		srcType, tgtType := NormalizeLabel(r.SourceType), NormalizeLabel(r.TargetType)
		if srcType == "" {
			srcType = nodeTypes[src]
		}
		if tgtType == "" {
			tgtType = nodeTypes[tgt]
		}
		if e.strict && !e.schema.AllowsRelationship(srcType, relType, tgtType) {
			logger.Debug("[Graph] dropping relationship of disallowed type",
				"source", src, "type", relType, "target", tgt)
			metrics.SkippedItems.WithLabelValues("extract", "relationship").Inc()
			continue
		}
		frag.Relationships = append(frag.Relationships, common.Relationship{
			SourceID: src,
			TargetID: tgt,
			Type:     relType,
		})
	}

	return frag
}

func (e *Extractor) nodeType(raw string) (string, bool) {
	label := NormalizeLabel(raw)
	if !e.strict {
		return label, label != ""
	}
	return e.schema.NodeType(label)
}

// NormalizeID trims and title-cases a node id so that "marie curie" and
// "Marie Curie" denote the same node.
func NormalizeID(id string) string {
	id = strings.Join(strings.Fields(id), " ")
	if id == "" {
		return ""
	}
	// a Caser keeps state and must not be shared between goroutines
	return cases.Title(language.Und).String(id)
}

// NormalizeLabel upper-cases the first letter of a node type and lowers the rest.
func NormalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	r := []rune(strings.ToLower(label))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

// NormalizeRelationshipType converts a relationship type to UPPER_SNAKE_CASE.
func NormalizeRelationshipType(t string) string {
	t = strings.Join(strings.Fields(t), "_")
	t = strings.ReplaceAll(t, "-", "_")
	return strings.ToUpper(t)
}
