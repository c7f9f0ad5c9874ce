package graph

import (
	"maps"
	"time"

	"github.com/OFFIS-RIT/textgraph/internal/metrics"
	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"
)

// AssembleOptions controls provenance stamping.
//
// When DocumentName is set every retained node gets source_document and
// created_at properties. Now defaults to time.Now.
type AssembleOptions struct {
	DocumentName string
	Now          func() time.Time
}

// AssembleGraph merges raw fragments into one referentially consistent graph.
//
// Nodes are keyed by id and later duplicates replace earlier ones. An edge
// is kept only when both endpoints exist; missing endpoints are never
// synthesized. Nodes that end up without any kept edge are dropped. Node
// order follows the first kept edge that references each node.
func AssembleGraph(fragments []common.Fragment, opts AssembleOptions) *common.Graph {
	g := &common.Graph{
		Nodes:         []common.Node{},
		Relationships: []common.Relationship{},
		Connected:     map[string]struct{}{},
	}
	if len(fragments) == 0 {
		return g
	}

	lookup := make(map[string]common.Node)
	for _, f := range fragments {
		for _, n := range f.Nodes {
			if n.ID == "" {
				continue
			}
			if prev, ok := lookup[n.ID]; ok && prev.Type != n.Type {
				logger.Debug("[Graph] node redefined, keeping last", "id", n.ID, "previous", prev.Type, "type", n.Type)
			}
			lookup[n.ID] = n
		}
	}

	var order []string
	for _, f := range fragments {
		for _, r := range f.Relationships {
			_, srcOK := lookup[r.SourceID]
			_, tgtOK := lookup[r.TargetID]
			if !srcOK || !tgtOK {
				logger.Debug("[Graph] dropping relationship with missing endpoint",
					"source", r.SourceID, "type", r.Type, "target", r.TargetID)
				metrics.SkippedItems.WithLabelValues("assemble", "relationship").Inc()
				continue
			}
			g.Relationships = append(g.Relationships, r)
			for _, id := range []string{r.SourceID, r.TargetID} {
				if _, seen := g.Connected[id]; !seen {
					g.Connected[id] = struct{}{}
					order = append(order, id)
				}
			}
		}
	}

	if isolated := len(lookup) - len(order); isolated > 0 {
		logger.Debug("[Graph] dropping isolated nodes", "count", isolated)
		metrics.SkippedItems.WithLabelValues("assemble", "node").Add(float64(isolated))
	}

	var createdAt string
	if opts.DocumentName != "" {
		now := opts.Now
		if now == nil {
			now = time.Now
		}
		createdAt = now().Format(time.RFC3339)
	}

	for _, id := range order {
		n := lookup[id]
		n.Properties = maps.Clone(n.Properties)
		if opts.DocumentName != "" {
			if n.Properties == nil {
				n.Properties = make(map[string]any, 2)
			}
			n.Properties[common.PropSourceDocument] = opts.DocumentName
			n.Properties[common.PropCreatedAt] = createdAt
		}
		g.Nodes = append(g.Nodes, n)
	}

	return g
}
