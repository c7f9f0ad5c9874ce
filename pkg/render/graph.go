package render

import (
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/textgraph/internal/metrics"
	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"
)

const (
	AssembledFileName   = "knowledge_graph.html"
	AccumulatedFileName = "accumulated_knowledge_graph.html"
)

// AssembledNetwork builds the page of a freshly generated graph. Nodes are
// keyed by their semantic id and edge labels are lower case. A node or
// edge that cannot be added is logged and skipped.
func AssembledNetwork(g *common.Graph, opts ...NetworkOption) *Network {
	net := NewNetwork(opts...)
	if g == nil {
		return net
	}

	for _, n := range g.Nodes {
		if err := net.AddNode(n.ID, n.ID, n.Type, n.Type); err != nil {
			logger.Warn("[Render] skipping node", "id", n.ID, "err", err)
			metrics.SkippedItems.WithLabelValues("render", "node").Inc()
		}
	}
	for _, r := range g.Relationships {
		if err := net.AddEdge(r.SourceID, r.TargetID, strings.ToLower(r.Type)); err != nil {
			logger.Warn("[Render] skipping edge", "source", r.SourceID, "target", r.TargetID, "err", err)
			metrics.SkippedItems.WithLabelValues("render", "relationship").Inc()
		}
	}
	return net
}

// AccumulatedTitle is the tooltip of an accumulated node.
func AccumulatedTitle(n common.StoredNode) string {
	source := "Unknown"
	if v, ok := n.Properties[common.PropSourceDocument]; ok && v != nil && fmt.Sprint(v) != "" {
		source = fmt.Sprint(v)
	}
	return fmt.Sprintf("Type: %s\nID: %s\nSource: %s", n.Type, n.ID, source)
}

// AccumulatedNetwork builds the page of everything in the store. Nodes
// are keyed by their internal store id and labeled with their semantic id.
func AccumulatedNetwork(g *common.AccumulatedGraph, opts ...NetworkOption) *Network {
	net := NewNetwork(opts...)
	if g == nil {
		return net
	}

	for _, n := range g.Nodes {
		if err := net.AddNode(n.InternalID, n.ID, AccumulatedTitle(n), n.Type); err != nil {
			logger.Warn("[Render] skipping node", "internal_id", n.InternalID, "id", n.ID, "err", err)
			metrics.SkippedItems.WithLabelValues("render", "node").Inc()
		}
	}
	for _, r := range g.Relationships {
		if err := net.AddEdge(r.SourceInternalID, r.TargetInternalID, r.Type); err != nil {
			logger.Warn("[Render] skipping edge", "source", r.SourceInternalID, "target", r.TargetInternalID, "err", err)
			metrics.SkippedItems.WithLabelValues("render", "relationship").Inc()
		}
	}
	return net
}
