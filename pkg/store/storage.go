package store

import (
	"context"
	"errors"

	"github.com/OFFIS-RIT/textgraph/pkg/common"
)

// ErrNotConfigured is returned when no durable store backend is configured.
var ErrNotConfigured = errors.New("store: no graph store configured")

// SaveOptions describes the document a graph was extracted from.
type SaveOptions struct {
	DocumentName string
}

// SaveResult reports what a SaveGraph call wrote. Items that the store
// rejected individually are counted as skipped.
type SaveResult struct {
	NodesSaved           int `json:"nodes_saved"`
	NodesSkipped         int `json:"nodes_skipped"`
	RelationshipsSaved   int `json:"relationships_saved"`
	RelationshipsSkipped int `json:"relationships_skipped"`
}

// GraphReader lists everything a store has accumulated.
type GraphReader interface {
	ListEntities(ctx context.Context) ([]common.StoredNode, error)
	ListRelationships(ctx context.Context) ([]common.StoredRelationship, error)
}

// GraphStore persists assembled graphs. Writes are upserts: entities are
// keyed by (type, id) and relationships by (source, type, target), and
// existing properties are merged, never removed.
//
// A rejected node or relationship is skipped and counted; connectivity
// and context errors abort the call.
type GraphStore interface {
	GraphReader
	SaveGraph(ctx context.Context, g *common.Graph, opts SaveOptions) (SaveResult, error)
	Close(ctx context.Context) error
}
