package graph

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"
	"github.com/OFFIS-RIT/textgraph/pkg/store"
)

// ReadAccumulatedGraph loads everything the store holds. Unlike
// AssembleGraph it keeps isolated nodes, and nodes are identified by the
// store's internal id so the same semantic id may appear more than once.
// Relationships whose endpoints are not among the listed entities are
// dropped. Any store error is returned without a partial graph.
func ReadAccumulatedGraph(ctx context.Context, reader store.GraphReader) (*common.AccumulatedGraph, error) {
	nodes, err := reader.ListEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read accumulated entities: %w", err)
	}
	rels, err := reader.ListRelationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read accumulated relationships: %w", err)
	}

	known := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		known[n.InternalID] = struct{}{}
	}

	kept := make([]common.StoredRelationship, 0, len(rels))
	for _, r := range rels {
		_, srcOK := known[r.SourceInternalID]
		_, tgtOK := known[r.TargetInternalID]
		if !srcOK || !tgtOK {
			logger.Debug("[Graph] dropping accumulated relationship with unknown endpoint",
				"source", r.SourceInternalID, "target", r.TargetInternalID, "type", r.Type)
			continue
		}
		kept = append(kept, r)
	}

	logger.Info("[Graph] read accumulated graph", "nodes", len(nodes), "relationships", len(kept))
	return &common.AccumulatedGraph{Nodes: nodes, Relationships: kept}, nil
}
