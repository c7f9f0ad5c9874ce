package pgx

import (
	"context"
	"fmt"
	"strconv"

	"github.com/OFFIS-RIT/textgraph/pkg/common"
)

const listNodesSQL = `SELECT id, node_id, type, properties FROM kg_nodes ORDER BY id`

const listRelationshipsSQL = `SELECT source_id, target_id, type FROM kg_relationships ORDER BY id`

// ListEntities returns every stored node, isolated ones included.
func (s *GraphDBStorage) ListEntities(ctx context.Context) ([]common.StoredNode, error) {
	rows, err := s.conn.Query(ctx, listNodesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var nodes []common.StoredNode
	for rows.Next() {
		var (
			id    int64
			n     common.StoredNode
			props map[string]any
		)
		if err := rows.Scan(&id, &n.ID, &n.Type, &props); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		n.InternalID = strconv.FormatInt(id, 10)
		n.Properties = props
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	return nodes, nil
}

// ListRelationships returns every stored relationship keyed by node row ids.
func (s *GraphDBStorage) ListRelationships(ctx context.Context) ([]common.StoredRelationship, error) {
	rows, err := s.conn.Query(ctx, listRelationshipsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	defer rows.Close()

	var rels []common.StoredRelationship
	for rows.Next() {
		var (
			src, tgt int64
			r        common.StoredRelationship
		)
		if err := rows.Scan(&src, &tgt, &r.Type); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		r.SourceInternalID = strconv.FormatInt(src, 10)
		r.TargetInternalID = strconv.FormatInt(tgt, 10)
		rels = append(rels, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	return rels, nil
}
