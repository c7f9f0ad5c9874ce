package neo4j

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/textgraph/pkg/common"

	neo4jv5 "github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const listEntitiesQuery = `
MATCH (n)
RETURN elementId(n) AS internal_id,
       n.id AS id,
       [l IN labels(n) WHERE l <> '` + BaseEntityLabel + `'][0] AS type,
       properties(n) AS properties
`

const listRelationshipsQuery = `
MATCH (a)-[r]->(b)
RETURN elementId(a) AS source, elementId(b) AS target, type(r) AS type
`

// ListEntities returns every node of the database, isolated ones included.
func (s *GraphNeo4jStorage) ListEntities(ctx context.Context) ([]common.StoredNode, error) {
	records, err := s.run.Run(ctx, neo4jv5.AccessModeRead, listEntitiesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	nodes := make([]common.StoredNode, 0, len(records))
	for _, record := range records {
		props, _ := getValueFromRecord(record, "properties").(map[string]any)
		nodes = append(nodes, common.StoredNode{
			InternalID: getStringFromRecord(record, "internal_id"),
			ID:         getStringFromRecord(record, "id"),
			Type:       getStringFromRecord(record, "type"),
			Properties: props,
		})
	}
	return nodes, nil
}

// ListRelationships returns every relationship keyed by internal node ids.
func (s *GraphNeo4jStorage) ListRelationships(ctx context.Context) ([]common.StoredRelationship, error) {
	records, err := s.run.Run(ctx, neo4jv5.AccessModeRead, listRelationshipsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}

	rels := make([]common.StoredRelationship, 0, len(records))
	for _, record := range records {
		rels = append(rels, common.StoredRelationship{
			SourceInternalID: getStringFromRecord(record, "source"),
			TargetInternalID: getStringFromRecord(record, "target"),
			Type:             getStringFromRecord(record, "type"),
		})
	}
	return rels, nil
}

func getValueFromRecord(record *neo4jv5.Record, key string) any {
	if val, ok := record.Get(key); ok {
		return val
	}
	return nil
}

func getStringFromRecord(record *neo4jv5.Record, key string) string {
	switch v := getValueFromRecord(record, key).(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
