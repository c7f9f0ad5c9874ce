package neo4j

import (
	"context"
	"fmt"
	"maps"

	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"
	"github.com/OFFIS-RIT/textgraph/pkg/store"

	neo4jv5 "github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// nodePattern renders the label part of a node pattern, e.g. :`Person`:__Entity__.
func (s *GraphNeo4jStorage) nodePattern(nodeType string) string {
	p := ":`" + store.SanitizeLabel(nodeType, "Entity") + "`"
	if s.baseLabel {
		p += ":" + BaseEntityLabel
	}
	return p
}

// SaveGraph upserts every node and relationship of g. Each item is written
// by its own statement so a rejected item only skips itself. A relationship
// whose endpoint was rejected is skipped too.
func (s *GraphNeo4jStorage) SaveGraph(
	ctx context.Context,
	g *common.Graph,
	opts store.SaveOptions,
) (store.SaveResult, error) {
	var res store.SaveResult
	if g == nil {
		return res, nil
	}

	rejected := make(map[string]bool)
	for _, n := range g.Nodes {
		props := maps.Clone(n.Properties)
		if props == nil {
			props = map[string]any{}
		}
		query := "MERGE (n" + s.nodePattern(n.Type) + " {id: $id}) SET n += $props"
		_, err := s.run.Run(ctx, neo4jv5.AccessModeWrite, query, map[string]any{
			"id":    n.ID,
			"props": props,
		})
		if err != nil {
			if isItemError(err) {
				logger.Warn("[Store] skipping node", "id", n.ID, "type", n.Type, "err", err)
				res.NodesSkipped++
				rejected[n.ID] = true
				continue
			}
			return res, fmt.Errorf("failed to save node %q: %w", n.ID, err)
		}
		res.NodesSaved++
	}

	types := store.NodeTypeIndex(g.Nodes)
	for _, r := range g.Relationships {
		if rejected[r.SourceID] || rejected[r.TargetID] {
			logger.Warn("[Store] skipping relationship with rejected endpoint",
				"source", r.SourceID, "type", r.Type, "target", r.TargetID)
			res.RelationshipsSkipped++
			continue
		}
		query := "MATCH (s" + s.nodePattern(types[r.SourceID]) + " {id: $source}) " +
			"MATCH (t" + s.nodePattern(types[r.TargetID]) + " {id: $target}) " +
			"MERGE (s)-[r:`" + store.SanitizeLabel(r.Type, "RELATED_TO") + "`]->(t) " +
			"SET r += $props"
		props := maps.Clone(r.Properties)
		if props == nil {
			props = map[string]any{}
		}
		_, err := s.run.Run(ctx, neo4jv5.AccessModeWrite, query, map[string]any{
			"source": r.SourceID,
			"target": r.TargetID,
			"props":  props,
		})
		if err != nil {
			if isItemError(err) {
				logger.Warn("[Store] skipping relationship",
					"source", r.SourceID, "type", r.Type, "target", r.TargetID, "err", err)
				res.RelationshipsSkipped++
				continue
			}
			return res, fmt.Errorf("failed to save relationship %s-%s->%s: %w", r.SourceID, r.Type, r.TargetID, err)
		}
		res.RelationshipsSaved++
	}

	if s.includeSource && opts.DocumentName != "" {
		if err := s.saveSource(ctx, g, opts.DocumentName, rejected); err != nil {
			return res, err
		}
	}

	return res, nil
}

func (s *GraphNeo4jStorage) saveSource(
	ctx context.Context,
	g *common.Graph,
	document string,
	rejected map[string]bool,
) error {
	_, err := s.run.Run(ctx, neo4jv5.AccessModeWrite,
		"MERGE (d:Document {id: $id})",
		map[string]any{"id": document},
	)
	if err != nil {
		if isItemError(err) {
			logger.Warn("[Store] skipping source document", "document", document, "err", err)
			return nil
		}
		return fmt.Errorf("failed to save source document %q: %w", document, err)
	}

	for _, n := range g.Nodes {
		if rejected[n.ID] {
			continue
		}
		query := "MATCH (d:Document {id: $document}) " +
			"MATCH (n" + s.nodePattern(n.Type) + " {id: $id}) " +
			"MERGE (d)-[:MENTIONS]->(n)"
		_, err := s.run.Run(ctx, neo4jv5.AccessModeWrite, query, map[string]any{
			"document": document,
			"id":       n.ID,
		})
		if err != nil {
			if isItemError(err) {
				logger.Warn("[Store] skipping mention", "document", document, "id", n.ID, "err", err)
				continue
			}
			return fmt.Errorf("failed to link %q to source document: %w", n.ID, err)
		}
	}
	return nil
}
