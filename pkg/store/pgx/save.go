package pgx

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/textgraph/internal/util"
	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"
	"github.com/OFFIS-RIT/textgraph/pkg/store"
)

const upsertNodeSQL = `
INSERT INTO kg_nodes (node_id, type, properties)
VALUES ($1, $2, $3)
ON CONFLICT (node_id, type)
DO UPDATE SET properties = kg_nodes.properties || EXCLUDED.properties
RETURNING id`

const upsertRelationshipSQL = `
INSERT INTO kg_relationships (source_id, target_id, type, properties)
VALUES ($1, $2, $3, $4)
ON CONFLICT (source_id, target_id, type)
DO UPDATE SET properties = kg_relationships.properties || EXCLUDED.properties`

const upsertDocumentSQL = `
INSERT INTO kg_documents (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`

const insertMentionSQL = `
INSERT INTO kg_mentions (document_id, node_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

// SaveGraph upserts every node and relationship of g, one statement per
// item. A relationship whose endpoint could not be saved is skipped.
func (s *GraphDBStorage) SaveGraph(
	ctx context.Context,
	g *common.Graph,
	opts store.SaveOptions,
) (store.SaveResult, error) {
	var res store.SaveResult
	if g == nil {
		return res, nil
	}

	internal := make(map[string]int64, len(g.Nodes))
	for _, n := range g.Nodes {
		var id int64
		err := s.conn.QueryRow(ctx, upsertNodeSQL,
			util.SanitizePostgresText(n.ID),
			util.SanitizePostgresText(n.Type),
			util.SanitizePostgresProperties(n.Properties),
		).Scan(&id)
		if err != nil {
			if isItemError(err) {
				logger.Warn("[Store] skipping node", "id", n.ID, "type", n.Type, "err", err)
				res.NodesSkipped++
				continue
			}
			return res, fmt.Errorf("failed to save node %q: %w", n.ID, err)
		}
		internal[n.ID] = id
		res.NodesSaved++
	}

	for _, r := range g.Relationships {
		src, srcOK := internal[r.SourceID]
		tgt, tgtOK := internal[r.TargetID]
		if !srcOK || !tgtOK {
			logger.Warn("[Store] skipping relationship with unsaved endpoint",
				"source", r.SourceID, "type", r.Type, "target", r.TargetID)
			res.RelationshipsSkipped++
			continue
		}
		_, err := s.conn.Exec(ctx, upsertRelationshipSQL,
			src, tgt,
			util.SanitizePostgresText(r.Type),
			util.SanitizePostgresProperties(r.Properties),
		)
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
		if err := s.saveSource(ctx, opts.DocumentName, internal); err != nil {
			return res, err
		}
	}

	return res, nil
}

func (s *GraphDBStorage) saveSource(ctx context.Context, document string, nodes map[string]int64) error {
	var docID int64
	err := s.conn.QueryRow(ctx, upsertDocumentSQL, util.SanitizePostgresText(document)).Scan(&docID)
	if err != nil {
		if isItemError(err) {
			logger.Warn("[Store] skipping source document", "document", document, "err", err)
			return nil
		}
		return fmt.Errorf("failed to save source document %q: %w", document, err)
	}

	ids := make([]int64, 0, len(nodes))
	for _, id := range nodes {
		ids = append(ids, id)
	}
	return store.ChunkRange(len(ids), 500, func(start, end int) error {
		for _, id := range ids[start:end] {
			if _, err := s.conn.Exec(ctx, insertMentionSQL, docID, id); err != nil {
				if isItemError(err) {
					logger.Warn("[Store] skipping mention", "document", document, "node", id, "err", err)
					continue
				}
				return fmt.Errorf("failed to link node to source document: %w", err)
			}
		}
		return nil
	})
}
