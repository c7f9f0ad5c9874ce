package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/OFFIS-RIT/textgraph/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	nodes    []common.StoredNode
	rels     []common.StoredRelationship
	nodesErr error
	relsErr  error
}

func (f *fakeReader) ListEntities(ctx context.Context) ([]common.StoredNode, error) {
	return f.nodes, f.nodesErr
}

func (f *fakeReader) ListRelationships(ctx context.Context) ([]common.StoredRelationship, error) {
	return f.rels, f.relsErr
}

func TestReadAccumulatedGraphKeepsIsolatedNodes(t *testing.T) {
	r := &fakeReader{
		nodes: []common.StoredNode{
			{InternalID: "1", ID: "X", Type: "Concept"},
			{InternalID: "2", ID: "A", Type: "Person", Properties: map[string]any{common.PropSourceDocument: "doc.txt"}},
			{InternalID: "3", ID: "B", Type: "Organization"},
		},
		rels: []common.StoredRelationship{
			{SourceInternalID: "2", TargetInternalID: "3", Type: "WORKS_AT"},
		},
	}

	g, err := ReadAccumulatedGraph(context.Background(), r)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Relationships, 1)
}

func TestReadAccumulatedGraphKeepsSameIDUnderDifferentInternalIDs(t *testing.T) {
	r := &fakeReader{
		nodes: []common.StoredNode{
			{InternalID: "1", ID: "Apple", Type: "Organization"},
			{InternalID: "2", ID: "Apple", Type: "Product"},
		},
		rels: []common.StoredRelationship{
			{SourceInternalID: "1", TargetInternalID: "2", Type: "CREATED"},
			{SourceInternalID: "1", TargetInternalID: "99", Type: "RELATED_TO"},
		},
	}

	g, err := ReadAccumulatedGraph(context.Background(), r)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 2)
	require.Len(t, g.Relationships, 1)
	assert.Equal(t, "CREATED", g.Relationships[0].Type)
}

func TestReadAccumulatedGraphErrors(t *testing.T) {
	boom := errors.New("connection refused")

	g, err := ReadAccumulatedGraph(context.Background(), &fakeReader{nodesErr: boom})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, g)

	g, err = ReadAccumulatedGraph(context.Background(), &fakeReader{relsErr: boom})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, g)
}
