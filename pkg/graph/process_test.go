package graph

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, fake *fakeAI, maxChunks int) *GraphClient {
	t.Helper()
	client, err := NewGraphClient(NewGraphClientParams{
		AIClient:           fake,
		ChunkSize:          1500,
		ChunkOverlap:       200,
		MaxChunks:          maxChunks,
		Schema:             schema.Default(),
		StrictMode:         true,
		ParallelAiRequests: 2,
		Now: func() time.Time {
			return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
		},
	})
	require.NoError(t, err)
	return client
}

func TestGenerateGraph(t *testing.T) {
	fake := &fakeAI{responses: map[string]string{"curie": curieResponse}}
	client := newTestClient(t, fake, 10)

	res, err := client.GenerateGraph(context.Background(), "Marie curie discovered radium.", "notes.txt")
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 1, res.Chunks)
	assert.Empty(t, res.Notices)
	assert.Equal(t, 1, res.Metrics.Requests)
	assert.Equal(t, 15, res.Metrics.TotalTokens)

	// Warsaw was dropped in strict mode, so only the CREATED edge survives.
	require.Len(t, res.Graph.Relationships, 1)
	assert.Equal(t, "CREATED", res.Graph.Relationships[0].Type)
	require.Len(t, res.Graph.Nodes, 2)
	for _, n := range res.Graph.Nodes {
		assert.Equal(t, "notes.txt", n.Properties[common.PropSourceDocument])
		assert.Equal(t, "2026-03-14T09:26:53Z", n.Properties[common.PropCreatedAt])
	}
}

func TestGenerateGraphEmptyText(t *testing.T) {
	client := newTestClient(t, &fakeAI{}, 10)

	for _, text := range []string{"", "  \n\t "} {
		res, err := client.GenerateGraph(context.Background(), text, "")
		assert.ErrorIs(t, err, ErrEmptyText)
		assert.Nil(t, res)
	}
}

func TestGenerateGraphExtractionFailure(t *testing.T) {
	fake := &fakeAI{fail: "t00"}
	client := newTestClient(t, fake, 10)

	text, _ := wordText(4000)
	res, err := client.GenerateGraph(context.Background(), text, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errFakeModel)
	assert.Nil(t, res)
}

func TestGenerateGraphReportsChunkCap(t *testing.T) {
	client := newTestClient(t, &fakeAI{}, 2)

	text, _ := wordText(6000)
	res, err := client.GenerateGraph(context.Background(), text, "")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Chunks)
	require.Len(t, res.Notices, 1)
	assert.True(t, strings.Contains(res.Notices[0], "3000"))
	assert.Empty(t, res.Graph.Nodes)
}
