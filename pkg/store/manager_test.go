package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/OFFIS-RIT/textgraph/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	closed atomic.Bool
	saves  atomic.Int32
}

func (f *fakeStore) SaveGraph(ctx context.Context, g *common.Graph, opts SaveOptions) (SaveResult, error) {
	f.saves.Add(1)
	return SaveResult{NodesSaved: len(g.Nodes), RelationshipsSaved: len(g.Relationships)}, nil
}

func (f *fakeStore) ListEntities(ctx context.Context) ([]common.StoredNode, error) {
	return []common.StoredNode{{InternalID: "1", ID: "A", Type: "Person"}}, nil
}

func (f *fakeStore) ListRelationships(ctx context.Context) ([]common.StoredRelationship, error) {
	return nil, nil
}

func (f *fakeStore) Close(ctx context.Context) error {
	f.closed.Store(true)
	return nil
}

func TestManagerNotConfigured(t *testing.T) {
	m := NewManager("none", nil)
	assert.False(t, m.Configured())

	_, err := m.Get(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = m.ListEntities(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.NoError(t, m.Close(context.Background()))
}

func TestManagerOpensOnceAndReuses(t *testing.T) {
	var opens atomic.Int32
	fs := &fakeStore{}
	m := NewManager("fake", func(ctx context.Context) (GraphStore, error) {
		opens.Add(1)
		time.Sleep(10 * time.Millisecond)
		return fs, nil
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := m.Get(context.Background())
			assert.NoError(t, err)
			assert.Same(t, fs, s)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), opens.Load())

	g := &common.Graph{Nodes: []common.Node{{ID: "A"}, {ID: "B"}}, Relationships: []common.Relationship{{SourceID: "A", TargetID: "B", Type: "KNOWS"}}}
	res, err := m.SaveGraph(context.Background(), g, SaveOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.NodesSaved)
	assert.Equal(t, int32(1), opens.Load())
}

func TestManagerRetriesAfterFailedOpen(t *testing.T) {
	var attempts atomic.Int32
	fs := &fakeStore{}
	m := NewManager("fake", func(ctx context.Context) (GraphStore, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}
		return fs, nil
	})

	_, err := m.Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	s, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, fs, s)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestManagerClose(t *testing.T) {
	fs := &fakeStore{}
	m := NewManager("fake", func(ctx context.Context) (GraphStore, error) { return fs, nil })

	_, err := m.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Close(context.Background()))
	assert.True(t, fs.closed.Load())
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "Person", want: "Person"},
		{in: "Cell_type", want: "Cell_type"},
		{in: "Works At", want: "Works_At"},
		{in: "a`b) DETACH DELETE n //", want: "a_b_DETACH_DELETE_n_"},
		{in: "", want: "Entity"},
		{in: "!!", want: "Entity"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeLabel(tt.in, "Entity"), tt.in)
	}
}

func TestChunkRange(t *testing.T) {
	var windows [][2]int
	err := ChunkRange(7, 3, func(start, end int) error {
		windows = append(windows, [2]int{start, end})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 3}, {3, 6}, {6, 7}}, windows)
}
