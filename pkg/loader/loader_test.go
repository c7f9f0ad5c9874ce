package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		want    string
		wantErr error
	}{
		{"plain", []byte("Marie Curie"), "Marie Curie", nil},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "Radium"...), "Radium", nil},
		{"utf16 le bom", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi", nil},
		{"crlf", []byte("a\r\nb\rc"), "a\nb\nc", nil},
		{"invalid", []byte{0xC3, 0x28}, "", ErrNotUTF8},
		{"empty", nil, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type staticLoader struct {
	data []byte
	err  error
}

func (s staticLoader) LoadText(ctx context.Context, doc Document) ([]byte, error) {
	return s.data, s.err
}

func TestDocumentGetText(t *testing.T) {
	ctx := context.Background()

	inline := NewTextDocument("", "typed text")
	assert.Equal(t, DefaultDocumentName, inline.Name)
	text, err := inline.GetText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "typed text", text)

	file := NewDocument(NewDocumentParams{Path: "notes.txt", Kind: DocumentKindFile, Loader: staticLoader{data: []byte("from disk")}})
	assert.Equal(t, "notes.txt", file.Name)
	text, err = file.GetText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from disk", text)

	broken := NewDocument(NewDocumentParams{Path: "x", Kind: DocumentKindFile, Loader: staticLoader{err: errors.New("boom")}})
	_, err = broken.GetText(ctx)
	assert.EqualError(t, err, "boom")

	missing := NewDocument(NewDocumentParams{Path: "x", Kind: DocumentKindURL})
	_, err = missing.GetText(ctx)
	assert.ErrorIs(t, err, ErrNoLoader)
}

func TestCacheSharesLoads(t *testing.T) {
	c := NewCache()
	var calls atomic.Int32

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			b, err := c.Load("k", func() ([]byte, error) {
				calls.Add(1)
				return []byte("v"), nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "v", string(b))
		})
	}
	wg.Wait()

	assert.GreaterOrEqual(t, calls.Load(), int32(1))

	before := calls.Load()
	b, err := c.Load("k", func() ([]byte, error) {
		calls.Add(1)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "v", string(b))
	assert.Equal(t, before, calls.Load())
}

func TestCacheDoesNotKeepErrors(t *testing.T) {
	c := NewCache()
	_, err := c.Load("k", func() ([]byte, error) { return nil, errors.New("down") })
	require.Error(t, err)

	b, err := c.Load("k", func() ([]byte, error) { return []byte("up"), nil })
	require.NoError(t, err)
	assert.Equal(t, "up", string(b))
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCacheWithParams(CacheParams{MaxEntries: 2})
	var calls atomic.Int32
	load := func(key string) {
		_, err := c.Load(key, func() ([]byte, error) {
			calls.Add(1)
			return []byte(key), nil
		})
		require.NoError(t, err)
	}

	load("a")
	load("b")
	load("a")
	load("c")
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int32(3), calls.Load())

	load("a")
	assert.Equal(t, int32(3), calls.Load(), "a was used recently and should stay cached")
	load("b")
	assert.Equal(t, int32(4), calls.Load(), "b should have been evicted")
}

func TestCacheExpiresEntries(t *testing.T) {
	c := NewCacheWithParams(CacheParams{TTL: time.Minute})
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	version := "v1"
	load := func() string {
		b, err := c.Load("page", func() ([]byte, error) { return []byte(version), nil })
		require.NoError(t, err)
		return string(b)
	}

	assert.Equal(t, "v1", load())
	version = "v2"
	now = now.Add(30 * time.Second)
	assert.Equal(t, "v1", load())

	now = now.Add(time.Minute)
	assert.Equal(t, "v2", load())
}
