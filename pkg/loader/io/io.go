package io

import (
	"context"
	"fmt"
	"os"

	"github.com/OFFIS-RIT/textgraph/pkg/loader"
)

// IOTextLoader reads documents from the local filesystem with caching.
type IOTextLoader struct {
	cache *loader.Cache
}

// NewIOTextLoader creates a new filesystem-based loader.
func NewIOTextLoader() *IOTextLoader {
	return &IOTextLoader{cache: loader.NewCache()}
}

// LoadText reads doc.Path from disk. Results are cached.
func (l *IOTextLoader) LoadText(ctx context.Context, doc loader.Document) ([]byte, error) {
	return l.cache.Load(loader.CacheKey(doc), func() ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := os.ReadFile(doc.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return b, nil
	})
}
