package io

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/textgraph/pkg/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIOTextLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Marie Curie discovered radium."), 0o644))

	l := NewIOTextLoader()
	doc := loader.NewDocument(loader.NewDocumentParams{ID: "1", Path: path, Kind: loader.DocumentKindFile, Loader: l})

	text, err := doc.GetText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Marie Curie discovered radium.", text)

	// cached content survives the file going away
	require.NoError(t, os.Remove(path))
	text, err = doc.GetText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Marie Curie discovered radium.", text)
}

func TestIOTextLoaderMissingFile(t *testing.T) {
	l := NewIOTextLoader()
	doc := loader.NewDocument(loader.NewDocumentParams{Path: filepath.Join(t.TempDir(), "nope.txt"), Kind: loader.DocumentKindFile, Loader: l})
	_, err := doc.GetText(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
