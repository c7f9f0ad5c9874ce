package loader

import (
	"context"
	"errors"
)

// DefaultDocumentName names text that was typed in rather than loaded.
const DefaultDocumentName = "Manual Input"

// ErrNoLoader is returned when a non-inline document has no TextLoader.
var ErrNoLoader = errors.New("loader: document has no loader")

type DocumentKind string

const (
	DocumentKindText DocumentKind = "text"
	DocumentKindFile DocumentKind = "file"
	DocumentKindURL  DocumentKind = "url"
	DocumentKindS3   DocumentKind = "s3"
)

// Document is a piece of input text for graph generation. Inline text is
// carried in Text; everything else is fetched by Loader from Path.
type Document struct {
	ID     string
	Name   string
	Path   string
	Kind   DocumentKind
	Text   string
	Loader TextLoader
}

// NewDocumentParams defines the input parameters for NewDocument.
//
// Name is the provenance name stored with the extracted nodes and
// defaults to Path.
type NewDocumentParams struct {
	ID     string
	Name   string
	Path   string
	Kind   DocumentKind
	Loader TextLoader
}

// NewTextDocument wraps inline text. An empty name becomes
// DefaultDocumentName.
func NewTextDocument(name, text string) Document {
	if name == "" {
		name = DefaultDocumentName
	}
	return Document{
		Name: name,
		Kind: DocumentKindText,
		Text: text,
	}
}

// NewDocument creates a Document that is read through a TextLoader.
func NewDocument(params NewDocumentParams) Document {
	name := params.Name
	if name == "" {
		name = params.Path
	}
	return Document{
		ID:     params.ID,
		Name:   name,
		Path:   params.Path,
		Kind:   params.Kind,
		Loader: params.Loader,
	}
}

// GetText returns the decoded UTF-8 text of the document.
//
// Example:
//
//	doc := loader.NewDocument(loader.NewDocumentParams{
//		Path:   "notes.txt",
//		Kind:   loader.DocumentKindFile,
//		Loader: io.NewIOTextLoader(),
//	})
//	text, err := doc.GetText(ctx)
func (d *Document) GetText(ctx context.Context) (string, error) {
	if d.Kind == DocumentKindText {
		return DecodeText([]byte(d.Text))
	}
	if d.Loader == nil {
		return "", ErrNoLoader
	}
	raw, err := d.Loader.LoadText(ctx, *d)
	if err != nil {
		return "", err
	}
	return DecodeText(raw)
}

// TextLoader loads the raw content of a Document. Implementations may read
// from disk, object storage or the web.
type TextLoader interface {
	LoadText(ctx context.Context, doc Document) ([]byte, error)
}

// CacheKey identifies a document in loader caches.
func CacheKey(doc Document) string {
	return doc.ID + ":" + doc.Path
}
