package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/OFFIS-RIT/textgraph/pkg/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	objects map[string]string
	calls   int
	bucket  string
}

func (f *fakeGetter) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls++
	f.bucket = *params.Bucket
	body, ok := f.objects[*params.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3TextLoader(t *testing.T) {
	fake := &fakeGetter{objects: map[string]string{"docs/curie.txt": "Marie Curie"}}
	l := NewS3TextLoaderWithClient("documents", fake)

	doc := loader.NewDocument(loader.NewDocumentParams{Path: "docs/curie.txt", Kind: loader.DocumentKindS3, Loader: l})
	for range 2 {
		text, err := doc.GetText(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Marie Curie", text)
	}
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "documents", fake.bucket)

	missing := loader.NewDocument(loader.NewDocumentParams{Path: "docs/none.txt", Kind: loader.DocumentKindS3, Loader: l})
	_, err := missing.GetText(context.Background())
	assert.ErrorContains(t, err, "docs/none.txt")
}
