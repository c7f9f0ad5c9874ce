package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/OFFIS-RIT/textgraph/pkg/loader"

	"codeberg.org/readeck/go-readability/v2"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 10 << 20

// WebTextLoader loads content from web URLs. For HTML pages, readability
// extracts the main article text.
type WebTextLoader struct {
	client *http.Client
	cache  *loader.Cache
}

// NewWebTextLoader creates a new web loader with a 30 second timeout.
func NewWebTextLoader() *WebTextLoader {
	return NewWebTextLoaderWithClient(&http.Client{Timeout: 30 * time.Second})
}

// NewWebTextLoaderWithClient creates a web loader using the given client.
func NewWebTextLoaderWithClient(client *http.Client) *WebTextLoader {
	return &WebTextLoader{
		client: client,
		cache:  loader.NewCache(),
	}
}

// LoadText fetches doc.Path. HTML is reduced to its readable text, any
// other content type is returned as is.
func (l *WebTextLoader) LoadText(ctx context.Context, doc loader.Document) ([]byte, error) {
	return l.cache.Load(loader.CacheKey(doc), func() ([]byte, error) {
		pageURL, err := url.Parse(doc.Path)
		if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
			return nil, fmt.Errorf("invalid url: %q", doc.Path)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, doc.Path, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("failed to fetch url: status %d", resp.StatusCode)
		}

		body := io.LimitReader(resp.Body, maxBodySize)
		if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
			article, err := readability.FromReader(body, pageURL)
			if err != nil {
				return nil, fmt.Errorf("failed to parse html: %w", err)
			}
			var builder strings.Builder
			if err := article.RenderText(&builder); err != nil {
				return nil, fmt.Errorf("failed to render article text: %w", err)
			}
			return []byte(builder.String()), nil
		}

		return io.ReadAll(body)
	})
}
