package graph

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/textsplitter"
)

// DefaultSeparators is the recursive split priority: paragraph, line,
// sentence, word, character.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

const (
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 200
	DefaultMaxChunks    = 10
)

// ChunkerParams configures a Chunker. Sizes are measured in characters
// (runes), not tokens.
type ChunkerParams struct {
	ChunkSize    int
	ChunkOverlap int
	MaxChunks    int
	Separators   []string

	// TokenEncoder names the tiktoken encoding used for the token estimate
	// that is logged per split. Empty disables the estimate.
	TokenEncoder string
}

// Chunker splits text into overlapping chunks and caps their number.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	maxChunks    int
	separators   []string
	tokenEncoder string
}

// ChunkResult is the outcome of a split.
//
// When the first pass produced more than MaxChunks chunks, Capped is set,
// EffectiveChunkSize holds the enlarged size used for the second pass and
// Dropped counts the chunks discarded from the tail.
type ChunkResult struct {
	Chunks             []common.Chunk
	Capped             bool
	Dropped            int
	EffectiveChunkSize int
	Notices            []string
}

// NewChunker validates params and fills in defaults.
func NewChunker(params ChunkerParams) (*Chunker, error) {
	size := params.ChunkSize
	if size == 0 {
		size = DefaultChunkSize
	}
	if size < 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	maxChunks := params.MaxChunks
	if maxChunks == 0 {
		maxChunks = DefaultMaxChunks
	}
	if maxChunks < 0 {
		return nil, fmt.Errorf("max chunks must be positive, got %d", maxChunks)
	}
	if params.ChunkOverlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", params.ChunkOverlap)
	}
	seps := params.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}

	return &Chunker{
		chunkSize:    size,
		chunkOverlap: params.ChunkOverlap,
		maxChunks:    maxChunks,
		separators:   seps,
		tokenEncoder: params.TokenEncoder,
	}, nil
}

// overlapFor keeps the overlap strictly below the chunk size.
func (c *Chunker) overlapFor(size int) int {
	if c.chunkOverlap >= size {
		return size / 2
	}
	return c.chunkOverlap
}

func (c *Chunker) split(text string, size int) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(c.overlapFor(size)),
		textsplitter.WithSeparators(c.separators),
		// the separator moves to the head of the next piece instead of being dropped
		textsplitter.WithKeepSeparator(true),
	)
	parts, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// Split divides text into chunks of at most the configured size (best
// effort) with consecutive chunks sharing up to the configured overlap.
//
// If the first pass yields more than MaxChunks chunks, the size is raised
// to ceil(len(text)/MaxChunks), the text is split again and the result is
// truncated to MaxChunks. Truncation is reported through Notices and a
// warning, never through an error.
func (c *Chunker) Split(text string) (*ChunkResult, error) {
	res := &ChunkResult{EffectiveChunkSize: c.chunkSize}
	if strings.TrimSpace(text) == "" {
		return res, nil
	}

	parts, err := c.split(text, c.chunkSize)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	if len(parts) > c.maxChunks {
		first := len(parts)
		textLen := utf8.RuneCountInString(text)
		size := (textLen + c.maxChunks - 1) / c.maxChunks

		parts, err = c.split(text, size)
		if err != nil {
			return nil, fmt.Errorf("failed to split text: %w", err)
		}

		res.Capped = true
		res.EffectiveChunkSize = size
		if len(parts) > c.maxChunks {
			res.Dropped = len(parts) - c.maxChunks
			parts = parts[:c.maxChunks]
		}

		notice := fmt.Sprintf(
			"Text produced %d chunks, more than the limit of %d. Chunk size was raised to %d characters and %d trailing chunk(s) were dropped.",
			first, c.maxChunks, size, res.Dropped,
		)
		res.Notices = append(res.Notices, notice)
		logger.Warn("[Graph] chunk limit reached",
			"chunks", first, "max", c.maxChunks, "chunk_size", size, "dropped", res.Dropped)
	}

	res.Chunks = make([]common.Chunk, len(parts))
	for i, p := range parts {
		res.Chunks[i] = common.Chunk{Text: p, Index: i, Total: len(parts)}
	}

	c.logTokenEstimate(res.Chunks)
	return res, nil
}

func (c *Chunker) logTokenEstimate(chunks []common.Chunk) {
	if c.tokenEncoder == "" || len(chunks) == 0 {
		return
	}
	enc, err := tiktoken.GetEncoding(c.tokenEncoder)
	if err != nil {
		logger.Debug("[Graph] token encoder unavailable", "encoder", c.tokenEncoder, "err", err)
		return
	}
	total, largest := 0, 0
	for _, ch := range chunks {
		n := len(enc.Encode(ch.Text, nil, nil))
		total += n
		largest = max(largest, n)
	}
	logger.Debug("[Graph] chunk token estimate", "chunks", len(chunks), "tokens", total, "largest", largest)
}
