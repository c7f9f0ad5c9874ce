package store

import (
	"regexp"

	"github.com/OFFIS-RIT/textgraph/pkg/common"
)

// ChunkRange calls fn for consecutive [start, end) windows of at most
// chunkSize elements.
func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

var invalidLabelChars = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// SanitizeLabel turns a node or relationship type into a safe identifier
// consisting of letters, digits and underscores. fallback is used when
// nothing is left.
func SanitizeLabel(label, fallback string) string {
	s := invalidLabelChars.ReplaceAllString(label, "_")
	if s == "" || s == "_" {
		return fallback
	}
	return s
}

// NodeTypeIndex maps node ids to their type.
func NodeTypeIndex(nodes []common.Node) map[string]string {
	idx := make(map[string]string, len(nodes))
	for _, n := range nodes {
		idx[n.ID] = n.Type
	}
	return idx
}
