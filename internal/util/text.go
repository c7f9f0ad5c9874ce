package util

import "strings"

// SanitizePostgresText drops invalid UTF-8 and NUL bytes, which PostgreSQL
// rejects in text and JSONB values.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// SanitizePostgresProperties applies SanitizePostgresText to every key and
// string value of props, descending into nested maps and slices. The input
// is not modified.
func SanitizePostgresProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[SanitizePostgresText(k)] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return SanitizePostgresText(val)
	case map[string]any:
		return SanitizePostgresProperties(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		for i, item := range val {
			out[i] = SanitizePostgresText(item)
		}
		return out
	default:
		return v
	}
}
