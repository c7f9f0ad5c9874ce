package loader

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNotUTF8 is returned for input that is not valid UTF-8 text.
var ErrNotUTF8 = errors.New("loader: input is not valid UTF-8")

// DecodeText strips a byte order mark, rejects invalid UTF-8 and
// normalizes line endings to "\n". UTF-16 input with a BOM is converted.
func DecodeText(raw []byte) (string, error) {
	if !utf8.Valid(raw) && !hasUTF16BOM(raw) {
		return "", ErrNotUTF8
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return "", err
	}
	text := strings.ReplaceAll(string(decoded), "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}

func hasUTF16BOM(raw []byte) bool {
	return len(raw) >= 2 &&
		((raw[0] == 0xFE && raw[1] == 0xFF) || (raw[0] == 0xFF && raw[1] == 0xFE))
}
