package util

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// MaxLogBodySize is the default maximum body size for logging (10KB).
const MaxLogBodySize = 10 * 1024

// TruncateBody truncates a string to maxSize bytes, appending "...(truncated)" if truncated.
// If maxSize <= 0, uses MaxLogBodySize.
func TruncateBody(data string, maxSize int) string {
	if maxSize <= 0 {
		maxSize = MaxLogBodySize
	}
	if len(data) > maxSize {
		return data[:maxSize] + "...(truncated)"
	}
	return data
}

// LossyString decodes b as UTF-8. Invalid byte sequences are replaced with
// U+FFFD instead of failing the decode.
func LossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		// The UTF-8 decoder only replaces, it never rejects input.
		return string(b)
	}
	return string(out)
}
