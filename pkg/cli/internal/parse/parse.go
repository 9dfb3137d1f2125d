// Package parse provides string parsing utilities for CLI commands.
package parse

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/getmockd/omnisend/pkg/request"
)

// KeyValue parses a "key:value" or "key=value" string.
// If delimiters are provided, uses the first one found; otherwise defaults to ':'.
// Returns the key, value, and a boolean indicating success.
func KeyValue(s string, delimiters ...rune) (key, value string, ok bool) {
	if len(delimiters) == 0 {
		delimiters = []rune{':'}
	}

	for i, c := range s {
		for _, d := range delimiters {
			if c == d {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// Headers parses "Name: value" strings into ordered request headers.
// Names are trimmed, values have surrounding whitespace removed. Order and
// duplicates are preserved.
func Headers(headers []string) (request.Headers, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	result := make(request.Headers, 0, len(headers))
	for _, h := range headers {
		key, value, ok := KeyValue(h, ':')
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid header %q: expected \"Name: value\"", h)
		}
		result = append(result, request.Header{
			Name:  strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
	}
	return result, nil
}

// Payload resolves a payload argument. "@path" reads the file, "@-" reads
// stdin, anything else is used verbatim.
func Payload(s string, stdin io.Reader) (string, error) {
	if !strings.HasPrefix(s, "@") {
		return s, nil
	}
	name := s[1:]
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}
