package parse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getmockd/omnisend/pkg/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValue(t *testing.T) {
	tests := []struct {
		in         string
		delims     []rune
		key, value string
		ok         bool
	}{
		{"a:b", nil, "a", "b", true},
		{"a=b", []rune{'=', ':'}, "a", "b", true},
		{"url:http://x", nil, "url", "http://x", true},
		{"novalue", nil, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			k, v, ok := KeyValue(tt.in, tt.delims...)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, k)
			assert.Equal(t, tt.value, v)
		})
	}
}

func TestHeaders(t *testing.T) {
	h, err := Headers([]string{"X-B: 2", " X-A :1 ", "X-B: 3", "Accept: a, b"})
	require.NoError(t, err)
	assert.Equal(t, request.Headers{
		{Name: "X-B", Value: "2"},
		{Name: "X-A", Value: "1"},
		{Name: "X-B", Value: "3"},
		{Name: "Accept", Value: "a, b"},
	}, h)

	h, err = Headers(nil)
	require.NoError(t, err)
	assert.Nil(t, h)

	for _, bad := range []string{"nocolon", ": empty-name"} {
		_, err := Headers([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestPayload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))

	tests := []struct {
		name    string
		in      string
		stdin   string
		want    string
		wantErr bool
	}{
		{"literal", "hello", "", "hello", false},
		{"empty", "", "", "", false},
		{"file", "@" + path, "", "from file", false},
		{"stdin", "@-", "from stdin", "from stdin", false},
		{"missing file", "@" + filepath.Join(dir, "missing"), "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Payload(tt.in, strings.NewReader(tt.stdin))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
