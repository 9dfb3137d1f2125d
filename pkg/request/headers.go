package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
)

// Header is a single HTTP header as given by the caller.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered list of headers. Its JSON form is an object; decoding
// keeps the order of the document, and names are stored as given.
type Headers []Header

// Get returns the first value for name, compared case-insensitively.
func (h Headers) Get(name string) (string, bool) {
	for _, hdr := range h {
		if equalFoldASCII(hdr.Name, name) {
			return hdr.Value, true
		}
	}
	return "", false
}

// MarshalJSON writes the headers as an object in list order.
func (h Headers) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, hdr := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(hdr.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(hdr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of string values, keeping document order.
func (h *Headers) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*h = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("headers must be an object")
	}

	out := Headers{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("header name must be a string")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("header %q: value must be a string", name)
		}
		out = append(out, Header{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*h = out
	return nil
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func joinHostPort(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}
