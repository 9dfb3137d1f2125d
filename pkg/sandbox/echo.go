package sandbox

import (
	"io"
	"net/http"

	"github.com/getmockd/omnisend/pkg/httputil"
	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/getmockd/omnisend/pkg/util"
	"github.com/go-chi/chi/v5"
)

const maxEchoBody = 1 << 20

// EchoResponse is the body returned by /echo.
type EchoResponse struct {
	Method  string              `json:"method"`
	Path    string              `json:"path"`
	Query   string              `json:"query,omitempty"`
	Headers map[string][]string `json:"headers"`
	Body    string              `json:"body"`
}

func (s *Sandbox) echoRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/ping", s.handlePing)
	r.HandleFunc("/echo", s.handleEcho)
	r.HandleFunc("/echo/*", s.handleEcho)
	return r
}

func (s *Sandbox) handlePing(w http.ResponseWriter, r *http.Request) {
	s.emit(Event{Protocol: protocol.ProtocolHTTP, From: r.RemoteAddr, Target: r.URL.Path})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "pong")
}

func (s *Sandbox) handleEcho(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEchoBody))
	if err != nil {
		httputil.WriteBadRequest(w, "invalid_body", err.Error())
		return
	}

	s.emit(Event{Protocol: protocol.ProtocolHTTP, From: r.RemoteAddr, Target: r.URL.Path, Payload: body})

	headers := r.Header.Clone()
	if r.Host != "" {
		headers["Host"] = []string{r.Host}
	}

	httputil.WriteOK(w, EchoResponse{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Headers: headers,
		Body:    util.LossyString(body),
	})
}
