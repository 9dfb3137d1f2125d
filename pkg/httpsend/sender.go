package httpsend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/omnisend/pkg/logging"
	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/getmockd/omnisend/pkg/request"
	"github.com/getmockd/omnisend/pkg/util"
	"golang.org/x/net/http/httpguts"
)

// DefaultTimeout bounds a whole request, including reading the body.
const DefaultTimeout = 30 * time.Second

// Options configures a Sender.
type Options struct {
	// Timeout bounds one request. Zero uses DefaultTimeout.
	Timeout time.Duration

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger
}

// Sender issues HTTP requests.
type Sender struct {
	timeout time.Duration
	log     *slog.Logger
}

// New creates a Sender.
func New(opts Options) *Sender {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Sender{timeout: opts.Timeout, log: opts.Logger}
}

// ParseMethod validates an HTTP method. The method must be a non-empty token;
// its case is preserved, so "get" is sent as an extension method.
func ParseMethod(s string) (string, error) {
	if s == "" {
		return "", protocol.Validation(protocol.ProtocolHTTP, "parse", "invalid method: empty")
	}
	if !isToken(s) {
		return "", protocol.Validation(protocol.ProtocolHTTP, "parse", "invalid method: %q", s)
	}
	return s, nil
}

func isToken(s string) bool {
	for _, r := range s {
		if !httpguts.IsTokenRune(r) {
			return false
		}
	}
	return true
}

// Send performs req and returns the status code and the body as text.
func (s *Sender) Send(ctx context.Context, req request.HTTP) (request.HTTPResult, error) {
	method, err := ParseMethod(req.Method)
	if err != nil {
		return request.HTTPResult{}, err
	}

	var body io.Reader
	if req.Body != nil {
		body = strings.NewReader(*req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return request.HTTPResult{}, protocol.Wrap(protocol.KindValidation, protocol.ProtocolHTTP, "build", err, "invalid request")
	}

	for _, h := range req.Headers {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return request.HTTPResult{}, protocol.Validation(protocol.ProtocolHTTP, "build", "invalid header name: %q", h.Name)
		}
		if !httpguts.ValidHeaderFieldValue(h.Value) {
			return request.HTTPResult{}, protocol.Validation(protocol.ProtocolHTTP, "build", "invalid value for header %q", h.Name)
		}
		if strings.EqualFold(h.Name, "Host") {
			httpReq.Host = h.Value
			continue
		}
		httpReq.Header.Add(h.Name, h.Value)
	}

	client := s.newClient()
	defer client.CloseIdleConnections()

	s.log.Debug("sending HTTP request",
		"method", method,
		"url", req.URL,
		"headers", len(req.Headers),
		"body", util.TruncateBody(deref(req.Body), 0))

	resp, err := client.Do(httpReq)
	if err != nil {
		return request.HTTPResult{}, classify(err, "send", "request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return request.HTTPResult{}, classify(err, "receive", "failed to read response body")
	}

	text := util.LossyString(data)
	s.log.Debug("received HTTP response",
		"status", resp.StatusCode,
		"body", util.TruncateBody(text, 0))

	return request.HTTPResult{Status: resp.StatusCode, Body: text}, nil
}

// newClient builds a client that is used for exactly one request.
func (s *Sender) newClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableKeepAlives = true
	return &http.Client{
		Timeout:   s.timeout,
		Transport: transport,
	}
}

// classify maps a client error to a timeout or transport error.
func classify(err error, op, message string) error {
	kind := protocol.KindTransport
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = protocol.KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = protocol.KindTimeout
	}
	return protocol.Wrap(kind, protocol.ProtocolHTTP, op, err, message)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
