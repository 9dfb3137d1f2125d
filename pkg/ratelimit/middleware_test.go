package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func serve(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/send", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter(Config{Rate: 1, Burst: 2})
	h := Middleware(l)(okHandler())

	rec := serve(h, "10.0.0.1:5000")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Empty(t, rec.Header().Get("Retry-After"))

	rec = serve(h, "10.0.0.1:5001")
	assert.Equal(t, http.StatusNoContent, rec.Code, "port is not part of the key")

	rec = serve(h, "10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body["error"])

	rec = serve(h, "10.0.0.2:5000")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMiddleware_NilLimiter(t *testing.T) {
	h := Middleware(nil)(okHandler())
	for range 10 {
		rec := serve(h, "10.0.0.1:5000")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"10.0.0.1:5000", "10.0.0.1"},
		{"[::1]:5000", "::1"},
		{"10.0.0.9", "10.0.0.9"},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
