package ratelimit

import (
	"net"
	"net/http"
	"strconv"

	"github.com/getmockd/omnisend/pkg/httputil"
)

// Middleware returns an HTTP middleware that enforces per-client rate
// limiting keyed on the remote IP. If limiter is nil, the middleware passes
// through without limiting.
func Middleware(limiter *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Allow(ClientIP(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset, 10))

			if !d.Allowed {
				h.Set("Retry-After", strconv.FormatInt(d.Reset, 10))
				httputil.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of r.RemoteAddr. Proxy headers are handled
// upstream by chi's RealIP middleware.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
