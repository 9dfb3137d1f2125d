package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getmockd/omnisend/pkg/api/types"
	"github.com/getmockd/omnisend/pkg/httputil"
	"github.com/getmockd/omnisend/pkg/logging"
	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/getmockd/omnisend/pkg/ratelimit"
	"github.com/getmockd/omnisend/pkg/request"
	"github.com/getmockd/omnisend/pkg/requestlog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Defaults for Options.
const (
	DefaultAddr        = "127.0.0.1:8700"
	DefaultMaxBodySize = 1 << 20
	shutdownTimeout    = 10 * time.Second
)

// Invoker runs one tagged request document. *dispatch.Dispatcher satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, data []byte) ([]byte, error)
}

// Options configures a Server.
type Options struct {
	Addr        string
	MaxBodySize int64
	Version     string

	// Gatherer backs /metrics. Nil serves the default registry.
	Gatherer prometheus.Gatherer

	// History backs /v1/requests. Nil leaves those routes unmounted.
	History requestlog.Store

	// RateLimit guards /v1/send. Nil disables rate limiting.
	RateLimit *ratelimit.Limiter

	// Logger receives access logs. Nil disables logging.
	Logger *slog.Logger
}

// Server is the HTTP front of a dispatcher.
type Server struct {
	invoker Invoker
	opts    Options
	log     *slog.Logger
	started time.Time
	router  chi.Router
}

// New creates a Server.
func New(invoker Invoker, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	s := &Server{
		invoker: invoker,
		opts:    opts,
		log:     opts.Logger,
		started: time.Now(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.With(ratelimit.Middleware(s.opts.RateLimit)).Post("/v1/send", s.handleSend)
	if s.opts.History != nil {
		r.Route("/v1/requests", func(r chi.Router) {
			r.Get("/", s.handleListRequests)
			r.Delete("/", s.handleClearRequests)
			r.Get("/{id}", s.handleGetRequest)
		})
	}
	r.Get("/v1/protocols", s.handleProtocols)
	r.Get("/v1/schema", s.handleSchema)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on opts.Addr until ctx is done, then shuts down
// gracefully. ready, if not nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, ready func(addr string)) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.log.Info("api listening", "addr", ln.Addr().String())
	if ready != nil {
		ready(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.log.Info("api stopped")
	return nil
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return
		}
		httputil.WriteBadRequest(w, "invalid_body", err.Error())
		return
	}

	out, err := s.invoker.Invoke(r.Context(), body)
	if err != nil {
		httputil.WriteProtocolError(w, err)
		return
	}
	httputil.WriteRawJSON(w, http.StatusOK, out)
}

func (s *Server) handleProtocols(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, types.NewProtocolListResponse())
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteRawJSON(w, http.StatusOK, request.Schema())
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &requestlog.Filter{
		Outcome:   q.Get("outcome"),
		MQTTTopic: q.Get("topic"),
	}

	if v := q.Get("protocol"); v != "" {
		p, ok := protocol.Parse(v)
		if !ok {
			httputil.WriteBadRequest(w, "invalid_protocol", "unknown protocol "+strconv.Quote(v))
			return
		}
		filter.Protocol = p
	}
	var ok bool
	if filter.Limit, ok = queryInt(w, q.Get("limit"), "limit"); !ok {
		return
	}
	if filter.Offset, ok = queryInt(w, q.Get("offset"), "offset"); !ok {
		return
	}

	matched := *filter
	matched.Limit, matched.Offset = 0, 0
	httputil.WriteOK(w, types.RequestListResponse{
		Requests: s.opts.History.List(filter),
		Total:    len(s.opts.History.List(&matched)),
	})
}

// queryInt parses an optional non-negative query parameter, writing a 400
// when it is malformed.
func queryInt(w http.ResponseWriter, v, name string) (int, bool) {
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		httputil.WriteBadRequest(w, "invalid_"+name, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	entry := s.opts.History.Get(chi.URLParam(r, "id"))
	if entry == nil {
		httputil.WriteError(w, http.StatusNotFound, "not_found", "request not found")
		return
	}
	httputil.WriteOK(w, entry)
}

func (s *Server) handleClearRequests(w http.ResponseWriter, _ *http.Request) {
	s.opts.History.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, types.HealthResponse{
		Status:    "ok",
		Version:   s.opts.Version,
		Uptime:    int(time.Since(s.started).Seconds()),
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.log.Debug("api request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
