// Package http serves the transaction REST resource.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"fintrack/internal/backend"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

const (
	collectionPath = "/api/transaction"
	itemPath       = "/api/transaction/{id}"
	maxBodyBytes   = 1 << 20
)

// Options configures the middleware chain.
type Options struct {
	CORSOrigin         string
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	backend  backend.Backend
	ready    backend.ReadyFunc
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	logger   *log.StructuredLogger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, b backend.Backend, ready backend.ReadyFunc, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	if ready == nil {
		ready = func(context.Context) error { return nil }
	}

	detector := security.NewDetector()
	s := &Server{
		backend:  b,
		ready:    ready,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: detector,
		tracer:   trace.NewMiddleware(logger, detector.ExtractClientIP),
		logger:   log.NewStructuredLogger(logger),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	r.HandleFunc(collectionPath, s.handleList).Methods(http.MethodGet)
	r.Handle(collectionPath, s.writes(s.handleCreate)).Methods(http.MethodPost)
	r.HandleFunc(itemPath, s.handleGet).Methods(http.MethodGet)
	r.Handle(itemPath, s.writes(s.handleUpdate)).Methods(http.MethodPut)
	r.Handle(itemPath, s.writes(s.handleDelete)).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Innermost first: each line wraps the ones above it, so log.Middleware
	// runs first on every request. CORS sits directly on the router, so
	// preflights are answered after tracing and security headers but before
	// route matching.
	var h http.Handler = r
	h = security.CORS(security.DefaultCORSConfig(opts.CORSOrigin))(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = detector.Middleware(h)
	h = log.RequestIDMiddleware(trace.RequestID)(h)
	h = s.tracer.Middleware(h)
	h = log.Middleware(logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// writes applies the per-IP rate limit; reads are never throttled.
func (s *Server) writes(next http.HandlerFunc) http.Handler {
	return s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.LogError(r.Context(), "Rate limit exceeded", errors.New("too many requests"),
			log.ComponentRateLimit, r.Method, log.NewFields().WithClientIP(s.detector.ExtractClientIP(r)))
		w.Header().Set("Retry-After", "60")
		writeText(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	})(next)
}

// Shutdown stops the limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ready(ctx); err != nil {
		s.logger.LogError(ctx, "Readiness check failed", err, log.ComponentStorage, "ready", nil)
		writeText(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	writeText(w, http.StatusOK, "ready")
}
