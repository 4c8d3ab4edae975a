// Package api serves the query surface over HTTP.
//
// Endpoints:
//
//	GET  /health  service and database status
//	POST /query   keyword-matched mock retrieval answers
//	GET  /        endpoint listing
//
// Answers are canned until the retrieval backend goes live; the handler
// shape, sources, and confidence fields already match what a real
// backend will return.
package api

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/twinops/twindex/internal/log"
)

// Version is reported by /health and /.
const Version = "1.0.0"

const (
	// ShutdownTimeout is the maximum wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads to stop slowloris clients.
	ReadHeaderTimeout = 10 * time.Second

	ReadTimeout  = 30 * time.Second
	WriteTimeout = 60 * time.Second
	IdleTimeout  = 120 * time.Second
)

// Pinger is the database liveness probe the server needs. *pgxpool.Pool
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerConfig carries everything the server depends on. There is no
// package-level state; two servers with different configs can coexist
// in one process.
type ServerConfig struct {
	Addr        string
	DB          Pinger     // nil means the database is down
	Logger      log.Logger // nil means no logging
	CORSOrigins []string   // exact origins allowed on browser requests
	TrustProxy  bool       // trust X-Forwarded-For for rate limiting
	RateLimit   rate.Limit // per-IP requests per second, 0 = default
	RateBurst   int
}

// Server is the HTTP server for the query API.
type Server struct {
	cfg    ServerConfig
	mux    *http.ServeMux
	logger log.Logger
}

// NewServer creates a server with all routes registered.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 20
	}

	s := &Server{cfg: cfg, mux: http.NewServeMux(), logger: cfg.Logger}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /query", s.handleQuery)
	s.mux.HandleFunc("GET /{$}", s.handleRoot)

	return s
}

// Handler returns the route mux wrapped in the middleware stack.
// Order outermost-in: recovery, request id, logging, CORS, rate limit.
func (s *Server) Handler() http.Handler {
	limiter := newIPRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst, s.cfg.TrustProxy)
	return chain(s.mux,
		s.recoveryMiddleware,
		s.requestIDMiddleware,
		s.loggingMiddleware,
		s.corsMiddleware,
		limiter.middleware,
	)
}

// Run starts the server and blocks until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// databaseUp reports whether the database answers a ping within a short
// deadline.
func (s *Server) databaseUp(ctx context.Context) bool {
	if s.cfg.DB == nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.cfg.DB.Ping(pingCtx) == nil
}
