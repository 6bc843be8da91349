package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/creastudio/studiogate/internal/analytics"
	"github.com/creastudio/studiogate/internal/auth"
	"github.com/creastudio/studiogate/internal/authz"
	"github.com/creastudio/studiogate/internal/storage"
)

// Server is the studiogate HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler

	verifier  auth.Verifier
	roles     *authz.Resolver
	analytics *analytics.Logger
	db        *storage.DB // optional; nil when running against REST only
	logger    *slog.Logger
	version   string

	internalKeyHash string // empty disables /internal endpoints
	stats           gateStats
}

// gateStats counts terminal gate outcomes since process start.
type gateStats struct {
	allowed         atomic.Int64
	deniedNoSession atomic.Int64
	deniedRole      atomic.Int64
	bypassed        atomic.Int64
}

// ServerConfig holds all dependencies and configuration for creating a Server.
type ServerConfig struct {
	// Required dependencies.
	Verifier  auth.Verifier
	Roles     *authz.Resolver
	Analytics *analytics.Logger
	Logger    *slog.Logger

	// Optional dependencies.
	DB *storage.DB // health checks and stats; nil-safe

	// HTTP server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Version      string

	// Upstream application all non-gateway routes proxy to.
	Upstream *url.URL

	// Argon2id hash of the internal API key; empty disables /internal routes.
	InternalKeyHash string
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	s := &Server{
		verifier:        cfg.Verifier,
		roles:           cfg.Roles,
		analytics:       cfg.Analytics,
		db:              cfg.DB,
		logger:          cfg.Logger,
		version:         cfg.Version,
		internalKeyHash: cfg.InternalKeyHash,
	}

	mux := http.NewServeMux()

	// Gateway-owned routes.
	mux.HandleFunc("POST /api/ai-sessions", s.handleLogConversation)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /internal/stats", s.handleInternalStats)

	// Everything else is the upstream application's. Gated paths only reach
	// the proxy after the gate lets them through.
	mux.Handle("/", newUpstreamProxy(cfg.Upstream, cfg.Logger))

	// Outermost first: request ID, logging, tracing, then the gate.
	var handler http.Handler = mux
	handler = s.gateMiddleware(handler)
	handler = tracingMiddleware(handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = requestIDMiddleware(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("studiogate listening", "addr", s.httpServer.Addr, "version", s.version)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, draining in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
