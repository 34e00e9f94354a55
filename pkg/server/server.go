package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"verdict-hq/verdict/pkg/api"
	"verdict-hq/verdict/pkg/api/middleware"
	"verdict-hq/verdict/pkg/config"
	"verdict-hq/verdict/pkg/security/auth"
	"verdict-hq/verdict/pkg/telemetry/tracing"
)

// Routes are the handlers mounted by the server. Analyze and Health are
// required; the rest are skipped when nil.
type Routes struct {
	Analyze http.Handler
	Health  http.Handler
	Ready   http.Handler
	Version http.Handler
	Metrics http.Handler

	// MetricsPath defaults to "/metrics".
	MetricsPath string
}

// Server is the HTTP server of the analysis service.
type Server struct {
	config     *config.ServerConfig
	routes     Routes
	auth       *auth.Middleware
	tracer     *tracing.Tracer
	writer     *api.Writer
	httpServer *http.Server

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         net.Addr
}

// Option configures a Server.
type Option func(*Server)

// WithAuth requires a verified caller on the analyze route.
func WithAuth(m *auth.Middleware) Option {
	return func(s *Server) { s.auth = m }
}

// WithTracer opens a server span for every request.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithWriter sets the renderer used for middleware failures.
func WithWriter(w *api.Writer) Option {
	return func(s *Server) { s.writer = w }
}

// NewServer creates a new server.
func NewServer(cfg *config.ServerConfig, routes Routes, opts ...Option) *Server {
	s := &Server{
		config:       cfg,
		routes:       routes,
		writer:       api.NewWriter(nil),
		shutdownChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start listens on the configured address and serves until ctx is done,
// Stop is called, or the listener fails. It then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	s.addr = ln.Addr()
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight analyses.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx := ctx
		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
			defer cancel()
		}

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("server stopped")
	})

	return shutdownErr
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	analyze := s.routes.Analyze
	if s.auth != nil {
		analyze = s.auth.Handle(analyze)
	}
	mux.Handle("/v1/analyze", analyze)
	mux.Handle("/health", s.routes.Health)
	if s.routes.Ready != nil {
		mux.Handle("/ready", s.routes.Ready)
	}
	if s.routes.Version != nil {
		mux.Handle("/version", s.routes.Version)
	}
	if s.routes.Metrics != nil {
		path := s.routes.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.routes.Metrics)
	}

	var handler http.Handler = mux

	// Innermost first.
	handler = middleware.TimeoutMiddleware(s.config.WriteTimeout, s.writer)(handler)
	handler = middleware.CORSMiddleware(middleware.CORSFromConfig(s.config.CORS))(handler)
	if s.tracer != nil {
		handler = tracing.HTTPMiddleware(s.tracer)(handler)
	}
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(s.writer)(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}
