// Package server exposes the regraph pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/KromDaniel/regraph/internal/config"
	"github.com/KromDaniel/regraph/internal/metrics"
	"github.com/KromDaniel/regraph/matcher"
	"github.com/KromDaniel/regraph/pkg/regraph"
)

// Options holds the server's dependencies.
type Options struct {
	Config config.ServerConfig

	// Build is the base for every build; Pattern and Flags come from the
	// request.
	Build regraph.Options

	MatchTimeout time.Duration
	Metrics      *metrics.Collector
	Logger       *slog.Logger
}

// Server serves the HTTP API.
type Server struct {
	config       config.ServerConfig
	build        regraph.Options
	matchTimeout time.Duration
	metrics      *metrics.Collector
	logger       *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// New creates a server. Nothing listens until Start is called.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Config.MetricsPath == "" {
		opts.Config.MetricsPath = "/metrics"
	}
	opts.Build.Metrics = opts.Metrics
	opts.Build.Logger = logger
	return &Server{
		config:       opts.Config,
		build:        opts.Build,
		matchTimeout: opts.MatchTimeout,
		metrics:      opts.Metrics,
		logger:       logger,
	}
}

// Handler returns the API with its middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.metrics.Middleware(pattern, h))
	}

	route("POST /api/render", s.handleRender)
	route("POST /api/analyze", s.handleAnalyze)
	route("POST /api/test", s.handleTest)
	route("POST /api/highlight", s.handleHighlight)
	route("POST /api/session", s.handleSession)
	route("GET /api/reference", s.handleReference)
	route("GET /api/reference/{key}", s.handleReferenceCategory)
	route("GET /api/tokens", s.handleTokens)
	route("GET /api/flags", s.handleFlags)
	route("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET "+s.config.MetricsPath, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like Start with an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.listener = ln
	srv := s.httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Addr returns the address the server listens on, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting requests and waits for running ones up to the
// configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("shutting down server", "timeout", timeout)
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) matchOptions() []matcher.Option {
	if s.matchTimeout == 0 {
		return nil
	}
	return []matcher.Option{matcher.WithTimeout(s.matchTimeout)}
}
