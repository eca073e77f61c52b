// Package server exposes the template pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/tacogips/stackzip/internal/app"
	"github.com/tacogips/stackzip/internal/config"
	"github.com/tacogips/stackzip/internal/progress"
)

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

// Server wraps the HTTP listener and the handlers serving template archives.
type Server struct {
	cfg      config.ServerConfig
	pipeline *app.Pipeline
	hub      *progress.Hub
	limiter  *ipLimiter
	logger   *slog.Logger
	clock    func() time.Time

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	status    ServerStatus
	startTime time.Time
	// draining is closed when Shutdown begins; long-lived streams end on it.
	draining chan struct{}
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control rate limiting time.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithProgressHub shares a progress hub with other components.
func WithProgressHub(h *progress.Hub) Option {
	return func(s *Server) {
		if h != nil {
			s.hub = h
		}
	}
}

// NewServer prepares a server for pipeline. The rate limiter and the
// catalog behind pipeline are shared by every request.
func NewServer(cfg config.ServerConfig, limits config.RateLimitConfig, pipeline *app.Pipeline, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		hub:      progress.NewHub(64),
		logger:   slog.New(slog.DiscardHandler),
		clock:    time.Now,
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.limiter = newIPLimiter(limits, s.clock)
	return s
}

// Handler returns the complete HTTP handler including middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/templates", s.handleListTemplates)
	mux.HandleFunc("POST /api/templates", s.withRateLimit(s.handleGenerateCombined))
	mux.HandleFunc("POST /api/generate-combined", s.withRateLimit(s.handleGenerateCombined))
	mux.HandleFunc("GET /api/generate-template/{template}", s.withRateLimit(s.handleGenerateTemplate))
	mux.HandleFunc("GET /api/progress/{id}", s.handleProgress)

	return withRequestID(withCORS(s.cfg, withAccessLog(s.logger, mux)))
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("server: already started")
	}
	addr := s.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = time.Now()
	s.draining = make(chan struct{})

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Duration(s.cfg.ReadHeaderTimeout) * time.Second,
	}
	if ctx != nil {
		// Request contexts keep ctx's values but not its cancellation, so a
		// canceled ctx does not cut off requests Shutdown is draining.
		base := context.WithoutCancel(ctx)
		server.BaseContext = func(net.Listener) context.Context { return base }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve error", "error", err)
		}
	}()
	s.logger.Info("listening", "addr", listener.Addr().String())
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight
// requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	if s.listener == nil || server == nil {
		s.mu.Unlock()
		return nil
	}
	if s.status != StatusDraining {
		s.status = StatusDraining
		close(s.draining)
	}
	s.mu.Unlock()

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), time.Duration(s.cfg.ShutdownTimeout)*time.Second)
		defer cancel()
	}
	// The lock is not held while draining; /health reads the status.
	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if s.server == server {
		s.listener = nil
		s.server = nil
	}
	s.mu.Unlock()
	s.logger.Info("server stopped")
	return nil
}

// drainingCh returns a channel closed once Shutdown starts. It is nil, and
// never ready, for a server that was not started.
func (s *Server) drainingCh() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draining
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL of the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		addr = s.Address()
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) uptimeSeconds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return int64(time.Since(s.startTime).Seconds())
}
