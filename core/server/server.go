package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/dispatch/core/logger"
)

// sealer is implemented by handlers whose configuration must be frozen
// before serving, such as routers.
type sealer interface {
	Seal()
}

// Server wraps http.Server with graceful shutdown. Safe for concurrent use.
type Server struct {
	mu                sync.Mutex
	addr              string
	boundAddr         string
	server            *http.Server
	logger            *slog.Logger
	shutdown          time.Duration
	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	maxHeaderBytes    int
	running           bool
}

// New creates a new Server with the given address and options.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr:              addr,
		logger:            slog.New(slog.DiscardHandler),
		shutdown:          DefaultShutdownTimeout,
		readTimeout:       DefaultReadTimeout,
		readHeaderTimeout: DefaultReadHeaderTimeout,
		writeTimeout:      DefaultWriteTimeout,
		idleTimeout:       DefaultIdleTimeout,
		maxHeaderBytes:    DefaultMaxHeaderBytes,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Addr returns the address the server listens on, or "" before it started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundAddr
}

// Start serves handler until ctx is cancelled, then shuts down gracefully.
// Handlers with a Seal method are sealed before the first connection is
// accepted, so late route registration fails at startup instead of at runtime.
func (s *Server) Start(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		return ErrNilHandler
	}
	if sh, ok := handler.(sealer); ok {
		sh.Seal()
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.running = true
	s.boundAddr = ln.Addr().String()
	s.server = &http.Server{
		Handler:           handler,
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: s.readHeaderTimeout,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       s.idleTimeout,
		MaxHeaderBytes:    s.maxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	srv := s.server
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "starting server", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	case <-ctx.Done():
		return s.Stop()
	}
}

// Stop gracefully shuts down the server using the configured timeout.
// Returns immediately if the server is not running.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.server == nil {
		return nil
	}

	s.logger.Info("shutting down server", logger.Duration(s.shutdown))

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.running = false
	if err != nil {
		s.logger.Error("server shutdown failed", logger.Error(err))
		return err
	}

	s.logger.Info("server stopped")
	return nil
}

// Run returns a function for errgroup that serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, handler http.Handler) func() error {
	return func() error {
		return s.Start(ctx, handler)
	}
}

// Run creates a server with default settings and serves until ctx is cancelled.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	return New(addr).Start(ctx, handler)
}
