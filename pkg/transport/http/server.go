package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vorlage-dev/vorlage/pkg/auth"
	"github.com/vorlage-dev/vorlage/pkg/observability"
	"github.com/vorlage-dev/vorlage/pkg/storage"
	"github.com/vorlage-dev/vorlage/pkg/transport"
)

// Server wraps an http.Server with the route adapter and manages the full
// lifecycle including startup and graceful shutdown.
type Server struct {
	httpServer *http.Server
	adapter    *Adapter
	config     ServerConfig
	logger     *slog.Logger
}

// ServerConfig holds configuration for the transport server.
type ServerConfig struct {
	Addr            string
	MaxBodySize     int64
	ShutdownTimeout time.Duration
	SessionTTL      time.Duration
	SecureCookies   bool
	Metrics         bool
	RequestsPerMin  int
	LoginReqsPerMin int
	Logger          *slog.Logger
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		MaxBodySize:     1 << 20, // 1 MB
		ShutdownTimeout: 30 * time.Second,
		SessionTTL:      30 * 24 * time.Hour,
		Metrics:         true,
		Logger:          slog.Default(),
	}
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) ServerOption {
	return func(s *Server) { s.config.Addr = addr }
}

// WithMaxBodySize sets the maximum request body size.
func WithMaxBodySize(n int64) ServerOption {
	return func(s *Server) { s.config.MaxBodySize = n }
}

// WithShutdownTimeout sets the graceful shutdown deadline.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.config.ShutdownTimeout = d }
}

// WithSessionTTL sets the session cookie Max-Age.
func WithSessionTTL(d time.Duration) ServerOption {
	return func(s *Server) { s.config.SessionTTL = d }
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) ServerOption {
	return func(s *Server) { s.config.SecureCookies = secure }
}

// WithMetrics toggles the /metrics endpoint.
func WithMetrics(enabled bool) ServerOption {
	return func(s *Server) { s.config.Metrics = enabled }
}

// WithRateLimit sets the per-user requests-per-minute budget. Zero disables
// rate limiting.
func WithRateLimit(rpm int) ServerOption {
	return func(s *Server) { s.config.RequestsPerMin = rpm }
}

// WithLoginRateLimit sets the per-address budget for the anonymous login and
// register endpoints. Zero disables it.
func WithLoginRateLimit(rpm int) ServerOption {
	return func(s *Server) { s.config.LoginReqsPerMin = rpm }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.config.Logger = l; s.logger = l }
}

// NewServer creates a server over the given store. The full middleware stack
// (recovery, request id, logging, metrics, authentication) is applied
// automatically.
func NewServer(store storage.Store, opts ...ServerOption) *Server {
	s := &Server{
		config: DefaultServerConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.adapter = NewAdapter(store, Config{
		MaxBodySize:         s.config.MaxBodySize,
		SessionTTL:          s.config.SessionTTL,
		SecureCookies:       s.config.SecureCookies,
		Metrics:             s.config.Metrics,
		LoginRequestsPerMin: s.config.LoginReqsPerMin,
	})

	chain := &auth.Chain{Authenticators: []auth.Authenticator{
		&auth.BearerAuthenticator{Store: store},
		&auth.SessionAuthenticator{Store: store},
	}}

	var limiter auth.RateLimiter
	if s.config.RequestsPerMin > 0 {
		limiter = auth.NewInProcessLimiter(s.config.RequestsPerMin)
	}

	handler := transport.Chain(
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(s.logger),
		observability.MetricsMiddleware,
		auth.Middleware(chain, limiter, s.adapter.Public),
	)(s.adapter.Handler())

	s.httpServer = &http.Server{
		Addr:    s.config.Addr,
		Handler: handler,
	}

	return s
}

// Handler exposes the fully wired handler. Used by the integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the server and blocks until a shutdown signal
// (SIGINT or SIGTERM) is received. It then gracefully shuts down,
// waiting for in-flight requests to complete within the configured timeout.
func (s *Server) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.listenAndServeWithContext(ctx)
}

func (s *Server) listenAndServeWithContext(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("server starting", slog.String("addr", s.config.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	return s.shutdown()
}

// ServeOn starts the server on the given listener. Used for testing.
func (s *Server) ServeOn(ln net.Listener) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down gracefully", slog.Duration("timeout", s.config.ShutdownTimeout))
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Shutdown gracefully shuts down the server with the given context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
