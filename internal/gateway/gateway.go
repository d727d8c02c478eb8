// Package gateway exposes the operational HTTP surface: a health endpoint
// and Prometheus metrics. It is a leaf package; nothing else depends on it
// being up.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP gateway.
type Server struct {
	config    Config
	logger    *slog.Logger
	metrics   *Metrics
	character string
	model     string
	server    *http.Server
	startedAt time.Time
}

// NewServer creates the gateway. character and model are echoed in the
// health response so an operator can see what is running.
func NewServer(cfg Config, metrics *Metrics, character, model string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Server{
		config:    cfg,
		logger:    logger,
		metrics:   metrics,
		character: character,
		model:     model,
	}, nil
}

// Start binds the listener and serves in the background. It returns once the
// listener is bound, so a bad bind address fails fast.
func (s *Server) Start() error {
	s.startedAt = time.Now()

	s.server = &http.Server{
		Addr:         s.config.Bind,
		Handler:      s.buildRouter(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", s.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen: %w", err)
	}

	go func() {
		s.logger.Info("gateway listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop shuts the server down gracefully within the configured timeout.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("gateway shutting down")
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth())
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}
