// Package server provides HTTP server lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/rulegate/rulegate/internal/core/api"
	"github.com/rulegate/rulegate/internal/core/auth"
	"github.com/rulegate/rulegate/internal/core/config"
)

// HTTPServer manages HTTP server lifecycle.
type HTTPServer struct {
	server   *http.Server
	listener net.Listener
	config   *config.RuleAPIConfig
}

// NewHTTPServer creates an HTTP server with auth middleware and routes wired.
func NewHTTPServer(cfg *config.RuleAPIConfig, service *api.RuleAPIService, authenticator *auth.Authenticator) (*HTTPServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if authenticator == nil {
		return nil, fmt.Errorf("authenticator cannot be nil")
	}

	handler := service.Router(authenticator.Middleware)

	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	return &HTTPServer{
		server: server,
		config: cfg,
	}, nil
}

// Start binds the listener and serves requests.
// Blocks until Shutdown is called; a clean shutdown returns nil.
func (s *HTTPServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	s.listener = listener
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests up to
// the configured shutdown timeout before forcing connections closed.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		_ = s.server.Close()
		return fmt.Errorf("graceful shutdown incomplete: %w", err)
	}
	return nil
}
