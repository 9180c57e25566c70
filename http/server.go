// Package http serves the prediction API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wraps the http.Server running the API.
type Server struct {
	server *http.Server
	config ServerConfig
	log    *zap.Logger
}

// ServerConfig configures the listener and middleware.
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// DefaultServerConfig listens on 5000 with a 1 MiB body limit.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           5000,
		Timeout:        30 * time.Second,
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   1 << 20,
	}
}

// NewServer builds a server for api.
func NewServer(config ServerConfig, api *API, log *zap.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      NewHandler(config, api, log),
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config: config,
		log:    log,
	}
}

// NewHandler wires the API routes behind the middleware chain.
func NewHandler(config ServerConfig, api *API, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	api.Register(mux)

	// Recovery runs outermost so it also catches panics in the other middleware.
	chain := Chain(
		RecoveryMiddleware(log),
		LoggerMiddleware(log, api.metrics),
		SecurityHeadersMiddleware,
		CORSMiddleware(config.AllowedOrigins),
		RequestSizeMiddleware(config.MaxBodyBytes),
	)
	return chain(mux)
}

// Start blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.log.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}
