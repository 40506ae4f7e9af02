// Package server provides HTTP server lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/logisq/xyronq/internal/core/api"
	"github.com/logisq/xyronq/internal/core/config"
)

// HTTPServer manages the API server lifecycle.
type HTTPServer struct {
	server *http.Server
	config *config.ServerConfig
}

// NewHTTPServer creates the HTTP server around the API service.
func NewHTTPServer(cfg *config.ServerConfig, service *api.Service) (*HTTPServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      service.Handler(),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	return &HTTPServer{
		server: server,
		config: cfg,
	}, nil
}

// Start binds the listener and serves requests. Blocks until Shutdown
// is called; a clean shutdown returns nil.
func (s *HTTPServer) Start(ctx context.Context) error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server with a 30-second timeout.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.server.Addr
}
