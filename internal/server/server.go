// Package server assembles the HTTP server for the simulation platform.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/txn2/sim-platform/pkg/api"
	"github.com/txn2/sim-platform/pkg/health"
	"github.com/txn2/sim-platform/pkg/platform"
)

// Version is set at build time.
var Version = "dev"

// Server serves the simulation API alongside liveness and readiness
// endpoints.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	tls        platform.TLSConfig
}

// New builds the HTTP server around the platform's API handler and
// health checker.
func New(cfg platform.ServerConfig, handler *api.Handler, checker *health.Checker) *Server {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/simulate/", handler)
	mux.Handle("GET /healthz", checker.LivenessHandler())
	mux.Handle("GET /readyz", checker.ReadinessHandler())

	root := api.Chain(mux, api.RequestID, api.RequestLogger)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      root,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		tls: cfg.TLS,
	}
}

// Handler returns the root HTTP handler, including middleware and
// health endpoints.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the bound listen address once Start has succeeded, and
// the configured address before that.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Start binds the listener and begins serving in the background. A bind
// failure is returned synchronously; serve errors after that are logged.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln

	slog.Info("http server listening",
		"address", ln.Addr().String(),
		"tls", s.tls.Enabled,
	)

	go func() {
		var serveErr error
		if s.tls.Enabled {
			serveErr = s.httpServer.ServeTLS(ln, s.tls.CertFile, s.tls.KeyFile)
		} else {
			serveErr = s.httpServer.Serve(ln)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("http server exited", "error", serveErr)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server, waiting for in-flight
// requests up to the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
