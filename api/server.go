// Package api provides the HTTP REST API for docbot.
//
// Endpoints:
//
//	POST /api/chat  →  free chat with per-user history
//	POST /api/ask   →  docs-only grounded answering with citations
//	GET  /health    →  liveness probe
//	GET  /ready     →  readiness probe (index state)
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (recovery, request ID, logging, CORS)
//   - health.go: health check endpoints (/health, /ready)
//   - chat.go: free-chat endpoint
//   - ask.go: docs-only endpoint
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/navassist/docbot/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Grounded answers may trigger a full index build on first request, so
	// this is generous.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on
	// keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for docbot's REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	corsOrigins []string

	// Handlers
	health *HealthHandler
	chat   *ChatHandler
	ask    *AskHandler
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(health *HealthHandler, chat *ChatHandler, ask *AskHandler, corsOrigins []string, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:         mux,
		logger:      logger,
		corsOrigins: corsOrigins,
		health:      health,
		chat:        chat,
		ask:         ask,
	}

	s.health.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)
	s.ask.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: tracing, recovery, request ID, logging, CORS, handler.
// Request ID and logging sit outside CORS so preflight requests are
// logged and correlated like any other request.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
	h := chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware,
		loggingMiddleware(s.logger),
		c.Handler,
	)
	return otelhttp.NewHandler(h, "docbot.api")
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
