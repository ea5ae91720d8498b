// Package controller contains the HTTP API for operating ledgersync.
package controller

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"ledgersync/internal/controller/handlers"
	"ledgersync/internal/controller/middleware"
)

// Server is the HTTP server for the operator API.
type Server struct {
	httpServer *http.Server
}

// New creates a new API server. The metrics handler is mounted as-is so
// the caller decides which exporter backs it.
func New(addr, apiKey string, metrics http.Handler, h *handlers.Handlers) *Server {
	authMW := middleware.RequireAPIKey(apiKey)
	rateMW := middleware.RateLimit(rate.Limit(10), 20)

	protect := func(next http.HandlerFunc) http.Handler {
		return rateMW(authMW(next))
	}

	mux := http.NewServeMux()

	// Probes and metrics are unauthenticated.
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	mux.Handle("POST /jobs/start", protect(h.StartJob))
	mux.Handle("POST /jobs/{id}/stop", protect(h.StopJob))
	mux.Handle("GET /jobs", protect(h.ListJobs))
	mux.Handle("PUT /credentials/{user_id}", protect(h.StoreCredential))
	mux.Handle("DELETE /credentials/{user_id}", protect(h.DeleteCredential))

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      middleware.RequestID(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
