// Package server exposes the schema graph engine over HTTP.
//
// The API manages a single stored diagram: import replaces it, the entity
// and layout endpoints edit it through the engine packages, and the export
// endpoint serializes it into any of the supported interchange formats. No
// authentication and no multi-diagram support; the server is meant to sit
// behind a diagram-editing frontend.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/schemadraw/schemadraw/pkg/pipeline"
	"github.com/schemadraw/schemadraw/pkg/store"
)

// Server routes HTTP requests to the engine. Writes to the stored diagram
// are serialized through a mutex, so concurrent edits are linearized instead
// of racing load-apply-save cycles against each other.
type Server struct {
	store  store.Store
	runner *pipeline.Runner
	logger *log.Logger

	// mu guards every load-apply-save cycle against the store.
	mu sync.Mutex
}

// New creates a server over the given diagram store.
func New(st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:  st,
		runner: pipeline.NewRunner(logger),
		logger: logger,
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/diagram", func(r chi.Router) {
		r.Get("/", s.handleGet)
		r.Put("/", s.handlePut)
		r.Delete("/", s.handleDelete)
		r.Post("/import", s.handleImport)
		r.Get("/export/{format}", s.handleExport)
		r.Post("/layout/{strategy}", s.handleLayout)

		r.Route("/entities", func(r chi.Router) {
			r.Post("/{id}/connect/{target}", s.handleConnect)
			r.Delete("/{id}", s.handleDeleteEntity)
			r.Post("/{id}/rename", s.handleRename)
			r.Post("/{id}/properties/{name}/retype", s.handleRetype)
		})
	})

	return r
}

// ListenAndServe serves the API until the context is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// logRequests logs one line per request with method, path, status and
// duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start).Round(time.Millisecond),
		)
	})
}
