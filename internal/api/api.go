// Package api implements the pedigraph HTTP API.
//
// The API exposes the same layout → render pipeline as the CLI, plus CRUD
// for the snapshot store. All responses are JSON except rendered artifacts,
// which are served with their native content types.
//
// # Endpoints
//
//	GET    /healthz                       liveness probe
//	GET    /version                       build information
//	POST   /v1/layout                     compute a layout for a posted snapshot
//	POST   /v1/render                     render a posted snapshot
//	GET    /v1/snapshots                  list stored snapshots
//	PUT    /v1/snapshots/{name}           store a snapshot
//	GET    /v1/snapshots/{name}           fetch a stored snapshot
//	DELETE /v1/snapshots/{name}           delete a stored snapshot
//	GET    /v1/snapshots/{name}/layout    compute a layout for a stored snapshot
//	GET    /v1/snapshots/{name}/render    render a stored snapshot
//
// Errors are returned as {"error": {"code", "message"}} with the HTTP
// status derived from the error code.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pedigraph/pedigraph/pkg/pipeline"
	"github.com/pedigraph/pedigraph/pkg/store"
)

// Server is the pedigraph HTTP API server.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
	router chi.Router
}

// New creates a server over the given pipeline runner and snapshot store.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		store:  st,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until the context is cancelled, then shuts
// down gracefully with a 10 second drain window.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
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

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleSnapshotList)
			r.Put("/{name}", s.handleSnapshotPut)
			r.Get("/{name}", s.handleSnapshotGet)
			r.Delete("/{name}", s.handleSnapshotDelete)
			r.Get("/{name}/layout", s.handleSnapshotLayout)
			r.Get("/{name}/render", s.handleSnapshotRender)
		})
	})

	return r
}
