// Package server exposes the tile pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/layouts                          tile items and archive the layout
//	GET    /v1/layouts                          recent layouts, newest first
//	GET    /v1/layouts/{id}                     one archived layout
//	DELETE /v1/layouts/{id}
//	GET    /v1/layouts/{id}/render/{format}     svg, json or txt artifact
//	POST   /v1/sessions                         start a live tiled set
//	GET    /v1/sessions/{id}
//	DELETE /v1/sessions/{id}
//	POST   /v1/sessions/{id}/items              append items and resume
//	PUT    /v1/sessions/{id}/width              resize and re-tile
//	POST   /v1/sessions/{id}/retile             reset and re-tile
//	GET    /v1/sessions/{id}/render/{format}
//
// Errors are reported as {"error": {"code": ..., "message": ...}} with the
// status from [errors.HTTPStatus].
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tileme/pkg/pipeline"
	"github.com/matzehuels/tileme/pkg/session"
	"github.com/matzehuels/tileme/pkg/storage"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// Config holds the server's collaborators. Nil fields get in-memory or
// no-op defaults.
type Config struct {
	Runner     *pipeline.Runner
	Sessions   session.Store
	Archive    storage.Store
	Logger     *log.Logger
	SessionTTL time.Duration
}

// Server is the HTTP API.
type Server struct {
	runner     *pipeline.Runner
	sessions   session.Store
	archive    storage.Store
	locker     *session.Locker
	logger     *log.Logger
	sessionTTL time.Duration
	router     chi.Router
}

// New creates a server and builds its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewMemoryStore()
	}
	if cfg.Archive == nil {
		cfg.Archive = storage.NewMemoryStore()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}

	s := &Server{
		runner:     cfg.Runner,
		sessions:   cfg.Sessions,
		archive:    cfg.Archive,
		locker:     session.NewLocker(),
		logger:     cfg.Logger,
		sessionTTL: cfg.SessionTTL,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/layouts", func(r chi.Router) {
			r.Post("/", s.handleCreateLayout)
			r.Get("/", s.handleListLayouts)
			r.Get("/{id}", s.handleGetLayout)
			r.Delete("/{id}", s.handleDeleteLayout)
			r.Get("/{id}/render/{format}", s.handleRenderLayout)
		})
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleDeleteSession)
			r.Post("/{id}/items", s.handleAppendItems)
			r.Put("/{id}/width", s.handleResize)
			r.Post("/{id}/retile", s.handleRetile)
			r.Get("/{id}/render/{format}", s.handleRenderSession)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, notFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("METHOD_NOT_ALLOWED", r.Method+" not allowed"))
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close releases the stores and the runner cache.
func (s *Server) Close() error {
	return errors.Join(s.sessions.Close(), s.archive.Close(), s.runner.Close())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
