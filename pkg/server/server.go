// Package server exposes the segmentation pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz           build info and liveness
//	POST /v1/segment        run the pipeline on an uploaded image
//	GET  /v1/runs           list recent run records (?limit=N)
//	GET  /v1/runs/{id}      fetch one run record
//
// POST /v1/segment takes a multipart form with an "image" file and an
// optional "options" field holding pipeline options as JSON. The response is
// a JSON document with the run record and every artifact (base64). Passing
// ?output=<format> returns that single artifact as the raw response body
// instead, with the run ID in the X-Run-ID header.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/blockseg/pkg/pipeline"
	"github.com/matzehuels/blockseg/pkg/store"
)

// DefaultMaxUpload bounds the size of a multipart upload.
const DefaultMaxUpload = 32 << 20

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

const shutdownTimeout = 10 * time.Second

// Server serves the HTTP API. It is safe for concurrent use; every request
// builds its own grid.
type Server struct {
	runner    *pipeline.Runner
	store     store.Store
	logger    *log.Logger
	defaults  pipeline.Options
	maxUpload int64
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithDefaults sets the options requests start from before their own
// "options" field is applied.
func WithDefaults(opts pipeline.Options) Option {
	return func(s *Server) { s.defaults = opts }
}

// WithMaxUpload overrides DefaultMaxUpload.
func WithMaxUpload(n int64) Option {
	return func(s *Server) { s.maxUpload = n }
}

// New builds a server around runner. A nil store disables run records and
// the /v1/runs routes answer 404.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:    runner,
		store:     st,
		logger:    logger,
		maxUpload: DefaultMaxUpload,
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/segment", s.handleSegment)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	return r
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and returns ctx.Err().
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("server stopped")
		return ctx.Err()
	}
}
