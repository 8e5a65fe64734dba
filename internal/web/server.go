package web

import (
	"context"
	"net/http"

	"github.com/paaavkata/track-metadata-enrichment/internal/config"
	"github.com/paaavkata/track-metadata-enrichment/internal/enrich"
	"github.com/paaavkata/track-metadata-enrichment/internal/logger"
)

// RunnerFactory builds a fresh batch runner for one run. Each run
// gets its own runner so per-run options don't leak between runs.
type RunnerFactory func(dryRun bool) *enrich.Runner

type Server struct {
	ctx       context.Context
	runs      *RunManager
	config    config.Config
	logger    *logger.Logger
	newRunner RunnerFactory
}

func NewServer(ctx context.Context, runs *RunManager, cfg config.Config, log *logger.Logger, newRunner RunnerFactory) *Server {
	return &Server{
		ctx:       ctx,
		runs:      runs,
		config:    cfg,
		logger:    log,
		newRunner: newRunner,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/", http.FileServer(http.Dir("web/static")))

	// API endpoints
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/", s.handleRunAction)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s.loggingMiddleware(mux)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
