package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/paaavkata/track-metadata-enrichment/internal/enrich"
)

type EnrichRequest struct {
	Directory string `json:"directory"`
	DryRun    bool   `json:"dry_run"`
}

type SummaryResponse struct {
	Total       int `json:"total"`
	Complete    int `json:"complete"`
	Updated     int `json:"updated"`
	MissingInfo int `json:"missing_info"`
	NotFound    int `json:"not_found"`
	WriteFailed int `json:"write_failed"`
	Errors      int `json:"errors"`
}

type RunResponse struct {
	ID          string          `json:"id"`
	Directory   string          `json:"directory"`
	DryRun      bool            `json:"dry_run"`
	Status      RunStatus       `json:"status"`
	Processed   int             `json:"processed"`
	Total       int             `json:"total"`
	Summary     SummaryResponse `json:"summary"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   string          `json:"created_at"`
	StartedAt   *string         `json:"started_at,omitempty"`
	CompletedAt *string         `json:"completed_at,omitempty"`
}

// handleRuns serves POST /api/runs (launch) and GET /api/runs (list).
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleStartRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req EnrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Directory == "" {
		http.Error(w, "Directory is required", http.StatusBadRequest)
		return
	}

	run := s.runs.CreateRun(req.Directory, req.DryRun)
	s.logger.Info("Created run %s for directory: %s", run.ID, req.Directory)

	go s.processRun(run)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runToResponse(run))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs := s.runs.ListRuns()
	responses := make([]*RunResponse, len(runs))
	for i := range runs {
		responses[i] = runToResponse(runs[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// handleRunAction serves GET /api/runs/{id} and POST /api/runs/{id}/cancel.
func (s *Server) handleRunAction(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Run ID required", http.StatusBadRequest)
		return
	}

	runID := parts[0]

	if r.Method == http.MethodGet && len(parts) == 1 {
		run, err := s.runs.GetRun(runID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(runToResponse(run))
		return
	}

	if r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "cancel" {
		run, err := s.runs.GetRun(runID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		if run.Cancel != nil {
			run.Cancel()
		}

		s.runs.UpdateRun(runID, func(rn *Run) {
			rn.Status = StatusCancelled
		})

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "cancelled"})
		return
	}

	http.Error(w, "Invalid request", http.StatusBadRequest)
}

// processRun executes one run in the background, streaming progress
// into the run record as files complete.
func (s *Server) processRun(run Run) {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	s.runs.UpdateRun(run.ID, func(rn *Run) {
		rn.Cancel = cancel
		rn.Status = StatusRunning
	})

	s.logger.Info("Starting run %s", run.ID)

	runner := s.newRunner(run.DryRun)
	hooks := enrich.Hooks{
		OnFilesFound: func(total int) {
			s.runs.UpdateRun(run.ID, func(rn *Run) {
				rn.Total = total
			})
		},
		OnOutcome: func(o enrich.Outcome) {
			s.runs.RecordOutcome(run.ID, o)
		},
	}

	_, err := runner.Run(ctx, run.Directory, hooks)
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled via the API; status already set.
			s.logger.Info("Run %s cancelled", run.ID)
			return
		}
		s.logger.Error("Run %s failed: %v", run.ID, err)
		s.runs.UpdateRun(run.ID, func(rn *Run) {
			rn.Status = StatusFailed
			rn.Error = err.Error()
		})
		return
	}

	s.runs.UpdateRun(run.ID, func(rn *Run) {
		rn.Status = StatusCompleted
	})

	s.logger.Info("Run %s completed", run.ID)
}

func runToResponse(run Run) *RunResponse {
	resp := &RunResponse{
		ID:        run.ID,
		Directory: run.Directory,
		DryRun:    run.DryRun,
		Status:    run.Status,
		Processed: run.Processed,
		Total:     run.Total,
		Summary: SummaryResponse{
			Total:       run.Summary.Total,
			Complete:    run.Summary.Complete,
			Updated:     run.Summary.Updated,
			MissingInfo: run.Summary.MissingInfo,
			NotFound:    run.Summary.NotFound,
			WriteFailed: run.Summary.WriteFailed,
			Errors:      run.Summary.Errors,
		},
		Error:     run.Error,
		CreatedAt: run.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if run.StartedAt != nil {
		started := run.StartedAt.Format("2006-01-02 15:04:05")
		resp.StartedAt = &started
	}

	if run.CompletedAt != nil {
		completed := run.CompletedAt.Format("2006-01-02 15:04:05")
		resp.CompletedAt = &completed
	}

	return resp
}
