// Package web exposes enrichment runs over HTTP: a small JSON API to
// launch and inspect runs and a WebSocket feed for live progress.
package web

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/paaavkata/track-metadata-enrichment/internal/enrich"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// Run is one enrichment pass over a directory.
type Run struct {
	ID          string
	Directory   string
	DryRun      bool
	Status      RunStatus
	Processed   int
	Total       int
	Summary     enrich.Summary
	Error       string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Cancel      context.CancelFunc
}

// Event is one update on a run's feed. Run is a point-in-time copy of
// the run state; Outcome is set only for per-file events.
type Event struct {
	Run     Run
	Outcome *enrich.Outcome
}

// RunManager tracks runs and fans their updates out to subscribers.
// Everything it hands out is a copy taken under the lock, so callers
// never share mutable state with the background run goroutine.
type RunManager struct {
	runs      map[string]*Run
	mu        sync.RWMutex
	listeners map[string][]chan Event
}

const runRetention = 1 * time.Hour

// NewRunManager creates an empty manager.
func NewRunManager() *RunManager {
	return &RunManager{
		runs:      make(map[string]*Run),
		listeners: make(map[string][]chan Event),
	}
}

// StartCleanup starts a background goroutine that drops finished runs
// older than the retention window. Stops when ctx is cancelled.
func (rm *RunManager) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rm.cleanup()
			}
		}
	}()
}

func (rm *RunManager) cleanup() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	cutoff := time.Now().Add(-runRetention)
	for id, run := range rm.runs {
		if run.CompletedAt != nil && run.CompletedAt.Before(cutoff) {
			delete(rm.runs, id)
			delete(rm.listeners, id)
		}
	}
}

// CreateRun registers a new pending run over dir.
func (rm *RunManager) CreateRun(dir string, dryRun bool) Run {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	run := &Run{
		ID:        generateRunID(),
		Directory: dir,
		DryRun:    dryRun,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	rm.runs[run.ID] = run
	return *run
}

// GetRun retrieves a copy of a run by ID.
func (rm *RunManager) GetRun(id string) (Run, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	run, ok := rm.runs[id]
	if !ok {
		return Run{}, fmt.Errorf("run not found: %s", id)
	}
	return *run, nil
}

// ListRuns returns a copy of every tracked run.
func (rm *RunManager) ListRuns() []Run {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	runs := make([]Run, 0, len(rm.runs))
	for _, run := range rm.runs {
		runs = append(runs, *run)
	}
	return runs
}

// UpdateRun applies fn to the run under the lock, stamps lifecycle
// transitions, and notifies subscribers.
func (rm *RunManager) UpdateRun(id string, fn func(*Run)) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	run, ok := rm.runs[id]
	if !ok {
		return fmt.Errorf("run not found: %s", id)
	}

	oldStatus := run.Status
	fn(run)

	if oldStatus != run.Status {
		switch run.Status {
		case StatusRunning:
			if run.StartedAt == nil {
				now := time.Now()
				run.StartedAt = &now
			}
		case StatusCompleted, StatusFailed, StatusCancelled:
			if run.CompletedAt == nil {
				now := time.Now()
				run.CompletedAt = &now
			}
		}
	}

	rm.notifyListeners(id, Event{Run: *run})
	return nil
}

// RecordOutcome folds one finished file into the run's counters and
// emits a per-file event carrying the outcome alongside the snapshot.
func (rm *RunManager) RecordOutcome(id string, o enrich.Outcome) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	run, ok := rm.runs[id]
	if !ok {
		return fmt.Errorf("run not found: %s", id)
	}

	run.Processed++
	run.Summary.Add(o)
	rm.notifyListeners(id, Event{Run: *run, Outcome: &o})
	return nil
}

// Subscribe returns a channel carrying every update to the run.
func (rm *RunManager) Subscribe(runID string) <-chan Event {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	ch := make(chan Event, 10)
	rm.listeners[runID] = append(rm.listeners[runID], ch)
	return ch
}

// Unsubscribe removes and closes a subscription channel.
func (rm *RunManager) Unsubscribe(runID string, ch <-chan Event) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	listeners := rm.listeners[runID]
	for i, listener := range listeners {
		if listener == ch {
			rm.listeners[runID] = append(listeners[:i], listeners[i+1:]...)
			close(listener)
			break
		}
	}
}

// notifyListeners delivers without blocking; slow subscribers miss
// intermediate states, never final ones backed by the run map. Called
// with rm.mu held, so the snapshot inside ev is consistent.
func (rm *RunManager) notifyListeners(runID string, ev Event) {
	for _, ch := range rm.listeners[runID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func generateRunID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("run_%x", b)
}
