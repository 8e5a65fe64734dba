package enrich

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/paaavkata/track-metadata-enrichment/internal/logger"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// Hooks lets callers observe a run without coupling the runner to a
// particular UI.
type Hooks struct {
	OnFilesFound func(total int)
	OnOutcome    func(Outcome)
}

// Runner fans a directory of audio files out over a bounded worker
// pool, processing each with the Enricher.
type Runner struct {
	Enricher *Enricher
	Log      *logger.Logger
	Workers  int
	Ext      string // bare extension, e.g. "mp3"
}

// FindFiles walks dir recursively and returns every file with the
// runner's extension. AppleDouble sidecar files ("._*") are skipped.
func (r *Runner) FindFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	suffix := "." + strings.ToLower(r.Ext)
	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "._") {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return files, nil
}

// Run processes every matching file under dir and returns the
// aggregated summary. Outcomes are delivered to hooks in completion
// order, not discovery order.
func (r *Runner) Run(ctx context.Context, dir string, hooks Hooks) (Summary, error) {
	files, err := r.FindFiles(dir)
	if err != nil {
		return Summary{}, err
	}

	r.Log.Info("Found %d .%s files in %s", len(files), r.Ext, dir)
	if hooks.OnFilesFound != nil {
		hooks.OnFilesFound(len(files))
	}
	if len(files) == 0 {
		return Summary{}, nil
	}

	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	outcomes := make(chan Outcome, len(files))

	var wg sync.WaitGroup
	for _, path := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled: stop launching, drain what started.
			break
		}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes <- r.processSafe(ctx, path)
		}(path)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var summary Summary
	for o := range outcomes {
		summary.Add(o)
		if hooks.OnOutcome != nil {
			hooks.OnOutcome(o)
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// processSafe runs one file, converting a panic into an error outcome
// so a single bad file can't take the pool down.
func (r *Runner) processSafe(ctx context.Context, path string) (out Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			r.Log.Error("panic while processing %s: %v", path, rec)
			out = Outcome{Path: path, Status: StatusError, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	return r.Enricher.Process(ctx, path)
}
