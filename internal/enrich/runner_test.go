package enrich

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/paaavkata/track-metadata-enrichment/internal/logger"
	"github.com/paaavkata/track-metadata-enrichment/internal/metadata"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp3"))
	touch(t, filepath.Join(dir, "B.MP3"))
	touch(t, filepath.Join(dir, "sub", "deep", "c.mp3"))
	touch(t, filepath.Join(dir, "._a.mp3"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "d.flac"))

	r := &Runner{Ext: "mp3"}
	files, err := r.FindFiles(dir)
	if err != nil {
		t.Fatalf("FindFiles() error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("found %d files, want 3: %v", len(files), files)
	}
	for _, f := range files {
		if filepath.Base(f)[:2] == "._" {
			t.Errorf("AppleDouble file not skipped: %s", f)
		}
	}
}

func TestFindFiles_MissingDirectory(t *testing.T) {
	r := &Runner{Ext: "mp3"}
	if _, err := r.FindFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestFindFiles_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.mp3")
	touch(t, file)

	r := &Runner{Ext: "mp3"}
	if _, err := r.FindFiles(file); err == nil {
		t.Error("expected error for a plain file")
	}
}

func TestRun_EmptyDirectory(t *testing.T) {
	r := &Runner{Log: logger.New(false), Ext: "mp3"}
	summary, err := r.Run(context.Background(), t.TempDir(), Hooks{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Total != 0 {
		t.Errorf("Total = %d, want 0", summary.Total)
	}
}

func TestRun_AggregatesOutcomes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mp3", "b.mp3", "c.mp3", "sub/d.mp3"} {
		touch(t, filepath.Join(dir, name))
	}

	store := &stubStore{track: metadata.Track{
		Title: "T", Artist: "A",
		Genre: "House", Year: "2013", Mood: "energetic",
	}}
	r := &Runner{
		Enricher: newEnricher(store),
		Log:      logger.New(false),
		Workers:  2,
		Ext:      "mp3",
	}

	var mu sync.Mutex
	var total int
	seen := 0
	hooks := Hooks{
		OnFilesFound: func(n int) { total = n },
		OnOutcome: func(o Outcome) {
			mu.Lock()
			seen++
			mu.Unlock()
		},
	}

	summary, err := r.Run(context.Background(), dir, hooks)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if total != 4 {
		t.Errorf("OnFilesFound total = %d, want 4", total)
	}
	if seen != 4 {
		t.Errorf("OnOutcome fired %d times, want 4", seen)
	}
	if summary.Total != 4 || summary.Complete != 4 {
		t.Errorf("summary = %+v, want 4 complete", summary)
	}
}

type panicStore struct{}

func (panicStore) Read(path string) (metadata.Track, error) { panic("corrupt frame") }

func (panicStore) Write(path string, updates map[metadata.Field]string) error { return nil }

func TestRun_PanicBecomesErrorOutcome(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp3"))

	r := &Runner{
		Enricher: newEnricher(panicStore{}),
		Log:      logger.New(false),
		Ext:      "mp3",
	}

	var got Outcome
	summary, err := r.Run(context.Background(), dir, Hooks{
		OnOutcome: func(o Outcome) { got = o },
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Errors != 1 {
		t.Errorf("Errors = %d, want 1", summary.Errors)
	}
	if got.Status != StatusError || got.Err == nil {
		t.Errorf("outcome = %+v, want error status with Err set", got)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp3"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{
		Enricher: newEnricher(&stubStore{track: metadata.Track{Genre: "x", Year: "1", Mood: "m", Title: "t", Artist: "a"}}),
		Log:      logger.New(false),
		Ext:      "mp3",
	}
	if _, err := r.Run(ctx, dir, Hooks{}); err == nil {
		t.Error("expected context error")
	}
}
