// Package shutdown turns interrupt signals into context cancellation
// so in-flight files finish cleanly and tag writes are never cut off
// halfway.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels its context on the first SIGINT/SIGTERM and runs
// the registered cleanups. A second signal exits immediately.
type Handler struct {
	ctx        context.Context
	cancel     context.CancelFunc
	cleanupFns []func()
	mu         sync.Mutex

	// OnSignal, if set, is called on the first signal before
	// cancellation. Used to tell the user the run is winding down.
	OnSignal func()
}

// New creates a handler with a fresh root context.
func New() *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the context cancelled on shutdown.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// AddCleanup registers a function to run once shutdown begins.
// Cleanups run in registration order.
func (h *Handler) AddCleanup(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanupFns = append(h.cleanupFns, fn)
}

// Listen starts watching for interrupt signals.
func (h *Handler) Listen() {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		if h.OnSignal != nil {
			h.OnSignal()
		}
		h.Shutdown()

		<-sigChan
		os.Exit(130)
	}()
}

// Shutdown cancels the context and runs the cleanups.
func (h *Handler) Shutdown() {
	h.cancel()

	h.mu.Lock()
	fns := h.cleanupFns
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
