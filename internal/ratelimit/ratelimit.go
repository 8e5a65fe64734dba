// Package ratelimit enforces a minimum spacing between outbound
// requests to each upstream source.
//
// Scope is per source: every source key gets its own limiter clock, so
// one upstream's pacing never throttles requests to the others. This
// raises achievable batch throughput over a single shared clock when
// several workers hit different upstreams concurrently.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum spacing between requests to one
// source when none is configured.
const DefaultInterval = time.Second

// Registry hands out one rate limiter per source key. Safe for
// concurrent use by multiple workers.
type Registry struct {
	interval time.Duration
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRegistry creates a registry whose limiters allow one request per
// interval with no burst. A non-positive interval falls back to
// DefaultInterval.
func NewRegistry(interval time.Duration) *Registry {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Registry{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until at least the configured interval has elapsed since
// the last granted turn for the given source, or until ctx is done.
func (r *Registry) Wait(ctx context.Context, source string) error {
	return r.limiter(source).Wait(ctx)
}

func (r *Registry) limiter(source string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[source]
	if !ok {
		l = rate.NewLimiter(rate.Every(r.interval), 1)
		r.limiters[source] = l
	}
	return l
}
