// Package ratelimit provides a minimum-interval limiter for outbound calls
// to a rate-limited upstream.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum delay between consecutive calls. It is a
// simple leaky bucket: each Wait sleeps until the configured interval has
// elapsed since the previous call.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time // injectable for tests
}

// New creates a Limiter with the given minimum interval between calls.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		now:      time.Now,
	}
}

// Wait blocks until the minimum interval since the previous permitted call
// has elapsed, then records the current call. Returns early with ctx.Err()
// on cancellation.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()
	wait := l.interval - now.Sub(l.last)
	if wait <= 0 {
		l.last = now
		l.mu.Unlock()
		return nil
	}
	// Reserve the slot before sleeping so concurrent callers queue up
	// behind each other instead of racing for the same slot.
	l.last = now.Add(wait)
	l.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Interval returns the configured minimum interval.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
