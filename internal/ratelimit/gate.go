// Package ratelimit holds the shared suspend-until-reset state for the
// metadata API.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrWaitExceeded is returned by Wait when honoring the current reset time
// would exceed the configured maximum wait. Remaining lookups should be
// given up rather than blocking the run indefinitely.
var ErrWaitExceeded = errors.New("rate limit wait exceeds configured maximum")

// Gate is the process-wide rate-limit clock. When any worker observes a
// rate-limited response it suspends the gate; all workers then wait in
// Wait until the reset time passes.
type Gate struct {
	maxWait time.Duration
	now     func() time.Time

	mu      sync.Mutex
	resetAt time.Time
}

// NewGate creates new Gate instance. maxWait bounds any single suspension;
// zero means no bound.
func NewGate(maxWait time.Duration) *Gate {
	return &Gate{
		maxWait: maxWait,
		now:     time.Now,
	}
}

// SuspendUntil advances the reset time. It never moves the clock backwards,
// so concurrent workers reporting the same rate-limit response settle on
// the latest reset.
func (g *Gate) SuspendUntil(t time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t.After(g.resetAt) {
		g.resetAt = t
	}
}

// Wait blocks until the current reset time has passed, the context is
// canceled, or the pending wait exceeds the maximum.
func (g *Gate) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		resetAt := g.resetAt
		g.mu.Unlock()

		wait := resetAt.Sub(g.now())
		if wait <= 0 {
			return nil
		}
		if g.maxWait > 0 && wait > g.maxWait {
			return ErrWaitExceeded
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Re-check: another worker may have pushed the reset further.
		}
	}
}
