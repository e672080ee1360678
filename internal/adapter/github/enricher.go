package github

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/starlist/starlist/internal/app"
	"github.com/starlist/starlist/internal/ratelimit"
	"github.com/starlist/starlist/internal/retry"
)

// Enricher populates star counts for a sequence of entries.
//
// Workers share a single rate-limit gate: when any lookup sees a
// rate-limited response, everyone suspends until the advertised reset.
// Once the gate reports its maximum wait exceeded, all remaining lookups
// resolve as unresolved without further api calls.
type Enricher struct {
	client  RepoClient
	gate    *ratelimit.Gate
	policy  retry.Policy
	workers int
	l       logrus.FieldLogger
}

var _ app.Enricher = &Enricher{}

// NewEnricher creates new Enricher instance.
// workers < 1 falls back to sequential processing.
func NewEnricher(
	client RepoClient,
	gate *ratelimit.Gate,
	policy retry.Policy,
	workers int,
	l logrus.FieldLogger,
) *Enricher {
	if workers < 1 {
		workers = 1
	}
	return &Enricher{
		client:  client,
		gate:    gate,
		policy:  policy,
		workers: workers,
		l:       l,
	}
}

// Enrich returns a slice with identical length and order to entries, each
// element either carrying a star count or left with nil stars and counted
// as unresolved. Only context cancellation fails the whole call.
func (e *Enricher) Enrich(ctx context.Context, entries []app.Entry) ([]app.Entry, int, error) {
	out := make([]app.Entry, len(entries))
	copy(out, entries)

	indexes := make(chan int)
	var (
		wg         sync.WaitGroup
		unresolved int64
		gaveUp     atomic.Bool
	)

	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				stars := e.lookup(ctx, out[i], &gaveUp)
				if stars == nil {
					atomic.AddInt64(&unresolved, 1)
				}
				out[i].Stars = stars
			}
		}()
	}

	for i := range out {
		select {
		case indexes <- i:
		case <-ctx.Done():
			close(indexes)
			wg.Wait()
			return nil, 0, ctx.Err()
		}
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	return out, int(atomic.LoadInt64(&unresolved)), nil
}

// lookup resolves one entry's star count, nil meaning unresolved.
func (e *Enricher) lookup(ctx context.Context, entry app.Entry, gaveUp *atomic.Bool) *int {
	for {
		if gaveUp.Load() || ctx.Err() != nil {
			return nil
		}

		if err := e.gate.Wait(ctx); err != nil {
			if errors.Is(err, ratelimit.ErrWaitExceeded) {
				if gaveUp.CompareAndSwap(false, true) {
					e.l.Warnf("rate limit wait too long, giving up on remaining entries")
				}
			}
			return nil
		}

		var stars int
		err := e.policy.Do(ctx, retryableLookup, func() error {
			s, err := e.client.StarsByRepo(ctx, entry.Owner, entry.Repo)
			stars = s
			return err
		})
		switch {
		case err == nil:
			return &stars
		case app.IsNotFound(err):
			e.l.Infof("repository %s/%s not found, leaving unresolved", entry.Owner, entry.Repo)
			return nil
		default:
			if rl, ok := app.AsRateLimit(err); ok {
				e.gate.SuspendUntil(rl.Reset)
				continue
			}
			e.l.Warnf("looking up %s/%s: %v", entry.Owner, entry.Repo, err)
			return nil
		}
	}
}

// retryableLookup classifies errors for the backoff policy. Not-found and
// rate-limit responses must surface immediately: the former is final, the
// latter goes through the shared gate instead of a blind sleep.
func retryableLookup(err error) bool {
	if app.IsNotFound(err) {
		return false
	}
	if _, ok := app.AsRateLimit(err); ok {
		return false
	}
	// Per-request timeouts are transient and retried; a canceled run is not.
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
