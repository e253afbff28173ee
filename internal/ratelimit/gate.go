package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"studykit/internal/retry"
)

// Gate admits outbound requests under a two-tier limit: a sliding window of
// at most quota admissions per windowSpan, and a minimum gap between
// consecutive admissions. The window bounds the average rate; the gap bounds
// bursts. Either check alone would let the other pattern through.
//
// All state is owned by one Gate instance; concurrent tasks must share a
// single Gate or the per-minute contract is void.
type Gate struct {
	mu      sync.Mutex
	quota   int
	window  time.Duration
	spacing *rate.Limiter
	stamps  []time.Time

	notify func(string)

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

const (
	windowSpan = 60 * time.Second

	// Sleeps shorter than this are skipped; the admission is still recorded.
	spacingSlack = 100 * time.Millisecond
)

// New builds a gate allowing quota admissions per 60 seconds with at least
// minGap between consecutive admissions. minGap <= 0 disables spacing.
func New(quota int, minGap time.Duration) *Gate {
	g := &Gate{
		quota:  quota,
		window: windowSpan,
		now:    time.Now,
		sleep:  retry.Sleep,
	}
	if minGap > 0 {
		g.spacing = rate.NewLimiter(rate.Every(minGap), 1)
	}
	return g
}

// SetNotify installs a hook invoked with a human-readable message whenever
// the gate is about to block. The hook runs under the gate's lock; keep it
// cheap and non-blocking.
func (g *Gate) SetNotify(fn func(string)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notify = fn
}

// Wait blocks until the next request may be issued, then records the
// admission. The check-and-record step is atomic relative to other callers.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.evict(now)

	if g.quota > 0 && len(g.stamps) >= g.quota {
		wait := g.window - now.Sub(g.stamps[0])
		if wait > 0 {
			if g.notify != nil {
				g.notify(fmt.Sprintf("Rate limit reached, waiting %.1f seconds...", wait.Seconds()))
			}
			if err := g.sleep(ctx, wait); err != nil {
				return err
			}
			now = g.now()
			g.evict(now)
		}
	}

	if g.spacing != nil {
		r := g.spacing.ReserveN(now, 1)
		if delay := r.DelayFrom(now); delay > spacingSlack {
			if err := g.sleep(ctx, delay); err != nil {
				r.CancelAt(g.now())
				return err
			}
		}
	}

	g.stamps = append(g.stamps, g.now())
	return nil
}

// Reset drops all recorded admissions. Used when the server signals a quota
// epoch reset (429 with Retry-After).
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stamps = g.stamps[:0]
}

// evict drops admissions older than the window span. Caller holds the lock.
func (g *Gate) evict(now time.Time) {
	i := 0
	for i < len(g.stamps) && now.Sub(g.stamps[i]) > g.window {
		i++
	}
	if i > 0 {
		g.stamps = g.stamps[i:]
	}
}
