package progress

import (
	"sync"
	"time"
)

// NoFraction marks an update whose overall completion is unknown.
const NoFraction = -1.0

// Observer receives human-readable status updates from long-running work.
// Fraction is in [0,1], or NoFraction when unknown.
type Observer interface {
	Update(message string, fraction float64)
}

// Func adapts a plain function to the Observer interface.
type Func func(message string, fraction float64)

func (f Func) Update(message string, fraction float64) { f(message, fraction) }

// NoOp discards all updates.
type NoOp struct{}

func (NoOp) Update(string, float64) {}

// Throttled forwards updates to an inner observer at most once per interval
// of wall time, independent of how often callers emit.
type Throttled struct {
	inner    Observer
	interval time.Duration

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

const defaultInterval = 500 * time.Millisecond

// NewThrottled wraps obs so downstream sinks see at most one update per
// interval. A zero interval uses the 0.5s default.
func NewThrottled(obs Observer, interval time.Duration) *Throttled {
	if obs == nil {
		obs = NoOp{}
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Throttled{
		inner:    obs,
		interval: interval,
		now:      time.Now,
	}
}

func (t *Throttled) Update(message string, fraction float64) {
	t.mu.Lock()
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		t.mu.Unlock()
		return
	}
	t.last = now
	t.mu.Unlock()

	t.inner.Update(message, fraction)
}
