// Package usage counts successful reads per route for the current reporting
// period.
package usage

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"
)

// Route counted by the pricing endpoints.
const RoutePricing = "pricing"

// Mirror receives a copy of every counter change. It is optional and its
// failures never affect the in-memory counters.
type Mirror interface {
	Incr(ctx context.Context, route string) error
	Rotate(ctx context.Context, final map[string]int64, periodStart time.Time) error
}

// Tracker holds per-route counters. Safe for concurrent use.
type Tracker struct {
	mu          sync.Mutex
	counts      map[string]int64
	periodStart time.Time

	routes []string
	mirror Mirror
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithMirror attaches a Mirror.
func WithMirror(m Mirror) Option {
	return func(t *Tracker) { t.mirror = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a Tracker. The given routes always appear in snapshots,
// at zero until first counted.
func NewTracker(routes []string, opts ...Option) *Tracker {
	t := &Tracker{
		routes: routes,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.counts = t.zero()
	t.periodStart = t.now()
	return t
}

// Add counts one successful read on route.
func (t *Tracker) Add(ctx context.Context, route string) {
	t.mu.Lock()
	t.counts[route]++
	t.mu.Unlock()

	if t.mirror != nil {
		if err := t.mirror.Incr(ctx, route); err != nil {
			t.logger.Warn("usage mirror increment failed", "route", route, "err", err)
		}
	}
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() map[string]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.counts)
}

// PeriodStart returns when the current period began.
func (t *Tracker) PeriodStart() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.periodStart
}

// Reset starts a new period. The closing counters are logged and handed to
// the mirror.
func (t *Tracker) Reset(ctx context.Context) error {
	now := t.now()

	t.mu.Lock()
	final, start := t.counts, t.periodStart
	t.counts = t.zero()
	t.periodStart = now
	t.mu.Unlock()

	t.logger.Info("usage period closed", "period_start", start, "counts", final)

	if t.mirror != nil {
		if err := t.mirror.Rotate(ctx, final, start); err != nil {
			t.logger.Warn("usage mirror rotate failed", "err", err)
		}
	}
	return nil
}

func (t *Tracker) zero() map[string]int64 {
	m := make(map[string]int64, len(t.routes))
	for _, r := range t.routes {
		m[r] = 0
	}
	return m
}
