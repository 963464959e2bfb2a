// Package ratelimit implements a per-key sliding-window request limiter.
//
// Each key holds the expiry times of the requests it admitted inside the
// current window. A check prunes expired entries, rejects once the window is
// full and otherwise records the new request. Rejected requests are not
// recorded, so a client that keeps retrying is admitted again as soon as its
// oldest admitted request ages out.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window limiter keyed by endpoint and client. Safe for
// concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates an empty Limiter.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsLimited reports whether key has already used max requests within the
// trailing window. When it has not, the current request is recorded. The
// check and the record happen under one lock.
func (l *Limiter) IsLimited(key string, window time.Duration, max int) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	expiries := prune(l.windows[key], now)
	if len(expiries) >= max {
		l.store(key, expiries)
		return true
	}

	l.windows[key] = append(expiries, now.Add(window))
	return false
}

// Remaining returns how many more requests key may make right now.
func (l *Limiter) Remaining(key string, max int) int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	n := max - len(prune(l.windows[key], now))
	if n < 0 {
		return 0
	}
	return n
}

// Sweep drops keys that have no live entries and returns how many were
// removed.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, expiries := range l.windows {
		live := prune(expiries, now)
		if len(live) == 0 {
			delete(l.windows, key)
			removed++
			continue
		}
		l.windows[key] = live
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *Limiter) store(key string, expiries []time.Time) {
	if len(expiries) == 0 {
		delete(l.windows, key)
		return
	}
	l.windows[key] = expiries
}

// prune drops leading expiries at or before now. Expiries are appended in
// order, so live entries form a suffix.
func prune(expiries []time.Time, now time.Time) []time.Time {
	i := 0
	for i < len(expiries) && !expiries[i].After(now) {
		i++
	}
	return expiries[i:]
}
