package usage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeMirror struct {
	mu      sync.Mutex
	incrs   map[string]int
	rotated []map[string]int64
	err     error
}

func (m *fakeMirror) Incr(ctx context.Context, route string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrs == nil {
		m.incrs = make(map[string]int)
	}
	m.incrs[route]++
	return m.err
}

func (m *fakeMirror) Rotate(ctx context.Context, final map[string]int64, periodStart time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rotated = append(m.rotated, final)
	return m.err
}

func TestTrackerSnapshotIncludesKnownRoutes(t *testing.T) {
	tr := NewTracker([]string{RoutePricing})

	snap := tr.Snapshot()
	n, ok := snap[RoutePricing]
	if !ok || n != 0 {
		t.Errorf("Snapshot = %v, want pricing:0", snap)
	}
}

func TestTrackerAdd(t *testing.T) {
	tr := NewTracker([]string{RoutePricing})
	ctx := context.Background()

	tr.Add(ctx, RoutePricing)
	tr.Add(ctx, RoutePricing)
	tr.Add(ctx, "other")

	snap := tr.Snapshot()
	if snap[RoutePricing] != 2 {
		t.Errorf("pricing = %d, want 2", snap[RoutePricing])
	}
	if snap["other"] != 1 {
		t.Errorf("other = %d, want 1", snap["other"])
	}

	// Snapshot is a copy.
	snap[RoutePricing] = 100
	if tr.Snapshot()[RoutePricing] != 2 {
		t.Error("mutating a snapshot changed the tracker")
	}
}

func TestTrackerReset(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	now := start
	m := &fakeMirror{}
	tr := NewTracker([]string{RoutePricing}, WithMirror(m), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	tr.Add(ctx, RoutePricing)
	now = start.Add(time.Hour)
	if err := tr.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if got := tr.Snapshot()[RoutePricing]; got != 0 {
		t.Errorf("pricing after reset = %d, want 0", got)
	}
	if !tr.PeriodStart().Equal(now) {
		t.Errorf("PeriodStart = %v, want %v", tr.PeriodStart(), now)
	}
	if len(m.rotated) != 1 || m.rotated[0][RoutePricing] != 1 {
		t.Errorf("rotated = %v, want one period with pricing:1", m.rotated)
	}
	if m.incrs[RoutePricing] != 1 {
		t.Errorf("mirror incrs = %v, want pricing:1", m.incrs)
	}
}

func TestTrackerMirrorFailureIsIgnored(t *testing.T) {
	m := &fakeMirror{err: errors.New("connection refused")}
	tr := NewTracker([]string{RoutePricing}, WithMirror(m))
	ctx := context.Background()

	tr.Add(ctx, RoutePricing)
	if got := tr.Snapshot()[RoutePricing]; got != 1 {
		t.Errorf("pricing = %d, want 1", got)
	}
	if err := tr.Reset(ctx); err != nil {
		t.Errorf("Reset returned %v, want nil", err)
	}
}

func TestTrackerConcurrentAdd(t *testing.T) {
	tr := NewTracker([]string{RoutePricing})
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				tr.Add(ctx, RoutePricing)
			}
		}()
	}
	wg.Wait()

	if got := tr.Snapshot()[RoutePricing]; got != 1000 {
		t.Errorf("pricing = %d, want 1000", got)
	}
}
