package provider

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum spacing between outbound requests. Stooq has
// no documented quota but bans aggressive scrapers, so the daily pipeline
// paces its per-ticker downloads instead of firing them back to back.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Wait blocks until the next request slot or until ctx is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()
	if t.next.Before(now) {
		t.next = now
	}
	wait := t.next.Sub(now)
	t.next = t.next.Add(t.interval)
	t.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
