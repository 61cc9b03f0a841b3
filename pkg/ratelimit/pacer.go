package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum spacing between outbound requests.
type Pacer interface {
	// Wait blocks until the next request may be sent and records the send
	// slot. It returns early with the context error if ctx is cancelled.
	Wait(ctx context.Context) error
	// MinInterval returns the enforced spacing between requests.
	MinInterval() time.Duration
	// Reset clears the recorded send time.
	Reset()
}

// MinInterval derives the spacing between requests from a requests-per-minute
// budget, rounding up so the budget is never exceeded.
func MinInterval(requestsPerMinute int) time.Duration {
	ms := (60000 + int64(requestsPerMinute) - 1) / int64(requestsPerMinute)
	return time.Duration(ms) * time.Millisecond
}

// SlotDelay computes how long a caller must still wait before the next send,
// given the previous send time. A zero lastSent means no request has been
// sent yet and the delay is zero.
func SlotDelay(lastSent time.Time, minInterval time.Duration, now time.Time) time.Duration {
	if lastSent.IsZero() {
		return 0
	}
	delay := lastSent.Add(minInterval).Sub(now)
	if delay < 0 {
		return 0
	}
	return delay
}

// IntervalPacer implements Pacer with a fixed inter-request interval.
// The slot is claimed when Wait returns, not when the response arrives, so
// slow responses do not earn extra headroom.
type IntervalPacer struct {
	minInterval time.Duration
	lastSent    time.Time
	mu          sync.Mutex
}

// NewIntervalPacer creates a pacer for the given requests-per-minute budget.
func NewIntervalPacer(requestsPerMinute int) *IntervalPacer {
	return &IntervalPacer{
		minInterval: MinInterval(requestsPerMinute),
	}
}

// Wait blocks until the minimum interval since the previous send has
// elapsed, then marks the current time as the send time.
func (p *IntervalPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	delay := SlotDelay(p.lastSent, p.minInterval, time.Now())
	p.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	p.mu.Lock()
	p.lastSent = time.Now()
	p.mu.Unlock()

	return nil
}

// MinInterval returns the enforced spacing between requests.
func (p *IntervalPacer) MinInterval() time.Duration {
	return p.minInterval
}

// Reset clears the recorded send time so the next Wait returns immediately.
func (p *IntervalPacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastSent = time.Time{}
}
