package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMinInterval(t *testing.T) {
	cases := []struct {
		rpm  int
		want time.Duration
	}{
		{60, time.Second},
		{15, 4 * time.Second},
		{7, 8572 * time.Millisecond}, // 60000/7 rounds up
		{1, time.Minute},
	}

	for _, c := range cases {
		if got := MinInterval(c.rpm); got != c.want {
			t.Errorf("MinInterval(%d) = %v, want %v", c.rpm, got, c.want)
		}
	}
}

func TestSlotDelay(t *testing.T) {
	now := time.Now()
	interval := 4 * time.Second

	// First request of a run waits nothing
	if d := SlotDelay(time.Time{}, interval, now); d != 0 {
		t.Errorf("expected zero delay for unset last send, got %v", d)
	}

	// Full interval remaining right after a send
	if d := SlotDelay(now, interval, now); d != interval {
		t.Errorf("expected %v delay, got %v", interval, d)
	}

	// Partial interval elapsed
	if d := SlotDelay(now.Add(-3*time.Second), interval, now); d != time.Second {
		t.Errorf("expected 1s delay, got %v", d)
	}

	// Interval already elapsed
	if d := SlotDelay(now.Add(-5*time.Second), interval, now); d != 0 {
		t.Errorf("expected zero delay, got %v", d)
	}
}

func TestIntervalPacerSpacing(t *testing.T) {
	p := NewIntervalPacer(1200) // 50ms interval
	ctx := context.Background()

	var sends []time.Time
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
		sends = append(sends, time.Now())
	}

	for i := 1; i < len(sends); i++ {
		gap := sends[i].Sub(sends[i-1])
		if gap < p.MinInterval()-5*time.Millisecond {
			t.Errorf("sends %d and %d only %v apart, want >= %v", i-1, i, gap, p.MinInterval())
		}
	}
}

func TestIntervalPacerFirstWaitImmediate(t *testing.T) {
	p := NewIntervalPacer(1)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first Wait took %v, expected immediate return", elapsed)
	}
}

func TestIntervalPacerCancellation(t *testing.T) {
	p := NewIntervalPacer(1) // 60s interval

	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := p.Wait(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("expected context deadline error, got %v", err)
	}
}

func TestIntervalPacerReset(t *testing.T) {
	p := NewIntervalPacer(1)

	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	p.Reset()

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Wait after Reset took %v, expected immediate return", elapsed)
	}
}
