package moltbook

import (
	"sync"
	"time"
)

// TokenBucket is a lazily refilled token bucket. Refill is computed from
// elapsed time on each Allow call and capped at capacity; an empty bucket
// rejects immediately rather than queueing.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	ratePerSec float64
	tokens     float64
	lastRefill time.Time
	now        func() time.Time
}

func NewTokenBucket(capacity, ratePerSec float64) *TokenBucket {
	return newTokenBucketAt(capacity, ratePerSec, time.Now)
}

func newTokenBucketAt(capacity, ratePerSec float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		ratePerSec: ratePerSec,
		tokens:     capacity,
		lastRefill: now(),
		now:        now,
	}
}

// Allow consumes one token if available. It never blocks.
func (b *TokenBucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

func (b *TokenBucket) refillLocked() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.ratePerSec)
	}
	b.lastRefill = now
}

// PublishWindow bounds publishes to maxPerWindow within a rolling window.
// Timestamps outside the window are discarded on each check.
type PublishWindow struct {
	mu           sync.Mutex
	window       time.Duration
	maxPerWindow int
	stamps       []time.Time
	now          func() time.Time
}

func NewPublishWindow(window time.Duration, maxPerWindow int) *PublishWindow {
	return newPublishWindowAt(window, maxPerWindow, time.Now)
}

func newPublishWindowAt(window time.Duration, maxPerWindow int, now func() time.Time) *PublishWindow {
	return &PublishWindow{window: window, maxPerWindow: maxPerWindow, now: now}
}

// Allow records a publish if the window has room, rejecting otherwise.
func (w *PublishWindow) Allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	cutoff := now.Add(-w.window)
	kept := w.stamps[:0]
	for _, s := range w.stamps {
		if s.After(cutoff) {
			kept = append(kept, s)
		}
	}
	w.stamps = kept
	if len(w.stamps) >= w.maxPerWindow {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}
