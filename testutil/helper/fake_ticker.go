package helper

import (
	"sync"
	"time"
)

// FakeTicker is a manually driven ticker: a tick is delivered only when Tick is called.
type FakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

// NewFakeTicker creates a FakeTicker. Its channel is unbuffered, so Tick returns only
// once the tick was received.
func NewFakeTicker() *FakeTicker {
	return &FakeTicker{c: make(chan time.Time)}
}

// C returns the tick channel.
func (t *FakeTicker) C() <-chan time.Time {
	return t.c
}

// Stop marks the ticker stopped; further ticks are dropped.
func (t *FakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
}

// Stopped reports whether Stop was called.
func (t *FakeTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.stopped
}

// Tick delivers one tick, blocking until it is received. It returns false if the ticker is stopped
// or the tick was not received within timeout.
func (t *FakeTicker) Tick(timeout time.Duration) bool {
	if t.Stopped() {
		return false
	}

	select {
	case t.c <- time.Now():
		return true
	case <-time.After(timeout):
		return false
	}
}
