package testutil

import (
	"sync"
	"time"
)

// DefaultBase is the first instant a StepClock reports when no base is given.
var DefaultBase = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// StepClock is a deterministic time source for tests and scenarios.
//
// The n-th call to Now returns base + n*step, so the first call returns
// base + step. Plug it into store.WithClock to get byte-stable log
// timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	base time.Time
	step time.Duration
	n    int64
}

// NewStepClock creates a clock. A zero base means DefaultBase; a
// non-positive step means one second.
func NewStepClock(base time.Time, step time.Duration) *StepClock {
	if base.IsZero() {
		base = DefaultBase
	}
	if step <= 0 {
		step = time.Second
	}
	return &StepClock{base: base, step: step}
}

// Now advances the clock one step and returns the new time.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.base.Add(time.Duration(c.n) * c.step)
}

// Current returns the last time handed out without advancing.
// Before the first Now it returns base.
func (c *StepClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base.Add(time.Duration(c.n) * c.step)
}

// Reset rewinds the clock so the next Now returns base + step again.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
