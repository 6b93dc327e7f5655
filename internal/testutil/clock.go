package testutil

import (
	"sync"
	"time"
)

// Epoch is the instant every ManualClock starts at unless told otherwise.
// Scenario traces report offsets from it.
var Epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// ManualClock is a wall clock that only moves when told to.
//
// It satisfies engine.Clock, letting tests put the engine at an exact instant
// (e.g. 4999ms vs 5000ms into a stage) instead of sleeping.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
}

// NewManualClock creates a clock fixed at Epoch.
func NewManualClock() *ManualClock {
	return NewManualClockAt(Epoch)
}

// NewManualClockAt creates a clock fixed at start.
func NewManualClockAt(start time.Time) *ManualClock {
	return &ManualClock{start: start, now: start}
}

// Now returns the current instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new instant.
// Negative durations are ignored; the clock never runs backwards.
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return c.now
}

// Set moves the clock to start+offset. Offsets earlier than the current
// instant are ignored.
func (c *ManualClock) Set(offset time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.start.Add(offset); t.After(c.now) {
		c.now = t
	}
	return c.now
}

// Elapsed returns how far the clock has moved since it was created.
func (c *ManualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(c.start)
}

// Reset returns the clock to its start instant.
//
// Used for test reuse. After Reset(), Elapsed() is 0.
func (c *ManualClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
