package engine

import (
	"sync/atomic"
	"time"
)

// Clock supplies the wall-clock instants that stage timing is measured against.
// Tests and replay substitute a manual clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Sequence is a monotonic logical counter for engine events.
//
// Every admission, drop and transition is stamped with the next value so
// observers (journal, websocket clients) can order events without trusting
// wall-clock timestamps, which repeat when a frame chains two transitions.
//
// Thread-safety: Sequence is safe for concurrent use (atomic operations).
type Sequence struct {
	seq atomic.Int64
}

// NewSequence creates a counter starting at 0.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next sequence number. The first call returns 1.
func (s *Sequence) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the last issued number without incrementing.
func (s *Sequence) Current() int64 {
	return s.seq.Load()
}
