// Package engine implements the order display: a bounded order queue, the
// stage state machine and the per-frame render contract.
//
// ARCHITECTURE:
//
// Single-Writer Frame Loop:
// The engine owns all of its state and takes no locks. A host drives it from
// one goroutine by calling RunOrder as orders arrive and Frame on every
// display refresh. display.Driver is the standard host: it serializes both
// behind a mutex and a time.Ticker.
//
// Frame Processing:
//  1. elapsed = now - enteredAt for the current stage
//  2. the template draws the scene for (stage, elapsed) onto a fresh canvas
//  3. the overlay adds the stage label and order line
//  4. the surface presents the frame
//  5. the stage machine advances at most one stage
//  6. if the order finished, the next queued order starts in the same frame
//
// Stages are timed from the frame in which they were entered, so a stage lasts
// its configured duration rounded up to the host's frame interval.
//
// Event Ordering:
// Admissions, drops and transitions are stamped with a monotonic logical seq
// from Sequence.Next(). Two transitions chained in one frame share a
// timestamp but never a seq.
package engine
