// Package store is the SQLite journal of display runs.
//
// A run is one engine lifetime, identified by a UUIDv7. Within a run the
// journal records:
//   - Orders: every arrival, admitted or dropped, with its items
//   - Transitions: every stage change and the order it belonged to
//
// # Logical Time
//
// Rows are keyed by (run_id, seq) where seq is the engine's logical counter.
// Reads always ORDER BY seq. Wall time is kept only as a millisecond offset
// from run start, which is what Replay feeds back into a manual clock.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
