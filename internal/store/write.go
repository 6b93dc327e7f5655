package store

import (
	"context"
	"fmt"
	"time"
)

// BeginRun inserts a run record. Uses ON CONFLICT(id) DO NOTHING so a
// restarted writer with the same ID does not fail.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, vendor, template, started_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Vendor,
		run.Template,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// EndRun stamps the run's end time.
func (s *Store) EndRun(ctx context.Context, runID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET ended_at = ? WHERE id = ?`, formatTime(at), runID)
	if err != nil {
		return fmt.Errorf("end run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("end run: %w", ErrRunNotFound)
	}
	return nil
}

// WriteOrder inserts an order arrival. The run must exist (foreign key).
// Duplicate (run_id, seq) writes are silently ignored.
func (s *Store) WriteOrder(ctx context.Context, rec OrderRecord) error {
	items, err := marshalItems(rec.Order.Items)
	if err != nil {
		return fmt.Errorf("write order: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders
		(run_id, seq, offset_ms, order_number, items, outcome, pending)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		rec.RunID,
		rec.Seq,
		rec.Offset.Milliseconds(),
		rec.Order.Number,
		items,
		string(rec.Outcome),
		rec.Pending,
	)
	if err != nil {
		return fmt.Errorf("write order: %w", err)
	}
	return nil
}

// WriteTransition inserts a stage change. The run must exist (foreign key).
// Duplicate (run_id, seq) writes are silently ignored.
func (s *Store) WriteTransition(ctx context.Context, rec TransitionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transitions
		(run_id, seq, offset_ms, from_stage, to_stage, order_number, pending)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		rec.RunID,
		rec.Seq,
		rec.Offset.Milliseconds(),
		rec.From.String(),
		rec.To.String(),
		rec.OrderNumber,
		rec.Pending,
	)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}
	return nil
}
