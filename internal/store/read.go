package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/scvi-aria/deko/internal/domain"
)

// ErrRunNotFound is returned when a run ID has no runs row.
var ErrRunNotFound = errors.New("run not found")

// ListRuns returns every run, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vendor, template, started_at, ended_at
		FROM runs
		ORDER BY started_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun retrieves a single run by ID.
// Returns ErrRunNotFound if there is none.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, vendor, template, started_at, ended_at
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	return run, err
}

// ReadOrders returns a run's order arrivals ordered by seq.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadOrders(ctx context.Context, runID string) ([]OrderRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, offset_ms, order_number, items, outcome, pending
		FROM orders
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	records := []OrderRecord{}
	for rows.Next() {
		var (
			rec     OrderRecord
			offset  int64
			items   string
			outcome string
		)
		if err := rows.Scan(&rec.RunID, &rec.Seq, &offset, &rec.Order.Number, &items, &outcome, &rec.Pending); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		rec.Offset = time.Duration(offset) * time.Millisecond
		rec.Outcome = Outcome(outcome)
		if rec.Order.Items, err = unmarshalItems(items); err != nil {
			return nil, fmt.Errorf("order seq %d: %w", rec.Seq, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return records, nil
}

// ReadTransitions returns a run's stage changes ordered by seq.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadTransitions(ctx context.Context, runID string) ([]TransitionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, offset_ms, from_stage, to_stage, order_number, pending
		FROM transitions
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	records := []TransitionRecord{}
	for rows.Next() {
		var (
			rec      TransitionRecord
			offset   int64
			from, to string
		)
		if err := rows.Scan(&rec.RunID, &rec.Seq, &offset, &from, &to, &rec.OrderNumber, &rec.Pending); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		rec.Offset = time.Duration(offset) * time.Millisecond
		if rec.From, err = domain.ParseStage(from); err != nil {
			return nil, fmt.Errorf("transition seq %d: %w", rec.Seq, err)
		}
		if rec.To, err = domain.ParseStage(to); err != nil {
			return nil, fmt.Errorf("transition seq %d: %w", rec.Seq, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run     Run
		started string
		ended   sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Vendor, &run.Template, &started, &ended); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return Run{}, err
	}
	if ended.Valid {
		t, err := parseTime(ended.String)
		if err != nil {
			return Run{}, err
		}
		run.EndedAt = &t
	}
	return run, nil
}
