package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/scvi-aria/deko/internal/engine"
)

// Journal is an engine.Observer that writes every event of one run.
//
// Writes happen synchronously on the engine's goroutine. A failed write is
// logged and counted; it never stops the display.
type Journal struct {
	store  *Store
	ctx    context.Context
	run    Run
	logger *slog.Logger

	mu     sync.Mutex
	failed int
}

// StartJournal records a new run and returns the observer for it. start is
// the engine clock's instant at run start; offsets are measured from it.
func StartJournal(ctx context.Context, s *Store, ids IDGenerator, vendor, templateName string, start time.Time, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	run := Run{
		ID:        ids.Generate(),
		Vendor:    vendor,
		Template:  templateName,
		StartedAt: start,
	}
	if err := s.BeginRun(ctx, run); err != nil {
		return nil, err
	}
	logger.Info("journal started", "run", run.ID, "vendor", vendor)
	return &Journal{
		store:  s,
		ctx:    ctx,
		run:    run,
		logger: logger.With("run", run.ID),
	}, nil
}

// RunID returns the run identifier.
func (j *Journal) RunID() string {
	return j.run.ID
}

// Failed returns how many writes have failed.
func (j *Journal) Failed() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.failed
}

// Finish stamps the run's end time.
func (j *Journal) Finish(ctx context.Context, at time.Time) error {
	return j.store.EndRun(ctx, j.run.ID, at)
}

func (j *Journal) OnAdmit(a engine.Admit) {
	j.writeOrder(a.Seq, a.At, a.Order.Number, a.Order.Items, OutcomeAdmitted, a.Pending)
}

func (j *Journal) OnDrop(d engine.Drop) {
	j.writeOrder(d.Seq, d.At, d.Order.Number, d.Order.Items, OutcomeDropped, d.Pending)
}

func (j *Journal) OnTransition(t engine.Transition) {
	rec := TransitionRecord{
		RunID:   j.run.ID,
		Seq:     t.Seq,
		Offset:  j.offset(t.At),
		From:    t.From,
		To:      t.To,
		Pending: t.Pending,
	}
	if t.Order != nil {
		rec.OrderNumber = t.Order.Number
	}
	j.check(j.store.WriteTransition(j.ctx, rec), t.Seq)
}

func (j *Journal) writeOrder(seq int64, at time.Time, number string, items []string, outcome Outcome, pending int) {
	rec := OrderRecord{
		RunID:   j.run.ID,
		Seq:     seq,
		Offset:  j.offset(at),
		Outcome: outcome,
		Pending: pending,
	}
	rec.Order.Number = number
	rec.Order.Items = items
	j.check(j.store.WriteOrder(j.ctx, rec), seq)
}

func (j *Journal) offset(at time.Time) time.Duration {
	d := at.Sub(j.run.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

func (j *Journal) check(err error, seq int64) {
	if err == nil {
		return
	}
	j.mu.Lock()
	j.failed++
	j.mu.Unlock()
	j.logger.Warn("journal write failed", "seq", seq, "error", err)
}
