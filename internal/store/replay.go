package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/scvi-aria/deko/internal/canvas"
	"github.com/scvi-aria/deko/internal/engine"
	"github.com/scvi-aria/deko/internal/template"
)

// ReplayResult reports whether re-simulating a run reproduced its journal.
type ReplayResult struct {
	RunID         string `json:"run_id"`
	Vendor        string `json:"vendor"`
	Orders        int    `json:"orders"`
	Dropped       int    `json:"dropped"`
	Transitions   int    `json:"transitions"`
	Deterministic bool   `json:"deterministic"`
	Mismatch      string `json:"mismatch,omitempty"`
}

// Replay re-runs a recorded run on a manual clock.
//
// Recorded arrivals are fed to a fresh engine at their offsets, and the engine
// is ticked at every recorded transition offset. Because stage timing only
// depends on those instants, a correct engine reproduces the journal event
// for event: same seq, stages, order numbers and offsets.
func (s *Store) Replay(ctx context.Context, runID string) (ReplayResult, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return ReplayResult{}, err
	}
	orders, err := s.ReadOrders(ctx, runID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", runID, err)
	}
	transitions, err := s.ReadTransitions(ctx, runID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", runID, err)
	}

	result := ReplayResult{
		RunID:       run.ID,
		Vendor:      run.Vendor,
		Orders:      len(orders),
		Transitions: len(transitions),
	}
	for _, o := range orders {
		if o.Outcome == OutcomeDropped {
			result.Dropped++
		}
	}

	recorded := journalLines(orders, transitions)
	replayed, err := simulate(run, orders, transitions)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", runID, err)
	}

	result.Mismatch = firstMismatch(recorded, replayed)
	result.Deterministic = result.Mismatch == ""
	return result, nil
}

// ReplayAll replays every run in the journal, oldest first.
func (s *Store) ReplayAll(ctx context.Context) ([]ReplayResult, error) {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]ReplayResult, 0, len(runs))
	for _, run := range runs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r, err := s.Replay(ctx, run.ID)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// replayClock is moved explicitly by simulate.
type replayClock struct {
	now time.Time
}

func (c *replayClock) Now() time.Time { return c.now }

// capture rebuilds journal records from a replayed engine.
type capture struct {
	run         Run
	orders      []OrderRecord
	transitions []TransitionRecord
}

func (c *capture) OnAdmit(a engine.Admit) {
	c.orders = append(c.orders, OrderRecord{
		RunID: c.run.ID, Seq: a.Seq, Offset: a.At.Sub(c.run.StartedAt),
		Order: a.Order, Outcome: OutcomeAdmitted, Pending: a.Pending,
	})
}

func (c *capture) OnDrop(d engine.Drop) {
	c.orders = append(c.orders, OrderRecord{
		RunID: c.run.ID, Seq: d.Seq, Offset: d.At.Sub(c.run.StartedAt),
		Order: d.Order, Outcome: OutcomeDropped, Pending: d.Pending,
	})
}

func (c *capture) OnTransition(t engine.Transition) {
	rec := TransitionRecord{
		RunID: c.run.ID, Seq: t.Seq, Offset: t.At.Sub(c.run.StartedAt),
		From: t.From, To: t.To, Pending: t.Pending,
	}
	if t.Order != nil {
		rec.OrderNumber = t.Order.Number
	}
	c.transitions = append(c.transitions, rec)
}

type replayStep struct {
	seq    int64
	offset time.Duration
	order  *OrderRecord
}

func simulate(run Run, orders []OrderRecord, transitions []TransitionRecord) ([]string, error) {
	clock := &replayClock{now: run.StartedAt}
	rec := &capture{run: run}

	eng, err := engine.New(template.ForVendor(run.Vendor), canvas.NewRecorder(),
		engine.WithClock(clock),
		engine.WithObserver(rec),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		return nil, err
	}
	defer eng.Destroy()

	steps := make([]replayStep, 0, len(orders)+len(transitions))
	for i := range orders {
		steps = append(steps, replayStep{seq: orders[i].Seq, offset: orders[i].Offset, order: &orders[i]})
	}
	for _, t := range transitions {
		steps = append(steps, replayStep{seq: t.Seq, offset: t.Offset})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].seq < steps[j].seq })

	for _, st := range steps {
		at := run.StartedAt.Add(st.offset)
		if at.After(clock.now) {
			clock.now = at
		}
		if st.order != nil {
			eng.RunOrder(st.order.Order)
			continue
		}
		// Ticking twice at one instant is a no-op, so transitions that were
		// chained in one frame are safe to tick for individually.
		eng.Tick(clock.now)
	}

	return journalLines(rec.orders, rec.transitions), nil
}

// journalLines renders orders and transitions as one seq-ordered listing.
func journalLines(orders []OrderRecord, transitions []TransitionRecord) []string {
	type line struct {
		seq  int64
		text string
	}
	lines := make([]line, 0, len(orders)+len(transitions))
	for _, o := range orders {
		lines = append(lines, line{o.Seq, fmt.Sprintf("seq=%d +%dms %s #%s pending=%d",
			o.Seq, o.Offset.Milliseconds(), o.Outcome, o.Order.Number, o.Pending)})
	}
	for _, t := range transitions {
		lines = append(lines, line{t.Seq, fmt.Sprintf("%s pending=%d", t, t.Pending)})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].seq < lines[j].seq })

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.text
	}
	return out
}

func firstMismatch(recorded, replayed []string) string {
	n := min(len(recorded), len(replayed))
	for i := 0; i < n; i++ {
		if recorded[i] != replayed[i] {
			return fmt.Sprintf("event %d: recorded %q, replayed %q", i+1, recorded[i], replayed[i])
		}
	}
	switch {
	case len(recorded) > n:
		return fmt.Sprintf("event %d: recorded %q, replay ended", n+1, recorded[n])
	case len(replayed) > n:
		return fmt.Sprintf("event %d: replay produced extra %q", n+1, replayed[n])
	}
	return ""
}
