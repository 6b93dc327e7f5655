package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/scvi-aria/deko/internal/canvas"
	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/engine"
	"github.com/scvi-aria/deko/internal/store"
	"github.com/scvi-aria/deko/internal/template"
	"github.com/scvi-aria/deko/internal/testutil"
)

// Harness holds the per-run collaborators of one scenario.
type Harness struct {
	store   *store.Store
	engine  *engine.Engine
	clock   *testutil.ManualClock
	journal *store.Journal
	result  *Result
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh engine and a fresh in-memory journal.
// A non-nil error means the run could not be set up; scenario failures are
// reported through Result.Pass and Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewManualClock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tpl := template.ForVendor(scenario.VendorKey())

	journal, err := store.StartJournal(ctx, st, testutil.NewFixedRunID(scenario.Name),
		scenario.VendorKey(), tpl.Name(), clock.Now(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start journal: %w", err)
	}

	h := &Harness{
		store:   st,
		clock:   clock,
		journal: journal,
		result:  NewResult(),
		logger:  logger,
	}
	h.result.Vendor = scenario.VendorKey()
	h.result.Template = tpl.Name()

	eng, err := engine.New(tpl, canvas.NewRecorder(),
		engine.WithClock(clock),
		engine.WithObserver(journal),
		engine.WithObserver(h),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	h.engine = eng

	h.play(scenario)

	h.result.Final = eng.State()
	h.result.Dropped = eng.Snapshot().Dropped
	eng.Destroy()

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}
	h.checkReplay(ctx)

	return h.result, nil
}

// play walks the scenario timeline.
func (h *Harness) play(s *Scenario) {
	orders := s.Orders
	expects := make(map[int64][]Expectation)
	for _, e := range s.Expect {
		expects[e.AtMS] = append(expects[e.AtMS], e)
	}

	for _, at := range timeline(s) {
		now := h.clock.Set(time.Duration(at) * time.Millisecond)

		for len(orders) > 0 && orders[0].AtMS == at {
			h.engine.RunOrder(orders[0].Order)
			orders = orders[1:]
		}

		h.engine.Frame(now)
		h.result.Frames++

		for _, e := range expects[at] {
			if got := h.engine.State(); got != *e.Stage {
				h.result.AddError(fmt.Sprintf("at %dms: expected stage %s, got %s", at, *e.Stage, got))
			}
		}
	}
}

// timeline returns every instant, in milliseconds, at which a frame is drawn.
func timeline(s *Scenario) []int64 {
	set := make(map[int64]struct{})
	if s.FrameMS > 0 {
		for t := int64(0); t <= s.DurationMS; t += s.FrameMS {
			set[t] = struct{}{}
		}
	}
	for _, o := range s.Orders {
		set[o.AtMS] = struct{}{}
	}
	for _, e := range s.Expect {
		set[e.AtMS] = struct{}{}
	}
	set[s.DurationMS] = struct{}{}

	out := make([]int64, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// checkReplay re-simulates the journaled run and fails the result if the
// engine does not reproduce it.
func (h *Harness) checkReplay(ctx context.Context) {
	if n := h.journal.Failed(); n > 0 {
		h.result.AddError(fmt.Sprintf("journal: %d writes failed", n))
		return
	}
	replay, err := h.store.Replay(ctx, h.journal.RunID())
	if err != nil {
		h.result.AddError(fmt.Sprintf("replay: %v", err))
		return
	}
	if !replay.Deterministic {
		h.result.AddError("replay diverged: " + replay.Mismatch)
	}
}

func (h *Harness) offset(at time.Time) time.Duration {
	return at.Sub(testutil.Epoch)
}

func (h *Harness) OnAdmit(a engine.Admit) {
	h.result.Trace = append(h.result.Trace, TraceEvent{
		Kind: EventAdmit, Seq: a.Seq, Offset: h.offset(a.At),
		Order: a.Order.Number, Pending: a.Pending,
	})
}

func (h *Harness) OnDrop(d engine.Drop) {
	h.result.Trace = append(h.result.Trace, TraceEvent{
		Kind: EventDrop, Seq: d.Seq, Offset: h.offset(d.At),
		Order: d.Order.Number, Pending: d.Pending,
	})
}

func (h *Harness) OnTransition(t engine.Transition) {
	from, to := t.From, t.To
	ev := TraceEvent{
		Kind: EventTransition, Seq: t.Seq, Offset: h.offset(t.At),
		From: &from, To: &to, Label: t.Label, Pending: t.Pending,
	}
	if t.Order != nil {
		ev.Order = t.Order.Number
	}
	h.result.Trace = append(h.result.Trace, ev)
}

var _ engine.Observer = (*Harness)(nil)

// stagePath lists "FROM->TO" for each transition.
func stagePath(trace []TraceEvent) []string {
	var out []string
	for _, e := range trace {
		if e.Kind == EventTransition {
			out = append(out, e.From.String()+"->"+e.To.String())
		}
	}
	return out
}

func isLegalStep(from, to domain.Stage) bool {
	if from == domain.StageIdle {
		return to == domain.StageReceived
	}
	return from.Next() == to
}
