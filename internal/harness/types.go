package harness

import (
	"fmt"
	"time"

	"github.com/scvi-aria/deko/internal/domain"
)

// Trace event kinds.
const (
	EventAdmit      = "admit"
	EventDrop       = "drop"
	EventTransition = "transition"
)

// TraceEvent is one engine event, stamped with its offset from session start.
type TraceEvent struct {
	Kind    string        `json:"kind"`
	Seq     int64         `json:"seq"`
	Offset  time.Duration `json:"offset_ms"`
	Order   string        `json:"order,omitempty"`
	From    *domain.Stage `json:"from,omitempty"`
	To      *domain.Stage `json:"to,omitempty"`
	Label   string        `json:"label,omitempty"`
	Pending int           `json:"pending"`
}

// String renders the event as one golden trace line.
func (e TraceEvent) String() string {
	ms := e.Offset.Milliseconds()
	switch e.Kind {
	case EventTransition:
		return fmt.Sprintf("+%dms seq=%d %s->%s #%s %q pending=%d", ms, e.Seq, *e.From, *e.To, e.Order, e.Label, e.Pending)
	default:
		return fmt.Sprintf("+%dms seq=%d %s #%s pending=%d", ms, e.Seq, e.Kind, e.Order, e.Pending)
	}
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expectation, assertion and the replay check held.
	Pass bool `json:"pass"`

	Vendor   string       `json:"vendor"`
	Template string       `json:"template"`
	Trace    []TraceEvent `json:"trace"`

	// Final is the stage after the last instant.
	Final   domain.Stage `json:"final"`
	Dropped int          `json:"dropped"`
	Frames  int          `json:"frames"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Transitions returns only the stage changes in the trace.
func (r *Result) Transitions() []TraceEvent {
	var out []TraceEvent
	for _, e := range r.Trace {
		if e.Kind == EventTransition {
			out = append(out, e)
		}
	}
	return out
}
