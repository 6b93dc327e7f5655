package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/scvi-aria/deko/internal/domain"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, event)
		}
	}

	return buf.String()
}

func assertFinalStage(r *Result, a Assertion) error {
	if r.Final == *a.Stage {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalStage,
		Expected: a.Stage.String(),
		Actual:   r.Final.String(),
		Trace:    r.Trace,
	}
}

func assertDroppedCount(r *Result, a Assertion) error {
	if r.Dropped == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertDroppedCount,
		Expected: fmt.Sprintf("%d dropped", a.Count),
		Actual:   fmt.Sprintf("%d dropped", r.Dropped),
		Trace:    r.Trace,
	}
}

func assertTransitionCount(r *Result, a Assertion) error {
	n := len(r.Transitions())
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTransitionCount,
		Expected: fmt.Sprintf("%d transitions", a.Count),
		Actual:   fmt.Sprintf("%d transitions: %s", n, strings.Join(stagePath(r.Trace), ", ")),
	}
}

// assertCompletionOrder checks the orders that reached READY->IDLE, in order.
func assertCompletionOrder(r *Result, a Assertion) error {
	var done []string
	for _, e := range r.Transitions() {
		if *e.From == domain.StageReady && *e.To == domain.StageIdle {
			done = append(done, e.Order)
		}
	}
	if slices.Equal(done, a.Orders) {
		return nil
	}
	return &AssertionError{
		Type:     AssertCompletionOrder,
		Expected: strings.Join(a.Orders, ", "),
		Actual:   strings.Join(done, ", "),
		Trace:    r.Trace,
	}
}

// assertNoSkippedStages checks every transition against the stage sequence.
func assertNoSkippedStages(r *Result, _ Assertion) error {
	for _, e := range r.Transitions() {
		if !isLegalStep(*e.From, *e.To) {
			return &AssertionError{
				Type:     AssertNoSkippedStages,
				Expected: fmt.Sprintf("%s followed by %s", e.From, e.From.Next()),
				Actual:   e.String(),
				Trace:    r.Trace,
			}
		}
	}
	return nil
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalStage:
			err = assertFinalStage(result, a)
		case AssertDroppedCount:
			err = assertDroppedCount(result, a)
		case AssertTransitionCount:
			err = assertTransitionCount(result, a)
		case AssertCompletionOrder:
			err = assertCompletionOrder(result, a)
		case AssertNoSkippedStages:
			err = assertNoSkippedStages(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
