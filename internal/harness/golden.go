package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir is where golden traces live, relative to the scenario package.
const GoldenDir = "testdata/golden"

// Golden renders the trace snapshot compared against golden files: a short
// header, one line per engine event, and the final state.
func Golden(s *Scenario, r *Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "scenario: %s\n", s.Name)
	fmt.Fprintf(&buf, "vendor: %s (%s)\n", r.Vendor, r.Template)
	fmt.Fprintf(&buf, "frame_ms: %d\n", s.FrameMS)
	buf.WriteString("---\n")
	for _, e := range r.Trace {
		buf.WriteString(e.String())
		buf.WriteByte('\n')
	}
	buf.WriteString("---\n")
	fmt.Fprintf(&buf, "final: %s dropped=%d\n", r.Final, r.Dropped)
	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Golden(scenario, result))
}

// ErrGoldenMismatch is returned by CheckGolden when the trace differs.
var ErrGoldenMismatch = errors.New("trace does not match golden file")

// CheckGolden is the non-test counterpart of AssertGolden used by
// `deko test`. With update set the file is (re)written; otherwise a missing
// or different file is an error.
func CheckGolden(dir string, scenario *Scenario, result *Result, update bool) error {
	path := filepath.Join(dir, scenario.Name+".golden")
	got := Golden(scenario, result)

	if update {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create golden dir: %w", err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			return fmt.Errorf("write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read golden file: %w", err)
	}
	if !bytes.Equal(want, got) {
		return fmt.Errorf("%s: %w", path, ErrGoldenMismatch)
	}
	return nil
}
