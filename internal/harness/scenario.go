package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/template"
)

// Scenario is a scripted display session: orders arriving at fixed offsets,
// a frame cadence, and what the display must show along the way.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Vendor selects the template. Empty means the default vendor; unknown
	// keys fall back the same way a live display does.
	Vendor string `yaml:"vendor,omitempty"`

	// FrameMS is the refresh interval in milliseconds. Zero means frames are
	// drawn only at order and expectation instants.
	FrameMS int64 `yaml:"frame_ms"`

	// DurationMS is how long the session runs.
	DurationMS int64 `yaml:"duration_ms"`

	Orders     []OrderStep   `yaml:"orders,omitempty"`
	Expect     []Expectation `yaml:"expect,omitempty"`
	Assertions []Assertion   `yaml:"assertions,omitempty"`
}

// OrderStep delivers one order at an offset.
type OrderStep struct {
	AtMS         int64 `yaml:"at_ms"`
	domain.Order `yaml:",inline"`
}

// Expectation checks the displayed stage at an offset.
type Expectation struct {
	AtMS  int64         `yaml:"at_ms"`
	Stage *domain.Stage `yaml:"stage"`
}

// Assertion validates the whole session once it has run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is used by dropped_count and transition_count.
	Count int `yaml:"count,omitempty"`

	// Stage is used by final_stage.
	Stage *domain.Stage `yaml:"stage,omitempty"`

	// Orders is used by completion_order.
	Orders []string `yaml:"orders,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalStage      = "final_stage"
	AssertDroppedCount    = "dropped_count"
	AssertTransitionCount = "transition_count"
	AssertCompletionOrder = "completion_order"
	AssertNoSkippedStages = "no_skipped_stages"
)

// Duration returns DurationMS as a time.Duration.
func (s *Scenario) Duration() time.Duration {
	return time.Duration(s.DurationMS) * time.Millisecond
}

// VendorKey returns the configured vendor, or the default when empty.
func (s *Scenario) VendorKey() string {
	if s.Vendor == "" {
		return template.DefaultVendor
	}
	return s.Vendor
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", name, s.Name, prev)
		}
		seen[s.Name] = name
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.DurationMS <= 0 {
		return fmt.Errorf("duration_ms must be positive")
	}

	if s.FrameMS < 0 {
		return fmt.Errorf("frame_ms must be non-negative")
	}

	for i, o := range s.Orders {
		if o.Number == "" {
			return fmt.Errorf("orders[%d]: order_number is required", i)
		}
		if o.AtMS < 0 || o.AtMS > s.DurationMS {
			return fmt.Errorf("orders[%d]: at_ms %d outside [0, %d]", i, o.AtMS, s.DurationMS)
		}
		if i > 0 && o.AtMS < s.Orders[i-1].AtMS {
			return fmt.Errorf("orders[%d]: at_ms must not decrease", i)
		}
	}

	for i, e := range s.Expect {
		if e.Stage == nil {
			return fmt.Errorf("expect[%d]: stage is required", i)
		}
		if e.AtMS < 0 || e.AtMS > s.DurationMS {
			return fmt.Errorf("expect[%d]: at_ms %d outside [0, %d]", i, e.AtMS, s.DurationMS)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalStage:
		if a.Stage == nil {
			return fmt.Errorf("assertions[%d]: stage is required for final_stage", index)
		}
	case AssertDroppedCount, AssertTransitionCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertCompletionOrder:
		if len(a.Orders) == 0 {
			return fmt.Errorf("assertions[%d]: orders list is required for completion_order", index)
		}
	case AssertNoSkippedStages:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
