package domain

import (
	"fmt"
	"time"
)

// Stage is one discrete phase of an order's visual lifecycle.
//
// Stages are ordered. IDLE is both the initial state and the state the display
// returns to after every order; the remaining four form a strict linear sequence
// traversed exactly once per order.
type Stage int

const (
	StageIdle Stage = iota
	StageReceived
	StagePreparing
	StagePackaging
	StageReady

	stageCount
)

// Sequence is the fixed order in which an order's stages are traversed.
var Sequence = [...]Stage{StageReceived, StagePreparing, StagePackaging, StageReady}

var stageNames = [stageCount]string{
	StageIdle:      "IDLE",
	StageReceived:  "RECEIVED",
	StagePreparing: "PREPARING",
	StagePackaging: "PACKAGING",
	StageReady:     "READY",
}

func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Valid reports whether s is one of the five known stages.
func (s Stage) Valid() bool {
	return s >= StageIdle && s < stageCount
}

// Next returns the stage that follows s. READY wraps back to IDLE; IDLE has no
// automatic successor and returns itself.
func (s Stage) Next() Stage {
	switch s {
	case StageReceived, StagePreparing, StagePackaging:
		return s + 1
	case StageReady:
		return StageIdle
	default:
		return s
	}
}

// ParseStage converts a stage name ("PREPARING") back into a Stage.
func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return StageIdle, fmt.Errorf("unknown stage %q", name)
}

// MarshalText lets stages appear by name in JSON and YAML.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stage %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Stage) UnmarshalText(b []byte) error {
	parsed, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// StageConfig is the timing and display label of one stage.
// A zero Duration on IDLE means "wait indefinitely".
type StageConfig struct {
	Duration time.Duration
	Label    string
}

// StageTable holds a StageConfig for every stage, indexed by Stage.
type StageTable [stageCount]StageConfig

// Get returns the config for s. Unknown stages yield the zero config.
func (t StageTable) Get(s Stage) StageConfig {
	if !s.Valid() {
		return StageConfig{}
	}
	return t[s]
}

// Total is the time one order takes from RECEIVED until the return to IDLE.
func (t StageTable) Total() time.Duration {
	var total time.Duration
	for _, s := range Sequence {
		total += t[s].Duration
	}
	return total
}

// Validate checks that order stages have positive durations and IDLE waits
// indefinitely.
func (t StageTable) Validate() error {
	if t[StageIdle].Duration != 0 {
		return fmt.Errorf("stage %s: duration must be 0, got %s", StageIdle, t[StageIdle].Duration)
	}
	for _, s := range Sequence {
		if t[s].Duration <= 0 {
			return fmt.Errorf("stage %s: duration must be positive, got %s", s, t[s].Duration)
		}
	}
	return nil
}
