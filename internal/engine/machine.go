package engine

import (
	"time"

	"github.com/scvi-aria/deko/internal/domain"
)

// stageMachine tracks the current stage, when it was entered and which order
// it belongs to.
//
// Invariant: current is nil exactly when stage is IDLE.
type stageMachine struct {
	stages    domain.StageTable
	stage     domain.Stage
	enteredAt time.Time
	current   *domain.Order

	// notify is called once per transition, synchronously, after the new
	// state is in place.
	notify func(from, to domain.Stage, order *domain.Order, at time.Time)
}

func newStageMachine(stages domain.StageTable, now time.Time) *stageMachine {
	return &stageMachine{
		stages:    stages,
		stage:     domain.StageIdle,
		enteredAt: now,
	}
}

// start puts order in flight. It is a no-op unless the machine is IDLE.
func (m *stageMachine) start(order domain.Order, now time.Time) bool {
	if m.stage != domain.StageIdle {
		return false
	}
	m.current = &order
	m.enter(domain.StageReceived, now)
	return true
}

// tick advances at most one stage once the current stage's duration has
// elapsed. It reports whether the in-flight order finished (READY → IDLE).
func (m *stageMachine) tick(now time.Time) bool {
	if m.stage == domain.StageIdle {
		return false
	}
	cfg := m.stages.Get(m.stage)
	if now.Sub(m.enteredAt) < cfg.Duration {
		return false
	}

	next := m.stage.Next()
	if next == domain.StageIdle {
		finished := m.current
		m.current = nil
		m.stage, m.enteredAt = next, now
		m.fire(domain.StageReady, next, finished, now)
		return true
	}
	m.enter(next, now)
	return false
}

func (m *stageMachine) enter(to domain.Stage, now time.Time) {
	from := m.stage
	m.stage, m.enteredAt = to, now
	m.fire(from, to, m.current, now)
}

func (m *stageMachine) fire(from, to domain.Stage, order *domain.Order, at time.Time) {
	if m.notify != nil {
		m.notify(from, to, order, at)
	}
}

func (m *stageMachine) elapsed(now time.Time) time.Duration {
	return now.Sub(m.enteredAt)
}
