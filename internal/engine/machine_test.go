package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/template"
	"github.com/scvi-aria/deko/internal/testutil"
)

type firing struct {
	from, to domain.Stage
	order    string
}

func newTestMachine(clock *testutil.ManualClock) (*stageMachine, *[]firing) {
	var fired []firing
	m := newStageMachine(template.Coffee{}.Stages(), clock.Now())
	m.notify = func(from, to domain.Stage, order *domain.Order, _ time.Time) {
		f := firing{from: from, to: to}
		if order != nil {
			f.order = order.Number
		}
		fired = append(fired, f)
	}
	return m, &fired
}

func TestStageMachine_IdleNeverAdvances(t *testing.T) {
	clock := testutil.NewManualClock()
	m, fired := newTestMachine(clock)

	assert.False(t, m.tick(clock.Advance(time.Hour)))
	assert.Equal(t, domain.StageIdle, m.stage)
	assert.Nil(t, m.current)
	assert.Empty(t, *fired)
}

func TestStageMachine_StartOnlyFromIdle(t *testing.T) {
	clock := testutil.NewManualClock()
	m, fired := newTestMachine(clock)

	require.True(t, m.start(domain.Order{Number: "001"}, clock.Now()))
	assert.False(t, m.start(domain.Order{Number: "002"}, clock.Now()))

	assert.Equal(t, domain.StageReceived, m.stage)
	assert.Equal(t, "001", m.current.Number)
	assert.Equal(t, []firing{{domain.StageIdle, domain.StageReceived, "001"}}, *fired)
}

func TestStageMachine_OneTransitionPerTick(t *testing.T) {
	clock := testutil.NewManualClock()
	m, fired := newTestMachine(clock)
	m.start(domain.Order{Number: "001"}, clock.Now())

	// far past every stage: still only one step per tick
	m.tick(clock.Advance(time.Minute))
	assert.Equal(t, domain.StagePreparing, m.stage)
	m.tick(clock.Now())
	assert.Equal(t, domain.StagePreparing, m.stage, "new stage is timed from the tick that entered it")
	assert.Len(t, *fired, 2)
}

func TestStageMachine_DurationBoundary(t *testing.T) {
	clock := testutil.NewManualClock()
	m, _ := newTestMachine(clock)
	m.start(domain.Order{Number: "001"}, clock.Now())
	m.tick(clock.Set(3000 * time.Millisecond))
	require.Equal(t, domain.StagePreparing, m.stage)

	m.tick(clock.Set(3000*time.Millisecond + 4999*time.Millisecond))
	assert.Equal(t, domain.StagePreparing, m.stage, "4999ms into a 5000ms stage")

	m.tick(clock.Set(3000*time.Millisecond + 5000*time.Millisecond))
	assert.Equal(t, domain.StagePackaging, m.stage, "5000ms into a 5000ms stage")
}

func TestStageMachine_FullSequence(t *testing.T) {
	clock := testutil.NewManualClock()
	m, fired := newTestMachine(clock)
	m.start(domain.Order{Number: "001"}, clock.Now())

	var completed bool
	for i := 0; i < 4; i++ {
		completed = m.tick(clock.Advance(m.stages.Get(m.stage).Duration))
	}

	assert.True(t, completed)
	assert.Equal(t, domain.StageIdle, m.stage)
	assert.Nil(t, m.current, "no order once IDLE")
	assert.Equal(t, 15*time.Second, clock.Elapsed())
	assert.Equal(t, []firing{
		{domain.StageIdle, domain.StageReceived, "001"},
		{domain.StageReceived, domain.StagePreparing, "001"},
		{domain.StagePreparing, domain.StagePackaging, "001"},
		{domain.StagePackaging, domain.StageReady, "001"},
		{domain.StageReady, domain.StageIdle, "001"},
	}, *fired)
}
