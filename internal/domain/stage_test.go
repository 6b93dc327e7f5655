package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_NextFollowsSequence(t *testing.T) {
	got := []Stage{}
	s := StageReceived
	for i := 0; i < 4; i++ {
		got = append(got, s)
		s = s.Next()
	}
	assert.Equal(t, []Stage{StageReceived, StagePreparing, StagePackaging, StageReady}, got)
	assert.Equal(t, StageIdle, s, "READY should wrap to IDLE")
	assert.Equal(t, StageIdle, StageIdle.Next(), "IDLE never auto-advances")
}

func TestStage_StringAndParse(t *testing.T) {
	for s := StageIdle; s < stageCount; s++ {
		parsed, err := ParseStage(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStage("BAKING")
	assert.Error(t, err)
	assert.Equal(t, "Stage(9)", Stage(9).String())
}

func TestStage_JSONUsesNames(t *testing.T) {
	data, err := json.Marshal(map[string]Stage{"stage": StagePackaging})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"PACKAGING"}`, string(data))

	var out struct{ Stage Stage }
	require.NoError(t, json.Unmarshal([]byte(`{"Stage":"READY"}`), &out))
	assert.Equal(t, StageReady, out.Stage)
}

func TestStageTable_ValidateAndTotal(t *testing.T) {
	table := StageTable{
		StageIdle:      {Label: "idle"},
		StageReceived:  {Duration: 3 * time.Second},
		StagePreparing: {Duration: 5 * time.Second},
		StagePackaging: {Duration: 3 * time.Second},
		StageReady:     {Duration: 4 * time.Second},
	}
	require.NoError(t, table.Validate())
	assert.Equal(t, 15*time.Second, table.Total())

	bad := table
	bad[StagePreparing].Duration = 0
	assert.ErrorContains(t, bad.Validate(), "PREPARING")

	bad = table
	bad[StageIdle].Duration = time.Second
	assert.ErrorContains(t, bad.Validate(), "IDLE")
}

func TestOrder_CloneAndSummary(t *testing.T) {
	o := Order{Number: "001", Items: []string{"Latte", "Croissant"}}
	c := o.Clone()
	c.Items[0] = "Mocha"
	assert.Equal(t, "Latte", o.Items[0], "clone must not share items")

	assert.Equal(t, "#001 — Latte, Croissant", o.Summary())
	assert.Equal(t, "#002", Order{Number: "002"}.Summary())
}
