package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scvi-aria/deko/internal/domain"
)

const minimalScenario = `
name: minimal
description: "one order"
duration_ms: 1000
orders:
  - at_ms: 0
    order_number: "42"
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, "coffee", s.VendorKey())
	assert.Zero(t, s.FrameMS)
	require.Len(t, s.Orders, 1)
	assert.Equal(t, "42", s.Orders[0].Number)
	assert.Empty(t, s.Orders[0].Items)
}

func TestParseScenario_Stages(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: stages
description: "stage names parse"
duration_ms: 5000
expect:
  - at_ms: 10
    stage: PACKAGING
assertions:
  - type: final_stage
    stage: READY
`))
	require.NoError(t, err)
	require.Len(t, s.Expect, 1)
	assert.Equal(t, domain.StagePackaging, *s.Expect[0].Stage)
	assert.Equal(t, domain.StageReady, *s.Assertions[0].Stage)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\nduration_ms: 10\nframes: 3\n",
			want: "field frames not found",
		},
		{
			name: "missing name",
			yaml: "description: d\nduration_ms: 10\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nduration_ms: 10\n",
			want: "description is required",
		},
		{
			name: "zero duration",
			yaml: "name: x\ndescription: d\n",
			want: "duration_ms must be positive",
		},
		{
			name: "negative frame",
			yaml: "name: x\ndescription: d\nduration_ms: 10\nframe_ms: -1\n",
			want: "frame_ms must be non-negative",
		},
		{
			name: "order without number",
			yaml: "name: x\ndescription: d\nduration_ms: 10\norders:\n  - at_ms: 0\n",
			want: "orders[0]: order_number is required",
		},
		{
			name: "order after end",
			yaml: "name: x\ndescription: d\nduration_ms: 10\norders:\n  - {at_ms: 11, order_number: a}\n",
			want: "orders[0]: at_ms 11 outside [0, 10]",
		},
		{
			name: "orders out of order",
			yaml: "name: x\ndescription: d\nduration_ms: 10\norders:\n  - {at_ms: 5, order_number: a}\n  - {at_ms: 1, order_number: b}\n",
			want: "orders[1]: at_ms must not decrease",
		},
		{
			name: "unknown stage",
			yaml: "name: x\ndescription: d\nduration_ms: 10\nexpect:\n  - {at_ms: 0, stage: BAKING}\n",
			want: `unknown stage "BAKING"`,
		},
		{
			name: "expect without stage",
			yaml: "name: x\ndescription: d\nduration_ms: 10\nexpect:\n  - {at_ms: 0}\n",
			want: "expect[0]: stage is required",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: d\nduration_ms: 10\nassertions:\n  - type: vibes\n",
			want: `unknown assertion type "vibes"`,
		},
		{
			name: "final_stage without stage",
			yaml: "name: x\ndescription: d\nduration_ms: 10\nassertions:\n  - type: final_stage\n",
			want: "stage is required for final_stage",
		},
		{
			name: "completion_order without orders",
			yaml: "name: x\ndescription: d\nduration_ms: 10\nassertions:\n  - type: completion_order\n",
			want: "orders list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadDir_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("b.yaml", "name: b\ndescription: d\nduration_ms: 10\n")
	write("a.yml", "name: a\ndescription: d\nduration_ms: 10\n")
	write("notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	scenarios, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "a", scenarios[0].Name)
	assert.Equal(t, "b", scenarios[1].Name)
}

func TestLoadDir_DuplicateNames(t *testing.T) {
	dir := t.TempDir()
	body := []byte("name: same\ndescription: d\nduration_ms: 10\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.yaml"), body, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.yaml"), body, 0o644))

	_, err := LoadDir(dir)
	assert.ErrorContains(t, err, `scenario name "same" already used by one.yaml`)
}

func TestLoadDir_Testdata(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)
	assert.Len(t, scenarios, 4)
}
