package cli

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scvi-aria/deko/internal/canvas"
	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/engine"
	"github.com/scvi-aria/deko/internal/store"
	"github.com/scvi-aria/deko/internal/template"
	"github.com/scvi-aria/deko/internal/testutil"
)

// journalRun records a single pizza order to a fresh journal at path.
func journalRun(t *testing.T, path, runID string) {
	t.Helper()
	ctx := context.Background()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	clock := testutil.NewManualClock()
	tpl := template.ForVendor("pizza")
	j, err := store.StartJournal(ctx, st, testutil.NewFixedRunID(runID), "pizza", tpl.Name(), clock.Now(), quiet)
	require.NoError(t, err)

	eng, err := engine.New(tpl, canvas.NewRecorder(),
		engine.WithClock(clock),
		engine.WithObserver(j),
		engine.WithLogger(quiet),
	)
	require.NoError(t, err)

	eng.RunOrder(domain.Order{Number: "P1", Items: []string{"Margherita"}})
	for at := time.Duration(0); at <= tpl.Stages().Total()+time.Second; at += 50 * time.Millisecond {
		eng.Tick(clock.Set(at))
	}
	eng.Destroy()
	require.NoError(t, j.Finish(ctx, clock.Now()))
	require.Zero(t, j.Failed())
}

func TestReplayCommand_Deterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deko.db")
	journalRun(t, path, "run-a")
	journalRun(t, path, "run-b")

	out, err := execute(t, "replay", "--db", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ run-a (pizza): 1 orders, 0 dropped, 5 transitions")
	assert.Contains(t, out, "✓ All 2 run(s) deterministic")
}

func TestReplayCommand_SingleRunJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deko.db")
	journalRun(t, path, "run-a")
	journalRun(t, path, "run-b")

	out, err := execute(t, "replay", "--db", path, "--run", "run-b", "--format", "json")
	require.NoError(t, err, out)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	require.Equal(t, 1, resp.Data.TotalRuns)
	assert.Equal(t, "run-b", resp.Data.Runs[0].RunID)
}

func TestReplayCommand_EmptyJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deko.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "replay", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found in database.")
}

func TestReplayCommand_Nondeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deko.db")
	journalRun(t, path, "run-a")

	st, err := store.Open(path)
	require.NoError(t, err)
	_, err = st.DB().Exec(`UPDATE transitions SET offset_ms = offset_ms + 500 WHERE run_id = 'run-a' AND to_stage = 'PREPARING'`)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "replay", "--db", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ run-a")
}

func TestReplayCommand_Errors(t *testing.T) {
	_, err := execute(t, "replay", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	path := filepath.Join(t.TempDir(), "deko.db")
	journalRun(t, path, "run-a")
	_, err = execute(t, "replay", "--db", path, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "replay")
	require.Error(t, err)
}
