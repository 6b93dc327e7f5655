package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/testutil"
)

// createTestStore opens a journal in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestRun(t *testing.T, s *Store, id, vendor string) Run {
	t.Helper()
	run := Run{ID: id, Vendor: vendor, Template: "Coffee Shop", StartedAt: testutil.Epoch}
	require.NoError(t, s.BeginRun(context.Background(), run))
	return run
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_CreatesRunIndex(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_runs_started'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "idx_runs_started", name)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestRun_BeginReadEnd(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	createTestRun(t, s, "run-1", "coffee")

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "coffee", run.Vendor)
	assert.True(t, run.StartedAt.Equal(testutil.Epoch))
	assert.Nil(t, run.EndedAt)

	end := testutil.Epoch.Add(20 * time.Second)
	require.NoError(t, s.EndRun(ctx, "run-1", end))

	run, err = s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, run.EndedAt)
	assert.True(t, run.EndedAt.Equal(end))
}

func TestRun_BeginTwiceIsIgnored(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	createTestRun(t, s, "run-1", "coffee")

	require.NoError(t, s.BeginRun(ctx, Run{ID: "run-1", Vendor: "pizza", StartedAt: testutil.Epoch}))

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "coffee", run.Vendor)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = s.EndRun(context.Background(), "nope", testutil.Epoch)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns_OldestFirst(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.BeginRun(ctx, Run{ID: "b", Vendor: "pizza", StartedAt: testutil.Epoch.Add(time.Minute)}))
	require.NoError(t, s.BeginRun(ctx, Run{ID: "a", Vendor: "coffee", StartedAt: testutil.Epoch}))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestListRuns_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestOrders_RoundTripOrderedBySeq(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	createTestRun(t, s, "run-1", "coffee")

	require.NoError(t, s.WriteOrder(ctx, OrderRecord{
		RunID: "run-1", Seq: 3, Offset: 1500 * time.Millisecond,
		Order:   domain.Order{Number: "002"},
		Outcome: OutcomeDropped, Pending: 5,
	}))
	require.NoError(t, s.WriteOrder(ctx, OrderRecord{
		RunID: "run-1", Seq: 1, Offset: 0,
		Order:   domain.Order{Number: "001", Items: []string{"Latte", "Croissant"}},
		Outcome: OutcomeAdmitted, Pending: 1,
	}))

	orders, err := s.ReadOrders(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, int64(1), orders[0].Seq)
	assert.Equal(t, []string{"Latte", "Croissant"}, orders[0].Order.Items)
	assert.Equal(t, OutcomeAdmitted, orders[0].Outcome)

	assert.Equal(t, int64(3), orders[1].Seq)
	assert.Equal(t, 1500*time.Millisecond, orders[1].Offset)
	assert.Equal(t, []string{}, orders[1].Order.Items)
	assert.Equal(t, OutcomeDropped, orders[1].Outcome)
	assert.Equal(t, 5, orders[1].Pending)
}

func TestOrders_DuplicateSeqIgnored(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	createTestRun(t, s, "run-1", "coffee")

	rec := OrderRecord{RunID: "run-1", Seq: 1, Order: domain.Order{Number: "001"}, Outcome: OutcomeAdmitted}
	require.NoError(t, s.WriteOrder(ctx, rec))
	rec.Order.Number = "999"
	require.NoError(t, s.WriteOrder(ctx, rec))

	orders, err := s.ReadOrders(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "001", orders[0].Order.Number)
}

func TestOrders_RequireRun(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteOrder(context.Background(), OrderRecord{
		RunID: "missing", Seq: 1, Order: domain.Order{Number: "001"}, Outcome: OutcomeAdmitted,
	})
	assert.Error(t, err)
}

func TestOrders_RejectUnknownOutcome(t *testing.T) {
	s := createTestStore(t)
	createTestRun(t, s, "run-1", "coffee")

	err := s.WriteOrder(context.Background(), OrderRecord{
		RunID: "run-1", Seq: 1, Order: domain.Order{Number: "001"}, Outcome: "lost",
	})
	assert.Error(t, err)
}

func TestTransitions_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	createTestRun(t, s, "run-1", "coffee")

	require.NoError(t, s.WriteTransition(ctx, TransitionRecord{
		RunID: "run-1", Seq: 2, Offset: 0,
		From: domain.StageIdle, To: domain.StageReceived, OrderNumber: "001",
	}))
	require.NoError(t, s.WriteTransition(ctx, TransitionRecord{
		RunID: "run-1", Seq: 3, Offset: 3 * time.Second,
		From: domain.StageReceived, To: domain.StagePreparing, OrderNumber: "001",
	}))

	got, err := s.ReadTransitions(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.StageIdle, got[0].From)
	assert.Equal(t, domain.StageReceived, got[0].To)
	assert.Equal(t, "seq=3 +3000ms RECEIVED->PREPARING #001", got[1].String())
}

func TestTransitions_BadStageName(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	createTestRun(t, s, "run-1", "coffee")

	_, err := s.DB().Exec(`INSERT INTO transitions (run_id, seq, offset_ms, from_stage, to_stage, pending)
		VALUES ('run-1', 1, 0, 'IDLE', 'BAKING', 0)`)
	require.NoError(t, err)

	_, err = s.ReadTransitions(ctx, "run-1")
	assert.ErrorContains(t, err, "BAKING")
}
