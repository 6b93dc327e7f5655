package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scvi-aria/deko/internal/domain"
)

func TestOrderQueue_FIFO(t *testing.T) {
	q := newOrderQueue(domain.MaxPending)

	for _, n := range []string{"A", "B", "C"} {
		require.True(t, q.Enqueue(domain.Order{Number: n}))
	}

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.Number)
	}
	assert.True(t, q.IsEmpty())
}

func TestOrderQueue_Dequeue_Empty(t *testing.T) {
	q := newOrderQueue(domain.MaxPending)

	_, ok := q.Dequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestOrderQueue_RejectsAtCapacity(t *testing.T) {
	q := newOrderQueue(domain.MaxPending)

	for i := 1; i <= domain.MaxPending; i++ {
		require.True(t, q.Enqueue(domain.Order{Number: fmt.Sprintf("%03d", i)}))
	}
	assert.False(t, q.Enqueue(domain.Order{Number: "overflow"}))
	assert.Equal(t, domain.MaxPending, q.Len())

	// the rejected order leaves no trace; the oldest is still at the head
	head, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "001", head.Number)

	assert.True(t, q.Enqueue(domain.Order{Number: "006"}))
	assert.Equal(t, domain.MaxPending, q.Len())
}

func TestOrderQueue_DuplicatesAllowed(t *testing.T) {
	q := newOrderQueue(domain.MaxPending)

	assert.True(t, q.Enqueue(domain.Order{Number: "001"}))
	assert.True(t, q.Enqueue(domain.Order{Number: "001"}))
	assert.Equal(t, 2, q.Len())
}

func TestOrderQueue_SnapshotIsCopy(t *testing.T) {
	q := newOrderQueue(domain.MaxPending)
	q.Enqueue(domain.Order{Number: "001", Items: []string{"Latte"}})

	snap := q.Snapshot()
	snap[0].Items[0] = "Mocha"

	got, _ := q.Dequeue()
	assert.Equal(t, []string{"Latte"}, got.Items)
}
