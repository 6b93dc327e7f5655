package engine

import "github.com/scvi-aria/deko/internal/domain"

// orderQueue is the bounded FIFO of orders waiting behind the one in flight.
//
// Arrivals beyond capacity are rejected, never evicted: the oldest waiting
// order always keeps its place. The queue is not synchronized; the engine is
// its only user and the engine is driven from a single goroutine.
type orderQueue struct {
	orders   []domain.Order
	capacity int
}

func newOrderQueue(capacity int) *orderQueue {
	return &orderQueue{
		orders:   make([]domain.Order, 0, capacity),
		capacity: capacity,
	}
}

// Enqueue appends o. It returns false, leaving the queue unchanged, when the
// queue is already full.
func (q *orderQueue) Enqueue(o domain.Order) bool {
	if len(q.orders) >= q.capacity {
		return false
	}
	q.orders = append(q.orders, o)
	return true
}

// Dequeue removes and returns the head. Returns false when empty.
func (q *orderQueue) Dequeue() (domain.Order, bool) {
	if len(q.orders) == 0 {
		return domain.Order{}, false
	}
	o := q.orders[0]

	// clear the slot so the items slice can be collected
	q.orders[0] = domain.Order{}
	if len(q.orders) == 1 {
		q.orders = q.orders[:0]
	} else {
		q.orders = q.orders[1:]
	}
	return o, true
}

func (q *orderQueue) IsEmpty() bool {
	return len(q.orders) == 0
}

func (q *orderQueue) Len() int {
	return len(q.orders)
}

// Snapshot returns copies of the waiting orders, head first.
func (q *orderQueue) Snapshot() []domain.Order {
	out := make([]domain.Order, len(q.orders))
	for i, o := range q.orders {
		out[i] = o.Clone()
	}
	return out
}
