package engine

import (
	"time"

	"github.com/scvi-aria/deko/internal/domain"
)

// Transition records one stage change.
type Transition struct {
	Seq   int64         `json:"seq"`
	From  domain.Stage  `json:"from"`
	To    domain.Stage  `json:"to"`
	Label string        `json:"label"`
	Order *domain.Order `json:"order,omitempty"`
	At    time.Time     `json:"at"`

	// Pending is the queue length after the transition.
	Pending int `json:"pending"`
}

// Admit records an order accepted into the queue.
type Admit struct {
	Seq     int64        `json:"seq"`
	Order   domain.Order `json:"order"`
	At      time.Time    `json:"at"`
	Pending int          `json:"pending"`
}

// Drop records an order rejected because the queue was full.
type Drop struct {
	Seq     int64        `json:"seq"`
	Order   domain.Order `json:"order"`
	At      time.Time    `json:"at"`
	Pending int          `json:"pending"`
}

// Observer receives engine events synchronously on the engine's goroutine.
// Implementations must not call back into the engine and should return
// quickly; anything slow belongs on the observer's own goroutine.
type Observer interface {
	OnAdmit(Admit)
	OnDrop(Drop)
	OnTransition(Transition)
}

// Observers fans events out to each observer in order.
type Observers []Observer

func (os Observers) OnAdmit(a Admit) {
	for _, o := range os {
		o.OnAdmit(a)
	}
}

func (os Observers) OnDrop(d Drop) {
	for _, o := range os {
		o.OnDrop(d)
	}
}

func (os Observers) OnTransition(t Transition) {
	for _, o := range os {
		o.OnTransition(t)
	}
}
