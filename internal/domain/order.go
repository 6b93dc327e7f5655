package domain

import "strings"

// MaxPending is the number of orders the display will hold behind the one in
// flight. Further arrivals are dropped.
const MaxPending = 5

// Order is the tuple an order source hands to the engine.
// Identity is Number; the engine does not enforce uniqueness.
type Order struct {
	Number string   `json:"order_number" yaml:"order_number"`
	Items  []string `json:"items" yaml:"items"`
}

// Clone returns a copy whose Items slice is not shared with o.
func (o Order) Clone() Order {
	items := make([]string, len(o.Items))
	copy(items, o.Items)
	return Order{Number: o.Number, Items: items}
}

// Summary is the one-line text shown under the stage label, e.g.
// "#001 — Latte, Croissant".
func (o Order) Summary() string {
	if len(o.Items) == 0 {
		return "#" + o.Number
	}
	return "#" + o.Number + " — " + strings.Join(o.Items, ", ")
}

// Size is the logical drawing surface size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultSize is the canvas size used when none is configured.
var DefaultSize = Size{Width: 1200, Height: 800}
