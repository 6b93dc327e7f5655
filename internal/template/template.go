// Package template holds the per-vendor rendering strategies.
//
// A Template is a timing table plus a pure drawing function. Given the same
// stage, elapsed time and canvas size, Draw always appends the same shapes. All
// motion is sampled on a fixed FrameStep grid so the display moves in deliberate,
// discrete 8 fps steps no matter how often the host calls Draw.
//
// Templates are stateless values. The active one is resolved once, by vendor
// key, when an engine is built, and replaced wholesale when the vendor changes.
package template

import (
	"sort"
	"time"

	"github.com/scvi-aria/deko/internal/canvas"
	"github.com/scvi-aria/deko/internal/domain"
)

// FrameStep is the animation sampling interval (8 fps).
const FrameStep = 125 * time.Millisecond

// DefaultVendor is used when a vendor key is empty or unknown.
const DefaultVendor = "coffee"

// Template renders one vendor's order animation.
type Template interface {
	// Name is the display name, e.g. "Coffee Shop".
	Name() string

	// Stages returns the duration and label of every stage.
	Stages() domain.StageTable

	// Draw appends the scene for stage at elapsed time-in-stage to c.
	// It must not depend on anything but its arguments.
	Draw(c *canvas.Canvas, stage domain.Stage, elapsed time.Duration)
}

var registry = map[string]Template{
	"coffee":  Coffee{},
	"pizza":   Pizza{},
	"florist": Florist{},
}

// ForVendor returns the template registered under key, falling back to the
// coffee template for empty or unknown keys.
func ForVendor(key string) Template {
	if t, ok := Lookup(key); ok {
		return t
	}
	return registry[DefaultVendor]
}

// Lookup returns the template for key without falling back.
func Lookup(key string) (Template, bool) {
	t, ok := registry[key]
	return t, ok
}

// Vendors lists the registered vendor keys in sorted order.
func Vendors() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Quantize snaps elapsed down to the FrameStep grid. It returns the frame index
// and the snapped elapsed time in milliseconds.
func Quantize(elapsed time.Duration) (frame int64, stepMS float64) {
	if elapsed < 0 {
		elapsed = 0
	}
	frame = int64(elapsed / FrameStep)
	return frame, float64(time.Duration(frame) * FrameStep / time.Millisecond)
}
