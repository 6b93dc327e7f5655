// Package display hosts an engine on a real-time frame loop.
package display

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/engine"
)

// DefaultFPS matches a typical display refresh rate. Templates only change
// their drawing every 125ms, but stage boundaries are checked every frame.
const DefaultFPS = 60

// Driver owns one engine and calls its Frame on every tick.
//
// The engine is not safe for concurrent use. Driver serializes every call
// behind one mutex, so an order handed to RunOrder from an HTTP handler or a
// message consumer is applied before the next frame runs.
type Driver struct {
	mu     sync.Mutex
	engine *engine.Engine
	fps    int
	logger *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithFPS sets the frame rate. Values below 1 fall back to DefaultFPS.
func WithFPS(fps int) Option {
	return func(d *Driver) { d.fps = fps }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// New wraps e. The driver takes ownership: Run destroys e on exit.
func New(e *engine.Engine, opts ...Option) *Driver {
	d := &Driver{engine: e, fps: DefaultFPS}
	for _, opt := range opts {
		opt(d)
	}
	if d.fps < 1 {
		d.fps = DefaultFPS
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Interval is the time between frames.
func (d *Driver) Interval() time.Duration {
	return time.Second / time.Duration(d.fps)
}

// RunOrder hands o to the engine. Safe for concurrent use.
func (d *Driver) RunOrder(o domain.Order) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.RunOrder(o)
}

// State returns the engine's current stage.
func (d *Driver) State() domain.Stage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.State()
}

// Snapshot returns a copy of the engine state.
func (d *Driver) Snapshot() engine.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.Snapshot()
}

// Step runs a single frame at the engine clock's current instant.
func (d *Driver) Step() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.Frame(d.engine.Clock().Now())
}

// Run ticks until ctx is done, then destroys the engine.
// Returns nil on clean shutdown.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.Interval())
	defer ticker.Stop()

	d.logger.Info("display running",
		"template", d.engine.Template().Name(),
		"fps", d.fps,
	)

	for {
		select {
		case <-ctx.Done():
			d.Destroy()
			d.logger.Info("display stopped")
			return nil
		case <-ticker.C:
			d.Step()
		}
	}
}

// Destroy destroys the engine. Idempotent.
func (d *Driver) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.Destroy()
}
