package engine

import (
	"log/slog"

	"github.com/scvi-aria/deko/internal/canvas"
	"github.com/scvi-aria/deko/internal/domain"
)

// Branding is the shop identity drawn on the idle screen.
type Branding struct {
	ShopName   string
	WebsiteURL string
	Color      canvas.Color
}

// DefaultBranding matches an unconfigured vendor.
var DefaultBranding = Branding{ShopName: "Deko", Color: 0x7C3AED}

// Option configures an Engine.
type Option func(*Engine)

// WithSize sets the surface size. Defaults to domain.DefaultSize.
func WithSize(size domain.Size) Option {
	return func(e *Engine) { e.size = size }
}

// WithClock replaces the wall clock, for tests and replay.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithStateChange registers the UI callback invoked with the new stage and its
// label after every transition.
func WithStateChange(fn func(domain.Stage, string)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// WithObserver attaches an observer. Repeated calls add observers; they are
// notified in registration order.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithBranding sets the idle-screen branding.
func WithBranding(b Branding) Option {
	return func(e *Engine) { e.branding = b }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}
