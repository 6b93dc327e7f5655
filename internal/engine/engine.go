package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/scvi-aria/deko/internal/canvas"
	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/template"
)

// Surface is where finished frames go: a browser over a websocket, an
// in-memory recorder, a terminal.
type Surface interface {
	Open(size domain.Size) error
	Present(f canvas.Frame) error
	Close() error
}

// Engine is the order display: one queue, one stage machine, one template.
//
// Engine is not safe for concurrent use. The host must call RunOrder, Frame
// and Destroy from one goroutine, or serialize them (see display.Driver).
type Engine struct {
	tpl      template.Template
	stages   domain.StageTable
	surface  Surface
	size     domain.Size
	clock    Clock
	seq      *Sequence
	branding Branding
	logger   *slog.Logger

	onChange  func(domain.Stage, string)
	observers Observers

	queue     *orderQueue
	machine   *stageMachine
	dropped   int
	destroyed bool

	// presentFailing is set while the surface keeps rejecting frames.
	presentFailing bool
}

// Snapshot is a point-in-time copy of engine state.
type Snapshot struct {
	Vendor    string         `json:"vendor"`
	Stage     domain.Stage   `json:"stage"`
	Label     string         `json:"label"`
	Current   *domain.Order  `json:"current,omitempty"`
	Pending   []domain.Order `json:"pending"`
	EnteredAt time.Time      `json:"entered_at"`
	Dropped   int            `json:"dropped"`
	Destroyed bool           `json:"destroyed,omitempty"`
}

// New builds an engine around tpl and opens surface at the configured size.
// The engine starts IDLE; the initial state is not reported to callbacks.
func New(tpl template.Template, surface Surface, opts ...Option) (*Engine, error) {
	e := &Engine{
		tpl:      tpl,
		stages:   tpl.Stages(),
		surface:  surface,
		size:     domain.DefaultSize,
		clock:    SystemClock{},
		branding: DefaultBranding,
		seq:      NewSequence(),
		queue:    newOrderQueue(domain.MaxPending),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	dims := fmt.Sprintf("%.0fx%.0f", e.size.Width, e.size.Height)
	if e.size.Width <= 0 || e.size.Height <= 0 {
		return nil, &SurfaceError{Code: ErrCodeInvalidSize, Size: dims}
	}
	if err := e.stages.Validate(); err != nil {
		return nil, &SurfaceError{Code: ErrCodeInvalidStages, Size: dims, Err: err}
	}
	if err := surface.Open(e.size); err != nil {
		return nil, &SurfaceError{Code: ErrCodeSurfaceOpen, Size: dims, Err: err}
	}

	e.machine = newStageMachine(e.stages, e.clock.Now())
	e.machine.notify = e.transition

	e.logger.Debug("engine ready", "template", tpl.Name(), "size", dims)
	return e, nil
}

// RunOrder queues order and, when the display is idle, starts it at once.
// When five orders are already waiting the order is dropped; the caller is
// not told, but the drop is counted and reported to observers.
func (e *Engine) RunOrder(order domain.Order) {
	if e.destroyed {
		return
	}
	now := e.clock.Now()
	o := order.Clone()

	if !e.queue.Enqueue(o) {
		e.dropped++
		e.logger.Warn("order dropped, queue full",
			"order", o.Number,
			"pending", e.queue.Len(),
		)
		d := Drop{Seq: e.seq.Next(), Order: o.Clone(), At: now, Pending: e.queue.Len()}
		e.notifyObservers(func(obs Observer) { obs.OnDrop(d) })
		return
	}

	e.logger.Debug("order queued", "order", o.Number, "pending", e.queue.Len())
	a := Admit{Seq: e.seq.Next(), Order: o.Clone(), At: now, Pending: e.queue.Len()}
	e.notifyObservers(func(obs Observer) { obs.OnAdmit(a) })

	if e.machine.stage == domain.StageIdle {
		e.startNext(now)
	}
}

// State returns the current stage.
func (e *Engine) State() domain.Stage {
	return e.machine.stage
}

// Label returns the current stage's display label.
func (e *Engine) Label() string {
	return e.stages.Get(e.machine.stage).Label
}

// Clock returns the clock stage timing is measured against.
func (e *Engine) Clock() Clock {
	return e.clock
}

// Template returns the template the engine was built with.
func (e *Engine) Template() template.Template {
	return e.tpl
}

// Snapshot copies the engine state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Vendor:    e.tpl.Name(),
		Stage:     e.machine.stage,
		Label:     e.Label(),
		Pending:   e.queue.Snapshot(),
		EnteredAt: e.machine.enteredAt,
		Dropped:   e.dropped,
		Destroyed: e.destroyed,
	}
	if e.machine.current != nil {
		cur := e.machine.current.Clone()
		s.Current = &cur
	}
	return s
}

// Frame renders one frame for instant now, presents it, then advances the
// stage machine. When the in-flight order finishes, the next queued order is
// started within the same frame.
func (e *Engine) Frame(now time.Time) {
	if e.destroyed {
		return
	}
	f := e.Render(now)
	e.present(f)
	e.Tick(now)
}

// Render draws the current scene plus overlay without presenting it or
// advancing time.
func (e *Engine) Render(now time.Time) canvas.Frame {
	stage := e.machine.stage
	elapsed := e.machine.elapsed(now)

	c := canvas.New(e.size)
	e.tpl.Draw(c, stage, elapsed)
	e.drawOverlay(c)
	return canvas.NewFrame(c, stage, elapsed)
}

// Tick advances the stage machine without drawing. Headless hosts (scenario
// runs, replay) drive the engine with Tick alone.
func (e *Engine) Tick(now time.Time) {
	if e.destroyed {
		return
	}
	if e.machine.tick(now) && !e.queue.IsEmpty() {
		e.startNext(now)
	}
}

// Destroy releases the surface. The in-flight order is abandoned without a
// completion event. Destroy is idempotent; afterwards RunOrder, Frame and
// Tick do nothing.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	if err := e.surface.Close(); err != nil {
		e.logger.Warn("surface close failed", "error", err)
	}
	e.logger.Debug("engine destroyed",
		"stage", e.machine.stage,
		"pending", e.queue.Len(),
	)
}

// Destroyed reports whether Destroy has been called.
func (e *Engine) Destroyed() bool {
	return e.destroyed
}

// present hands f to the surface. Only the first failure of a run of failures
// is logged at warn; repeats go to debug until a frame gets through again.
func (e *Engine) present(f canvas.Frame) {
	err := e.surface.Present(f)
	switch {
	case err != nil && !e.presentFailing:
		e.presentFailing = true
		e.logger.Warn("present failed", "stage", f.Stage, "error", err)
	case err != nil:
		e.logger.Debug("present failed", "stage", f.Stage, "error", err)
	case e.presentFailing:
		e.presentFailing = false
		e.logger.Info("present recovered", "stage", f.Stage)
	}
}

func (e *Engine) startNext(now time.Time) {
	o, ok := e.queue.Dequeue()
	if !ok {
		return
	}
	e.machine.start(o, now)
}

func (e *Engine) transition(from, to domain.Stage, order *domain.Order, at time.Time) {
	label := e.stages.Get(to).Label
	e.logger.Debug("stage transition",
		"from", from,
		"to", to,
		"pending", e.queue.Len(),
	)

	t := Transition{
		Seq:     e.seq.Next(),
		From:    from,
		To:      to,
		Label:   label,
		At:      at,
		Pending: e.queue.Len(),
	}
	if order != nil {
		o := order.Clone()
		t.Order = &o
	}
	e.notifyObservers(func(obs Observer) { obs.OnTransition(t) })

	if e.onChange != nil {
		e.onChange(to, label)
	}
}

func (e *Engine) notifyObservers(fn func(Observer)) {
	if len(e.observers) == 0 {
		return
	}
	fn(e.observers)
}
