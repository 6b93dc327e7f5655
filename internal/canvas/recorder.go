package canvas

import (
	"errors"
	"sync"

	"github.com/scvi-aria/deko/internal/domain"
)

// ErrClosed is returned by Recorder.Present after Close.
var ErrClosed = errors.New("canvas: surface closed")

// Recorder is an in-memory surface that keeps the most recent frame.
// It backs the render command and engine tests.
//
// Thread-safety: all methods are safe for concurrent use.
type Recorder struct {
	// OpenErr, when set, is returned from Open to simulate a surface that
	// cannot be initialized.
	OpenErr error

	mu       sync.Mutex
	size     domain.Size
	opened   bool
	closes   int
	presents int
	last     Frame
}

// NewRecorder creates an unopened recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Open records the surface size.
func (r *Recorder) Open(size domain.Size) error {
	if r.OpenErr != nil {
		return r.OpenErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.size = size
	r.opened = true
	return nil
}

// Present stores f as the latest frame.
func (r *Recorder) Present(f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closes > 0 {
		return ErrClosed
	}
	r.last = f
	r.presents++
	return nil
}

// Close marks the surface released. Each call is counted so tests can verify
// that owners release exactly once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
	return nil
}

// Last returns the most recently presented frame and whether any frame has been
// presented.
func (r *Recorder) Last() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.presents > 0
}

// Presents returns how many frames were presented.
func (r *Recorder) Presents() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presents
}

// Closes returns how many times Close was called.
func (r *Recorder) Closes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closes
}

// Opened reports whether Open succeeded, and the size it was given.
func (r *Recorder) Opened() (domain.Size, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size, r.opened
}
