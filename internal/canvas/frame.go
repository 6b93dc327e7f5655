package canvas

import (
	"fmt"
	"io"
	"time"

	"github.com/scvi-aria/deko/internal/domain"
)

// Frame is one presented picture: the display list plus what it depicts.
type Frame struct {
	Size    domain.Size   `json:"size"`
	Stage   domain.Stage  `json:"stage"`
	Elapsed time.Duration `json:"-"`
	// ElapsedMS mirrors Elapsed for JSON consumers.
	ElapsedMS int64   `json:"elapsed_ms"`
	Shapes    []Shape `json:"shapes"`
}

// NewFrame snapshots the canvas into a Frame.
func NewFrame(c *Canvas, stage domain.Stage, elapsed time.Duration) Frame {
	return Frame{
		Size:      c.Size(),
		Stage:     stage,
		Elapsed:   elapsed,
		ElapsedMS: elapsed.Milliseconds(),
		Shapes:    c.Shapes(),
	}
}

// Texts returns the text content of every text shape, in draw order.
func (f Frame) Texts() []string {
	var out []string
	for _, s := range f.Shapes {
		if s.Kind == KindText {
			out = append(out, s.Text)
		}
	}
	return out
}

// Describe writes a compact human-readable listing of the frame.
func (f Frame) Describe(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "frame %s +%dms %.0fx%.0f shapes=%d\n",
		f.Stage, f.ElapsedMS, f.Size.Width, f.Size.Height, len(f.Shapes)); err != nil {
		return err
	}
	for i, s := range f.Shapes {
		if _, err := fmt.Fprintf(w, "%3d %s\n", i, s.describe()); err != nil {
			return err
		}
	}
	return nil
}

func (s Shape) describe() string {
	var geom string
	switch s.Kind {
	case KindRect, KindRoundRect:
		geom = fmt.Sprintf("%-10s x=%.1f y=%.1f w=%.1f h=%.1f", s.Kind, s.X, s.Y, s.W, s.H)
	case KindArc:
		geom = fmt.Sprintf("%-10s cx=%.1f cy=%.1f r=%.1f", s.Kind, s.X, s.Y, s.Radius)
	case KindPath:
		geom = fmt.Sprintf("%-10s segments=%d", s.Kind, len(s.Path))
	case KindText:
		geom = fmt.Sprintf("%-10s %q at %.1f,%.1f", s.Kind, s.Text, s.X, s.Y)
	default:
		geom = string(s.Kind)
	}
	if s.Paint != nil {
		geom += fmt.Sprintf(" fill=#%06X/%.2f", uint32(s.Paint.Color), s.Paint.Alpha)
	}
	if s.Line != nil {
		geom += fmt.Sprintf(" stroke=#%06X/%.1f", uint32(s.Line.Color), s.Line.Width)
	}
	return geom
}
