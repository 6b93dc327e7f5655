// Package canvas records what a frame looks like as a display list.
//
// Templates draw onto a Canvas using a small retained-mode API (rectangles, arcs,
// paths, text) modelled on 2D scene-graph libraries. Nothing is rasterized here:
// a Frame is a plain value describing the shapes, which makes frames comparable in
// tests and cheap to ship to a browser that paints them.
//
// Text is NFC-normalized on the way in so that "Crème" typed on a POS and "Crème"
// arriving decomposed from a webhook produce identical frames.
package canvas

import (
	"math"

	"golang.org/x/text/unicode/norm"

	"github.com/scvi-aria/deko/internal/domain"
)

// Color is a 24-bit RGB value, 0xRRGGBB.
type Color uint32

// Point is a position in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Kind identifies the geometry of a Shape.
type Kind string

const (
	KindRect      Kind = "rect"
	KindRoundRect Kind = "round_rect"
	KindArc       Kind = "arc"
	KindPath      Kind = "path"
	KindText      Kind = "text"
)

// SegmentOp is one path command.
type SegmentOp string

const (
	OpMove  SegmentOp = "M"
	OpLine  SegmentOp = "L"
	OpQuad  SegmentOp = "Q"
	OpClose SegmentOp = "Z"
)

// Segment is a path command and its points. Quad carries the control point then
// the end point.
type Segment struct {
	Op     SegmentOp `json:"op"`
	Points []Point   `json:"points,omitempty"`
}

// Paint is a fill style.
type Paint struct {
	Color Color   `json:"color"`
	Alpha float64 `json:"alpha"`
}

// Stroke is an outline style.
type Stroke struct {
	Color Color   `json:"color"`
	Width float64 `json:"width"`
	Alpha float64 `json:"alpha"`
}

// Shape is one entry of the display list.
type Shape struct {
	Kind Kind `json:"kind"`

	// Rect and RoundRect use X, Y, W, H and Radius. Arc uses X, Y as centre,
	// Radius, Start and End (radians). Text uses X, Y as the anchor point.
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	W      float64 `json:"w,omitempty"`
	H      float64 `json:"h,omitempty"`
	Radius float64 `json:"r,omitempty"`
	Start  float64 `json:"start,omitempty"`
	End    float64 `json:"end,omitempty"`

	Path []Segment `json:"path,omitempty"`

	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
	Bold     bool    `json:"bold,omitempty"`

	Paint *Paint  `json:"fill,omitempty"`
	Line  *Stroke `json:"stroke,omitempty"`
}

// Fill paints the shape opaque.
func (s *Shape) Fill(c Color) *Shape {
	return s.FillAlpha(c, 1)
}

// FillAlpha paints the shape with the given opacity, clamped to [0, 1].
func (s *Shape) FillAlpha(c Color, alpha float64) *Shape {
	s.Paint = &Paint{Color: c, Alpha: clamp01(alpha)}
	return s
}

// Outline strokes the shape opaque.
func (s *Shape) Outline(c Color, width float64) *Shape {
	return s.OutlineAlpha(c, width, 1)
}

// OutlineAlpha strokes the shape with the given opacity, clamped to [0, 1].
func (s *Shape) OutlineAlpha(c Color, width, alpha float64) *Shape {
	s.Line = &Stroke{Color: c, Width: width, Alpha: clamp01(alpha)}
	return s
}

// Strong renders text in bold.
func (s *Shape) Strong() *Shape {
	s.Bold = true
	return s
}

// MoveTo starts a new subpath. Only meaningful on path shapes.
func (s *Shape) MoveTo(x, y float64) *Shape {
	s.Path = append(s.Path, Segment{Op: OpMove, Points: []Point{{x, y}}})
	return s
}

// LineTo adds a straight segment.
func (s *Shape) LineTo(x, y float64) *Shape {
	s.Path = append(s.Path, Segment{Op: OpLine, Points: []Point{{x, y}}})
	return s
}

// QuadTo adds a quadratic curve through control point (cx, cy) to (x, y).
func (s *Shape) QuadTo(cx, cy, x, y float64) *Shape {
	s.Path = append(s.Path, Segment{Op: OpQuad, Points: []Point{{cx, cy}, {x, y}}})
	return s
}

// Close closes the current subpath.
func (s *Shape) Close() *Shape {
	s.Path = append(s.Path, Segment{Op: OpClose})
	return s
}

// Canvas accumulates shapes for a single frame.
// A Canvas is not safe for concurrent use; each frame gets its own.
type Canvas struct {
	size   domain.Size
	shapes []*Shape
}

// New creates an empty canvas of the given size.
func New(size domain.Size) *Canvas {
	return &Canvas{size: size, shapes: make([]*Shape, 0, 32)}
}

// Size returns the canvas size.
func (c *Canvas) Size() domain.Size {
	return c.size
}

// Len returns the number of shapes drawn so far.
func (c *Canvas) Len() int {
	return len(c.shapes)
}

func (c *Canvas) add(s *Shape) *Shape {
	c.shapes = append(c.shapes, s)
	return s
}

// Rect draws an axis-aligned rectangle.
func (c *Canvas) Rect(x, y, w, h float64) *Shape {
	return c.add(&Shape{Kind: KindRect, X: x, Y: y, W: w, H: h})
}

// RoundRect draws a rectangle with rounded corners.
func (c *Canvas) RoundRect(x, y, w, h, r float64) *Shape {
	return c.add(&Shape{Kind: KindRoundRect, X: x, Y: y, W: w, H: h, Radius: r})
}

// Circle draws a full circle.
func (c *Canvas) Circle(x, y, r float64) *Shape {
	return c.Arc(x, y, r, 0, 2*math.Pi)
}

// Arc draws a circular arc from start to end radians.
func (c *Canvas) Arc(x, y, r, start, end float64) *Shape {
	return c.add(&Shape{Kind: KindArc, X: x, Y: y, Radius: r, Start: start, End: end})
}

// Path starts an empty path shape; build it with MoveTo/LineTo/QuadTo/Close.
func (c *Canvas) Path() *Shape {
	return c.add(&Shape{Kind: KindPath})
}

// Text draws a centred line of text anchored at its top centre.
func (c *Canvas) Text(text string, x, y, fontSize float64) *Shape {
	return c.add(&Shape{Kind: KindText, Text: norm.NFC.String(text), X: x, Y: y, FontSize: fontSize})
}

// Shapes returns a copy of the display list.
func (c *Canvas) Shapes() []Shape {
	out := make([]Shape, len(c.shapes))
	for i, s := range c.shapes {
		out[i] = *s
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
