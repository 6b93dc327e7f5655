package template

import (
	"math"

	"github.com/scvi-aria/deko/internal/canvas"
)

const (
	purple   canvas.Color = 0x7C3AED
	offWhite canvas.Color = 0xFAFAF9
	green    canvas.Color = 0x4ADE80
	orange   canvas.Color = 0xFB923C
	skin     canvas.Color = 0xDEB887
	steam    canvas.Color = 0xCCCCCC
)

// counter draws the work surface every scene stands on.
func counter(c *canvas.Canvas, w, h float64, body, edge canvas.Color) {
	c.Rect(0, h*0.65, w, h*0.35).Fill(body)
	c.Rect(0, h*0.63, w, 12).Fill(edge)
}

// ticket fades the order ticket in over the second half of progress.
func ticket(c *canvas.Canvas, cx, y, progress float64) {
	alpha := clamp01((progress - 0.5) * 2)
	if alpha <= 0 {
		return
	}
	c.RoundRect(cx-80, y, 160, 60, 8).FillAlpha(offWhite, alpha).OutlineAlpha(purple, 2, alpha)
	for i := 0; i < 3; i++ {
		c.Rect(cx-60, y+14+float64(i)*12, 120-float64(i)*30, 4).FillAlpha(purple, alpha*0.4)
	}
}

// hand slides in from the right as progress goes 0 → 1.
func hand(c *canvas.Canvas, x, y, progress float64) {
	hx := x + 200*(1-progress)
	c.RoundRect(hx, y-15, 60, 30, 10).Fill(skin)
	for i := 0; i < 4; i++ {
		fi := float64(i)
		c.RoundRect(hx+50+fi*2, y-12+fi*7, 20, 8, 4).Fill(skin)
	}
}

// wisps draws three rising curls that sway with t (ms).
func wisps(c *canvas.Canvas, x, y, t float64) {
	phase := t * 0.003
	for i := 0; i < 3; i++ {
		fi := float64(i)
		offset := math.Sin(phase+fi*2) * 8
		sy := y - 60 - fi*15
		bx := x - 10 + fi*10
		c.Path().
			MoveTo(bx+offset, sy+15).
			QuadTo(bx+offset+5, sy+7, bx-offset, sy).
			OutlineAlpha(steam, 2, 0.5-fi*0.1)
	}
}

func sparkle(c *canvas.Canvas, x, y, s, alpha float64, color canvas.Color) {
	c.Path().
		MoveTo(x, y-s).LineTo(x+s*0.3, y-s*0.3).LineTo(x+s, y).
		LineTo(x+s*0.3, y+s*0.3).LineTo(x, y+s).
		LineTo(x-s*0.3, y+s*0.3).LineTo(x-s, y).
		LineTo(x-s*0.3, y-s*0.3).Close().
		FillAlpha(color, alpha)
}

// sparkleRing orbits five sparkles around (cx, cy). The ring repeats every 20
// frames.
func sparkleRing(c *canvas.Canvas, cx, cy float64, frame int64, radius float64, color canvas.Color) {
	f := float64(frame % 20)
	for i := 0; i < 5; i++ {
		fi := float64(i)
		angle := fi/5*math.Pi*2 + f*0.3
		dist := radius + math.Sin(f*0.5+fi)*20
		sx := cx + math.Cos(angle)*dist
		sy := cy + math.Sin(angle)*dist*0.5
		alpha := 0.3 + 0.7*math.Abs(math.Sin(f*0.4+fi*1.2))
		size := 8 + 6*math.Abs(math.Sin(f*0.3+fi))
		sparkle(c, sx, sy, size, alpha, color)
	}
}

// checkmark fades in over the first second of t (ms).
func checkmark(c *canvas.Canvas, cx, cy, t float64) {
	c.Path().
		MoveTo(cx-20, cy+80).
		LineTo(cx-5, cy+95).
		LineTo(cx+25, cy+60).
		OutlineAlpha(green, 5, math.Min(1, t/1000))
}
