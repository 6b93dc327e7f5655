package template

import (
	"math"
	"time"

	"github.com/scvi-aria/deko/internal/canvas"
	"github.com/scvi-aria/deko/internal/domain"
)

const (
	coffeeBrown  canvas.Color = 0x8B4513
	coffeeWood   canvas.Color = 0x3B2414
	machineGrey  canvas.Color = 0x444444
	machineSpout canvas.Color = 0x333333
)

var coffeeStages = domain.StageTable{
	domain.StageIdle:      {Duration: 0, Label: "Waiting for orders..."},
	domain.StageReceived:  {Duration: 3000 * time.Millisecond, Label: "Order Received!"},
	domain.StagePreparing: {Duration: 5000 * time.Millisecond, Label: "Brewing your coffee..."},
	domain.StagePackaging: {Duration: 3000 * time.Millisecond, Label: "Packaging..."},
	domain.StageReady:     {Duration: 4000 * time.Millisecond, Label: "Ready for pickup!"},
}

// Coffee pours, sleeves and lids a takeaway cup.
type Coffee struct{}

func (Coffee) Name() string { return "Coffee Shop" }

func (Coffee) Stages() domain.StageTable { return coffeeStages }

func (Coffee) Draw(c *canvas.Canvas, stage domain.Stage, elapsed time.Duration) {
	size := c.Size()
	w, h := size.Width, size.Height
	cx, cy := w/2, h*0.5
	frame, t := Quantize(elapsed)

	counter(c, w, h, coffeeWood, orange)

	switch stage {
	case domain.StageIdle:
		cup(c, cx, cy+20, 1)
		wisps(c, cx, cy-30, t)

	case domain.StageReceived:
		progress := math.Min(1, math.Mod(t, 3000)/2000)
		eased := easeOutBack(progress)
		x := cx + 250*(1-eased)
		hand(c, x-40, cy-10, eased)
		cup(c, x, cy+20, 1)
		ticket(c, cx, h*0.15, progress)

	case domain.StagePreparing:
		pour := math.Mod(t, 2500) / 2500
		cup(c, cx, cy+20, 1)
		c.RoundRect(cx-20, cy-120, 40, 30, 4).Fill(machineGrey)
		c.RoundRect(cx-5, cy-92, 10, 8, 2).Fill(machineSpout)
		if pour < 0.7 {
			reach := math.Min(1, pour/0.7*1.5)
			pourStream(c, cx, cy-84, cy-84+54*reach, t)
		}
		if level := math.Min(0.8, pour); level > 0 {
			fh := 55 * level
			c.RoundRect(cx-26, cy+20-fh+2, 52, fh, 3).FillAlpha(coffeeBrown, 0.9)
		}
		if pour > 0.3 {
			wisps(c, cx, cy-30, t)
		}

	case domain.StagePackaging:
		slide := math.Mod(t, 3000) / 3000
		x := cx + 100 - 200*easeInOutCubic(math.Min(1, slide*1.5))
		cup(c, x, cy+20, 1)
		c.RoundRect(x-26, cy-22, 52, 44, 3).FillAlpha(coffeeBrown, 0.9)
		wisps(c, x, cy-30, t)
		if slide > 0.4 {
			c.RoundRect(x-32, cy-10, 64, 25, 4).FillAlpha(orange, math.Min(1, (slide-0.4)/0.3))
		}
		if slide > 0.6 {
			drop := math.Min(1, (slide-0.6)/0.3)
			lidY := cy - 50 - 30*(1-easeOutBounce(drop))
			c.RoundRect(x-34, lidY, 68, 10, 4).Fill(offWhite).Outline(purple, 2)
		}

	case domain.StageReady:
		cup(c, cx, cy+20, 1)
		c.RoundRect(cx-26, cy-22, 52, 44, 3).FillAlpha(coffeeBrown, 0.9)
		c.RoundRect(cx-32, cy-10, 64, 25, 4).Fill(orange)
		c.RoundRect(cx-34, cy-50, 68, 10, 4).Fill(offWhite).Outline(purple, 2)
		sparkleRing(c, cx, cy-20, frame, 80, green)
		checkmark(c, cx, cy, t)
	}
}

func cup(c *canvas.Canvas, x, y, s float64) {
	c.RoundRect(x-30*s, y-50*s, 60*s, 70*s, 6*s).Fill(offWhite).Outline(purple, 3*s)
	c.Arc(x+30*s, y-15*s, 15*s, -math.Pi/2, math.Pi/2).Outline(purple, 3*s)
	c.RoundRect(x-15*s, y-30*s, 30*s, 15*s, 3*s).Fill(purple)
}

func pourStream(c *canvas.Canvas, x, y1, y2, t float64) {
	wobble := math.Sin(t*0.01) * 3
	c.Path().
		MoveTo(x+wobble, y1).
		LineTo(x+4+wobble, y1).
		LineTo(x+8-wobble, y2).
		LineTo(x-4-wobble, y2).
		Close().
		FillAlpha(coffeeBrown, 0.8)
}
