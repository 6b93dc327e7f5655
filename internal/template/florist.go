package template

import (
	"math"
	"time"

	"github.com/scvi-aria/deko/internal/canvas"
	"github.com/scvi-aria/deko/internal/domain"
)

const (
	petalPink canvas.Color = 0xF472B6
	petalRose canvas.Color = 0xE11D48
	petalGold canvas.Color = 0xFACC15
	stem      canvas.Color = 0x16A34A
	leaf      canvas.Color = 0x22C55E
	kraft     canvas.Color = 0xD6B88F
	tableTop  canvas.Color = 0x78350F
	vaseBlue  canvas.Color = 0x60A5FA
)

var floristStages = domain.StageTable{
	domain.StageIdle:      {Duration: 0, Label: "Waiting for orders..."},
	domain.StageReceived:  {Duration: 3000 * time.Millisecond, Label: "Order Received!"},
	domain.StagePreparing: {Duration: 6000 * time.Millisecond, Label: "Arranging your bouquet..."},
	domain.StagePackaging: {Duration: 4000 * time.Millisecond, Label: "Wrapping..."},
	domain.StageReady:     {Duration: 4000 * time.Millisecond, Label: "Ready for pickup!"},
}

var bloomColors = [...]canvas.Color{petalPink, petalRose, petalGold, petalPink, petalRose}

// Florist arranges stems one by one and wraps the bouquet in kraft paper.
type Florist struct{}

func (Florist) Name() string { return "Florist" }

func (Florist) Stages() domain.StageTable { return floristStages }

func (Florist) Draw(c *canvas.Canvas, stage domain.Stage, elapsed time.Duration) {
	size := c.Size()
	w, h := size.Width, size.Height
	cx, cy := w/2, h*0.5
	frame, t := Quantize(elapsed)

	counter(c, w, h, tableTop, leaf)

	switch stage {
	case domain.StageIdle:
		sway := math.Sin(float64(frame)*0.35) * 4
		vase(c, cx, cy+40)
		for i := 0; i < 3; i++ {
			fi := float64(i)
			x := cx - 20 + fi*20
			flower(c, x, cy+10, x+sway*(fi-1), cy-70-fi*8, 1, bloomColors[i])
		}

	case domain.StageReceived:
		progress := math.Min(1, math.Mod(t, 3000)/2000)
		eased := easeOutBack(progress)
		x := cx + 260*(1-eased)
		for i := 0; i < 3; i++ {
			fi := float64(i)
			flower(c, x-10+fi*10, cy+40, x-25+fi*25, cy-40, 0.7, bloomColors[i])
		}
		hand(c, x-30, cy+30, eased)
		ticket(c, cx, h*0.12, progress)

	case domain.StagePreparing:
		p := clamp01(t / 6000)
		bouquet(c, cx, cy, p)

	case domain.StagePackaging:
		p := math.Mod(t, 4000) / 4000
		bouquet(c, cx, cy, 1)
		rise := easeInOutCubic(clamp01(p / 0.6))
		top := cy + 80 - 120*rise
		c.Path().
			MoveTo(cx, cy+90).
			LineTo(cx-70, top).
			LineTo(cx+70, top).
			Close().
			FillAlpha(kraft, 0.95).
			Outline(0xA16207, 2)
		if p > 0.6 {
			drop := easeOutBounce(clamp01((p - 0.6) / 0.3))
			bow(c, cx, cy+50-30*(1-drop))
		}

	case domain.StageReady:
		bouquet(c, cx, cy, 1)
		c.Path().
			MoveTo(cx, cy+90).
			LineTo(cx-70, cy-40).
			LineTo(cx+70, cy-40).
			Close().
			FillAlpha(kraft, 0.95).
			Outline(0xA16207, 2)
		bow(c, cx, cy+50)
		sparkleRing(c, cx, cy-40, frame, 100, green)
		checkmark(c, cx, cy+20, t)
	}
}

func vase(c *canvas.Canvas, x, y float64) {
	c.RoundRect(x-35, y-30, 70, 80, 14).Fill(vaseBlue).Outline(purple, 2)
	c.Rect(x-25, y-38, 50, 10).Fill(vaseBlue)
}

// flower draws a stem from (x0, y0) to (x1, y1) with a bloom opened by open.
func flower(c *canvas.Canvas, x0, y0, x1, y1, open float64, color canvas.Color) {
	c.Path().
		MoveTo(x0, y0).
		QuadTo((x0+x1)/2+6, (y0+y1)/2, x1, y1).
		Outline(stem, 3)
	if open <= 0 {
		return
	}
	r := 12 * open
	for i := 0; i < 5; i++ {
		a := float64(i)/5*math.Pi*2 - math.Pi/2
		c.Circle(x1+math.Cos(a)*r, y1+math.Sin(a)*r, r*0.7).Fill(color)
	}
	c.Circle(x1, y1, r*0.5).Fill(petalGold)
}

// bouquet brings in five stems one after another as p goes 0 → 1.
func bouquet(c *canvas.Canvas, cx, cy, p float64) {
	for i := 0; i < 5; i++ {
		fi := float64(i)
		local := clamp01(p*5 - fi)
		if local <= 0 {
			continue
		}
		grow := easeOutQuad(math.Min(1, local*1.6))
		tipX := cx + (fi-2)*28*grow
		tipY := cy + 80 - (150+math.Abs(fi-2)*-15)*grow
		flower(c, cx, cy+80, tipX, tipY, clamp01((local-0.5)*2), bloomColors[i])
		if grow > 0.5 {
			c.RoundRect(tipX-(fi-2)*10-8, cy+20, 16, 8, 4).Fill(leaf)
		}
	}
}

func bow(c *canvas.Canvas, x, y float64) {
	c.Path().MoveTo(x, y).LineTo(x-26, y-14).LineTo(x-26, y+14).Close().Fill(purple)
	c.Path().MoveTo(x, y).LineTo(x+26, y-14).LineTo(x+26, y+14).Close().Fill(purple)
	c.Circle(x, y, 6).Fill(0x6D28D9)
}
