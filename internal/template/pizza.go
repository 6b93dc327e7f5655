package template

import (
	"math"
	"time"

	"github.com/scvi-aria/deko/internal/canvas"
	"github.com/scvi-aria/deko/internal/domain"
)

const (
	brick     canvas.Color = 0x9A3412
	ovenMouth canvas.Color = 0x292524
	dough     canvas.Color = 0xF5DEB3
	crust     canvas.Color = 0xD97706
	cheese    canvas.Color = 0xFDE047
	melted    canvas.Color = 0xF59E0B
	pepperoni canvas.Color = 0xDC2626
	cardboard canvas.Color = 0xC8A165
	slate     canvas.Color = 0x44403C
	ember     canvas.Color = 0xF97316
)

var pizzaStages = domain.StageTable{
	domain.StageIdle:      {Duration: 0, Label: "Waiting for orders..."},
	domain.StageReceived:  {Duration: 3000 * time.Millisecond, Label: "Order Received!"},
	domain.StagePreparing: {Duration: 8000 * time.Millisecond, Label: "Baking your pizza..."},
	domain.StagePackaging: {Duration: 3000 * time.Millisecond, Label: "Boxing up..."},
	domain.StageReady:     {Duration: 4000 * time.Millisecond, Label: "Ready for pickup!"},
}

// Pizza stretches dough, bakes it in a brick oven and boxes it.
type Pizza struct{}

func (Pizza) Name() string { return "Pizza Shop" }

func (Pizza) Stages() domain.StageTable { return pizzaStages }

func (Pizza) Draw(c *canvas.Canvas, stage domain.Stage, elapsed time.Duration) {
	size := c.Size()
	w, h := size.Width, size.Height
	cx, cy := w/2, h*0.5
	frame, t := Quantize(elapsed)

	counter(c, w, h, slate, brick)

	switch stage {
	case domain.StageIdle:
		oven(c, cx, cy, 0.25+0.1*math.Sin(float64(frame)*0.7))
		peel(c, cx+180, cy+60)

	case domain.StageReceived:
		progress := math.Min(1, math.Mod(t, 3000)/2000)
		eased := easeOutBack(progress)
		oven(c, cx, cy, 0.3)
		x := cx + 260*(1-eased)
		// the dough ball flattens once it lands
		r := 25 + 45*clamp01((progress-0.6)/0.4)
		c.Circle(x, cy+70, r).Fill(dough)
		hand(c, x-40, cy+60, eased)
		ticket(c, cx, h*0.08, progress)

	case domain.StagePreparing:
		bake := clamp01(t / 8000)
		flicker := 0.6 + 0.3*math.Abs(math.Sin(float64(frame)*0.9))
		oven(c, cx, cy, flicker)
		pie(c, cx, cy-75, 40, bake, int(math.Floor(6*clamp01(bake*1.5))))
		flames(c, cx, cy-32, frame)

	case domain.StagePackaging:
		p := math.Mod(t, 3000) / 3000
		oven(c, cx, cy, 0.3)
		slide := easeInOutCubic(clamp01(p * 2))
		x := cx - 150*slide
		y := cy - 75 + 145*slide
		c.Rect(cx-230, cy+35, 160, 70).Fill(cardboard).Outline(crust, 2)
		pie(c, x, y, 40, 1, 6)
		if p > 0.5 {
			// lid swings down: its visible height shrinks to the closed strip
			closing := easeOutBounce(clamp01((p - 0.5) / 0.4))
			lidH := 120 * (1 - closing)
			c.Rect(cx-230, cy+35-lidH, 160, lidH+8).FillAlpha(cardboard, 0.95).Outline(crust, 2)
		}

	case domain.StageReady:
		oven(c, cx, cy, 0.3)
		box(c, cx, cy+70)
		wisps(c, cx, cy+40, t)
		sparkleRing(c, cx, cy+40, frame, 110, green)
		checkmark(c, cx, cy+40, t)
	}
}

func oven(c *canvas.Canvas, cx, cy, glow float64) {
	c.RoundRect(cx-160, cy-200, 320, 190, 60).Fill(brick)
	for row := 0; row < 4; row++ {
		y := cy - 180 + float64(row)*40
		c.Rect(cx-150, y, 300, 2).FillAlpha(0x7C2D12, 0.6)
	}
	c.RoundRect(cx-100, cy-130, 200, 100, 40).Fill(ovenMouth)
	c.RoundRect(cx-90, cy-120, 180, 80, 36).FillAlpha(ember, clamp01(glow)*0.5)
}

func peel(c *canvas.Canvas, x, y float64) {
	c.Rect(x, y-4, 140, 8).Fill(crust)
	c.RoundRect(x-70, y-30, 70, 60, 12).Fill(0xE7C08A).Outline(crust, 2)
}

func pie(c *canvas.Canvas, x, y, r, bake float64, toppings int) {
	c.Circle(x, y, r).Fill(mix(dough, crust, bake))
	c.Circle(x, y, r*0.8).Fill(mix(cheese, melted, bake))
	for i := 0; i < toppings; i++ {
		a := float64(i) / 6 * math.Pi * 2
		c.Circle(x+math.Cos(a)*r*0.5, y+math.Sin(a)*r*0.5, r*0.12).Fill(pepperoni)
	}
}

func flames(c *canvas.Canvas, cx, base float64, frame int64) {
	for i := 0; i < 5; i++ {
		fi := float64(i)
		height := 12 + 10*math.Abs(math.Sin(float64(frame)*0.8+fi*1.3))
		x := cx - 60 + fi*30
		c.Path().
			MoveTo(x-8, base).
			QuadTo(x-4, base-height*0.6, x, base-height).
			QuadTo(x+4, base-height*0.6, x+8, base).
			Close().
			FillAlpha(mix(ember, cheese, fi/4), 0.85)
	}
}

func box(c *canvas.Canvas, cx, cy float64) {
	c.Rect(cx-90, cy-20, 180, 50).Fill(cardboard).Outline(crust, 2)
	c.Rect(cx-90, cy-28, 180, 10).Fill(mix(cardboard, crust, 0.3))
	c.RoundRect(cx-30, cy-8, 60, 24, 4).Fill(pepperoni)
}
