package template

import (
	"math"

	"github.com/scvi-aria/deko/internal/canvas"
)

// Easing curves take t in [0, 1].

func easeOutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*math.Pow(t-1, 3) + c1*math.Pow(t-1, 2)
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

func easeOutBounce(t float64) float64 {
	const n1 = 7.5625
	const d1 = 2.75
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

func easeOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// mix linearly interpolates two colours channel by channel.
func mix(a, b canvas.Color, t float64) canvas.Color {
	t = clamp01(t)
	lerp := func(shift uint) canvas.Color {
		ca := float64((a >> shift) & 0xFF)
		cb := float64((b >> shift) & 0xFF)
		return canvas.Color(math.Round(ca+(cb-ca)*t)) << shift
	}
	return lerp(16) | lerp(8) | lerp(0)
}
