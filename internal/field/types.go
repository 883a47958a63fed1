package field

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between two points.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// Particle is a single decorative point. Color is fixed at seed time,
// Alpha and Radius change every step.
type Particle struct {
	Pos        Vec2
	Vel        Vec2
	BaseRadius float64
	Radius     float64
	Hue        float64
	Color      colorful.Color
	Alpha      float64
}

// RGBA returns the particle colour with the given opacity applied.
func (p Particle) RGBA(alpha float64) color.NRGBA {
	return withAlpha(p.Color, alpha)
}

// RenderStats summarizes one Render call.
type RenderStats struct {
	Particles int
	Links     int
	MeanAlpha float64
}

// Surface is a 2D drawing target. Coordinates are in surface pixels with the
// origin at the top-left. Alpha of the passed colours is the draw opacity.
type Surface interface {
	// Fade composites a full-surface fill, producing motion trails when the
	// fill is translucent.
	Fade(c color.NRGBA)
	// Glow draws a soft radial halo fading to transparent at radius r.
	Glow(x, y, r float64, c color.NRGBA)
	FillCircle(x, y, r float64, c color.NRGBA)
	Line(x0, y0, x1, y1 float64, c color.NRGBA)
}

func withAlpha(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alphaByte(alpha)}
}

func alphaByte(a float64) uint8 {
	return uint8(math.Round(clamp(a, 0, 1) * 255))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseColor parses a #rrggbb colour into an opaque NRGBA.
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	return withAlpha(c, 1), nil
}

// Discard is a Surface that draws nothing, for runs that only need the
// simulation and its stats.
var Discard Surface = discard{}

type discard struct{}

func (discard) Fade(color.NRGBA)                                     {}
func (discard) Glow(float64, float64, float64, color.NRGBA)          {}
func (discard) FillCircle(float64, float64, float64, color.NRGBA)    {}
func (discard) Line(float64, float64, float64, float64, color.NRGBA) {}
