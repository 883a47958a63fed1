package viz

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// DefaultThreshold is the intensity below which a dot is not drawn.
	DefaultThreshold = 0.15
	// DefaultScale is field units per Braille dot.
	DefaultScale = 4.0
	// defaultGain lifts the faint alphas used on a browser canvas to
	// something a terminal dot can show.
	defaultGain = 3.0
	// defaultFadeFloor stops trails from smearing across a coarse grid.
	defaultFadeFloor = 0.25
)

// BrailleSurface draws a particle field onto a Canvas. Field coordinates
// are divided by Scale to land on dots.
type BrailleSurface struct {
	canvas    *Canvas
	scale     float64
	gain      float64
	fadeFloor float64
}

func NewBrailleSurface(cols, rows int, scale float64) *BrailleSurface {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &BrailleSurface{
		canvas:    NewCanvas(cols, rows),
		scale:     scale,
		gain:      defaultGain,
		fadeFloor: defaultFadeFloor,
	}
}

func (s *BrailleSurface) Canvas() *Canvas { return s.canvas }

func (s *BrailleSurface) Scale() float64 { return s.scale }

func (s *BrailleSurface) Resize(cols, rows int) { s.canvas.Resize(cols, rows) }

// FieldSize is the drawable area in field units.
func (s *BrailleSurface) FieldSize() (w, h float64) {
	dw, dh := s.canvas.Dots()
	return float64(dw) * s.scale, float64(dh) * s.scale
}

// CellToField maps a terminal cell to the field position of its centre.
func (s *BrailleSurface) CellToField(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * 2 * s.scale, (float64(row) + 0.5) * 4 * s.scale
}

func (s *BrailleSurface) Clear() { s.canvas.Clear() }

func (s *BrailleSurface) Fade(c color.NRGBA) {
	a := float64(c.A) / 255
	if a == 0 {
		return
	}
	s.canvas.Decay(math.Max(a, s.fadeFloor))
}

func (s *BrailleSurface) Glow(x, y, r float64, c color.NRGBA) {
	s.disc(x, y, r, c, true)
}

func (s *BrailleSurface) FillCircle(x, y, r float64, c color.NRGBA) {
	s.disc(x, y, r, c, false)
}

func (s *BrailleSurface) Line(x0, y0, x1, y1 float64, c color.NRGBA) {
	a := s.coverage(c)
	if a == 0 {
		return
	}
	s.canvas.DrawLine(s.dot(x0), s.dot(y0), s.dot(x1), s.dot(y1), a, tint(c))
}

func (s *BrailleSurface) disc(x, y, r float64, c color.NRGBA, falloff bool) {
	a := s.coverage(c)
	if a == 0 || r <= 0 {
		return
	}
	cx, cy := x/s.scale, y/s.scale
	// Anything smaller than a dot still lights the dot it sits on.
	rd := math.Max(r/s.scale, 0.5)
	t := tint(c)
	for dy := int(math.Floor(cy - rd)); dy <= int(math.Ceil(cy+rd)); dy++ {
		for dx := int(math.Floor(cx - rd)); dx <= int(math.Ceil(cx+rd)); dx++ {
			d := math.Hypot(float64(dx)+0.5-cx, float64(dy)+0.5-cy) / rd
			if d > 1 {
				continue
			}
			level := a
			if falloff {
				level *= (1 - d) * (1 - d)
			}
			s.canvas.Plot(dx, dy, level, t)
		}
	}
}

func (s *BrailleSurface) coverage(c color.NRGBA) float64 {
	return math.Min(1, float64(c.A)/255*s.gain)
}

func (s *BrailleSurface) dot(v float64) int { return int(math.Floor(v / s.scale)) }

func tint(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
