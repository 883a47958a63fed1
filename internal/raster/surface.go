// Package raster renders a particle field into an in-memory RGBA image.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points so four arcs approximate a circle.
const kappa = 0.5522847498

// Surface is an anti-aliased field.Surface backed by *image.RGBA.
type Surface struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

func New(w, h int, bg color.Color) *Surface {
	s := &Surface{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		z:   vector.NewRasterizer(w, h),
	}
	s.Clear(bg)
	return s
}

func (s *Surface) Image() *image.RGBA { return s.img }

func (s *Surface) Size() (w, h int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize replaces the backing image; previous pixels are lost.
func (s *Surface) Resize(w, h int, bg color.Color) {
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	s.Clear(bg)
}

func (s *Surface) Clear(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (s *Surface) Fade(c color.NRGBA) {
	if c.A == 0 {
		return
	}
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Over)
}

func (s *Surface) FillCircle(x, y, r float64, c color.NRGBA) {
	if c.A == 0 || !s.visible(x, y, r) {
		return
	}
	s.circlePath(x, y, r)
	s.z.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{})
}

func (s *Surface) Glow(x, y, r float64, c color.NRGBA) {
	if c.A == 0 || !s.visible(x, y, r) {
		return
	}
	s.circlePath(x, y, r)
	s.z.Draw(s.img, s.img.Bounds(), &radial{cx: x, cy: y, r: r, c: c}, image.Point{})
}

// Line draws a one pixel wide anti-aliased segment.
func (s *Surface) Line(x0, y0, x1, y1 float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*0.5, dx/l*0.5

	w, h := s.Size()
	s.z.Reset(w, h)
	s.z.MoveTo(float32(x0+nx), float32(y0+ny))
	s.z.LineTo(float32(x1+nx), float32(y1+ny))
	s.z.LineTo(float32(x1-nx), float32(y1-ny))
	s.z.LineTo(float32(x0-nx), float32(y0-ny))
	s.z.ClosePath()
	s.z.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{})
}

func (s *Surface) visible(x, y, r float64) bool {
	if r <= 0 {
		return false
	}
	w, h := s.Size()
	return x+r >= 0 && y+r >= 0 && x-r <= float64(w) && y-r <= float64(h)
}

func (s *Surface) circlePath(x, y, r float64) {
	w, h := s.Size()
	s.z.Reset(w, h)
	k := r * kappa
	f := func(v float64) float32 { return float32(v) }
	s.z.MoveTo(f(x+r), f(y))
	s.z.CubeTo(f(x+r), f(y+k), f(x+k), f(y+r), f(x), f(y+r))
	s.z.CubeTo(f(x-k), f(y+r), f(x-r), f(y+k), f(x-r), f(y))
	s.z.CubeTo(f(x-r), f(y-k), f(x-k), f(y-r), f(x), f(y-r))
	s.z.CubeTo(f(x+k), f(y-r), f(x+r), f(y-k), f(x+r), f(y))
	s.z.ClosePath()
}

// radial is a source image whose alpha falls off quadratically from the
// centre to zero at r.
type radial struct {
	cx, cy, r float64
	c         color.NRGBA
}

func (g *radial) ColorModel() color.Model { return color.NRGBAModel }

func (g *radial) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (g *radial) At(x, y int) color.Color {
	d := math.Hypot(float64(x)+0.5-g.cx, float64(y)+0.5-g.cy) / g.r
	if d >= 1 {
		return color.NRGBA{}
	}
	fall := (1 - d) * (1 - d)
	c := g.c
	c.A = uint8(float64(c.A) * fall)
	return c
}
