package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBase = 0x2800

// Canvas is a Braille dot grid where every dot carries an intensity in
// [0,1] and a tint. Width and Height count terminal cells; the dot grid is
// (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	levels        []float64
	tints         []colorful.Color
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	return c
}

// Resize reallocates the grid; previous dots are lost.
func (c *Canvas) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.Width, c.Height = w, h
	n := w * 2 * h * 4
	c.levels = make([]float64, n)
	c.tints = make([]colorful.Color, n)
}

// Dots returns the size of the grid in dots.
func (c *Canvas) Dots() (w, h int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) index(x, y int) (int, bool) {
	dw, dh := c.Dots()
	if x < 0 || y < 0 || x >= dw || y >= dh {
		return 0, false
	}
	return y*dw + x, true
}

// Level reports a dot's intensity, zero when out of range.
func (c *Canvas) Level(x, y int) float64 {
	if i, ok := c.index(x, y); ok {
		return c.levels[i]
	}
	return 0
}

// Plot composites a tinted dot over the existing one with coverage a.
func (c *Canvas) Plot(x, y int, a float64, tint colorful.Color) {
	i, ok := c.index(x, y)
	if !ok || a <= 0 {
		return
	}
	if a > 1 {
		a = 1
	}
	old := c.levels[i]
	if old == 0 {
		c.tints[i] = tint
	} else {
		c.tints[i] = c.tints[i].BlendRgb(tint, a).Clamped()
	}
	c.levels[i] = old + (1-old)*a
}

// Decay dims every dot by factor f in [0,1].
func (c *Canvas) Decay(f float64) {
	if f <= 0 {
		return
	}
	keep := 1 - f
	if keep < 0 {
		keep = 0
	}
	for i := range c.levels {
		c.levels[i] *= keep
		if c.levels[i] < 1e-3 {
			c.levels[i] = 0
		}
	}
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.levels {
		c.levels[i] = 0
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, a float64, tint colorful.Color) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Plot(x0, y0, a, tint)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// cell returns the Braille rune for a cell, the intensity-weighted tint of
// its lit dots and their peak intensity.
func (c *Canvas) cell(col, row int, threshold float64) (rune, colorful.Color, float64) {
	r := rune(brailleBase)
	var tint colorful.Color
	var weight, peak float64
	for sy := 0; sy < 4; sy++ {
		for sx := 0; sx < 2; sx++ {
			i, _ := c.index(col*2+sx, row*4+sy)
			l := c.levels[i]
			if l < threshold {
				continue
			}
			r |= rune(pixelMap[sy][sx])
			t := c.tints[i]
			tint.R += t.R * l
			tint.G += t.G * l
			tint.B += t.B * l
			weight += l
			if l > peak {
				peak = l
			}
		}
	}
	if weight > 0 {
		tint = colorful.Color{R: tint.R / weight, G: tint.G / weight, B: tint.B / weight}
	}
	return r, tint, peak
}

// String renders the dot pattern without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			r, _, _ := c.cell(col, row, DefaultThreshold)
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderOptions controls how dot intensities become terminal colour.
type RenderOptions struct {
	Threshold  float64
	Background colorful.Color
	// Mono replaces every tint when set.
	Mono *colorful.Color
}

// Render draws the grid with one foreground colour per cell, dimmed toward
// the background by the cell's peak intensity.
func (c *Canvas) Render(opts RenderOptions) string {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			r, tint, peak := c.cell(col, row, opts.Threshold)
			if r == brailleBase {
				b.WriteRune(r)
				continue
			}
			if opts.Mono != nil {
				tint = *opts.Mono
			}
			fg := opts.Background.BlendRgb(tint, peak).Clamped()
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(fg.Hex())).Render(string(r)))
		}
		if row < c.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
