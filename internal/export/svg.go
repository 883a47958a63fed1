package export

import (
	"fmt"
	"image/color"
	"io"
	"sort"
	"strings"

	"github.com/san-kum/particlefield/internal/field"
)

// SVG is a field.Surface that records one frame as SVG elements. Each Fade
// after the first paints a translucent background rect, as a canvas trail
// would.
type SVG struct {
	width, height float64
	background    color.NRGBA
	gradients     map[string]color.NRGBA
	body          strings.Builder
	drawn         bool
}

func NewSVG(width, height float64, background color.NRGBA) *SVG {
	return &SVG{
		width:      width,
		height:     height,
		background: background,
		gradients:  make(map[string]color.NRGBA),
	}
}

// Reset drops every recorded element.
func (s *SVG) Reset() {
	s.body.Reset()
	s.gradients = make(map[string]color.NRGBA)
	s.drawn = false
}

func (s *SVG) Fade(c color.NRGBA) {
	if !s.drawn || c.A == 0 {
		return
	}
	fmt.Fprintf(&s.body, `<rect width="100%%" height="100%%" fill="%s" fill-opacity="%.3f"/>`+"\n", hex(c), opacity(c))
}

func (s *SVG) Glow(x, y, r float64, c color.NRGBA) {
	if c.A == 0 || r <= 0 {
		return
	}
	id := "glow-" + strings.TrimPrefix(hex(c), "#")
	s.gradients[id] = c
	fmt.Fprintf(&s.body, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="url(#%s)" opacity="%.3f"/>`+"\n", x, y, r, id, opacity(c))
	s.drawn = true
}

func (s *SVG) FillCircle(x, y, r float64, c color.NRGBA) {
	if c.A == 0 || r <= 0 {
		return
	}
	fmt.Fprintf(&s.body, `<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s" fill-opacity="%.3f"/>`+"\n", x, y, r, hex(c), opacity(c))
	s.drawn = true
}

func (s *SVG) Line(x0, y0, x1, y1 float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	fmt.Fprintf(&s.body, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-opacity="%.3f" stroke-width="1"/>`+"\n", x0, y0, x1, y1, hex(c), opacity(c))
	s.drawn = true
}

// String returns the complete document.
func (s *SVG) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
`, s.width, s.height, s.width, s.height)

	if len(s.gradients) > 0 {
		ids := make([]string, 0, len(s.gradients))
		for id := range s.gradients {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		sb.WriteString("<defs>\n")
		for _, id := range ids {
			c := hex(s.gradients[id])
			fmt.Fprintf(&sb, `<radialGradient id="%s"><stop offset="0" stop-color="%s"/><stop offset="1" stop-color="%s" stop-opacity="0"/></radialGradient>`+"\n", id, c, c)
		}
		sb.WriteString("</defs>\n")
	}

	fmt.Fprintf(&sb, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", hex(s.background))
	sb.WriteString(s.body.String())
	sb.WriteString("</svg>")
	return sb.String()
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

// TrajectoriesToSVG draws each particle's recorded positions as a polyline
// in field coordinates.
func TrajectoriesToSVG(paths [][]field.Vec2, colors []color.NRGBA, width, height float64, background color.NRGBA) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, hex(background))

	for i, path := range paths {
		if len(path) < 2 {
			continue
		}
		stroke := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		if i < len(colors) {
			stroke = colors[i]
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-opacity="%.3f" stroke-width="1.5" d="M`, hex(stroke), opacity(stroke))
		for j, p := range path {
			if j == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", p.X, p.Y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", p.X, p.Y)
			}
		}
		sb.WriteString(`"/>` + "\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(c color.NRGBA) float64 { return float64(c.A) / 255 }
