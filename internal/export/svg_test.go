package export

import (
	"bytes"
	"image/color"
	"math/rand"
	"strings"
	"testing"

	"github.com/san-kum/particlefield/internal/field"
)

var bg = color.NRGBA{R: 3, G: 7, B: 18, A: 255}

func TestSVGRecordsPrimitives(t *testing.T) {
	s := NewSVG(200, 100, bg)
	s.Fade(color.NRGBA{A: 13})
	s.Glow(10, 20, 15, color.NRGBA{R: 0x22, G: 0xd3, B: 0xee, A: 51})
	s.FillCircle(10, 20, 3, color.NRGBA{R: 255, A: 255})
	s.Line(0, 0, 50, 50, color.NRGBA{G: 255, A: 128})
	s.Fade(color.NRGBA{R: 3, G: 7, B: 18, A: 13})

	out := s.String()
	for _, want := range []string{
		`width="200" height="100"`,
		`<rect width="100%" height="100%" fill="#030712"/>`,
		`<radialGradient id="glow-22d3ee">`,
		`fill="url(#glow-22d3ee)"`,
		`<circle cx="10.0" cy="20.0" r="3.00" fill="#ff0000" fill-opacity="1.000"/>`,
		`stroke="#00ff00" stroke-opacity="0.502"`,
		`fill-opacity="0.051"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Count(out, "<rect") != 2 {
		t.Errorf("fade before any drawing should be skipped, got %d rects", strings.Count(out, "<rect"))
	}
	if !strings.HasSuffix(out, "</svg>") {
		t.Error("document not closed")
	}
}

func TestSVGSkipsTransparent(t *testing.T) {
	s := NewSVG(10, 10, bg)
	s.FillCircle(1, 1, 1, color.NRGBA{R: 255})
	s.Line(0, 0, 1, 1, color.NRGBA{})
	s.Glow(1, 1, 0, color.NRGBA{A: 255})
	if strings.Contains(s.String(), "<circle") || strings.Contains(s.String(), "<line") {
		t.Error("transparent primitives were written")
	}
}

func TestSVGResetAndWriteTo(t *testing.T) {
	s := NewSVG(10, 10, bg)
	s.Glow(5, 5, 2, color.NRGBA{R: 1, A: 255})
	s.Reset()
	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("wrote %d bytes, reported %d", buf.Len(), n)
	}
	if strings.Contains(buf.String(), "radialGradient") {
		t.Error("reset kept gradients")
	}
}

func TestSnapshot(t *testing.T) {
	svg, stats, err := Snapshot(field.Baseline(), 400, 300, 30, rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Particles != field.DefaultCount {
		t.Errorf("particles = %d", stats.Particles)
	}
	out := svg.String()
	// links at the very edge of the threshold round to zero opacity
	if got := strings.Count(out, "<line"); got == 0 || got > stats.Links {
		t.Errorf("lines = %d, stats say %d", got, stats.Links)
	}
	if !strings.Contains(out, `fill="#030712"`) {
		t.Error("background colour missing")
	}

	if _, _, err := Snapshot(field.Baseline(), 0, 300, 1, nil); err == nil {
		t.Error("expected an error for a zero width")
	}
}

func TestTrajectories(t *testing.T) {
	paths, colors, err := Trajectories(field.Baseline(), 300, 200, 20, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != field.DefaultCount || len(colors) != len(paths) {
		t.Fatalf("paths=%d colors=%d", len(paths), len(colors))
	}
	for i, p := range paths {
		if len(p) != 21 {
			t.Fatalf("path %d has %d points, want 21", i, len(p))
		}
		for _, v := range p {
			if v.X < 0 || v.X > 300 || v.Y < 0 || v.Y > 200 {
				t.Fatalf("path %d left the field: %+v", i, v)
			}
		}
	}

	out := TrajectoriesToSVG(paths, colors, 300, 200, bg)
	if got := strings.Count(out, "<path"); got != field.DefaultCount {
		t.Errorf("paths drawn = %d", got)
	}
}

func TestTrajectoriesToSVGSkipsShortPaths(t *testing.T) {
	out := TrajectoriesToSVG([][]field.Vec2{{{X: 1, Y: 1}}}, nil, 10, 10, bg)
	if strings.Contains(out, "<path") {
		t.Error("single point path drawn")
	}
}
