package export

import (
	"fmt"
	"image/color"
	"math/rand"
	"time"

	"github.com/san-kum/particlefield/internal/field"
)

// FrameInterval is the nominal time between headless frames.
const FrameInterval = time.Second / 60

// Snapshot seeds a field of size w x h, advances it warmup frames without
// drawing, then records one frame.
func Snapshot(opts field.Options, w, h float64, warmup int, rng *rand.Rand) (*SVG, field.RenderStats, error) {
	f, err := warmField(opts, w, h, warmup, rng)
	if err != nil {
		return nil, field.RenderStats{}, err
	}
	bg, err := background(opts)
	if err != nil {
		return nil, field.RenderStats{}, err
	}
	svg := NewSVG(w, h, bg)
	f.Step(time.Duration(warmup) * FrameInterval)
	stats := f.Render(svg)
	return svg, stats, nil
}

// Trajectories records every particle's position for frames steps and
// returns the paths with each particle's colour.
func Trajectories(opts field.Options, w, h float64, frames int, rng *rand.Rand) ([][]field.Vec2, []color.NRGBA, error) {
	f, err := warmField(opts, w, h, 0, rng)
	if err != nil {
		return nil, nil, err
	}
	particles := f.Particles()
	paths := make([][]field.Vec2, len(particles))
	colors := make([]color.NRGBA, len(particles))
	for i, p := range particles {
		paths[i] = append(make([]field.Vec2, 0, frames+1), p.Pos)
		colors[i] = p.RGBA(0.8)
	}
	for i := 1; i <= frames; i++ {
		f.Step(time.Duration(i) * FrameInterval)
		for j, p := range f.Particles() {
			paths[j] = append(paths[j], p.Pos)
		}
	}
	return paths, colors, nil
}

func warmField(opts field.Options, w, h float64, warmup int, rng *rand.Rand) (*field.Field, error) {
	f, err := field.New(opts, rng)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if err := f.HandleResize(w, h); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	for i := 0; i < warmup; i++ {
		f.Step(time.Duration(i) * FrameInterval)
	}
	return f, nil
}

func background(opts field.Options) (color.NRGBA, error) {
	c, err := field.ParseColor(opts.Background)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("export: background: %w", err)
	}
	return c, nil
}
