package field

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Field is one particle simulation bound to a rectangular surface.
type Field struct {
	opts       Options
	rng        *rand.Rand
	w, h       float64
	particles  []Particle
	pointer    Vec2
	hasPointer bool
	palette    []colorful.Color
	linkColor  colorful.Color
	background colorful.Color
}

// New validates opts and returns an empty field. A nil rng seeds one from
// the wall clock.
func New(opts Options, rng *rand.Rand) (*Field, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	f := &Field{
		opts:       opts,
		rng:        rng,
		linkColor:  mustHex(opts.LinkColor),
		background: mustHex(opts.Background),
	}
	for _, hex := range opts.Palette {
		f.palette = append(f.palette, mustHex(hex))
	}
	return f, nil
}

func (f *Field) Options() Options { return f.opts }

func (f *Field) Bounds() (w, h float64) { return f.w, f.h }

func (f *Field) Len() int { return len(f.particles) }

// Particles returns a copy of the current particle set.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Initialize discards the current particles and seeds count new ones
// uniformly inside [0,w]×[0,h].
func (f *Field) Initialize(w, h float64, count int) error {
	if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return fmt.Errorf("%w: %gx%g", ErrInvalidBounds, w, h)
	}
	if count < 0 {
		return &OptionError{Option: "count", Value: float64(count), Reason: "must not be negative"}
	}
	f.w, f.h = w, h
	f.particles = make([]Particle, count)
	for i := range f.particles {
		f.particles[i] = f.seed()
	}
	return nil
}

// HandleResize reseeds the field for the new bounds. Particles are not
// carried over.
func (f *Field) HandleResize(w, h float64) error {
	return f.Initialize(w, h, f.opts.CountFor(w, h))
}

// Reseed replaces every particle while keeping the bounds and count.
func (f *Field) Reseed() error {
	if f.w == 0 || f.h == 0 {
		return nil
	}
	return f.Initialize(f.w, f.h, len(f.particles))
}

// Clear drops all particles.
func (f *Field) Clear() {
	f.particles = nil
}

func (f *Field) SetPointer(x, y float64) {
	f.pointer = Vec2{x, y}
	f.hasPointer = true
}

func (f *Field) ClearPointer() { f.hasPointer = false }

func (f *Field) seed() Particle {
	o := f.opts
	p := Particle{
		Pos: Vec2{f.rng.Float64() * f.w, f.rng.Float64() * f.h},
		Vel: Vec2{
			(f.rng.Float64() - 0.5) * 2 * o.Speed,
			(f.rng.Float64() - 0.5) * 2 * o.Speed,
		},
		BaseRadius: o.MinRadius + f.rng.Float64()*o.RadiusJitter,
		Alpha:      0.2 + f.rng.Float64()*0.5,
	}
	p.Radius = p.BaseRadius
	if len(f.palette) > 0 {
		p.Color = f.palette[f.rng.Intn(len(f.palette))]
		p.Hue, _, _ = p.Color.Hsl()
	} else {
		p.Hue = o.HueMin + f.rng.Float64()*o.HueSpan
		p.Color = colorful.Hsl(p.Hue, o.Saturation, o.Lightness)
	}
	return p
}

// Step advances every particle by one frame. elapsed is the time since the
// animation started and only drives the cosmetic pulse.
func (f *Field) Step(elapsed time.Duration) {
	o := f.opts
	t := elapsed.Seconds()
	for i := range f.particles {
		p := &f.particles[i]
		if o.Interactive && f.hasPointer {
			f.repel(p)
		}
		if o.MaxSpeed > 0 {
			if s := p.Vel.Len(); s > o.MaxSpeed {
				p.Vel = p.Vel.Scale(o.MaxSpeed / s)
			}
		}
		p.Pos = p.Pos.Add(p.Vel)
		f.reflect(p)

		wave := math.Sin(t*o.PulseRate + p.Pos.X*o.PulseSpatial)
		p.Alpha = clamp(o.PulseBase+wave*o.PulseAmplitude, 0, 1)
		p.Radius = p.BaseRadius
		if o.RadiusPulse > 0 {
			p.Radius = p.BaseRadius * (1 + o.RadiusPulse*wave)
		}
	}
}

// reflect flips the velocity component normal to any edge the particle
// touched and clamps it back inside the bounds.
func (f *Field) reflect(p *Particle) {
	r := f.opts.Restitution
	if p.Pos.X <= 0 {
		p.Pos.X = 0
		p.Vel.X = -p.Vel.X * r
	} else if p.Pos.X >= f.w {
		p.Pos.X = f.w
		p.Vel.X = -p.Vel.X * r
	}
	if p.Pos.Y <= 0 {
		p.Pos.Y = 0
		p.Vel.Y = -p.Vel.Y * r
	} else if p.Pos.Y >= f.h {
		p.Pos.Y = f.h
		p.Vel.Y = -p.Vel.Y * r
	}
}

func (f *Field) repel(p *Particle) {
	radius := f.opts.PointerRadius
	away := p.Pos.Sub(f.pointer)
	d := away.Len()
	if d >= radius || d == 0 {
		return
	}
	force := (radius - d) / radius * f.opts.PointerStrength
	p.Vel = p.Vel.Add(away.Scale(force / d))
}

// Links calls fn for every pair i<j closer than LinkDistance.
func (f *Field) Links(fn func(i, j int, d float64)) {
	limit := f.opts.LinkDistance
	for i := 0; i < len(f.particles); i++ {
		for j := i + 1; j < len(f.particles); j++ {
			d := f.particles[i].Pos.Dist(f.particles[j].Pos)
			if d < limit {
				fn(i, j, d)
			}
		}
	}
}

// Render draws one frame: trail fade, glow and core per particle, then the
// entanglement lines whose opacity falls off linearly with distance.
func (f *Field) Render(s Surface) RenderStats {
	o := f.opts
	stats := RenderStats{Particles: len(f.particles)}

	s.Fade(withAlpha(f.background, o.TrailAlpha))

	sum := 0.0
	for _, p := range f.particles {
		if o.GlowScale > 0 {
			s.Glow(p.Pos.X, p.Pos.Y, p.Radius*o.GlowScale, p.RGBA(p.Alpha*o.GlowAlpha))
		}
		s.FillCircle(p.Pos.X, p.Pos.Y, p.Radius, p.RGBA(p.Alpha))
		sum += p.Alpha
	}
	if len(f.particles) > 0 {
		stats.MeanAlpha = sum / float64(len(f.particles))
	}

	f.Links(func(i, j int, d float64) {
		a, b := f.particles[i].Pos, f.particles[j].Pos
		opacity := o.LinkOpacity * (1 - d/o.LinkDistance)
		s.Line(a.X, a.Y, b.X, b.Y, withAlpha(f.linkColor, opacity))
		stats.Links++
	})
	return stats
}
