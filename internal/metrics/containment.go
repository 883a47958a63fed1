package metrics

import "github.com/san-kum/particlefield/internal/anim"

// Containment is the fraction of frames in which every particle was inside
// the surface bounds. Anything below 1 is a bug.
type Containment struct {
	name       string
	w, h       float64
	violations int
	samples    int
}

func NewContainment(w, h float64) *Containment {
	return &Containment{name: "containment", w: w, h: h}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(info anim.FrameInfo) {
	c.samples++
	for _, p := range info.Particles {
		if p.Pos.X < 0 || p.Pos.X > c.w || p.Pos.Y < 0 || p.Pos.Y > c.h {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
