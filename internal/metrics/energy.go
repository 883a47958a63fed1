package metrics

import "github.com/san-kum/particlefield/internal/anim"

// KineticEnergy is the mean per-particle ½|v|² over all observed frames,
// taking unit mass.
type KineticEnergy struct {
	name    string
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(info anim.FrameInfo) {
	if len(info.Particles) == 0 {
		return
	}
	sum := 0.0
	for _, p := range info.Particles {
		sum += 0.5 * (p.Vel.X*p.Vel.X + p.Vel.Y*p.Vel.Y)
	}
	e.total += sum / float64(len(info.Particles))
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}
