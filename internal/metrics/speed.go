package metrics

import (
	"math"

	"github.com/san-kum/particlefield/internal/anim"
)

// Speed is the mean particle speed across frames. Pointer pushes show up as
// a rise.
type Speed struct {
	name    string
	sum     float64
	samples int
}

func NewSpeed() *Speed {
	return &Speed{name: "mean_speed"}
}

func (s *Speed) Name() string { return s.name }

func (s *Speed) Observe(info anim.FrameInfo) {
	for _, p := range info.Particles {
		s.sum += math.Hypot(p.Vel.X, p.Vel.Y)
		s.samples++
	}
}

func (s *Speed) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *Speed) Reset() {
	s.sum = 0
	s.samples = 0
}
