package metrics

import (
	"sort"

	"github.com/san-kum/particlefield/internal/anim"
)

// Metric accumulates one scalar over the rendered frames of a run.
type Metric interface {
	Name() string
	Observe(info anim.FrameInfo)
	Value() float64
	Reset()
}

// Set fans a frame out to several metrics.
type Set []Metric

// Default returns the metrics reported by record and bench.
func Default(w, h float64) Set {
	return Set{
		NewKineticEnergy(),
		NewLinkDensity(),
		NewMeanAlpha(),
		NewContainment(w, h),
		NewSpeed(),
	}
}

func (s Set) Observe(info anim.FrameInfo) {
	for _, m := range s {
		m.Observe(info)
	}
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names returns metric names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for _, m := range s {
		names = append(names, m.Name())
	}
	sort.Strings(names)
	return names
}
