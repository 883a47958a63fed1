package metrics

import "github.com/san-kum/particlefield/internal/anim"

// LinkDensity is the mean number of entanglement lines per frame.
type LinkDensity struct {
	name    string
	links   int
	samples int
}

func NewLinkDensity() *LinkDensity {
	return &LinkDensity{name: "links_per_frame"}
}

func (l *LinkDensity) Name() string { return l.name }

func (l *LinkDensity) Observe(info anim.FrameInfo) {
	l.links += info.Stats.Links
	l.samples++
}

func (l *LinkDensity) Value() float64 {
	if l.samples == 0 {
		return 0
	}
	return float64(l.links) / float64(l.samples)
}

func (l *LinkDensity) Reset() {
	l.links = 0
	l.samples = 0
}

// MeanAlpha averages the per-frame mean particle opacity.
type MeanAlpha struct {
	name    string
	sum     float64
	samples int
}

func NewMeanAlpha() *MeanAlpha {
	return &MeanAlpha{name: "mean_alpha"}
}

func (m *MeanAlpha) Name() string { return m.name }

func (m *MeanAlpha) Observe(info anim.FrameInfo) {
	m.sum += info.Stats.MeanAlpha
	m.samples++
}

func (m *MeanAlpha) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanAlpha) Reset() {
	m.sum = 0
	m.samples = 0
}
