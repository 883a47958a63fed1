package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/particlefield/internal/anim"
	"github.com/san-kum/particlefield/internal/field"
)

func frame(links int, alpha float64, particles ...field.Particle) anim.FrameInfo {
	return anim.FrameInfo{
		Stats:     field.RenderStats{Particles: len(particles), Links: links, MeanAlpha: alpha},
		Particles: particles,
	}
}

func particle(x, y, vx, vy float64) field.Particle {
	return field.Particle{Pos: field.Vec2{X: x, Y: y}, Vel: field.Vec2{X: vx, Y: vy}}
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy()
	m.Observe(frame(0, 0, particle(1, 1, 3, 4), particle(1, 1, 0, 0)))

	// (0.5*25 + 0) / 2
	if got := m.Value(); math.Abs(got-6.25) > 1e-9 {
		t.Errorf("energy = %f, want 6.25", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}

	m.Observe(frame(0, 0))
	if m.Value() != 0 {
		t.Error("empty frame should not count")
	}
}

func TestContainment(t *testing.T) {
	m := NewContainment(100, 100)
	if m.Value() != 1 {
		t.Error("no samples should report fully contained")
	}
	m.Observe(frame(0, 0, particle(50, 50, 0, 0), particle(100, 0, 0, 0)))
	m.Observe(frame(0, 0, particle(101, 50, 0, 0)))
	if got := m.Value(); got != 0.5 {
		t.Errorf("containment = %f, want 0.5", got)
	}
}

func TestLinkDensityAndAlpha(t *testing.T) {
	links, alpha := NewLinkDensity(), NewMeanAlpha()
	set := Set{links, alpha}
	set.Observe(frame(4, 0.2))
	set.Observe(frame(6, 0.4))

	values := set.Values()
	if values["links_per_frame"] != 5 {
		t.Errorf("links_per_frame = %f", values["links_per_frame"])
	}
	if math.Abs(values["mean_alpha"]-0.3) > 1e-9 {
		t.Errorf("mean_alpha = %f", values["mean_alpha"])
	}

	set.Reset()
	if links.Value() != 0 || alpha.Value() != 0 {
		t.Error("set reset did not reset members")
	}
}

func TestSpeed(t *testing.T) {
	m := NewSpeed()
	m.Observe(frame(0, 0, particle(0, 0, 3, 4), particle(0, 0, 0, 1)))
	if got := m.Value(); got != 3 {
		t.Errorf("speed = %f, want 3", got)
	}
}

func TestDefaultNames(t *testing.T) {
	names := Default(10, 10).Names()
	want := []string{"containment", "kinetic_energy", "links_per_frame", "mean_alpha", "mean_speed"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory(3)
	if h.Last() != 0 {
		t.Error("empty history last should be 0")
	}
	for _, v := range []float64{1, 2, 3, 4, 5} {
		h.Push(v)
	}
	got := h.Values()
	if len(got) != 3 || got[0] != 3 || got[2] != 5 {
		t.Errorf("values = %v, want [3 4 5]", got)
	}
	if h.Last() != 5 {
		t.Errorf("last = %f", h.Last())
	}
	h.Reset()
	if h.Len() != 0 {
		t.Error("reset kept values")
	}
}
