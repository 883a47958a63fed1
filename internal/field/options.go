package field

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	DefaultCount        = 50
	DefaultLinkDistance = 100.0
	EnhancedLinkDist    = 120.0
	DefaultBackground   = "#030712"
	DefaultLinkColor    = "#22d3ee"
)

// Options configures a Field. Zero values are not meaningful on their own;
// start from Baseline or Enhanced and override.
type Options struct {
	// Count is used when AreaPerParticle is zero.
	Count int `yaml:"count"`
	// AreaPerParticle derives the count from the surface area, clamped to
	// [MinCount, MaxCount].
	AreaPerParticle float64 `yaml:"area_per_particle"`
	MinCount        int     `yaml:"min_count"`
	MaxCount        int     `yaml:"max_count"`

	// Speed bounds each seeded velocity component to [-Speed, Speed].
	Speed    float64 `yaml:"speed"`
	MaxSpeed float64 `yaml:"max_speed"`
	// Restitution scales the reflected velocity component; 1 is undamped.
	Restitution float64 `yaml:"restitution"`

	MinRadius    float64 `yaml:"min_radius"`
	RadiusJitter float64 `yaml:"radius_jitter"`
	RadiusPulse  float64 `yaml:"radius_pulse"`

	HueMin     float64  `yaml:"hue_min"`
	HueSpan    float64  `yaml:"hue_span"`
	Saturation float64  `yaml:"saturation"`
	Lightness  float64  `yaml:"lightness"`
	Palette    []string `yaml:"palette,omitempty"`

	PulseBase      float64 `yaml:"pulse_base"`
	PulseAmplitude float64 `yaml:"pulse_amplitude"`
	PulseRate      float64 `yaml:"pulse_rate"`
	PulseSpatial   float64 `yaml:"pulse_spatial"`

	LinkDistance float64 `yaml:"link_distance"`
	LinkOpacity  float64 `yaml:"link_opacity"`
	LinkColor    string  `yaml:"link_color"`

	Background string  `yaml:"background"`
	TrailAlpha float64 `yaml:"trail_alpha"`
	GlowScale  float64 `yaml:"glow_scale"`
	GlowAlpha  float64 `yaml:"glow_alpha"`

	Interactive     bool    `yaml:"interactive"`
	PointerRadius   float64 `yaml:"pointer_radius"`
	PointerStrength float64 `yaml:"pointer_strength"`
}

// Baseline is the plain hero background: a fixed 50 particles, lines under
// 100 units, no pointer interaction.
func Baseline() Options {
	return Options{
		Count:          DefaultCount,
		MinCount:       1,
		MaxCount:       DefaultCount,
		Speed:          1,
		Restitution:    1,
		MinRadius:      1,
		RadiusJitter:   3,
		HueMin:         200,
		HueSpan:        60,
		Saturation:     0.7,
		Lightness:      0.6,
		PulseBase:      0.2,
		PulseAmplitude: 0.3,
		PulseRate:      1,
		PulseSpatial:   0.01,
		LinkDistance:   DefaultLinkDistance,
		LinkOpacity:    0.2,
		LinkColor:      DefaultLinkColor,
		Background:     DefaultBackground,
		TrailAlpha:     0.05,
		GlowScale:      5,
		GlowAlpha:      0.35,
	}
}

// Enhanced is the interactive variant: count follows the surface area,
// lines reach 120 units and the pointer pushes particles away.
func Enhanced() Options {
	o := Baseline()
	o.Count = 0
	o.AreaPerParticle = 12000
	o.MinCount = 10
	o.MaxCount = 80
	o.MaxSpeed = 3
	o.Restitution = 0.9
	o.RadiusPulse = 0.25
	o.LinkDistance = EnhancedLinkDist
	o.LinkOpacity = 0.35
	o.Interactive = true
	o.PointerRadius = 150
	o.PointerStrength = 0.6
	return o
}

// Validate checks every option and returns an *OptionError for the first
// offending value.
func (o Options) Validate() error {
	checks := []struct {
		name string
		val  float64
		ok   bool
		why  string
	}{
		{"count", float64(o.Count), o.Count >= 0, "must not be negative"},
		{"area_per_particle", o.AreaPerParticle, o.AreaPerParticle >= 0, "must not be negative"},
		{"min_count", float64(o.MinCount), o.MinCount >= 0, "must not be negative"},
		{"max_count", float64(o.MaxCount), o.MaxCount >= o.MinCount, "must be >= min_count"},
		{"speed", o.Speed, o.Speed >= 0, "must not be negative"},
		{"max_speed", o.MaxSpeed, o.MaxSpeed >= 0, "must not be negative"},
		{"restitution", o.Restitution, o.Restitution > 0 && o.Restitution <= 1, "must be in (0, 1]"},
		{"min_radius", o.MinRadius, o.MinRadius > 0, "must be positive"},
		{"radius_jitter", o.RadiusJitter, o.RadiusJitter >= 0, "must not be negative"},
		{"radius_pulse", o.RadiusPulse, o.RadiusPulse >= 0 && o.RadiusPulse < 1, "must be in [0, 1)"},
		{"link_distance", o.LinkDistance, o.LinkDistance > 0, "must be positive"},
		{"link_opacity", o.LinkOpacity, o.LinkOpacity >= 0 && o.LinkOpacity <= 1, "must be in [0, 1]"},
		{"trail_alpha", o.TrailAlpha, o.TrailAlpha >= 0 && o.TrailAlpha <= 1, "must be in [0, 1]"},
		{"glow_scale", o.GlowScale, o.GlowScale >= 0, "must not be negative"},
		{"pointer_radius", o.PointerRadius, !o.Interactive || o.PointerRadius > 0, "must be positive when interactive"},
	}
	for _, c := range checks {
		if !c.ok || math.IsNaN(c.val) {
			return &OptionError{Option: c.name, Value: c.val, Reason: c.why}
		}
	}
	if o.AreaPerParticle == 0 && o.Count == 0 {
		return &OptionError{Option: "count", Value: 0, Reason: "count or area_per_particle must be set"}
	}
	for _, hex := range append([]string{o.LinkColor, o.Background}, o.Palette...) {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("%w: colour %q: %v", ErrInvalidOptions, hex, err)
		}
	}
	return nil
}

// CountFor returns the particle count for a surface of the given size.
func (o Options) CountFor(w, h float64) int {
	if o.AreaPerParticle <= 0 {
		return o.Count
	}
	n := int(math.Floor(w * h / o.AreaPerParticle))
	if n < o.MinCount {
		n = o.MinCount
	}
	if n > o.MaxCount {
		n = o.MaxCount
	}
	return n
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}
	}
	return c
}
