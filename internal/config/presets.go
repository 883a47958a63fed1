package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/particlefield/internal/field"
)

type Preset struct {
	Description string
	Field       func() field.Options
	Theme       string
}

var Presets = map[string]Preset{
	"hero": {
		Description: "fixed 50 particles, blue-violet, lines under 100",
		Field:       field.Baseline,
	},
	"enhanced": {
		Description: "area-scaled count, pointer repulsion, lines under 120",
		Field:       field.Enhanced,
	},
	"contact": {
		Description: "sparse teal field for form backdrops",
		Field: func() field.Options {
			o := field.Baseline()
			o.Count = 30
			o.MaxCount = 30
			o.HueMin = 170
			o.HueSpan = 40
			o.LinkDistance = 80
			o.Speed = 0.6
			return o
		},
	},
	"nebula": {
		Description: "slow violet swarm with long trails",
		Theme:       "cyberpunk",
		Field: func() field.Options {
			o := field.Enhanced()
			o.HueMin = 260
			o.HueSpan = 60
			o.Speed = 0.5
			o.TrailAlpha = 0.03
			o.LinkDistance = 140
			o.GlowScale = 6
			o.PointerStrength = 0.3
			return o
		},
	},
}

// GetPreset returns the named preset, or nil.
func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

// FromPreset returns a default config carrying the preset's field options.
func FromPreset(name string) (*Config, error) {
	p := GetPreset(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	cfg := DefaultConfig()
	cfg.Preset = name
	cfg.Field = p.Field()
	if p.Theme != "" {
		cfg.Theme = p.Theme
	}
	return cfg, nil
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
