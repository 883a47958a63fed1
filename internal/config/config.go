package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/particlefield/internal/field"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPreset  = "hero"
	DefaultWidth   = 640
	DefaultHeight  = 360
	DefaultFPS     = 30
	DefaultFrames  = 90
	DefaultTheme   = "nebula"
	DefaultScale   = 4.0
	DefaultAddr    = ":8080"
	DefaultDataDir = "./data"
)

var ErrUnknownPreset = errors.New("unknown preset")

type Config struct {
	Preset  string        `yaml:"preset"`
	Width   int           `yaml:"width"`
	Height  int           `yaml:"height"`
	FPS     int           `yaml:"fps"`
	Frames  int           `yaml:"frames"`
	Seed    int64         `yaml:"seed"`
	Theme   string        `yaml:"theme"`
	Scale   float64       `yaml:"scale"`
	Addr    string        `yaml:"addr"`
	DataDir string        `yaml:"data_dir"`
	Field   field.Options `yaml:"field"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:  DefaultPreset,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		FPS:     DefaultFPS,
		Frames:  DefaultFrames,
		Theme:   DefaultTheme,
		Scale:   DefaultScale,
		Addr:    DefaultAddr,
		DataDir: DefaultDataDir,
		Field:   field.Baseline(),
	}
}

// Load reads a config file on top of the preset it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var probe struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	name := probe.Preset
	if name == "" {
		name = DefaultPreset
	}
	cfg, err := FromPreset(name)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve builds the effective configuration. An explicit preset replaces
// the one in the file; values set in the file still win over the preset.
// An empty path means no file.
func Resolve(path, preset string) (*Config, error) {
	if path == "" {
		name := preset
		if name == "" {
			name = DefaultPreset
		}
		cfg, err := FromPreset(name)
		if err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}
	if preset == "" {
		return Load(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := FromPreset(preset)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Preset = preset
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: size %dx%d: %w", c.Width, c.Height, field.ErrInvalidBounds)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("config: fps must be positive, got %d", c.FPS)
	}
	if c.Frames < 0 {
		return fmt.Errorf("config: frames must not be negative, got %d", c.Frames)
	}
	if err := c.Field.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
