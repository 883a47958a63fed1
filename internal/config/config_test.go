package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/particlefield/internal/field"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Preset != "hero" {
		t.Errorf("expected preset hero, got %s", cfg.Preset)
	}
	if cfg.FPS <= 0 {
		t.Error("fps should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("enhanced")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if !p.Field().Interactive {
		t.Error("enhanced preset should be interactive")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	_, err := FromPreset("nonexistent")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	want := []string{"contact", "enhanced", "hero", "nebula"}
	if len(presets) != len(want) {
		t.Fatalf("presets = %v", presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("presets[%d] = %s, want %s", i, presets[i], want[i])
		}
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		cfg, err := FromPreset(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	cfg, _ := FromPreset("nebula")
	if cfg.Theme != "cyberpunk" {
		t.Errorf("nebula theme = %s", cfg.Theme)
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverlaysPreset(t *testing.T) {
	path := writeFile(t, "pf.yaml", `
preset: enhanced
fps: 24
field:
  link_distance: 90
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FPS != 24 {
		t.Errorf("fps = %d, want 24", cfg.FPS)
	}
	if cfg.Field.LinkDistance != 90 {
		t.Errorf("link distance = %v, want 90", cfg.Field.LinkDistance)
	}
	if !cfg.Field.Interactive || cfg.Field.AreaPerParticle != 12000 {
		t.Error("untouched preset values were lost")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeFile(t, "bad.yaml", "field:\n  link_distance: -1\n")
	_, err := Load(path)
	if !errors.Is(err, field.ErrInvalidOptions) {
		t.Errorf("expected ErrInvalidOptions, got %v", err)
	}

	path = writeFile(t, "size.yaml", "width: 0\n")
	if _, err := Load(path); !errors.Is(err, field.ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}

	path = writeFile(t, "preset.yaml", "preset: nope\n")
	if _, err := Load(path); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	cfg, err := Resolve("", "")
	if err != nil || cfg.Preset != "hero" {
		t.Fatalf("Resolve default = %+v, %v", cfg, err)
	}

	path := writeFile(t, "pf.yaml", "preset: hero\nwidth: 320\n")
	cfg, err = Resolve(path, "nebula")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Preset != "nebula" || !cfg.Field.Interactive {
		t.Error("explicit preset did not replace the file's")
	}
	if cfg.Width != 320 {
		t.Errorf("file width lost: %d", cfg.Width)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg, _ := FromPreset("contact")
	cfg.Seed = 7
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Seed != 7 || loaded.Field.Count != 30 || loaded.Field.LinkDistance != 80 {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvAddr, ":9999")
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvPreset, "")
	path := writeFile(t, ".env", "PARTICLEFIELD_ADDR=:7000\nPARTICLEFIELD_DATA=/tmp/pf\nPARTICLEFIELD_PRESET=nebula\n")

	env, err := LoadEnv(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if env.Addr != ":9999" {
		t.Errorf("process env should win, got %s", env.Addr)
	}
	if env.DataDir != "/tmp/pf" || env.Preset != "nebula" {
		t.Errorf("env = %+v", env)
	}

	cfg := DefaultConfig()
	env.Apply(cfg)
	if cfg.Addr != ":9999" || cfg.DataDir != "/tmp/pf" {
		t.Errorf("apply gave addr=%s data=%s", cfg.Addr, cfg.DataDir)
	}
}
