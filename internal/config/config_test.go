package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/stickbox/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scene != "pulse" {
		t.Errorf("expected scene pulse, got %s", cfg.Scene)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Iterations != physics.RelaxationIterations {
		t.Errorf("iterations = %d, want %d", cfg.Iterations, physics.RelaxationIterations)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = VectorConfig{X: 3, Y: 500}
	cfg.Viewport = ViewportConfig{Width: 640, Height: 480}

	p := cfg.Params()

	if p.Gravity[0] != 3 || p.Gravity[1] != 500 {
		t.Errorf("gravity = %v", p.Gravity)
	}
	if p.Bounds.MaxX != 640 || p.Bounds.MaxY != 480 || p.Bounds.MinX != 0 {
		t.Errorf("bounds = %+v", p.Bounds)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"negative damping", func(c *Config) { c.Damping = -0.1 }, physics.ErrInvalidParams},
		{"restitution above one", func(c *Config) { c.Restitution = 1.5 }, physics.ErrInvalidParams},
		{"zero viewport", func(c *Config) { c.Viewport.Width = 0 }, physics.ErrInvalidParams},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }, physics.ErrInvalidParams},
		{"zero dt", func(c *Config) { c.Dt = 0 }, physics.ErrInvalidParams},
		{"negative mass", func(c *Config) { c.Mass = -1 }, physics.ErrInvalidMass},
		{"zero radius", func(c *Config) { c.PointRadius = 0 }, physics.ErrInvalidParams},
		{"zero oscillation period", func(c *Config) { c.Oscillation.Period = 0 }, physics.ErrInvalidParams},
		{"NaN mass", func(c *Config) { c.Mass = math.NaN() }, physics.ErrInvalidMass},
		{"NaN radius", func(c *Config) { c.PointRadius = math.NaN() }, physics.ErrInvalidParams},
		{"NaN harmonic period", func(c *Config) { c.Harmonic.Period = math.NaN() }, physics.ErrInvalidParams},
		{"NaN dt", func(c *Config) { c.Dt = math.NaN() }, physics.ErrInvalidParams},
		{"NaN viewport", func(c *Config) { c.Viewport.Height = math.NaN() }, physics.ErrInvalidParams},
		{"NaN max dt", func(c *Config) { c.MaxDt = math.NaN() }, physics.ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stickbox.yaml")
	cfg := DefaultConfig()
	cfg.Scene = "rigid"
	cfg.Restitution = 0.75

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip changed config:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "scene: anchored\ngravity:\n  y: 500\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Scene != "anchored" || cfg.Gravity.Y != 500 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Viewport.Width != physics.DefaultWidth || cfg.Iterations != physics.RelaxationIterations {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("restitution: 4\n"), 0644)
	if _, err := Load(bad); !errors.Is(err, physics.ErrInvalidParams) {
		t.Errorf("Load(bad) = %v, want ErrInvalidParams", err)
	}

	garbage := filepath.Join(dir, "garbage.yaml")
	os.WriteFile(garbage, []byte("dt: [1, 2\n"), 0644)
	if _, err := Load(garbage); err == nil {
		t.Error("expected parse error")
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("rigid", "bouncy")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Restitution != 0.9 || cfg.Scene != "rigid" {
		t.Errorf("unexpected preset %+v", cfg)
	}

	cfg.Restitution = 0
	if Presets["rigid"]["bouncy"].Restitution != 0.9 {
		t.Error("GetPreset returned a shared pointer")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("rigid", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "default"); cfg != nil {
		t.Error("expected nil for nonexistent scene")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for scene, variants := range Presets {
		for name, cfg := range variants {
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", scene, name, err)
			}
			if cfg.Scene != scene {
				t.Errorf("%s/%s has scene %q", scene, name, cfg.Scene)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("pulse")
	if len(presets) != 3 || presets[0] != "damped" {
		t.Errorf("ListPresets(pulse) = %v", presets)
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent scene")
	}
}
