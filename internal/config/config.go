package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/stickbox/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScene    = "pulse"
	DefaultDt       = 1.0 / 60
	DefaultDuration = 10.0
	DefaultMass     = 1.0
)

type Config struct {
	Scene       string         `yaml:"scene"`
	Dt          float64        `yaml:"dt"`
	Duration    float64        `yaml:"duration"`
	Gravity     VectorConfig   `yaml:"gravity"`
	Damping     float64        `yaml:"damping"`
	Restitution float64        `yaml:"restitution"`
	Viewport    ViewportConfig `yaml:"viewport"`
	Iterations  int            `yaml:"iterations"`
	MaxDt       float64        `yaml:"max_dt"`
	PointRadius float64        `yaml:"point_radius"`
	Mass        float64        `yaml:"mass"`
	Harmonic    WaveConfig     `yaml:"harmonic"`
	Oscillation WaveConfig     `yaml:"oscillation"`
}

type VectorConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// WaveConfig describes a sinusoidal rest-length modulation. Period is in
// relaxation passes per radian.
type WaveConfig struct {
	Amplitude float64 `yaml:"amplitude"`
	Period    float64 `yaml:"period"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:       DefaultScene,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Gravity:     VectorConfig{Y: physics.DefaultGravityY},
		Damping:     physics.DefaultDamping,
		Restitution: physics.DefaultRestitution,
		Viewport:    ViewportConfig{Width: physics.DefaultWidth, Height: physics.DefaultHeight},
		Iterations:  physics.RelaxationIterations,
		MaxDt:       physics.DefaultMaxDt,
		PointRadius: physics.DefaultPointRadius,
		Mass:        DefaultMass,
		Harmonic:    WaveConfig{Amplitude: physics.HarmonicAmplitude, Period: physics.HarmonicPeriod},
		Oscillation: WaveConfig{Amplitude: physics.OscillationAmplitude, Period: physics.OscillationPeriod},
	}
}

// Load reads a YAML file on top of DefaultConfig, so omitted keys keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the tunables into the immutable physics form.
func (c *Config) Params() physics.Params {
	return physics.Params{
		Gravity:     mgl64.Vec2{c.Gravity.X, c.Gravity.Y},
		Damping:     c.Damping,
		Restitution: c.Restitution,
		Bounds:      physics.Viewport(c.Viewport.Width, c.Viewport.Height),
		Iterations:  c.Iterations,
		MaxDt:       c.MaxDt,
	}
}

func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", physics.ErrInvalidParams, c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", physics.ErrInvalidParams, c.Duration)
	}
	if !(c.Mass > 0) {
		return fmt.Errorf("%w: mass must be positive, got %f", physics.ErrInvalidMass, c.Mass)
	}
	if !(c.PointRadius > 0) {
		return fmt.Errorf("%w: point radius must be positive, got %f", physics.ErrInvalidParams, c.PointRadius)
	}
	if !(c.Harmonic.Period > 0) || !(c.Oscillation.Period > 0) {
		return fmt.Errorf("%w: wave periods must be positive", physics.ErrInvalidParams)
	}
	return nil
}
