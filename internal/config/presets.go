package config

import "sort"

// Presets holds tuning variants per scene. The default box and pulse
// variants relax once per frame; rigid and flat use the full count.
var Presets = map[string]map[string]*Config{
	"box": {
		"default": preset("box", func(c *Config) { c.Iterations = 1 }),
		"bouncy":  preset("box", func(c *Config) { c.Iterations = 1; c.Restitution = 0.9 }),
		"stiff":   preset("box", nil),
	},
	"pulse": {
		"default": preset("pulse", func(c *Config) { c.Iterations = 1 }),
		"fast":    preset("pulse", nil),
		"damped":  preset("pulse", func(c *Config) { c.Iterations = 1; c.Damping = 0.99 }),
	},
	"rigid": {
		"default": preset("rigid", nil),
		"bouncy":  preset("rigid", func(c *Config) { c.Restitution = 0.9 }),
		"moon":    preset("rigid", func(c *Config) { c.Gravity.Y = 162 }),
	},
	"anchored": {
		"default": preset("anchored", func(c *Config) { c.Gravity.Y = 500 }),
		"damped":  preset("anchored", func(c *Config) { c.Gravity.Y = 500; c.Damping = 0.99 }),
	},
	"flat": {
		"default": preset("flat", func(c *Config) { c.Gravity.Y = 500 }),
		"loose":   preset("flat", func(c *Config) { c.Gravity.Y = 500; c.Iterations = 1 }),
	},
}

func preset(scene string, tweak func(*Config)) *Config {
	c := DefaultConfig()
	c.Scene = scene
	if tweak != nil {
		tweak(c)
	}
	return c
}

// GetPreset returns a copy of the named variant, or nil.
func GetPreset(scene, variant string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[variant]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
