package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/stickbox/internal/config"
	"github.com/san-kum/stickbox/internal/metrics"
	"github.com/san-kum/stickbox/internal/physics"
	"github.com/san-kum/stickbox/internal/sim"
)

// SceneFunc builds a fresh world from a validated config.
type SceneFunc func(cfg *config.Config) (*sim.World, error)

type Registry struct {
	scenes map[string]SceneFunc
}

// Scenes place a 100x100 box at (200,200)-(300,300). Anchored scenes hang
// it from (400,100).
const (
	boxCenterX = 250.0
	boxCenterY = 250.0
	boxSize    = 100.0
	anchorX    = 400.0
	anchorY    = 100.0
)

func NewRegistry() *Registry {
	r := &Registry{scenes: make(map[string]SceneFunc)}

	r.Register("box", func(cfg *config.Config) (*sim.World, error) {
		return singleBox(cfg)
	})
	r.Register("pulse", func(cfg *config.Config) (*sim.World, error) {
		return singleBox(cfg, physics.Oscillating(cfg.Oscillation.Amplitude, cfg.Oscillation.Period))
	})
	r.Register("rigid", func(cfg *config.Config) (*sim.World, error) {
		return singleBox(cfg, physics.Rigid())
	})
	r.Register("anchored", anchoredScene)
	r.Register("flat", flatScene)

	return r
}

// Register adds or replaces a scene.
func (r *Registry) Register(name string, fn SceneFunc) {
	r.scenes[name] = fn
}

func (r *Registry) Build(cfg *config.Config) (*sim.World, error) {
	fn, ok := r.scenes[cfg.Scene]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", cfg.Scene)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", cfg.Scene, err)
	}
	w, err := fn(cfg)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", cfg.Scene, err)
	}
	return w, nil
}

func (r *Registry) ListScenes() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewKineticEnergy(),
		metrics.NewConstraintError(),
		metrics.NewShear(),
	}
}

func singleBox(cfg *config.Config, opts ...physics.BoxOption) (*sim.World, error) {
	w, err := sim.NewWorld(cfg.Params())
	if err != nil {
		return nil, err
	}
	b, err := physics.NewBoxAt(boxCenterX, boxCenterY, boxSize, boxSize, cfg.Mass, opts...)
	if err != nil {
		return nil, err
	}
	setRadius(cfg, b.Points()...)
	w.AddBox(b)
	return w, nil
}

func anchoredScene(cfg *config.Config) (*sim.World, error) {
	w, err := singleBox(cfg)
	if err != nil {
		return nil, err
	}
	anchor, err := physics.NewPointMass(anchorX, anchorY, cfg.Mass, true)
	if err != nil {
		return nil, err
	}
	setRadius(cfg, anchor)

	c := w.Boxes()[0].Corner(physics.CornerC)
	rope, err := physics.NewStickBetween(anchor, c, physics.WithHarmonic(cfg.Harmonic.Amplitude, cfg.Harmonic.Period))
	if err != nil {
		return nil, err
	}
	w.AddPoint(anchor)
	w.AddStick(rope)
	return w, nil
}

// flatScene wires the same five points as anchored but as loose sticks,
// so the square has no box semantics: no pulse, no snap, no drag.
func flatScene(cfg *config.Config) (*sim.World, error) {
	w, err := sim.NewWorld(cfg.Params())
	if err != nil {
		return nil, err
	}

	coords := [5][2]float64{
		{boxCenterX - boxSize/2, boxCenterY - boxSize/2},
		{boxCenterX + boxSize/2, boxCenterY - boxSize/2},
		{boxCenterX + boxSize/2, boxCenterY + boxSize/2},
		{boxCenterX - boxSize/2, boxCenterY + boxSize/2},
		{anchorX, anchorY},
	}
	pts := make([]*physics.PointMass, len(coords))
	for i, c := range coords {
		p, err := physics.NewPointMass(c[0], c[1], cfg.Mass, i == 4)
		if err != nil {
			return nil, err
		}
		setRadius(cfg, p)
		pts[i] = p
		w.AddPoint(p)
	}

	links := [6][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 2}, {4, 2}}
	for i, l := range links {
		var opts []physics.StickOption
		if i == len(links)-1 {
			opts = append(opts, physics.WithHarmonic(cfg.Harmonic.Amplitude, cfg.Harmonic.Period))
		}
		s, err := physics.NewStickBetween(pts[l[0]], pts[l[1]], opts...)
		if err != nil {
			return nil, err
		}
		w.AddStick(s)
	}
	return w, nil
}

func setRadius(cfg *config.Config, pts ...*physics.PointMass) {
	for _, p := range pts {
		p.Radius = cfg.PointRadius
	}
}
