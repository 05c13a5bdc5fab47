package sim

import (
	"context"
	"fmt"
	"math"
)

// Simulator runs a World headless for a fixed duration, feeding metrics
// and observers after every frame.
type Simulator struct {
	world     *World
	metrics   []Metric
	observers []Observer
}

func New(w *World) *Simulator {
	return &Simulator{
		world:     w,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) World() *World          { return s.world }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		States:  make([]State, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	w := s.world
	result.States = append(result.States, w.Snapshot())
	result.Times = append(result.Times, w.Time())

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		dt := w.Step(cfg.Dt)
		x := w.Snapshot()

		if cfg.ValidateState && !x.IsValid() {
			runErr = SimError{Time: w.Time(), Step: i, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, runErr)
			break
		}

		for _, m := range s.metrics {
			m.Observe(w, dt)
		}
		for _, obs := range s.observers {
			obs.OnStep(w, w.Time())
		}

		result.Frames++
		result.States = append(result.States, x)
		result.Times = append(result.Times, w.Time())
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, runErr
}

// RunWithCallback steps until the duration elapses or callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(*World) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	w := s.world
	end := w.Time() + cfg.Duration
	for w.Time() < end {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(w) {
			return nil
		}

		w.Step(cfg.Dt)

		if cfg.ValidateState && !w.Snapshot().IsValid() {
			return fmt.Errorf("t=%.4f: %w", w.Time(), ErrInvalidState)
		}
	}

	return nil
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	return nil
}
