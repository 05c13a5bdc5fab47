package sim

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// State is a flat position snapshot: x0, y0, x1, y1, ...
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Point returns the i-th position stored in the snapshot.
func (s State) Point(i int) mgl64.Vec2 {
	return mgl64.Vec2{s[2*i], s[2*i+1]}
}

func (s State) NumPoints() int { return len(s) / 2 }

type PrimitiveKind int

const (
	Segment PrimitiveKind = iota
	Disc
)

// Primitive is one draw call handed to a renderer. Segments use A and B;
// discs use A as centre and Radius.
type Primitive struct {
	Kind   PrimitiveKind
	A, B   mgl64.Vec2
	Radius float64
}

type Metric interface {
	Name() string
	Observe(w *World, dt float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(w *World, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      10.0,
		ValidateState: true,
	}
}

type Result struct {
	States  []State
	Times   []float64
	Metrics map[string]float64
	Frames  int
	Errors  []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return ErrInvalidState }
