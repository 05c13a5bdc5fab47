package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultGravityY      = 980.0
	DefaultDamping       = 1.0
	DefaultRestitution   = 0.2
	DefaultWidth         = 800.0
	DefaultHeight        = 600.0
	DefaultMaxDt         = 0.05
	DefaultPointRadius   = 10.0
	HarmonicAmplitude    = 20.0
	HarmonicPeriod       = 200.0 // relax calls per radian
	OscillationAmplitude = 20.0
	OscillationPeriod    = 20.0 // relax calls per radian

	// RelaxationIterations is the fixed number of constraint passes per frame.
	RelaxationIterations = 10

	// Epsilon is the separation below which a stick skips its correction.
	Epsilon = 1e-9
)

// Bounds is the axis-aligned region points are clamped to.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Viewport returns bounds spanning [0,w]x[0,h].
func Viewport(w, h float64) Bounds {
	return Bounds{MaxX: w, MaxY: h}
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Params carries the global tunables. It is passed by value into every
// integration and clamping call, so several worlds can run side by side
// with different tuning.
type Params struct {
	Gravity     mgl64.Vec2 // force applied to every free point
	Damping     float64    // velocity multiplier per integration, 1 = undamped
	Restitution float64    // 0 absorbs the hit, 1 bounces perfectly
	Bounds      Bounds
	Iterations  int     // relaxation passes per frame
	MaxDt       float64 // larger frame times are clamped to this
}

func DefaultParams() Params {
	return Params{
		Gravity:     mgl64.Vec2{0, DefaultGravityY},
		Damping:     DefaultDamping,
		Restitution: DefaultRestitution,
		Bounds:      Viewport(DefaultWidth, DefaultHeight),
		Iterations:  RelaxationIterations,
		MaxDt:       DefaultMaxDt,
	}
}

func (p Params) Validate() error {
	if !finite(p.Gravity[0]) || !finite(p.Gravity[1]) {
		return fmt.Errorf("%w: gravity must be finite, got %v", ErrInvalidParams, p.Gravity)
	}
	if !finite(p.Damping) || p.Damping < 0 || p.Damping > 1 {
		return fmt.Errorf("%w: damping must be in [0,1], got %f", ErrInvalidParams, p.Damping)
	}
	if !finite(p.Restitution) || p.Restitution < 0 || p.Restitution > 1 {
		return fmt.Errorf("%w: restitution must be in [0,1], got %f", ErrInvalidParams, p.Restitution)
	}
	if !(p.Bounds.Width() > 0) || !(p.Bounds.Height() > 0) {
		return fmt.Errorf("%w: viewport must have positive size, got %.1fx%.1f", ErrInvalidParams, p.Bounds.Width(), p.Bounds.Height())
	}
	if p.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", ErrInvalidParams, p.Iterations)
	}
	if math.IsNaN(p.MaxDt) || p.MaxDt < 0 {
		return fmt.Errorf("%w: max dt must not be negative, got %f", ErrInvalidParams, p.MaxDt)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
