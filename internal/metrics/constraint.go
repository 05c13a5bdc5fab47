package metrics

import (
	"math"

	"github.com/san-kum/stickbox/internal/physics"
	"github.com/san-kum/stickbox/internal/sim"
)

// ConstraintError tracks the worst relative stick stretch seen so far.
// Sticks are measured against their current target length, so harmonic
// and pulsing sticks are not penalised for swinging.
type ConstraintError struct {
	name  string
	worst float64
}

func NewConstraintError() *ConstraintError {
	return &ConstraintError{name: "constraint_error"}
}

func (c *ConstraintError) Name() string { return c.name }

func (c *ConstraintError) Observe(w *sim.World, _ float64) {
	for _, s := range w.Sticks() {
		target := s.EffectiveLength()
		if target < physics.Epsilon {
			continue
		}
		if e := math.Abs(s.Length()-target) / target; e > c.worst {
			c.worst = e
		}
	}
}

func (c *ConstraintError) Value() float64 { return c.worst }
func (c *ConstraintError) Reset()         { c.worst = 0 }

// Shear tracks how far boxes drift from rectangles: the largest
// difference between the two diagonals relative to the brace length.
type Shear struct {
	name  string
	worst float64
}

func NewShear() *Shear {
	return &Shear{name: "shear"}
}

func (s *Shear) Name() string { return s.name }

func (s *Shear) Observe(w *sim.World, _ float64) {
	for _, b := range w.Boxes() {
		if v := BoxShear(b); v > s.worst {
			s.worst = v
		}
	}
}

func (s *Shear) Value() float64 { return s.worst }
func (s *Shear) Reset()         { s.worst = 0 }

// BoxShear is ||AC|-|BD|| / rest(AC), or 0 for a collapsed brace.
func BoxShear(b *physics.Box) float64 {
	rest := b.Diagonal().RestLength
	if rest < physics.Epsilon {
		return 0
	}
	ac := physics.Distance(b.Corner(physics.CornerA), b.Corner(physics.CornerC))
	bd := physics.Distance(b.Corner(physics.CornerB), b.Corner(physics.CornerD))
	return math.Abs(ac-bd) / rest
}
