package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// PointMass is a Verlet particle. Velocity is not stored; it is the
// difference between Pos and Prev.
type PointMass struct {
	Pos    mgl64.Vec2
	Prev   mgl64.Vec2
	Mass   float64
	Pinned bool
	Radius float64 // hit-testing only
}

// NewPointMass creates a point at rest. Pinned points ignore mass.
func NewPointMass(x, y, mass float64, pinned bool) (*PointMass, error) {
	if !pinned && (!finite(mass) || mass <= 0) {
		return nil, fmt.Errorf("point at (%.2f, %.2f): %w", x, y, ErrInvalidMass)
	}
	if !finite(x) || !finite(y) {
		return nil, fmt.Errorf("point at (%v, %v): position must be finite: %w", x, y, ErrInvalidParams)
	}
	return &PointMass{
		Pos:    mgl64.Vec2{x, y},
		Prev:   mgl64.Vec2{x, y},
		Mass:   mass,
		Pinned: pinned,
		Radius: DefaultPointRadius,
	}, nil
}

func (p *PointMass) X() float64 { return p.Pos[0] }
func (p *PointMass) Y() float64 { return p.Pos[1] }

// Velocity returns the per-frame displacement Pos - Prev.
func (p *PointMass) Velocity() mgl64.Vec2 {
	return p.Pos.Sub(p.Prev)
}

// SetPosition teleports the point and drops its velocity.
func (p *PointMass) SetPosition(x, y float64) {
	p.Pos = mgl64.Vec2{x, y}
	p.Prev = p.Pos
}

// Integrate advances the point one Verlet step under the global force.
func (p *PointMass) Integrate(dt float64, params Params) {
	if p.Pinned {
		return
	}
	vel := p.Pos.Sub(p.Prev).Mul(params.Damping)
	p.Prev = p.Pos
	acc := params.Gravity.Mul(1 / p.Mass)
	p.Pos = p.Pos.Add(vel).Add(acc.Mul(dt * dt))
}

// ClampToBounds keeps the point inside b. A clamped axis gets its previous
// position rewritten so the next integration moves it back inwards, scaled
// by restitution.
func (p *PointMass) ClampToBounds(b Bounds, restitution float64) {
	if p.Pinned {
		return
	}
	vel := p.Velocity()
	lo := [2]float64{b.MinX, b.MinY}
	hi := [2]float64{b.MaxX, b.MaxY}
	for axis := 0; axis < 2; axis++ {
		switch {
		case p.Pos[axis] < lo[axis]:
			p.Pos[axis] = lo[axis]
			p.Prev[axis] = p.Pos[axis] + vel[axis]*restitution
		case p.Pos[axis] > hi[axis]:
			p.Pos[axis] = hi[axis]
			p.Prev[axis] = p.Pos[axis] + vel[axis]*restitution
		}
	}
}

// IsUnderPoint reports whether (px, py) lies strictly inside the hit radius.
func (p *PointMass) IsUnderPoint(px, py float64) bool {
	return p.Pos.Sub(mgl64.Vec2{px, py}).Len() < p.Radius
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b *PointMass) float64 {
	return b.Pos.Sub(a.Pos).Len()
}
