package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Corner names a box vertex. Corners run clockwise from the top left.
type Corner int

const (
	CornerA Corner = iota // top left
	CornerB               // top right
	CornerC               // bottom right
	CornerD               // bottom left
)

func (c Corner) String() string {
	switch c {
	case CornerA:
		return "A"
	case CornerB:
		return "B"
	case CornerC:
		return "C"
	case CornerD:
		return "D"
	}
	return fmt.Sprintf("Corner(%d)", int(c))
}

// Side is the vertical edge a corner belongs to. Dragging moves a whole side.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (c Corner) Side() Side {
	if c == CornerB || c == CornerC {
		return SideRight
	}
	return SideLeft
}

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// Corners returns the two corners on the side, top first.
func (s Side) Corners() [2]Corner {
	if s == SideRight {
		return [2]Corner{CornerB, CornerC}
	}
	return [2]Corner{CornerA, CornerD}
}

// stick slots inside a box
const (
	edgeAB = iota
	edgeBC
	edgeCD
	edgeDA
	braceAC
)

// Box is a quad of four points held by four edge sticks and one diagonal
// brace. Oscillating boxes pulse their width; rigid boxes are snapped back
// to an axis-aligned rectangle after every relaxation pass.
type Box struct {
	points [4]*PointMass
	sticks [5]*Stick

	Oscillating  bool
	Rigid        bool
	OscAmplitude float64
	OscPeriod    float64

	width0, height0, diagonal0 float64
	pulseOffset                float64

	dragging bool
	grabbed  Corner
	lastX    float64
}

type BoxOption func(*Box)

// Oscillating pulses the box width by amplitude*sin(phase/period)^2.
func Oscillating(amplitude, period float64) BoxOption {
	return func(b *Box) {
		b.Oscillating = true
		b.OscAmplitude = amplitude
		b.OscPeriod = period
	}
}

// Rigid enables MaintainRightAngles after every relaxation pass.
func Rigid() BoxOption {
	return func(b *Box) { b.Rigid = true }
}

// NewBox joins four corners given clockwise from the top left. Rest
// lengths are taken from the initial geometry.
func NewBox(a, b, c, d *PointMass, opts ...BoxOption) (*Box, error) {
	box := &Box{
		points:       [4]*PointMass{a, b, c, d},
		OscAmplitude: OscillationAmplitude,
		OscPeriod:    OscillationPeriod,
	}
	for i, p := range box.points {
		if p == nil {
			return nil, fmt.Errorf("box corner %s: %w", Corner(i), ErrNilEndpoint)
		}
	}

	pairs := [5][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 2}}
	for i, pair := range pairs {
		var stickOpts []StickOption
		if i == braceAC {
			stickOpts = append(stickOpts, AsDiagonal())
		}
		s, err := NewStickBetween(box.points[pair[0]], box.points[pair[1]], stickOpts...)
		if err != nil {
			return nil, fmt.Errorf("box stick %d: %w", i, err)
		}
		box.sticks[i] = s
	}

	for _, opt := range opts {
		opt(box)
	}
	if box.Oscillating && (box.OscPeriod <= 0 || !finite(box.OscPeriod) || !finite(box.OscAmplitude)) {
		return nil, fmt.Errorf("box oscillation period %v amplitude %v: %w", box.OscPeriod, box.OscAmplitude, ErrInvalidParams)
	}

	box.width0 = Distance(a, b)
	box.height0 = Distance(b, c)
	box.diagonal0 = Distance(a, c)
	return box, nil
}

// NewBoxAt builds an axis-aligned box of free points centred on (cx, cy).
func NewBoxAt(cx, cy, w, h, mass float64, opts ...BoxOption) (*Box, error) {
	if !finite(w) || !finite(h) || w < 0 || h < 0 {
		return nil, fmt.Errorf("box size %vx%v: %w", w, h, ErrNegativeRestLength)
	}
	corners := [4][2]float64{
		{cx - w/2, cy - h/2},
		{cx + w/2, cy - h/2},
		{cx + w/2, cy + h/2},
		{cx - w/2, cy + h/2},
	}
	var pts [4]*PointMass
	for i, c := range corners {
		p, err := NewPointMass(c[0], c[1], mass, false)
		if err != nil {
			return nil, err
		}
		pts[i] = p
	}
	return NewBox(pts[0], pts[1], pts[2], pts[3], opts...)
}

func (b *Box) Points() []*PointMass { return b.points[:] }
func (b *Box) Sticks() []*Stick     { return b.sticks[:] }

func (b *Box) Corner(c Corner) *PointMass { return b.points[c] }

// Diagonal returns the brace stick.
func (b *Box) Diagonal() *Stick { return b.sticks[braceAC] }

// Width is the enforced width: the mean rest length of the horizontal edges.
func (b *Box) Width() float64 {
	return (b.sticks[edgeAB].RestLength + b.sticks[edgeCD].RestLength) / 2
}

// Height is the mean rest length of the vertical edges.
func (b *Box) Height() float64 {
	return (b.sticks[edgeBC].RestLength + b.sticks[edgeDA].RestLength) / 2
}

// InitialSize returns the width, height and diagonal at construction (or
// as last resized by a drag).
func (b *Box) InitialSize() (w, h, diag float64) {
	return b.width0, b.height0, b.diagonal0
}

func (b *Box) Centroid() mgl64.Vec2 {
	var c mgl64.Vec2
	for _, p := range b.points {
		c = c.Add(p.Pos)
	}
	return c.Mul(0.25)
}

// Step advances the box one frame.
//
// Rigid boxes integrate once, then alternate relaxation and the rectangle
// snap for every iteration, then clamp. Other boxes relax first, then
// integrate and clamp.
func (b *Box) Step(dt float64, p Params) {
	if b.Oscillating {
		b.pulse()
	}

	n := iterations(p)
	if b.Rigid {
		b.integrate(dt, p)
		for i := 0; i < n; i++ {
			b.relax(dt)
			b.MaintainRightAngles()
		}
	} else {
		for i := 0; i < n; i++ {
			b.relax(dt)
		}
		b.integrate(dt, p)
	}

	for _, pt := range b.points {
		pt.ClampToBounds(p.Bounds, p.Restitution)
	}
}

// pulse rewrites the edge rest lengths from the phase of the top edge and
// keeps the brace consistent with the new rectangle.
func (b *Box) pulse() {
	s := math.Sin(float64(b.sticks[edgeAB].Phase()) / b.OscPeriod)
	b.pulseOffset = s * s * b.OscAmplitude
	w := b.width0 + b.pulseOffset
	h := b.height0

	b.sticks[edgeAB].RestLength = w
	b.sticks[edgeCD].RestLength = w
	b.sticks[edgeBC].RestLength = h
	b.sticks[edgeDA].RestLength = h
	b.sticks[braceAC].RestLength = math.Hypot(w, h)
}

func (b *Box) relax(dt float64) {
	for _, s := range b.sticks {
		s.Relax(dt)
	}
}

func (b *Box) integrate(dt float64, p Params) {
	for _, pt := range b.points {
		pt.Integrate(dt, p)
	}
}

// MaintainRightAngles snaps the free corners onto the axis-aligned
// rectangle of the enforced width and height around the current centroid,
// then resets the brace to the exact diagonal. This is a hard overwrite;
// previous positions are left alone so the snap shows up as velocity.
func (b *Box) MaintainRightAngles() {
	w, h := b.Width(), b.Height()
	c := b.Centroid()
	left, right := c[0]-w/2, c[0]+w/2
	top, bottom := c[1]-h/2, c[1]+h/2

	targets := [4]mgl64.Vec2{
		{left, top},
		{right, top},
		{right, bottom},
		{left, bottom},
	}
	for i, p := range b.points {
		if !p.Pinned {
			p.Pos = targets[i]
		}
	}
	b.sticks[braceAC].RestLength = math.Hypot(w, h)
}

// OnPointerDown grabs the first corner under the pointer. It returns true
// when the event was claimed.
func (b *Box) OnPointerDown(px, py float64) bool {
	for i, p := range b.points {
		if p.IsUnderPoint(px, py) {
			b.dragging = true
			b.grabbed = Corner(i)
			b.lastX = px
			return true
		}
	}
	return false
}

// OnPointerMove slides the grabbed side horizontally by the pointer delta
// and resizes the box to match. All velocities are cleared so the jump
// does not fling the box. A move without horizontal travel leaves the rest
// lengths alone. The base width of an oscillating box excludes the current
// pulse.
func (b *Box) OnPointerMove(px float64) {
	if !b.dragging {
		return
	}
	dx := px - b.lastX
	if dx != 0 {
		for _, c := range b.grabbed.Side().Corners() {
			if p := b.points[c]; !p.Pinned {
				p.Pos[0] += dx
			}
		}
	}
	for _, p := range b.points {
		if !p.Pinned {
			p.Prev = p.Pos
		}
	}
	b.lastX = px
	if dx == 0 {
		return
	}

	b.sticks[edgeAB].RestLength = b.sticks[edgeAB].Length()
	b.sticks[edgeCD].RestLength = b.sticks[edgeCD].Length()
	b.width0 = math.Max(b.Width()-b.pulseOffset, 0)
}

func (b *Box) OnPointerUp() {
	b.dragging = false
	b.grabbed = CornerA
}

// Dragging reports the grabbed corner, if any.
func (b *Box) Dragging() (Corner, bool) {
	return b.grabbed, b.dragging
}

func iterations(p Params) int {
	if p.Iterations < 1 {
		return 1
	}
	return p.Iterations
}
