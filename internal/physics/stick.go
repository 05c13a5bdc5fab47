package physics

import (
	"fmt"
	"math"
)

// Stick is a distance constraint between two shared points.
type Stick struct {
	A, B       *PointMass
	RestLength float64
	Harmonic   bool
	Diagonal   bool
	Amplitude  float64 // harmonic swing added to RestLength
	Period     float64 // relax calls per radian of harmonic phase
	phase      int
}

type StickOption func(*Stick)

// WithHarmonic makes the effective rest length swing by
// amplitude*sin(phase/period) around RestLength.
func WithHarmonic(amplitude, period float64) StickOption {
	return func(s *Stick) {
		s.Harmonic = true
		s.Amplitude = amplitude
		s.Period = period
	}
}

// AsDiagonal tags the stick as a brace. Only owners read the tag.
func AsDiagonal() StickOption {
	return func(s *Stick) { s.Diagonal = true }
}

func NewStick(a, b *PointMass, rest float64, opts ...StickOption) (*Stick, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("stick: %w", ErrNilEndpoint)
	}
	if !finite(rest) || rest < 0 {
		return nil, fmt.Errorf("stick rest length %v: %w", rest, ErrNegativeRestLength)
	}
	s := &Stick{
		A:          a,
		B:          b,
		RestLength: rest,
		Amplitude:  HarmonicAmplitude,
		Period:     HarmonicPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Harmonic && (s.Period <= 0 || !finite(s.Period) || !finite(s.Amplitude)) {
		return nil, fmt.Errorf("stick harmonic period %v amplitude %v: %w", s.Period, s.Amplitude, ErrInvalidParams)
	}
	return s, nil
}

// NewStickBetween uses the current separation of a and b as rest length.
func NewStickBetween(a, b *PointMass, opts ...StickOption) (*Stick, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("stick: %w", ErrNilEndpoint)
	}
	return NewStick(a, b, Distance(a, b), opts...)
}

// Phase is the number of Relax calls made so far.
func (s *Stick) Phase() int { return s.phase }

// Length is the current separation of the endpoints.
func (s *Stick) Length() float64 { return Distance(s.A, s.B) }

// EffectiveLength is the target separation for the next Relax call. A
// harmonic swing larger than RestLength bottoms out at zero.
func (s *Stick) EffectiveLength() float64 {
	if !s.Harmonic {
		return s.RestLength
	}
	return math.Max(s.RestLength+math.Sin(float64(s.phase)/s.Period)*s.Amplitude, 0)
}

// Relax moves both free endpoints half of the way toward the target
// separation. A pinned endpoint stays put and its half is not handed to
// the other side, so such sticks converge over several passes.
func (s *Stick) Relax(_ float64) {
	length := s.EffectiveLength()
	s.phase++

	delta := s.B.Pos.Sub(s.A.Pos)
	dist := delta.Len()
	if dist < Epsilon {
		return
	}

	percent := (length - dist) / dist / 2
	offset := delta.Mul(percent)

	if !s.A.Pinned {
		s.A.Pos = s.A.Pos.Sub(offset)
	}
	if !s.B.Pinned {
		s.B.Pos = s.B.Pos.Add(offset)
	}
}
