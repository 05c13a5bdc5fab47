// Package analysis finds periodic structure in recorded runs.
package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/stickbox/internal/physics"
	"github.com/san-kum/stickbox/internal/sim"
)

// Spectrum is the one-sided amplitude spectrum of a uniformly sampled
// signal. Bin k sits at k/(n*dt) Hz.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum removes the mean from samples and transforms them. Any
// length works; the transform is not restricted to powers of two.
func PowerSpectrum(samples []float64, dt float64) (Spectrum, error) {
	n := len(samples)
	if n < 2 {
		return Spectrum{}, fmt.Errorf("need at least 2 samples, got %d", n)
	}
	if !(dt > 0) {
		return Spectrum{}, fmt.Errorf("sample interval must be positive, got %v", dt)
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	centred := make([]float64, n)
	for i, v := range samples {
		centred[i] = v - mean
	}

	coeffs := fft.FFTReal(centred)
	bins := n / 2
	s := Spectrum{
		Freqs: make([]float64, bins),
		Power: make([]float64, bins),
	}
	for k := 0; k < bins; k++ {
		s.Freqs[k] = float64(k) / (float64(n) * dt)
		s.Power[k] = cmplx.Abs(coeffs[k])
	}
	return s, nil
}

// Dominant returns the strongest bin above DC.
func (s Spectrum) Dominant() (freq, power float64) {
	for k := 1; k < len(s.Power); k++ {
		if s.Power[k] > power {
			freq, power = s.Freqs[k], s.Power[k]
		}
	}
	return freq, power
}

// Axis selects a coordinate of a recorded point.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	}
	return 0, fmt.Errorf("unknown axis: %s", s)
}

// PointSeries extracts one coordinate of point i from every state.
func PointSeries(states []sim.State, i int, axis Axis) ([]float64, error) {
	out := make([]float64, len(states))
	for j, s := range states {
		if i < 0 || i >= s.NumPoints() {
			return nil, fmt.Errorf("point %d out of range (state %d has %d points)", i, j, s.NumPoints())
		}
		out[j] = s.Point(i)[axis]
	}
	return out, nil
}

// DistanceSeries tracks the separation of points i and j, for example a
// box edge.
func DistanceSeries(states []sim.State, i, j int) ([]float64, error) {
	out := make([]float64, len(states))
	for k, s := range states {
		n := s.NumPoints()
		if i < 0 || j < 0 || i >= n || j >= n {
			return nil, fmt.Errorf("points %d,%d out of range (state %d has %d points)", i, j, k, n)
		}
		out[k] = s.Point(i).Sub(s.Point(j)).Len()
	}
	return out, nil
}

// BoxWidthSeries is the top-edge length of the first box, whose corners
// lead every snapshot.
func BoxWidthSeries(states []sim.State) ([]float64, error) {
	return DistanceSeries(states, int(physics.CornerA), int(physics.CornerB))
}
