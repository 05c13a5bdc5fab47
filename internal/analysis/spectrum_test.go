package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/stickbox/internal/sim"
)

func sine(freq, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 3 + 2*math.Sin(2*math.Pi*freq*float64(i)*dt)
	}
	return out
}

func TestPowerSpectrum_Dominant(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		dt   float64
		n    int
	}{
		{"power of two", 4, 1.0 / 64, 256},
		{"not a power of two", 5, 1.0 / 100, 200},
		{"frame rate", 1.5, 1.0 / 60, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := PowerSpectrum(sine(tt.freq, tt.dt, tt.n), tt.dt)
			if err != nil {
				t.Fatal(err)
			}
			if len(s.Freqs) != tt.n/2 {
				t.Errorf("bins = %d, want %d", len(s.Freqs), tt.n/2)
			}
			freq, power := s.Dominant()
			if math.Abs(freq-tt.freq) > 1e-9 {
				t.Errorf("Dominant() freq = %v, want %v", freq, tt.freq)
			}
			if power <= 0 {
				t.Error("expected positive power")
			}
			if s.Power[0] > 1e-6 {
				t.Errorf("DC bin = %v, want ~0 after mean removal", s.Power[0])
			}
		})
	}
}

func TestPowerSpectrum_Errors(t *testing.T) {
	if _, err := PowerSpectrum([]float64{1}, 0.1); err == nil {
		t.Error("expected error for a single sample")
	}
	if _, err := PowerSpectrum([]float64{1, 2, 3}, 0); err == nil {
		t.Error("expected error for zero dt")
	}
}

func TestDominant_Flat(t *testing.T) {
	s, err := PowerSpectrum([]float64{2, 2, 2, 2}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if freq, power := s.Dominant(); freq != 0 || power != 0 {
		t.Errorf("Dominant() of a constant = %v, %v, want 0, 0", freq, power)
	}
}

func TestSeries(t *testing.T) {
	states := []sim.State{
		{0, 0, 3, 4},
		{1, 1, 1, 1},
	}

	ys, err := PointSeries(states, 1, AxisY)
	if err != nil {
		t.Fatal(err)
	}
	if ys[0] != 4 || ys[1] != 1 {
		t.Errorf("PointSeries() = %v, want [4 1]", ys)
	}

	d, err := BoxWidthSeries(states)
	if err != nil {
		t.Fatal(err)
	}
	if d[0] != 5 || d[1] != 0 {
		t.Errorf("BoxWidthSeries() = %v, want [5 0]", d)
	}

	if _, err := PointSeries(states, 2, AxisX); err == nil {
		t.Error("expected range error")
	}
	if _, err := DistanceSeries(states, 0, 5); err == nil {
		t.Error("expected range error")
	}
}

func TestParseAxis(t *testing.T) {
	if a, err := ParseAxis("y"); err != nil || a != AxisY {
		t.Errorf("ParseAxis(y) = %v, %v", a, err)
	}
	if _, err := ParseAxis("z"); err == nil {
		t.Error("expected error for unknown axis")
	}
}
