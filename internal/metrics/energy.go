package metrics

import "github.com/san-kum/stickbox/internal/sim"

// KineticEnergy averages the total kinetic energy over observed frames,
// with each velocity recovered from the Verlet pair as (Pos-Prev)/dt.
type KineticEnergy struct {
	name    string
	total   float64
	last    float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(w *sim.World, dt float64) {
	if dt <= 0 {
		return
	}
	k.last = Kinetic(w, dt)
	k.total += k.last
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

// Last is the energy of the most recent frame.
func (k *KineticEnergy) Last() float64 { return k.last }

func (k *KineticEnergy) Reset() {
	k.total = 0
	k.last = 0
	k.samples = 0
}

// Kinetic returns the instantaneous sum of ½·m·|v|² over every point.
func Kinetic(w *sim.World, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	e := 0.0
	for _, p := range w.Points() {
		v := p.Velocity().Mul(1 / dt)
		e += 0.5 * p.Mass * v.Dot(v)
	}
	return e
}
