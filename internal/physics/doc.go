// Package physics implements position-based (Verlet) point-and-stick
// dynamics:
//
//   - [PointMass]: a particle whose velocity is Pos - Prev
//   - [Stick]: a distance constraint relaxed a little on every pass
//   - [Box]: four points, four edges and one diagonal brace, with optional
//     width pulsing and a hard rectangle snap
//
// Tunables travel in an immutable [Params] value rather than package
// state, so tests can inject deterministic values and several worlds can
// run with different settings.
//
// # Pinned points
//
// A pinned point is never moved by integration, relaxation, clamping, the
// rectangle snap or dragging. Sticks attached to a pinned point correct
// only their free end, by half the error per pass.
//
// # Example
//
//	box, _ := physics.NewBoxAt(250, 250, 100, 100, 1, physics.Rigid())
//	params := physics.DefaultParams()
//	for i := 0; i < 60; i++ {
//		box.Step(1.0/60, params)
//	}
package physics
