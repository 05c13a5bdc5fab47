package physics_test

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/stickbox/internal/physics"
)

const frame = 1.0 / 60

func corners(box *physics.Box) (a, b, c, d *physics.PointMass) {
	return box.Corner(physics.CornerA), box.Corner(physics.CornerB),
		box.Corner(physics.CornerC), box.Corner(physics.CornerD)
}

func newSquare(opts ...physics.BoxOption) *physics.Box {
	box, err := physics.NewBoxAt(250, 250, 100, 100, 1, opts...)
	Expect(err).NotTo(HaveOccurred())
	return box
}

var _ = Describe("Box", func() {
	var params physics.Params

	BeforeEach(func() {
		params = physics.DefaultParams()
		params.Gravity = mgl64.Vec2{0, 980}
		params.Damping = 1
		params.Iterations = physics.RelaxationIterations
	})

	Describe("construction", func() {
		It("takes rest lengths from the initial geometry", func() {
			box := newSquare()
			sticks := box.Sticks()
			Expect(sticks).To(HaveLen(5))
			for _, s := range sticks[:4] {
				Expect(s.RestLength).To(BeNumerically("~", 100, 1e-12))
				Expect(s.Diagonal).To(BeFalse())
			}
			Expect(sticks[4].Diagonal).To(BeTrue())
			Expect(sticks[4].RestLength).To(BeNumerically("~", math.Sqrt(20000), 1e-9))

			w, h, diag := box.InitialSize()
			Expect(w).To(BeNumerically("~", 100, 1e-12))
			Expect(h).To(BeNumerically("~", 100, 1e-12))
			Expect(diag).To(BeNumerically("~", math.Sqrt(20000), 1e-9))
		})

		It("rejects a nil corner", func() {
			p, _ := physics.NewPointMass(0, 0, 1, false)
			_, err := physics.NewBox(p, p, nil, p)
			Expect(err).To(MatchError(physics.ErrNilEndpoint))
		})

		It("rejects a negative size", func() {
			_, err := physics.NewBoxAt(0, 0, -1, 10, 1)
			Expect(err).To(MatchError(physics.ErrNegativeRestLength))
		})

		It("rejects a non-positive mass", func() {
			_, err := physics.NewBoxAt(0, 0, 10, 10, 0)
			Expect(err).To(MatchError(physics.ErrInvalidMass))
		})
	})

	Describe("one frame from rest", func() {
		for _, rigid := range []bool{false, true} {
			rigid := rigid
			It(fmt.Sprintf("drops every corner by g*dt^2 and keeps the edges at rest length (rigid=%v)", rigid), func() {
				var opts []physics.BoxOption
				if rigid {
					opts = append(opts, physics.Rigid())
				}
				box := newSquare(opts...)
				start := make([]mgl64.Vec2, 4)
				for i, p := range box.Points() {
					start[i] = p.Pos
				}

				box.Step(frame, params)

				drop := 980 * frame * frame
				for i, p := range box.Points() {
					Expect(p.X()).To(BeNumerically("~", start[i][0], 1e-9))
					Expect(p.Y()-start[i][1]).To(BeNumerically("~", drop, 1e-9))
				}
				for _, s := range box.Sticks() {
					Expect(s.Length()).To(BeNumerically("~", s.RestLength, 1e-9))
				}
			})
		}
	})

	Describe("rigid step order", func() {
		// A sheared box next to the right wall with B moving into it.
		shove := func(box *physics.Box) {
			a, b, _, d := corners(box)
			b.Prev = b.Pos.Sub(mgl64.Vec2{20, 0})
			a.Prev = a.Pos.Sub(mgl64.Vec2{0, 3})
			d.Pos[0] += 4
			d.Prev = d.Pos
		}

		BeforeEach(func() {
			params.Gravity = mgl64.Vec2{}
			params.Iterations = 3
		})

		newShoved := func() *physics.Box {
			box, err := physics.NewBoxAt(745, 250, 100, 100, 1, physics.Rigid())
			Expect(err).NotTo(HaveOccurred())
			shove(box)
			return box
		}

		It("integrates once, then relaxes and snaps every pass, then clamps", func() {
			box := newShoved()
			want := newShoved()

			box.Step(frame, params)

			for _, p := range want.Points() {
				p.Integrate(frame, params)
			}
			for i := 0; i < params.Iterations; i++ {
				for _, s := range want.Sticks() {
					s.Relax(frame)
				}
				want.MaintainRightAngles()
			}
			for _, p := range want.Points() {
				p.ClampToBounds(params.Bounds, params.Restitution)
			}

			for i, p := range box.Points() {
				Expect(p.Pos).To(Equal(want.Points()[i].Pos))
				Expect(p.Prev).To(Equal(want.Points()[i].Prev))
			}

			a, b, c, d := corners(box)
			Expect(a.Y()).To(Equal(b.Y()))
			Expect(c.Y()).To(Equal(d.Y()))
			Expect(a.X()).To(Equal(d.X()))
			Expect(b.X()).To(Equal(800.0))
			Expect(c.X()).To(Equal(800.0))
		})

		It("differs from the classic order on the same start", func() {
			box := newShoved()
			box.Step(frame, params)

			classic := newShoved()
			for i := 0; i < params.Iterations; i++ {
				for _, s := range classic.Sticks() {
					s.Relax(frame)
				}
			}
			for _, p := range classic.Points() {
				p.Integrate(frame, params)
				p.ClampToBounds(params.Bounds, params.Restitution)
			}

			ca, cb, _, _ := corners(classic)
			Expect(ca.Y()).NotTo(Equal(cb.Y()))
			Expect(box.Corner(physics.CornerA).Pos).NotTo(Equal(ca.Pos))
		})
	})

	Describe("MaintainRightAngles", func() {
		It("snaps a sheared quad onto an exact rectangle", func() {
			box := newSquare()
			a, b, c, d := corners(box)
			a.Pos = mgl64.Vec2{210, 190}
			b.Pos = mgl64.Vec2{305, 212}
			c.Pos = mgl64.Vec2{290, 310}
			d.Pos = mgl64.Vec2{195, 296}
			centroid := box.Centroid()

			box.MaintainRightAngles()

			Expect(a.Y()).To(Equal(b.Y()))
			Expect(c.Y()).To(Equal(d.Y()))
			Expect(b.X()).To(Equal(c.X()))
			Expect(a.X()).To(Equal(d.X()))
			Expect(box.Centroid()[0]).To(BeNumerically("~", centroid[0], 1e-9))
			Expect(box.Centroid()[1]).To(BeNumerically("~", centroid[1], 1e-9))

			w, h := box.Width(), box.Height()
			Expect(physics.Distance(a, c)).To(BeNumerically("~", math.Sqrt(w*w+h*h), 1e-9))
			Expect(box.Diagonal().RestLength).To(BeNumerically("~", math.Sqrt(w*w+h*h), 1e-9))
		})

		It("uses the mean rest length of opposite edges", func() {
			box := newSquare()
			box.Sticks()[0].RestLength = 120
			box.Sticks()[2].RestLength = 100
			box.MaintainRightAngles()

			a, b, _, _ := corners(box)
			Expect(b.X() - a.X()).To(BeNumerically("~", 110, 1e-9))
		})

		It("keeps the rectangle through a rigid step", func() {
			box := newSquare(physics.Rigid())
			a, b, c, d := corners(box)
			a.Pos[0] += 7
			c.Pos[1] -= 5

			for i := 0; i < 30; i++ {
				box.Step(frame, params)
			}

			Expect(a.Y()).To(Equal(b.Y()))
			Expect(b.X()).To(Equal(c.X()))
			Expect(c.Y()).To(Equal(d.Y()))
		})
	})

	Describe("pinned corners", func() {
		modes := []struct {
			name string
			opt  physics.BoxOption
		}{
			{"classic", func(*physics.Box) {}},
			{"rigid", physics.Rigid()},
			{"oscillating", physics.Oscillating(20, 20)},
		}
		for _, mode := range modes {
			opt := mode.opt
			It("never move while a "+mode.name+" box is stepped", func() {
				pts := make([]*physics.PointMass, 4)
				coords := [4][2]float64{{200, 200}, {300, 200}, {300, 300}, {200, 300}}
				for i, c := range coords {
					p, err := physics.NewPointMass(c[0], c[1], 1, i == 0)
					Expect(err).NotTo(HaveOccurred())
					pts[i] = p
				}
				box, err := physics.NewBox(pts[0], pts[1], pts[2], pts[3], opt)
				Expect(err).NotTo(HaveOccurred())

				for i := 0; i < 240; i++ {
					box.Step(frame, params)
				}

				Expect(pts[0].Pos).To(Equal(mgl64.Vec2{200, 200}))
				Expect(pts[0].Prev).To(Equal(mgl64.Vec2{200, 200}))
			})
		}
	})

	Describe("walls", func() {
		It("keeps a falling box inside the viewport", func() {
			params.Bounds = physics.Viewport(400, 400)
			box := newSquare()

			for i := 0; i < 600; i++ {
				box.Step(frame, params)
				for _, p := range box.Points() {
					Expect(p.Y()).To(BeNumerically("<=", 400))
					Expect(p.Y()).To(BeNumerically(">=", 0))
				}
			}
		})
	})

	Describe("oscillation", func() {
		It("pulses the width and keeps the brace consistent", func() {
			box := newSquare(physics.Oscillating(physics.OscillationAmplitude, physics.OscillationPeriod))
			sticks := box.Sticks()

			for i := 0; i < 90; i++ {
				box.Step(frame, params)

				w := sticks[0].RestLength
				Expect(w).To(BeNumerically(">=", 100-1e-9))
				Expect(w).To(BeNumerically("<=", 120+1e-9))
				Expect(sticks[2].RestLength).To(Equal(w))
				Expect(sticks[1].RestLength).To(BeNumerically("~", 100, 1e-12))
				Expect(sticks[4].RestLength).To(BeNumerically("~", math.Hypot(w, sticks[1].RestLength), 1e-9))
			}
		})
	})

	Describe("dragging", func() {
		var box *physics.Box

		BeforeEach(func() {
			var err error
			box, err = physics.NewBoxAt(250, 250, 100, 100, 1)
			Expect(err).NotTo(HaveOccurred())
		})

		It("ignores presses away from every corner", func() {
			Expect(box.OnPointerDown(250, 250)).To(BeFalse())
			_, dragging := box.Dragging()
			Expect(dragging).To(BeFalse())
		})

		It("ignores moves while idle", func() {
			a, _, _, _ := corners(box)
			box.OnPointerMove(500)
			Expect(a.X()).To(Equal(200.0))
		})

		It("moves the whole left side with the top-left corner", func() {
			Expect(box.OnPointerDown(202, 199)).To(BeTrue())
			corner, dragging := box.Dragging()
			Expect(dragging).To(BeTrue())
			Expect(corner).To(Equal(physics.CornerA))

			a, b, c, d := corners(box)
			ax, bx, cx, dx := a.X(), b.X(), c.X(), d.X()

			box.OnPointerMove(202 - 15)

			Expect(a.X()).To(Equal(ax - 15))
			Expect(d.X()).To(Equal(dx - 15))
			Expect(b.X()).To(Equal(bx))
			Expect(c.X()).To(Equal(cx))
			for _, p := range box.Points() {
				Expect(p.Prev).To(Equal(p.Pos))
			}
			Expect(box.Sticks()[0].RestLength).To(BeNumerically("~", 115, 1e-9))
			Expect(box.Sticks()[2].RestLength).To(BeNumerically("~", 115, 1e-9))
		})

		It("moves the right side when a right corner is grabbed", func() {
			Expect(box.OnPointerDown(300, 300)).To(BeTrue())
			corner, _ := box.Dragging()
			Expect(corner.Side()).To(Equal(physics.SideRight))

			a, b, c, _ := corners(box)
			box.OnPointerMove(310)
			box.OnPointerMove(330)

			Expect(b.X()).To(BeNumerically("~", 330, 1e-12))
			Expect(c.X()).To(BeNumerically("~", 330, 1e-12))
			Expect(a.X()).To(Equal(200.0))
		})

		It("keeps an oscillating box at its base width while the pointer holds still", func() {
			params.Gravity = mgl64.Vec2{}
			pulsing := newSquare(physics.Oscillating(20, 20))
			Expect(pulsing.OnPointerDown(300, 200)).To(BeTrue())

			for i := 0; i < 600; i++ {
				pulsing.Step(frame, params)
				pulsing.OnPointerMove(300)

				w, _, _ := pulsing.InitialSize()
				Expect(w).To(Equal(100.0))
				Expect(pulsing.Sticks()[0].RestLength).To(BeNumerically("<=", 120+1e-9))
			}
		})

		It("takes the pulse out of the base width when an oscillating box is dragged", func() {
			params.Gravity = mgl64.Vec2{}
			pulsing := newSquare(physics.Oscillating(20, 20))
			Expect(pulsing.OnPointerDown(300, 200)).To(BeTrue())
			for i := 0; i < 7; i++ {
				pulsing.Step(frame, params)
			}
			w0, _, _ := pulsing.InitialSize()
			offset := pulsing.Sticks()[0].RestLength - w0
			Expect(offset).To(BeNumerically(">", 0))

			pulsing.OnPointerMove(310)

			top, bottom := pulsing.Sticks()[0], pulsing.Sticks()[2]
			w, _, _ := pulsing.InitialSize()
			Expect(w).To(BeNumerically("~", (top.Length()+bottom.Length())/2-offset, 1e-9))

			pulsing.Step(frame, params)
			Expect(top.RestLength).To(BeNumerically("<=", w+20+1e-9))
		})

		It("returns to idle on release", func() {
			box.OnPointerDown(200, 200)
			box.OnPointerUp()
			_, dragging := box.Dragging()
			Expect(dragging).To(BeFalse())

			a, _, _, _ := corners(box)
			box.OnPointerMove(100)
			Expect(a.X()).To(Equal(200.0))
		})
	})
})
