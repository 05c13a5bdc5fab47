package sim

import (
	"fmt"
	"sort"

	"github.com/san-kum/stickbox/internal/physics"
)

// World owns the boxes plus any loose points and sticks, and steps them
// once per frame. Loose sticks may reference box corners; loose points
// must not belong to a box or they would be integrated twice.
type World struct {
	params physics.Params
	boxes  []*physics.Box
	points []*physics.PointMass
	sticks []*physics.Stick

	t      float64
	frames int
	active *physics.Box
}

func NewWorld(p physics.Params) (*World, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &World{params: p}, nil
}

func (w *World) AddBox(b *physics.Box)             { w.boxes = append(w.boxes, b) }
func (w *World) AddPoint(p *physics.PointMass)     { w.points = append(w.points, p) }
func (w *World) AddStick(s *physics.Stick)         { w.sticks = append(w.sticks, s) }
func (w *World) Boxes() []*physics.Box             { return w.boxes }
func (w *World) LoosePoints() []*physics.PointMass { return w.points }
func (w *World) LooseSticks() []*physics.Stick     { return w.sticks }
func (w *World) Params() physics.Params            { return w.params }
func (w *World) Time() float64                     { return w.t }
func (w *World) Frames() int                       { return w.frames }

func (w *World) SetParams(p physics.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	w.params = p
	return nil
}

// Points returns every point: box corners first, then loose points.
func (w *World) Points() []*physics.PointMass {
	pts := make([]*physics.PointMass, 0, 4*len(w.boxes)+len(w.points))
	for _, b := range w.boxes {
		pts = append(pts, b.Points()...)
	}
	return append(pts, w.points...)
}

// Sticks returns every stick: box sticks first, then loose sticks.
func (w *World) Sticks() []*physics.Stick {
	sticks := make([]*physics.Stick, 0, 5*len(w.boxes)+len(w.sticks))
	for _, b := range w.boxes {
		sticks = append(sticks, b.Sticks()...)
	}
	return append(sticks, w.sticks...)
}

// Step advances the world by one frame and returns the dt actually used.
// Frame times above MaxDt are clamped so a stalled renderer cannot launch
// points through the walls.
func (w *World) Step(dt float64) float64 {
	if w.params.MaxDt > 0 && dt > w.params.MaxDt {
		dt = w.params.MaxDt
	}
	if dt < 0 {
		dt = 0
	}

	for _, b := range w.boxes {
		b.Step(dt, w.params)
	}

	if len(w.points) > 0 || len(w.sticks) > 0 {
		for _, p := range w.points {
			p.Integrate(dt, w.params)
		}
		n := w.params.Iterations
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			for _, s := range w.sticks {
				s.Relax(dt)
			}
		}
		for _, p := range w.points {
			p.ClampToBounds(w.params.Bounds, w.params.Restitution)
		}
	}

	w.t += dt
	w.frames++
	return dt
}

// OnPointerDown offers the press to each box in order; the first box with
// a corner under the pointer claims it.
func (w *World) OnPointerDown(x, y float64) bool {
	for _, b := range w.boxes {
		if b.OnPointerDown(x, y) {
			w.active = b
			return true
		}
	}
	return false
}

func (w *World) OnPointerMove(x, _ float64) {
	if w.active != nil {
		w.active.OnPointerMove(x)
	}
}

func (w *World) OnPointerUp(_, _ float64) {
	if w.active != nil {
		w.active.OnPointerUp()
		w.active = nil
	}
}

func (w *World) Dragging() bool { return w.active != nil }

// Render lists a segment per stick followed by a disc per point.
func (w *World) Render() []Primitive {
	sticks := w.Sticks()
	points := w.Points()
	prims := make([]Primitive, 0, len(sticks)+len(points))
	for _, s := range sticks {
		prims = append(prims, Primitive{Kind: Segment, A: s.A.Pos, B: s.B.Pos})
	}
	for _, p := range points {
		prims = append(prims, Primitive{Kind: Disc, A: p.Pos, Radius: p.Radius})
	}
	return prims
}

// RenderState draws the world topology at the positions stored in s,
// which must come from Snapshot on this world.
func (w *World) RenderState(s State) ([]Primitive, error) {
	points := w.Points()
	if s.NumPoints() != len(points) {
		return nil, fmt.Errorf("%w: snapshot has %d points, world has %d", ErrInvalidConfig, s.NumPoints(), len(points))
	}
	index := make(map[*physics.PointMass]int, len(points))
	for i, p := range points {
		index[p] = i
	}

	sticks := w.Sticks()
	prims := make([]Primitive, 0, len(sticks)+len(points))
	for _, st := range sticks {
		prims = append(prims, Primitive{Kind: Segment, A: s.Point(index[st.A]), B: s.Point(index[st.B])})
	}
	for i, p := range points {
		prims = append(prims, Primitive{Kind: Disc, A: s.Point(i), Radius: p.Radius})
	}
	return prims, nil
}

// Snapshot returns the positions of Points() flattened as x0, y0, x1, y1, ...
func (w *World) Snapshot() State {
	return w.SnapshotInto(make(State, 0, 2*(4*len(w.boxes)+len(w.points))))
}

// SnapshotInto appends the positions to dst[:0].
func (w *World) SnapshotInto(dst State) State {
	dst = dst[:0]
	for _, p := range w.Points() {
		dst = append(dst, p.Pos[0], p.Pos[1])
	}
	return dst
}

// GetParams exposes the live-tunable parameters by name.
func (w *World) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity":     w.params.Gravity[1],
		"damping":     w.params.Damping,
		"restitution": w.params.Restitution,
	}
}

// ParamNames returns the GetParams keys in a stable order.
func (w *World) ParamNames() []string {
	names := make([]string, 0, 3)
	for k := range w.GetParams() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (w *World) SetParam(name string, value float64) error {
	p := w.params
	switch name {
	case "gravity":
		p.Gravity[1] = value
	case "damping":
		p.Damping = value
	case "restitution":
		p.Restitution = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return w.SetParams(p)
}
