package sim

import "sync"

// StatePool recycles snapshot buffers for callers that keep a rolling
// history of frames.
type StatePool struct {
	pool sync.Pool
	size int
}

func NewStatePool(stateSize int) *StatePool {
	return &StatePool{
		size: stateSize,
		pool: sync.Pool{
			New: func() interface{} {
				return make(State, stateSize)
			},
		},
	}
}

func (p *StatePool) Get() State {
	return p.pool.Get().(State)
}

func (p *StatePool) Put(s State) {
	if cap(s) >= p.size {
		s = s[:p.size]
		for i := range s {
			s[i] = 0
		}
		p.pool.Put(s)
	}
}

// Capture snapshots w into a pooled buffer.
func (p *StatePool) Capture(w *World) State {
	return w.SnapshotInto(p.Get())
}
