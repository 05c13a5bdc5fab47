package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent worlds concurrently, one goroutine each.
// Worlds must not share points; each gets fresh metrics from newMetrics.
type Ensemble struct {
	worlds     []*World
	newMetrics func() []Metric
}

func NewEnsemble(worlds []*World, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{worlds: worlds, newMetrics: newMetrics}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.worlds))
	g, ctx := errgroup.WithContext(ctx)

	for i, w := range e.worlds {
		i, w := i, w
		g.Go(func() error {
			s := New(w)
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}
			r, err := s.Run(ctx, cfg)
			results[i] = r
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
