package experiment

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/spinsim/internal/spin"
)

// MetricSet builds a fresh set of metrics for a run over n nodes.
type MetricSet func(nodes int) []spin.Metric

// Ensemble runs the same configuration over consecutive seeds, one
// simulator per goroutine.
type Ensemble struct {
	cfg       Config
	numRuns   int
	seedStart int64
	metrics   MetricSet
	limit     int
}

func NewEnsemble(cfg Config, numRuns int, seedStart int64, metrics MetricSet) *Ensemble {
	return &Ensemble{
		cfg:       cfg,
		numRuns:   numRuns,
		seedStart: seedStart,
		metrics:   metrics,
		limit:     runtime.GOMAXPROCS(0),
	}
}

// SetLimit caps the number of concurrent runs.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run returns the results indexed by run; result i used seed seedStart+i.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			cfg := e.cfg
			cfg.Spin.Seed = e.seedStart + int64(idx)

			var ms []spin.Metric
			if e.metrics != nil {
				ms = e.metrics(cfg.Spin.NumNodes)
			}

			exp := New(cfg)
			if err := exp.Setup(ms); err != nil {
				return err
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MeanMetrics averages each named metric over the results.
func MeanMetrics(results []*Result) map[string]float64 {
	out := make(map[string]float64)
	if len(results) == 0 {
		return out
	}
	for _, r := range results {
		for k, v := range r.Metrics {
			out[k] += v
		}
	}
	for k := range out {
		out[k] /= float64(len(results))
	}
	return out
}
