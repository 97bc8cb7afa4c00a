package sim

import (
	"context"
	"sync"
)

// Ensemble runs independent headless simulations with consecutive seeds.
type Ensemble struct {
	numRuns   int
	seedStart int64
	metrics   func() []Metric
}

// NewEnsemble creates an ensemble. newMetrics is called once per run so that
// runs never share metric state; it may be nil.
func NewEnsemble(numRuns int, seedStart int64, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{numRuns: numRuns, seedStart: seedStart, metrics: newMetrics}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			s := New()
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
