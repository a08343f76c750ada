package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/mrilab/internal/dynamo"
)

// Factory builds a fresh evolver for one sweep run.
type Factory func() (dynamo.Evolver, error)

// Sweep runs one headless session per parameter value in parallel. Each run
// gets a fresh evolver from factory so no state is shared between them.
type Sweep struct {
	factory Factory
	param   string
	values  []float64

	// Metrics, when set, supplies fresh observers for each run.
	Metrics func() []dynamo.Metric
}

func NewSweep(factory Factory, param string, values []float64) *Sweep {
	return &Sweep{factory: factory, param: param, values: values}
}

func (sw *Sweep) Run(ctx context.Context, steps int) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(sw.values))
	errs := make([]error, len(sw.values))

	var wg sync.WaitGroup
	for i, v := range sw.values {
		wg.Add(1)
		go func(idx int, value float64) {
			defer wg.Done()

			ev, err := sw.factory()
			if err != nil {
				errs[idx] = fmt.Errorf("sweep %s=%g: %w", sw.param, value, err)
				return
			}
			s := NewSession(ev)
			if sw.Metrics != nil {
				for _, m := range sw.Metrics() {
					s.AddMetric(m)
				}
			}
			if err := s.SetParam(sw.param, value); err != nil {
				errs[idx] = fmt.Errorf("sweep %s=%g: %w", sw.param, value, err)
				return
			}
			results[idx], errs[idx] = s.Run(ctx, steps)
		}(i, v)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
