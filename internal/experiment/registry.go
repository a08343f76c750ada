package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/metrics"
	"github.com/san-kum/mrilab/internal/models"
	"github.com/san-kum/mrilab/internal/physics"
)

type Registry struct {
	demos        map[string]func() dynamo.Evolver
	descriptions map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		demos:        make(map[string]func() dynamo.Evolver),
		descriptions: make(map[string]string),
	}

	r.register("precession", "free precession of a tilted M about B0",
		func() dynamo.Evolver { return models.NewPrecession() })
	r.register("rotating-frame", "a frame rotating at ω0 carrying a resonant B1",
		func() dynamo.Evolver { return models.NewRotatingFrameView() })
	r.register("resonant", "on-resonance RF excitation, lab or rotating frame",
		func() dynamo.Evolver { return models.NewResonant() })
	r.register("off-resonant", "off-resonance RF excitation about a tilted Beff",
		func() dynamo.Evolver { return models.NewOffResonant() })
	r.register("coil", "flux and EMF induced by precessing dipoles in a receive coil",
		func() dynamo.Evolver { return models.NewCoil() })

	return r
}

func (r *Registry) register(name, desc string, fn func() dynamo.Evolver) {
	r.demos[name] = fn
	r.descriptions[name] = desc
}

func (r *Registry) Get(name string) (dynamo.Evolver, error) {
	fn, ok := r.demos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownDemo, name)
	}
	return fn(), nil
}

// Factory returns the constructor of a demo, for runs that need fresh
// instances.
func (r *Registry) Factory(name string) (func() dynamo.Evolver, error) {
	fn, ok := r.demos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownDemo, name)
	}
	return fn, nil
}

func (r *Registry) Describe(name string) string { return r.descriptions[name] }

func (r *Registry) ListDemos() []string {
	names := make([]string, 0, len(r.demos))
	for name := range r.demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics picks the observers that make sense for a demo.
func (r *Registry) DefaultMetrics(demo string) []dynamo.Metric {
	switch demo {
	case "coil":
		return []dynamo.Metric{
			metrics.NewPeakAbs(dynamo.ChannelFlux),
			metrics.NewPeakAbs(dynamo.ChannelEMF),
			metrics.NewMeanAbs(dynamo.ChannelEMF),
			metrics.NewEMFConsistency(physics.PrecessionScale),
		}
	case "rotating-frame":
		return []dynamo.Metric{
			metrics.NewPeakAbs("B1x"),
			metrics.NewPeakAbs("B1y"),
		}
	}
	return []dynamo.Metric{
		metrics.NewMagnitude(),
		metrics.NewMagnitudeDrift(),
		metrics.NewStability(1.0 + 1e-9),
	}
}
