package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/mrilab/internal/config"
	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/integrators"
	"github.com/san-kum/mrilab/internal/models"
	"gonum.org/v1/gonum/spatial/r3"
)

// VerifiableDemos have a Bloch equation to integrate against.
var VerifiableDemos = []string{"precession", "resonant"}

// Check is the outcome of integrating a demo's Bloch equation next to its
// closed form.
type Check struct {
	Demo       string
	Integrator string
	Steps      int
	Substeps   int
	MaxError   float64
	WorstStep  int
}

type closedForm interface {
	dynamo.Configurable
	Magnetization(step int) r3.Vec
}

// Verify integrates dM/dt = Ω × M with the named integrator and reports the
// largest distance to the closed-form magnetization over cfg.Steps steps.
// Resonant excitation is checked in the rotating frame, where Ω is constant.
func Verify(cfg *config.Config, integrator string, substeps int) (Check, error) {
	integ, ok := integrators.New(integrator)
	if !ok {
		return Check{}, fmt.Errorf("unknown integrator %q", integrator)
	}
	if substeps <= 0 {
		return Check{}, fmt.Errorf("%w: substeps must be positive, got %d", dynamo.ErrParameterBounds, substeps)
	}
	if cfg.Steps <= 0 {
		return Check{}, fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, cfg.Steps)
	}

	var demo closedForm
	var build func() *models.Bloch
	switch cfg.Demo {
	case "precession":
		p := models.NewPrecession()
		demo, build = p, func() *models.Bloch { return models.PrecessionBloch(p) }
	case "resonant":
		r := models.NewResonant()
		if err := r.SetMode(models.RotatingFrame); err != nil {
			return Check{}, err
		}
		demo, build = r, func() *models.Bloch { return models.NutationBloch(r) }
	default:
		return Check{}, fmt.Errorf("%w: %s has no Bloch form", dynamo.ErrUnknownDemo, cfg.Demo)
	}

	names := make([]string, 0, len(cfg.Params))
	for name := range cfg.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := demo.SetParam(name, cfg.Params[name]); err != nil {
			return Check{}, fmt.Errorf("param %s: %w", name, err)
		}
	}

	states := integrators.Integrate(integ, build(), dynamo.FromVec(demo.Magnetization(0)), 1/float64(substeps), cfg.Steps*substeps)
	check := Check{Demo: cfg.Demo, Integrator: integrator, Steps: cfg.Steps, Substeps: substeps}
	for step := 0; step <= cfg.Steps; step++ {
		got := states[step*substeps]
		if !got.IsValid() {
			return check, &dynamo.SimulationError{Step: step, Time: float64(step), Wrapped: dynamo.ErrInvalidState}
		}
		if d := r3.Norm(r3.Sub(got.Vec(), demo.Magnetization(step))); d > check.MaxError {
			check.MaxError, check.WorstStep = d, step
		}
	}
	return check, nil
}
