package experiment

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mrilab/internal/config"
	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/models"
	"github.com/san-kum/mrilab/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

// Experiment builds a demo from a config and runs it headless.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *log.Logger
	session  *sim.Session
}

func New(cfg *config.Config, logger *log.Logger) *Experiment {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Experiment{cfg: cfg, registry: NewRegistry(), logger: logger}
}

// Setup builds the session: mode first, then parameters, then dipoles, so
// the final reset leaves a clean clock.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	if e.cfg.IsStatic() {
		return fmt.Errorf("%w: %s has no time axis", dynamo.ErrUnknownDemo, e.cfg.Demo)
	}

	ev, err := e.registry.Get(e.cfg.Demo)
	if err != nil {
		return err
	}
	s := sim.NewSession(ev)

	if e.cfg.Mode != "" {
		if err := s.SetMode(e.cfg.Mode); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(e.cfg.Params))
	for name := range e.cfg.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.SetParam(name, e.cfg.Params[name]); err != nil {
			return fmt.Errorf("param %s: %w", name, err)
		}
	}

	if coil, ok := ev.(*models.Coil); ok {
		if err := e.setupCoil(s, coil); err != nil {
			return err
		}
	}

	for _, m := range e.registry.DefaultMetrics(e.cfg.Demo) {
		s.AddMetric(m)
	}
	e.session = s
	e.logger.Debug("experiment ready", "demo", e.cfg.Demo, "mode", e.cfg.Mode, "params", len(names))
	return nil
}

func (e *Experiment) setupCoil(s *sim.Session, coil *models.Coil) error {
	k, err := e.cfg.CoilK()
	if err != nil {
		return err
	}
	if err := s.SetParam("k", k); err != nil {
		return err
	}
	coil.Snap = e.cfg.SnapEnabled()
	return s.Mutate(func(dynamo.Evolver) error {
		for _, d := range e.cfg.Dipoles {
			req := r3.Vec{X: d[0], Y: d[1], Z: d[2]}
			got, err := coil.AddDipole(req)
			if err != nil {
				return err
			}
			if got != req {
				e.logger.Warn("dipole moved onto placement grid", "requested", req, "placed", got)
			}
		}
		return nil
	})
}

// Session returns the built session, for adding observers before Run.
func (e *Experiment) Session() *sim.Session {
	return e.session
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.session == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	e.logger.Info("running", "demo", e.cfg.Demo, "steps", e.cfg.Steps)
	res, err := e.session.Run(ctx, e.cfg.Steps)
	if err != nil {
		e.logger.Error("run failed", "demo", e.cfg.Demo, "err", err)
		return res, err
	}
	e.logger.Debug("run complete", "steps", res.StepsTaken)
	return res, nil
}

// Gradient builds the gradient demo from a config.
func Gradient(cfg *config.Config) (*models.Gradient, error) {
	g := models.NewGradient()
	set := []struct {
		name  string
		value float64
	}{{"gx", cfg.Gradient.Gx}, {"gy", cfg.Gradient.Gy}, {"gz", cfg.Gradient.Gz}}
	for _, p := range set {
		if err := g.SetParam(p.name, p.value); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Fourier builds the Fourier demo from a config.
func Fourier(cfg *config.Config) (*models.Fourier, error) {
	f := models.NewFourier()
	if cfg.Function != "" {
		if err := f.SetMode(cfg.Function); err != nil {
			return nil, err
		}
	}
	if cfg.Terms > 0 {
		if err := f.SetParam("terms", float64(cfg.Terms)); err != nil {
			return nil, err
		}
	}
	return f, nil
}
