package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mrilab/internal/config"
	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/experiment"
	"github.com/san-kum/mrilab/internal/sim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of demo runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. SaveAs names the run in the scenario's output;
// an empty name keeps the result in memory only.
type ScenarioStep struct {
	config.Config `yaml:",inline"`
	Preset        string `yaml:"preset,omitempty"`
	SaveAs        string `yaml:"save_as,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Resolve applies the step's preset, if any, under its own fields.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	cfg := s.Config
	if s.Preset != "" {
		p := config.GetPreset(cfg.Demo, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %s for %s", s.Preset, cfg.Demo)
		}
		if cfg.Steps <= 0 {
			cfg.Steps = p.Steps
		}
		if cfg.Mode == "" {
			cfg.Mode = p.Mode
		}
		params := make(map[string]float64, len(p.Params)+len(cfg.Params))
		for k, v := range p.Params {
			params[k] = v
		}
		for k, v := range cfg.Params {
			params[k] = v
		}
		cfg.Params = params
		if len(cfg.Dipoles) == 0 {
			cfg.Dipoles = p.Dipoles
		}
	}
	if cfg.Steps <= 0 {
		cfg.Steps = config.DefaultSteps
	}
	return &cfg, nil
}

// StepResult pairs a run with the step that produced it.
type StepResult struct {
	Step   ScenarioStep
	Result *dynamo.Result
}

// RunScenario executes all steps in order. Static demos are rejected; the
// scenario stops at the first failing step and returns what ran before it.
func RunScenario(ctx context.Context, scenario *Scenario, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "n", i+1, "of", len(scenario.Steps), "demo", step.Demo)

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg, logger)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Result: result})
	}

	return results, nil
}

// ParameterSweep runs a demo across values of one parameter: List when
// given, otherwise NumSteps evenly spaced values from ParamMin to ParamMax.
type ParameterSweep struct {
	Config    *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	List      []float64
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Final      r3.Vec
	Metrics    map[string]float64
	Result     *dynamo.Result
}

// Values returns the swept values, ends included.
func (p *ParameterSweep) Values() []float64 {
	if len(p.List) > 0 {
		return p.List
	}
	if p.NumSteps < 2 {
		return []float64{p.ParamMin}
	}
	return floats.Span(make([]float64, p.NumSteps), p.ParamMin, p.ParamMax)
}

// RunSweep executes the sweep in parallel, one fresh demo per value.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	cfg := sweep.Config
	if cfg.IsStatic() {
		return nil, fmt.Errorf("%w: %s has no time axis", dynamo.ErrUnknownDemo, cfg.Demo)
	}
	if err := experiment.New(cfg, nil).Setup(); err != nil {
		return nil, err
	}

	registry := experiment.NewRegistry()
	factory := func() (dynamo.Evolver, error) {
		exp := experiment.New(cfg, nil)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		return exp.Session().Evolver(), nil
	}

	values := sweep.Values()
	sw := sim.NewSweep(factory, sweep.ParamName, values)
	sw.Metrics = func() []dynamo.Metric { return registry.DefaultMetrics(cfg.Demo) }

	runs, err := sw.Run(ctx, cfg.Steps)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, res := range runs {
		results[i] = SweepResult{
			ParamValue: values[i],
			Final:      res.Final.Vectors[dynamo.Magnetization],
			Metrics:    res.Metrics,
			Result:     res,
		}
	}
	return results, nil
}
