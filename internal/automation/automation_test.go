package automation

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mrilab/internal/config"
)

const scenarioYAML = `name: excitation tour
description: resonant then off-resonant
steps:
  - demo: resonant
    preset: rrf-3T
    steps: 120
    save_as: on-resonance
  - demo: off-resonant
    mode: rrf
    steps: 80
    params:
      ppm: 10
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "excitation tour" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	first := sc.Steps[0]
	if first.Demo != "resonant" || first.Preset != "rrf-3T" || first.SaveAs != "on-resonance" || first.Steps != 120 {
		t.Errorf("unexpected first step %+v", first)
	}
	if sc.Steps[1].Params["ppm"] != 10 {
		t.Errorf("expected inline params, got %v", sc.Steps[1].Params)
	}

	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected a scenario without steps to fail")
	}
}

func TestResolvePreset(t *testing.T) {
	step := ScenarioStep{Config: config.Config{Demo: "resonant", Params: map[string]float64{"phase": 90}}, Preset: "rrf-3T"}
	cfg, err := step.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "rrf" || cfg.Steps != 1000 {
		t.Errorf("expected preset mode and steps, got %+v", cfg)
	}
	if cfg.Params["phase"] != 90 || cfg.Params["b1"] != 5e-6 {
		t.Errorf("expected step params over preset params, got %v", cfg.Params)
	}

	step.Preset = "nope"
	if _, err := step.Resolve(); err == nil {
		t.Error("expected unknown preset to fail")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	results, err := RunScenario(context.Background(), sc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Result.StepsTaken != 120 || results[0].Result.Mode != "rrf" {
		t.Errorf("unexpected first result: steps %d mode %s", results[0].Result.StepsTaken, results[0].Result.Mode)
	}
	if results[1].Result.Demo != "off-resonant" || results[1].Result.StepsTaken != 80 {
		t.Errorf("unexpected second result %s/%d", results[1].Result.Demo, results[1].Result.StepsTaken)
	}
}

func TestRunScenarioStopsAtFailure(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Config: config.Config{Demo: "precession", Steps: 10}},
		{Config: config.Config{Demo: "precession", Steps: 10, Params: map[string]float64{"b0": 9}}},
	}}
	results, err := RunScenario(context.Background(), sc, nil)
	if err == nil {
		t.Fatal("expected out-of-range b0 to fail")
	}
	if len(results) != 1 {
		t.Errorf("expected the first step to be kept, got %d results", len(results))
	}
}

func TestRunSweep(t *testing.T) {
	sw := &ParameterSweep{
		Config:    &config.Config{Demo: "precession", Steps: 60},
		ParamName: "b0",
		ParamMin:  1,
		ParamMax:  3,
		NumSteps:  3,
	}
	if v := sw.Values(); len(v) != 3 || v[1] != 2 {
		t.Fatalf("unexpected values %v", v)
	}
	results, err := RunSweep(context.Background(), sw)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r.ParamValue != float64(i+1) {
			t.Errorf("result %d: expected b0 %d, got %f", i, i+1, r.ParamValue)
		}
		if _, ok := r.Metrics["magnitude"]; !ok {
			t.Errorf("result %d: expected default metrics, got %v", i, r.Metrics)
		}
		if n := math.Sqrt(r.Final.X*r.Final.X + r.Final.Y*r.Final.Y + r.Final.Z*r.Final.Z); math.Abs(n-1) > 1e-9 {
			t.Errorf("result %d: expected unit M, got %f", i, n)
		}
	}

	static := &ParameterSweep{Config: &config.Config{Demo: "fourier"}, ParamName: "terms", NumSteps: 2}
	if _, err := RunSweep(context.Background(), static); err == nil {
		t.Error("expected static demo to be rejected")
	}
}
