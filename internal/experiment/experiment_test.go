package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/mrilab/internal/config"
	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/models"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	names := r.ListDemos()
	if len(names) != 5 || names[0] != "coil" {
		t.Errorf("unexpected demos %v", names)
	}
	for _, name := range names {
		ev, err := r.Get(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if ev.Name() != name {
			t.Errorf("registry name %s builds %s", name, ev.Name())
		}
		if r.Describe(name) == "" {
			t.Errorf("%s has no description", name)
		}
	}
	if _, err := r.Get("spin-echo"); !errors.Is(err, dynamo.ErrUnknownDemo) {
		t.Errorf("expected ErrUnknownDemo, got %v", err)
	}
}

func TestExperimentPresets(t *testing.T) {
	for _, demo := range NewRegistry().ListDemos() {
		for _, name := range config.ListPresets(demo) {
			t.Run(demo+"/"+name, func(t *testing.T) {
				cfg := config.GetPreset(demo, name)
				cfg.Steps = 50
				e := New(cfg, nil)
				if err := e.Setup(); err != nil {
					t.Fatalf("setup failed: %v", err)
				}
				res, err := e.Run(context.Background())
				if err != nil {
					t.Fatalf("run failed: %v", err)
				}
				if res.StepsTaken != 50 {
					t.Errorf("expected 50 steps, got %d", res.StepsTaken)
				}
				if cfg.Mode != "" && res.Mode != cfg.Mode {
					t.Errorf("expected mode %s, got %s", cfg.Mode, res.Mode)
				}
			})
		}
	}
}

func TestExperimentMagnitudeMetrics(t *testing.T) {
	e := New(config.GetPreset("resonant", "wcs-3T"), nil)
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Metrics["magnitude_drift"] > 1e-9 {
		t.Errorf("expected no drift, got %g", res.Metrics["magnitude_drift"])
	}
	if res.Metrics["stability"] != 1 {
		t.Errorf("expected components within ±1, got %f", res.Metrics["stability"])
	}
}

func TestExperimentCoil(t *testing.T) {
	cfg := config.GetPreset("coil", "single")
	cfg.Dipoles = append(cfg.Dipoles, [3]float64{1, 1, 0})
	e := New(cfg, nil)
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}
	coil := e.Session().Evolver().(*models.Coil)
	dips := coil.Dipoles()
	if len(dips) != 2 {
		t.Fatalf("expected 2 dipoles, got %d", len(dips))
	}
	if r := math.Hypot(dips[1].X, dips[1].Y); math.Abs(r-models.RestrictedRadius) > 1e-12 {
		t.Errorf("expected the inner dipole pushed to the restricted circle, got r=%f", r)
	}

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Metrics["emf_consistency"] > 0.01 {
		t.Errorf("EMF does not match the flux derivative: %f", res.Metrics["emf_consistency"])
	}
	if coil.Playing() {
		t.Error("coil should be stopped after a run")
	}
}

func TestExperimentErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		want error
	}{
		{"unknown demo", &config.Config{Demo: "spin-echo", Steps: 1}, dynamo.ErrUnknownDemo},
		{"static demo", &config.Config{Demo: "fourier"}, dynamo.ErrUnknownDemo},
		{"bad mode", &config.Config{Demo: "resonant", Steps: 1, Mode: "lab"}, dynamo.ErrUnknownMode},
		{"bad param", &config.Config{Demo: "precession", Steps: 1, Params: map[string]float64{"tilt": 30}}, dynamo.ErrParameterBounds},
		{"unknown param", &config.Config{Demo: "precession", Steps: 1, Params: map[string]float64{"b1": 1}}, dynamo.ErrUnknownParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.cfg, nil).Setup()
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := New(config.DefaultConfig(), nil).Run(context.Background()); err == nil {
		t.Error("expected an error running before Setup")
	}
}

func TestStaticBuilders(t *testing.T) {
	g, err := Gradient(config.GetPreset("gradient", "yz-plane"))
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Classify().String(); got != "plane yz" {
		t.Errorf("expected plane yz, got %s", got)
	}
	if _, err := Gradient(&config.Config{Gradient: config.GradientConfig{Gx: 15}}); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}

	f, err := Fourier(config.GetPreset("fourier", "sawtooth-20"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Mode() != models.FunctionRamp || f.Terms != 20 {
		t.Errorf("unexpected fourier %s/%d", f.Mode(), f.Terms)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name       string
		demo       string
		params     map[string]float64
		integrator string
		substeps   int
		maxErr     float64
	}{
		{"precession rk4", "precession", map[string]float64{"tilt": 45}, "rk4", 10, 1e-5},
		{"precession rk45", "precession", map[string]float64{"b0": 1.5}, "rk45", 1, 1e-5},
		{"resonant rk4", "resonant", map[string]float64{"phase": 30}, "rk4", 1, 1e-8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Demo: tt.demo, Steps: 300, Params: tt.params}
			c, err := Verify(cfg, tt.integrator, tt.substeps)
			if err != nil {
				t.Fatal(err)
			}
			if c.MaxError > tt.maxErr {
				t.Errorf("max error %g at step %d exceeds %g", c.MaxError, c.WorstStep, tt.maxErr)
			}
		})
	}
}

func TestVerifyEulerDrifts(t *testing.T) {
	cfg := &config.Config{Demo: "precession", Steps: 300}
	c, err := Verify(cfg, "euler", 1)
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxError < 0.1 {
		t.Errorf("expected explicit euler to drift visibly, got %g", c.MaxError)
	}
}

func TestVerifyRejects(t *testing.T) {
	if _, err := Verify(&config.Config{Demo: "coil", Steps: 10}, "rk4", 1); !errors.Is(err, dynamo.ErrUnknownDemo) {
		t.Errorf("expected ErrUnknownDemo, got %v", err)
	}
	if _, err := Verify(&config.Config{Demo: "precession", Steps: 10}, "verlet", 1); err == nil {
		t.Error("expected unknown integrator to fail")
	}
	_, err := Verify(&config.Config{Demo: "precession", Steps: 10, Params: map[string]float64{"tilt": 33}}, "rk4", 1)
	if !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}
