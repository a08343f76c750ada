package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/models"
	"github.com/san-kum/mrilab/internal/physics"
	"github.com/san-kum/mrilab/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMagnitudeDriftPrecession(t *testing.T) {
	p := models.NewPrecession()
	p.Tilt = 45
	s := sim.NewSession(p)
	drift := NewMagnitudeDrift()
	mag := NewMagnitude()
	s.AddMetric(drift)
	s.AddMetric(mag)

	res, err := s.Run(context.Background(), 2000)
	if err != nil {
		t.Fatal(err)
	}
	if res.Metrics["magnitude_drift"] > 1e-9 {
		t.Errorf("expected drift below 1e-9, got %g", res.Metrics["magnitude_drift"])
	}
	if math.Abs(res.Metrics["magnitude"]-1) > 1e-9 {
		t.Errorf("expected mean |M| 1, got %f", res.Metrics["magnitude"])
	}
}

func TestMagnitudeDriftDetectsGrowth(t *testing.T) {
	d := NewMagnitudeDrift()
	for i, n := range []float64{1, 1.05, 1.1} {
		f := dynamo.NewFrame(i, 0)
		f.Vectors[dynamo.Magnetization] = r3.Vec{Z: n}
		d.Observe(f)
	}
	if math.Abs(d.Value()-0.1) > 1e-12 {
		t.Errorf("expected drift 0.1, got %f", d.Value())
	}
	d.Reset()
	if d.Value() != 0 {
		t.Error("expected zero after Reset")
	}
}

func TestStability(t *testing.T) {
	s := NewStability(1.0)
	for i, v := range []float64{0.5, -1, 1.5, 0} {
		f := dynamo.NewFrame(i, 0)
		f.Values["Mx"] = v
		s.Observe(f)
	}
	if s.Value() != 0.75 {
		t.Errorf("expected 0.75, got %f", s.Value())
	}
}

func TestChannelMetrics(t *testing.T) {
	peak := NewPeakAbs("emf")
	mean := NewMeanAbs("emf")
	for i, v := range []float64{1, -3, 2} {
		f := dynamo.NewFrame(i, 0)
		f.Values["emf"] = v
		peak.Observe(f)
		mean.Observe(f)
	}
	if peak.Value() != 3 {
		t.Errorf("expected peak 3, got %f", peak.Value())
	}
	if mean.Value() != 2 {
		t.Errorf("expected mean 2, got %f", mean.Value())
	}
	if peak.Name() != "peak_emf" {
		t.Errorf("unexpected name %s", peak.Name())
	}
}

func TestEMFConsistencyCoil(t *testing.T) {
	coil := models.NewCoil()
	if err := coil.SetDipoles([]r3.Vec{{X: 2}}); err != nil {
		t.Fatal(err)
	}
	s := sim.NewSession(coil)
	s.AddMetric(NewEMFConsistency(physics.PrecessionScale))

	res, err := s.Run(context.Background(), 200)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Metrics["emf_consistency"]; got > 0.01 {
		t.Errorf("expected EMF to match -dΦ/dτ within 1%%, got %f", got)
	}
}
