package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/mrilab/internal/dynamo"
)

func TestRK45Step(t *testing.T) {
	integrator := NewRK45()
	dyn := &rotation{w: 1}
	x := dynamo.State{1.0, 0.0, 0.0}

	dt := 0.1
	for i := 0; i < 100; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	if !x.IsValid() {
		t.Fatal("RK45 produced invalid state")
	}
	if math.Abs(x[0]-math.Cos(10)) > 1e-7 || math.Abs(x[1]-math.Sin(10)) > 1e-7 {
		t.Errorf("expected (%f, %f), got (%f, %f)", math.Cos(10), math.Sin(10), x[0], x[1])
	}
}

func TestRK45NormConservation(t *testing.T) {
	integrator := NewRK45()
	dyn := &rotation{w: 0.2}
	x := dynamo.State{0.6, 0.0, 0.8}

	for i := 0; i < 3000; i++ {
		x = integrator.Step(dyn, x, float64(i), 1)
	}

	if drift := math.Abs(x.Norm() - 1); drift > 1e-6 {
		t.Errorf("RK45 norm drift too high: %e", drift)
	}
}

func TestRK45AdaptiveStep(t *testing.T) {
	integrator := NewRK45()
	dyn := &rotation{w: 1}
	x0 := dynamo.State{1.0, 0.0, 0.0}

	tests := []struct {
		name   string
		dt     float64
		shrink bool
	}{
		{"large step", 2.0, true},
		{"small step", 0.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, newDt, err := integrator.StepAdaptive(dyn, x0, 0, tt.dt, 1e-8)
			if err != nil {
				t.Fatalf("StepAdaptive returned error: %v", err)
			}
			if !x.IsValid() {
				t.Error("StepAdaptive produced invalid state")
			}
			if got := newDt < tt.dt; got != tt.shrink {
				t.Errorf("dt %g: expected shrink=%v, got next dt %g", tt.dt, tt.shrink, newDt)
			}
		})
	}
}

func TestRK45VsRK4Accuracy(t *testing.T) {
	dyn := &rotation{w: 1}
	x0 := dynamo.State{1.0, 0.0, 0.0}

	x4 := Integrate(NewRK4(), dyn, x0, 0.5, 40)[40]
	x45 := Integrate(NewRK45(), dyn, x0, 0.5, 40)[40]

	want := dynamo.State{math.Cos(20), math.Sin(20), 0}
	e4 := x4.Sub(want).Norm()
	e45 := x45.Sub(want).Norm()
	if e45 >= e4 {
		t.Errorf("expected RK45 (%e) to beat fixed-step RK4 (%e) at dt 0.5", e45, e4)
	}
}
