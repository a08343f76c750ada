package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/mrilab/internal/dynamo"
)

type rotation struct{ w float64 }

func (r *rotation) StateDim() int { return 3 }

// Derive is Ω × x for Ω = (0, 0, w).
func (r *rotation) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-r.w * x[1], r.w * x[0], 0}
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &rotation{w: 1}
	integ := NewRK4()

	x0 := dynamo.State{1.0, 0.0, 0.5}
	dt := 0.01
	steps := 100

	states := Integrate(integ, dyn, x0, dt, steps)
	x := states[len(states)-1]

	expectedX := math.Cos(float64(steps) * dt)
	expectedY := math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-8 {
		t.Errorf("x error too large: got %.10f, expected %.10f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedY) > 1e-8 {
		t.Errorf("y error too large: got %.10f, expected %.10f", x[1], expectedY)
	}
	if x[2] != 0.5 {
		t.Errorf("expected z untouched, got %f", x[2])
	}
}

func TestEulerGrowsNorm(t *testing.T) {
	dyn := &rotation{w: 1}
	states := Integrate(NewEuler(), dyn, dynamo.State{1, 0, 0}, 0.01, 100)

	if len(states) != 101 {
		t.Fatalf("expected 101 states, got %d", len(states))
	}
	if n := states[100].Norm(); n <= 1 {
		t.Errorf("expected explicit euler to inflate the norm, got %f", n)
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"rk4", "rk45", "euler"} {
		if _, ok := New(name); !ok {
			t.Errorf("expected integrator %s", name)
		}
	}
	if _, ok := New("verlet"); ok {
		t.Error("expected unknown integrator to be rejected")
	}
}
