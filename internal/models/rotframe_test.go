package models

import (
	"math"
	"testing"

	"github.com/san-kum/mrilab/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRotatingFrameAxes(t *testing.T) {
	r := NewRotatingFrameView()
	for step := 0; step < 200; step += 13 {
		xp, yp := r.Axes(step)
		if math.Abs(r3.Norm(xp)-1) > 1e-12 || math.Abs(r3.Norm(yp)-1) > 1e-12 {
			t.Fatalf("step %d: axes are not unit length", step)
		}
		if d := math.Abs(r3.Dot(xp, yp)); d > 1e-12 {
			t.Fatalf("step %d: axes are not orthogonal (%g)", step, d)
		}
		if z := r3.Cross(xp, yp); math.Abs(z.Z-1) > 1e-12 {
			t.Fatalf("step %d: axes are not right-handed", step)
		}
	}
}

func TestRotatingFrameB1(t *testing.T) {
	r := NewRotatingFrameView()
	r.Phase = 40
	for step := 0; step < 100; step += 9 {
		angle := r.Phase*math.Pi/180 + r.Rate()*float64(step)
		want := r3.Vec{X: r.B1 * math.Cos(angle), Y: r.B1 * math.Sin(angle)}
		if d := r3.Norm(r3.Sub(r.B1Field(step), want)); d > 1e-12 {
			t.Errorf("step %d: B1 off by %g", step, d)
		}
	}
}

func TestRotatingFrameEvolve(t *testing.T) {
	r := NewRotatingFrameView()
	r.Phase = 60
	f := r.Evolve(5)

	if len(f.Path) != 61 {
		t.Errorf("expected 61 arc points, got %d", len(f.Path))
	}
	for _, key := range []string{dynamo.AxisXPrime, dynamo.AxisYPrime, dynamo.FieldB1, dynamo.FieldB0} {
		if _, ok := f.Vectors[key]; !ok {
			t.Errorf("missing vector %s", key)
		}
	}
	if f.Labels["omega"] != "Ω = 802539000.0 rad/s" {
		t.Errorf("unexpected Ω label %q", f.Labels["omega"])
	}
	end := f.Path[len(f.Path)-1]
	want := r3.Scale(0.4, r.B1Field(5))
	if d := r3.Norm(r3.Sub(end, want)); d > 1e-12 {
		t.Errorf("arc should end under B1, off by %g", d)
	}
}

func TestRotatingFrameResetPolicy(t *testing.T) {
	r := NewRotatingFrameView()
	if !r.ResetsOn("phase") {
		t.Error("phase change should reset")
	}
	if r.ResetsOn("b0") {
		t.Error("b0 change should not reset")
	}
	if err := r.SetParam("phase", 12.4); err != nil || r.Phase != 12 {
		t.Errorf("expected phase 12, got %f (%v)", r.Phase, err)
	}
}
