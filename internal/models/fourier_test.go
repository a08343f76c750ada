package models

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/mrilab/internal/dynamo"
)

func TestFourierGrid(t *testing.T) {
	xs := Grid()
	if len(xs) != FourierPoints {
		t.Fatalf("expected %d points, got %d", FourierPoints, len(xs))
	}
	if xs[0] != -2.5 || xs[len(xs)-1] != 2.5 {
		t.Errorf("expected [-2.5, 2.5], got [%f, %f]", xs[0], xs[len(xs)-1])
	}
}

func TestFourierCoefficients(t *testing.T) {
	for _, mode := range []string{FunctionSign, FunctionRamp} {
		f := NewFourier()
		_ = f.SetMode(mode)
		if f.Coefficient(0) != 0 {
			t.Errorf("%s: expected c_0 = 0", mode)
		}
		for n := 1; n <= FourierMaxTerms; n++ {
			if a, b := f.Coefficient(n), f.Coefficient(-n); math.Abs(a+b) > 1e-15 {
				t.Errorf("%s: expected c_%d = -c_%d, got %g and %g", mode, -n, n, b, a)
			}
		}
	}

	f := NewFourier()
	if got := f.Coefficient(2); got != 0 {
		t.Errorf("sign: expected even coefficients zero, got %g", got)
	}
	if got := f.Coefficient(1); math.Abs(got+2/math.Pi) > 1e-15 {
		t.Errorf("sign: expected c_1 = -2/π, got %g", got)
	}
}

func TestFourierGibbs(t *testing.T) {
	f := NewFourier()
	for n := 1; n <= FourierMaxTerms; n++ {
		f.Terms = n
		a := f.Sample()
		peak := 0.0
		for _, s := range a.S {
			peak = math.Max(peak, s)
		}
		if peak > 4/math.Pi+1e-12 {
			t.Errorf("N=%d: peak %f exceeds 4/π", n, peak)
		}
		if n >= 17 && peak-1 > 2*GibbsBound {
			t.Errorf("N=%d: overshoot %f exceeds twice the Gibbs bound", n, peak-1)
		}
	}

	f.Terms = FourierMaxTerms
	if d := math.Abs(f.PartialSum(math.Pi/2) - 1); d > GibbsBound {
		t.Errorf("s_20(π/2) is %f away from 1", d)
	}
}

func TestFourierRampConverges(t *testing.T) {
	f := NewFourier()
	if err := f.SetMode("sawtooth"); err != nil {
		t.Fatal(err)
	}
	if f.Mode() != FunctionRamp {
		t.Fatalf("expected alias to select %s, got %s", FunctionRamp, f.Mode())
	}

	interior := func(terms int) float64 {
		f.Terms = terms
		worst := 0.0
		for i := 0; i <= 300; i++ {
			x := -1.5 + 3*float64(i)/300
			worst = math.Max(worst, math.Abs(f.PartialSum(x)-f.Base(x)))
		}
		return worst
	}

	e5, e20 := interior(5), interior(20)
	if e20 >= e5 {
		t.Errorf("expected error to shrink with N, got %f then %f", e5, e20)
	}
	if e20 > 0.015 {
		t.Errorf("expected interior error below 0.015 at N=20, got %f", e20)
	}
}

func TestFourierSample(t *testing.T) {
	f := NewFourier()
	f.Terms = 5
	a := f.Sample()
	if len(a.N) != 11 || a.N[0] != -5 || a.N[10] != 5 {
		t.Errorf("expected n in [-5, 5], got %v", a.N)
	}
	if len(a.Coefficients) != len(a.N) {
		t.Errorf("expected one coefficient per n")
	}
	if a.MaxError() < 0.9 {
		t.Errorf("expected the jump at 0 to dominate the error, got %f", a.MaxError())
	}
}

func TestFourierSetParam(t *testing.T) {
	f := NewFourier()
	if err := f.SetParam("terms", 7); err != nil || f.Terms != 7 {
		t.Fatalf("expected terms 7, got %d (%v)", f.Terms, err)
	}
	for _, v := range []float64{0, 21, 3.5} {
		if err := f.SetParam("terms", v); !errors.Is(err, dynamo.ErrParameterBounds) {
			t.Errorf("terms=%g: expected ErrParameterBounds, got %v", v, err)
		}
	}
	if err := f.SetParam("n", 3); !errors.Is(err, dynamo.ErrUnknownParameter) {
		t.Errorf("expected ErrUnknownParameter, got %v", err)
	}
	if err := f.SetMode("square"); !errors.Is(err, dynamo.ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}
