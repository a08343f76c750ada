package models

import (
	"fmt"
	"math"

	"github.com/san-kum/mrilab/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Base functions of the Fourier demo.
const (
	FunctionSign = "sign"
	FunctionRamp = "x/L"
)

const (
	FourierPeriod   = 5.0
	FourierPoints   = 1000
	FourierMaxTerms = 20
	fourierHalfSpan = 2.5
)

// Fourier approximates sign(x) or x/L by truncated Fourier series.
type Fourier struct {
	function string
	Terms    int
	L        float64
}

func NewFourier() *Fourier {
	return &Fourier{function: FunctionSign, Terms: 1, L: FourierPeriod}
}

func (f *Fourier) Name() string { return "fourier" }

func (f *Fourier) Mode() string    { return f.function }
func (f *Fourier) Modes() []string { return []string{FunctionSign, FunctionRamp} }

func (f *Fourier) SetMode(mode string) error {
	switch mode {
	case FunctionSign, FunctionRamp:
		f.function = mode
		return nil
	case "ramp", "sawtooth":
		f.function = FunctionRamp
		return nil
	}
	return unknownMode(mode, f.Modes())
}

// Base evaluates the function being approximated.
func (f *Fourier) Base(x float64) float64 {
	if f.function == FunctionRamp {
		return x / f.L
	}
	if x >= 0 {
		return 1
	}
	return -1
}

func odd(n int) bool { return n%2 != 0 }

// Coefficient returns c_n; c_0 is zero by definition.
func (f *Fourier) Coefficient(n int) float64 {
	if n == 0 {
		return 0
	}
	nf := float64(n)
	if f.function == FunctionRamp {
		sign := 1.0
		if odd(n + 1) {
			sign = -1
		}
		return (1 / (nf * math.Pi)) * sign * -1
	}
	alt := 1.0
	if odd(n) {
		alt = -1
	}
	return (1 - alt) / (nf * math.Pi) * -1
}

// PartialSum evaluates s_N(x) with N = Terms.
func (f *Fourier) PartialSum(x float64) float64 {
	sum := 0.0
	if f.function == FunctionRamp {
		for n := 1; n <= f.Terms; n++ {
			sum += f.Coefficient(n) * math.Sin(2*math.Pi*float64(n)*x/f.L) * -1
		}
		return sum
	}
	for n := 1; n <= f.Terms; n += 2 {
		sum += 4 / (float64(n) * math.Pi) * math.Sin(float64(n)*x)
	}
	return sum
}

// Grid returns the fixed sampling domain.
func Grid() []float64 {
	return floats.Span(make([]float64, FourierPoints), -fourierHalfSpan, fourierHalfSpan)
}

// Approximation is the resampled data of one configuration.
type Approximation struct {
	Function     string
	Terms        int
	X            []float64
	F            []float64
	S            []float64
	N            []int
	Coefficients []float64
}

// MaxError is the largest |s_N - f| over the grid.
func (a Approximation) MaxError() float64 {
	worst := 0.0
	for i := range a.X {
		worst = math.Max(worst, math.Abs(a.S[i]-a.F[i]))
	}
	return worst
}

// Sample resamples f, s_N and c_n for n in [-N, N].
func (f *Fourier) Sample() Approximation {
	xs := Grid()
	a := Approximation{
		Function: f.function,
		Terms:    f.Terms,
		X:        xs,
		F:        make([]float64, len(xs)),
		S:        make([]float64, len(xs)),
	}
	for i, x := range xs {
		a.F[i] = f.Base(x)
		a.S[i] = f.PartialSum(x)
	}
	for n := -f.Terms; n <= f.Terms; n++ {
		a.N = append(a.N, n)
		a.Coefficients = append(a.Coefficients, f.Coefficient(n))
	}
	return a
}

func (f *Fourier) GetParams() map[string]float64 {
	return map[string]float64{"terms": float64(f.Terms)}
}

func (f *Fourier) SetParam(name string, value float64) error {
	if name != "terms" {
		return unknownParam(name)
	}
	if err := checkRange(name, value, 1, FourierMaxTerms); err != nil {
		return err
	}
	if value != math.Trunc(value) {
		return fmt.Errorf("%w: %s=%g must be a whole number", dynamo.ErrParameterBounds, name, value)
	}
	f.Terms = int(value)
	return nil
}

// GibbsBound is the asymptotic overshoot of a truncated series at a jump,
// as a fraction of the jump height.
const GibbsBound = 0.09
