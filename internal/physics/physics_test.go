package physics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestLarmorLabels(t *testing.T) {
	tests := []struct {
		b0       float64
		format   func(float64) string
		wantOmeg string
		wantNu   string
	}{
		{3, FormatOmega, "ω0 = 802539000.0 rad/s", "ν0 = 127.728 MHz"},
		{1.5, FormatOmegaMega, "ω0 = 401.3 ×10⁶ rad/s", "ν0 = 63.864 MHz"},
		{0.5, FormatOmegaMega, "ω0 = 133.8 ×10⁶ rad/s", "ν0 = 21.288 MHz"},
	}

	for _, tt := range tests {
		t.Run(tt.wantNu, func(t *testing.T) {
			f := Resonant(tt.b0, 0)
			if got := tt.format(f.Omega0); got != tt.wantOmeg {
				t.Errorf("expected %q, got %q", tt.wantOmeg, got)
			}
			if got := FormatNu(f.Nu0); got != tt.wantNu {
				t.Errorf("expected %q, got %q", tt.wantNu, got)
			}
		})
	}
}

func TestOffResonantTilt(t *testing.T) {
	f := OffResonant(3, 5e-6, 10e-6)

	if math.Abs(f.DeltaOmega+8025.39) > 1e-3 {
		t.Errorf("expected Δω ≈ -8025.39, got %f", f.DeltaOmega)
	}
	if got := FormatTheta(f.ThetaEff); got != "θ = 9.46°" {
		t.Errorf("expected θ = 9.46°, got %q", got)
	}
	if math.Abs(f.OmegaEff*f.OmegaEff-(f.DeltaOmega*f.DeltaOmega+f.Omega1*f.Omega1)) > 1e-6*f.OmegaEff*f.OmegaEff {
		t.Error("ω_eff is not the hypotenuse of Δω and ω1")
	}
}

func TestOffResonantZeroFields(t *testing.T) {
	f := OffResonant(0, 0, 10e-6)
	if f.ThetaEff != 0 || math.IsNaN(f.ThetaEff) {
		t.Errorf("expected zero tilt without fields, got %f", f.ThetaEff)
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name  string
		v     r3.Vec
		axis  r3.Vec
		angle float64
		want  r3.Vec
	}{
		{"x about z", UnitX, UnitZ, math.Pi / 2, UnitY},
		{"y about z", UnitY, UnitZ, math.Pi / 2, r3.Vec{X: -1}},
		{"z about y", UnitZ, UnitY, math.Pi / 2, UnitX},
		{"x about y", UnitX, UnitY, math.Pi / 2, r3.Vec{Z: -1}},
		{"zero axis", UnitX, r3.Vec{}, 1, UnitX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotate(tt.v, tt.axis, tt.angle)
			if r3.Norm(r3.Sub(got, tt.want)) > 1e-12 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRotatePreservesLength(t *testing.T) {
	v := r3.Vec{X: 0.3, Y: -1.2, Z: 2}
	for _, angle := range []float64{0.1, 1, 2.5, -4} {
		got := RotateY(RotateZ(v, angle), angle/3)
		if math.Abs(r3.Norm(got)-r3.Norm(v)) > 1e-12 {
			t.Errorf("expected length %f, got %f", r3.Norm(v), r3.Norm(got))
		}
	}
}

func TestOneOf(t *testing.T) {
	if !OneOf(3e-6, DiscreteB1) {
		t.Error("3 µT should be a valid B1")
	}
	if OneOf(2e-6, DiscreteB1) {
		t.Error("2 µT should not be a valid B1")
	}
	if !OneOf(-5e-6, OffsetsPPM) {
		t.Error("-5 ppm should be a valid offset")
	}
}
