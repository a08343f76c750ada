package physics

import (
	"fmt"
	"math"
)

// Larmor returns ω = γ·B in rad/s.
func Larmor(b float64) float64 { return Gamma * b }

// Hz converts an angular frequency to ordinary frequency.
func Hz(omega float64) float64 { return omega / (2 * math.Pi) }

// Frequencies are derived from the field parameters on every step and never stored.
type Frequencies struct {
	Omega0     float64
	Nu0        float64
	Omega1     float64
	OmegaHF    float64
	DeltaOmega float64
	OmegaEff   float64
	// ThetaEff is the tilt of the effective field from z, in radians.
	ThetaEff float64
}

// Resonant derives frequencies with ωHF = ω0.
func Resonant(b0, b1 float64) Frequencies {
	w0 := Larmor(b0)
	w1 := Larmor(b1)
	return Frequencies{
		Omega0:   w0,
		Nu0:      Hz(w0),
		Omega1:   w1,
		OmegaHF:  w0,
		OmegaEff: w1,
	}
}

// OffResonant derives frequencies for an RF carrier shifted by ppm.
func OffResonant(b0, b1, ppm float64) Frequencies {
	f := Resonant(b0, b1)
	f.OmegaHF = (1 + ppm) * f.Omega0
	f.DeltaOmega = f.Omega0 - f.OmegaHF
	f.OmegaEff = math.Hypot(f.DeltaOmega, f.Omega1)
	if f.OmegaEff == 0 {
		return f
	}
	f.ThetaEff = math.Acos(math.Abs(f.DeltaOmega) / f.OmegaEff)
	return f
}

// DeltaB is the z field that remains in the rotating frame off resonance.
func (f Frequencies) DeltaB() float64 { return math.Abs(f.DeltaOmega) / Gamma }

func FormatOmega(omega float64) string {
	return fmt.Sprintf("ω0 = %.1f rad/s", omega)
}

// FormatOmegaMega labels ω0 in units of 10⁶ rad/s.
func FormatOmegaMega(omega float64) string {
	return fmt.Sprintf("ω0 = %.1f ×10⁶ rad/s", omega/FormatFactor)
}

func FormatNu(nu float64) string {
	return fmt.Sprintf("ν0 = %.3f MHz", nu/FormatFactor)
}

func FormatRate(symbol string, omega float64) string {
	return fmt.Sprintf("%s = %.1f rad/s", symbol, omega)
}

func FormatTheta(theta float64) string {
	return fmt.Sprintf("θ = %.2f°", theta*180/math.Pi)
}
