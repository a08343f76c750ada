package models

import (
	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bloch is the relaxation-free Bloch equation dM/dt = Ω × M for a constant
// rotation vector Ω in rad per step. Used to cross-check closed forms.
type Bloch struct {
	Omega r3.Vec
}

func (b *Bloch) StateDim() int { return 3 }

func (b *Bloch) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.FromVec(r3.Cross(b.Omega, x.Vec()))
}

// PrecessionBloch returns the equation matching a precession demo.
func PrecessionBloch(p *Precession) *Bloch {
	return &Bloch{Omega: r3.Vec{Z: p.Rate()}}
}

// NutationBloch returns the rotating-frame equation of resonant excitation:
// rotation about the B1 direction at ω1.
func NutationBloch(r *Resonant) *Bloch {
	_, w1 := r.Rates()
	return &Bloch{Omega: physics.Polar(w1, physics.Radians(r.Phase))}
}
