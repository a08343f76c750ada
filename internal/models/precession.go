package models

import (
	"math"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

const precessionTrail = 300

// Precession is free precession of a tilted magnetization about B0.
type Precession struct {
	B0   float64 // T
	Tilt float64 // degrees from z
	M0   float64
}

func NewPrecession() *Precession {
	return &Precession{B0: 3, Tilt: 90, M0: 1}
}

func (p *Precession) Name() string       { return "precession" }
func (p *Precession) Channels() []string { return magnetizationChannels() }
func (p *Precession) TrailCapacity() int { return precessionTrail }

func (p *Precession) Timing() dynamo.Timing {
	return dynamo.Timing{FrameRate: physics.SlowFrameRate, TimeFactor: physics.PrecessionTimeFactor, Unit: "ns"}
}

// Rate is the animated angular frequency in rad per step.
func (p *Precession) Rate() float64 {
	return physics.Larmor(p.B0) / physics.PrecessionScale
}

// Magnetization returns M0·(cos ωt·sin α, sin ωt·sin α, cos α).
func (p *Precession) Magnetization(step int) r3.Vec {
	sa, ca := math.Sincos(physics.Radians(p.Tilt))
	s, c := math.Sincos(p.Rate() * float64(step))
	return r3.Scale(p.M0, r3.Vec{X: c * sa, Y: s * sa, Z: ca})
}

func (p *Precession) Evolve(step int) dynamo.Frame {
	f := dynamo.NewFrame(step, p.Timing().GraphTime(step))
	m := p.Magnetization(step)
	f.Vectors[dynamo.Magnetization] = m
	f.Vectors[dynamo.FieldB0] = r3.Vec{Z: B0Length(p.B0)}
	setComponents(f, m, p.M0)

	freq := physics.Resonant(p.B0, 0)
	f.Labels["omega0"] = physics.FormatOmega(freq.Omega0)
	f.Labels["nu0"] = physics.FormatNu(freq.Nu0)
	return f
}

func (p *Precession) GetParams() map[string]float64 {
	return map[string]float64{"b0": p.B0, "tilt": p.Tilt, "m0": p.M0}
}

func (p *Precession) SetParam(name string, value float64) error {
	switch name {
	case "b0":
		if err := checkRange(name, value, physics.MinB0, physics.MaxB0); err != nil {
			return err
		}
		p.B0 = value
	case "tilt":
		if err := checkChoice(name, value, physics.TiltAngles); err != nil {
			return err
		}
		p.Tilt = value
	case "m0":
		if err := checkPositive(name, value); err != nil {
			return err
		}
		p.M0 = value
	default:
		return unknownParam(name)
	}
	return nil
}
