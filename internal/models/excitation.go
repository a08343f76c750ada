package models

import (
	"math"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

const excitationTrail = 320

// frameSelector holds the World/Rotating mode shared by both excitation demos.
type frameSelector struct {
	mode string
}

func (s *frameSelector) Mode() string    { return s.mode }
func (s *frameSelector) Modes() []string { return []string{WorldFrame, RotatingFrame} }

func (s *frameSelector) SetMode(mode string) error {
	switch mode {
	case WorldFrame, RotatingFrame:
		s.mode = mode
		return nil
	}
	return unknownMode(mode, s.Modes())
}

// timing redefines the graph time axis with the frame: ns in the lab, ms when rotating.
func (s *frameSelector) timing() dynamo.Timing {
	if s.mode == RotatingFrame {
		return dynamo.Timing{FrameRate: physics.FastFrameRate, TimeFactor: physics.RotatingTimeFactor, Unit: "ms"}
	}
	return dynamo.Timing{FrameRate: physics.FastFrameRate, TimeFactor: physics.WorldTimeFactor, Unit: "ns"}
}

// Resonant is on-resonance RF excitation, ωHF = ω0.
type Resonant struct {
	frameSelector
	B0    float64 // T, one of 0.5, 1.5, 3
	B1    float64 // T, one of 1, 3, 5 µT
	Phase float64 // degrees
	M0    float64
}

func NewResonant() *Resonant {
	return &Resonant{frameSelector: frameSelector{mode: WorldFrame}, B0: 3, B1: 5e-6, Phase: 0, M0: 1}
}

func (r *Resonant) Name() string          { return "resonant" }
func (r *Resonant) Channels() []string    { return magnetizationChannels() }
func (r *Resonant) TrailCapacity() int    { return excitationTrail }
func (r *Resonant) Timing() dynamo.Timing { return r.timing() }

// Rates returns ω0 and ω1 scaled to rad per step.
func (r *Resonant) Rates() (float64, float64) {
	return physics.Larmor(r.B0) / physics.ResonantScaleW0, physics.Larmor(r.B1) / physics.ResonantScaleW1
}

// Magnetization follows the closed forms of each frame. The lab-frame form
// is kept exactly as the demo has always shown it, including its known
// phase inaccuracy.
func (r *Resonant) Magnetization(step int) r3.Vec {
	w0, w1 := r.Rates()
	t := float64(step)
	th := physics.Radians(r.Phase)
	s1, c1 := math.Sincos(w1 * t)
	if r.mode == RotatingFrame {
		st, ct := math.Sincos(th)
		return r3.Scale(r.M0, r3.Vec{X: s1 * st, Y: -s1 * ct, Z: c1})
	}
	s0, c0 := math.Sincos(w0*t + th)
	return r3.Scale(r.M0, r3.Vec{X: s0 * s1, Y: -c0 * s1, Z: c1})
}

// B1Field rotates at ωHF in the lab and sits at the phase angle when rotating.
func (r *Resonant) B1Field(step int) r3.Vec {
	l := B1Length(r.B1)
	if r.mode == RotatingFrame {
		return physics.Polar(l, physics.Radians(r.Phase))
	}
	w0, _ := r.Rates()
	return physics.Polar(l, w0*float64(step))
}

func (r *Resonant) Evolve(step int) dynamo.Frame {
	f := dynamo.NewFrame(step, r.Timing().GraphTime(step))
	m := r.Magnetization(step)
	f.Vectors[dynamo.Magnetization] = m
	f.Vectors[dynamo.FieldB1] = r.B1Field(step)
	f.Vectors[dynamo.FieldB0] = r3.Vec{Z: B0Length(r.B0)}
	if r.mode == RotatingFrame {
		f.Path = phasePath(r.Phase, B1Length(r.B1)*0.2)
	}
	setComponents(f, m, r.M0)

	freq := physics.Resonant(r.B0, r.B1)
	f.Labels["omega0"] = physics.FormatOmegaMega(freq.Omega0)
	f.Labels["nu0"] = physics.FormatNu(freq.Nu0)
	return f
}

func (r *Resonant) GetParams() map[string]float64 {
	return map[string]float64{"b0": r.B0, "b1": r.B1, "phase": r.Phase, "m0": r.M0}
}

func (r *Resonant) SetParam(name string, value float64) error {
	switch name {
	case "b0":
		if err := checkChoice(name, value, physics.DiscreteB0); err != nil {
			return err
		}
		r.B0 = value
	case "b1":
		if err := checkChoice(name, value, physics.DiscreteB1); err != nil {
			return err
		}
		r.B1 = value
	case "phase":
		if err := checkRange(name, value, 0, physics.MaxPhase); err != nil {
			return err
		}
		r.Phase = math.Round(value)
	case "m0":
		if err := checkPositive(name, value); err != nil {
			return err
		}
		r.M0 = value
	default:
		return unknownParam(name)
	}
	return nil
}

// OffResonant is RF excitation with the carrier shifted by a ppm offset.
type OffResonant struct {
	frameSelector
	B0     float64 // T, one of 0.5, 1.5, 3
	B1     float64 // T, one of 1, 3, 5 µT
	Offset float64 // fractional, one of -5, 1, 10 ppm
	M0     float64
}

func NewOffResonant() *OffResonant {
	return &OffResonant{frameSelector: frameSelector{mode: WorldFrame}, B0: 3, B1: 5e-6, Offset: 10e-6, M0: 1}
}

func (o *OffResonant) Name() string          { return "off-resonant" }
func (o *OffResonant) Channels() []string    { return magnetizationChannels() }
func (o *OffResonant) TrailCapacity() int    { return excitationTrail }
func (o *OffResonant) Timing() dynamo.Timing { return o.timing() }

func (o *OffResonant) Frequencies() physics.Frequencies {
	return physics.OffResonant(o.B0, o.B1, o.Offset)
}

// Rates returns the scaled ω0, ω1 and carrier rates in rad per step.
func (o *OffResonant) Rates() (w0, w1, wHF float64) {
	w0 = physics.Larmor(o.B0) / physics.OffResonantScaleW0
	w1 = physics.Larmor(o.B1) / physics.OffResonantScaleW1
	return w0, w1, o.Offset * w0
}

// Magnetization in the rotating frame is a circular precession in
// effective-field coordinates tilted by θ_eff about y. The lab-frame form
// is the demo's own approximation and is kept as is.
func (o *OffResonant) Magnetization(step int) r3.Vec {
	w0, w1, _ := o.Rates()
	t := float64(step)
	if o.mode == RotatingFrame {
		theta := o.Frequencies().ThetaEff
		st, ct := math.Sincos(theta)
		s, c := math.Sincos(w0 * t)
		cone := r3.Vec{X: c * st, Y: s * st, Z: ct}
		return r3.Scale(o.M0, physics.RotateY(cone, theta))
	}
	s0, c0 := math.Sincos(w0 * t)
	s1, c1 := math.Sincos(w1 * t)
	return r3.Scale(o.M0, r3.Vec{X: -s0 * s1, Y: c0 * s1, Z: c1})
}

func (o *OffResonant) B1Field(step int) r3.Vec {
	l := B1Length(o.B1)
	if o.mode == RotatingFrame {
		return r3.Vec{X: l}
	}
	_, _, wHF := o.Rates()
	return physics.Polar(l, wHF*float64(step))
}

// ResidualLength is the arrow length of the residual z field ΔB relative to B1.
func (o *OffResonant) ResidualLength() float64 {
	ratio := o.Frequencies().DeltaB() / o.B1
	return math.Round(ratio*B1Length(o.B1)*100) / 100
}

// EffectiveField is the Beff arrow (|B1|, 0, |B1|/tan θ_eff).
func (o *OffResonant) EffectiveField() r3.Vec {
	l := B1Length(o.B1)
	tan := math.Tan(o.Frequencies().ThetaEff)
	if tan == 0 {
		return r3.Vec{X: l}
	}
	return r3.Vec{X: l, Z: l / tan}
}

func (o *OffResonant) Evolve(step int) dynamo.Frame {
	f := dynamo.NewFrame(step, o.Timing().GraphTime(step))
	m := o.Magnetization(step)
	f.Vectors[dynamo.Magnetization] = m
	f.Vectors[dynamo.FieldB1] = o.B1Field(step)
	f.Vectors[dynamo.FieldB0] = r3.Vec{Z: B0Length(o.B0)}
	if o.mode == RotatingFrame {
		f.Vectors[dynamo.FieldBeff] = o.EffectiveField()
		f.Vectors[dynamo.FieldBz] = r3.Vec{Z: o.ResidualLength()}
	}
	setComponents(f, m, o.M0)

	freq := o.Frequencies()
	f.Labels["omega0"] = physics.FormatOmegaMega(freq.Omega0)
	f.Labels["nu0"] = physics.FormatNu(freq.Nu0)
	f.Labels["theta"] = physics.FormatTheta(freq.ThetaEff)
	return f
}

func (o *OffResonant) GetParams() map[string]float64 {
	return map[string]float64{"b0": o.B0, "b1": o.B1, "ppm": o.Offset * 1e6, "m0": o.M0}
}

// SetParam takes the offset as "ppm" in parts per million.
func (o *OffResonant) SetParam(name string, value float64) error {
	switch name {
	case "b0":
		if err := checkChoice(name, value, physics.DiscreteB0); err != nil {
			return err
		}
		o.B0 = value
	case "b1":
		if err := checkChoice(name, value, physics.DiscreteB1); err != nil {
			return err
		}
		o.B1 = value
	case "ppm":
		if err := checkChoice(name, value*1e-6, physics.OffsetsPPM); err != nil {
			return err
		}
		o.Offset = value * 1e-6
	case "m0":
		if err := checkPositive(name, value); err != nil {
			return err
		}
		o.M0 = value
	default:
		return unknownParam(name)
	}
	return nil
}
