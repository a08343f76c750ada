package models

import (
	"math"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotatingFrameView shows a frame rotating at Ω = ω0 and a resonant B1
// carried along with it at a fixed phase from x'.
type RotatingFrameView struct {
	B0    float64 // T
	Phase float64 // degrees, whole numbers only
	B1    float64 // arrow amplitude
}

func NewRotatingFrameView() *RotatingFrameView {
	return &RotatingFrameView{B0: 3, Phase: 0, B1: B1Length(physics.MaxB1)}
}

func (r *RotatingFrameView) Name() string       { return "rotating-frame" }
func (r *RotatingFrameView) TrailCapacity() int { return 0 }
func (r *RotatingFrameView) Channels() []string { return []string{"B1x", "B1y"} }

func (r *RotatingFrameView) Timing() dynamo.Timing {
	return dynamo.Timing{FrameRate: physics.SlowFrameRate, TimeFactor: physics.PrecessionTimeFactor, Unit: "ns"}
}

// Rate is Ω = ωHF = ω0 scaled to rad per step.
func (r *RotatingFrameView) Rate() float64 {
	return physics.Larmor(math.Round(r.B0*10)/10) / physics.PrecessionScale
}

// Axes returns the x' and y' unit vectors at a step.
func (r *RotatingFrameView) Axes(step int) (r3.Vec, r3.Vec) {
	angle := r.Rate() * float64(step)
	return physics.RotateZ(physics.UnitX, angle), physics.RotateZ(physics.UnitY, angle)
}

// B1Field is |B1|·(cos(θ+ωt), sin(θ+ωt), 0).
func (r *RotatingFrameView) B1Field(step int) r3.Vec {
	angle := r.Rate() * float64(step)
	return physics.RotateZ(physics.Polar(r.B1, physics.Radians(r.Phase)), angle)
}

// PhasePath is the θ arc at 0.4·|B1| turned with the frame.
func (r *RotatingFrameView) PhasePath(step int) []r3.Vec {
	angle := r.Rate() * float64(step)
	path := phasePath(r.Phase, r.B1*0.4)
	for i, p := range path {
		path[i] = physics.RotateZ(p, angle)
	}
	return path
}

func (r *RotatingFrameView) Evolve(step int) dynamo.Frame {
	f := dynamo.NewFrame(step, r.Timing().GraphTime(step))
	xp, yp := r.Axes(step)
	b1 := r.B1Field(step)
	f.Vectors[dynamo.AxisXPrime] = xp
	f.Vectors[dynamo.AxisYPrime] = yp
	f.Vectors[dynamo.FieldB1] = b1
	f.Vectors[dynamo.FieldB0] = r3.Vec{Z: B0Length(r.B0)}
	f.Path = r.PhasePath(step)
	f.Values["B1x"] = b1.X
	f.Values["B1y"] = b1.Y

	w0 := physics.Larmor(math.Round(r.B0*10) / 10)
	f.Labels["omega0"] = physics.FormatRate("ω0", w0)
	f.Labels["omegaHF"] = physics.FormatRate("ωHF", w0)
	f.Labels["omega"] = physics.FormatRate("Ω", w0)
	return f
}

// ResetsOn rewinds only when the phase changes; B0 just retunes the rate.
func (r *RotatingFrameView) ResetsOn(param string) bool { return param == "phase" }

func (r *RotatingFrameView) GetParams() map[string]float64 {
	return map[string]float64{"b0": r.B0, "phase": r.Phase}
}

func (r *RotatingFrameView) SetParam(name string, value float64) error {
	switch name {
	case "b0":
		if err := checkRange(name, value, physics.MinB0, physics.MaxB0); err != nil {
			return err
		}
		r.B0 = value
	case "phase":
		if err := checkRange(name, value, 0, physics.MaxPhase); err != nil {
			return err
		}
		r.Phase = math.Round(value)
	default:
		return unknownParam(name)
	}
	return nil
}
