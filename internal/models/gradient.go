package models

import (
	"fmt"
	"math"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Project returns the coordinate of p along a.
func Project(p r3.Vec, a Axis) float64 {
	switch a {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	default:
		return p.Z
	}
}

func place(p *r3.Vec, a Axis, v float64) {
	switch a {
	case AxisX:
		p.X = v
	case AxisY:
		p.Y = v
	default:
		p.Z = v
	}
}

// Lattice coordinates along each axis.
var (
	CoordsX = []float64{-4, -2, 0, 2, 4}
	CoordsY = []float64{-4, -2, 0, 2, 4}
	CoordsZ = []float64{-8, -4, 0, 4, 8}
)

func Coords(a Axis) []float64 {
	switch a {
	case AxisX:
		return CoordsX
	case AxisY:
		return CoordsY
	default:
		return CoordsZ
	}
}

// Plane is a sampling plane with its drawing orientation. Outer is the axis
// iterated first when sampling.
type Plane struct {
	Name       string
	Outer      Axis
	Horizontal Axis
	Vertical   Axis
}

var (
	PlaneXY = Plane{Name: "xy", Outer: AxisX, Horizontal: AxisY, Vertical: AxisX}
	PlaneXZ = Plane{Name: "xz", Outer: AxisZ, Horizontal: AxisZ, Vertical: AxisX}
	PlaneYZ = Plane{Name: "yz", Outer: AxisZ, Horizontal: AxisZ, Vertical: AxisY}
)

func (p Plane) inner() Axis {
	if p.Outer == p.Horizontal {
		return p.Vertical
	}
	return p.Horizontal
}

type GradientMode int

const (
	ModeNone GradientMode = iota
	ModeAxis
	ModePlane
	ModeVolume
)

func (m GradientMode) String() string {
	switch m {
	case ModeAxis:
		return "axis"
	case ModePlane:
		return "plane"
	case ModeVolume:
		return "volume"
	}
	return "none"
}

// Classification is the display mode implied by which gradients are on.
type Classification struct {
	Mode  GradientMode
	Axis  Axis  // set for ModeAxis
	Plane Plane // set for ModePlane
}

func (c Classification) String() string {
	switch c.Mode {
	case ModeAxis:
		return "axis " + c.Axis.String()
	case ModePlane:
		return "plane " + c.Plane.Name
	}
	return c.Mode.String()
}

// Sample is one lattice point of the gradient field.
type Sample struct {
	Position r3.Vec
	Offset   float64 // G·r in mT
	Length   float64 // normalized arrow length
	Emphasis float64 // 1 on the axes, 0.2 elsewhere
}

// Segment is one iso-line clipped to its sampling rectangle.
type Segment struct {
	Start, End r3.Vec
	Offset     float64
	Case       int
}

// Gradient is an ideal linear gradient field with per-axis strengths in mT/m.
type Gradient struct {
	Gx, Gy, Gz float64
}

func NewGradient() *Gradient { return &Gradient{} }

func (g *Gradient) strength(a Axis) float64 {
	switch a {
	case AxisX:
		return g.Gx
	case AxisY:
		return g.Gy
	default:
		return g.Gz
	}
}

// Classify derives the mode from (Gx≠0, Gy≠0, Gz≠0) alone.
func (g *Gradient) Classify() Classification {
	on := [3]bool{g.Gx != 0, g.Gy != 0, g.Gz != 0}
	count := 0
	for _, v := range on {
		if v {
			count++
		}
	}
	switch count {
	case 0:
		return Classification{Mode: ModeNone}
	case 1:
		for i, v := range on {
			if v {
				return Classification{Mode: ModeAxis, Axis: Axis(i)}
			}
		}
	case 2:
		switch {
		case !on[AxisZ]:
			return Classification{Mode: ModePlane, Plane: PlaneXY}
		case !on[AxisY]:
			return Classification{Mode: ModePlane, Plane: PlaneXZ}
		default:
			return Classification{Mode: ModePlane, Plane: PlaneYZ}
		}
	}
	return Classification{Mode: ModeVolume}
}

// Offset is the field offset G·r.
func (g *Gradient) Offset(p r3.Vec) float64 {
	return g.Gx*p.X + g.Gy*p.Y + g.Gz*p.Z
}

// ArrowLength sums (index-2)·G/40 over the axes, index being the lattice position.
func (g *Gradient) ArrowLength(p r3.Vec) float64 {
	total := 0.0
	for _, a := range []Axis{AxisX, AxisY, AxisZ} {
		coords := Coords(a)
		v := Project(p, a)
		for i, c := range coords {
			if c == v {
				total += float64(i-2) * g.strength(a) / physics.MaxGradient
				break
			}
		}
	}
	return total
}

func isCorner(p r3.Vec) bool {
	return (p.X == -4 || p.X == 4) && (p.Y == -4 || p.Y == 4)
}

func (g *Gradient) sample(p r3.Vec, emphasis float64) Sample {
	return Sample{Position: p, Offset: g.Offset(p), Length: g.ArrowLength(p), Emphasis: emphasis}
}

// AxisSamples samples the lattice points along one axis.
func (g *Gradient) AxisSamples(a Axis) []Sample {
	coords := Coords(a)
	out := make([]Sample, 0, len(coords))
	for _, c := range coords {
		var p r3.Vec
		place(&p, a, c)
		out = append(out, g.sample(p, 1))
	}
	return out
}

// PlaneSamples samples one plane in drawing order. The XY corners are left
// out. When emphasize is set, points off the plane's axes are faded.
func (g *Gradient) PlaneSamples(pl Plane, emphasize bool) []Sample {
	inner := pl.inner()
	out := make([]Sample, 0, 25)
	for _, o := range Coords(pl.Outer) {
		for _, i := range Coords(inner) {
			var p r3.Vec
			place(&p, pl.Outer, o)
			place(&p, inner, i)
			if pl == PlaneXY && isCorner(p) {
				continue
			}
			e := 1.0
			if emphasize && o != 0 && i != 0 {
				e = 0.2
			}
			out = append(out, g.sample(p, e))
		}
	}
	return out
}

// VolumeSamples samples the full lattice, z outermost, without the XY corners.
func (g *Gradient) VolumeSamples() []Sample {
	out := make([]Sample, 0, len(CoordsX)*len(CoordsY)*len(CoordsZ))
	for _, z := range CoordsZ {
		for _, y := range CoordsY {
			for _, x := range CoordsX {
				p := r3.Vec{X: x, Y: y, Z: z}
				if isCorner(p) {
					continue
				}
				e := 0.2
				if (x == 0 && y == 0) || (x == 0 && z == 0) || (y == 0 && z == 0) {
					e = 1
				}
				out = append(out, g.sample(p, e))
			}
		}
	}
	return out
}

// Field is the complete rendering input for one gradient configuration.
type Field struct {
	Classification Classification
	Samples        []Sample
	IsoLines       []Segment
}

// Sample evaluates the lattice implied by the current mode. Iso-lines are
// only drawn for a single plane.
func (g *Gradient) Sample() Field {
	cls := g.Classify()
	f := Field{Classification: cls}
	switch cls.Mode {
	case ModeAxis:
		f.Samples = g.AxisSamples(cls.Axis)
	case ModePlane:
		f.Samples = g.PlaneSamples(cls.Plane, false)
		f.IsoLines = IsoLines(f.Samples, cls.Plane)
	case ModeVolume:
		f.Samples = g.VolumeSamples()
	}
	return f
}

// OrthogonalPlanes samples the XZ, YZ and XY planes together, fading points
// off the axes, as shown when all three gradients are on.
func (g *Gradient) OrthogonalPlanes() []Sample {
	out := g.PlaneSamples(PlaneXZ, true)
	out = append(out, g.PlaneSamples(PlaneYZ, true)...)
	return append(out, g.PlaneSamples(PlaneXY, true)...)
}

func (g *Gradient) GetParams() map[string]float64 {
	return map[string]float64{"gx": g.Gx, "gy": g.Gy, "gz": g.Gz}
}

// SetParam accepts multiples of 10 mT/m in [-40, 40].
func (g *Gradient) SetParam(name string, value float64) error {
	var dst *float64
	switch name {
	case "gx":
		dst = &g.Gx
	case "gy":
		dst = &g.Gy
	case "gz":
		dst = &g.Gz
	default:
		return unknownParam(name)
	}
	if err := checkRange(name, value, -physics.MaxGradient, physics.MaxGradient); err != nil {
		return err
	}
	if r := value / physics.GradientStep; r != math.Trunc(r) {
		return fmt.Errorf("%w: %s=%g is not a multiple of %g", dynamo.ErrParameterBounds, name, value, physics.GradientStep)
	}
	*dst = value
	return nil
}
