package models

import (
	"fmt"
	"math"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/physics"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// Placement grid for dipoles around the receive coil.
const (
	GridMinX         = -16.0
	GridMaxX         = 5.0
	GridMaxY         = 8.0
	RestrictedRadius = 5.0
)

// PhysicalCoilConstant is μ0·S/(4π). With the demo's coil surface it equals 1.
func PhysicalCoilConstant() float64 {
	return physics.VacuumPermeability * physics.CoilSurface / (4 * math.Pi)
}

// Contribution is one dipole's share of the sensitivity vector.
type Contribution struct {
	Position r3.Vec
	R        float64
	C        r3.Vec
}

// SensitivityAt returns c(r) = -(K/|r|^5)·(3x²-|r|², 3xy, 3xz), rounded to
// five decimals. A dipole at the origin contributes nothing.
func SensitivityAt(pos r3.Vec, k float64) (r3.Vec, bool) {
	r := r3.Norm(pos)
	if r == 0 {
		return r3.Vec{}, false
	}
	r2 := r * r
	c := r3.Scale(-k/math.Pow(r, 5), r3.Vec{
		X: 3*pos.X*pos.X - r2,
		Y: 3 * pos.X * pos.Y,
		Z: 3 * pos.X * pos.Z,
	})
	return physics.RoundVec(c, 5), true
}

// Coil couples a set of precessing dipoles into a receive coil at the origin.
type Coil struct {
	B0   float64 // T
	M0   float64
	K    float64
	Snap bool

	dipoles       []r3.Vec
	contributions []Contribution
	sensitivity   r3.Vec
	playing       bool
}

func NewCoil() *Coil {
	return &Coil{B0: 3, M0: 1, K: 1}
}

func (c *Coil) Name() string       { return "coil" }
func (c *Coil) TrailCapacity() int { return 0 }
func (c *Coil) Channels() []string { return []string{dynamo.ChannelFlux, dynamo.ChannelEMF} }

func (c *Coil) Timing() dynamo.Timing {
	return dynamo.Timing{FrameRate: physics.SlowFrameRate, TimeFactor: physics.PrecessionTimeFactor, Unit: "ns"}
}

// Constrain moves a requested position onto the placement grid: clamped to
// the grid, pushed out of the restricted disk, snapped when enabled.
func (c *Coil) Constrain(p r3.Vec) r3.Vec {
	x := math.Max(GridMinX, math.Min(p.X, GridMaxX))
	y := math.Max(-GridMaxY, math.Min(p.Y, GridMaxY))
	if x*x+y*y <= RestrictedRadius*RestrictedRadius {
		angle := math.Atan2(y, x)
		x, y = RestrictedRadius*math.Cos(angle), RestrictedRadius*math.Sin(angle)
	}
	out := r3.Vec{X: x, Y: y, Z: p.Z}
	if c.Snap {
		out = physics.RoundVec(out, 0)
	}
	return out
}

// AddDipole places a dipole and returns where it landed.
func (c *Coil) AddDipole(p r3.Vec) (r3.Vec, error) {
	if c.playing {
		return r3.Vec{}, fmt.Errorf("add dipole: %w", dynamo.ErrPlaying)
	}
	pos := c.Constrain(p)
	c.dipoles = append(c.dipoles, pos)
	return pos, nil
}

func (c *Coil) RemoveDipole(i int) error {
	if c.playing {
		return fmt.Errorf("remove dipole: %w", dynamo.ErrPlaying)
	}
	if i < 0 || i >= len(c.dipoles) {
		return fmt.Errorf("%w: dipole index %d of %d", dynamo.ErrParameterBounds, i, len(c.dipoles))
	}
	c.dipoles = append(c.dipoles[:i], c.dipoles[i+1:]...)
	return nil
}

// SetDipoles replaces the dipole set; positions are used as given.
func (c *Coil) SetDipoles(ps []r3.Vec) error {
	if c.playing {
		return fmt.Errorf("set dipoles: %w", dynamo.ErrPlaying)
	}
	c.dipoles = append(c.dipoles[:0:0], ps...)
	return nil
}

func (c *Coil) Dipoles() []r3.Vec {
	return append([]r3.Vec(nil), c.dipoles...)
}

// ComputeSensitivity aggregates every dipole's contribution into one vector.
func (c *Coil) ComputeSensitivity() r3.Vec {
	c.contributions = c.contributions[:0]
	sum := r3.Vec{}
	for _, d := range c.dipoles {
		pos := r3.Vec{X: scalar.Round(d.X, 1), Y: scalar.Round(d.Y, 1), Z: d.Z}
		contrib, ok := SensitivityAt(pos, c.K)
		if !ok {
			continue
		}
		c.contributions = append(c.contributions, Contribution{Position: pos, R: r3.Norm(pos), C: contrib})
		sum = r3.Add(sum, contrib)
	}
	c.sensitivity = sum
	return sum
}

func (c *Coil) Sensitivity() r3.Vec { return c.sensitivity }

func (c *Coil) Contributions() []Contribution {
	return append([]Contribution(nil), c.contributions...)
}

// Start freezes the dipole set and computes its sensitivity.
func (c *Coil) Start() {
	c.playing = true
	c.ComputeSensitivity()
}

// Stop unfreezes the dipoles and drops the per-dipole results.
func (c *Coil) Stop() bool {
	c.playing = false
	c.contributions = c.contributions[:0]
	return true
}

func (c *Coil) Playing() bool { return c.playing }

// Rate is ω0 scaled to rad per step.
func (c *Coil) Rate() float64 {
	return physics.Larmor(c.B0) / physics.PrecessionScale
}

func (c *Coil) Magnetization(step int) r3.Vec {
	s, co := math.Sincos(c.Rate() * float64(step))
	return r3.Scale(c.M0, r3.Vec{X: co, Y: s})
}

// Flux is Φ = M·c.
func (c *Coil) Flux(step int) float64 {
	return r3.Dot(c.Magnetization(step), c.sensitivity)
}

// EMF is -M0·(dM̂/dτ)·c with the real ω0, so it equals -dΦ/dτ for τ = step/scale.
func (c *Coil) EMF(step int) float64 {
	w0 := physics.Larmor(c.B0)
	s, co := math.Sincos(c.Rate() * float64(step))
	return -c.M0 * r3.Dot(r3.Vec{X: -s * w0, Y: co * w0}, c.sensitivity)
}

func (c *Coil) Evolve(step int) dynamo.Frame {
	f := dynamo.NewFrame(step, c.Timing().GraphTime(step))
	f.Vectors[dynamo.Magnetization] = c.Magnetization(step)
	f.Vectors[dynamo.Sensitivity] = c.sensitivity
	f.Values[dynamo.ChannelFlux] = c.Flux(step)
	f.Values[dynamo.ChannelEMF] = c.EMF(step)

	freq := physics.Resonant(c.B0, 0)
	f.Labels["omega0"] = physics.FormatOmega(freq.Omega0)
	f.Labels["nu0"] = physics.FormatNu(freq.Nu0)
	return f
}

func (c *Coil) GetParams() map[string]float64 {
	snap := 0.0
	if c.Snap {
		snap = 1
	}
	return map[string]float64{"b0": c.B0, "m0": c.M0, "k": c.K, "snap": snap}
}

func (c *Coil) SetParam(name string, value float64) error {
	switch name {
	case "b0":
		if err := checkRange(name, value, physics.MinB0, physics.MaxB0); err != nil {
			return err
		}
		c.B0 = value
	case "m0":
		if err := checkPositive(name, value); err != nil {
			return err
		}
		c.M0 = value
	case "k":
		if err := checkPositive(name, value); err != nil {
			return err
		}
		c.K = value
		if c.playing {
			c.ComputeSensitivity()
		}
	case "snap":
		c.Snap = value != 0
	default:
		return unknownParam(name)
	}
	return nil
}
