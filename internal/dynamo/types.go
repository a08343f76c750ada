package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// State is a flat vector used by ODE right-hand sides.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Vec converts the first three components to a vector.
func (s State) Vec() r3.Vec {
	if len(s) < 3 {
		return r3.Vec{}
	}
	return r3.Vec{X: s[0], Y: s[1], Z: s[2]}
}

// FromVec builds a three-component state.
func FromVec(v r3.Vec) State { return State{v.X, v.Y, v.Z} }

// System is an ODE right-hand side dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// Well-known vector and channel names carried by frames.
const (
	Magnetization = "M"
	FieldB0       = "B0"
	FieldB1       = "B1"
	FieldBeff     = "Beff"
	FieldBz       = "Bz"
	AxisXPrime    = "x'"
	AxisYPrime    = "y'"
	Sensitivity   = "c"

	ChannelMx   = "Mx"
	ChannelMy   = "My"
	ChannelMz   = "Mz"
	ChannelFlux = "flux"
	ChannelEMF  = "emf"
)

// Frame is the output of one evolution step.
type Frame struct {
	Step    int
	Time    float64
	Vectors map[string]r3.Vec
	Values  map[string]float64
	Labels  map[string]string
	Path    []r3.Vec
}

func NewFrame(step int, time float64) Frame {
	return Frame{
		Step:    step,
		Time:    time,
		Vectors: make(map[string]r3.Vec),
		Values:  make(map[string]float64),
		Labels:  make(map[string]string),
	}
}

func (f Frame) IsValid() bool {
	for _, v := range f.Vectors {
		if !State(FromVec(v)).IsValid() {
			return false
		}
	}
	for _, v := range f.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Timing maps integer steps to the graph time axis.
type Timing struct {
	FrameRate  int
	TimeFactor float64
	Unit       string
}

// GraphTime returns t_g = step * TimeFactor / FrameRate.
func (tm Timing) GraphTime(step int) float64 {
	if tm.FrameRate <= 0 {
		return 0
	}
	return float64(step) * tm.TimeFactor / float64(tm.FrameRate)
}

func (tm Timing) Caption() string {
	if tm.Unit == "" {
		return "Time"
	}
	return fmt.Sprintf("Time (%s)", tm.Unit)
}

// Clock is the simulated step counter of one demo instance.
type Clock struct {
	step   int
	timing Timing
}

func NewClock(timing Timing) *Clock { return &Clock{timing: timing} }

func (c *Clock) Step() int           { return c.step }
func (c *Clock) Time() float64       { return c.timing.GraphTime(c.step) }
func (c *Clock) Timing() Timing      { return c.timing }
func (c *Clock) Advance()            { c.step++ }
func (c *Clock) SetTiming(tm Timing) { c.timing = tm }
func (c *Clock) Reset()              { c.step = 0 }

// Evolver is a closed-form evolution function of one demo.
// Evolve must be pure in step for fixed parameters.
type Evolver interface {
	Name() string
	Evolve(step int) Frame
	Channels() []string
	Timing() Timing
	TrailCapacity() int
}

// Configurable exposes the parameter store of a demo.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// ResetPolicy reports whether changing a parameter rewinds the demo.
// Evolvers without it reset on every change.
type ResetPolicy interface {
	ResetsOn(param string) bool
}

// Moded demos have a selectable reference frame or plot mode.
type Moded interface {
	Mode() string
	Modes() []string
	SetMode(mode string) error
}

// Lifecycle demos are notified of play and pause transitions.
type Lifecycle interface {
	Start()
	// Stop reports whether pausing rewinds the demo.
	Stop() bool
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

type Result struct {
	Demo       string
	Mode       string
	Params     map[string]float64
	Timing     Timing
	Channels   []string
	Times      []float64
	Series     map[string][]float64
	Trail      []r3.Vec
	Final      Frame
	Metrics    map[string]float64
	StepsTaken int
}
