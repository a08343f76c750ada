package models

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Reference frames shared by the excitation demos.
const (
	WorldFrame    = "wcs"
	RotatingFrame = "rrf"
)

// ArrowLength is the display length of a full-strength arrow.
const ArrowLength = 1.0

func checkRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return fmt.Errorf("%w: %s=%g not in [%g, %g]", dynamo.ErrParameterBounds, name, v, lo, hi)
	}
	return nil
}

func checkChoice(name string, v float64, choices []float64) error {
	if !physics.OneOf(v, choices) {
		return fmt.Errorf("%w: %s=%g not one of %v", dynamo.ErrParameterBounds, name, v, choices)
	}
	return nil
}

func checkPositive(name string, v float64) error {
	if math.IsNaN(v) || v <= 0 {
		return fmt.Errorf("%w: %s=%g must be positive", dynamo.ErrParameterBounds, name, v)
	}
	return nil
}

func unknownParam(name string) error {
	return fmt.Errorf("%w: %s", dynamo.ErrUnknownParameter, name)
}

func unknownMode(mode string, modes []string) error {
	return fmt.Errorf("%w: %q (available: %v)", dynamo.ErrUnknownMode, mode, modes)
}

// ParamNames returns the sorted parameter names of a configurable demo.
func ParamNames(c dynamo.Configurable) []string {
	params := c.GetParams()
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func setComponents(f dynamo.Frame, m r3.Vec, m0 float64) {
	if m0 == 0 {
		m0 = 1
	}
	f.Values[dynamo.ChannelMx] = m.X / m0
	f.Values[dynamo.ChannelMy] = m.Y / m0
	f.Values[dynamo.ChannelMz] = m.Z / m0
}

func magnetizationChannels() []string {
	return []string{dynamo.ChannelMx, dynamo.ChannelMy, dynamo.ChannelMz}
}

// B1Length scales an RF amplitude to its arrow length.
func B1Length(b1 float64) float64 {
	return (b1 / physics.MaxB1) * ArrowLength * 0.75
}

// B0Length scales a main field to its arrow length.
func B0Length(b0 float64) float64 {
	return (b0 / physics.MaxB0) * ArrowLength
}

// phasePath returns integer-degree arc points from 0 to phase at the given radius.
func phasePath(phase, radius float64) []r3.Vec {
	n := int(math.Round(phase))
	if n < 0 {
		n = 0
	}
	path := make([]r3.Vec, 0, n+1)
	for deg := 0; deg <= n; deg++ {
		path = append(path, physics.Polar(radius, physics.Radians(float64(deg))))
	}
	return path
}

// PathLabel is where the phase label sits: the arc midpoint pushed out by 1.4.
func PathLabel(path []r3.Vec) r3.Vec {
	if len(path) == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1.4, path[len(path)/2])
}
