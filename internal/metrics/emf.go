package metrics

import (
	"math"

	"github.com/san-kum/mrilab/internal/dynamo"
)

// EMFConsistency checks EMF = -dΦ/dτ on consecutive frames with a central
// difference, τ = step/scale. Value is the worst mismatch relative to the
// largest EMF seen, so it only measures the difference scheme's error
// (about ω²/6 for a rate of ω rad per step).
type EMFConsistency struct {
	scale float64

	flux    [3]float64
	emf     [3]float64
	samples int

	worst float64
	peak  float64
}

func NewEMFConsistency(scale float64) *EMFConsistency {
	return &EMFConsistency{scale: scale}
}

func (e *EMFConsistency) Name() string { return "emf_consistency" }

func (e *EMFConsistency) Observe(f dynamo.Frame) {
	phi, ok1 := f.Values[dynamo.ChannelFlux]
	emf, ok2 := f.Values[dynamo.ChannelEMF]
	if !ok1 || !ok2 {
		return
	}
	e.flux[0], e.flux[1], e.flux[2] = e.flux[1], e.flux[2], phi
	e.emf[0], e.emf[1], e.emf[2] = e.emf[1], e.emf[2], emf
	e.samples++
	e.peak = math.Max(e.peak, math.Abs(emf))

	if e.samples < 3 {
		return
	}
	numeric := -(e.flux[2] - e.flux[0]) / 2 * e.scale
	e.worst = math.Max(e.worst, math.Abs(e.emf[1]-numeric))
}

func (e *EMFConsistency) Value() float64 {
	if e.peak == 0 {
		return 0
	}
	return e.worst / e.peak
}

func (e *EMFConsistency) Reset() {
	*e = EMFConsistency{scale: e.scale}
}
