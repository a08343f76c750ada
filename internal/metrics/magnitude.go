package metrics

import (
	"math"

	"github.com/san-kum/mrilab/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Magnitude is the mean |M| over the observed frames.
type Magnitude struct {
	name    string
	sum     float64
	samples int
}

func NewMagnitude() *Magnitude {
	return &Magnitude{name: "magnitude"}
}

func (m *Magnitude) Name() string { return m.name }

func (m *Magnitude) Observe(f dynamo.Frame) {
	v, ok := f.Vectors[dynamo.Magnetization]
	if !ok {
		return
	}
	m.sum += r3.Norm(v)
	m.samples++
}

func (m *Magnitude) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Magnitude) Reset() {
	m.sum = 0
	m.samples = 0
}

// MagnitudeDrift is the largest relative deviation of |M| from its first
// observed value. Closed-form precession should keep it at rounding level.
type MagnitudeDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewMagnitudeDrift() *MagnitudeDrift {
	return &MagnitudeDrift{name: "magnitude_drift"}
}

func (d *MagnitudeDrift) Name() string { return d.name }

func (d *MagnitudeDrift) Observe(f dynamo.Frame) {
	v, ok := f.Vectors[dynamo.Magnetization]
	if !ok {
		return
	}
	n := r3.Norm(v)
	if d.samples == 0 {
		d.initial = n
	}
	d.samples++

	if d.initial != 0 {
		d.maxDrift = math.Max(d.maxDrift, math.Abs(n-d.initial)/d.initial)
	}
}

func (d *MagnitudeDrift) Value() float64 { return d.maxDrift }

func (d *MagnitudeDrift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
