package metrics

import (
	"math"

	"github.com/san-kum/mrilab/internal/dynamo"
)

// PeakAbs is the largest |value| seen on one channel.
type PeakAbs struct {
	channel string
	peak    float64
}

func NewPeakAbs(channel string) *PeakAbs {
	return &PeakAbs{channel: channel}
}

func (p *PeakAbs) Name() string { return "peak_" + p.channel }

func (p *PeakAbs) Observe(f dynamo.Frame) {
	if v, ok := f.Values[p.channel]; ok {
		p.peak = math.Max(p.peak, math.Abs(v))
	}
}

func (p *PeakAbs) Value() float64 { return p.peak }
func (p *PeakAbs) Reset()         { p.peak = 0 }

// MeanAbs is the mean |value| of one channel.
type MeanAbs struct {
	channel string
	sum     float64
	samples int
}

func NewMeanAbs(channel string) *MeanAbs {
	return &MeanAbs{channel: channel}
}

func (m *MeanAbs) Name() string { return "mean_abs_" + m.channel }

func (m *MeanAbs) Observe(f dynamo.Frame) {
	v, ok := f.Values[m.channel]
	if !ok {
		return
	}
	m.sum += math.Abs(v)
	m.samples++
}

func (m *MeanAbs) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanAbs) Reset() {
	m.sum = 0
	m.samples = 0
}
