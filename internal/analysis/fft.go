package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// Spectrum returns the one-sided magnitude spectrum of a Hann-windowed,
// mean-removed copy of data. Bin k is k·sampleRate/len(data).
func Spectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}
	mean := stat.Mean(data, nil)
	windowed := make([]float64, n)
	for i, v := range data {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	out := fft.FFTReal(windowed)
	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(out[i])
	}
	return ps
}

// Frequencies returns the bin centres for a spectrum of n samples.
func Frequencies(n int, sampleRate float64) []float64 {
	if n < 2 {
		return nil
	}
	fs := make([]float64, n/2+1)
	for i := range fs {
		fs[i] = float64(i) * sampleRate / float64(n)
	}
	return fs
}

// DominantFrequency returns the strongest non-DC frequency, refined between
// bins by fitting a parabola through the peak and its neighbours.
func DominantFrequency(data []float64, sampleRate float64) float64 {
	ps := Spectrum(data)
	if len(ps) < 3 {
		return 0
	}

	peak := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if ps[peak] == 0 {
		return 0
	}

	delta := 0.0
	if peak < len(ps)-1 {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if den := a - 2*b + c; den != 0 {
			delta = 0.5 * (a - c) / den
		}
	}
	return (float64(peak) + delta) * sampleRate / float64(len(data))
}

// AngularRate converts a dominant frequency in cycles per step to radians
// per step.
func AngularRate(data []float64) float64 {
	return 2 * math.Pi * DominantFrequency(data, 1)
}
