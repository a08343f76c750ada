// Package analysis inspects recorded series after a run.
//
//   - [Spectrum] and [DominantFrequency]: FFT magnitude spectrum of a channel
//   - [Crossings] and [Period]: upward threshold crossings and their spacing
//   - [Portrait]: one channel against another, rendered as text
//
// The precession demo turns by ω_s = 0.2094395 rad per step at 3 T, so its
// transverse channels should show one cycle every 30 steps:
//
//	f := analysis.DominantFrequency(res.Series["Mx"], 1)
//	// f ≈ 1/30 cycles per step
package analysis
