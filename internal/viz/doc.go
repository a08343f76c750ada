// Package viz renders demos in the terminal.
//
// [Model] is a Bubble Tea program driving a [sim.Session]: the vectors of the
// current frame are projected onto a Braille [Canvas] by an orbiting
// [Camera], arrow lengths ease towards their targets on harmonica springs,
// and the recorded channels are plotted with asciigraph.
//
// # Key Bindings
//
//	Space - Play/Pause
//	R     - Reset to step 0
//	M     - Switch reference frame (resonant, off-resonant)
//	Tab   - Select parameter
//	↑/↓   - Step the selected parameter through its allowed values
//	←/→   - Orbit the camera
//	T     - Cycle color themes
//	?     - Show help overlay
//
// The Fourier and gradient demos have no time axis and are drawn once by
// [FourierView] and [GradientView].
package viz
