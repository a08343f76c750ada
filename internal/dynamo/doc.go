// Package dynamo provides the core primitives shared by the MRI teaching demos.
//
// Every time-evolving demo is an [Evolver]: a pure function from an integer
// step count to a [Frame] of named vectors, scalar channel values and label
// text. The step count is owned by a [Clock], whose [Timing] converts steps
// into the graph time axis t_g = step * TimeFactor / FrameRate.
//
//   - [Configurable]: parameter store with validated setters
//   - [ResetPolicy]: which parameter changes rewind the demo
//   - [Moded]: demos with a selectable reference frame
//   - [Lifecycle]: play/pause hooks
//   - [System] and [Integrator]: ODE primitives used for cross-checks
//
// # Example
//
//	p := models.NewPrecession()
//	f := p.Evolve(15)
//	m := f.Vectors[dynamo.Magnetization]
//
// # Thread Safety
//
// Evolvers and clocks are NOT thread-safe. Parameter changes and evolution
// steps must be serialized onto one goroutine, which is what sim.Session does.
package dynamo
