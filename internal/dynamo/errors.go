package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for parameter and session operations.
var (
	// ErrInvalidState indicates a frame or state containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside its declared domain.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownParameter indicates a parameter name the demo does not expose.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")

	// ErrUnknownMode indicates a reference frame or plot mode the demo does not offer.
	ErrUnknownMode = errors.New("dynamo: unknown mode")

	// ErrUnknownDemo indicates a demo name missing from the registry.
	ErrUnknownDemo = errors.New("dynamo: unknown demo")

	// ErrPlaying indicates a mutation that is only allowed while paused.
	ErrPlaying = errors.New("dynamo: not allowed while playing")

	// ErrContextCanceled indicates the run was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
