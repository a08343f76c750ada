package integrators

import "github.com/san-kum/mrilab/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	return x.Add(dyn.Derive(x, t).Scale(dt))
}

// New returns an integrator by name.
func New(name string) (dynamo.Integrator, bool) {
	switch name {
	case "rk4":
		return NewRK4(), true
	case "rk45":
		return NewRK45(), true
	case "euler":
		return NewEuler(), true
	}
	return nil, false
}

// Integrate advances x0 by steps of dt and returns every state including x0.
func Integrate(integ dynamo.Integrator, dyn dynamo.System, x0 dynamo.State, dt float64, steps int) []dynamo.State {
	out := make([]dynamo.State, 0, steps+1)
	x := x0.Clone()
	out = append(out, x)
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
		out = append(out, x)
	}
	return out
}
