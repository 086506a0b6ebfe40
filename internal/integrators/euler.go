package integrators

// Euler is the explicit first-order method.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys System, x State, u Input, t, dt float64) State {
	dx := sys.Derive(x, u, t)
	next := make(State, len(x))
	for i := range x {
		next[i] = x[i] + dt*dx[i]
	}
	return next
}
