package integrators

// RK4 is the classical fourth-order Runge-Kutta method. It keeps stage
// buffers between calls and is not safe for concurrent use.
type RK4 struct {
	k     [4]State
	stage State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) resize(n int) {
	if len(r.stage) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(State, n)
	}
	r.stage = make(State, n)
}

func (r *RK4) Step(sys System, x State, u Input, t, dt float64) State {
	n := len(x)
	r.resize(n)

	offsets := [4]float64{0, 0.5, 0.5, 1}
	for s := 0; s < 4; s++ {
		in := x
		if s > 0 {
			for i := 0; i < n; i++ {
				r.stage[i] = x[i] + offsets[s]*dt*r.k[s-1][i]
			}
			in = r.stage
		}
		copy(r.k[s], sys.Derive(in, u, t+offsets[s]*dt))
	}

	next := make(State, n)
	for i := 0; i < n; i++ {
		next[i] = x[i] + dt/6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return next
}
