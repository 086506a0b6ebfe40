package lti

import (
	"fmt"
	"math"

	"github.com/san-kum/ltisim/internal/analysis"
	"github.com/san-kum/ltisim/internal/integrators"
	"github.com/san-kum/ltisim/internal/matx"
	"github.com/san-kum/ltisim/internal/poly"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Hold selects how the input behaves between samples in Lsim.
type Hold int

const (
	// FirstOrderHold interpolates the input linearly between samples.
	FirstOrderHold Hold = iota
	// ZeroOrderHold keeps each input sample until the next one.
	ZeroOrderHold
)

// LsimOptions configures LsimWith. An empty Integrator propagates the state
// with the matrix exponential; otherwise the named integrator from package
// integrators is used.
type LsimOptions struct {
	Hold       Hold
	Integrator string
}

// Lsim simulates a continuous system over the equally spaced times t with
// a first-order hold on u. A nil u gives the free response from x0.
func Lsim(sys *System, u any, t, x0 []float64) (*Result, error) {
	return LsimWith(sys, u, t, x0, LsimOptions{})
}

// LsimWith is Lsim with an explicit hold and propagation method.
func LsimWith(sys *System, u any, t, x0 []float64, opts LsimOptions) (*Result, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", ErrInvalidArgument)
	}
	if sys.IsDiscrete() {
		return nil, fmt.Errorf("%w: lsim can only be used with continuous-time systems", ErrNotContinuousTime)
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("%w: empty time vector", ErrInvalidArgument)
	}
	if t[0] < 0 {
		return nil, fmt.Errorf("%w: initial time must be nonnegative", ErrInvalidArgument)
	}
	ssys, err := sys.AsSS()
	if err != nil {
		return nil, err
	}
	ss := ssys.ss
	n, _ := ss.A.Dims()
	m := ssys.Inputs()

	um, err := toSignal(u)
	if err != nil {
		return nil, err
	}
	noInput := um == nil || allZero(um)
	if um != nil {
		if rows, _ := um.Dims(); rows != len(t) {
			return nil, fmt.Errorf("%w: input has %d samples for %d time points", ErrIncompatibleDimensions, rows, len(t))
		}
		if err := checkSignal(um, m); err != nil {
			return nil, err
		}
	}

	x, err := initialState(x0, n)
	if err != nil {
		return nil, err
	}
	if t[0] > 0 {
		var at, e mat.Dense
		at.Scale(t[0], ss.A)
		e.Exp(&at)
		x.MulVec(&e, mat.VecDenseCopyOf(x))
	}

	xout := mat.NewDense(len(t), n, nil)
	xout.SetRow(0, x.RawVector().Data)
	if len(t) > 1 {
		dt := t[1] - t[0]
		if !evenlySpaced(t, dt) {
			return nil, ErrUnevenTimeGrid
		}
		if opts.Integrator != "" {
			err = propagateIntegrator(ss, um, noInput, t, xout, opts)
		} else {
			err = propagateExact(ss, um, noInput, dt, xout, opts.Hold)
		}
		if err != nil {
			return nil, err
		}
	}

	var yout mat.Dense
	yout.Mul(xout, ss.C.T())
	if !noInput {
		var du mat.Dense
		du.Mul(um, ss.D.T())
		yout.Add(&yout, &du)
	}
	res := &Result{T: append([]float64(nil), t...), Y: &yout}
	if sys.kind == KindSS {
		res.X = xout
	}
	return res, nil
}

// propagateExact advances the state with the matrix exponential of the
// augmented system, which is exact for the chosen hold.
func propagateExact(ss *SS, u *mat.Dense, noInput bool, dt float64, xout *mat.Dense, hold Hold) error {
	steps, n := xout.Dims()
	m := colsOf(ss.B)
	x := mat.NewVecDense(n, append([]float64(nil), xout.RawRowView(0)...))
	var next, tmp mat.VecDense

	if noInput {
		var at, phi mat.Dense
		at.Scale(dt, ss.A)
		phi.Exp(&at)
		for i := 1; i < steps; i++ {
			next.MulVec(&phi, x)
			xout.SetRow(i, next.RawVector().Data)
			x.CopyVec(&next)
		}
		return nil
	}

	var ad, bd0, bd1 *mat.Dense
	switch hold {
	case ZeroOrderHold:
		em, err := matx.Block([][]mat.Matrix{
			{ss.A, ss.B},
			{matx.Zeros(m, n), matx.Zeros(m, m)},
		})
		if err != nil {
			return wrap(err)
		}
		em.Scale(dt, em)
		var e mat.Dense
		e.Exp(em)
		ad, bd0 = matx.Sub(&e, 0, n, 0, n), matx.Sub(&e, 0, n, n, n+m)
	default:
		top, err := matx.HStack(ss.A, ss.B, matx.Zeros(n, m))
		if err != nil {
			return wrap(err)
		}
		top.Scale(dt, top)
		mid, err := matx.HStack(matx.Zeros(m, n+m), matx.Eye(m, m, 0))
		if err != nil {
			return wrap(err)
		}
		em, err := matx.VStack(top, mid, matx.Zeros(m, n+2*m))
		if err != nil {
			return wrap(err)
		}
		var e mat.Dense
		e.Exp(em)
		ad = matx.Sub(&e, 0, n, 0, n)
		bd1 = matx.Sub(&e, 0, n, n+m, n+2*m)
		bd0 = matx.Sub(&e, 0, n, n, n+m)
		bd0.Sub(bd0, bd1)
	}

	for i := 1; i < steps; i++ {
		next.MulVec(ad, x)
		tmp.MulVec(bd0, u.RowView(i-1))
		next.AddVec(&next, &tmp)
		if bd1 != nil {
			tmp.MulVec(bd1, u.RowView(i))
			next.AddVec(&next, &tmp)
		}
		xout.SetRow(i, next.RawVector().Data)
		x.CopyVec(&next)
	}
	return nil
}

// stateEquation adapts x' = Ax + Bu to the integrators.System interface.
// The input is read from the held signal at time t; the u argument of
// Derive is ignored.
type stateEquation struct {
	ss      *SS
	hold    Hold
	t0, dt  float64
	u0, u1  []float64
	scratch mat.VecDense
}

func (s *stateEquation) StateDim() int { return rowsOf(s.ss.A) }
func (s *stateEquation) InputDim() int { return colsOf(s.ss.B) }

func (s *stateEquation) Derive(x integrators.State, _ integrators.Input, t float64) integrators.State {
	n := len(x)
	dx := mat.NewVecDense(n, nil)
	dx.MulVec(s.ss.A, mat.NewVecDense(n, x))
	if s.u0 != nil {
		u := make([]float64, len(s.u0))
		copy(u, s.u0)
		if s.hold == FirstOrderHold && s.u1 != nil && s.dt > 0 {
			frac := (t - s.t0) / s.dt
			for j := range u {
				u[j] += frac * (s.u1[j] - s.u0[j])
			}
		}
		s.scratch.Reset()
		s.scratch.MulVec(s.ss.B, mat.NewVecDense(len(u), u))
		dx.AddVec(dx, &s.scratch)
	}
	return integrators.State(dx.RawVector().Data)
}

const integratorSubsteps = 10

func propagateIntegrator(ss *SS, u *mat.Dense, noInput bool, t []float64, xout *mat.Dense, opts LsimOptions) error {
	integ, err := integrators.ByName(opts.Integrator)
	if err != nil {
		return wrap(err)
	}
	eq := &stateEquation{ss: ss, hold: opts.Hold}
	x := integrators.State(xout.RawRowView(0)).Clone()
	steps, _ := xout.Dims()
	for i := 1; i < steps; i++ {
		eq.t0, eq.dt = t[i-1], t[i]-t[i-1]
		if !noInput {
			eq.u0, eq.u1 = u.RawRowView(i-1), u.RawRowView(i)
		}
		if x, err = integrators.Advance(integ, eq, x, nil, t[i-1], t[i], eq.dt/integratorSubsteps); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		xout.SetRow(i, x)
	}
	return nil
}

func evenlySpaced(t []float64, dt float64) bool {
	for i := 1; i < len(t); i++ {
		d := t[i] - t[i-1]
		if math.Abs(d-dt) > 1e-8+1e-5*math.Abs(dt) {
			return false
		}
	}
	return true
}

func allZero(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}

// defaultResponseTimes spans seven time constants of the slowest pole.
func defaultResponseTimes(a mat.Matrix, n int) ([]float64, error) {
	var eig mat.Eigen
	if !eig.Factorize(a, mat.EigenNone) {
		return nil, fmt.Errorf("%w: eigenvalues of A did not converge", ErrDegenerateSystem)
	}
	r := math.Inf(1)
	for _, v := range eig.Values(nil) {
		r = math.Min(r, math.Abs(real(v)))
	}
	if r == 0 {
		r = 1
	}
	t := make([]float64, n)
	if n > 1 {
		floats.Span(t, 0, 7/r)
	}
	return t, nil
}

// Impulse returns the impulse response of a continuous system for each
// input channel. When t is nil, n points (default 100) span seven time
// constants of the slowest pole.
func Impulse(sys *System, x0, t []float64, n int) (*MultiResult, error) {
	ssys, t, err := continuousResponseSetup(sys, t, n)
	if err != nil {
		return nil, err
	}
	nx, _ := ssys.ss.A.Dims()
	if x0 != nil && len(x0) != nx {
		return nil, fmt.Errorf("%w: initial state has %d entries, system has %d states", ErrIncompatibleDimensions, len(x0), nx)
	}
	m := ssys.Inputs()
	res := &MultiResult{T: t, Y: make([]*mat.Dense, 0, m)}
	for i := 0; i < m; i++ {
		start := matx.Col(ssys.ss.B, i)
		if x0 != nil {
			floats.Add(start, x0)
		}
		out, err := LsimWith(ssys, nil, t, start, LsimOptions{Hold: ZeroOrderHold})
		if err != nil {
			return nil, err
		}
		res.Y = append(res.Y, out.Y)
	}
	return res, nil
}

// StepResponse returns the unit step response of a continuous system for
// each input channel.
func StepResponse(sys *System, x0, t []float64, n int) (*MultiResult, error) {
	ssys, t, err := continuousResponseSetup(sys, t, n)
	if err != nil {
		return nil, err
	}
	m := ssys.Inputs()
	res := &MultiResult{T: t, Y: make([]*mat.Dense, 0, m)}
	for i := 0; i < m; i++ {
		u := mat.NewDense(len(t), m, nil)
		for k := range t {
			u.Set(k, i, 1)
		}
		out, err := LsimWith(ssys, u, t, x0, LsimOptions{Hold: ZeroOrderHold})
		if err != nil {
			return nil, err
		}
		res.Y = append(res.Y, out.Y)
	}
	return res, nil
}

func continuousResponseSetup(sys *System, t []float64, n int) (*System, []float64, error) {
	if sys == nil {
		return nil, nil, fmt.Errorf("%w: nil system", ErrInvalidArgument)
	}
	if sys.IsDiscrete() {
		return nil, nil, fmt.Errorf("%w: use Dimpulse or Dstep for discrete systems", ErrNotContinuousTime)
	}
	ssys, err := sys.AsSS()
	if err != nil {
		return nil, nil, err
	}
	if n <= 0 {
		n = defaultResponseSamples
	}
	if t == nil {
		if t, err = defaultResponseTimes(ssys.ss.A, n); err != nil {
			return nil, nil, err
		}
	}
	return ssys, t, nil
}

// Freqresp evaluates the frequency response of a SISO continuous system at
// w in radians per time unit. When w is nil, n points (default 10000) are
// chosen around the poles and zeros.
func Freqresp(sys *System, w []float64, n int) (*FreqResponse, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", ErrInvalidArgument)
	}
	if sys.IsDiscrete() {
		return nil, fmt.Errorf("%w: use Dfreqresp for discrete systems", ErrNotContinuousTime)
	}
	if n <= 0 {
		n = defaultFreqrespPoints
	}
	fsys := sys
	if sys.kind == KindSS {
		var err error
		if fsys, err = sys.AsZPK(); err != nil {
			return nil, err
		}
	}
	if !fsys.IsSISO() {
		return nil, fmt.Errorf("%w: freqresp requires a SISO system, got %d inputs and %d outputs",
			ErrUnsupportedSystemKind, fsys.Inputs(), fsys.Outputs())
	}

	var (
		wout []float64
		h    []complex128
		err  error
	)
	if fsys.kind == KindTF {
		wout, h, err = analysis.Freqs(fsys.tf.Num[0][0], fsys.tf.Den, w, n)
	} else {
		wout, h, err = analysis.FreqsZPK(fsys.zpk.Zeros[0], fsys.zpk.Poles, fsys.zpk.Gain[0], w, n)
	}
	if err != nil {
		return nil, wrap(err)
	}
	return &FreqResponse{W: wout, H: h}, nil
}

// Bode returns the Bode data of a SISO continuous system.
func Bode(sys *System, w []float64, n int) (*BodeData, error) {
	if n <= 0 {
		n = defaultBodePoints
	}
	fr, err := Freqresp(sys, w, n)
	if err != nil {
		return nil, err
	}
	return bodeData(fr.W, fr.H), nil
}

// DCGain returns H(0) for continuous systems and H(1) for discrete ones,
// per output for a single input.
func DCGain(sys *System) ([]float64, error) {
	tf, err := sys.AsTF()
	if err != nil {
		return nil, err
	}
	if tf.Inputs() != 1 {
		return nil, fmt.Errorf("%w: DC gain of a %d-input system", ErrUnsupportedSystemKind, tf.Inputs())
	}
	at := complex(0, 0)
	if sys.IsDiscrete() {
		at = 1
	}
	gains := make([]float64, tf.Outputs())
	den := poly.Eval(tf.tf.Den, at)
	for i, row := range tf.tf.Num {
		gains[i] = real(poly.Eval(row[0], at) / den)
	}
	return gains, nil
}
