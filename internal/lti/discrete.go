package lti

import (
	"fmt"
	"math"

	"github.com/san-kum/ltisim/internal/analysis"
	"github.com/san-kum/ltisim/internal/poly"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"
)

const (
	defaultResponseSamples = 100
	defaultFreqrespPoints  = 10000
	defaultBodePoints      = 100
)

// Dlsim simulates the discrete system sys driven by u, one row per sample.
//
// Without t, u is taken to be sampled at the system period and the output
// has len(u) samples. With t, u[i] is the input at time t[i]; the output
// covers floor(t[-1]/dt)+1 samples and u is linearly interpolated onto
// them. Output times before t[0] extend the first input segment linearly.
// Inputs that change faster than dt are not resolved. x0 defaults to zero.
func Dlsim(sys *System, u any, t []float64, x0 []float64) (*Result, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", ErrInvalidArgument)
	}
	if !sys.IsDiscrete() {
		return nil, fmt.Errorf("%w: dlsim can only be used with discrete-time systems", ErrNotDiscreteTime)
	}
	ssys, err := sys.AsSS()
	if err != nil {
		return nil, err
	}
	ss := ssys.ss

	um, err := toSignal(u)
	if err != nil {
		return nil, err
	}
	if err := checkSignal(um, sys.Inputs()); err != nil {
		return nil, err
	}
	rows, _ := um.Dims()
	dt := sys.tb.Period()

	samples := rows
	if t != nil {
		if len(t) != rows {
			return nil, fmt.Errorf("%w: %d time points for %d input samples", ErrIncompatibleDimensions, len(t), rows)
		}
		samples = int(math.Floor(t[len(t)-1]/dt)) + 1
		if samples < 1 {
			return nil, fmt.Errorf("%w: final time %v precedes the first sample", ErrInvalidArgument, t[len(t)-1])
		}
	}
	tout := timeGrid(samples, dt)

	ud := um
	if t != nil {
		if ud, err = resample(um, t, tout); err != nil {
			return nil, err
		}
	}

	n, _ := ss.A.Dims()
	p, _ := ss.C.Dims()
	x, err := initialState(x0, n)
	if err != nil {
		return nil, err
	}

	xout := mat.NewDense(samples, n, nil)
	yout := mat.NewDense(samples, p, nil)
	var next, bu, y, du mat.VecDense
	for i := 0; i < samples; i++ {
		ui := ud.RowView(i)
		xout.SetRow(i, x.RawVector().Data)

		y.MulVec(ss.C, x)
		du.MulVec(ss.D, ui)
		y.AddVec(&y, &du)
		yout.SetRow(i, y.RawVector().Data)

		if i == samples-1 {
			break
		}
		next.MulVec(ss.A, x)
		bu.MulVec(ss.B, ui)
		next.AddVec(&next, &bu)
		x.CopyVec(&next)
	}

	res := &Result{T: tout, Y: yout}
	if sys.kind == KindSS {
		res.X = xout
	}
	return res, nil
}

// timeGrid returns samples points evenly spaced from 0 to (samples-1)*dt.
func timeGrid(samples int, dt float64) []float64 {
	t := make([]float64, samples)
	if samples > 1 {
		floats.Span(t, 0, float64(samples-1)*dt)
	}
	return t
}

// resample interpolates each input column linearly at the query times.
// Queries past the ends extend the first or last segment.
func resample(u *mat.Dense, t, query []float64) (*mat.Dense, error) {
	rows, m := u.Dims()
	out := mat.NewDense(len(query), m, nil)
	if rows == 1 {
		for i := range query {
			out.SetRow(i, u.RawRowView(0))
		}
		return out, nil
	}
	last := rows - 1
	for j := 0; j < m; j++ {
		col := mat.Col(nil, j, u)
		var pl interp.PiecewiseLinear
		if err := pl.Fit(t, col); err != nil {
			return nil, fmt.Errorf("%w: interpolating input: %v", ErrInvalidArgument, err)
		}
		for i, q := range query {
			switch {
			case q < t[0]:
				out.Set(i, j, extend(t[0], t[1], col[0], col[1], q))
			case q > t[last]:
				out.Set(i, j, extend(t[last-1], t[last], col[last-1], col[last], q))
			default:
				out.Set(i, j, pl.Predict(q))
			}
		}
	}
	return out, nil
}

// extend evaluates the line through (t0, u0) and (t1, u1) at q.
func extend(t0, t1, u0, u1, q float64) float64 {
	return u0 + (u1-u0)*(q-t0)/(t1-t0)
}

// Dimpulse returns the response of sys to a unit impulse on each input in
// turn. n defaults to 100 samples when t is nil.
func Dimpulse(sys *System, x0, t []float64, n int) (*MultiResult, error) {
	return discreteResponses(sys, x0, t, n, func(u *mat.Dense, channel int) {
		u.Set(0, channel, 1)
	})
}

// Dstep returns the response of sys to a unit step on each input in turn.
func Dstep(sys *System, x0, t []float64, n int) (*MultiResult, error) {
	return discreteResponses(sys, x0, t, n, func(u *mat.Dense, channel int) {
		rows, _ := u.Dims()
		for i := 0; i < rows; i++ {
			u.Set(i, channel, 1)
		}
	})
}

func discreteResponses(sys *System, x0, t []float64, n int, fill func(u *mat.Dense, channel int)) (*MultiResult, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", ErrInvalidArgument)
	}
	if !sys.IsDiscrete() {
		return nil, fmt.Errorf("%w: only discrete-time systems have sampled responses", ErrNotDiscreteTime)
	}
	ssys, err := sys.AsSS()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = defaultResponseSamples
	}
	if t == nil {
		t = sampleTimes(n, sys.tb.Period())
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("%w: empty time vector", ErrInvalidArgument)
	}

	m := ssys.Inputs()
	res := &MultiResult{Y: make([]*mat.Dense, 0, m)}
	for i := 0; i < m; i++ {
		u := mat.NewDense(len(t), m, nil)
		fill(u, i)
		out, err := Dlsim(ssys, u, t, x0)
		if err != nil {
			return nil, err
		}
		res.T = out.T
		res.Y = append(res.Y, out.Y)
	}
	return res, nil
}

// sampleTimes returns n points k*dt, the grid linspace(0, n*dt, n) without
// its endpoint.
func sampleTimes(n int, dt float64) []float64 {
	step := float64(n) * dt / float64(n)
	t := make([]float64, n)
	for k := range t {
		t[k] = float64(k) * step
	}
	return t
}

// Dfreqresp evaluates the frequency response of a SISO discrete system at
// w in radians per sample. When w is nil, n points (default 10000) are
// spread over [0, pi), or [0, 2*pi) when whole is set.
func Dfreqresp(sys *System, w []float64, n int, whole bool) (*FreqResponse, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", ErrInvalidArgument)
	}
	if !sys.IsDiscrete() {
		return nil, fmt.Errorf("%w: dfreqresp can only be used with discrete-time systems", ErrNotDiscreteTime)
	}
	if n <= 0 {
		n = defaultFreqrespPoints
	}

	fsys := sys
	if sys.kind == KindSS {
		var err error
		if fsys, err = sys.AsTF(); err != nil {
			return nil, err
		}
	}
	if !fsys.IsSISO() {
		return nil, fmt.Errorf("%w: dfreqresp requires a SISO system, got %d inputs and %d outputs",
			ErrUnsupportedSystemKind, fsys.Inputs(), fsys.Outputs())
	}

	var (
		wout []float64
		h    []complex128
		err  error
	)
	switch fsys.kind {
	case KindTF:
		num, den := zToZinv(fsys.tf.Num[0][0], fsys.tf.Den)
		wout, h, err = analysis.Freqz(num, den, w, n, whole)
	case KindZPK:
		wout, h, err = analysis.FreqzZPK(fsys.zpk.Zeros[0], fsys.zpk.Poles, fsys.zpk.Gain[0], w, n, whole)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSystemKind, fsys.kind)
	}
	if err != nil {
		return nil, wrap(err)
	}
	return &FreqResponse{W: wout, H: h}, nil
}

// zToZinv restates polynomials in descending powers of z as ascending
// powers of 1/z by left-padding the shorter one.
func zToZinv(num, den []float64) ([]float64, []float64) {
	n := max(len(num), len(den))
	return poly.PadLeft(num, n), poly.PadLeft(den, n)
}

// Dbode returns the Bode data of a SISO discrete system. Frequencies are
// converted from radians per sample to radians per time unit; an
// unspecified sample period counts as 1.
func Dbode(sys *System, w []float64, n int) (*BodeData, error) {
	if n <= 0 {
		n = defaultBodePoints
	}
	fr, err := Dfreqresp(sys, w, n, false)
	if err != nil {
		return nil, err
	}
	dt := sys.tb.Period()
	wout := make([]float64, len(fr.W))
	for i, v := range fr.W {
		wout[i] = v / dt
	}
	return bodeData(wout, fr.H), nil
}

func bodeData(w []float64, h []complex128) *BodeData {
	return &BodeData{
		W:     w,
		Mag:   analysis.MagnitudeDB(h),
		Phase: analysis.Degrees(analysis.Unwrap(analysis.Angles(h))),
	}
}
