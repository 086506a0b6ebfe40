package lti

import (
	"fmt"

	"github.com/san-kum/ltisim/internal/convert"
)

// Methods lists the discretization methods accepted by Cont2Discrete.
func Methods() []string {
	ms := convert.Methods()
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m)
	}
	return out
}

// Cont2Discrete samples the continuous system sys with period dt and
// returns a discrete system of the same representation. method is one of
// Methods; the empty method is zoh. alpha is read by gbt only.
func Cont2Discrete(sys *System, dt float64, method string, alpha float64) (*System, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", ErrInvalidArgument)
	}
	if sys.IsDiscrete() {
		return nil, fmt.Errorf("%w: system is already discrete", ErrNotContinuousTime)
	}
	tb := Sampled(dt)
	if err := tb.validate(); err != nil {
		return nil, err
	}
	m, err := convert.ParseMethod(method)
	if err != nil {
		return nil, wrap(err)
	}
	ssys, err := sys.AsSS()
	if err != nil {
		return nil, err
	}
	ss := ssys.ss
	ad, bd, cd, dd, err := convert.Cont2Discrete(ss.A, ss.B, ss.C, ss.D, dt, m, alpha)
	if err != nil {
		return nil, wrap(err)
	}
	out := stateSpace(tb, ad, bd, cd, dd)
	if sys.kind == KindSS {
		return out, nil
	}
	return out.To(sys.kind)
}

// ToDiscrete is Cont2Discrete on the receiver.
func (s *System) ToDiscrete(dt float64, method string, alpha float64) (*System, error) {
	return Cont2Discrete(s, dt, method, alpha)
}

// Impulse returns the impulse response in the system's own time domain.
func (s *System) Impulse(x0, t []float64, n int) (*MultiResult, error) {
	if s.IsDiscrete() {
		return Dimpulse(s, x0, t, n)
	}
	return Impulse(s, x0, t, n)
}

// Step returns the step response in the system's own time domain.
func (s *System) Step(x0, t []float64, n int) (*MultiResult, error) {
	if s.IsDiscrete() {
		return Dstep(s, x0, t, n)
	}
	return StepResponse(s, x0, t, n)
}

// Output simulates the response to u with Dlsim or Lsim.
func (s *System) Output(u any, t, x0 []float64) (*Result, error) {
	if s.IsDiscrete() {
		return Dlsim(s, u, t, x0)
	}
	return Lsim(s, u, t, x0)
}

// Bode returns the Bode data with Dbode or Bode.
func (s *System) Bode(w []float64, n int) (*BodeData, error) {
	if s.IsDiscrete() {
		return Dbode(s, w, n)
	}
	return Bode(s, w, n)
}

// Freqresp returns the complex frequency response over the upper half of
// the unit circle or the positive imaginary axis.
func (s *System) Freqresp(w []float64, n int) (*FreqResponse, error) {
	if s.IsDiscrete() {
		return Dfreqresp(s, w, n, false)
	}
	return Freqresp(s, w, n)
}
