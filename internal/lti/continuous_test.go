package lti

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func firstOrder(t *testing.T) *System {
	t.Helper()
	return must(t)(New([]float64{1}, []float64{1, 1}))
}

func span(n int, lo, hi float64) []float64 {
	t := make([]float64, n)
	floats.Span(t, lo, hi)
	return t
}

func TestStepResponseFirstOrder(t *testing.T) {
	ts := span(51, 0, 5)
	res, err := StepResponse(firstOrder(t), nil, ts, 0)
	if err != nil {
		t.Fatalf("StepResponse failed: %v", err)
	}
	for k, tk := range ts {
		want := 1 - math.Exp(-tk)
		if got := res.Y[0].At(k, 0); math.Abs(got-want) > 1e-9 {
			t.Errorf("y(%.1f) = %v, want %v", tk, got, want)
		}
	}
}

func TestImpulseFirstOrder(t *testing.T) {
	ts := span(21, 0, 2)
	res, err := Impulse(firstOrder(t), nil, ts, 0)
	if err != nil {
		t.Fatalf("Impulse failed: %v", err)
	}
	for k, tk := range ts {
		if got, want := res.Y[0].At(k, 0), math.Exp(-tk); math.Abs(got-want) > 1e-9 {
			t.Errorf("y(%.1f) = %v, want %v", tk, got, want)
		}
	}
}

func TestDefaultResponseTimes(t *testing.T) {
	res, err := StepResponse(firstOrder(t), nil, nil, 0)
	if err != nil {
		t.Fatalf("StepResponse failed: %v", err)
	}
	if len(res.T) != defaultResponseSamples {
		t.Fatalf("got %d samples, want %d", len(res.T), defaultResponseSamples)
	}
	if got := res.T[len(res.T)-1]; math.Abs(got-7) > 1e-12 {
		t.Errorf("final time = %v, want seven time constants", got)
	}

	integrator := must(t)(New([]float64{1}, []float64{1, 0}))
	res, err = Impulse(integrator, nil, nil, 8)
	if err != nil {
		t.Fatalf("Impulse failed: %v", err)
	}
	if got := res.T[len(res.T)-1]; math.Abs(got-7) > 1e-12 {
		t.Errorf("final time for a pole at the origin = %v, want 7", got)
	}
}

func TestLsimFirstOrderHold(t *testing.T) {
	ts := span(41, 0, 4)
	res, err := Lsim(firstOrder(t), ts, ts, nil)
	if err != nil {
		t.Fatalf("Lsim failed: %v", err)
	}
	// The ramp response of 1/(s+1) is t - 1 + exp(-t).
	for k, tk := range ts {
		want := tk - 1 + math.Exp(-tk)
		if got := res.Y.At(k, 0); math.Abs(got-want) > 1e-9 {
			t.Errorf("y(%.1f) = %v, want %v", tk, got, want)
		}
	}
	if res.X != nil {
		t.Error("transfer function simulation returned states")
	}
}

func TestLsimZeroOrderHold(t *testing.T) {
	sys := must(t)(New([][]float64{{-1}}, [][]float64{{1}}, [][]float64{{1}}, nil))
	ts := []float64{0, 1, 2}
	res, err := LsimWith(sys, []float64{1, 0, 0}, ts, nil, LsimOptions{Hold: ZeroOrderHold})
	if err != nil {
		t.Fatalf("LsimWith failed: %v", err)
	}
	e := math.Exp(-1)
	want := []float64{0, 1 - e, (1 - e) * e}
	if diff := cmp.Diff(want, res.Output(0), approx); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if res.X == nil {
		t.Error("state-space simulation returned no states")
	}
}

func TestLsimFreeResponse(t *testing.T) {
	sys := must(t)(New([][]float64{{-2}}, [][]float64{{1}}, [][]float64{{3}}, nil))
	ts := []float64{1, 1.5, 2}
	res, err := Lsim(sys, nil, ts, []float64{1})
	if err != nil {
		t.Fatalf("Lsim failed: %v", err)
	}
	// A nonzero start time propagates x0 from t=0 first.
	for k, tk := range ts {
		if got, want := res.Y.At(k, 0), 3*math.Exp(-2*tk); math.Abs(got-want) > 1e-12 {
			t.Errorf("y(%v) = %v, want %v", tk, got, want)
		}
	}
}

func TestLsimIntegrators(t *testing.T) {
	ts := span(31, 0, 3)
	u := make([]float64, len(ts))
	for i := range u {
		u[i] = 1
	}
	exact, err := LsimWith(firstOrder(t), u, ts, nil, LsimOptions{Hold: ZeroOrderHold})
	if err != nil {
		t.Fatalf("exact propagation failed: %v", err)
	}

	for _, name := range []string{"rk4", "rk45"} {
		t.Run(name, func(t *testing.T) {
			res, err := LsimWith(firstOrder(t), u, ts, nil, LsimOptions{Hold: ZeroOrderHold, Integrator: name})
			if err != nil {
				t.Fatalf("LsimWith failed: %v", err)
			}
			opt := cmpopts.EquateApprox(0, 1e-6)
			if diff := cmp.Diff(exact.Output(0), res.Output(0), opt); diff != "" {
				t.Errorf("integrated output drifts from the exact one (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := LsimWith(firstOrder(t), u, ts, nil, LsimOptions{Integrator: "leapfrog"}); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestLsimErrors(t *testing.T) {
	cont := firstOrder(t)
	disc := must(t)(NewDiscrete(Sampled(1), []float64{1}, []float64{1, -0.5}))

	tests := []struct {
		name string
		sys  *System
		u    any
		t    []float64
		err  error
	}{
		{"discrete", disc, []float64{1, 1}, []float64{0, 1}, ErrNotContinuousTime},
		{"uneven", cont, []float64{1, 1, 1}, []float64{0, 1, 3}, ErrUnevenTimeGrid},
		{"empty time", cont, nil, nil, ErrInvalidArgument},
		{"negative start", cont, []float64{1, 1}, []float64{-1, 0}, ErrInvalidArgument},
		{"input length", cont, []float64{1}, []float64{0, 1}, ErrIncompatibleDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Lsim(tt.sys, tt.u, tt.t, nil); !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}

	if _, err := StepResponse(disc, nil, nil, 0); !errors.Is(err, ErrNotContinuousTime) {
		t.Errorf("StepResponse: expected ErrNotContinuousTime, got %v", err)
	}
}

func TestFreqresp(t *testing.T) {
	w := []float64{0, 1, 10}
	want := make([]complex128, len(w))
	for i, wi := range w {
		want[i] = 1 / complex(1, wi)
	}

	tf := firstOrder(t)
	ss := must(t)(tf.ToSS())
	zpk := must(t)(tf.ToZPK())
	for _, sys := range []*System{tf, ss, zpk} {
		fr, err := Freqresp(sys, w, 0)
		if err != nil {
			t.Fatalf("Freqresp(%v) failed: %v", sys.Kind(), err)
		}
		for i := range w {
			if cmplx.Abs(fr.H[i]-want[i]) > 1e-9 {
				t.Errorf("%v: H(j%v) = %v, want %v", sys.Kind(), w[i], fr.H[i], want[i])
			}
		}
	}

	fr, err := Freqresp(tf, nil, 5)
	if err != nil {
		t.Fatalf("Freqresp failed: %v", err)
	}
	if len(fr.W) != 5 || math.Abs(fr.W[0]-0.01) > 1e-12 || math.Abs(fr.W[4]-10) > 1e-9 {
		t.Errorf("default grid = %v, want 5 points from 0.01 to 10", fr.W)
	}
}

func TestBodeFirstOrder(t *testing.T) {
	b, err := Bode(firstOrder(t), []float64{1}, 0)
	if err != nil {
		t.Fatalf("Bode failed: %v", err)
	}
	if math.Abs(b.Mag[0]+10*math.Log10(2)) > 1e-9 {
		t.Errorf("magnitude = %v dB, want -3.01", b.Mag[0])
	}
	if math.Abs(b.Phase[0]+45) > 1e-9 {
		t.Errorf("phase = %v deg, want -45", b.Phase[0])
	}

	second := must(t)(New([]float64{1}, []float64{1, 0.2, 1}))
	b, err = Bode(second, []float64{0.5, 1, 2, 4}, 0)
	if err != nil {
		t.Fatalf("Bode failed: %v", err)
	}
	if last := b.Phase[len(b.Phase)-1]; last > -150 || last < -180 {
		t.Errorf("phase past resonance = %v, want close to -180", last)
	}
}

func TestDCGain(t *testing.T) {
	cont := must(t)(New([]float64{2}, []float64{1, 4}))
	g, err := DCGain(cont)
	if err != nil {
		t.Fatalf("DCGain failed: %v", err)
	}
	if diff := cmp.Diff([]float64{0.5}, g, approx); diff != "" {
		t.Errorf("continuous DC gain mismatch (-want +got):\n%s", diff)
	}

	disc := must(t)(NewDiscrete(Sampled(1), [][]float64{{1}, {3}}, []float64{1, -0.5}))
	g, err = DCGain(disc)
	if err != nil {
		t.Fatalf("DCGain failed: %v", err)
	}
	if diff := cmp.Diff([]float64{2, 6}, g, approx); diff != "" {
		t.Errorf("discrete DC gain mismatch (-want +got):\n%s", diff)
	}

	mimo := must(t)(New(mat.NewDense(1, 1, []float64{-1}), mat.NewDense(1, 2, []float64{1, 1}), mat.NewDense(1, 1, []float64{1}), nil))
	if _, err := DCGain(mimo); !errors.Is(err, ErrUnsupportedSystemKind) {
		t.Errorf("expected ErrUnsupportedSystemKind, got %v", err)
	}
}
