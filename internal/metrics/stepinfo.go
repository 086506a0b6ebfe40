package metrics

import (
	"errors"
	"math"
)

// ErrShortResponse indicates a response too short to characterize.
var ErrShortResponse = errors.New("metrics: step response needs at least two samples")

// SettlingBand is the relative band around the final value used for the
// settling time.
const SettlingBand = 0.02

// StepSummary characterizes one channel of a step response.
type StepSummary struct {
	FinalValue   float64
	Peak         float64
	PeakTime     float64
	Overshoot    float64 // percent above the final value
	RiseTime     float64 // 10% to 90% of the final value
	SettlingTime float64
}

// StepInfo summarizes the step response y sampled at t. The final sample is
// taken as the steady-state value. Rise time is NaN when the response never
// crosses 90% of it.
func StepInfo(t, y []float64) (StepSummary, error) {
	if len(t) < 2 || len(y) != len(t) {
		return StepSummary{}, ErrShortResponse
	}
	final := y[len(y)-1]
	s := StepSummary{FinalValue: final, Peak: y[0], PeakTime: t[0]}

	sign := 1.0
	if final < 0 {
		sign = -1
	}
	for i, v := range y {
		if sign*v > sign*s.Peak {
			s.Peak, s.PeakTime = v, t[i]
		}
	}
	if final != 0 && sign*(s.Peak-final) > 0 {
		s.Overshoot = 100 * (s.Peak - final) / final
	}

	s.RiseTime = math.NaN()
	lo, hi := -1.0, -1.0
	for i, v := range y {
		if lo < 0 && sign*v >= 0.1*sign*final {
			lo = t[i]
		}
		if hi < 0 && sign*v >= 0.9*sign*final {
			hi = t[i]
			break
		}
	}
	if lo >= 0 && hi >= 0 && final != 0 {
		s.RiseTime = hi - lo
	}

	band := SettlingBand * math.Abs(final)
	s.SettlingTime = t[0]
	for i := len(y) - 1; i >= 0; i-- {
		if math.Abs(y[i]-final) > band {
			if i+1 < len(t) {
				s.SettlingTime = t[i+1]
			}
			break
		}
	}
	return s, nil
}
