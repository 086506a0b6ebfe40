package lti

import (
	"fmt"
	"math"
)

// Timebase tags a system as continuous or discrete. A discrete timebase has
// either a positive sample period or an unspecified one.
type Timebase struct {
	discrete bool
	known    bool
	dt       float64
}

// Continuous is the timebase of continuous-time systems.
var Continuous = Timebase{}

// Sampled returns a discrete timebase with sample period dt.
func Sampled(dt float64) Timebase {
	return Timebase{discrete: true, known: true, dt: dt}
}

// Unspecified returns a discrete timebase without a known sample period.
func Unspecified() Timebase {
	return Timebase{discrete: true}
}

func (tb Timebase) IsDiscrete() bool { return tb.discrete }

// Dt returns the sample period. ok is false for continuous systems and for
// an unspecified period.
func (tb Timebase) Dt() (dt float64, ok bool) {
	if !tb.discrete || !tb.known {
		return 0, false
	}
	return tb.dt, true
}

// Period returns the sample period, 1 when it is unspecified and 0 for
// continuous systems.
func (tb Timebase) Period() float64 {
	switch {
	case !tb.discrete:
		return 0
	case !tb.known:
		return 1
	default:
		return tb.dt
	}
}

// Equal reports whether two timebases describe the same time domain. An
// unspecified period only equals another unspecified period.
func (tb Timebase) Equal(other Timebase) bool {
	return tb == other
}

func (tb Timebase) String() string {
	switch {
	case !tb.discrete:
		return "continuous"
	case !tb.known:
		return "discrete (dt unspecified)"
	default:
		return fmt.Sprintf("discrete (dt=%g)", tb.dt)
	}
}

func (tb Timebase) validate() error {
	if !tb.discrete || !tb.known {
		return nil
	}
	if !(tb.dt > 0) || math.IsInf(tb.dt, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSamplePeriod, tb.dt)
	}
	return nil
}
