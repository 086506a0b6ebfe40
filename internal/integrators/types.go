// Package integrators provides explicit one-step ODE solvers for the state
// equation x' = f(x, u, t) of a continuous system.
package integrators

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrUnknown indicates an integrator name with no registered solver.
	ErrUnknown = errors.New("integrators: unknown integrator")

	// ErrStepTooSmall indicates the adaptive step fell below the minimum.
	ErrStepTooSmall = errors.New("integrators: adaptive step below minimum")

	// ErrStepRejected indicates an adaptive step whose error estimate
	// exceeded the tolerance.
	ErrStepRejected = errors.New("integrators: step rejected")

	// ErrInvalidState indicates a NaN or Inf entry in the state.
	ErrInvalidState = errors.New("integrators: invalid state (NaN or Inf detected)")
)

// State is a state vector.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Input is an input vector applied to a system.
type Input []float64

// System is a continuous state equation.
type System interface {
	Derive(x State, u Input, t float64) State
	StateDim() int
	InputDim() int
}

// Integrator advances a state by one step of length dt.
type Integrator interface {
	Step(sys System, x State, u Input, t, dt float64) State
}

// Adaptive integrators also report the step size to use next.
type Adaptive interface {
	Integrator
	StepAdaptive(sys System, x State, u Input, t, dt, tol float64) (State, float64, error)
}

var registry = map[string]func() Integrator{
	"euler": func() Integrator { return NewEuler() },
	"rk4":   func() Integrator { return NewRK4() },
	"rk45":  func() Integrator { return NewRK45() },
}

// ByName returns a fresh integrator for name.
func ByName(name string) (Integrator, error) {
	mk, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return mk(), nil
}

// Names lists the registered integrators in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Advance integrates from t0 to t1 with steps no longer than maxStep.
// Adaptive integrators choose their own substeps within that bound.
func Advance(integ Integrator, sys System, x State, u Input, t0, t1, maxStep float64) (State, error) {
	span := t1 - t0
	if span <= 0 {
		return x.Clone(), nil
	}
	if maxStep <= 0 || maxStep > span {
		maxStep = span
	}

	if ad, ok := integ.(Adaptive); ok {
		return advanceAdaptive(ad, sys, x, u, t0, t1, maxStep)
	}

	steps := int(math.Ceil(span/maxStep - 1e-9))
	h := span / float64(steps)
	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, u, t0+float64(i)*h, h)
	}
	if !x.IsValid() {
		return nil, ErrInvalidState
	}
	return x, nil
}

const (
	adaptiveTol = 1e-9
	minStep     = 1e-12
)

func advanceAdaptive(ad Adaptive, sys System, x State, u Input, t0, t1, maxStep float64) (State, error) {
	t, h := t0, maxStep
	eps := 1e-12 * math.Max(1, math.Abs(t1))
	for t1-t > eps {
		if t+h > t1 {
			h = t1 - t
		}
		next, hNext, err := ad.StepAdaptive(sys, x, u, t, h, adaptiveTol)
		if errors.Is(err, ErrStepRejected) {
			if hNext < minStep {
				return nil, fmt.Errorf("%w: t=%g", ErrStepTooSmall, t)
			}
			h = hNext
			continue
		}
		if err != nil {
			return nil, err
		}
		x, t = next, t+h
		h = math.Min(hNext, maxStep)
	}
	if !x.IsValid() {
		return nil, ErrInvalidState
	}
	return x, nil
}
