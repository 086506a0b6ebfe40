package lti

import (
	"errors"
	"fmt"

	"github.com/san-kum/ltisim/internal/analysis"
	"github.com/san-kum/ltisim/internal/convert"
	"github.com/san-kum/ltisim/internal/integrators"
	"github.com/san-kum/ltisim/internal/matx"
	"github.com/san-kum/ltisim/internal/poly"
)

// Domain errors for system construction, algebra and simulation.
var (
	// ErrInvalidArity indicates a constructor called with an argument count
	// that names no representation.
	ErrInvalidArity = errors.New("lti: system needs 2, 3 or 4 arguments")

	// ErrDegenerateSystem indicates empty or zero-sized coefficient arrays.
	ErrDegenerateSystem = errors.New("lti: degenerate system")

	// ErrNotDiscreteTime indicates a continuous system passed where a
	// discrete one is required.
	ErrNotDiscreteTime = errors.New("lti: system is not discrete-time")

	// ErrNotContinuousTime indicates a discrete system passed where a
	// continuous one is required.
	ErrNotContinuousTime = errors.New("lti: system is not continuous-time")

	// ErrIncompatibleTimeDomain indicates operands with different timebases.
	ErrIncompatibleTimeDomain = errors.New("lti: incompatible time domains")

	// ErrIncompatibleDimensions indicates a shape mismatch.
	ErrIncompatibleDimensions = errors.New("lti: incompatible dimensions")

	// ErrAmbiguousOperation indicates division by a non-scalar.
	ErrAmbiguousOperation = errors.New("lti: ambiguous operation")

	// ErrUnsupportedSystemKind indicates a representation or shape the
	// operation cannot handle.
	ErrUnsupportedSystemKind = errors.New("lti: unsupported system kind")

	// ErrInvalidSamplePeriod indicates a non-positive sample period.
	ErrInvalidSamplePeriod = errors.New("lti: sample period must be positive")

	// ErrUnknownMethod indicates an unrecognized discretization method.
	ErrUnknownMethod = errors.New("lti: unknown discretization method")

	// ErrUnevenTimeGrid indicates a time vector that is not equally spaced.
	ErrUnevenTimeGrid = errors.New("lti: time steps are not equally spaced")

	// ErrInvalidArgument indicates an argument of the wrong type or value.
	ErrInvalidArgument = errors.New("lti: invalid argument")
)

// wrap maps errors from the numeric packages onto the lti taxonomy.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var target error
	switch {
	case errors.Is(err, convert.ErrDegenerate),
		errors.Is(err, poly.ErrEmpty),
		errors.Is(err, poly.ErrEigen),
		errors.Is(err, analysis.ErrEmpty):
		target = ErrDegenerateSystem
	case errors.Is(err, convert.ErrDimension),
		errors.Is(err, matx.ErrShape):
		target = ErrIncompatibleDimensions
	case errors.Is(err, convert.ErrComplex),
		errors.Is(err, poly.ErrComplex):
		target = ErrUnsupportedSystemKind
	case errors.Is(err, convert.ErrUnknownMethod),
		errors.Is(err, integrators.ErrUnknown):
		target = ErrUnknownMethod
	case errors.Is(err, convert.ErrSamplePeriod):
		target = ErrInvalidSamplePeriod
	default:
		target = ErrInvalidArgument
	}
	return fmt.Errorf("%w: %w", target, err)
}
