package lti

import (
	"fmt"

	"github.com/san-kum/ltisim/internal/matx"
	"gonum.org/v1/gonum/mat"
)

// Series returns the system that applies b first and then a, the
// frequency-domain product a*b. The outputs of b feed the inputs of a.
func Series(a, b *System) (*System, error) {
	s1, s2, err := binaryOperands(a, b)
	if err != nil {
		return nil, err
	}
	n1, _ := s1.A.Dims()
	n2, _ := s2.A.Dims()
	if m1, p2 := colsOf(s1.B), rowsOf(s2.C); m1 != p2 {
		return nil, fmt.Errorf("%w: series of a %d-input system after a %d-output system", ErrIncompatibleDimensions, m1, p2)
	}

	var b1c2, b1d2, d1c2, d1d2 mat.Dense
	b1c2.Mul(s1.B, s2.C)
	b1d2.Mul(s1.B, s2.D)
	d1c2.Mul(s1.D, s2.C)
	d1d2.Mul(s1.D, s2.D)

	switch g1, g2 := isStatic(s1), isStatic(s2); {
	case g1 && g2:
		return staticGain(a.tb, colsOf(s2.B), &d1d2), nil
	case g1:
		return stateSpace(a.tb, matx.Clone(s2.A), matx.Clone(s2.B), &d1c2, &d1d2), nil
	case g2:
		return stateSpace(a.tb, matx.Clone(s1.A), &b1d2, matx.Clone(s1.C), &d1d2), nil
	}

	am, err := matx.Block([][]mat.Matrix{
		{s1.A, &b1c2},
		{matx.Zeros(n2, n1), s2.A},
	})
	if err != nil {
		return nil, wrap(err)
	}
	bm, err := matx.VStack(&b1d2, s2.B)
	if err != nil {
		return nil, wrap(err)
	}
	cm, err := matx.HStack(s1.C, &d1c2)
	if err != nil {
		return nil, wrap(err)
	}
	return stateSpace(a.tb, am, bm, cm, &d1d2), nil
}

// ScaleInput post-multiplies sys by a scalar or matrix k: B*k and D*k.
func ScaleInput(sys *System, k any) (*System, error) {
	s, err := unaryOperand(sys)
	if err != nil {
		return nil, err
	}
	scalar, km, err := toGain(k)
	if err != nil {
		return nil, err
	}
	var bm, dm mat.Dense
	if km == nil {
		bm.Scale(scalar, s.B)
		dm.Scale(scalar, s.D)
	} else {
		if colsOf(s.B) != rowsOf(km) {
			return nil, fmt.Errorf("%w: %d inputs scaled by a %d-row matrix", ErrIncompatibleDimensions, colsOf(s.B), rowsOf(km))
		}
		bm.Mul(s.B, km)
		dm.Mul(s.D, km)
	}
	return stateSpace(sys.tb, matx.Clone(s.A), &bm, matx.Clone(s.C), &dm), nil
}

// ScaleOutput pre-multiplies sys by a scalar or matrix k: k*C and k*D.
func ScaleOutput(k any, sys *System) (*System, error) {
	s, err := unaryOperand(sys)
	if err != nil {
		return nil, err
	}
	scalar, km, err := toGain(k)
	if err != nil {
		return nil, err
	}
	var cm, dm mat.Dense
	if km == nil {
		cm.Scale(scalar, s.C)
		dm.Scale(scalar, s.D)
	} else {
		if colsOf(km) != rowsOf(s.C) {
			return nil, fmt.Errorf("%w: %d-column matrix applied to %d outputs", ErrIncompatibleDimensions, colsOf(km), rowsOf(s.C))
		}
		cm.Mul(km, s.C)
		dm.Mul(km, s.D)
	}
	return stateSpace(sys.tb, matx.Clone(s.A), matx.Clone(s.B), &cm, &dm), nil
}

// Parallel returns a+b: both systems see the same input and their outputs
// are summed.
func Parallel(a, b *System) (*System, error) {
	s1, s2, err := binaryOperands(a, b)
	if err != nil {
		return nil, err
	}
	if !matx.SameShape(s1.D, s2.D) {
		return nil, fmt.Errorf("%w: cannot add %s and %s systems", ErrIncompatibleDimensions, shape(s1.D), shape(s2.D))
	}
	var dm mat.Dense
	dm.Add(s1.D, s2.D)

	switch g1, g2 := isStatic(s1), isStatic(s2); {
	case g1 && g2:
		return staticGain(a.tb, colsOf(s1.B), &dm), nil
	case g1:
		return stateSpace(a.tb, matx.Clone(s2.A), matx.Clone(s2.B), matx.Clone(s2.C), &dm), nil
	case g2:
		return stateSpace(a.tb, matx.Clone(s1.A), matx.Clone(s1.B), matx.Clone(s1.C), &dm), nil
	}

	bm, err := matx.VStack(s1.B, s2.B)
	if err != nil {
		return nil, wrap(err)
	}
	cm, err := matx.HStack(s1.C, s2.C)
	if err != nil {
		return nil, wrap(err)
	}
	return stateSpace(a.tb, matx.BlockDiag(s1.A, s2.A), bm, cm, &dm), nil
}

// isStatic reports whether s is a pure gain: its states neither see the
// input nor reach the output.
func isStatic(s *SS) bool {
	return mat.Norm(s.B, 1) == 0 && mat.Norm(s.C, 1) == 0
}

// staticGain realizes d with the single placeholder state a static
// transfer function gets.
func staticGain(tb Timebase, inputs int, d *mat.Dense) *System {
	return stateSpace(tb, matx.Zeros(1, 1), matx.Zeros(1, inputs), matx.Zeros(rowsOf(d), 1), d)
}

// AddGain adds a static gain k to the feedthrough. k must have the shape
// of D; a scalar counts as 1×1.
func AddGain(sys *System, k any) (*System, error) {
	s, err := unaryOperand(sys)
	if err != nil {
		return nil, err
	}
	scalar, km, err := toGain(k)
	if err != nil {
		return nil, err
	}
	if km == nil {
		km = matx.Full(1, 1, scalar)
	}
	if !matx.SameShape(s.D, km) {
		return nil, fmt.Errorf("%w: cannot add systems with incompatible dimensions (%s and %s)", ErrIncompatibleDimensions, shape(s.D), shape(km))
	}
	var dm mat.Dense
	dm.Add(s.D, km)
	return stateSpace(sys.tb, matx.Clone(s.A), matx.Clone(s.B), matx.Clone(s.C), &dm), nil
}

// Negate returns -sys.
func Negate(sys *System) (*System, error) {
	s, err := unaryOperand(sys)
	if err != nil {
		return nil, err
	}
	return stateSpace(sys.tb, matx.Clone(s.A), matx.Clone(s.B), matx.Negated(s.C), matx.Negated(s.D)), nil
}

// Sub returns a-b.
func Sub(a, b *System) (*System, error) {
	nb, err := Negate(b)
	if err != nil {
		return nil, err
	}
	return Parallel(a, nb)
}

// SubGain returns sys-k.
func SubGain(sys *System, k any) (*System, error) {
	scalar, km, err := toGain(k)
	if err != nil {
		return nil, err
	}
	if km == nil {
		return AddGain(sys, -scalar)
	}
	return AddGain(sys, matx.Negated(km))
}

// GainSub returns k-sys.
func GainSub(k any, sys *System) (*System, error) {
	neg, err := Negate(sys)
	if err != nil {
		return nil, err
	}
	return AddGain(neg, k)
}

// Div returns sys/k for a scalar k, the series connection with 1/k.
func Div(sys *System, k any) (*System, error) {
	var v float64
	var err error
	switch x := k.(type) {
	case float64:
		v = x
	case int:
		v = float64(x)
	case float32:
		v = float64(x)
	case complex128:
		if v, err = realValue("divisor", x); err != nil {
			return nil, err
		}
	case complex64:
		if v, err = realValue("divisor", complex128(x)); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: cannot divide a system by %T", ErrAmbiguousOperation, k)
	}
	return ScaleInput(sys, 1/v)
}

// toGain returns either a scalar (km nil) or a matrix gain.
func toGain(k any) (float64, *mat.Dense, error) {
	switch x := k.(type) {
	case float64:
		return x, nil, nil
	case float32:
		return float64(x), nil, nil
	case int:
		return float64(x), nil, nil
	case complex128:
		v, err := realValue("gain", x)
		return v, nil, err
	case complex64:
		v, err := realValue("gain", complex128(x))
		return v, nil, err
	case *System:
		return 0, nil, fmt.Errorf("%w: use Series or Parallel for two systems", ErrInvalidArgument)
	}
	m, err := toMatrix("gain", k)
	if err != nil {
		return 0, nil, err
	}
	if m == nil {
		return 0, nil, fmt.Errorf("%w: empty gain", ErrIncompatibleDimensions)
	}
	return 0, m, nil
}

func unaryOperand(sys *System) (*SS, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", ErrInvalidArgument)
	}
	ss, err := sys.AsSS()
	if err != nil {
		return nil, err
	}
	return ss.ss, nil
}

func binaryOperands(a, b *System) (*SS, *SS, error) {
	if a == nil || b == nil {
		return nil, nil, fmt.Errorf("%w: nil system", ErrInvalidArgument)
	}
	if !a.tb.Equal(b.tb) {
		return nil, nil, fmt.Errorf("%w: %v and %v", ErrIncompatibleTimeDomain, a.tb, b.tb)
	}
	s1, err := unaryOperand(a)
	if err != nil {
		return nil, nil, err
	}
	s2, err := unaryOperand(b)
	if err != nil {
		return nil, nil, err
	}
	return s1, s2, nil
}

func stateSpace(tb Timebase, a, b, c, d *mat.Dense) *System {
	return &System{kind: KindSS, tb: tb, ss: &SS{A: a, B: b, C: c, D: d}}
}

func rowsOf(m mat.Matrix) int {
	r, _ := m.Dims()
	return r
}

func colsOf(m mat.Matrix) int {
	_, c := m.Dims()
	return c
}

func shape(m mat.Matrix) string {
	r, c := m.Dims()
	return fmt.Sprintf("(%d, %d)", r, c)
}
