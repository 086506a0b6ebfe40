package lti

import (
	"fmt"

	"github.com/san-kum/ltisim/internal/convert"
	"gonum.org/v1/gonum/mat"
)

// New builds a continuous-time system from 2 (num, den), 3 (zeros, poles,
// gain) or 4 (A, B, C, D) arguments.
func New(args ...any) (*System, error) {
	return build(Continuous, args)
}

// NewDiscrete builds a discrete-time system by arity like New.
func NewDiscrete(tb Timebase, args ...any) (*System, error) {
	if !tb.IsDiscrete() {
		return nil, fmt.Errorf("%w: NewDiscrete called with a continuous timebase", ErrNotDiscreteTime)
	}
	return build(tb, args)
}

func build(tb Timebase, args []any) (*System, error) {
	switch len(args) {
	case 2:
		return NewTransferFunction(tb, args[0], args[1])
	case 3:
		return NewZerosPolesGain(tb, args[0], args[1], args[2])
	case 4:
		return NewStateSpace(tb, args[0], args[1], args[2], args[3])
	default:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidArity, len(args))
	}
}

// Make builds a system of the given kind. A single *System argument is
// converted to kind instead and keeps its own timebase.
func Make(kind Kind, tb Timebase, args ...any) (*System, error) {
	if len(args) == 1 {
		if src, ok := args[0].(*System); ok {
			return src.To(kind)
		}
	}
	want := map[Kind]int{KindTF: 2, KindZPK: 3, KindSS: 4}[kind]
	if want == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSystemKind, kind)
	}
	if len(args) != want {
		return nil, fmt.Errorf("%w: %v takes %d arguments, got %d", ErrInvalidArity, kind, want, len(args))
	}
	return build(tb, args)
}

// FromTuple builds a discrete system from (num, den, dt), (zeros, poles,
// gain, dt) or (A, B, C, D, dt). dt may be a number, a Timebase, or true
// for an unspecified period. A single discrete *System is returned as is.
func FromTuple(args ...any) (*System, error) {
	if len(args) == 1 {
		sys, ok := args[0].(*System)
		if !ok {
			return nil, fmt.Errorf("%w: got 1", ErrInvalidArity)
		}
		if !sys.IsDiscrete() {
			return nil, ErrNotDiscreteTime
		}
		return sys, nil
	}
	if len(args) < 3 || len(args) > 5 {
		return nil, fmt.Errorf("%w: tuple of %d elements", ErrInvalidArity, len(args))
	}
	tb, err := toTimebase(args[len(args)-1])
	if err != nil {
		return nil, err
	}
	return NewDiscrete(tb, args[:len(args)-1]...)
}

func toTimebase(v any) (Timebase, error) {
	switch x := v.(type) {
	case Timebase:
		if !x.IsDiscrete() {
			return x, ErrNotDiscreteTime
		}
		return x, nil
	case bool:
		if !x {
			return Continuous, ErrNotDiscreteTime
		}
		return Unspecified(), nil
	case nil:
		return Continuous, ErrNotDiscreteTime
	case float64:
		return Sampled(x), nil
	case int:
		return Sampled(float64(x)), nil
	default:
		return Continuous, fmt.Errorf("%w: sample period of type %T", ErrInvalidArgument, v)
	}
}

// NewTransferFunction builds num/den. num is a polynomial (SISO) or one
// polynomial row per output; the pair is normalized to a monic denominator.
func NewTransferFunction(tb Timebase, num, den any) (*System, error) {
	grid, err := toNumerator(num)
	if err != nil {
		return nil, err
	}
	d, err := toVector("denominator", den)
	if err != nil {
		return nil, err
	}
	return NewTransferFunctionMIMO(tb, grid, d)
}

// NewTransferFunctionMIMO builds a transfer function from an outputs×inputs
// grid of numerators sharing den.
func NewTransferFunctionMIMO(tb Timebase, num [][][]float64, den []float64) (*System, error) {
	if err := tb.validate(); err != nil {
		return nil, err
	}
	if len(num) == 0 || len(num[0]) == 0 {
		return nil, fmt.Errorf("%w: empty numerator", ErrDegenerateSystem)
	}
	inputs := len(num[0])
	for i, row := range num {
		if len(row) != inputs {
			return nil, fmt.Errorf("%w: numerator row %d has %d inputs, want %d", ErrIncompatibleDimensions, i, len(row), inputs)
		}
	}

	grid := make([][][]float64, len(num))
	for i := range grid {
		grid[i] = make([][]float64, inputs)
	}
	var outDen []float64
	for j := 0; j < inputs; j++ {
		column := make([][]float64, len(num))
		for i := range num {
			column[i] = num[i][j]
		}
		n, d, err := convert.Normalize(column, den)
		if err != nil {
			return nil, wrap(err)
		}
		for i := range n {
			grid[i][j] = n[i]
		}
		outDen = d
	}
	return &System{kind: KindTF, tb: tb, tf: &TF{Num: grid, Den: outDen}}, nil
}

// NewZerosPolesGain builds k*prod(s-zeros)/prod(s-poles). zeros is one root
// list (SISO) or one list per output; a scalar gain is broadcast.
func NewZerosPolesGain(tb Timebase, zeros, poles, gain any) (*System, error) {
	if err := tb.validate(); err != nil {
		return nil, err
	}
	z, err := toZeros(zeros)
	if err != nil {
		return nil, err
	}
	if len(z) == 0 {
		return nil, fmt.Errorf("%w: no outputs", ErrDegenerateSystem)
	}
	p, err := toRoots("poles", poles)
	if err != nil {
		return nil, err
	}
	k, err := toGains(gain, len(z))
	if err != nil {
		return nil, err
	}
	return &System{kind: KindZPK, tb: tb, zpk: &ZPK{Zeros: z, Poles: p, Gain: k}}, nil
}

// NewStateSpace builds x' = Ax + Bu, y = Cx + Du. A nil d is a zero
// feedthrough.
func NewStateSpace(tb Timebase, a, b, c, d any) (*System, error) {
	if err := tb.validate(); err != nil {
		return nil, err
	}
	names := []string{"A", "B", "C", "D"}
	ms := make([]*mat.Dense, 4)
	for i, v := range []any{a, b, c, d} {
		m, err := toMatrix(names[i], v)
		if err != nil {
			return nil, err
		}
		if m == nil && i < 3 {
			return nil, fmt.Errorf("%w: %s is empty", ErrDegenerateSystem, names[i])
		}
		ms[i] = m
	}
	ss := &SS{A: ms[0], B: ms[1], C: ms[2], D: ms[3]}
	if err := ss.check(); err != nil {
		return nil, err
	}
	return &System{kind: KindSS, tb: tb, ss: ss}, nil
}
