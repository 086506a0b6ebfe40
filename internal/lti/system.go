package lti

import (
	"fmt"
	"strings"

	"github.com/san-kum/ltisim/internal/matx"
	"gonum.org/v1/gonum/mat"
)

// Kind names a system representation.
type Kind int

const (
	KindTF Kind = iota + 1
	KindZPK
	KindSS
)

func (k Kind) String() string {
	switch k {
	case KindTF:
		return "TransferFunction"
	case KindZPK:
		return "ZerosPolesGain"
	case KindSS:
		return "StateSpace"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts the short names tf, zpk and ss.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "tf", "transferfunction":
		return KindTF, nil
	case "zpk", "zerospolesgain":
		return KindZPK, nil
	case "ss", "statespace":
		return KindSS, nil
	default:
		return 0, fmt.Errorf("%w: unknown representation %q", ErrInvalidArgument, name)
	}
}

// TF is a transfer function. Num[i][j] is the numerator from input j to
// output i; all entries share Den. Coefficients are in descending powers.
type TF struct {
	Num [][][]float64
	Den []float64
}

// ZPK is a single-input zeros/poles/gain description with one zero set and
// one gain per output.
type ZPK struct {
	Zeros [][]complex128
	Poles []complex128
	Gain  []float64
}

// SS holds the state-space matrices of x' = Ax + Bu, y = Cx + Du.
type SS struct {
	A, B, C, D *mat.Dense
}

// System is an LTI system in exactly one representation.
type System struct {
	kind Kind
	tb   Timebase
	tf   *TF
	zpk  *ZPK
	ss   *SS
}

func (s *System) Kind() Kind { return s.kind }

func (s *System) Timebase() Timebase { return s.tb }

func (s *System) IsDiscrete() bool { return s.tb.IsDiscrete() }

// Dt returns the sample period; see Timebase.Dt.
func (s *System) Dt() (float64, bool) { return s.tb.Dt() }

// Inputs returns the number of input channels.
func (s *System) Inputs() int {
	switch s.kind {
	case KindTF:
		return len(s.tf.Num[0])
	case KindSS:
		_, m := s.ss.B.Dims()
		return m
	default:
		return 1
	}
}

// Outputs returns the number of output channels.
func (s *System) Outputs() int {
	switch s.kind {
	case KindTF:
		return len(s.tf.Num)
	case KindZPK:
		return len(s.zpk.Zeros)
	default:
		p, _ := s.ss.C.Dims()
		return p
	}
}

// IsSISO reports whether the system has one input and one output.
func (s *System) IsSISO() bool {
	return s.Inputs() == 1 && s.Outputs() == 1
}

// TransferFunction returns a copy of the transfer function data.
func (s *System) TransferFunction() (TF, bool) {
	if s.kind != KindTF {
		return TF{}, false
	}
	return s.tf.clone(), true
}

// ZerosPolesGain returns a copy of the zeros/poles/gain data.
func (s *System) ZerosPolesGain() (ZPK, bool) {
	if s.kind != KindZPK {
		return ZPK{}, false
	}
	return s.zpk.clone(), true
}

// StateSpace returns copies of the state-space matrices.
func (s *System) StateSpace() (SS, bool) {
	if s.kind != KindSS {
		return SS{}, false
	}
	return s.ss.clone(), true
}

// Zeros returns the zeros of every output.
func (s *System) Zeros() ([][]complex128, error) {
	z, err := s.AsZPK()
	if err != nil {
		return nil, err
	}
	return z.zpk.clone().Zeros, nil
}

// Poles returns the system poles.
func (s *System) Poles() ([]complex128, error) {
	z, err := s.AsZPK()
	if err != nil {
		return nil, err
	}
	return z.zpk.clone().Poles, nil
}

// Clone returns an independent copy of s.
func (s *System) Clone() *System {
	out := &System{kind: s.kind, tb: s.tb}
	switch s.kind {
	case KindTF:
		tf := s.tf.clone()
		out.tf = &tf
	case KindZPK:
		zpk := s.zpk.clone()
		out.zpk = &zpk
	case KindSS:
		ss := s.ss.clone()
		out.ss = &ss
	}
	return out
}

// SetA replaces the state matrix of a state-space system.
func (s *System) SetA(a mat.Matrix) error {
	return s.setMatrices(a, nil, nil, nil)
}

// SetB replaces the input matrix of a state-space system.
func (s *System) SetB(b mat.Matrix) error {
	return s.setMatrices(nil, b, nil, nil)
}

// SetC replaces the output matrix of a state-space system.
func (s *System) SetC(c mat.Matrix) error {
	return s.setMatrices(nil, nil, c, nil)
}

// SetD replaces the feedthrough matrix of a state-space system.
func (s *System) SetD(d mat.Matrix) error {
	return s.setMatrices(nil, nil, nil, d)
}

func (s *System) setMatrices(a, b, c, d mat.Matrix) error {
	if s.kind != KindSS {
		return fmt.Errorf("%w: matrices of a %v system", ErrUnsupportedSystemKind, s.kind)
	}
	next := *s.ss
	if a != nil {
		next.A = matx.Clone(a)
	}
	if b != nil {
		next.B = matx.Clone(b)
	}
	if c != nil {
		next.C = matx.Clone(c)
	}
	if d != nil {
		next.D = matx.Clone(d)
	}
	if err := next.check(); err != nil {
		return err
	}
	s.ss = &next
	return nil
}

func (s *System) String() string {
	domain := "Continuous"
	if s.IsDiscrete() {
		domain = "Discrete"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v%s(\n", s.kind, domain)
	switch s.kind {
	case KindTF:
		if s.IsSISO() {
			fmt.Fprintf(&b, "num: %v\n", s.tf.Num[0][0])
		} else {
			fmt.Fprintf(&b, "num: %v\n", s.tf.Num)
		}
		fmt.Fprintf(&b, "den: %v\n", s.tf.Den)
	case KindZPK:
		if len(s.zpk.Zeros) == 1 {
			fmt.Fprintf(&b, "zeros: %v\n", s.zpk.Zeros[0])
			fmt.Fprintf(&b, "poles: %v\n", s.zpk.Poles)
			fmt.Fprintf(&b, "gain: %v\n", s.zpk.Gain[0])
		} else {
			fmt.Fprintf(&b, "zeros: %v\n", s.zpk.Zeros)
			fmt.Fprintf(&b, "poles: %v\n", s.zpk.Poles)
			fmt.Fprintf(&b, "gain: %v\n", s.zpk.Gain)
		}
	case KindSS:
		for _, m := range []struct {
			name string
			m    *mat.Dense
		}{{"A", s.ss.A}, {"B", s.ss.B}, {"C", s.ss.C}, {"D", s.ss.D}} {
			fmt.Fprintf(&b, "%s: %v\n", m.name, mat.Formatted(m.m, mat.Prefix("   "), mat.Squeeze()))
		}
	}
	fmt.Fprintf(&b, "dt: %v\n)", dtString(s.tb))
	return b.String()
}

func dtString(tb Timebase) string {
	if !tb.IsDiscrete() {
		return "none"
	}
	if dt, ok := tb.Dt(); ok {
		return fmt.Sprintf("%g", dt)
	}
	return "unspecified"
}

func (t *TF) clone() TF {
	num := make([][][]float64, len(t.Num))
	for i, row := range t.Num {
		num[i] = make([][]float64, len(row))
		for j, p := range row {
			num[i][j] = append([]float64(nil), p...)
		}
	}
	return TF{Num: num, Den: append([]float64(nil), t.Den...)}
}

func (z *ZPK) clone() ZPK {
	zeros := make([][]complex128, len(z.Zeros))
	for i, row := range z.Zeros {
		zeros[i] = append([]complex128{}, row...)
	}
	return ZPK{
		Zeros: zeros,
		Poles: append([]complex128{}, z.Poles...),
		Gain:  append([]float64(nil), z.Gain...),
	}
}

func (s *SS) clone() SS {
	return SS{A: matx.Clone(s.A), B: matx.Clone(s.B), C: matx.Clone(s.C), D: matx.Clone(s.D)}
}

func (s *SS) check() error {
	a, b, c, d, err := normalizeABCD(s.A, s.B, s.C, s.D)
	if err != nil {
		return err
	}
	s.A, s.B, s.C, s.D = a, b, c, d
	return nil
}
