package lti

import (
	"fmt"

	"github.com/san-kum/ltisim/internal/convert"
	"github.com/san-kum/ltisim/internal/matx"
	"gonum.org/v1/gonum/mat"
)

// To converts s to the given representation, copying when s already has it.
func (s *System) To(kind Kind) (*System, error) {
	switch kind {
	case KindTF:
		return s.ToTF()
	case KindZPK:
		return s.ToZPK()
	case KindSS:
		return s.ToSS()
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSystemKind, kind)
	}
}

// ToTF returns the transfer-function form of s.
func (s *System) ToTF() (*System, error) {
	switch s.kind {
	case KindTF:
		return s.Clone(), nil
	case KindZPK:
		rows, den, err := convert.ZPK2TF(s.zpk.Zeros, s.zpk.Poles, s.zpk.Gain)
		if err != nil {
			return nil, wrap(err)
		}
		return NewTransferFunctionMIMO(s.tb, columnGrid(rows), den)
	default:
		m := s.Inputs()
		grid := make([][][]float64, s.Outputs())
		var den []float64
		for j := 0; j < m; j++ {
			rows, d, err := convert.SS2TF(s.ss.A, s.ss.B, s.ss.C, s.ss.D, j)
			if err != nil {
				return nil, wrap(err)
			}
			for i, row := range rows {
				grid[i] = append(grid[i], row)
			}
			den = d
		}
		return NewTransferFunctionMIMO(s.tb, grid, den)
	}
}

// ToZPK returns the zeros/poles/gain form of s. Multi-input systems have no
// such form.
func (s *System) ToZPK() (*System, error) {
	if s.kind == KindZPK {
		return s.Clone(), nil
	}
	if s.Inputs() != 1 {
		return nil, fmt.Errorf("%w: %d-input system has no zeros/poles/gain form", ErrUnsupportedSystemKind, s.Inputs())
	}

	var (
		zeros [][]complex128
		poles []complex128
		gains []float64
		err   error
	)
	if s.kind == KindTF {
		zeros, poles, gains, err = convert.TF2ZPK(s.singleInputRows(), s.tf.Den)
	} else {
		zeros, poles, gains, err = convert.SS2ZPK(s.ss.A, s.ss.B, s.ss.C, s.ss.D, 0)
	}
	if err != nil {
		return nil, wrap(err)
	}
	return &System{kind: KindZPK, tb: s.tb, zpk: &ZPK{Zeros: zeros, Poles: poles, Gain: gains}}, nil
}

// ToSS returns the state-space form of s. A transfer function with several
// inputs is realized one input column at a time.
func (s *System) ToSS() (*System, error) {
	switch s.kind {
	case KindSS:
		return s.Clone(), nil
	case KindZPK:
		a, b, c, d, err := convert.ZPK2SS(s.zpk.Zeros, s.zpk.Poles, s.zpk.Gain)
		if err != nil {
			return nil, wrap(err)
		}
		return &System{kind: KindSS, tb: s.tb, ss: &SS{A: a, B: b, C: c, D: d}}, nil
	}

	m := s.Inputs()
	if m == 1 {
		a, b, c, d, err := convert.TF2SS(s.singleInputRows(), s.tf.Den)
		if err != nil {
			return nil, wrap(err)
		}
		return &System{kind: KindSS, tb: s.tb, ss: &SS{A: a, B: b, C: c, D: d}}, nil
	}

	as, bs, cs, ds := make([]mat.Matrix, m), make([]mat.Matrix, m), make([]mat.Matrix, m), make([]mat.Matrix, m)
	for j := 0; j < m; j++ {
		rows := make([][]float64, len(s.tf.Num))
		for i := range rows {
			rows[i] = s.tf.Num[i][j]
		}
		a, b, c, d, err := convert.TF2SS(rows, s.tf.Den)
		if err != nil {
			return nil, wrap(err)
		}
		as[j], bs[j], cs[j], ds[j] = a, b, c, d
	}
	c, err := matx.HStack(cs...)
	if err != nil {
		return nil, wrap(err)
	}
	d, err := matx.HStack(ds...)
	if err != nil {
		return nil, wrap(err)
	}
	ss := &SS{A: matx.BlockDiag(as...), B: matx.BlockDiag(bs...), C: c, D: d}
	return &System{kind: KindSS, tb: s.tb, ss: ss}, nil
}

// AsTF returns s itself when it is a transfer function and converts otherwise.
func (s *System) AsTF() (*System, error) {
	if s.kind == KindTF {
		return s, nil
	}
	return s.ToTF()
}

// AsZPK returns s itself when it is a zeros/poles/gain system.
func (s *System) AsZPK() (*System, error) {
	if s.kind == KindZPK {
		return s, nil
	}
	return s.ToZPK()
}

// AsSS returns s itself when it is a state-space system.
func (s *System) AsSS() (*System, error) {
	if s.kind == KindSS {
		return s, nil
	}
	return s.ToSS()
}

// singleInputRows returns the numerator rows of input 0.
func (s *System) singleInputRows() [][]float64 {
	rows := make([][]float64, len(s.tf.Num))
	for i, row := range s.tf.Num {
		rows[i] = row[0]
	}
	return rows
}

func columnGrid(rows [][]float64) [][][]float64 {
	grid := make([][][]float64, len(rows))
	for i, row := range rows {
		grid[i] = [][]float64{row}
	}
	return grid
}

func normalizeABCD(a, b, c, d *mat.Dense) (*mat.Dense, *mat.Dense, *mat.Dense, *mat.Dense, error) {
	var dm mat.Matrix
	if d != nil {
		dm = d
	}
	if a == nil || b == nil || c == nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: A, B and C are required", ErrDegenerateSystem)
	}
	na, nb, nc, nd, err := convert.ABCDNormalize(a, b, c, dm)
	if err != nil {
		return nil, nil, nil, nil, wrap(err)
	}
	return na, nb, nc, nd, nil
}
