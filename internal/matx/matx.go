// Package matx collects the dense block-matrix helpers the LTI code builds
// on top of gonum/mat.
package matx

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrShape indicates blocks whose dimensions cannot be concatenated.
var ErrShape = errors.New("matx: incompatible block shapes")

// Zeros returns an r×c zero matrix.
func Zeros(r, c int) *mat.Dense {
	return mat.NewDense(r, c, nil)
}

// Full returns an r×c matrix filled with value.
func Full(r, c int, value float64) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = value
	}
	return mat.NewDense(r, c, data)
}

// Eye returns an r×c matrix with ones on the k-th diagonal.
func Eye(r, c, k int) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		j := i + k
		if j >= 0 && j < c {
			m.Set(i, j, 1)
		}
	}
	return m
}

// Clone returns an independent dense copy of m.
func Clone(m mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(m)
}

// FromRows builds a dense matrix from row slices. Rows must share a length.
func FromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrShape
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for _, row := range rows {
		if len(row) != c {
			return nil, ErrShape
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), c, data), nil
}

// Rows copies m into row slices.
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// Column returns v as an n×1 matrix.
func Column(v []float64) *mat.Dense {
	data := make([]float64, len(v))
	copy(data, v)
	return mat.NewDense(len(v), 1, data)
}

// Row returns v as a 1×n matrix.
func Row(v []float64) *mat.Dense {
	data := make([]float64, len(v))
	copy(data, v)
	return mat.NewDense(1, len(v), data)
}

// Col copies column j of m.
func Col(m mat.Matrix, j int) []float64 {
	return mat.Col(nil, j, m)
}

// HStack concatenates blocks left to right. Row counts must agree.
func HStack(blocks ...mat.Matrix) (*mat.Dense, error) {
	if len(blocks) == 0 {
		return nil, ErrShape
	}
	r, _ := blocks[0].Dims()
	total := 0
	for _, b := range blocks {
		br, bc := b.Dims()
		if br != r {
			return nil, ErrShape
		}
		total += bc
	}
	out := mat.NewDense(r, total, nil)
	off := 0
	for _, b := range blocks {
		_, bc := b.Dims()
		out.Slice(0, r, off, off+bc).(*mat.Dense).Copy(b)
		off += bc
	}
	return out, nil
}

// VStack concatenates blocks top to bottom. Column counts must agree.
func VStack(blocks ...mat.Matrix) (*mat.Dense, error) {
	if len(blocks) == 0 {
		return nil, ErrShape
	}
	_, c := blocks[0].Dims()
	total := 0
	for _, b := range blocks {
		br, bc := b.Dims()
		if bc != c {
			return nil, ErrShape
		}
		total += br
	}
	out := mat.NewDense(total, c, nil)
	off := 0
	for _, b := range blocks {
		br, _ := b.Dims()
		out.Slice(off, off+br, 0, c).(*mat.Dense).Copy(b)
		off += br
	}
	return out, nil
}

// Block assembles a block matrix from rows of blocks.
func Block(rows [][]mat.Matrix) (*mat.Dense, error) {
	stacked := make([]mat.Matrix, 0, len(rows))
	for _, row := range rows {
		h, err := HStack(row...)
		if err != nil {
			return nil, err
		}
		stacked = append(stacked, h)
	}
	return VStack(stacked...)
}

// BlockDiag places blocks along the diagonal of a zero matrix.
func BlockDiag(blocks ...mat.Matrix) *mat.Dense {
	r, c := 0, 0
	for _, b := range blocks {
		br, bc := b.Dims()
		r += br
		c += bc
	}
	out := mat.NewDense(r, c, nil)
	ro, co := 0, 0
	for _, b := range blocks {
		br, bc := b.Dims()
		out.Slice(ro, ro+br, co, co+bc).(*mat.Dense).Copy(b)
		ro += br
		co += bc
	}
	return out
}

// Sub returns a dense copy of the block m[r0:r1, c0:c1].
func Sub(m mat.Matrix, r0, r1, c0, c1 int) *mat.Dense {
	out := mat.NewDense(r1-r0, c1-c0, nil)
	for i := r0; i < r1; i++ {
		for j := c0; j < c1; j++ {
			out.Set(i-r0, j-c0, m.At(i, j))
		}
	}
	return out
}

// Negated returns -m.
func Negated(m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Scale(-1, m)
	return &out
}

// Mul returns a·b.
func Mul(a, b mat.Matrix) (*mat.Dense, error) {
	_, ac := a.Dims()
	br, _ := b.Dims()
	if ac != br {
		return nil, ErrShape
	}
	var out mat.Dense
	out.Mul(a, b)
	return &out, nil
}

// SameShape reports whether a and b have equal dimensions.
func SameShape(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}

// HasNaNOrInf checks for NaN or Inf entries.
func HasNaNOrInf(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}
