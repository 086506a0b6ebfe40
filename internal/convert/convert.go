// Package convert implements the coefficient-level conversions between the
// transfer-function, zeros/poles/gain and state-space forms of an LTI
// system, together with continuous-to-discrete conversion.
//
// Every function takes and returns plain arrays. Transfer-function numerators
// are row-per-output matrices for a single input, with coefficients in
// descending powers; zeros and gains are per output as well.
package convert

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/ltisim/internal/matx"
	"github.com/san-kum/ltisim/internal/poly"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDegenerate indicates empty or all-zero coefficient arrays.
	ErrDegenerate = errors.New("convert: degenerate system")

	// ErrImproper indicates a numerator of higher degree than the denominator.
	ErrImproper = errors.New("convert: improper transfer function")

	// ErrDimension indicates matrices whose shapes do not describe a system.
	ErrDimension = errors.New("convert: inconsistent system dimensions")

	// ErrComplex indicates roots with no real polynomial.
	ErrComplex = errors.New("convert: complex polynomial coefficients")
)

// leadingTol is the absolute tolerance below which a numerator column is
// treated as a leading zero.
const leadingTol = 1e-14

// Normalize scales num and den so den is monic and drops leading
// numerator columns that are zero in every row. Ragged numerator rows are
// left-padded to a common length.
func Normalize(num [][]float64, den []float64) ([][]float64, []float64, error) {
	if len(num) == 0 || len(den) == 0 {
		return nil, nil, ErrDegenerate
	}
	d := poly.TrimLeading(den)
	if len(d) == 0 {
		return nil, nil, fmt.Errorf("%w: denominator has no nonzero coefficient", ErrDegenerate)
	}

	width := 0
	for _, row := range num {
		width = max(width, len(row))
	}
	if width == 0 {
		return nil, nil, fmt.Errorf("%w: empty numerator", ErrDegenerate)
	}

	lead := d[0]
	outDen := poly.Scale(d, 1/lead)
	padded := make([][]float64, len(num))
	for i, row := range num {
		padded[i] = poly.Scale(poly.PadLeft(row, width), 1/lead)
	}

	zeros := 0
	for col := 0; col < width; col++ {
		allZero := true
		for _, row := range padded {
			if math.Abs(row[col]) > leadingTol {
				allZero = false
				break
			}
		}
		if !allZero {
			break
		}
		zeros++
	}
	if zeros == width {
		zeros--
	}

	outNum := make([][]float64, len(padded))
	for i, row := range padded {
		outNum[i] = row[zeros:]
	}
	return outNum, outDen, nil
}

// TF2SS returns the controller canonical realization of num/den.
func TF2SS(num [][]float64, den []float64) (a, b, c, d *mat.Dense, err error) {
	num, den, err = Normalize(num, den)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	p := len(num)
	m, k := len(num[0]), len(den)
	if m > k {
		return nil, nil, nil, nil, fmt.Errorf("%w: numerator degree %d exceeds denominator degree %d", ErrImproper, m-1, k-1)
	}

	rows := make([][]float64, p)
	for i := range num {
		rows[i] = poly.PadLeft(num[i], k)
	}

	d = mat.NewDense(p, 1, nil)
	for i := range rows {
		d.Set(i, 0, rows[i][0])
	}
	if k == 1 {
		return matx.Zeros(1, 1), matx.Zeros(1, 1), matx.Zeros(p, 1), d, nil
	}

	n := k - 1
	a = matx.Eye(n, n, -1)
	for j := 0; j < n; j++ {
		a.Set(0, j, -den[j+1])
	}
	b = matx.Eye(n, 1, 0)
	c = mat.NewDense(p, n, nil)
	for i := range rows {
		for j := 0; j < n; j++ {
			c.Set(i, j, rows[i][j+1]-rows[i][0]*den[j+1])
		}
	}
	return a, b, c, d, nil
}

// SS2TF returns the transfer function from the given input channel to every
// output. The denominator is the characteristic polynomial of a.
func SS2TF(a, b, c, d mat.Matrix, input int) ([][]float64, []float64, error) {
	a, b, c, d, err := ABCDNormalize(a, b, c, d)
	if err != nil {
		return nil, nil, err
	}
	n, _ := a.Dims()
	p, m := d.Dims()
	if input < 0 || input >= m {
		return nil, nil, fmt.Errorf("%w: input %d out of range [0, %d)", ErrDimension, input, m)
	}

	den, err := poly.CharPoly(a)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	bj := matx.Sub(b, 0, n, input, input+1)
	num := make([][]float64, p)
	for k := 0; k < p; k++ {
		ck := matx.Sub(c, k, k+1, 0, n)
		var bc, shifted mat.Dense
		bc.Mul(bj, ck)
		shifted.Sub(a, &bc)
		cp, err := poly.CharPoly(&shifted)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
		}
		num[k] = poly.Add(cp, poly.Scale(den, d.At(k, input)-1))
	}
	return num, den, nil
}

// TF2ZPK factors num/den into zeros, poles and per-output gains.
func TF2ZPK(num [][]float64, den []float64) ([][]complex128, []complex128, []float64, error) {
	num, den, err := Normalize(num, den)
	if err != nil {
		return nil, nil, nil, err
	}
	poles, err := poly.Roots(den)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	zeros := make([][]complex128, len(num))
	gains := make([]float64, len(num))
	for i, row := range num {
		trimmed := poly.TrimLeading(row)
		if len(trimmed) == 0 {
			zeros[i] = []complex128{}
			continue
		}
		gains[i] = trimmed[0]
		z, err := poly.Roots(trimmed)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
		}
		zeros[i] = z
	}
	return zeros, poles, gains, nil
}

// ZPK2TF expands zeros, poles and gains into real polynomials. Numerator
// rows are left-padded to a common length.
func ZPK2TF(zeros [][]complex128, poles []complex128, gains []float64) ([][]float64, []float64, error) {
	if len(zeros) == 0 || len(gains) != len(zeros) {
		return nil, nil, fmt.Errorf("%w: %d zero sets for %d gains", ErrDimension, len(zeros), len(gains))
	}
	den, err := poly.RealFromRoots(poles)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: poles: %v", ErrComplex, err)
	}

	num := make([][]float64, len(zeros))
	width := 0
	for i, z := range zeros {
		p, err := poly.RealFromRoots(z)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: zeros of output %d: %v", ErrComplex, i, err)
		}
		num[i] = poly.Scale(p, gains[i])
		width = max(width, len(num[i]))
	}
	for i := range num {
		num[i] = poly.PadLeft(num[i], width)
	}
	return num, den, nil
}

// ZPK2SS realizes a zeros/poles/gain description through its transfer function.
func ZPK2SS(zeros [][]complex128, poles []complex128, gains []float64) (a, b, c, d *mat.Dense, err error) {
	num, den, err := ZPK2TF(zeros, poles, gains)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return TF2SS(num, den)
}

// SS2ZPK factors the transfer function of one input channel.
func SS2ZPK(a, b, c, d mat.Matrix, input int) ([][]complex128, []complex128, []float64, error) {
	num, den, err := SS2TF(a, b, c, d, input)
	if err != nil {
		return nil, nil, nil, err
	}
	return TF2ZPK(num, den)
}

// ABCDNormalize checks state-space dimensions and fills a nil d with zeros.
func ABCDNormalize(a, b, c, d mat.Matrix) (*mat.Dense, *mat.Dense, *mat.Dense, *mat.Dense, error) {
	if a == nil || b == nil || c == nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: A, B and C are required", ErrDegenerate)
	}
	ar, ac := a.Dims()
	br, bc := b.Dims()
	cr, cc := c.Dims()
	if ar != ac {
		return nil, nil, nil, nil, fmt.Errorf("%w: A is %dx%d, not square", ErrDimension, ar, ac)
	}
	if br != ar {
		return nil, nil, nil, nil, fmt.Errorf("%w: B has %d rows, A has %d", ErrDimension, br, ar)
	}
	if cc != ac {
		return nil, nil, nil, nil, fmt.Errorf("%w: C has %d columns, A has %d", ErrDimension, cc, ac)
	}
	var dd *mat.Dense
	if d == nil {
		dd = matx.Zeros(cr, bc)
	} else {
		dr, dc := d.Dims()
		if dr != cr || dc != bc {
			return nil, nil, nil, nil, fmt.Errorf("%w: D is %dx%d, want %dx%d", ErrDimension, dr, dc, cr, bc)
		}
		dd = matx.Clone(d)
	}
	return matx.Clone(a), matx.Clone(b), matx.Clone(c), dd, nil
}
