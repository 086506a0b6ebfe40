package lti

import (
	"fmt"

	"github.com/san-kum/ltisim/internal/matx"
	"gonum.org/v1/gonum/mat"
)

// The coercions below accept the argument shapes constructors take:
// scalars, 1-D and 2-D slices of float64 or int, and gonum matrices.

func isComplex(v any) bool {
	switch v.(type) {
	case complex128, complex64, []complex128, [][]complex128:
		return true
	}
	return false
}

// realValue returns c as a float64 when its imaginary part is zero. Values
// with a nonzero imaginary part cannot be stored and are rejected.
func realValue(what string, c complex128) (float64, error) {
	if imag(c) != 0 {
		return 0, fmt.Errorf("%w: complex %s %v", ErrUnsupportedSystemKind, what, c)
	}
	return real(c), nil
}

func realValues(what string, cs []complex128) ([]float64, error) {
	out := make([]float64, len(cs))
	for i, c := range cs {
		v, err := realValue(what, c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func unsupported(what string, v any) error {
	if isComplex(v) {
		return fmt.Errorf("%w: complex %s", ErrUnsupportedSystemKind, what)
	}
	return fmt.Errorf("%w: %s of type %T", ErrInvalidArgument, what, v)
}

func toVector(what string, v any) ([]float64, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return []float64{x}, nil
	case float32:
		return []float64{float64(x)}, nil
	case int:
		return []float64{float64(x)}, nil
	case []float64:
		return append([]float64(nil), x...), nil
	case []float32:
		out := make([]float64, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return out, nil
	case []int:
		out := make([]float64, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}
		return out, nil
	case complex128:
		return realValues(what, []complex128{x})
	case complex64:
		return realValues(what, []complex128{complex128(x)})
	case []complex128:
		return realValues(what, x)
	default:
		return nil, unsupported(what, v)
	}
}

func toRows(what string, v any) ([][]float64, error) {
	switch x := v.(type) {
	case [][]float64:
		out := make([][]float64, len(x))
		for i, row := range x {
			out[i] = append([]float64(nil), row...)
		}
		return out, nil
	case [][]int:
		out := make([][]float64, len(x))
		for i, row := range x {
			out[i], _ = toVector(what, row)
		}
		return out, nil
	case [][]complex128:
		out := make([][]float64, len(x))
		for i, row := range x {
			r, err := realValues(what, row)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case mat.Matrix:
		return matx.Rows(x), nil
	default:
		row, err := toVector(what, v)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, nil
		}
		return [][]float64{row}, nil
	}
}

// toNumerator returns an outputs×inputs grid of polynomials. A 1-D value is
// SISO and a 2-D value has one row per output.
func toNumerator(v any) ([][][]float64, error) {
	if grid, ok := v.([][][]float64); ok {
		out := make([][][]float64, len(grid))
		for i, row := range grid {
			out[i] = make([][]float64, len(row))
			for j, p := range row {
				out[i][j] = append([]float64(nil), p...)
			}
		}
		return out, nil
	}
	rows, err := toRows("numerator", v)
	if err != nil {
		return nil, err
	}
	out := make([][][]float64, len(rows))
	for i, row := range rows {
		out[i] = [][]float64{row}
	}
	return out, nil
}

func toRoots(what string, v any) ([]complex128, error) {
	switch x := v.(type) {
	case nil:
		return []complex128{}, nil
	case complex128:
		return []complex128{x}, nil
	case []complex128:
		return append([]complex128{}, x...), nil
	default:
		re, err := toVector(what, v)
		if err != nil {
			return nil, err
		}
		out := make([]complex128, len(re))
		for i, r := range re {
			out[i] = complex(r, 0)
		}
		return out, nil
	}
}

// toZeros returns one root set per output.
func toZeros(v any) ([][]complex128, error) {
	switch x := v.(type) {
	case [][]complex128:
		out := make([][]complex128, len(x))
		for i, row := range x {
			out[i] = append([]complex128{}, row...)
		}
		return out, nil
	case [][]float64:
		out := make([][]complex128, len(x))
		for i, row := range x {
			out[i], _ = toRoots("zeros", row)
		}
		return out, nil
	default:
		z, err := toRoots("zeros", v)
		if err != nil {
			return nil, err
		}
		return [][]complex128{z}, nil
	}
}

func toGains(v any, outputs int) ([]float64, error) {
	k, err := toVector("gain", v)
	if err != nil {
		return nil, err
	}
	switch {
	case len(k) == 0:
		return nil, fmt.Errorf("%w: missing gain", ErrDegenerateSystem)
	case len(k) == 1 && outputs > 1:
		out := make([]float64, outputs)
		for i := range out {
			out[i] = k[0]
		}
		return out, nil
	case len(k) != outputs:
		return nil, fmt.Errorf("%w: %d gains for %d outputs", ErrIncompatibleDimensions, len(k), outputs)
	}
	return k, nil
}

// toMatrix returns nil for a nil value. Scalars are 1×1 and 1-D slices are
// row vectors.
func toMatrix(what string, v any) (*mat.Dense, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case *mat.Dense:
		if x == nil || x.IsEmpty() {
			return nil, nil
		}
		return matx.Clone(x), nil
	case mat.Matrix:
		return matx.Clone(x), nil
	}
	rows, err := toRows(what, v)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil
	}
	m, err := matx.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: ragged %s", ErrIncompatibleDimensions, what)
	}
	return m, nil
}
