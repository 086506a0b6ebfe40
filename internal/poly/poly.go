// Package poly provides the polynomial primitives shared by the conversion
// and frequency-response code.
//
// Coefficients are stored in descending power order unless a function says
// otherwise: p[0]*x^(n-1) + p[1]*x^(n-2) + ... + p[n-1].
package poly

import (
	"errors"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmpty indicates a polynomial with no coefficients or only zeros.
	ErrEmpty = errors.New("poly: empty polynomial")

	// ErrComplex indicates roots that are not closed under conjugation and
	// therefore have no real-coefficient polynomial.
	ErrComplex = errors.New("poly: roots do not form conjugate pairs")

	// ErrEigen indicates the eigenvalue factorization failed to converge.
	ErrEigen = errors.New("poly: eigenvalue factorization failed")
)

// ConjugateTol is the relative tolerance used when pairing complex roots.
const ConjugateTol = 1e-9

// TrimLeading drops leading zero coefficients. The result aliases p.
func TrimLeading(p []float64) []float64 {
	for i, v := range p {
		if v != 0 {
			return p[i:]
		}
	}
	return p[:0]
}

// PadLeft returns a copy of p with zeros prepended up to length n.
func PadLeft(p []float64, n int) []float64 {
	if len(p) >= n {
		out := make([]float64, len(p))
		copy(out, p)
		return out
	}
	out := make([]float64, n)
	copy(out[n-len(p):], p)
	return out
}

// Scale returns k*p.
func Scale(p []float64, k float64) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = k * v
	}
	return out
}

// Add returns p + q, aligning on the lowest power.
func Add(p, q []float64) []float64 {
	n := max(len(p), len(q))
	a, b := PadLeft(p, n), PadLeft(q, n)
	for i := range a {
		a[i] += b[i]
	}
	return a
}

// Mul returns the product (convolution) of p and q.
func Mul(p, q []float64) []float64 {
	if len(p) == 0 || len(q) == 0 {
		return nil
	}
	out := make([]float64, len(p)+len(q)-1)
	for i, a := range p {
		for j, b := range q {
			out[i+j] += a * b
		}
	}
	return out
}

// Eval evaluates p at x with Horner's scheme.
func Eval(p []float64, x complex128) complex128 {
	var acc complex128
	for _, c := range p {
		acc = acc*x + complex(c, 0)
	}
	return acc
}

// EvalAscending evaluates c[0] + c[1]*x + c[2]*x^2 + ...
func EvalAscending(c []float64, x complex128) complex128 {
	var acc complex128
	for i := len(c) - 1; i >= 0; i-- {
		acc = acc*x + complex(c[i], 0)
	}
	return acc
}

// EvalRoots evaluates the monic polynomial with the given roots at x.
func EvalRoots(roots []complex128, x complex128) complex128 {
	acc := complex(1, 0)
	for _, r := range roots {
		acc *= x - r
	}
	return acc
}

// Roots returns the roots of p as the eigenvalues of its companion matrix.
// Leading zeros are ignored and trailing zeros contribute roots at the
// origin. A constant polynomial has no roots.
func Roots(p []float64) ([]complex128, error) {
	first, last := -1, -1
	for i, v := range p {
		if v != 0 {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil, ErrEmpty
	}

	trailing := len(p) - last - 1
	core := p[first : last+1]
	n := len(core)

	roots := make([]complex128, 0, n-1+trailing)
	if n > 1 {
		comp := mat.NewDense(n-1, n-1, nil)
		for j := 1; j < n; j++ {
			comp.Set(0, j-1, -core[j]/core[0])
		}
		for i := 1; i < n-1; i++ {
			comp.Set(i, i-1, 1)
		}
		vals, err := eigenvalues(comp)
		if err != nil {
			return nil, err
		}
		roots = append(roots, vals...)
	}
	for i := 0; i < trailing; i++ {
		roots = append(roots, 0)
	}
	return roots, nil
}

// FromRoots returns the monic polynomial whose roots are r.
func FromRoots(r []complex128) []complex128 {
	out := []complex128{1}
	for _, root := range r {
		next := make([]complex128, len(out)+1)
		for i, c := range out {
			next[i] += c
			next[i+1] -= c * root
		}
		out = next
	}
	return out
}

// RealFromRoots returns the real monic polynomial with roots r. Roots must
// be closed under conjugation within ConjugateTol.
func RealFromRoots(r []complex128) ([]float64, error) {
	if !ConjugateClosed(r, ConjugateTol) {
		return nil, ErrComplex
	}
	c := FromRoots(r)
	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = real(v)
	}
	return out, nil
}

// CharPoly returns the characteristic polynomial of the square matrix a.
func CharPoly(a mat.Matrix) ([]float64, error) {
	vals, err := eigenvalues(a)
	if err != nil {
		return nil, err
	}
	return RealFromRoots(vals)
}

// ConjugateClosed reports whether every non-real root has a matching
// conjugate in r.
func ConjugateClosed(r []complex128, tol float64) bool {
	used := make([]bool, len(r))
	for i, x := range r {
		if used[i] {
			continue
		}
		scale := math.Max(1, cmplx.Abs(x))
		if math.Abs(imag(x)) <= tol*scale {
			used[i] = true
			continue
		}
		want := cmplx.Conj(x)
		found := false
		for j := range r {
			if j == i || used[j] {
				continue
			}
			if cmplx.Abs(r[j]-want) <= tol*scale {
				used[i], used[j] = true, true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SortRoots orders roots by real part, then imaginary part.
func SortRoots(r []complex128) {
	sort.Slice(r, func(i, j int) bool {
		if real(r[i]) != real(r[j]) {
			return real(r[i]) < real(r[j])
		}
		return imag(r[i]) < imag(r[j])
	})
}

func eigenvalues(a mat.Matrix) ([]complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil, ErrEigen
	}
	return eig.Values(nil), nil
}
