package analysis

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/ltisim/internal/poly"
	"gonum.org/v1/gonum/floats"
)

// FindFreqs returns n logarithmically spaced frequencies spanning the poles
// and zeros of b(s)/a(s).
func FindFreqs(b, a []float64, n int) ([]float64, error) {
	if n < 0 {
		return nil, ErrPoints
	}
	poles, err := roots(a)
	if err != nil {
		return nil, err
	}
	zeros, err := roots(b)
	if err != nil {
		return nil, err
	}
	return findFreqs(poles, zeros, n), nil
}

// FindFreqsZPK is FindFreqs for factored systems.
func FindFreqsZPK(zeros, poles []complex128, n int) ([]float64, error) {
	if n < 0 {
		return nil, ErrPoints
	}
	return findFreqs(poles, zeros, n), nil
}

func roots(p []float64) ([]complex128, error) {
	p = poly.TrimLeading(p)
	if len(p) == 0 {
		return nil, ErrEmpty
	}
	return poly.Roots(p)
}

func findFreqs(poles, zeros []complex128, n int) []float64 {
	if len(poles) == 0 {
		poles = []complex128{-1000}
	}
	ez := make([]complex128, 0, len(poles)+len(zeros))
	for _, p := range poles {
		if imag(p) >= 0 {
			ez = append(ez, p)
		}
	}
	for _, z := range zeros {
		if cmplx.Abs(z) < 1e5 && imag(z) >= 0 {
			ez = append(ez, z)
		}
	}

	hi, lo := math.Inf(-1), math.Inf(1)
	for _, e := range ez {
		re := real(e)
		if cmplx.Abs(e) < 1e-10 {
			re++
		}
		hi = math.Max(hi, 3*math.Abs(re)+1.5*imag(e))
		lo = math.Min(lo, math.Abs(re)+2*imag(e))
	}
	hfreq := math.RoundToEven(math.Log10(hi) + 0.5)
	lfreq := math.RoundToEven(math.Log10(0.1*lo) - 0.5)

	w := make([]float64, n)
	switch n {
	case 0:
	case 1:
		w[0] = math.Pow(10, lfreq)
	default:
		floats.LogSpan(w, math.Pow(10, lfreq), math.Pow(10, hfreq))
	}
	return w
}
