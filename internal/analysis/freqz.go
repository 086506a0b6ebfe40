package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/san-kum/ltisim/internal/poly"
	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	// ErrEmpty indicates an empty coefficient array.
	ErrEmpty = errors.New("analysis: empty coefficients")

	// ErrPoints indicates a negative number of frequency points.
	ErrPoints = errors.New("analysis: number of points must be non-negative")
)

// UnitCircle returns n frequencies spaced evenly over [0, pi) or, when whole
// is set, [0, 2*pi). The upper end is excluded.
func UnitCircle(n int, whole bool) []float64 {
	last := math.Pi
	if whole {
		last = 2 * math.Pi
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = last * float64(i) / float64(n)
	}
	return w
}

// Freqz computes the frequency response of the digital filter with
// numerator b and denominator a, both in ascending powers of z^-1. When w
// is nil the response is computed at n points from UnitCircle.
func Freqz(b, a, w []float64, n int, whole bool) ([]float64, []complex128, error) {
	if len(b) == 0 || len(a) == 0 {
		return nil, nil, ErrEmpty
	}
	if w == nil {
		if n < 0 {
			return nil, nil, ErrPoints
		}
		w = UnitCircle(n, whole)
		nfft := 2 * n
		if whole {
			nfft = n
		}
		if len(a) == 1 && nfft > 0 && nfft >= len(b) {
			return w, firResponse(b, a[0], n, nfft), nil
		}
	}

	h := make([]complex128, len(w))
	for i, wi := range w {
		zm1 := cmplx.Exp(complex(0, -wi))
		h[i] = poly.EvalAscending(b, zm1) / poly.EvalAscending(a, zm1)
	}
	return w, h, nil
}

// firResponse evaluates an FIR filter with a zero-padded FFT of length nfft
// and keeps the first n bins.
func firResponse(b []float64, a0 float64, n, nfft int) []complex128 {
	seq := make([]complex128, nfft)
	for i, v := range b {
		seq[i] = complex(v, 0)
	}
	coeffs := fourier.NewCmplxFFT(nfft).Coefficients(nil, seq)
	h := make([]complex128, n)
	for i := range h {
		h[i] = coeffs[i] / complex(a0, 0)
	}
	return h
}

// FreqzZPK computes the digital frequency response k*prod(z-zeros)/prod(z-poles)
// on the unit circle.
func FreqzZPK(zeros, poles []complex128, k float64, w []float64, n int, whole bool) ([]float64, []complex128, error) {
	if w == nil {
		if n < 0 {
			return nil, nil, ErrPoints
		}
		w = UnitCircle(n, whole)
	}
	h := make([]complex128, len(w))
	for i, wi := range w {
		z := cmplx.Exp(complex(0, wi))
		h[i] = complex(k, 0) * poly.EvalRoots(zeros, z) / poly.EvalRoots(poles, z)
	}
	return w, h, nil
}

// Freqs computes the analog frequency response b(jw)/a(jw), coefficients in
// descending powers of s. When w is nil, n frequencies from FindFreqs are used.
func Freqs(b, a, w []float64, n int) ([]float64, []complex128, error) {
	if len(b) == 0 || len(a) == 0 {
		return nil, nil, ErrEmpty
	}
	if w == nil {
		var err error
		if w, err = FindFreqs(b, a, n); err != nil {
			return nil, nil, err
		}
	}
	h := make([]complex128, len(w))
	for i, wi := range w {
		s := complex(0, wi)
		h[i] = poly.Eval(b, s) / poly.Eval(a, s)
	}
	return w, h, nil
}

// FreqsZPK computes the analog frequency response k*prod(jw-zeros)/prod(jw-poles).
func FreqsZPK(zeros, poles []complex128, k float64, w []float64, n int) ([]float64, []complex128, error) {
	if w == nil {
		if n < 0 {
			return nil, nil, ErrPoints
		}
		w = findFreqs(poles, zeros, n)
	}
	h := make([]complex128, len(w))
	for i, wi := range w {
		s := complex(0, wi)
		h[i] = complex(k, 0) * poly.EvalRoots(zeros, s) / poly.EvalRoots(poles, s)
	}
	return w, h, nil
}
