package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum returns the magnitudes of the first len(data)/2 Fourier
// coefficients of data.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	coeffs := fourier.NewFFT(len(data)).Coefficients(nil, data)
	ps := make([]float64, len(data)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the frequency, in cycles per unit time, of the
// largest non-DC bin of the spectrum of data sampled every dt.
func DominantFrequency(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return float64(best) / (float64(len(data)) * dt)
}
