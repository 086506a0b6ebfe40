package analysis

import (
	"math"
	"math/cmplx"
)

// Angles returns the phase of each response sample in radians.
func Angles(h []complex128) []float64 {
	out := make([]float64, len(h))
	for i, v := range h {
		out[i] = cmplx.Phase(v)
	}
	return out
}

// MagnitudeDB returns 20*log10|h|.
func MagnitudeDB(h []complex128) []float64 {
	out := make([]float64, len(h))
	for i, v := range h {
		out[i] = 20 * math.Log10(cmplx.Abs(v))
	}
	return out
}

// Degrees converts radians to degrees.
func Degrees(rad []float64) []float64 {
	out := make([]float64, len(rad))
	for i, v := range rad {
		out[i] = v * 180 / math.Pi
	}
	return out
}

// Unwrap removes jumps larger than pi between consecutive phases by adding
// multiples of 2*pi.
func Unwrap(p []float64) []float64 {
	out := make([]float64, len(p))
	if len(p) == 0 {
		return out
	}
	out[0] = p[0]
	correction := 0.0
	for i := 1; i < len(p); i++ {
		dd := p[i] - p[i-1]
		mod := math.Mod(dd+math.Pi, 2*math.Pi)
		if mod < 0 {
			mod += 2 * math.Pi
		}
		mod -= math.Pi
		if mod == -math.Pi && dd > 0 {
			mod = math.Pi
		}
		if math.Abs(dd) >= math.Pi {
			correction += mod - dd
		}
		out[i] = p[i] + correction
	}
	return out
}
