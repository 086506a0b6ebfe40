// Package analysis evaluates frequency responses and spectra.
//
// The evaluators work on plain coefficient arrays:
//
//   - [Freqz]: discrete response of b(z^-1)/a(z^-1) on the unit circle
//   - [FreqzZPK]: discrete response from zeros, poles and gain
//   - [Freqs]: continuous response of b(s)/a(s) on the imaginary axis
//   - [FreqsZPK]: continuous response from zeros, poles and gain
//   - [FindFreqs]: a logarithmic grid covering the interesting band
//   - [PowerSpectrum]: magnitude spectrum of a sampled signal
//
// # Bode data
//
// Magnitude and phase follow the usual conventions:
//
//	w, h, _ := analysis.Freqz(b, a, nil, 512, false)
//	mag := analysis.MagnitudeDB(h)
//	phase := analysis.Degrees(analysis.Unwrap(analysis.Angles(h)))
package analysis
