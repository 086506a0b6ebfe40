// Package metrics summarizes simulated responses. Metrics observe one
// sample at a time, so they can be fed from a stored run or directly from
// an lti.Result.
package metrics

import (
	"github.com/san-kum/ltisim/internal/lti"
	"gonum.org/v1/gonum/mat"
)

// Metric accumulates a scalar over the samples of a response.
type Metric interface {
	Name() string
	Observe(y, u []float64, t float64)
	Value() float64
	Reset()
}

// Default returns the metrics reported by the CLI analyze command.
func Default() []Metric {
	return []Metric{NewEnergy(), NewPeak(), NewControlEffort()}
}

// Collect resets ms, feeds them every sample of res and returns their
// values by name. u holds the input, one row per sample; nil means no input.
func Collect(res *lti.Result, u mat.Matrix, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	rows, _ := res.Y.Dims()
	var ur int
	if u != nil {
		ur, _ = u.Dims()
	}
	for i := 0; i < rows; i++ {
		y := res.Y.RawRowView(i)
		var ui []float64
		if i < ur {
			ui = mat.Row(nil, i, u)
		}
		for _, m := range ms {
			m.Observe(y, ui, res.T[i])
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
