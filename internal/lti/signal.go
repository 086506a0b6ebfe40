package lti

import (
	"fmt"

	"github.com/san-kum/ltisim/internal/matx"
	"gonum.org/v1/gonum/mat"
)

// Result is a simulated time response. Y has one row per sample and one
// column per output. X holds the state trajectory and is only set when the
// simulated system was given in state-space form.
type Result struct {
	T []float64
	Y *mat.Dense
	X *mat.Dense
}

// Output returns the samples of output channel i.
func (r *Result) Output(i int) []float64 {
	return matx.Col(r.Y, i)
}

// MultiResult holds one response per input channel, each shaped like
// Result.Y.
type MultiResult struct {
	T []float64
	Y []*mat.Dense
}

// FreqResponse is a complex frequency response.
type FreqResponse struct {
	W []float64
	H []complex128
}

// BodeData holds magnitude in dB and unwrapped phase in degrees.
type BodeData struct {
	W     []float64
	Mag   []float64
	Phase []float64
}

// toSignal turns an input sequence into a samples×inputs matrix. A 1-D
// slice is a single input channel.
func toSignal(u any) (*mat.Dense, error) {
	switch x := u.(type) {
	case nil:
		return nil, nil
	case []float64:
		if len(x) == 0 {
			return nil, nil
		}
		return matx.Column(x), nil
	case []int:
		v, _ := toVector("input", x)
		if len(v) == 0 {
			return nil, nil
		}
		return matx.Column(v), nil
	}
	m, err := toMatrix("input", u)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func checkSignal(u *mat.Dense, inputs int) error {
	if u == nil {
		return fmt.Errorf("%w: empty input sequence", ErrInvalidArgument)
	}
	if _, m := u.Dims(); m != inputs {
		return fmt.Errorf("%w: input has %d columns, system has %d inputs", ErrIncompatibleDimensions, m, inputs)
	}
	return nil
}

func initialState(x0 []float64, n int) (*mat.VecDense, error) {
	if x0 == nil {
		return mat.NewVecDense(n, nil), nil
	}
	if len(x0) != n {
		return nil, fmt.Errorf("%w: initial state has %d entries, system has %d states", ErrIncompatibleDimensions, len(x0), n)
	}
	return mat.NewVecDense(n, append([]float64(nil), x0...)), nil
}
