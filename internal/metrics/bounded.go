package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Bounded is the fraction of samples whose outputs all stay within
// threshold in absolute value. With no samples it is 1.
type Bounded struct {
	threshold  float64
	violations int
	samples    int
}

func NewBounded(threshold float64) *Bounded {
	return &Bounded{threshold: threshold}
}

func (b *Bounded) Name() string { return "bounded" }

func (b *Bounded) Observe(y, _ []float64, _ float64) {
	b.samples++
	if len(y) > 0 && floats.Norm(y, math.Inf(1)) > b.threshold {
		b.violations++
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1
	}
	return 1 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}
