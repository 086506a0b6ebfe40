package metrics

import "math"

// Peak is the largest absolute output seen and the time it occurred.
type Peak struct {
	name string
	peak float64
	at   float64
	seen bool
}

func NewPeak() *Peak {
	return &Peak{name: "peak"}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(y, u []float64, t float64) {
	for _, v := range y {
		if a := math.Abs(v); !p.seen || a > p.peak {
			p.peak, p.at, p.seen = a, t, true
		}
	}
}

func (p *Peak) Value() float64 { return p.peak }

// Time returns when the peak was observed.
func (p *Peak) Time() float64 { return p.at }

func (p *Peak) Reset() {
	p.peak, p.at, p.seen = 0, 0, false
}
