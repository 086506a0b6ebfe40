package metrics

import "gonum.org/v1/gonum/floats"

// ControlEffort is the mean L1 norm of the input per sample. Samples
// without input count as zero effort.
type ControlEffort struct {
	l1      float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(_, u []float64, _ float64) {
	if len(u) > 0 {
		c.l1 += floats.Norm(u, 1)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.l1 / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.l1 = 0
	c.samples = 0
}
