package metrics

// Energy is the signal energy of the output, the sum of y² over all
// samples and channels.
type Energy struct {
	name  string
	total float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(y, u []float64, t float64) {
	for _, v := range y {
		e.total += v * v
	}
}

func (e *Energy) Value() float64 { return e.total }

func (e *Energy) Reset() { e.total = 0 }
