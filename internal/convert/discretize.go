package convert

import (
	"errors"
	"fmt"

	"github.com/san-kum/ltisim/internal/matx"
	"gonum.org/v1/gonum/mat"
)

// Method names a continuous-to-discrete conversion.
type Method string

const (
	ZOH          Method = "zoh"
	FOH          Method = "foh"
	Impulse      Method = "impulse"
	GBT          Method = "gbt"
	Bilinear     Method = "bilinear"
	Tustin       Method = "tustin"
	Euler        Method = "euler"
	ForwardDiff  Method = "forward_diff"
	BackwardDiff Method = "backward_diff"
)

var (
	// ErrUnknownMethod indicates an unrecognized discretization method.
	ErrUnknownMethod = errors.New("convert: unknown discretization method")

	// ErrAlpha indicates a generalized bilinear weight outside [0, 1].
	ErrAlpha = errors.New("convert: gbt alpha must lie in [0, 1]")

	// ErrSamplePeriod indicates a non-positive sample period.
	ErrSamplePeriod = errors.New("convert: sample period must be positive")
)

// Methods lists the supported discretization methods.
func Methods() []Method {
	return []Method{ZOH, FOH, Impulse, GBT, Bilinear, Tustin, Euler, ForwardDiff, BackwardDiff}
}

// ParseMethod maps a method name onto a Method. The empty name is ZOH.
func ParseMethod(name string) (Method, error) {
	if name == "" {
		return ZOH, nil
	}
	for _, m := range Methods() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// Cont2Discrete discretizes the state-space system (a, b, c, d) with sample
// period dt. alpha is only read by GBT.
func Cont2Discrete(a, b, c, d mat.Matrix, dt float64, method Method, alpha float64) (ad, bd, cd, dd *mat.Dense, err error) {
	if dt <= 0 {
		return nil, nil, nil, nil, fmt.Errorf("%w: %v", ErrSamplePeriod, dt)
	}
	A, B, C, D, err := ABCDNormalize(a, b, c, d)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	switch method {
	case GBT:
		if alpha < 0 || alpha > 1 {
			return nil, nil, nil, nil, fmt.Errorf("%w: got %v", ErrAlpha, alpha)
		}
		return gbt(A, B, C, D, dt, alpha)
	case Bilinear, Tustin:
		return gbt(A, B, C, D, dt, 0.5)
	case Euler, ForwardDiff:
		return gbt(A, B, C, D, dt, 0)
	case BackwardDiff:
		return gbt(A, B, C, D, dt, 1)
	case ZOH, "":
		return zoh(A, B, C, D, dt)
	case FOH:
		return foh(A, B, C, D, dt)
	case Impulse:
		return impulse(A, B, C, D, dt)
	default:
		return nil, nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// gbt applies the generalized bilinear transform
// x[k+1] = (I - alpha*dt*A)^-1 ((I + (1-alpha)*dt*A) x[k] + dt*B u[k]).
func gbt(a, b, c, d *mat.Dense, dt, alpha float64) (ad, bd, cd, dd *mat.Dense, err error) {
	n, _ := a.Dims()
	eye := matx.Eye(n, n, 0)

	var ima, rhs, scaledB mat.Dense
	ima.Scale(-alpha*dt, a)
	ima.Add(eye, &ima)
	rhs.Scale((1-alpha)*dt, a)
	rhs.Add(eye, &rhs)
	scaledB.Scale(dt, b)

	ad, bd = new(mat.Dense), new(mat.Dense)
	if err := ad.Solve(&ima, &rhs); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	if err := bd.Solve(&ima, &scaledB); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	var cdT mat.Dense
	if err := cdT.Solve(ima.T(), c.T()); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	cd = matx.Clone(cdT.T())

	var cb mat.Dense
	cb.Mul(c, bd)
	cb.Scale(alpha, &cb)
	dd = new(mat.Dense)
	dd.Add(d, &cb)
	return ad, bd, cd, dd, nil
}

// zoh holds the input constant across each sample: exp([[A, B], [0, 0]]*dt).
func zoh(a, b, c, d *mat.Dense, dt float64) (ad, bd, cd, dd *mat.Dense, err error) {
	n, _ := a.Dims()
	_, m := b.Dims()

	em, err := matx.Block([][]mat.Matrix{
		{a, b},
		{matx.Zeros(m, n), matx.Zeros(m, m)},
	})
	if err != nil {
		return nil, nil, nil, nil, err
	}
	em.Scale(dt, em)

	var ms mat.Dense
	ms.Exp(em)
	return matx.Sub(&ms, 0, n, 0, n), matx.Sub(&ms, 0, n, n, n+m), matx.Clone(c), matx.Clone(d), nil
}

// foh interpolates the input linearly between samples.
func foh(a, b, c, d *mat.Dense, dt float64) (ad, bd, cd, dd *mat.Dense, err error) {
	n, _ := a.Dims()
	_, m := b.Dims()

	upper, err := matx.HStack(a, b)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	upper.Scale(dt, upper)
	em, err := matx.VStack(matx.BlockDiag(upper, matx.Eye(m, m, 0)), matx.Zeros(m, n+2*m))
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var ms mat.Dense
	ms.Exp(em)
	ms11 := matx.Sub(&ms, 0, n, 0, n)
	ms12 := matx.Sub(&ms, 0, n, n, n+m)
	ms13 := matx.Sub(&ms, 0, n, n+m, n+2*m)

	var tmp mat.Dense
	tmp.Mul(ms11, ms13)
	bd = new(mat.Dense)
	bd.Sub(ms12, ms13)
	bd.Add(bd, &tmp)

	var cm mat.Dense
	cm.Mul(c, ms13)
	dd = new(mat.Dense)
	dd.Add(d, &cm)
	return ms11, bd, matx.Clone(c), dd, nil
}

// impulse matches the sampled impulse response of the continuous system.
func impulse(a, b, c, d *mat.Dense, dt float64) (ad, bd, cd, dd *mat.Dense, err error) {
	var scaled mat.Dense
	scaled.Scale(dt, a)
	ad = new(mat.Dense)
	ad.Exp(&scaled)

	bd = new(mat.Dense)
	bd.Mul(ad, b)
	bd.Scale(dt, bd)

	dd = new(mat.Dense)
	dd.Mul(c, b)
	dd.Scale(dt, dd)
	return ad, bd, matx.Clone(c), dd, nil
}
