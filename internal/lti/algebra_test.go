package lti_test

import (
	"math/cmplx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ltisim/internal/lti"
)

var testFreqs = []float64{0, 0.3, 1, 4}

func build(args ...any) *lti.System {
	sys, err := lti.New(args...)
	Expect(err).NotTo(HaveOccurred())
	return sys
}

func response(sys *lti.System) []complex128 {
	fr, err := lti.Freqresp(sys, testFreqs, 0)
	Expect(err).NotTo(HaveOccurred())
	return fr.H
}

func expectClose(got, want []complex128) {
	Expect(got).To(HaveLen(len(want)))
	for i := range want {
		Expect(cmplx.Abs(got[i]-want[i])).To(BeNumerically("<", 1e-9), "at w=%v", testFreqs[i])
	}
}

func combine(want []complex128, other []complex128, op func(a, b complex128) complex128) []complex128 {
	out := make([]complex128, len(want))
	for i := range want {
		out[i] = op(want[i], other[i])
	}
	return out
}

var _ = Describe("State-space algebra", func() {
	var a, b, c *lti.System

	BeforeEach(func() {
		a = build([]float64{1}, []float64{1, 1})
		b = build([]float64{2}, []float64{1, 3})
		c = build([]float64{1, 0.5}, []float64{1, 2, 5})
	})

	Describe("Series", func() {
		It("multiplies frequency responses", func() {
			ab, err := lti.Series(a, b)
			Expect(err).NotTo(HaveOccurred())
			Expect(ab.Kind()).To(Equal(lti.KindSS))
			expectClose(response(ab), combine(response(a), response(b), func(x, y complex128) complex128 { return x * y }))
		})

		It("is associative", func() {
			ab, err := lti.Series(a, b)
			Expect(err).NotTo(HaveOccurred())
			left, err := lti.Series(ab, c)
			Expect(err).NotTo(HaveOccurred())

			bc, err := lti.Series(b, c)
			Expect(err).NotTo(HaveOccurred())
			right, err := lti.Series(a, bc)
			Expect(err).NotTo(HaveOccurred())

			expectClose(response(left), response(right))
		})

		It("requires the inputs of the first to match the outputs of the second", func() {
			twoIn := build(
				mat.NewDense(1, 1, []float64{-1}),
				mat.NewDense(1, 2, []float64{1, 1}),
				mat.NewDense(1, 1, []float64{1}),
				nil,
			)
			_, err := lti.Series(twoIn, a)
			Expect(err).To(MatchError(lti.ErrIncompatibleDimensions))
		})
	})

	Describe("Parallel", func() {
		It("adds frequency responses and commutes", func() {
			ab, err := lti.Parallel(a, b)
			Expect(err).NotTo(HaveOccurred())
			ba, err := lti.Parallel(b, a)
			Expect(err).NotTo(HaveOccurred())

			sum := combine(response(a), response(b), func(x, y complex128) complex128 { return x + y })
			expectClose(response(ab), sum)
			expectClose(response(ba), sum)
		})

		It("rejects feedthrough shapes that differ", func() {
			twoOut := build([][]float64{{1}, {2}}, []float64{1, 1})
			_, err := lti.Parallel(twoOut, a)
			Expect(err).To(MatchError(lti.ErrIncompatibleDimensions))
		})

		It("cancels a system subtracted from itself", func() {
			diff, err := lti.Sub(c, c)
			Expect(err).NotTo(HaveOccurred())
			res, err := lti.Impulse(diff, nil, []float64{0, 0.5, 1, 1.5}, 0)
			Expect(err).NotTo(HaveOccurred())
			for _, y := range mat.Col(nil, 0, res.Y[0]) {
				Expect(y).To(BeNumerically("~", 0, 1e-12))
			}
		})
	})

	Describe("static gains", func() {
		DescribeTable("DC gain of 1/(s+1) combined with a gain",
			func(op func(*lti.System) (*lti.System, error), want float64) {
				out, err := op(a)
				Expect(err).NotTo(HaveOccurred())
				g, err := lti.DCGain(out)
				Expect(err).NotTo(HaveOccurred())
				Expect(g[0]).To(BeNumerically("~", want, 1e-9))
			},
			Entry("sys + 2", func(s *lti.System) (*lti.System, error) { return lti.AddGain(s, 2.0) }, 3.0),
			Entry("sys - 1", func(s *lti.System) (*lti.System, error) { return lti.SubGain(s, 1) }, 0.0),
			Entry("1 - sys", func(s *lti.System) (*lti.System, error) { return lti.GainSub(1.0, s) }, 0.0),
			Entry("-sys", lti.Negate, -1.0),
			Entry("sys / 4", func(s *lti.System) (*lti.System, error) { return lti.Div(s, 4) }, 0.25),
			Entry("sys * 3", func(s *lti.System) (*lti.System, error) { return lti.ScaleInput(s, 3.0) }, 3.0),
			Entry("3 * sys", func(s *lti.System) (*lti.System, error) { return lti.ScaleOutput(3.0, s) }, 3.0),
		)

		It("adds no states when composing with a gain system", func() {
			two := build([]float64{2}, []float64{1})
			states := func(sys *lti.System) int {
				ss, ok := sys.StateSpace()
				Expect(ok).To(BeTrue())
				n, _ := ss.A.Dims()
				return n
			}
			twice := combine(response(a), response(a), func(x, _ complex128) complex128 { return 2 * x })

			for _, ab := range [][2]*lti.System{{two, a}, {a, two}} {
				out, err := lti.Series(ab[0], ab[1])
				Expect(err).NotTo(HaveOccurred())
				Expect(states(out)).To(Equal(1))
				expectClose(response(out), twice)

				tf, err := out.ToTF()
				Expect(err).NotTo(HaveOccurred())
				data, _ := tf.TransferFunction()
				Expect(data.Num[0][0]).To(HaveLen(1))
				Expect(data.Den).To(HaveLen(2))
			}

			sum, err := lti.Parallel(a, two)
			Expect(err).NotTo(HaveOccurred())
			Expect(states(sum)).To(Equal(1))
			expectClose(response(sum), combine(response(a), response(a), func(x, _ complex128) complex128 { return x + 2 }))

			four, err := lti.Series(two, two)
			Expect(err).NotTo(HaveOccurred())
			Expect(states(four)).To(Equal(1))
			g, err := lti.DCGain(four)
			Expect(err).NotTo(HaveOccurred())
			Expect(g[0]).To(BeNumerically("~", 4, 1e-12))
		})

		It("widens the outputs with a matrix gain", func() {
			k := mat.NewDense(2, 1, []float64{1, -2})
			out, err := lti.ScaleOutput(k, a)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Outputs()).To(Equal(2))
			g, err := lti.DCGain(out)
			Expect(err).NotTo(HaveOccurred())
			Expect(g[1]).To(BeNumerically("~", -2, 1e-9))
		})

		It("rejects a gain with the wrong shape", func() {
			_, err := lti.AddGain(a, mat.NewDense(2, 1, nil))
			Expect(err).To(MatchError(lti.ErrIncompatibleDimensions))
			_, err = lti.ScaleInput(a, mat.NewDense(2, 2, nil))
			Expect(err).To(MatchError(lti.ErrIncompatibleDimensions))
		})
	})

	Describe("Div", func() {
		It("refuses non-scalar divisors", func() {
			_, err := lti.Div(a, mat.NewDense(1, 1, []float64{2}))
			Expect(err).To(MatchError(lti.ErrAmbiguousOperation))
			_, err = lti.Div(a, b)
			Expect(err).To(MatchError(lti.ErrAmbiguousOperation))
		})

		It("refuses complex divisors", func() {
			_, err := lti.Div(a, complex(2, 1))
			Expect(err).To(MatchError(lti.ErrUnsupportedSystemKind))
		})

		It("treats complex operands with no imaginary part as real", func() {
			byComplex, err := lti.Div(a, complex(2, 0))
			Expect(err).NotTo(HaveOccurred())
			byReal, err := lti.Div(a, 2.0)
			Expect(err).NotTo(HaveOccurred())
			expectClose(response(byComplex), response(byReal))

			scaled, err := lti.ScaleInput(a, complex64(3))
			Expect(err).NotTo(HaveOccurred())
			expectClose(response(scaled), combine(response(a), response(a), func(x, _ complex128) complex128 { return 3 * x }))

			_, err = lti.AddGain(a, complex(1, -1))
			Expect(err).To(MatchError(lti.ErrUnsupportedSystemKind))
		})
	})

	Describe("time domains", func() {
		It("refuses to combine continuous and discrete systems", func() {
			d, err := lti.NewDiscrete(lti.Sampled(0.1), []float64{1}, []float64{1, -0.5})
			Expect(err).NotTo(HaveOccurred())
			_, err = lti.Series(a, d)
			Expect(err).To(MatchError(lti.ErrIncompatibleTimeDomain))
			_, err = lti.Parallel(d, a)
			Expect(err).To(MatchError(lti.ErrIncompatibleTimeDomain))
		})

		It("refuses different sample periods", func() {
			d1, err := lti.NewDiscrete(lti.Sampled(0.1), []float64{1}, []float64{1, -0.5})
			Expect(err).NotTo(HaveOccurred())
			d2, err := lti.NewDiscrete(lti.Sampled(0.2), []float64{1}, []float64{1, -0.5})
			Expect(err).NotTo(HaveOccurred())
			_, err = lti.Parallel(d1, d2)
			Expect(err).To(MatchError(lti.ErrIncompatibleTimeDomain))
		})

		It("treats an unspecified period as distinct from dt=1", func() {
			d1, err := lti.NewDiscrete(lti.Unspecified(), []float64{1}, []float64{1, -0.5})
			Expect(err).NotTo(HaveOccurred())
			d2, err := lti.NewDiscrete(lti.Sampled(1), []float64{1}, []float64{1, -0.5})
			Expect(err).NotTo(HaveOccurred())
			_, err = lti.Series(d1, d2)
			Expect(err).To(MatchError(lti.ErrIncompatibleTimeDomain))

			same, err := lti.Series(d1, d1)
			Expect(err).NotTo(HaveOccurred())
			Expect(same.Timebase().Equal(lti.Unspecified())).To(BeTrue())
		})
	})
})
