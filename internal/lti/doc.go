// Package lti models linear time-invariant systems.
//
// A [System] holds exactly one of three representations:
//
//   - [KindTF]: numerator and denominator polynomials
//   - [KindZPK]: zeros, poles and per-output gains
//   - [KindSS]: the state-space matrices A, B, C and D
//
// together with a [Timebase] that marks it continuous or discrete. Systems
// are built by arity: two arguments give a transfer function, three a
// zeros/poles/gain system and four a state-space system.
//
//	sys, err := lti.NewDiscrete(lti.Sampled(0.1), []float64{1}, []float64{1, -0.5})
//	res, err := lti.Dlsim(sys, u, nil, nil)
//
// # Algebra
//
// [Series], [Parallel], [Negate], [ScaleInput], [ScaleOutput], [AddGain] and
// [Div] compose systems in state-space form. Operands of any kind are
// converted first; continuous and discrete operands never mix.
//
// # Simulation
//
// Discrete systems are simulated with [Dlsim], [Dimpulse], [Dstep],
// [Dfreqresp] and [Dbode]. Continuous systems use [Lsim], [Impulse],
// [StepResponse], [Freqresp] and [Bode], or are discretized first with
// [Cont2Discrete].
package lti
