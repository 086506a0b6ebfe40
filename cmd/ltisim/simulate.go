package main

import (
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/lti"
	"github.com/san-kum/ltisim/internal/metrics"
	"github.com/san-kum/ltisim/internal/storage"
	"github.com/san-kum/ltisim/internal/viz"
)

func plotOptions(height int) viz.PlotOptions {
	return viz.PlotOptions{Width: 80, Height: height, Theme: viz.GetTheme(theme)}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	name, sys, err := loadSystem(args[0])
	if err != nil {
		return err
	}
	discretized := !sys.IsDiscrete() && dt > 0
	if discretized {
		sys, err = sys.ToDiscrete(dt, method, alpha)
		if err != nil {
			return err
		}
		logger.Info("discretized", "system", name, "dt", dt, "method", method)
	}

	var t []float64
	var u *mat.Dense
	if input == "impulse" || input == "step" {
		t = sampleTimes(sys, samples)
		u = standardInput(input, len(t), sys.Inputs(), sys.Timebase())
	} else {
		t, u, err = readInput(input)
		if err != nil {
			return err
		}
	}
	if err := cmd.Context().Err(); err != nil {
		return err
	}

	start := time.Now()
	var res *lti.Result
	if sys.IsDiscrete() {
		if input == "impulse" || input == "step" {
			res, err = lti.Dlsim(sys, u, nil, x0)
		} else {
			res, err = lti.Dlsim(sys, u, t, x0)
		}
	} else {
		opts := lti.LsimOptions{Integrator: integrator}
		// A held impulse sample keeps unit area.
		if hold == "zoh" || input == "impulse" {
			opts.Hold = lti.ZeroOrderHold
		}
		res, err = lti.LsimWith(sys, u, t, x0, opts)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	// The recurrence resamples file inputs onto its own grid, so u is only
	// recorded when it lines up with the output.
	var recorded mat.Matrix
	if r, _ := u.Dims(); r == len(res.T) {
		recorded = u
	}
	ms := append(metrics.Default(), metrics.NewBounded(1))
	values := metrics.Collect(res, recorded, ms...)

	rec, err := storage.FromResult(res, recorded)
	if err != nil {
		return err
	}
	meta := storage.RunMetadata{
		System:   name,
		Kind:     sys.Kind().String(),
		Command:  "run:" + inputLabel(),
		Discrete: sys.IsDiscrete(),
		Method:   integrator,
		Metrics:  finite(values),
	}
	if discretized {
		meta.Method = method
	}
	if d, ok := sys.Dt(); ok {
		meta.Dt = d
	}
	runID, err := save(meta, rec)
	if err != nil {
		return err
	}

	fmt.Printf("simulated %s in %v\n", name, elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", len(res.T))
	printMetrics(values)
	return nil
}

func inputLabel() string {
	if input == "impulse" || input == "step" {
		return input
	}
	return "file"
}

// sampleTimes is the run grid: samples steps of the period for discrete
// systems and an even span of duration for continuous ones.
func sampleTimes(sys *lti.System, n int) []float64 {
	if n < 2 {
		n = 2
	}
	t := make([]float64, n)
	if sys.IsDiscrete() {
		p := sys.Timebase().Period()
		for k := range t {
			t[k] = float64(k) * p
		}
		return t
	}
	floats.Span(t, 0, duration)
	return t
}

// standardInput drives every channel with a unit step or a unit impulse.
// A continuous impulse is a single sample of height 1/h, where h is the
// sample spacing.
func standardInput(kind string, n, inputs int, tb lti.Timebase) *mat.Dense {
	u := mat.NewDense(n, inputs, nil)
	for j := 0; j < inputs; j++ {
		if kind == "step" {
			for k := 0; k < n; k++ {
				u.Set(k, j, 1)
			}
			continue
		}
		height := 1.0
		if !tb.IsDiscrete() && n > 1 {
			height = float64(n-1) / duration
		}
		u.Set(0, j, height)
	}
	return u
}

func channelResponse(cmd *cobra.Command, ref, kind string) error {
	name, sys, err := loadSystem(ref)
	if err != nil {
		return err
	}

	var res *lti.MultiResult
	if kind == "impulse" {
		res, err = sys.Impulse(x0, nil, samples)
	} else {
		res, err = sys.Step(x0, nil, samples)
	}
	if err != nil {
		return err
	}
	if err := cmd.Context().Err(); err != nil {
		return err
	}

	rec, err := storage.FromMulti(res)
	if err != nil {
		return err
	}
	meta := storage.RunMetadata{
		System:   name,
		Kind:     sys.Kind().String(),
		Command:  kind,
		Discrete: sys.IsDiscrete(),
	}
	if d, ok := sys.Dt(); ok {
		meta.Dt = d
	}

	var summary *metrics.StepSummary
	if kind == "step" && sys.IsSISO() {
		info, err := metrics.StepInfo(res.T, mat.Col(nil, 0, res.Y[0]))
		if err != nil {
			return err
		}
		summary = &info
		meta.Metrics = finite(map[string]float64{
			"final":     info.FinalValue,
			"peak":      info.Peak,
			"overshoot": info.Overshoot,
			"rise_time": info.RiseTime,
			"settling":  info.SettlingTime,
		})
	}

	runID, err := save(meta, rec)
	if err != nil {
		return err
	}

	for in := range res.Y {
		plot, err := viz.PlotResponse(res, in, plotOptions(12))
		if err != nil {
			return err
		}
		fmt.Println(plot)
		fmt.Println()
	}
	fmt.Printf("run id: %s\n", runID)
	if summary != nil {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "final value\t%.6g\n", summary.FinalValue)
		fmt.Fprintf(w, "peak\t%.6g at %.4gs\n", summary.Peak, summary.PeakTime)
		fmt.Fprintf(w, "overshoot\t%.2f%%\n", summary.Overshoot)
		fmt.Fprintf(w, "rise time\t%s\n", seconds(summary.RiseTime))
		fmt.Fprintf(w, "settling time\t%s\n", seconds(summary.SettlingTime))
		return w.Flush()
	}
	return nil
}

func save(meta storage.RunMetadata, rec *storage.Record) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	id, err := st.Save(meta, rec)
	if err != nil {
		return "", err
	}
	logger.Debug("stored run", "id", id, "dir", dataDir, "samples", len(rec.T))
	return id, nil
}

// finite drops the values JSON cannot encode.
func finite(values map[string]float64) map[string]float64 {
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			delete(values, name)
		}
	}
	return values
}

func printMetrics(values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, values[name])
	}
}

func bodePlot(cmd *cobra.Command, args []string) error {
	name, sys, err := loadSystem(args[0])
	if err != nil {
		return err
	}
	b, err := sys.Bode(nil, freqPoints)
	if err != nil {
		return err
	}

	opts := plotOptions(10)
	opts.Caption = name
	fmt.Println(viz.PlotBode(b, opts))
	if !showTable {
		return nil
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "W\tMAG (dB)\tPHASE (deg)")
	for i := range b.W {
		fmt.Fprintf(w, "%.6g\t%.4f\t%.4f\n", b.W[i], b.Mag[i], b.Phase[i])
	}
	return w.Flush()
}

func freqResponse(cmd *cobra.Command, args []string) error {
	name, sys, err := loadSystem(args[0])
	if err != nil {
		return err
	}
	fr, err := sys.Freqresp(nil, freqPoints)
	if err != nil {
		return err
	}

	mag := make([]float64, len(fr.H))
	for i, h := range fr.H {
		mag[i] = cmplx.Abs(h)
	}
	opts := plotOptions(10)
	opts.Caption = name + " |H(w)|"
	fmt.Println(viz.PlotSeries([][]float64{mag}, opts))
	if !showTable {
		return nil
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "W\tRE\tIM\t|H|")
	for i, h := range fr.H {
		fmt.Fprintf(w, "%.6g\t%.6g\t%.6g\t%.6g\n", fr.W[i], real(h), imag(h), mag[i])
	}
	return w.Flush()
}

func discretize(cmd *cobra.Command, args []string) error {
	name, sys, err := loadSystem(args[0])
	if err != nil {
		return err
	}
	out, err := lti.Cont2Discrete(sys, period, method, alpha)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return writeSystem(name+"_"+method, out)
}

func convertSystem(cmd *cobra.Command, args []string) error {
	name, sys, err := loadSystem(args[0])
	if err != nil {
		return err
	}
	kind, err := lti.ParseKind(toKind)
	if err != nil {
		return err
	}
	out, err := sys.To(kind)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return writeSystem(name+"_"+toKind, out)
}

func writeSystem(name string, sys *lti.System) error {
	if outFile == "" {
		return nil
	}
	f, err := config.FromSystem(name, sys)
	if err != nil {
		return err
	}
	if err := config.Save(outFile, f); err != nil {
		return err
	}
	logger.Info("wrote system file", "path", outFile, "kind", f.Kind)
	return nil
}
