package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/ltisim/internal/analysis"
	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/metrics"
	"github.com/san-kum/ltisim/internal/storage"
	"github.com/san-kum/ltisim/internal/viz"
)

const maxPlots = 6

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYSTEM\tCOMMAND\tTIME\tDT\tSAMPLES\tKIND")
	for _, run := range runs {
		dtCol := "-"
		if run.Discrete {
			dtCol = "unspecified"
			if run.Dt > 0 {
				dtCol = fmt.Sprintf("%.4gs", run.Dt)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			run.ID,
			run.System,
			run.Command,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			dtCol,
			run.Samples,
			run.Kind,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *storage.Record, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	rec, err := st.LoadRecord(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, rec, nil
}

// outputColumns returns the names of the recorded outputs, which start
// with y in both run layouts.
func outputColumns(rec *storage.Record) []string {
	var names []string
	for _, c := range rec.Columns {
		if strings.HasPrefix(c, "y") {
			names = append(names, c)
		}
	}
	return names
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("system: %s (%s)\n", meta.System, meta.Command)
	fmt.Printf("samples: %d\n\n", meta.Samples)

	names := outputColumns(rec)
	if len(names) > maxPlots {
		logger.Warn("plotting the first outputs only", "outputs", len(names), "plotted", maxPlots)
		names = names[:maxPlots]
	}
	for _, name := range names {
		data, _ := rec.Column(name)
		opts := plotOptions(10)
		opts.Caption = fmt.Sprintf("%s vs time, t in [%g, %g]", name, rec.T[0], rec.T[len(rec.T)-1])
		fmt.Println(viz.PlotSeries([][]float64{data}, opts))
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, rec)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, rec)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}

	name := signalCol
	if name == "" {
		names := outputColumns(rec)
		if len(names) == 0 {
			return fmt.Errorf("run %s has no output columns", meta.ID)
		}
		name = names[0]
	}
	data, ok := rec.Column(name)
	if !ok {
		return fmt.Errorf("run %s has no column %q (have %v)", meta.ID, name, rec.Columns)
	}
	if len(data) < 4 {
		return fmt.Errorf("run %s has too few samples to analyze", meta.ID)
	}

	step := meta.Dt
	if step <= 0 {
		step = rec.T[1] - rec.T[0]
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("system: %s, column %s\n\n", meta.System, name)

	// Zero-pad to a power of two for the spectrum.
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)
	ps := analysis.PowerSpectrum(padded)

	opts := plotOptions(12)
	opts.Caption = "power spectrum (" + name + ")"
	fmt.Println(viz.PlotSeries([][]float64{ps}, opts))
	fmt.Println()

	freq := analysis.DominantFrequency(padded, step)
	fmt.Printf("dominant frequency: %.4g hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4g s\n", 1/freq)
	}

	if meta.Command != "step" {
		return nil
	}
	info, err := metrics.StepInfo(rec.T, data)
	if err != nil {
		return err
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "final value\t%.6g\n", info.FinalValue)
	fmt.Fprintf(w, "overshoot\t%.2f%%\n", info.Overshoot)
	fmt.Fprintf(w, "rise time\t%s\n", seconds(info.RiseTime))
	fmt.Fprintf(w, "settling time\t%s\n", seconds(info.SettlingTime))
	return w.Flush()
}

func seconds(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4gs", v)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tTIME\tINPUTS\tOUTPUTS")
	for _, name := range config.ListPresets() {
		f, _ := config.GetPreset(name)
		sys, err := f.Build()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", name, f.Kind, sys.Timebase(), sys.Inputs(), sys.Outputs())
	}
	return w.Flush()
}
