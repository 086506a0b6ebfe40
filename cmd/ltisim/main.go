package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/lti"
	"github.com/san-kum/ltisim/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	samples    int
	freqPoints int
	dt         float64
	period     float64
	method     string
	alpha      float64
	duration   float64
	input      string
	integrator string
	hold       string
	x0         []float64
	toKind     string
	outFile    string
	showTable  bool
	theme      string
	signalCol  string

	settings config.Settings
	logger   = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// main registers the commands and runs the explorer when no subcommand is
// given. It exits with status 1 when a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "ltisim",
		Short:         "linear time-invariant system lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunExplorer(theme)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "./data", "data directory (LTISIM_DATA_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	runCmd := &cobra.Command{
		Use:   "run [system]",
		Short: "simulate a system driven by an input signal",
		Long: "Simulate a preset or system file. Discrete systems and continuous ones with --dt use\n" +
			"the discrete recurrence; other continuous systems are propagated over --time.",
		Args: cobra.ExactArgs(1),
		RunE: runSimulation,
	}
	runCmd.Flags().StringVar(&input, "input", "step", "impulse, step, or a CSV file of t,u0,u1,...")
	runCmd.Flags().IntVar(&samples, "n", 100, "number of samples (LTISIM_SAMPLES)")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "discretize continuous systems with this period")
	runCmd.Flags().StringVar(&method, "method", "zoh", "discretization method")
	runCmd.Flags().Float64Var(&alpha, "alpha", 0, "gbt weighting")
	runCmd.Flags().Float64Var(&duration, "time", 10, "duration for continuous simulation")
	runCmd.Flags().StringVar(&hold, "hold", "foh", "input hold between samples (zoh, foh)")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "integrate with euler, rk4 or rk45 instead of exact propagation")
	runCmd.Flags().Float64SliceVar(&x0, "x0", nil, "initial state")

	impulseCmd := &cobra.Command{
		Use:   "impulse [system]",
		Short: "impulse response of every input channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return channelResponse(cmd, args[0], "impulse")
		},
	}
	stepCmd := &cobra.Command{
		Use:   "step [system]",
		Short: "step response of every input channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return channelResponse(cmd, args[0], "step")
		},
	}
	for _, c := range []*cobra.Command{impulseCmd, stepCmd} {
		c.Flags().IntVar(&samples, "n", 100, "number of samples (LTISIM_SAMPLES)")
		c.Flags().Float64SliceVar(&x0, "x0", nil, "initial state")
	}

	bodeCmd := &cobra.Command{
		Use:   "bode [system]",
		Short: "magnitude and phase over frequency",
		Args:  cobra.ExactArgs(1),
		RunE:  bodePlot,
	}
	freqrespCmd := &cobra.Command{
		Use:   "freqresp [system]",
		Short: "complex frequency response",
		Args:  cobra.ExactArgs(1),
		RunE:  freqResponse,
	}
	for _, c := range []*cobra.Command{bodeCmd, freqrespCmd} {
		c.Flags().IntVar(&freqPoints, "n", 200, "number of frequencies (LTISIM_FREQ_POINTS)")
		c.Flags().BoolVar(&showTable, "table", false, "print every frequency")
	}

	c2dCmd := &cobra.Command{
		Use:   "c2d [system]",
		Short: "discretize a continuous system",
		Args:  cobra.ExactArgs(1),
		RunE:  discretize,
	}
	c2dCmd.Flags().Float64Var(&period, "dt", 0.1, "sample period")
	c2dCmd.Flags().StringVar(&method, "method", "zoh", fmt.Sprintf("one of %v", lti.Methods()))
	c2dCmd.Flags().Float64Var(&alpha, "alpha", 0, "gbt weighting")
	c2dCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the result as a system file")

	convertCmd := &cobra.Command{
		Use:   "convert [system]",
		Short: "convert between tf, zpk and ss",
		Args:  cobra.ExactArgs(1),
		RunE:  convertSystem,
	}
	convertCmd.Flags().StringVar(&toKind, "to", "ss", "target representation")
	convertCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the result as a system file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run outputs",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and step analysis of a stored response",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&signalCol, "column", "", "column to analyze (first output by default)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in systems",
		RunE:  listPresets,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "browse presets interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunExplorer(theme)
		},
	}

	rootCmd.AddCommand(runCmd, impulseCmd, stepCmd, bodeCmd, freqrespCmd, c2dCmd, convertCmd,
		listCmd, plotCmd, exportCSVCmd, exportJSONCmd, analyzeCmd, presetsCmd, tuiCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "err", err)
		stop()
		os.Exit(1)
	}
}

// setup applies environment settings to flags the user did not set and
// configures the logger.
func setup(cmd *cobra.Command) error {
	var err error
	settings, err = config.ParseEnv()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("data") {
		dataDir = settings.DataDir
	}
	if f := flags.Lookup("n"); f != nil && !f.Changed {
		switch cmd.Name() {
		case "bode", "freqresp":
			freqPoints = settings.FreqPoints
		default:
			samples = settings.Samples
		}
	}

	level := settings.Level()
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger.Debug("settings", "data", dataDir, "samples", samples, "freq_points", freqPoints)
	return nil
}

// loadSystem resolves a preset name or system file and builds it.
func loadSystem(ref string) (string, *lti.System, error) {
	f, err := config.Resolve(ref)
	if err != nil {
		return "", nil, err
	}
	sys, err := f.Build()
	if err != nil {
		return "", nil, err
	}
	name := f.Name
	if name == "" {
		name = ref
	}
	logger.Debug("loaded system", "name", name, "kind", sys.Kind(), "time", sys.Timebase())
	return name, sys, nil
}
