package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/numkit/batch"
	"github.com/san-kum/numkit/fit"
	"github.com/san-kum/numkit/internal/config"
	"github.com/san-kum/numkit/internal/dataset"
	"github.com/san-kum/numkit/internal/storage"
	"github.com/san-kum/numkit/smooth"
	"github.com/san-kum/numkit/stats"
	"github.com/san-kum/numkit/timeseries"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	column     string
	timeColumn string
	step       float64
	maxLag     int
	threshold  float64
	window     int
	mode       string
	alpha      float64
	method     string
	guess      string
	maxIter    int
	tolerance  float64
	workers    int
	label      string
	outFile    string
	// Config file
	configFile string
	// Preset name
	preset string
)

// main registers the numkit commands and flags and executes the root
// command. It exits the process with status 1 if command execution
// returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "numkit",
		Short: "error analysis for correlated time series",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".numkit", "data directory")

	statsCmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "estimate the mean with a correlation-corrected error bar",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}
	statsCmd.Flags().StringVar(&column, "column", "", "value column, by name or index (default last)")
	statsCmd.Flags().StringVar(&timeColumn, "time-column", "", "coordinate column, by name or index")
	statsCmd.Flags().Float64Var(&step, "step", config.DefaultStep, "sample interval when no time column is given")
	statsCmd.Flags().IntVar(&maxLag, "max-lag", 0, "maximum acf lag (0 = half the series)")
	statsCmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "acf integration cutoff")
	statsCmd.Flags().StringVar(&label, "label", "", "report label (default column name)")
	statsCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	statsCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	acfCmd := &cobra.Command{
		Use:   "acf [file]",
		Short: "print the autocorrelation function",
		Args:  cobra.ExactArgs(1),
		RunE:  runACF,
	}
	acfCmd.Flags().StringVar(&column, "column", "", "value column, by name or index (default last)")
	acfCmd.Flags().StringVar(&timeColumn, "time-column", "", "coordinate column, by name or index")
	acfCmd.Flags().Float64Var(&step, "step", config.DefaultStep, "sample interval when no time column is given")
	acfCmd.Flags().IntVar(&maxLag, "max-lag", 0, "maximum acf lag (0 = half the series)")
	acfCmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "acf integration cutoff")
	acfCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	acfCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	smoothCmd := &cobra.Command{
		Use:   "smooth [file]",
		Short: "smooth a series and print it as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  runSmooth,
	}
	smoothCmd.Flags().StringVar(&column, "column", "", "value column, by name or index (default last)")
	smoothCmd.Flags().StringVar(&timeColumn, "time-column", "", "coordinate column, by name or index")
	smoothCmd.Flags().Float64Var(&step, "step", config.DefaultStep, "sample interval when no time column is given")
	smoothCmd.Flags().StringVar(&method, "method", "running", "smoothing method (running|exp)")
	smoothCmd.Flags().IntVar(&window, "window", config.DefaultWindow, "running average window")
	smoothCmd.Flags().StringVar(&mode, "mode", config.DefaultMode, "running average mode (valid|same)")
	smoothCmd.Flags().Float64Var(&alpha, "alpha", config.DefaultAlpha, "exponential smoothing factor")
	smoothCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	smoothCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	fitCmd := &cobra.Command{
		Use:   "fit [model] [file]",
		Short: "fit a model to a series",
		Args:  cobra.ExactArgs(2),
		RunE:  runFit,
	}
	fitCmd.Flags().StringVar(&column, "column", "", "value column, by name or index (default last)")
	fitCmd.Flags().StringVar(&timeColumn, "time-column", "", "coordinate column, by name or index")
	fitCmd.Flags().Float64Var(&step, "step", config.DefaultStep, "sample interval when no time column is given")
	fitCmd.Flags().StringVar(&guess, "guess", "", "initial parameters, comma separated")
	fitCmd.Flags().IntVar(&maxIter, "max-iter", config.DefaultMaxIterations, "maximum iterations")
	fitCmd.Flags().Float64Var(&tolerance, "tol", 1e-10, "relative rss tolerance")
	fitCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	fitCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	batchCmd := &cobra.Command{
		Use:   "batch [files...]",
		Short: "estimate errors for many series in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().StringVar(&column, "column", "", "value column, by name or index (default last)")
	batchCmd.Flags().StringVar(&timeColumn, "time-column", "", "coordinate column, by name or index")
	batchCmd.Flags().Float64Var(&step, "step", config.DefaultStep, "sample interval when no time column is given")
	batchCmd.Flags().IntVar(&maxLag, "max-lag", 0, "maximum acf lag (0 = half the series)")
	batchCmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "acf integration cutoff")
	batchCmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = all cpus)")
	batchCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	batchCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved reports",
		RunE:  listReports,
	}

	showCmd := &cobra.Command{
		Use:   "show [report_id]",
		Short: "show a saved report",
		Args:  cobra.ExactArgs(1),
		RunE:  showReport,
	}

	exportCmd := &cobra.Command{
		Use:   "export [report_id]",
		Short: "export a report to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportReport,
	}
	exportCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [report_id]",
		Short: "export a stored acf to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportACF,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %s: window=%d mode=%s max_lag=%d threshold=%g max_iterations=%d alpha=%g\n",
					name, p.Window, p.Mode, p.MaxLag, p.Threshold, p.MaxIterations, p.Alpha)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write a config file to edit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				cfg = config.GetPreset(preset)
				if cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	configCmd.Flags().StringVar(&preset, "preset", "", "seed from a preset")

	rootCmd.AddCommand(statsCmd, acfCmd, smoothCmd, fitCmd, batchCmd, listCmd, showCmd, exportCmd, exportCSVCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig assembles the effective configuration for a command:
// defaults, then preset, then config file, with explicit CLI flags
// winning over all of them.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	// Apply preset if specified
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	// Load config file if specified (overrides preset)
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override config
	if cmd.Flags().Changed("window") {
		cfg.Window = window
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = mode
	}
	if cmd.Flags().Changed("max-lag") {
		cfg.MaxLag = maxLag
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Threshold = threshold
	}
	if cmd.Flags().Changed("max-iter") {
		cfg.MaxIterations = maxIter
	}
	if cmd.Flags().Changed("alpha") {
		cfg.Alpha = alpha
	}
	if cmd.Flags().Changed("column") {
		cfg.Column = column
	}
	if cmd.Flags().Changed("time-column") {
		cfg.TimeColumn = timeColumn
	}
	if cmd.Flags().Changed("step") {
		cfg.Step = step
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadSeries(path string, cfg *config.Config) (*timeseries.Series, error) {
	return dataset.Load(path, dataset.Options{
		Column:     cfg.Column,
		TimeColumn: cfg.TimeColumn,
		Step:       cfg.Step,
	})
}

func statsOptions(cfg *config.Config) []stats.Option {
	opts := []stats.Option{stats.Threshold(cfg.Threshold)}
	if cfg.MaxLag > 0 {
		opts = append(opts, stats.MaxLag(cfg.MaxLag))
	}
	return opts
}

func runStats(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	s, err := loadSeries(source, cfg)
	if err != nil {
		return err
	}

	opts := statsOptions(cfg)
	est, err := stats.ErrorEstimate(s, opts...)
	if err != nil {
		return err
	}
	acf, err := stats.Autocorrelation(s, opts...)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	name := label
	if name == "" {
		name = cfg.Column
	}
	if name == "" {
		name = "series"
	}
	reportID, err := st.Save(name, source, cfg.Column, est, acf)
	if err != nil {
		return err
	}

	fmt.Printf("report id: %s\n", reportID)
	fmt.Printf("samples: %d\n", est.N)
	fmt.Println("\nestimate:")
	fmt.Printf("  mean: %.6g\n", est.Mean)
	fmt.Printf("  std err: %.6g\n", est.StdErr)
	fmt.Printf("  naive std err: %.6g\n", est.NaiveStdErr)
	fmt.Printf("  correlation time: %.3f\n", est.CorrelationTime)
	fmt.Printf("  statistical inefficiency: %.3f\n", acf.StatisticalInefficiency())
	fmt.Printf("  effective samples: %.1f\n", est.NEff)
	lo, hi := est.ConfidenceInterval(0.95)
	if !math.IsNaN(lo) {
		fmt.Printf("  95%% ci: [%.6g, %.6g]\n", lo, hi)
	}
	if est.Truncated {
		fmt.Println("\nwarning: acf never crossed the threshold; the error bar may be too small")
	}

	return nil
}

func runACF(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	s, err := loadSeries(args[0], cfg)
	if err != nil {
		return err
	}

	acf, err := stats.Autocorrelation(s, statsOptions(cfg)...)
	if err != nil {
		return err
	}

	fmt.Printf("samples: %d\n", acf.N)
	fmt.Printf("correlation time: %.3f\n", acf.CorrelationTime)
	fmt.Printf("statistical inefficiency: %.3f\n", acf.StatisticalInefficiency())
	fmt.Printf("cutoff lag: %d\n", acf.CutoffLag)
	fmt.Printf("confidence bound: %.4f\n", acf.ConfidenceBound())
	if acf.Truncated {
		fmt.Println("warning: no threshold crossing within the lag window")
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LAG\tACF")
	for lag, v := range acf.Values {
		fmt.Fprintf(w, "%d\t%.6f\n", lag, v)
	}
	return w.Flush()
}

func runSmooth(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	s, err := loadSeries(args[0], cfg)
	if err != nil {
		return err
	}

	m, err := smooth.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	var out *timeseries.Series
	switch method {
	case "running":
		out, err = smooth.RunningAverage(s, cfg.Window, m)
	case "exp":
		out, err = smooth.Exponential(s, cfg.Alpha)
	default:
		err = fmt.Errorf("unknown method: %s (available: [running exp])", method)
	}
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "value"}); err != nil {
		return err
	}
	for i := 0; i < out.Len(); i++ {
		row := []string{
			strconv.FormatFloat(out.Coord(i), 'f', 6, 64),
			strconv.FormatFloat(out.At(i), 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func runFit(cmd *cobra.Command, args []string) error {
	model, err := fit.ModelNamed(args[0])
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, fit.ModelNames())
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	s, err := loadSeries(args[1], cfg)
	if err != nil {
		return err
	}

	var g []float64
	if guess != "" {
		g, err = parseGuess(guess)
		if err != nil {
			return err
		}
	} else {
		g = defaultGuess(model, s)
		// Models beyond two parameters have side minima; a coarse grid
		// around the heuristic picks the right valley to refine.
		if model.ParamCount() > 2 {
			grid := make([][]float64, len(g))
			for j, v := range g {
				grid[j] = []float64{v / 4, v, v * 4}
			}
			if best, _, gerr := fit.GridSearch(s, model, grid); gerr == nil {
				g = best
			}
		}
	}

	res, err := fit.Fit(s, model, g, fit.MaxIterations(cfg.MaxIterations), fit.Tolerance(tolerance))
	if err != nil {
		var div *fit.FitDivergenceError
		if errors.As(err, &div) {
			fmt.Printf("last parameters: %v\n", div.LastParams)
			fmt.Printf("last rss: %g\n", div.LastRSS)
		}
		return err
	}

	fmt.Printf("model: %s\n", model.Name())
	fmt.Printf("samples: %d\n", s.Len())
	fmt.Printf("iterations: %d\n", res.Iterations)
	fmt.Printf("rss: %.6g\n", res.RSS)
	if res.IllConditioned {
		fmt.Println("warning: ill-conditioned fit, parameter errors are unreliable")
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAM\tVALUE\tSTDERR")
	perr := res.ParamErrors()
	for i, p := range res.Params {
		fmt.Fprintf(w, "p%d\t%.6g\t%.6g\n", i, p, perr[i])
	}
	return w.Flush()
}

// defaultGuess derives a starting point from the series endpoints.
// Decay constants start at fractions of the coordinate span, which is
// close enough for the built-in models on reasonably scaled data.
func defaultGuess(model fit.Model, s *timeseries.Series) []float64 {
	first := s.At(0)
	span := s.Coord(s.Len()-1) - s.Coord(0)
	if span <= 0 {
		span = 1
	}

	switch model.Name() {
	case "linear":
		slope := (s.At(s.Len()-1) - first) / span
		return []float64{slope, first - slope*s.Coord(0)}
	case "exp":
		return []float64{first, span / 3}
	case "exp2":
		return []float64{first / 2, span / 10, first / 2, span / 2}
	}

	g := make([]float64, model.ParamCount())
	for i := range g {
		g[i] = 1
	}
	return g
}

func parseGuess(text string) ([]float64, error) {
	parts := strings.Split(text, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad guess value %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	series := make([]*timeseries.Series, len(args))
	loadErrs := make([]error, len(args))
	for i, path := range args {
		series[i], loadErrs[i] = loadSeries(path, cfg)
	}

	fmt.Printf("analyzing %d series...\n\n", len(series))
	reports := batch.Run(context.Background(), series, batch.Options{
		Workers: workers,
		Stats:   statsOptions(cfg),
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSAMPLES\tMEAN\tSTDERR\tNEFF\tTAU")
	for i, r := range reports {
		if loadErrs[i] != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", args[i], loadErrs[i])
			continue
		}
		if r.Err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", args[i], r.Err)
			continue
		}
		est := r.Estimate
		fmt.Fprintf(w, "%s\t%d\t%.6g\t%.6g\t%.1f\t%.2f\n",
			args[i], est.N, est.Mean, est.StdErr, est.NEff, est.CorrelationTime)
	}
	return w.Flush()
}

func listReports(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	reports, err := st.List()
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		fmt.Println("no reports found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tSAMPLES\tMEAN\tSTDERR\tTAU")

	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.6g\t%.6g\t%.2f\n",
			r.ID,
			r.Label,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Samples,
			r.Mean,
			r.StdErr,
			r.CorrelationTime,
		)
	}

	return w.Flush()
}

func showReport(cmd *cobra.Command, args []string) error {
	reportID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(reportID)
	if err != nil {
		return err
	}

	fmt.Printf("report: %s\n", meta.ID)
	fmt.Printf("label: %s\n", meta.Label)
	fmt.Printf("source: %s\n", meta.Source)
	if meta.Column != "" {
		fmt.Printf("column: %s\n", meta.Column)
	}
	fmt.Printf("time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("samples: %d\n", meta.Samples)
	fmt.Println("\nestimate:")
	fmt.Printf("  mean: %.6g\n", meta.Mean)
	fmt.Printf("  std err: %.6g\n", meta.StdErr)
	fmt.Printf("  naive std err: %.6g\n", meta.NaiveStdErr)
	fmt.Printf("  correlation time: %.3f\n", meta.CorrelationTime)
	fmt.Printf("  statistical inefficiency: %.3f\n", 2*meta.CorrelationTime)
	fmt.Printf("  effective samples: %.1f\n", meta.NEff)
	if meta.Truncated {
		fmt.Println("\nwarning: acf never crossed the threshold; the error bar may be too small")
	}

	if acf, err := st.LoadACF(reportID); err == nil {
		fmt.Printf("\nacf: %d lags stored (use export-csv to dump)\n", len(acf))
	}

	return nil
}

func exportReport(cmd *cobra.Command, args []string) error {
	reportID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(reportID)
	if err != nil {
		return err
	}

	acf, err := st.LoadACF(reportID)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		acf = nil
	}

	if outFile != "" {
		if err := storage.ExportJSON(outFile, meta, acf); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	}
	return storage.ExportJSONStdout(meta, acf)
}

func exportACF(cmd *cobra.Command, args []string) error {
	reportID := args[0]

	st := storage.New(dataDir)
	acf, err := st.LoadACF(reportID)
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"lag", "acf"}); err != nil {
		return err
	}
	for lag, v := range acf {
		row := []string{strconv.Itoa(lag), strconv.FormatFloat(v, 'f', 6, 64)}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}
