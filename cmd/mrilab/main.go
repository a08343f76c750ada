package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/san-kum/mrilab/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	// Config file
	configFile string
	// Preset name
	preset string

	steps        int
	mode         string
	params       []string
	snap         bool
	coilConstant string
	save         bool
	noSave       bool
	headless     bool

	// Static demos
	gx, gy, gz float64
	function   string
	terms      int

	// Output paths
	outPath  string
	xlsxPath string
	pngPath  string
	svgPath  string
	trailSVG bool
	chartOut string

	// verify and sweep
	integrator string
	substeps   int
	sweepParam string
	sweepVals  string
	sweepRange string
	metricName string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "mrilab",
		Short:         "interactive MRI physics demos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindEnv(cmd.Root().PersistentFlags()); err != nil {
				return err
			}
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = log.NewWithOptions(os.Stderr, log.Options{
				Prefix:          "mrilab",
				Level:           level,
				ReportTimestamp: true,
			})
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mrilab", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCmd("export-csv", "export run series as csv", exportCSV),
		newExportCmd("export-json", "export run as json", exportJSON),
		newExportCmd("export-xlsx", "export run as an excel workbook", exportXLSX),
		newPNGCmd(),
		newSVGCmd(),
		newSpectrumCmd(),
		newPresetsCmd(),
		newDemosCmd(),
		newGradientCmd(),
		newFourierCmd(),
		newVerifyCmd(),
		newSweepCmd(),
		newScenarioCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		if logger == nil {
			logger = log.New(os.Stderr)
		}
		logger.Error(err)
		os.Exit(1)
	}
}

// bindEnv lets MRILAB_DATA and MRILAB_LOG_LEVEL, from the environment or a
// .env file, stand in for flags that were not given.
func bindEnv(flags *pflag.FlagSet) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	v := viper.New()
	v.SetEnvPrefix("MRILAB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	dataDir = v.GetString("data")
	logLevel = v.GetString("log-level")
	return nil
}

// addConfigFlags registers the flags shared by every command that builds a
// demo from a config.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().StringVar(&mode, "mode", "", "reference frame (wcs, rrf)")
	cmd.Flags().StringArrayVar(&params, "param", nil, "parameter override name=value (repeatable)")
	cmd.Flags().BoolVar(&snap, "snap", false, "snap coil dipoles to the placement grid")
	cmd.Flags().StringVar(&coilConstant, "coil-constant", "", `coil constant K, a number or "physical"`)
}

// resolveConfig layers defaults, preset, config file and changed flags, in
// that order. demo comes from args when given.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	demo := ""
	if len(args) > 0 {
		demo = args[0]
	}

	if preset != "" {
		name := demo
		if name == "" {
			name = cfg.Demo
		}
		p := config.GetPreset(name, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(name))
		}
		cfg = merge(cfg, p)
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = merge(cfg, loaded)
	}

	if demo != "" {
		cfg.Demo = demo
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("snap") {
		v := snap
		cfg.Snap = &v
	}
	if flags.Changed("coil-constant") {
		cfg.CoilConstant = coilConstant
	}
	if flags.Lookup("gx") != nil {
		if flags.Changed("gx") {
			cfg.Gradient.Gx = gx
		}
		if flags.Changed("gy") {
			cfg.Gradient.Gy = gy
		}
		if flags.Changed("gz") {
			cfg.Gradient.Gz = gz
		}
	}
	if flags.Lookup("function") != nil {
		if flags.Changed("function") {
			cfg.Function = function
		}
		if flags.Changed("terms") {
			cfg.Terms = terms
		}
	}

	overrides, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 && cfg.Params == nil {
		cfg.Params = make(map[string]float64, len(overrides))
	}
	for k, v := range overrides {
		cfg.Params[k] = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("config resolved", "demo", cfg.Demo, "steps", cfg.Steps, "mode", cfg.Mode, "params", cfg.Params)
	return cfg, nil
}

// merge lays the set fields of top over base.
func merge(base, top *config.Config) *config.Config {
	out := *base
	if top.Demo != "" {
		out.Demo = top.Demo
	}
	if top.Steps > 0 {
		out.Steps = top.Steps
	}
	if top.Mode != "" {
		out.Mode = top.Mode
	}
	if len(top.Params) > 0 {
		out.Params = make(map[string]float64, len(base.Params)+len(top.Params))
		for k, v := range base.Params {
			out.Params[k] = v
		}
		for k, v := range top.Params {
			out.Params[k] = v
		}
	}
	if len(top.Dipoles) > 0 {
		out.Dipoles = top.Dipoles
	}
	if top.Snap != nil {
		v := *top.Snap
		out.Snap = &v
	}
	if top.CoilConstant != "" {
		out.CoilConstant = top.CoilConstant
	}
	if top.Function != "" {
		out.Function = top.Function
	}
	if top.Terms > 0 {
		out.Terms = top.Terms
	}
	if top.Gradient != (config.GradientConfig{}) {
		out.Gradient = top.Gradient
	}
	if top.Output != "" {
		out.Output = top.Output
	}
	return &out
}

func parseParams(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q, expected name=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --param %q: %w", pair, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}

func parseValues(list string) ([]float64, error) {
	var out []float64
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", field, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no values given")
	}
	return out, nil
}

// parseRange reads min:max:count.
func parseRange(arg string) (float64, float64, int, error) {
	parts := strings.Split(arg, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid range %q, expected min:max:count", arg)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid range %q: %w", arg, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid range %q: %w", arg, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return 0, 0, 0, fmt.Errorf("invalid range %q: count must be a positive integer", arg)
	}
	return lo, hi, n, nil
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func printMetrics(metrics map[string]float64) {
	if len(metrics) == 0 {
		return
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedNames(metrics) {
		fmt.Printf("  %s: %.6f\n", name, metrics[name])
	}
}
