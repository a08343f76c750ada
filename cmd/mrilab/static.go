package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/san-kum/mrilab/internal/automation"
	"github.com/san-kum/mrilab/internal/config"
	"github.com/san-kum/mrilab/internal/experiment"
	"github.com/san-kum/mrilab/internal/export"
	"github.com/san-kum/mrilab/internal/storage"
	"github.com/san-kum/mrilab/internal/viz"
	"github.com/spf13/cobra"
)

var staticDescriptions = map[string]string{
	"gradient": "linear gradient field offsets over a 5x5x5 lattice",
	"fourier":  "partial Fourier sums of a square wave or sawtooth",
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [demo]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			demos := config.Demos
			if len(args) == 1 {
				demos = []string{args[0]}
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DEMO\tPRESET\tSTEPS\tPARAMS")
			for _, demo := range demos {
				for _, name := range config.ListPresets(demo) {
					p := config.GetPreset(demo, name)
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", demo, name, p.Steps, describeParams(p))
				}
			}
			return w.Flush()
		},
	}
}

func describeParams(cfg *config.Config) string {
	var out string
	add := func(s string) {
		if out != "" {
			out += " "
		}
		out += s
	}
	if cfg.Mode != "" {
		add("mode=" + cfg.Mode)
	}
	for _, k := range sortedNames(cfg.Params) {
		add(fmt.Sprintf("%s=%g", k, cfg.Params[k]))
	}
	if len(cfg.Dipoles) > 0 {
		add(fmt.Sprintf("dipoles=%d", len(cfg.Dipoles)))
	}
	if g := cfg.Gradient; g != (config.GradientConfig{}) {
		add(fmt.Sprintf("gx=%g gy=%g gz=%g", g.Gx, g.Gy, g.Gz))
	}
	if cfg.Demo == "fourier" {
		add(fmt.Sprintf("function=%s terms=%d", cfg.Function, cfg.Terms))
	}
	return out
}

func newDemosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demos",
		Short: "list demos",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := experiment.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DEMO\tKIND\tDESCRIPTION")
			for _, name := range registry.ListDemos() {
				fmt.Fprintf(w, "%s\tanimated\t%s\n", name, registry.Describe(name))
			}
			for _, name := range config.StaticDemos {
				fmt.Fprintf(w, "%s\tstatic\t%s\n", name, staticDescriptions[name])
			}
			return w.Flush()
		},
	}
}

func newGradientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gradient",
		Short: "show the gradient field demo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, []string{"gradient"})
			if err != nil {
				return err
			}
			return showGradient(cfg)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&gx, "gx", 0, "x gradient (mT/m)")
	cmd.Flags().Float64Var(&gy, "gy", 0, "y gradient (mT/m)")
	cmd.Flags().Float64Var(&gz, "gz", 0, "z gradient (mT/m)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write samples and iso-lines to a workbook")
	cmd.Flags().StringVar(&svgPath, "svg", "", "write the rendered lattice to svg")
	return cmd
}

func showGradient(cfg *config.Config) error {
	g, err := experiment.Gradient(cfg)
	if err != nil {
		return err
	}
	field := g.Sample()
	cam := viz.NewCamera()
	fmt.Print(viz.GradientView(field, cam))

	if xlsxPath != "" {
		if err := storage.ExportGradientXLSX(xlsxPath, field); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", xlsxPath)
	}
	if svgPath != "" {
		cv := viz.NewCanvas(80, 40)
		viz.Render(cv, viz.GradientScene(field), cam)
		if err := os.WriteFile(svgPath, []byte(export.CanvasToSVG(cv, 4)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	return nil
}

func newFourierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fourier",
		Short: "show the Fourier series demo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, []string{"fourier"})
			if err != nil {
				return err
			}
			return showFourier(cfg)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&function, "function", "sign", "base function (sign, x/L)")
	cmd.Flags().IntVar(&terms, "terms", config.DefaultTerms, "number of terms N")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the approximation and coefficients to a workbook")
	cmd.Flags().StringVar(&pngPath, "png", "", "write f and s_N to a png")
	return cmd
}

func showFourier(cfg *config.Config) error {
	f, err := experiment.Fourier(cfg)
	if err != nil {
		return err
	}
	a := f.Sample()
	fmt.Print(viz.FourierView(a, 80, 12))

	if xlsxPath != "" {
		if err := storage.ExportFourierXLSX(xlsxPath, a); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", xlsxPath)
	}
	if pngPath != "" {
		if err := export.FourierPNG(pngPath, a, export.DefaultPNG); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngPath)
	}
	return nil
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [demo]",
		Short: "integrate the Bloch equation and compare with the closed form",
		Args:  cobra.MaximumNArgs(1),
		RunE:  verifyDemos,
	}
	addConfigFlags(cmd)
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (rk4, rk45, euler)")
	cmd.Flags().IntVar(&substeps, "substeps", 10, "integrator steps per demo step")
	return cmd
}

func verifyDemos(cmd *cobra.Command, args []string) error {
	demos := experiment.VerifiableDemos
	if len(args) == 1 {
		demos = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DEMO\tINTEG\tSTEPS\tSUBSTEPS\tMAX ERROR\tAT STEP")
	for _, demo := range demos {
		cfg, err := resolveConfig(cmd, []string{demo})
		if err != nil {
			return err
		}
		c, err := experiment.Verify(cfg, integrator, substeps)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.3e\t%d\n", c.Demo, c.Integrator, c.Steps, c.Substeps, c.MaxError, c.WorstStep)
	}
	return w.Flush()
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [demo]",
		Short: "run a demo once per parameter value, in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepDemo,
	}
	addConfigFlags(cmd)
	cmd.Flags().StringVar(&sweepParam, "sweep", "b0", "parameter to sweep")
	cmd.Flags().StringVar(&sweepVals, "values", "0.5,1.5,3", "comma separated values")
	cmd.Flags().StringVar(&sweepRange, "range", "", "evenly spaced values as min:max:count, instead of --values")
	cmd.Flags().BoolVar(&save, "save", false, "store every run under the data directory")
	cmd.Flags().StringVar(&chartOut, "chart", "", "write a metric chart (.svg or .png)")
	cmd.Flags().StringVar(&metricName, "metric", "", "metric to chart (default: first)")
	return cmd
}

func sweepDemo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{Config: cfg, ParamName: sweepParam}
	if sweepRange != "" {
		if sweep.ParamMin, sweep.ParamMax, sweep.NumSteps, err = parseRange(sweepRange); err != nil {
			return err
		}
	} else if sweep.List, err = parseValues(sweepVals); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("sweeping", "demo", cfg.Demo, "param", sweepParam, "values", len(sweep.Values()), "steps", cfg.Steps)
	results, err := automation.RunSweep(ctx, sweep)
	if err != nil {
		return err
	}

	var names []string
	if len(results) > 0 {
		names = sortedNames(results[0].Metrics)
	}

	st := storage.New(dataDir)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, sweepParam)
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", n)
	}
	fmt.Fprint(w, "\tFINAL M")
	if save {
		fmt.Fprint(w, "\tRUN")
	}
	fmt.Fprintln(w)

	for _, r := range results {
		fmt.Fprintf(w, "%g", r.ParamValue)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.6f", r.Metrics[n])
		}
		fmt.Fprintf(w, "\t(%.3f, %.3f, %.3f)", r.Final.X, r.Final.Y, r.Final.Z)
		if save {
			runID, err := st.Save(r.Result)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "\t%s", runID)
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if chartOut == "" || len(names) == 0 {
		return nil
	}
	metric := metricName
	if metric == "" {
		metric = names[0]
	}
	xs := make([]float64, len(results))
	ys := make([]float64, len(results))
	for i, r := range results {
		v, ok := r.Metrics[metric]
		if !ok {
			return fmt.Errorf("unknown metric %q (available: %v)", metric, names)
		}
		xs[i], ys[i] = r.ParamValue, v
	}
	graph, err := export.SweepChart(sweepParam, xs, metric, ys)
	if err != nil {
		return err
	}
	if err := export.WriteChart(chartOut, graph); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", chartOut)
	return nil
}
