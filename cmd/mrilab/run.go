package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mrilab/internal/config"
	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/experiment"
	"github.com/san-kum/mrilab/internal/sim"
	"github.com/san-kum/mrilab/internal/storage"
	"github.com/san-kum/mrilab/internal/viz"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [demo]",
		Short: "run a demo headless and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDemo,
	}
	addConfigFlags(cmd)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [demo]",
		Short: "animate a demo in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(cmd)
	cmd.Flags().BoolVar(&headless, "headless", false, "log frames at the demo frame rate instead of drawing")
	return cmd
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.IsStatic() {
		return renderStatic(cfg)
	}

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s demo...\n", cfg.Demo)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		st := storage.New(dataDir)
		runID, err := st.Save(result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	if result.Mode != "" {
		fmt.Printf("mode: %s\n", result.Mode)
	}
	fmt.Printf("steps: %d\n", result.StepsTaken)
	printLabels(result.Final)
	printMetrics(result.Metrics)
	return nil
}

func printLabels(f dynamo.Frame) {
	if len(f.Labels) == 0 {
		return
	}
	keys := make([]string, 0, len(f.Labels))
	for k := range f.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println()
	for _, k := range keys {
		fmt.Printf("  %s\n", f.Labels[k])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.IsStatic() {
		return renderStatic(cfg)
	}

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(); err != nil {
		return err
	}
	s := exp.Session()

	if !headless {
		return viz.Run(s)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if logger.GetLevel() > log.InfoLevel {
		logger.SetLevel(log.InfoLevel)
	}
	d := sim.NewDriver(s, logger)
	if cmd.Flags().Changed("steps") || configFile != "" || preset != "" {
		d.MaxSteps = cfg.Steps
	}
	caption := s.Timing().Caption()
	d.OnFrame = func(f dynamo.Frame) {
		fields := []interface{}{"step", f.Step, caption, fmt.Sprintf("%.3f", f.Time)}
		for _, ch := range s.Channels() {
			fields = append(fields, ch, fmt.Sprintf("%.4f", f.Values[ch]))
		}
		logger.Info("frame", fields...)
	}
	s.Play()
	if err := d.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	printMetrics(s.Result().Metrics)
	return nil
}

// renderStatic prints the static demos that run and live cannot animate.
func renderStatic(cfg *config.Config) error {
	switch cfg.Demo {
	case "gradient":
		return showGradient(cfg)
	case "fourier":
		return showFourier(cfg)
	}
	return fmt.Errorf("%w: %s", dynamo.ErrUnknownDemo, cfg.Demo)
}
