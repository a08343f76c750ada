package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mrilab/internal/analysis"
	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/export"
	"github.com/san-kum/mrilab/internal/storage"
	"github.com/san-kum/mrilab/internal/viz"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}
}

func newPlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
}

func newExportCmd(use, short string, fn func(*dynamo.Result, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [run_id] [path]",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := storage.New(dataDir).LoadResult(args[0])
			if err != nil {
				return err
			}
			path := "-"
			if len(args) == 2 {
				path = args[1]
			}
			if err := fn(result, path); err != nil {
				return err
			}
			if path != "-" {
				fmt.Fprintf(os.Stderr, "wrote %s\n", path)
			}
			return nil
		},
	}
}

func newPNGCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "png [run_id]",
		Short: "render run series to a png plot",
		Args:  cobra.ExactArgs(1),
		RunE:  pngRun,
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default <run_id>.png)")
	return cmd
}

func newSVGCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render run series or trail to svg",
		Args:  cobra.ExactArgs(1),
		RunE:  svgRun,
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default <run_id>.svg)")
	cmd.Flags().BoolVar(&trailSVG, "trail", false, "draw the magnetization trail instead of the series")
	return cmd
}

func newSpectrumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spectrum [run_id] [channel]",
		Short: "frequency content of a recorded channel",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  spectrumRun,
	}
	cmd.Flags().StringVar(&pngPath, "png", "", "also write the spectrum to a png")
	cmd.Flags().StringVar(&chartOut, "chart", "", "also write a spectrum chart (.svg or .png)")
	return cmd
}

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
	fmt.Fprintln(w, "ID\tDEMO\tMODE\tTIME\tSTEPS\tCHANNELS")

	for _, run := range runs {
		mode := run.Mode
		if mode == "" {
			mode = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			run.ID,
			run.Demo,
			mode,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			strings.Join(run.Channels, ","),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	if len(result.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("demo: %s\n", result.Demo)
	fmt.Printf("samples: %d\n\n", len(result.Times))

	for _, ch := range result.Channels {
		data := result.Series[ch]
		if len(data) == 0 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s vs %s", ch, result.Timing.Caption())),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	// transverse plane of the stored trail
	if len(result.Trail) > 1 {
		xs := make([]float64, len(result.Trail))
		ys := make([]float64, len(result.Trail))
		for i, p := range result.Trail {
			xs[i], ys[i] = p.X, p.Y
		}
		fmt.Println(analysis.NewPortrait("Mx", xs, "My", ys).ASCII(60, 20))
	}

	return nil
}

func exportCSV(result *dynamo.Result, path string) error {
	return storage.ExportCSV(path, result)
}

func exportJSON(result *dynamo.Result, path string) error {
	return storage.ExportJSON(path, result)
}

func exportXLSX(result *dynamo.Result, path string) error {
	if path == "-" {
		return fmt.Errorf("xlsx export needs a file path")
	}
	return storage.ExportXLSX(path, result)
}

func outputPath(runID, ext string) string {
	if outPath != "" {
		return outPath
	}
	return runID + ext
}

func pngRun(cmd *cobra.Command, args []string) error {
	result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	path := outputPath(args[0], ".png")
	if err := export.SeriesPNG(path, result, export.DefaultPNG); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func svgRun(cmd *cobra.Command, args []string) error {
	result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}

	var svg string
	if trailSVG {
		svg = export.TrailToSVG(result.Trail, viz.NewCamera(), 600, 600, export.Palette[0])
	} else {
		svg = export.SeriesToSVG(result, 800, 400)
	}
	if svg == "" {
		return fmt.Errorf("run %s has nothing to draw", args[0])
	}

	path := outputPath(args[0], ".svg")
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	if len(result.Channels) == 0 {
		return fmt.Errorf("run %s has no channels", args[0])
	}
	channel := result.Channels[0]
	if len(args) == 2 {
		channel = args[1]
	}
	data, ok := result.Series[channel]
	if !ok {
		return fmt.Errorf("run %s has no channel %q (available: %v)", args[0], channel, result.Channels)
	}
	if len(data) < 4 {
		return fmt.Errorf("channel %s too short for a spectrum", channel)
	}

	// one sample per step
	mags := analysis.Spectrum(data)
	freqs := analysis.Frequencies(len(data), 1)
	f := analysis.DominantFrequency(data, 1)
	period := analysis.Period(data)

	fmt.Printf("run: %s\n", args[0])
	fmt.Printf("channel: %s (%d samples)\n", channel, len(data))
	fmt.Printf("dominant: %.6f cycles/step (%.6f rad/step)\n", f, analysis.AngularRate(data))
	if f > 0 {
		fmt.Printf("period: %.3f steps from spectrum", 1/f)
		if period > 0 {
			fmt.Printf(", %.3f steps from crossings", period)
		}
		fmt.Println()
		if tm := result.Timing; tm.FrameRate > 0 {
			fmt.Printf("        %.3f %s\n", tm.TimeFactor/(f*float64(tm.FrameRate)), tm.Unit)
		}
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(mags,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("|X(f)| of %s, 0..0.5 cycles/step", channel)),
	))

	if pngPath != "" {
		title := fmt.Sprintf("%s spectrum (%s)", channel, args[0])
		if err := export.SpectrumPNG(pngPath, title, freqs, mags, export.DefaultPNG); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngPath)
	}
	if chartOut != "" {
		graph, err := export.SpectrumChart(fmt.Sprintf("%s spectrum", channel), freqs, mags)
		if err != nil {
			return err
		}
		if err := export.WriteChart(chartOut, graph); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", chartOut)
	}
	return nil
}
