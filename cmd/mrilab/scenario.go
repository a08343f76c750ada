package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/san-kum/mrilab/internal/automation"
	"github.com/san-kum/mrilab/internal/storage"
	"github.com/spf13/cobra"
)

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of demos from a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.Name != "" {
		fmt.Printf("scenario: %s\n", sc.Name)
	}
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, runErr := automation.RunScenario(ctx, sc, logger)

	st := storage.New(dataDir)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tDEMO\tMODE\tSTEPS\tNAME\tRUN")
	for i, r := range results {
		runID := "-"
		if r.Step.SaveAs != "" {
			id, err := st.Save(r.Result)
			if err != nil {
				return err
			}
			runID = id
		}
		mode := r.Result.Mode
		if mode == "" {
			mode = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", i+1, r.Result.Demo, mode, r.Result.StepsTaken, r.Step.SaveAs, runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}
