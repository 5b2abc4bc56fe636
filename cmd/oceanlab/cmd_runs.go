package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chrissnell/oceanlab/internal/dataset"
	"github.com/chrissnell/oceanlab/pkg/config"
)

var runsCmd = &cobra.Command{
	Use:   "runs [kind]",
	Short: "List recorded runs, or export a stored series with --export",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalog == nil {
			return fmt.Errorf("no run catalog: set --store, %s or store.path", config.EnvStorePath)
		}

		if id, _ := cmd.Flags().GetString("export"); id != "" {
			return exportRun(cmd, id)
		}

		kind := ""
		if len(args) == 1 {
			kind = args[0]
		}
		runs, err := catalog.Runs(cmd.Context(), kind)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tCREATED")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", run.ID, run.Kind, run.Created.Local().Format(time.DateTime))
		}
		return w.Flush()
	},
}

func exportRun(cmd *cobra.Command, id string) error {
	runID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("run id %q: %w", id, err)
	}
	names, err := catalog.SeriesNames(cmd.Context(), runID)
	if err != nil {
		return err
	}
	var series []*dataset.Series
	for _, name := range names {
		s, err := catalog.LoadSeries(cmd.Context(), runID, name)
		if err != nil {
			return err
		}
		series = append(series, s)
	}
	if len(series) == 0 {
		return fmt.Errorf("run %s has no stored series", runID)
	}
	path, err := runner.WriteSeries("runs", runID.String(), series...)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func init() {
	runsCmd.Flags().String("export", "", "Write the series of this run id to the output directory")
}
