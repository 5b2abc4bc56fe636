package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chrissnell/oceanlab/internal/analysis"
	"github.com/chrissnell/oceanlab/internal/dataset"
)

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

var bm95Cmd = &cobra.Command{
	Use:   "bm95 <field>",
	Short: "Project sea level anomalies onto equatorial Kelvin and Rossby modes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("modes") {
			cfg.BM95.Modes, _ = flags.GetInt("modes")
		}
		if flags.Changed("fill-limit") {
			cfg.BM95.FillLimit, _ = flags.GetInt("fill-limit")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		sea, err := dataset.ReadField(args[0])
		if err != nil {
			return err
		}
		res, err := runner.BM95(cmd.Context(), sea)
		if err != nil {
			return err
		}
		path, err := runner.WriteResult(analysis.KindBM95, baseName(args[0]), res.Output(), res.Tables()...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d modes over %d latitudes\n%s\n", res.Projection.Modes(), len(res.Projection.Basis.Lat), path)
		return nil
	},
}

var powerCmd = &cobra.Command{
	Use:   "power <field>",
	Short: "Wavenumber-frequency spectrum of the latitude-band mean",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		sc := &cfg.Spectrum
		if flags.Changed("segment-length") {
			sc.SegmentLength, _ = flags.GetInt("segment-length")
		}
		if flags.Changed("overlap") {
			sc.Overlap, _ = flags.GetInt("overlap")
		}
		if flags.Changed("no-smooth") {
			noSmooth, _ := flags.GetBool("no-smooth")
			sc.Smooth = !noSmooth
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		field, err := dataset.ReadField(args[0])
		if err != nil {
			return err
		}
		res, err := runner.Power(cmd.Context(), field)
		if err != nil {
			return err
		}
		path, err := runner.WriteResult(analysis.KindPower, baseName(args[0]), res.Output(), res.Tables()...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d segments, %.1f degrees of freedom\n%s\n", res.Segments, res.DOF, path)
		return nil
	},
}

var ecindexCmd = &cobra.Command{
	Use:   "ecindex <sst field>",
	Short: "E and C ENSO indices from monthly SST",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("base-start") {
			cfg.ENSO.BaseStart, _ = flags.GetString("base-start")
		}
		if flags.Changed("base-end") {
			cfg.ENSO.BaseEnd, _ = flags.GetString("base-end")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		sst, err := dataset.ReadField(args[0])
		if err != nil {
			return err
		}
		res, err := runner.ECIndex(cmd.Context(), sst)
		if err != nil {
			return err
		}
		path, err := runner.WriteSeries(analysis.KindECIndex, baseName(args[0]), res.Series...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "eigenvalues %.4g %.4g\n%s\n", res.Index.Eigenvalues[0], res.Index.Eigenvalues[1], path)
		return nil
	},
}

var dispersionCmd = &cobra.Command{
	Use:   "dispersion",
	Short: "Long Rossby wave dispersion curves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		modes, _ := cmd.Flags().GetInt("modes")
		curves := analysis.DispersionCurves(modes)
		path, err := runner.WriteResult("dispersion", "rossby", curves, analysis.DispersionTables(curves)...)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	bm95Cmd.Flags().Int("modes", 0, "Number of meridional modes")
	bm95Cmd.Flags().Int("fill-limit", 0, "Longest longitude gap to interpolate")

	powerCmd.Flags().Int("segment-length", 0, "Time samples per segment")
	powerCmd.Flags().Int("overlap", 0, "Samples shared by consecutive segments (negative: half a segment)")
	powerCmd.Flags().Bool("no-smooth", false, "Skip the 1-2-1 smoothed copy")

	ecindexCmd.Flags().String("base-start", "", "First day of the base period (YYYY-MM-DD)")
	ecindexCmd.Flags().String("base-end", "", "Last day of the base period (YYYY-MM-DD)")

	dispersionCmd.Flags().Int("modes", 3, "Number of Rossby modes")
}
