package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrissnell/oceanlab/internal/analysis"
	"github.com/chrissnell/oceanlab/internal/dataset"
)

var waveletCmd = &cobra.Command{
	Use:   "wavelet <series>",
	Short: "Wavelet power spectrum with red-noise significance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		wc := &cfg.Wavelet
		if flags.Changed("mother") {
			wc.Mother, _ = flags.GetString("mother")
		}
		if flags.Changed("param") {
			wc.Param, _ = flags.GetFloat64("param")
		}
		if flags.Changed("dj") {
			wc.Dj, _ = flags.GetFloat64("dj")
		}
		if flags.Changed("level") {
			wc.Level, _ = flags.GetFloat64("level")
		}
		if flags.Changed("lag1") {
			lag1, _ := flags.GetFloat64("lag1")
			wc.Lag1 = &lag1
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		series, err := dataset.ReadSeries(args[0])
		if err != nil {
			return err
		}
		res, err := runner.Wavelet(cmd.Context(), series)
		if err != nil {
			return err
		}
		path, err := runner.WriteResult(analysis.KindWavelet, series.Name, res.Output(), res.Tables()...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: peak period %.4g days (%s)\n%s\n", series.Name, res.PeakPeriod, res.Summary, path)
		return nil
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter <series>",
	Short: "Lanczos low- or high-pass filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		fc := &cfg.Filter
		if flags.Changed("cutoff") {
			fc.Cutoff, _ = flags.GetFloat64("cutoff")
		}
		if flags.Changed("dt") {
			fc.Dt, _ = flags.GetFloat64("dt")
		}
		if flags.Changed("terms") {
			fc.Terms, _ = flags.GetInt("terms")
		}
		if flags.Changed("kind") {
			fc.Kind, _ = flags.GetString("kind")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		series, err := dataset.ReadSeries(args[0])
		if err != nil {
			return err
		}
		res, err := runner.Filter(cmd.Context(), series)
		if err != nil {
			return err
		}
		path, err := runner.WriteSeries(analysis.KindFilter, res.Filtered.Name, series, res.Filtered)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n%s\n", res.Filtered.Name, res.Summary, path)
		return nil
	},
}

func init() {
	waveletCmd.Flags().String("mother", "", "Mother wavelet: morlet, paul or dog")
	waveletCmd.Flags().Float64("param", 0, "Mother wavelet parameter (0 selects the family default)")
	waveletCmd.Flags().Float64("dj", 0, "Scale spacing in octaves")
	waveletCmd.Flags().Float64("level", 0, "Significance level")
	waveletCmd.Flags().Float64("lag1", 0, "Lag-1 autocorrelation of the red-noise background (default: estimated)")

	filterCmd.Flags().Float64("cutoff", 0, "Cutoff frequency in cycles per dt")
	filterCmd.Flags().Float64("dt", 0, "Sampling interval")
	filterCmd.Flags().Int("terms", 0, "Number of filter coefficients on each side")
	filterCmd.Flags().String("kind", "", "Filter kind: low or high")
}
