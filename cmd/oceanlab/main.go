// Command oceanlab runs the ocean analysis pipelines over dataset files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chrissnell/oceanlab/internal/analysis"
	"github.com/chrissnell/oceanlab/internal/log"
	"github.com/chrissnell/oceanlab/internal/store"
	"github.com/chrissnell/oceanlab/pkg/config"
)

var (
	// Global flags
	configFile   string
	envFile      string
	debug        bool
	storePath    string
	outputDir    string
	outputFormat string

	cfg     *config.ConfigData
	catalog *store.Store
	runner  *analysis.Runner
)

var rootCmd = &cobra.Command{
	Use:   "oceanlab",
	Short: "Equatorial wave, wavelet and spectral analysis of ocean datasets",
	Long: `oceanlab analyzes gridded ocean fields and time series.

Inputs are .json, .msgpack, .csv or .xlsx dataset files. Settings come from
a YAML file (--config), OCEANLAB_* environment variables and flags, in
increasing priority. Results go to <output dir>/<command>/ and, when a
store path is set, every run is recorded in a SQLite catalog.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}

		var err error
		provider := config.NewYAMLProvider(configFile)
		defer provider.Close()
		if cfg, err = provider.LoadConfig(); err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("debug") {
			cfg.Debug = debug
		}
		if flags.Changed("store") {
			cfg.Store.Path = storePath
		}
		if flags.Changed("output") {
			cfg.Output.Dir = outputDir
		}
		if flags.Changed("format") {
			cfg.Output.Format = outputFormat
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := log.Init(cfg.Debug); err != nil {
			return err
		}

		if cfg.Store.Path != "" {
			if catalog, err = store.Open(cmd.Context(), cfg.Store.Path); err != nil {
				return err
			}
			log.Debugf("recording runs in %s", cfg.Store.Path)
		}
		runner = analysis.NewRunner(cfg, log.Named(cmd.Name()), catalog)
		return nil
	},
}

// finish runs after every command, including failed ones
func finish() {
	if catalog != nil {
		if err := catalog.Close(); err != nil {
			log.Warnf("closing catalog: %v", err)
		}
		catalog = nil
	}
	log.Sync()
}

func init() {
	cobra.OnFinalize(finish)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML analysis configuration")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the configuration")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "SQLite run catalog (or set "+config.EnvStorePath+")")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Output directory (or set "+config.EnvOutputDir+")")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", "Output format: json, msgpack or xlsx")

	rootCmd.AddCommand(waveletCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(bm95Cmd)
	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(ecindexCmd)
	rootCmd.AddCommand(dispersionCmd)
	rootCmd.AddCommand(runsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
