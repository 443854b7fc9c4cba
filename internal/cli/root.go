// Package cli provides the command-line interface for the indicator kernel engine.
package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ta-kernels/internal/analysis/indicators"
	"ta-kernels/internal/config"
	"ta-kernels/internal/logging"
	"ta-kernels/internal/metrics"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-01"
)

// App holds the application dependencies. Config, Logger, and Metrics are set
// before any subcommand runs.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

// NewEngine builds a batch engine wired to the app logger and metrics.
// workers <= 0 uses the configured worker count.
func (a *App) NewEngine(workers int) *indicators.Engine {
	if workers <= 0 {
		workers = a.Config.Engine.Workers
	}
	return indicators.NewEngine(workers,
		indicators.WithLogger(a.Logger),
		indicators.WithMetrics(a.Metrics),
	)
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	app := &App{Logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "takernels",
		Short: "Technical-analysis indicator kernels over OHLCV bars",
		Long: `takernels computes technical-analysis indicators over bar data.

Bars come from a CSV export (Date,Open,High,Low,Close,Adj Close,Volume) or a
SQLite bar database filled with 'takernels import'. Indicators are computed
concurrently and written as CSV, XLSX, or JSON.

Use 'takernels list' to see the available kernels and their parameters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			app.Config = cfg

			logCfg := cfg.Logging
			logCfg.Out = cmd.ErrOrStderr()
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logCfg.Level = "debug"
			}
			app.Logger = logging.NewLoggerWithConfig(logCfg)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logging.WithLogger(ctx, app.Logger))

			app.Registry = prometheus.NewRegistry()
			app.Metrics = metrics.NewMetrics(app.Registry)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./takernels.toml or ~/.config/takernels/takernels.toml)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newComputeCmd(app))
	addDataCommands(rootCmd, app)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("takernels v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented takernels.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			dir, _ := cmd.Flags().GetString("dir")
			path, err := config.WriteTemplate(dir)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Success("Wrote %s", path)
			return nil
		},
	}
	cmd.Flags().String("dir", ".", "directory to write takernels.toml into")
	return cmd
}
