package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ta-kernels/internal/logging"
	"ta-kernels/internal/store"
	"ta-kernels/pkg/utils"
)

// addDataCommands adds the bar store commands.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newImportCmd(app))
	rootCmd.AddCommand(newSeriesCmd(app))
}

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV bar file into the SQLite bar store",
		Example: `  takernels import --input INFY.csv --db bars.db --symbol INFY --timeframe 1d`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			input, _ := cmd.Flags().GetString("input")
			dbPath, _ := cmd.Flags().GetString("db")
			symbol, _ := cmd.Flags().GetString("symbol")
			timeframe, _ := cmd.Flags().GetString("timeframe")
			if timeframe == "" {
				timeframe = app.Config.Data.Timeframe
			}

			start := time.Now()
			file, err := os.Open(input)
			if err != nil {
				return err
			}
			defer file.Close()

			frame, err := store.LoadCSV(file)
			if err != nil {
				return err
			}

			s, err := store.NewSQLiteStore(dbPath, store.WithLogger(app.Logger), store.WithMetrics(app.Metrics))
			if err != nil {
				return err
			}
			defer s.Close()

			candles := frame.Candles()
			if err := s.SaveBars(cmd.Context(), symbol, timeframe, candles); err != nil {
				return err
			}

			logger := logging.FromContext(cmd.Context())
			logger.Info().
				Str("input", input).
				Str("symbol", symbol).
				Str("timeframe", timeframe).
				Int("bars", len(candles)).
				Dur("duration", time.Since(start)).
				Msg("Bars imported")

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":    symbol,
					"timeframe": timeframe,
					"bars":      len(candles),
				})
			}
			output.Success("Imported %s bars for %s/%s", utils.FormatCompact(float64(len(candles))), symbol, timeframe)
			return nil
		},
	}

	cmd.Flags().String("input", "", "CSV bar file")
	cmd.Flags().String("db", "", "SQLite bar database")
	cmd.Flags().String("symbol", "", "symbol to store the bars under")
	cmd.Flags().String("timeframe", "", "timeframe to store the bars under (default: [data] timeframe)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func newSeriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "List the series held by a SQLite bar store",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			dbPath, _ := cmd.Flags().GetString("db")

			s, err := store.NewSQLiteStore(dbPath, store.WithLogger(app.Logger))
			if err != nil {
				return err
			}
			defer s.Close()

			series, err := s.Series(cmd.Context())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				if series == nil {
					series = []store.SeriesInfo{}
				}
				return output.JSON(series)
			}
			if len(series) == 0 {
				output.Info("No series in %s", dbPath)
				return nil
			}

			output.Printf("%s %s %s %s\n",
				output.Header(utils.PadRight("SYMBOL", 12)),
				output.Header(utils.PadRight("TF", 6)),
				output.Header(utils.PadRight("BARS", 8)),
				output.Header("RANGE"))
			for _, info := range series {
				output.Printf("%s %s %s %s\n",
					utils.PadRight(info.Symbol, 12),
					utils.PadRight(info.Timeframe, 6),
					utils.PadRight(fmt.Sprint(info.Bars), 8),
					info.First.Format(time.RFC3339)+" .. "+info.Last.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "SQLite bar database")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
