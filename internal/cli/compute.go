package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ta-kernels/internal/analysis/indicators"
	"ta-kernels/internal/exporter"
	"ta-kernels/internal/logging"
	"ta-kernels/internal/models"
	"ta-kernels/internal/store"
)

const dateLayout = "2006-01-02"

// parseRange parses optional --from/--to dates. --to is inclusive of the whole day.
func parseRange(from, to string) (time.Time, time.Time, error) {
	var lo, hi time.Time
	var err error
	if from != "" {
		if lo, err = time.Parse(dateLayout, from); err != nil {
			return lo, hi, fmt.Errorf("invalid --from %q: %w", from, err)
		}
	}
	if to != "" {
		if hi, err = time.Parse(dateLayout, to); err != nil {
			return lo, hi, fmt.Errorf("invalid --to %q: %w", to, err)
		}
		hi = hi.Add(24*time.Hour - time.Nanosecond)
	}
	return lo, hi, nil
}

// sourceSpec names where bars come from.
type sourceSpec struct {
	Input     string
	DB        string
	Symbol    string
	Timeframe string
}

// sourceFromFlags merges the data flags over the [data] config section.
func (a *App) sourceFromFlags(cmd *cobra.Command) sourceSpec {
	spec := sourceSpec{Symbol: a.Config.Data.Symbol, Timeframe: a.Config.Data.Timeframe}
	switch a.Config.Data.Source {
	case "sqlite":
		spec.DB = a.Config.Data.Path
	default:
		spec.Input = a.Config.Data.Path
	}

	if v, _ := cmd.Flags().GetString("input"); v != "" {
		spec.Input, spec.DB = v, ""
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		spec.DB, spec.Input = v, ""
	}
	if v, _ := cmd.Flags().GetString("symbol"); v != "" {
		spec.Symbol = v
	}
	if v, _ := cmd.Flags().GetString("timeframe"); v != "" {
		spec.Timeframe = v
	}
	return spec
}

// loadFrame opens the bar source described by spec.
func (a *App) loadFrame(ctx context.Context, spec sourceSpec, from, to time.Time) (*models.BarFrame, error) {
	opts := []store.Option{store.WithLogger(a.Logger), store.WithMetrics(a.Metrics)}
	switch {
	case spec.DB != "":
		if spec.Symbol == "" || spec.Timeframe == "" {
			return nil, fmt.Errorf("--symbol and --timeframe are required with --db")
		}
		s, err := store.NewSQLiteStore(spec.DB, opts...)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.LoadFrame(ctx, spec.Symbol, spec.Timeframe, from, to)
	case spec.Input != "":
		return store.NewCSVSource(spec.Input, opts...).LoadFrame(ctx, spec.Symbol, spec.Timeframe, from, to)
	}
	return nil, fmt.Errorf("no bar source: pass --input or --db, or set [data] path")
}

// requestsFromFlags builds the batch: a --kernel flag wins over [[indicators]].
func (a *App) requestsFromFlags(cmd *cobra.Command) ([]indicators.Request, error) {
	tags, _ := cmd.Flags().GetStringSlice("kernel")
	if len(tags) == 0 {
		reqs := a.Config.Requests()
		if len(reqs) == 0 {
			return nil, fmt.Errorf("no kernels: pass --kernel or add [[indicators]] to the config")
		}
		return reqs, nil
	}

	rawParams, _ := cmd.Flags().GetStringArray("param")
	rawCols, _ := cmd.Flags().GetStringArray("col")
	p, err := ParseParams(rawParams)
	if err != nil {
		return nil, err
	}
	c, err := ParseColumns(rawCols)
	if err != nil {
		return nil, err
	}

	reqs := make([]indicators.Request, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		reqs = append(reqs, indicators.Request{Kernel: tag, Params: p, Columns: c})
	}
	return reqs, nil
}

// tailTable keeps the last n rows of t. n <= 0 keeps everything.
func tailTable(t *exporter.Table, n int) *exporter.Table {
	if n <= 0 || n >= t.Len() {
		return t
	}
	start := t.Len() - n
	out := &exporter.Table{Index: t.Index[start:], Names: t.Names}
	for _, col := range t.Columns {
		out.Columns = append(out.Columns, col[start:])
	}
	return out
}

func newComputeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute indicators over a bar source",
		Long: `Compute one or more kernels over bars from a CSV file or the SQLite bar store.

Parameters are given as --param key=value and apply to every --kernel of the
invocation; out-of-range values are clamped and unknown keys are ignored.
Column roles (close, high, low, volume) map to frame columns with --col.
Without --kernel, the [[indicators]] batch of the config file is computed.`,
		Example: `  takernels compute --input bars.csv --kernel TEMA --param window=10
  takernels compute --input bars.csv --kernel SMA,EMA --col close="Adj Close" --out ma.xlsx
  takernels compute --db bars.db --symbol INFY --timeframe 1d --kernel PVO --json
  takernels compute --config takernels.toml --tail 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			reqs, err := app.requestsFromFlags(cmd)
			if err != nil {
				return err
			}

			fromStr, _ := cmd.Flags().GetString("from")
			toStr, _ := cmd.Flags().GetString("to")
			from, to, err := parseRange(fromStr, toStr)
			if err != nil {
				return err
			}

			frame, err := app.loadFrame(ctx, app.sourceFromFlags(cmd), from, to)
			if err != nil {
				return err
			}

			workers, _ := cmd.Flags().GetInt("workers")
			results, err := app.NewEngine(workers).Compute(ctx, frame, reqs)
			if err != nil {
				return err
			}

			outputs := make([]*models.Output, len(results))
			for i, r := range results {
				outputs[i] = r.Output
			}
			table, err := exporter.FromOutputs(outputs...)
			if err != nil {
				return err
			}
			if table.Index == nil {
				table.Index = frame.Index()
			}
			tail, _ := cmd.Flags().GetInt("tail")
			table = tailTable(table, tail)

			precision := app.Config.Data.Precision
			if cmd.Flags().Changed("precision") {
				precision, _ = cmd.Flags().GetInt("precision")
			}

			outPath, _ := cmd.Flags().GetString("out")
			if outPath == "" {
				outPath = app.Config.Data.Output
			}
			switch {
			case outPath != "":
				if err := exporter.WriteFile(outPath, table, precision); err != nil {
					return err
				}
				logger := logging.FromContext(ctx)
				logger.Info().
					Str("path", outPath).
					Int("rows", table.Len()).
					Strs("columns", table.Names).
					Msg("Indicators exported")
				if output.IsJSON() {
					return output.JSON(map[string]interface{}{"path": outPath, "rows": table.Len(), "columns": table.Names})
				}
				output.Success("Wrote %d rows x %d columns to %s", table.Len(), len(table.Names), outPath)
				return nil
			case output.IsJSON():
				return exporter.WriteJSON(output.Writer(), table)
			default:
				return exporter.WriteCSV(output.Writer(), table, precision)
			}
		},
	}

	cmd.Flags().String("input", "", "CSV bar file")
	cmd.Flags().String("db", "", "SQLite bar database")
	cmd.Flags().String("symbol", "", "symbol to load from --db")
	cmd.Flags().String("timeframe", "", "timeframe to load from --db")
	cmd.Flags().String("from", "", "first bar date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "last bar date (YYYY-MM-DD)")
	cmd.Flags().StringSliceP("kernel", "k", nil, "kernel tag(s) to compute")
	cmd.Flags().StringArrayP("param", "p", nil, "kernel parameter key=value (repeatable)")
	cmd.Flags().StringArray("col", nil, "column mapping role=column (repeatable)")
	cmd.Flags().String("out", "", "write to a .csv or .xlsx file instead of stdout")
	cmd.Flags().Int("workers", 0, "concurrent kernels (default: [engine] workers)")
	cmd.Flags().Int("tail", 0, "only output the last N rows")
	cmd.Flags().Int("precision", 6, "decimal places, -1 for shortest form")

	return cmd
}
