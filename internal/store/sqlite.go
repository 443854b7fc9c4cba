package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mattn/go-sqlite3"

	apperrors "ta-kernels/internal/errors"
	"ta-kernels/internal/logging"
	"ta-kernels/internal/models"
	"ta-kernels/pkg/utils"
)

// SQLiteStore implements BarStore using SQLite.
// Prices and volume are REAL columns; NaN is stored as NULL and read back as NaN.
type SQLiteStore struct {
	options
	db    *sql.DB
	retry utils.RetryConfig
}

var _ BarStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the bar database at dbPath.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	retry := utils.DefaultRetryConfig()
	retry.Retryable = isBusy

	store := &SQLiteStore{
		options: newOptions(opts),
		db:      db,
		retry:   retry,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the bars table and its index.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Bars table; timestamp is Unix nanoseconds UTC
	CREATE TABLE IF NOT EXISTS bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		open REAL,
		high REAL,
		low REAL,
		close REAL,
		volume REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timeframe, timestamp)
	);

	CREATE INDEX IF NOT EXISTS idx_bars_series ON bars(symbol, timeframe, timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// SaveBars upserts candles for symbol/timeframe in one transaction. A bar with an existing
// timestamp replaces the stored one. Busy databases are retried with backoff.
func (s *SQLiteStore) SaveBars(ctx context.Context, symbol, timeframe string, candles []models.Candle) error {
	if err := validateSeriesKey(symbol, timeframe); err != nil {
		return err
	}
	if len(candles) == 0 {
		return nil
	}

	err := utils.Retry(ctx, s.retry, func() error {
		return s.saveBars(ctx, symbol, timeframe, candles)
	})
	if err != nil {
		return apperrors.NewDataError("sqlite", fmt.Sprintf("saving %s/%s", symbol, timeframe), err)
	}

	s.logger.Debug().
		Str("symbol", symbol).
		Str("timeframe", timeframe).
		Int("bars", len(candles)).
		Msg("Bars saved")
	return nil
}

func (s *SQLiteStore) saveBars(ctx context.Context, symbol, timeframe string, candles []models.Candle) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO bars (symbol, timeframe, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range candles {
		_, err := stmt.ExecContext(ctx, symbol, timeframe, c.Timestamp.UTC().UnixNano(),
			nullable(c.Open), nullable(c.High), nullable(c.Low), nullable(c.Close), nullable(c.Volume))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func rangeBounds(from, to time.Time) (int64, int64) {
	lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
	if !from.IsZero() {
		lo = from.UTC().UnixNano()
	}
	if !to.IsZero() {
		hi = to.UTC().UnixNano()
	}
	return lo, hi
}

// LoadFrame implements BarSource. An empty result is ErrDataNotFound.
func (s *SQLiteStore) LoadFrame(ctx context.Context, symbol, timeframe string, from, to time.Time) (*models.BarFrame, error) {
	start := time.Now()
	candles, err := s.candles(ctx, symbol, timeframe, from, to)
	if err != nil {
		return nil, apperrors.NewDataError("sqlite", fmt.Sprintf("loading %s/%s", symbol, timeframe), err)
	}
	if len(candles) == 0 {
		return nil, apperrors.NewDataError("sqlite", fmt.Sprintf("no bars for %s/%s", symbol, timeframe), apperrors.ErrDataNotFound)
	}

	s.metrics.AddBars("sqlite", len(candles))
	logging.LogBarsLoaded(s.logger, fmt.Sprintf("sqlite:%s/%s", symbol, timeframe), len(candles), time.Since(start))
	return models.FrameFromCandles(candles), nil
}

func (s *SQLiteStore) candles(ctx context.Context, symbol, timeframe string, from, to time.Time) ([]models.Candle, error) {
	lo, hi := rangeBounds(from, to)
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM bars
		WHERE symbol = ? AND timeframe = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, timeframe, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var ts int64
		var open, high, low, closePrice, volume sql.NullFloat64
		if err := rows.Scan(&ts, &open, &high, &low, &closePrice, &volume); err != nil {
			return nil, err
		}
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(0, ts).UTC(),
			Open:      fromNullable(open),
			High:      fromNullable(high),
			Low:       fromNullable(low),
			Close:     fromNullable(closePrice),
			Volume:    fromNullable(volume),
		})
	}
	return candles, rows.Err()
}

// Freshness returns the timestamp of the latest stored bar.
func (s *SQLiteStore) Freshness(ctx context.Context, symbol, timeframe string) (time.Time, error) {
	var latest sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(timestamp) FROM bars WHERE symbol = ? AND timeframe = ?
	`, symbol, timeframe).Scan(&latest)
	if err != nil {
		return time.Time{}, apperrors.NewDataError("sqlite", "reading freshness", err)
	}
	if !latest.Valid {
		return time.Time{}, apperrors.NewDataError("sqlite", fmt.Sprintf("no bars for %s/%s", symbol, timeframe), apperrors.ErrDataNotFound)
	}
	return time.Unix(0, latest.Int64).UTC(), nil
}

// Series lists the stored symbol/timeframe series.
func (s *SQLiteStore) Series(ctx context.Context) ([]SeriesInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, timeframe, COUNT(*), MIN(timestamp), MAX(timestamp)
		FROM bars
		GROUP BY symbol, timeframe
		ORDER BY symbol, timeframe
	`)
	if err != nil {
		return nil, apperrors.NewDataError("sqlite", "listing series", err)
	}
	defer rows.Close()

	var series []SeriesInfo
	for rows.Next() {
		var info SeriesInfo
		var first, last int64
		if err := rows.Scan(&info.Symbol, &info.Timeframe, &info.Bars, &first, &last); err != nil {
			return nil, apperrors.NewDataError("sqlite", "listing series", err)
		}
		info.First = time.Unix(0, first).UTC()
		info.Last = time.Unix(0, last).UTC()
		series = append(series, info)
	}
	return series, rows.Err()
}
