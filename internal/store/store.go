// Package store provides bar sources for the kernel engine: a SQLite bar store and a CSV loader.
package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ta-kernels/internal/metrics"
	"ta-kernels/internal/models"
)

// BarSource loads bars as a frame the engine can compute over.
type BarSource interface {
	// LoadFrame returns the bars of symbol/timeframe inside [from, to] in index order.
	// A zero from or to leaves that side of the range open.
	LoadFrame(ctx context.Context, symbol, timeframe string, from, to time.Time) (*models.BarFrame, error)
}

// BarStore persists bars.
type BarStore interface {
	BarSource

	SaveBars(ctx context.Context, symbol, timeframe string, candles []models.Candle) error
	Freshness(ctx context.Context, symbol, timeframe string) (time.Time, error)
	Series(ctx context.Context) ([]SeriesInfo, error)

	// Lifecycle
	Close() error
}

// SeriesInfo summarizes one stored symbol/timeframe series.
type SeriesInfo struct {
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Bars      int       `json:"bars"`
	First     time.Time `json:"first"`
	Last      time.Time `json:"last"`
}

type options struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a bar source.
type Option func(*options)

// WithLogger sets the source logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records loaded bars on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
