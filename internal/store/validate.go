package store

import (
	"regexp"

	apperrors "ta-kernels/internal/errors"
)

// Validation patterns
var (
	// Symbol pattern: exchange tickers such as INFY, RELIANCE.NS, ^NSEI, BTC-USD, EURUSD=X
	symbolPattern = regexp.MustCompile(`^[A-Za-z0-9._&^=-]{1,32}$`)

	// Timeframe pattern: optional count plus unit, e.g. 1m, 15m, 1h, 1d, 1wk, D
	timeframePattern = regexp.MustCompile(`^[0-9]{0,4}[A-Za-z]{1,6}$`)
)

// validateSeriesKey checks the symbol/timeframe pair a series is stored under.
func validateSeriesKey(symbol, timeframe string) error {
	if symbol == "" {
		return apperrors.NewValidationError("symbol", symbol, "symbol cannot be empty")
	}
	if !symbolPattern.MatchString(symbol) {
		return apperrors.NewValidationError("symbol", symbol, "invalid symbol format")
	}
	if timeframe == "" {
		return apperrors.NewValidationError("timeframe", timeframe, "timeframe cannot be empty")
	}
	if !timeframePattern.MatchString(timeframe) {
		return apperrors.NewValidationError("timeframe", timeframe, "invalid timeframe format")
	}
	return nil
}
