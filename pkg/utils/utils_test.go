package utils

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatParam(t *testing.T) {
	assert.Equal(t, "20", FormatParam(20))
	assert.Equal(t, "0.07", FormatParam(0.07))
	assert.Equal(t, "-3", FormatParam(-3))
	assert.Equal(t, "0.85", FormatParam(0.85))
	assert.Equal(t, "14", FormatInt(14))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(math.NaN(), 4))
	assert.Equal(t, "+Inf", FormatValue(math.Inf(1), 4))
	assert.Equal(t, "-Inf", FormatValue(math.Inf(-1), 4))
	assert.Equal(t, "2.6250", FormatValue(2.625, 4))
	assert.Equal(t, "2.625", FormatValue(2.625, -1))
}

func TestFormatCompactAndPercent(t *testing.T) {
	assert.Equal(t, "1.50K", FormatCompact(1500))
	assert.Equal(t, "2.00M", FormatCompact(2e6))
	assert.Equal(t, "-3.10B", FormatCompact(-3.1e9))
	assert.Equal(t, "12.00", FormatCompact(12))
	assert.Equal(t, "-", FormatCompact(math.NaN()))
	assert.Equal(t, "+1.50%", FormatPercent(1.5))
	assert.Equal(t, "-0.25%", FormatPercent(-0.25))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "SMA  ", PadRight("SMA", 5))
	assert.Equal(t, "TEMA_20", PadRight("TEMA_20", 3))
}

func TestRetry(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 4, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}

	calls := 0
	err := Retry(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("busy")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = Retry(context.Background(), cfg, func() error {
		calls++
		return errors.New("always")
	})
	assert.EqualError(t, err, "always")
	assert.Equal(t, 4, calls)
}

func TestRetry_NonRetryable(t *testing.T) {
	fatal := errors.New("constraint failed")
	cfg := DefaultRetryConfig()
	cfg.Retryable = func(err error) bool { return !errors.Is(err, fatal) }

	calls := 0
	err := Retry(context.Background(), cfg, func() error {
		calls++
		return fatal
	})
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: time.Second, BackoffFactor: 1}

	err := Retry(ctx, cfg, func() error { return errors.New("busy") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, 10*time.Millisecond, CalculateBackoff(0, 10*time.Millisecond, time.Second, 2))
	assert.Equal(t, 40*time.Millisecond, CalculateBackoff(2, 10*time.Millisecond, time.Second, 2))
	assert.Equal(t, time.Second, CalculateBackoff(20, 10*time.Millisecond, time.Second, 2))
}
