package store

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"ta-kernels/internal/models"
)

// Property: saving bars and loading the same range yields the same frame, with NaN cells
// surviving the trip as NaN.
func TestProperty_BarRoundTripConsistency(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "bars_property.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	timeframeGen := gen.OneConstOf("1m", "5m", "15m", "1h", "1d")

	run := 0
	properties.Property("save then load produces equivalent bars", prop.ForAll(
		func(timeframe string, count int, basePrice, baseVolume float64, gapAt int) bool {
			ctx := context.Background()
			run++
			symbol := fmt.Sprintf("SYM_%d", run)

			candles := generateTestCandles(count, basePrice, baseVolume)
			// One missing close and volume somewhere in the series
			gap := gapAt % count
			candles[gap].Close = math.NaN()
			candles[gap].Volume = math.NaN()

			if err := store.SaveBars(ctx, symbol, timeframe, candles); err != nil {
				t.Logf("Failed to save bars: %v", err)
				return false
			}

			frame, err := store.LoadFrame(ctx, symbol, timeframe, time.Time{}, time.Time{})
			if err != nil {
				t.Logf("Failed to load frame: %v", err)
				return false
			}

			retrieved := frame.Candles()
			if len(retrieved) != len(candles) {
				t.Logf("Count mismatch: expected %d, got %d", len(candles), len(retrieved))
				return false
			}
			for i, orig := range candles {
				if !candlesEqual(orig, retrieved[i]) {
					t.Logf("Bar mismatch at index %d: original=%+v, retrieved=%+v", i, orig, retrieved[i])
					return false
				}
			}
			return true
		},
		timeframeGen,
		gen.IntRange(1, 40),
		gen.Float64Range(1.0, 5000.0),
		gen.Float64Range(0, 1e7),
		gen.IntRange(0, 1000),
	))

	properties.Property("saving an empty slice succeeds", prop.ForAll(
		func(timeframe string) bool {
			return store.SaveBars(context.Background(), "EMPTY", timeframe, []models.Candle{}) == nil
		},
		timeframeGen,
	))

	properties.TestingRun(t)
}

// generateTestCandles creates bars with valid OHLC relationships one minute apart.
func generateTestCandles(count int, basePrice, baseVolume float64) []models.Candle {
	candles := make([]models.Candle, count)
	baseTime := time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		variation := float64(i%10) * 0.01 * basePrice
		open := basePrice + variation
		closePrice := basePrice + variation*0.5

		candles[i] = models.Candle{
			Timestamp: baseTime.Add(time.Duration(i) * time.Minute),
			Open:      open,
			High:      math.Max(open, closePrice) * 1.01,
			Low:       math.Min(open, closePrice) * 0.99,
			Close:     closePrice,
			Volume:    baseVolume + float64(i*100),
		}
	}
	return candles
}

func floatEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
}

func candlesEqual(a, b models.Candle) bool {
	return a.Timestamp.Equal(b.Timestamp) &&
		floatEqual(a.Open, b.Open) &&
		floatEqual(a.High, b.High) &&
		floatEqual(a.Low, b.Low) &&
		floatEqual(a.Close, b.Close) &&
		floatEqual(a.Volume, b.Volume)
}
