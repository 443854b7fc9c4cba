package indicators

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"ta-kernels/internal/analysis/params"
	"ta-kernels/internal/models"
)

var (
	emptyRecord    = params.RecordOf(nil)
	defaultColumns = params.DefaultColumns()
)

// Properties every kernel must satisfy for any valid bar data:
// - output columns have the frame's length and share its index
// - repeated calls are bit-identical
// - appending bars never changes earlier outputs
// - OBV is translation-invariant in volume and VWAP stays inside the typical-price range

// candleGen generates valid candle data with realistic OHLCV values
func candleGen() gopter.Gen {
	return gen.Struct(reflect.TypeOf(models.Candle{}), map[string]gopter.Gen{
		"Open":   gen.Float64Range(100.0, 1000.0),
		"High":   gen.Float64Range(100.0, 1000.0),
		"Low":    gen.Float64Range(100.0, 1000.0),
		"Close":  gen.Float64Range(100.0, 1000.0),
		"Volume": gen.Float64Range(1000, 10000000),
	}).Map(func(c models.Candle) models.Candle {
		// Ensure OHLC constraints: High >= max(Open, Close) and Low <= min(Open, Close)
		c.High = math.Max(c.High, math.Max(c.Open, c.Close))
		c.Low = math.Min(c.Low, math.Min(c.Open, c.Close))
		return c
	})
}

// candleSliceGen generates between minLen and maxLen candles with increasing timestamps.
func candleSliceGen(minLen, maxLen int) gopter.Gen {
	return gen.IntRange(minLen, maxLen).FlatMap(func(v interface{}) gopter.Gen {
		return gen.SliceOfN(v.(int), candleGen())
	}, reflect.TypeOf([]models.Candle{})).Map(func(candles []models.Candle) []models.Candle {
		for i := range candles {
			candles[i].Timestamp = testStart.Add(time.Duration(i) * time.Hour)
		}
		return candles
	})
}

func propertyParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())
	// Shrinking can break the OHLC constraints of the generator.
	parameters.MaxShrinkCount = 0
	return parameters
}

func TestProperty_LengthAndIndexPreserved(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("every kernel output is aligned with the frame", prop.ForAll(
		func(candles []models.Candle) bool {
			f := models.FrameFromCandles(candles)
			for _, k := range Kernels() {
				out, err := k.Run(f, nil, nil)
				if err != nil || !reflect.DeepEqual(out.Index, f.Index()) {
					return false
				}
				if len(out.Columns) == 0 || len(out.Columns) != len(out.Names) {
					return false
				}
				for _, col := range out.Columns {
					if len(col) != f.Len() {
						return false
					}
				}
			}
			return true
		},
		candleSliceGen(1, 80),
	))

	properties.TestingRun(t)
}

func TestProperty_Deterministic(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("repeated runs are bit-identical", prop.ForAll(
		func(candles []models.Candle) bool {
			f := models.FrameFromCandles(candles)
			for _, k := range Kernels() {
				a, errA := k.Run(f, nil, nil)
				b, errB := k.Run(f, nil, nil)
				if errA != nil || errB != nil {
					return false
				}
				for i := range a.Columns {
					if !sameSeries(a.Columns[i], b.Columns[i]) {
						return false
					}
				}
			}
			return true
		},
		candleSliceGen(10, 80),
	))

	properties.TestingRun(t)
}

func TestProperty_PrefixStable(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("appending bars leaves earlier outputs unchanged", prop.ForAll(
		func(candles []models.Candle, cut int) bool {
			if cut > len(candles) {
				cut = len(candles)
			}
			full := models.FrameFromCandles(candles)
			prefix := models.FrameFromCandles(candles[:cut])
			for _, k := range Kernels() {
				a, errA := k.Run(prefix, nil, nil)
				b, errB := k.Run(full, nil, nil)
				if errA != nil || errB != nil {
					return false
				}
				for i := range a.Columns {
					if !sameSeries(a.Columns[i], b.Columns[i][:cut]) {
						return false
					}
				}
			}
			return true
		},
		candleSliceGen(30, 80),
		gen.IntRange(1, 30),
	))

	properties.TestingRun(t)
}

func TestProperty_TrailingNaNStable(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("trailing NaN bars do not perturb earlier outputs", prop.ForAll(
		func(candles []models.Candle, k int) bool {
			n := len(candles)
			padded := append([]models.Candle(nil), candles...)
			for i := 0; i < k; i++ {
				padded = append(padded, models.Candle{
					Timestamp: testStart.Add(time.Duration(n+i) * time.Hour),
					Open:      math.NaN(), High: math.NaN(), Low: math.NaN(),
					Close: math.NaN(), Volume: math.NaN(),
				})
			}
			base := models.FrameFromCandles(candles)
			ext := models.FrameFromCandles(padded)
			for _, kernel := range Kernels() {
				a, errA := kernel.Run(base, nil, nil)
				b, errB := kernel.Run(ext, nil, nil)
				if errA != nil || errB != nil {
					return false
				}
				for i := range a.Columns {
					if len(b.Columns[i]) != n+k || !sameSeries(a.Columns[i], b.Columns[i][:n]) {
						return false
					}
				}
			}
			return true
		},
		candleSliceGen(20, 60),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}

func TestProperty_OBVTranslationInvariant(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("adding v0 to every volume shifts OBV by v0*(1 + sum of signs)", prop.ForAll(
		func(candles []models.Candle, v0 float64) bool {
			shifted := append([]models.Candle(nil), candles...)
			for i := range shifted {
				shifted[i].Volume += v0
			}
			a, _ := OBV(models.FrameFromCandles(candles), emptyRecord, defaultColumns)
			b, _ := OBV(models.FrameFromCandles(shifted), emptyRecord, defaultColumns)

			signs := 0.0
			for i := range candles {
				if i > 0 {
					d := candles[i].Close - candles[i-1].Close
					if d > 0 {
						signs++
					} else if d < 0 {
						signs--
					}
				}
				want := a.First()[i] + v0*(1+signs)
				if math.Abs(b.First()[i]-want) > 1e-6*math.Max(1, math.Abs(want)) {
					return false
				}
			}
			return true
		},
		candleSliceGen(2, 60),
		gen.Float64Range(-500, 500),
	))

	properties.TestingRun(t)
}

func TestProperty_VWAPWithinTypicalPriceRange(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("VWAP lies within the running typical-price range", prop.ForAll(
		func(candles []models.Candle) bool {
			out, err := VWAP(models.FrameFromCandles(candles), emptyRecord, defaultColumns)
			if err != nil {
				return false
			}
			lo, hi := math.Inf(1), math.Inf(-1)
			for i, c := range candles {
				tp := (c.High + c.Low + c.Close) / 3
				lo, hi = math.Min(lo, tp), math.Max(hi, tp)
				v := out.First()[i]
				if v < lo-1e-9 || v > hi+1e-9 {
					return false
				}
			}
			return true
		},
		candleSliceGen(1, 80),
	))

	properties.TestingRun(t)
}

func TestProperty_WeightsSumToOne(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("ALMA and SWMA weights are normalized", prop.ForAll(
		func(w int, sigma, offset float64) bool {
			var alma, swma float64
			for _, v := range ALMAWeights(w, sigma, offset) {
				alma += v
			}
			for _, v := range SWMAWeights(w) {
				swma += v
			}
			return math.Abs(alma-1) < 1e-9 && math.Abs(swma-1) < 1e-9
		},
		gen.IntRange(1, 200),
		gen.Float64Range(0.5, 20),
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}

func TestProperty_WarmUpIsNaN(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("window kernels are NaN for the first w-1 bars", prop.ForAll(
		func(candles []models.Candle, w int) bool {
			f := models.FrameFromCandles(candles)
			for _, tag := range []string{"SMA", "LSMA", "ALMA", "SWMA", "VMA", "MGD"} {
				k, err := Lookup(tag)
				if err != nil {
					return false
				}
				out, err := k.Run(f, map[string]any{"window": w}, nil)
				if err != nil {
					return false
				}
				values := out.First()
				for i := 0; i < w-1 && i < len(values); i++ {
					if !math.IsNaN(values[i]) {
						return false
					}
				}
				if len(values) >= w && math.IsNaN(values[w-1]) {
					return false
				}
			}
			return true
		},
		candleSliceGen(5, 60),
		gen.IntRange(1, 30),
	))

	properties.TestingRun(t)
}
