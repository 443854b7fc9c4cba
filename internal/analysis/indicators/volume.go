package indicators

import (
	"math"

	"ta-kernels/internal/analysis/numeric"
	"ta-kernels/internal/analysis/params"
	"ta-kernels/internal/models"
)

// OBV calculates On-Balance Volume seeded with the first bar's volume.
// Bars with a NaN close change or NaN volume contribute nothing.
func OBV(f models.Frame, _ params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "OBV", c, params.RoleClose, params.RoleVolume)
	if err != nil {
		return nil, err
	}
	closes, volume := cols[0], cols[1]

	n := len(closes)
	result := make([]float64, n)
	if n == 0 {
		return single(f, "OBV", result), nil
	}
	if !math.IsNaN(volume[0]) {
		result[0] = volume[0]
	}
	for i := 1; i < n; i++ {
		result[i] = result[i-1]
		d := closes[i] - closes[i-1]
		if math.IsNaN(d) || math.IsNaN(volume[i]) {
			continue
		}
		if d > 0 {
			result[i] += volume[i]
		} else if d < 0 {
			result[i] -= volume[i]
		}
	}
	return single(f, "OBV", result), nil
}

// VWAP calculates the cumulative Volume Weighted Average Price of the typical price.
// Bars before any volume has traded carry the last defined value, or zero.
func VWAP(f models.Frame, _ params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "VWAP", c, params.RoleHigh, params.RoleLow, params.RoleClose, params.RoleVolume)
	if err != nil {
		return nil, err
	}
	tp := typicalPrice(cols[0], cols[1], cols[2])
	volume := cols[3]

	result := make([]float64, len(tp))
	var cumulativeTPV float64 // Cumulative Typical Price * Volume
	var cumulativeVol float64 // Cumulative Volume
	for i := range tp {
		if pv := tp[i] * volume[i]; !math.IsNaN(pv) {
			cumulativeTPV += pv
			cumulativeVol += volume[i]
		}
		result[i] = numeric.SafeDiv(cumulativeTPV, cumulativeVol)
	}
	return single(f, "VWAP", numeric.FillNaN(numeric.FFill(result), 0)), nil
}

// VMA calculates the Volume-weighted Moving Average of close.
func VMA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "VMA", c, params.RoleClose, params.RoleVolume)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	closes, volume := cols[0], cols[1]

	result := numeric.Div(
		numeric.Rolling(numeric.Mul(closes, volume), w).Sum(),
		numeric.Rolling(volume, w).Sum(),
	)
	return single(f, outputName("VMA", w), result), nil
}

// VO calculates the Volume Oscillator: sma(volume, fast) - sma(volume, slow).
func VO(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "VO", c, params.RoleVolume)
	if err != nil {
		return nil, err
	}
	fast, slow := p.Int("fast"), p.Int("slow")
	volume := cols[0]

	result := numeric.Sub(numeric.Rolling(volume, fast).Mean(), numeric.Rolling(volume, slow).Mean())
	return single(f, outputName("VO", fast, slow), result), nil
}

// PVO calculates the Percentage Volume Oscillator with its signal line and histogram.
func PVO(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "PVO", c, params.RoleVolume)
	if err != nil {
		return nil, err
	}
	fast, slow, sig := p.Int("fast"), p.Int("slow"), p.Int("signal")
	volume := cols[0]

	emaFast := numeric.EWMSpan(volume, float64(fast))
	emaSlow := numeric.EWMSpan(volume, float64(slow))
	pvo := numeric.FillNaN(numeric.Scale(numeric.Div(numeric.Sub(emaFast, emaSlow), emaSlow), 100), 0)
	signal := numeric.EWMSpan(pvo, float64(sig))
	hist := numeric.Sub(pvo, signal)

	names := []string{outputName("PVO", fast, slow), outputName("PVO_SIGNAL", sig), "PVO_HIST"}
	return models.NewOutput(f.Index(), names, pvo, signal, hist), nil
}

// accumulationDistribution calculates the A/D line: cumsum(mfm * volume) with
// mfm = (2c - h - l) / (h - l). Zero-range bars have mfm = 0.
func accumulationDistribution(high, low, closes, volume []float64) []float64 {
	mfm := make([]float64, len(closes))
	for i := range closes {
		rng := high[i] - low[i]
		if rng == 0 {
			continue
		}
		mfm[i] = (2*closes[i] - high[i] - low[i]) / rng
	}
	return numeric.CumSum(numeric.Mul(mfm, volume))
}

// ADL calculates the Accumulation/Distribution Line.
func ADL(f models.Frame, _ params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "ADL", c, params.RoleHigh, params.RoleLow, params.RoleClose, params.RoleVolume)
	if err != nil {
		return nil, err
	}
	return single(f, "ADL", accumulationDistribution(cols[0], cols[1], cols[2], cols[3])), nil
}

// ADO calculates the Accumulation/Distribution Oscillator: adl - adl[period].
func ADO(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "ADO", c, params.RoleHigh, params.RoleLow, params.RoleClose, params.RoleVolume)
	if err != nil {
		return nil, err
	}
	period := p.Int("period")
	adl := accumulationDistribution(cols[0], cols[1], cols[2], cols[3])
	return single(f, outputName("ADO", period), numeric.Sub(adl, numeric.Shift(adl, period))), nil
}

// EMV calculates Ease of Movement.
// The final average accepts partial windows, so warm-up bars are not NaN.
func EMV(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "EMV", c, params.RoleHigh, params.RoleLow, params.RoleVolume)
	if err != nil {
		return nil, err
	}
	period, divisor := p.Int("period"), p.Float("divisor")
	high, low, volume := cols[0], cols[1], cols[2]

	n := len(high)
	mid := make([]float64, n)
	box := make([]float64, n)
	for i := range high {
		mid[i] = (high[i] + low[i]) / 2
		box[i] = numeric.SafeDiv(volume[i]/divisor, high[i]-low[i])
	}
	raw := numeric.FillNaN(numeric.Div(numeric.Diff(mid, 1), box), 0)
	return single(f, outputName("EMV", period), numeric.Rolling(raw, period).MinPeriods(1).Mean()), nil
}

// BWMFI calculates the Bill Williams Market Facilitation Index: (high - low) / volume.
func BWMFI(f models.Frame, _ params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "BWMFI", c, params.RoleHigh, params.RoleLow, params.RoleVolume)
	if err != nil {
		return nil, err
	}
	result := numeric.FillNaN(numeric.Div(numeric.Sub(cols[0], cols[1]), cols[2]), 0)
	return single(f, "BWMFI", result), nil
}

// FI calculates the Force Index: ewm_span(diff(close) * volume, period).
func FI(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "FI", c, params.RoleClose, params.RoleVolume)
	if err != nil {
		return nil, err
	}
	period := p.Int("period")
	force := numeric.Mul(numeric.Diff(cols[0], 1), cols[1])
	return single(f, outputName("FI", period), numeric.EWMSpan(force, float64(period))), nil
}

// volumeIndex compounds the close return into the index on bars where step reports true.
// NaN inputs and zero previous closes leave the index unchanged.
func volumeIndex(closes, volume []float64, initial float64, step func(cur, prev float64) bool) []float64 {
	result := make([]float64, len(closes))
	for i := range closes {
		if i == 0 {
			result[i] = initial
			continue
		}
		result[i] = result[i-1]
		if !step(volume[i], volume[i-1]) {
			continue
		}
		ret := numeric.SafeDiv(closes[i]-closes[i-1], closes[i-1])
		if math.IsNaN(ret) {
			continue
		}
		result[i] = result[i-1] * (1 + ret)
	}
	return result
}

// NVI calculates the Negative Volume Index.
func NVI(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "NVI", c, params.RoleClose, params.RoleVolume)
	if err != nil {
		return nil, err
	}
	result := volumeIndex(cols[0], cols[1], p.Float("initial_value"), func(cur, prev float64) bool {
		return cur < prev
	})
	return single(f, "NVI", result), nil
}

// PVI calculates the Positive Volume Index.
func PVI(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "PVI", c, params.RoleClose, params.RoleVolume)
	if err != nil {
		return nil, err
	}
	result := volumeIndex(cols[0], cols[1], p.Float("initial_value"), func(cur, prev float64) bool {
		return cur > prev
	})
	return single(f, "PVI", result), nil
}

// WAD calculates Williams Accumulation/Distribution from the true range high and low.
// The first bar contributes zero.
func WAD(f models.Frame, _ params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "WAD", c, params.RoleHigh, params.RoleLow, params.RoleClose)
	if err != nil {
		return nil, err
	}
	high, low, closes := cols[0], cols[1], cols[2]

	pm := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		switch {
		case closes[i] > prev:
			pm[i] = closes[i] - math.Min(low[i], prev)
		case closes[i] < prev:
			pm[i] = closes[i] - math.Max(high[i], prev)
		}
	}
	return single(f, "WAD", numeric.CumSum(pm)), nil
}
