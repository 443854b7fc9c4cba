package indicators

import (
	"ta-kernels/internal/analysis/numeric"
	"ta-kernels/internal/analysis/params"
	"ta-kernels/internal/models"
)

// VR calculates the Volatility Ratio: stdev(close, short) / stdev(close, long).
// Warm-up positions and flat long windows yield 1.0.
func VR(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "VR", c)
	if err != nil {
		return nil, err
	}
	short, long := p.Int("short_period"), p.Int("long_period")

	ratio := numeric.Div(
		numeric.Rolling(closes, short).Std(),
		numeric.Rolling(closes, long).Std(),
	)
	return single(f, outputName("VR", short, long), numeric.FillNaN(ratio, 1.0)), nil
}

// ATR calculates Average True Range with Wilder smoothing.
func ATR(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	cols, err := inputs(f, "ATR", c, params.RoleHigh, params.RoleLow, params.RoleClose)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	tr := trueRange(cols[0], cols[1], cols[2])
	return single(f, outputName("ATR", w), wilderSmooth(tr, w)), nil
}
