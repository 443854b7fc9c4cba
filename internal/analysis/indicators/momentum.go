package indicators

import (
	"ta-kernels/internal/analysis/numeric"
	"ta-kernels/internal/analysis/params"
	"ta-kernels/internal/models"
)

// chandeMomentum calculates 100 * (sum(gains) - sum(losses)) / (sum(gains) + sum(losses))
// over w one-bar changes. Warm-up and flat windows are NaN.
func chandeMomentum(x []float64, w int) []float64 {
	gains, losses := gainsLosses(x)
	sg := numeric.Rolling(gains, w).Sum()
	sl := numeric.Rolling(losses, w).Sum()
	return numeric.Scale(numeric.Div(numeric.Sub(sg, sl), numeric.Add(sg, sl)), 100)
}

// CMO calculates the Chande Momentum Oscillator.
func CMO(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "CMO", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	return single(f, outputName("CMO", w), chandeMomentum(closes, w)), nil
}
