package indicators

import (
	"math"
	"strings"

	"ta-kernels/internal/analysis/numeric"
	"ta-kernels/internal/analysis/params"
	apperrors "ta-kernels/internal/errors"
	"ta-kernels/internal/models"
	"ta-kernels/pkg/utils"
)

// inputs fetches the role columns a kernel reads, in the order given.
// A role column missing from the frame is the only hard failure a kernel raises.
func inputs(f models.Frame, tag string, c params.Columns, roles ...params.Role) ([][]float64, error) {
	cols := make([][]float64, len(roles))
	for i, role := range roles {
		name := c.Name(role)
		values, ok := f.Column(name)
		if !ok {
			return nil, apperrors.NewColumnError(tag, string(role), name)
		}
		cols[i] = values
	}
	return cols, nil
}

// closePrices fetches the close-role column.
func closePrices(f models.Frame, tag string, c params.Columns) ([]float64, error) {
	cols, err := inputs(f, tag, c, params.RoleClose)
	if err != nil {
		return nil, err
	}
	return cols[0], nil
}

// outputName joins a tag and its parameters into a canonical column name, e.g. PVO_12_26.
func outputName(tag string, parts ...interface{}) string {
	elems := make([]string, 0, len(parts)+1)
	elems = append(elems, tag)
	for _, p := range parts {
		switch v := p.(type) {
		case int:
			elems = append(elems, utils.FormatInt(v))
		case float64:
			elems = append(elems, utils.FormatParam(v))
		case string:
			elems = append(elems, v)
		}
	}
	return strings.Join(elems, "_")
}

// single wraps one column into an output over the frame index.
func single(f models.Frame, name string, values []float64) *models.Output {
	return models.NewOutput(f.Index(), []string{name}, values)
}

// typicalPrice calculates (high + low + close) / 3 per bar.
func typicalPrice(high, low, closes []float64) []float64 {
	tp := make([]float64, len(closes))
	for i := range closes {
		tp[i] = (high[i] + low[i] + closes[i]) / 3
	}
	return tp
}

// trueRange calculates the true range per bar; bar 0 uses high - low.
func trueRange(high, low, closes []float64) []float64 {
	tr := make([]float64, len(closes))
	for i := range closes {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(high[i] - closes[i-1])
		lc := math.Abs(low[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// wilderSmooth seeds with the SMA of the first period values and then applies
// y[i] = (y[i-1]*(period-1) + x[i]) / period. NaN inputs carry the previous value.
func wilderSmooth(values []float64, period int) []float64 {
	result := numeric.NaN(len(values))
	sma := numeric.Rolling(values, period).Mean()
	start := numeric.FirstValid(sma)
	if start < 0 {
		return result
	}
	result[start] = sma[start]
	for i := start + 1; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			result[i] = result[i-1]
			continue
		}
		result[i] = (result[i-1]*float64(period-1) + values[i]) / float64(period)
	}
	return result
}

// gainsLosses splits one-bar changes into non-negative gains and losses.
func gainsLosses(x []float64) (gains, losses []float64) {
	delta := numeric.Diff(x, 1)
	gains = make([]float64, len(x))
	losses = make([]float64, len(x))
	for i, d := range delta {
		switch {
		case math.IsNaN(d):
			gains[i], losses[i] = math.NaN(), math.NaN()
		case d > 0:
			gains[i] = d
		case d < 0:
			losses[i] = -d
		}
	}
	return gains, losses
}
