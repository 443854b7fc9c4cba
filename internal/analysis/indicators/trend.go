package indicators

import (
	"math"

	"ta-kernels/internal/analysis/numeric"
	"ta-kernels/internal/analysis/params"
	"ta-kernels/internal/models"
)

// Hilbert detrender coefficients.
const (
	hilbertK      = 0.0962
	hilbertKPrime = 0.5769
)

// SMA calculates Simple Moving Average.
func SMA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "SMA", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	return single(f, outputName("SMA", w), numeric.Rolling(closes, w).Mean()), nil
}

// EMA calculates Exponential Moving Average seeded at the first valid close.
func EMA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "EMA", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	return single(f, outputName("EMA", w), numeric.EWMSpan(closes, float64(w))), nil
}

// SOA calculates the Smoothed Moving Average (alpha = 1/window).
func SOA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "SOA", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	return single(f, outputName("SOA", w), numeric.EWMAlpha(closes, 1/float64(w))), nil
}

// emaChain applies the span-w EMA depth times, returning every stage.
func emaChain(x []float64, w, depth int) [][]float64 {
	stages := make([][]float64, depth)
	in := x
	for i := range stages {
		stages[i] = numeric.EWMSpan(in, float64(w))
		in = stages[i]
	}
	return stages
}

// DEMA calculates Double Exponential Moving Average: 2*E1 - E2.
func DEMA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "DEMA", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	e := emaChain(closes, w, 2)

	result := make([]float64, len(closes))
	for i := range result {
		result[i] = 2*e[0][i] - e[1][i]
	}
	return single(f, outputName("DEMA", w), result), nil
}

// TEMA calculates Triple Exponential Moving Average: 3*E1 - 3*E2 + E3.
func TEMA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "TEMA", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	e := emaChain(closes, w, 3)

	result := make([]float64, len(closes))
	for i := range result {
		result[i] = 3*e[0][i] - 3*e[1][i] + e[2][i]
	}
	return single(f, outputName("TEMA", w), result), nil
}

// TRIX calculates the one-bar percent rate of change of the triple-smoothed EMA and its signal line.
func TRIX(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "TRIX", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	e3 := emaChain(closes, w, 3)[2]

	trix := numeric.Scale(numeric.Div(numeric.Diff(e3, 1), numeric.Shift(e3, 1)), 100)
	sig := p.Int("signal")
	signal := numeric.EWMSpan(trix, float64(sig))

	names := []string{outputName("TRIX", w), outputName("TRIX_SIGNAL", w)}
	return models.NewOutput(f.Index(), names, trix, signal), nil
}

// ZMA calculates the Zero-Lag Exponential Moving Average.
// The close is de-lagged by close - close[lag] with lag = max(1, window/2) before smoothing.
func ZMA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "ZMA", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	lag := w / 2
	if lag < 1 {
		lag = 1
	}
	delagged := numeric.Add(closes, numeric.Sub(closes, numeric.Shift(closes, lag)))
	return single(f, outputName("ZMA", w), numeric.EWMSpan(delagged, float64(w))), nil
}

// LSMA calculates the Least Squares Moving Average: the end point of the rolling
// regression line of close on t = 0..window-1.
func LSMA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "LSMA", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	return single(f, outputName("LSMA", w), numeric.Rolling(closes, w).Apply(linearForecast)), nil
}

// linearForecast fits y = a + b*t over the span and evaluates it at the last t.
func linearForecast(span []float64) float64 {
	n := len(span)
	if n == 1 {
		return span[0]
	}
	tMean := float64(n-1) / 2
	var yMean float64
	for _, y := range span {
		yMean += y
	}
	yMean /= float64(n)

	var sxy, sxx float64
	for t, y := range span {
		dt := float64(t) - tMean
		sxy += dt * (y - yMean)
		sxx += dt * dt
	}
	b := sxy / sxx
	a := yMean - b*tMean
	return a + b*float64(n-1)
}

// ALMAWeights returns the normalized Gaussian kernel of the Arnaud Legoux Moving Average.
// weights[0] applies to the oldest bar of the window, so offsets near 1 favour recent bars.
func ALMAWeights(window int, sigma, offset float64) []float64 {
	m := offset * float64(window-1)
	s := float64(window) / sigma
	weights := make([]float64, window)
	for i := range weights {
		d := float64(i) - m
		weights[i] = math.Exp(-(d * d) / (2 * s * s))
	}
	return numeric.Normalize(weights)
}

// ALMA calculates the Arnaud Legoux Moving Average.
func ALMA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "ALMA", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	if w > len(closes) {
		return single(f, outputName("ALMA", w), numeric.NaN(len(closes))), nil
	}
	weights := ALMAWeights(w, p.Float("sigma"), p.Float("offset"))
	return single(f, outputName("ALMA", w), numeric.Convolve(closes, weights)), nil
}

// SWMAWeights returns the normalized sine kernel sin((i+1)*pi/(window+1)).
func SWMAWeights(window int) []float64 {
	weights := make([]float64, window)
	for i := range weights {
		weights[i] = math.Sin(float64(i+1) * math.Pi / float64(window+1))
	}
	return numeric.Normalize(weights)
}

// SWMA calculates the Sine Weighted Moving Average.
func SWMA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "SWMA", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	if w > len(closes) {
		return single(f, outputName("SWMA", w), numeric.NaN(len(closes))), nil
	}
	return single(f, outputName("SWMA", w), numeric.Convolve(closes, SWMAWeights(w))), nil
}

// kaufman runs the Kaufman adaptive recurrence over x.
//
//	ER = |x[i] - x[i-w]| / sum(|x[k] - x[k-1]|, k = i-w+1..i)
//	SC = (ER*(2/(fast+1) - 2/(slow+1)) + 2/(slow+1))^2
//	y[i] = y[i-1] + SC*(x[i] - y[i-1])
//
// The output is seeded with the first valid value and holds while ER is undefined.
// A flat window (zero volatility) has ER = 0.
func kaufman(x []float64, w, fast, slow int) []float64 {
	change := numeric.Abs(numeric.Diff(x, w))
	volatility := numeric.Rolling(numeric.Abs(numeric.Diff(x, 1)), w).Sum()
	fastSC := 2 / float64(fast+1)
	slowSC := 2 / float64(slow+1)

	result := make([]float64, len(x))
	prev := math.NaN()
	for i, price := range x {
		switch {
		case math.IsNaN(price):
		case math.IsNaN(prev):
			prev = price
		case math.IsNaN(change[i]) || math.IsNaN(volatility[i]):
		default:
			var er float64
			if volatility[i] != 0 {
				er = change[i] / volatility[i]
			}
			sc := er*(fastSC-slowSC) + slowSC
			sc *= sc
			prev += sc * (price - prev)
		}
		result[i] = prev
	}
	return result
}

// KMA calculates Kaufman's Adaptive Moving Average.
func KMA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	return adaptive("KMA", f, p, c)
}

// AMA calculates the Adaptive Moving Average with the Kaufman recurrence.
func AMA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	return adaptive("AMA", f, p, c)
}

func adaptive(tag string, f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, tag, c)
	if err != nil {
		return nil, err
	}
	w, fast, slow := p.Int("window"), p.Int("fast"), p.Int("slow")
	return single(f, outputName(tag, w, fast, slow), kaufman(closes, w, fast, slow)), nil
}

// JMA calculates the Jurik-style moving average approximation.
//
//	SC   = clip((2/(L+1))^power, 0, 1)
//	base = y[i-1] + SC*(x[i] - y[i-1])
//	y[i] = base + (phase/100)*(x[i] - base)
func JMA(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "JMA", c)
	if err != nil {
		return nil, err
	}
	length := p.Int("length")
	sc := numeric.ClipValue(math.Pow(2/float64(length+1), p.Float("power")), 0, 1)
	phase := p.Float("phase") / 100

	result := make([]float64, len(closes))
	prev := math.NaN()
	for i, price := range closes {
		switch {
		case math.IsNaN(price):
		case math.IsNaN(prev):
			prev = price
		default:
			base := prev + sc*(price-prev)
			prev = base + phase*(price-base)
		}
		result[i] = prev
	}
	return single(f, outputName("JMA", length), result), nil
}

// MGD calculates the McGinley Dynamic.
// The first value is the SMA of the first full window; afterwards
// md[i] = md[i-1] + (x[i] - md[i-1]) / (w * clip(x[i]/md[i-1], 0.1, 10)^4).
func MGD(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "MGD", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")
	name := outputName("MGD", w)

	sma := numeric.Rolling(closes, w).Mean()
	start := numeric.FirstValid(sma)
	result := numeric.NaN(len(closes))
	if start < 0 {
		return single(f, name, result), nil
	}

	result[start] = sma[start]
	for i := start + 1; i < len(closes); i++ {
		prev, price := result[i-1], closes[i]
		ratio := numeric.SafeDiv(price, prev)
		if math.IsNaN(ratio) {
			result[i] = prev
			continue
		}
		k := numeric.ClipValue(ratio, 0.1, 10)
		result[i] = prev + (price-prev)/(float64(w)*k*k*k*k)
	}
	return single(f, name, result), nil
}

// VID calculates the Variable Index Dynamic Average (VIDYA).
// alpha = (2/(w+1)) * |CMO|/100 where CMO warm-up positions count as zero.
func VID(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "VID", c)
	if err != nil {
		return nil, err
	}
	w, cw := p.Int("window"), p.Int("cmo_window")
	cmo := numeric.FillNaN(chandeMomentum(closes, cw), 0)
	k := numeric.SpanAlpha(float64(w))

	result := make([]float64, len(closes))
	prev := math.NaN()
	for i, price := range closes {
		switch {
		case math.IsNaN(price):
		case math.IsNaN(prev):
			prev = price
		default:
			alpha := k * math.Abs(cmo[i]) / 100
			prev = alpha*price + (1-alpha)*prev
		}
		result[i] = prev
	}
	return single(f, outputName("VID", w, cw), result), nil
}

// EIT calculates Ehlers' Instantaneous Trendline on the weighted price (x + 2*x[1] + x[2])/4.
func EIT(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "EIT", c)
	if err != nil {
		return nil, err
	}
	alpha := p.Float("alpha")

	n := len(closes)
	wp := numeric.NaN(n)
	for i := 2; i < n; i++ {
		wp[i] = (closes[i] + 2*closes[i-1] + closes[i-2]) / 4
	}

	result := make([]float64, n)
	prev := math.NaN()
	for i, price := range closes {
		switch {
		case math.IsNaN(price):
		case math.IsNaN(prev):
			prev = price
		case math.IsNaN(wp[i]):
		default:
			prev = alpha*wp[i] + (1-alpha)*prev
		}
		result[i] = prev
	}
	return single(f, outputName("EIT", alpha), result), nil
}

// HTT calculates the Hilbert transform trendline: the EMA of the Hilbert detrender
// k*x + k'*x[2] - k'*x[4] - k*x[6].
func HTT(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "HTT", c)
	if err != nil {
		return nil, err
	}
	w := p.Int("window")

	n := len(closes)
	detrended := numeric.NaN(n)
	for i := 6; i < n; i++ {
		detrended[i] = hilbertK*closes[i] + hilbertKPrime*closes[i-2] -
			hilbertKPrime*closes[i-4] - hilbertK*closes[i-6]
	}
	return single(f, outputName("HTT", w), numeric.EWMSpan(detrended, float64(w))), nil
}

// EAC calculates Ehlers' Cyber Cycle and returns the smoothed price minus the cycle.
//
//	s[i] = (x + 2*x[1] + 2*x[2] + x[3]) / 6
//	c[i] = (1-a/2)^2*(s - 2*s[1] + s[2]) + 2*(1-a)*c[1] - (1-a)^2*c[2]
//
// The cycle is zero until three consecutive smoothed values exist.
func EAC(f models.Frame, p params.Record, c params.Columns) (*models.Output, error) {
	closes, err := closePrices(f, "EAC", c)
	if err != nil {
		return nil, err
	}
	alpha := p.Float("alpha")
	name := outputName("EAC", int(math.Floor(100*alpha+1e-9)))

	n := len(closes)
	smooth := numeric.NaN(n)
	for i := 3; i < n; i++ {
		smooth[i] = (closes[i] + 2*closes[i-1] + 2*closes[i-2] + closes[i-3]) / 6
	}

	a1 := (1 - alpha/2) * (1 - alpha/2)
	a2 := 2 * (1 - alpha)
	a3 := (1 - alpha) * (1 - alpha)

	result := numeric.NaN(n)
	var c1, c2 float64
	for i := 0; i < n; i++ {
		if math.IsNaN(smooth[i]) {
			if i > 0 {
				result[i] = result[i-1]
			}
			continue
		}
		var cycle float64
		if i >= 2 && !math.IsNaN(smooth[i-1]) && !math.IsNaN(smooth[i-2]) {
			cycle = a1*(smooth[i]-2*smooth[i-1]+smooth[i-2]) + a2*c1 - a3*c2
		}
		c2, c1 = c1, cycle
		result[i] = smooth[i] - cycle
	}
	return single(f, name, result), nil
}
