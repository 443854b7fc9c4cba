package numeric

import "math"

// NaN returns a series of n NaN values.
func NaN(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Shift lags the series by k positions; the first k positions are NaN. Negative lags would read
// future bars and are treated as zero.
func Shift(x []float64, k int) []float64 {
	if k < 0 {
		k = 0
	}
	out := NaN(len(x))
	for i := k; i < len(x); i++ {
		out[i] = x[i-k]
	}
	return out
}

// Diff returns x[i] - x[i-k]; the first k positions are NaN. k below 1 is treated as 1.
func Diff(x []float64, k int) []float64 {
	if k < 1 {
		k = 1
	}
	out := NaN(len(x))
	for i := k; i < len(x); i++ {
		out[i] = x[i] - x[i-k]
	}
	return out
}

// CumSum returns the running sum of the non-NaN values. Positions whose input is NaN stay NaN
// and contribute nothing to later totals.
func CumSum(x []float64) []float64 {
	out := make([]float64, len(x))
	var total float64
	for i, v := range x {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		total += v
		out[i] = total
	}
	return out
}

// Clip bounds every value to [lo, hi]. NaN stays NaN.
func Clip(x []float64, lo, hi float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = ClipValue(v, lo, hi)
	}
	return out
}

// ClipValue bounds a scalar to [lo, hi]. NaN stays NaN.
func ClipValue(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return v
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

// Replace substitutes b for every value equal to a. A NaN a matches NaN values.
func Replace(x []float64, a, b float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if v == a || (math.IsNaN(a) && math.IsNaN(v)) {
			out[i] = b
			continue
		}
		out[i] = v
	}
	return out
}

// FillNaN replaces NaN values with v.
func FillNaN(x []float64, v float64) []float64 {
	return Replace(x, math.NaN(), v)
}

// FFill carries the last non-NaN value forward over NaN positions. Leading NaNs remain.
func FFill(x []float64) []float64 {
	out := make([]float64, len(x))
	last := math.NaN()
	for i, v := range x {
		if !math.IsNaN(v) {
			last = v
		}
		out[i] = last
	}
	return out
}

// Div divides elementwise. Zero denominators and infinite quotients yield NaN.
func Div(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = SafeDiv(a[i], b[i])
	}
	return out
}

// SafeDiv divides two scalars, returning NaN for a zero denominator or an infinite result.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	q := a / b
	if math.IsInf(q, 0) {
		return math.NaN()
	}
	return q
}

// Add returns a + b elementwise.
func Add(a, b []float64) []float64 {
	return zip(a, b, func(x, y float64) float64 { return x + y })
}

// Sub returns a - b elementwise.
func Sub(a, b []float64) []float64 {
	return zip(a, b, func(x, y float64) float64 { return x - y })
}

// Mul returns a * b elementwise.
func Mul(a, b []float64) []float64 {
	return zip(a, b, func(x, y float64) float64 { return x * y })
}

// Scale returns k * x elementwise.
func Scale(x []float64, k float64) []float64 {
	return Map(x, func(v float64) float64 { return k * v })
}

// Abs returns |x| elementwise.
func Abs(x []float64) []float64 {
	return Map(x, math.Abs)
}

// Map applies f to every value.
func Map(x []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = f(v)
	}
	return out
}

func zip(a, b []float64, f func(x, y float64) float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = f(a[i], b[i])
	}
	return out
}
