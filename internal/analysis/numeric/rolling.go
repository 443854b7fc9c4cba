// Package numeric provides the NaN-aware series primitives the indicator kernels are built on.
//
// Every function returns a freshly allocated slice with the same length as its input and never
// modifies its arguments. Missing values are IEEE NaN.
package numeric

import "math"

// Window is a rolling view of width Size over a series.
//
// Position i aggregates x[max(0, i-Size+1) .. i]. When fewer than MinPeriods non-NaN values fall
// inside that span the result is NaN; otherwise the aggregate skips NaN values.
type Window struct {
	x          []float64
	size       int
	minPeriods int
}

// Rolling creates a window of the given size with MinPeriods equal to the size.
// Sizes below 1 are treated as 1.
func Rolling(x []float64, size int) Window {
	if size < 1 {
		size = 1
	}
	return Window{x: x, size: size, minPeriods: size}
}

// MinPeriods returns a copy of the window requiring n observations, clamped to [1, size].
func (w Window) MinPeriods(n int) Window {
	if n < 1 {
		n = 1
	}
	if n > w.size {
		n = w.size
	}
	w.minPeriods = n
	return w
}

// Size returns the window width.
func (w Window) Size() int {
	return w.size
}

// Apply evaluates f over every eligible window. f receives the raw span, which may contain NaN
// values only when MinPeriods is below the window size.
func (w Window) Apply(f func(span []float64) float64) []float64 {
	out := make([]float64, len(w.x))
	nobs := 0
	for i, v := range w.x {
		if !math.IsNaN(v) {
			nobs++
		}
		lo := i - w.size + 1
		if lo > 0 && !math.IsNaN(w.x[lo-1]) {
			nobs--
		}
		if lo < 0 {
			lo = 0
		}
		if nobs < w.minPeriods {
			out[i] = math.NaN()
			continue
		}
		out[i] = f(w.x[lo : i+1])
	}
	return out
}

// Sum returns the rolling sum.
func (w Window) Sum() []float64 {
	return w.Apply(nanSum)
}

// Mean returns the rolling arithmetic mean.
func (w Window) Mean() []float64 {
	return w.Apply(nanMean)
}

// Std returns the rolling sample standard deviation (ddof = 1).
// Windows with fewer than two observations are NaN.
func (w Window) Std() []float64 {
	return w.Apply(nanStd)
}

// Min returns the rolling minimum.
func (w Window) Min() []float64 {
	return w.Apply(func(span []float64) float64 {
		m := math.Inf(1)
		for _, v := range span {
			if v < m {
				m = v
			}
		}
		return m
	})
}

// Max returns the rolling maximum.
func (w Window) Max() []float64 {
	return w.Apply(func(span []float64) float64 {
		m := math.Inf(-1)
		for _, v := range span {
			if v > m {
				m = v
			}
		}
		return m
	})
}

// Convolve returns the rolling dot product of the series with weights, where weights[0]
// multiplies the oldest value of each window. Windows containing NaN yield NaN.
func Convolve(x, weights []float64) []float64 {
	if len(weights) == 0 {
		return NaN(len(x))
	}
	return Rolling(x, len(weights)).Apply(func(span []float64) float64 {
		var total float64
		for j, v := range span {
			total += weights[j] * v
		}
		return total
	})
}

// Normalize scales weights so they sum to one. A zero total leaves the weights unchanged.
func Normalize(weights []float64) []float64 {
	out := make([]float64, len(weights))
	total := nanSum(weights)
	for i, v := range weights {
		if total == 0 {
			out[i] = v
			continue
		}
		out[i] = v / total
	}
	return out
}

// nanSum calculates the sum of the non-NaN values.
func nanSum(values []float64) float64 {
	var total float64
	for _, v := range values {
		if !math.IsNaN(v) {
			total += v
		}
	}
	return total
}

// nanMean calculates the arithmetic mean of the non-NaN values.
func nanMean(values []float64) float64 {
	var total float64
	n := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			total += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return total / float64(n)
}

// nanStd calculates the sample standard deviation of the non-NaN values.
func nanStd(values []float64) float64 {
	m := nanMean(values)
	var variance float64
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		diff := v - m
		variance += diff * diff
		n++
	}
	if n < 2 {
		return math.NaN()
	}
	return math.Sqrt(variance / float64(n-1))
}
