package numeric

import "math"

// EWMAlpha applies non-adjusted exponential smoothing:
//
//	y[i0] = x[i0]                            at the first non-NaN index i0
//	y[i]  = alpha*x[i] + (1-alpha)*y[i-1]    afterwards
//
// Positions before i0 are NaN and a NaN input carries y[i-1] forward.
func EWMAlpha(x []float64, alpha float64) []float64 {
	out := make([]float64, len(x))
	prev := math.NaN()
	for i, v := range x {
		switch {
		case math.IsNaN(v):
			out[i] = prev
			continue
		case math.IsNaN(prev):
			prev = v
		default:
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

// EWMSpan applies EWMAlpha with alpha = 2 / (span + 1).
func EWMSpan(x []float64, span float64) []float64 {
	return EWMAlpha(x, SpanAlpha(span))
}

// SpanAlpha converts an EMA span into its smoothing factor.
func SpanAlpha(span float64) float64 {
	return 2 / (span + 1)
}

// FirstValid returns the index of the first non-NaN value, or -1.
func FirstValid(x []float64) int {
	for i, v := range x {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}
