// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatInt formats an integer parameter for an output column name.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// FormatParam formats a float parameter in its shortest round-trip form.
// Whole numbers drop the fraction, so 20.0 renders as "20" and 0.07 as "0.07".
func FormatParam(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatValue formats an indicator value for display with the given precision.
// NaN renders as an empty string.
func FormatValue(v float64, precision int) string {
	if math.IsNaN(v) {
		return ""
	}
	if math.IsInf(v, 0) {
		if v > 0 {
			return "+Inf"
		}
		return "-Inf"
	}
	if precision < 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatCompact formats large magnitudes with K/M/B suffixes, e.g. volumes.
func FormatCompact(amount float64) string {
	abs := math.Abs(amount)
	switch {
	case math.IsNaN(amount):
		return "-"
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", amount/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", amount/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", amount/1e3)
	}
	return fmt.Sprintf("%.2f", amount)
}

// PadRight pads s with spaces to width runes.
func PadRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
