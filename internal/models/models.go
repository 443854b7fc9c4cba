// Package models provides the bar and indicator data containers shared by the engine.
package models

import "time"

// Standard column names of a bar frame.
const (
	ColOpen     = "Open"
	ColHigh     = "High"
	ColLow      = "Low"
	ColClose    = "Close"
	ColAdjClose = "Adj Close"
	ColVolume   = "Volume"
)

// Candle represents OHLCV data for a time period.
// Missing values are carried as NaN.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Output is the aligned result of one kernel invocation.
// Columns[i] holds the values for Names[i]; every column has len(Index) entries.
type Output struct {
	Index   []time.Time
	Names   []string
	Columns [][]float64
}

// NewOutput creates an output over index with one column per name.
func NewOutput(index []time.Time, names []string, columns ...[]float64) *Output {
	return &Output{
		Index:   index,
		Names:   names,
		Columns: columns,
	}
}

// Len returns the number of rows.
func (o *Output) Len() int {
	return len(o.Index)
}

// Column returns the values of the named output column.
func (o *Output) Column(name string) ([]float64, bool) {
	for i, n := range o.Names {
		if n == name {
			return o.Columns[i], true
		}
	}
	return nil, false
}

// First returns the first output column, or nil for an output without columns.
func (o *Output) First() []float64 {
	if len(o.Columns) == 0 {
		return nil
	}
	return o.Columns[0]
}
