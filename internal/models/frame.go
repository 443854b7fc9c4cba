package models

import (
	"fmt"
	"math"
	"time"
)

// Frame is a read-only source of named numeric columns over an ordered index.
// Kernels never mutate the slices a Frame hands out.
type Frame interface {
	Len() int
	Index() []time.Time
	Column(name string) ([]float64, bool)
}

// BarFrame is the in-memory Frame implementation backed by plain slices.
type BarFrame struct {
	index   []time.Time
	columns map[string][]float64
	order   []string
}

// NewBarFrame creates an empty frame over index.
func NewBarFrame(index []time.Time) *BarFrame {
	return &BarFrame{
		index:   index,
		columns: make(map[string][]float64),
	}
}

// FrameFromCandles converts candles into a frame with the standard column names.
func FrameFromCandles(candles []Candle) *BarFrame {
	n := len(candles)
	index := make([]time.Time, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	for i, c := range candles {
		index[i] = c.Timestamp
		open[i] = c.Open
		high[i] = c.High
		low[i] = c.Low
		closes[i] = c.Close
		volume[i] = c.Volume
	}

	f := NewBarFrame(index)
	f.set(ColOpen, open)
	f.set(ColHigh, high)
	f.set(ColLow, low)
	f.set(ColClose, closes)
	f.set(ColVolume, volume)
	return f
}

// SetColumn adds or replaces a column. The column length must match the index.
func (f *BarFrame) SetColumn(name string, values []float64) error {
	if len(values) != len(f.index) {
		return fmt.Errorf("column %q has %d values, index has %d", name, len(values), len(f.index))
	}
	f.set(name, values)
	return nil
}

func (f *BarFrame) set(name string, values []float64) {
	if _, ok := f.columns[name]; !ok {
		f.order = append(f.order, name)
	}
	f.columns[name] = values
}

// Len returns the number of bars.
func (f *BarFrame) Len() int {
	return len(f.index)
}

// Index returns the bar timestamps.
func (f *BarFrame) Index() []time.Time {
	return f.index
}

// Column returns the named column.
func (f *BarFrame) Column(name string) ([]float64, bool) {
	values, ok := f.columns[name]
	return values, ok
}

// ColumnNames returns the column names in insertion order.
func (f *BarFrame) ColumnNames() []string {
	names := make([]string, len(f.order))
	copy(names, f.order)
	return names
}

// Candles converts the standard columns back into candles. Absent columns yield NaN.
func (f *BarFrame) Candles() []Candle {
	candles := make([]Candle, len(f.index))
	get := func(name string, i int) float64 {
		if col, ok := f.columns[name]; ok {
			return col[i]
		}
		return math.NaN()
	}
	for i, ts := range f.index {
		candles[i] = Candle{
			Timestamp: ts,
			Open:      get(ColOpen, i),
			High:      get(ColHigh, i),
			Low:       get(ColLow, i),
			Close:     get(ColClose, i),
			Volume:    get(ColVolume, i),
		}
	}
	return candles
}

// IsSorted reports whether the index is strictly increasing.
func (f *BarFrame) IsSorted() bool {
	for i := 1; i < len(f.index); i++ {
		if !f.index[i].After(f.index[i-1]) {
			return false
		}
	}
	return true
}
