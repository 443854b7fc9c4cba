package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCandles() []Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Candle{
		{Timestamp: start, Open: 1, High: 3, Low: 0.5, Close: 2, Volume: 100},
		{Timestamp: start.Add(time.Hour), Open: 2, High: 4, Low: 1, Close: 3, Volume: math.NaN()},
	}
}

func TestFrameFromCandles(t *testing.T) {
	f := FrameFromCandles(testCandles())

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}, f.ColumnNames())
	closes, ok := f.Column(ColClose)
	require.True(t, ok)
	assert.Equal(t, []float64{2, 3}, closes)
	assert.True(t, f.IsSorted())

	back := f.Candles()
	assert.Equal(t, 100.0, back[0].Volume)
	assert.True(t, math.IsNaN(back[1].Volume))
}

func TestBarFrame_SetColumn(t *testing.T) {
	f := NewBarFrame(FrameFromCandles(testCandles()).Index())
	require.NoError(t, f.SetColumn(ColClose, []float64{1, 2}))
	assert.Error(t, f.SetColumn(ColHigh, []float64{1}))

	candles := f.Candles()
	assert.Equal(t, 2.0, candles[1].Close)
	assert.True(t, math.IsNaN(candles[1].High))
	assert.Equal(t, []string{ColClose}, f.ColumnNames())
}

func TestBarFrame_IsSorted(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, NewBarFrame([]time.Time{start, start}).IsSorted())
	assert.True(t, NewBarFrame(nil).IsSorted())
}

func TestOutput(t *testing.T) {
	index := FrameFromCandles(testCandles()).Index()
	out := NewOutput(index, []string{"A", "B"}, []float64{1, 2}, []float64{3, 4})

	assert.Equal(t, 2, out.Len())
	b, ok := out.Column("B")
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4}, b)
	_, ok = out.Column("C")
	assert.False(t, ok)
	assert.Equal(t, []float64{1, 2}, out.First())
	assert.Nil(t, NewOutput(index, nil).First())
}
