package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ta-kernels/internal/models"
)

var testStart = time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)

func testIndex(n int) []time.Time {
	index := make([]time.Time, n)
	for i := range index {
		index[i] = testStart.Add(time.Duration(i) * 24 * time.Hour)
	}
	return index
}

// frameOf builds a frame from role columns keyed by the standard column names.
func frameOf(t *testing.T, cols map[string][]float64) *models.BarFrame {
	t.Helper()
	n := -1
	for _, v := range cols {
		n = len(v)
		break
	}
	require.GreaterOrEqual(t, n, 0)
	f := models.NewBarFrame(testIndex(n))
	for name, values := range cols {
		require.NoError(t, f.SetColumn(name, values))
	}
	return f
}

func closeFrame(t *testing.T, closes ...float64) *models.BarFrame {
	return frameOf(t, map[string][]float64{models.ColClose: closes})
}

// runKernel looks up tag and runs it, failing the test on error.
func runKernel(t *testing.T, f models.Frame, tag string, p map[string]any) *models.Output {
	t.Helper()
	k, err := Lookup(tag)
	require.NoError(t, err)
	out, err := k.Run(f, p, nil)
	require.NoError(t, err)
	require.NotNil(t, out)
	return out
}

// assertSeries compares two series within delta, treating NaN as equal to NaN.
func assertSeries(t *testing.T, want, got []float64, delta float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.Truef(t, math.IsNaN(got[i]), "index %d: want NaN, got %v", i, got[i])
			continue
		}
		assert.InDeltaf(t, want[i], got[i], delta, "index %d", i)
	}
}

// sameSeries reports bit-for-bit equality with NaN equal to NaN.
func sameSeries(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var nan = math.NaN()
