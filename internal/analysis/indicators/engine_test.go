package indicators

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ta-kernels/internal/analysis/params"
	apperrors "ta-kernels/internal/errors"
	"ta-kernels/internal/metrics"
	"ta-kernels/internal/models"
)

func engineFrame(t *testing.T) *models.BarFrame {
	n := 60
	cols := map[string][]float64{
		models.ColHigh:   make([]float64, n),
		models.ColLow:    make([]float64, n),
		models.ColClose:  make([]float64, n),
		models.ColVolume: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		c := 50 + float64(i%7) - float64(i%3)
		cols[models.ColClose][i] = c
		cols[models.ColHigh][i] = c + 1
		cols[models.ColLow][i] = c - 1
		cols[models.ColVolume][i] = float64(1000 + 10*i)
	}
	return frameOf(t, cols)
}

func TestNewEngine_Defaults(t *testing.T) {
	assert.Equal(t, 4, NewEngine(0).Workers())
	assert.Equal(t, 8, NewEngine(8).Workers())
}

func TestEngine_ComputeKeepsRequestOrder(t *testing.T) {
	f := engineFrame(t)
	e := NewEngine(3)

	reqs := []Request{
		{Kernel: "TEMA", Params: map[string]any{"window": 10}},
		{Kernel: "pvo"},
		{Kernel: "OBV"},
		{Kernel: "VR", Params: map[string]any{"short_period": 3, "long_period": 9}},
		{Kernel: "KAMA"},
	}
	results, err := e.Compute(context.Background(), f, reqs)
	require.NoError(t, err)
	require.Len(t, results, len(reqs))

	assert.Equal(t, "TEMA", results[0].Kernel)
	assert.Equal(t, []string{"TEMA_10"}, results[0].Output.Names)
	assert.Equal(t, "PVO", results[1].Kernel)
	assert.Len(t, results[1].Output.Columns, 3)
	assert.Equal(t, "OBV", results[2].Kernel)
	assert.Equal(t, []string{"VR_3_9"}, results[3].Output.Names)
	assert.Equal(t, []string{"KMA_10_2_30"}, results[4].Output.Names)

	// Batch results equal direct runs.
	for i, r := range results {
		direct, err := e.Run(f, reqs[i].Kernel, reqs[i].Params, reqs[i].Columns)
		require.NoError(t, err)
		for j := range direct.Columns {
			assert.True(t, sameSeries(direct.Columns[j], r.Output.Columns[j]), r.Kernel)
		}
	}
}

func TestEngine_UnknownKernelFailsBatch(t *testing.T) {
	e := NewEngine(2)
	_, err := e.Compute(context.Background(), engineFrame(t), []Request{{Kernel: "SMA"}, {Kernel: "BOGUS"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrKernelNotFound)
	var kerr *apperrors.KernelError
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, "BOGUS", kerr.Kernel)
}

func TestEngine_MissingColumnFailsBatch(t *testing.T) {
	f := closeFrame(t, 1, 2, 3, 4, 5)
	e := NewEngine(2)

	_, err := e.Compute(context.Background(), f, []Request{{Kernel: "SMA"}, {Kernel: "OBV"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrColumnNotFound)

	var colErr *apperrors.ColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, string(params.RoleVolume), colErr.Role)
}

func TestEngine_ColumnOverride(t *testing.T) {
	f := engineFrame(t)
	require.NoError(t, f.SetColumn(models.ColAdjClose, make([]float64, f.Len())))

	out, err := NewEngine(1).Run(f, "SMA", map[string]any{"window": 5}, map[string]string{"close_col": models.ColAdjClose})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.First()[10])
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(2).Compute(ctx, engineFrame(t), []Request{{Kernel: "SMA"}, {Kernel: "EMA"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_WorkerLimit(t *testing.T) {
	var active, peak int32
	slow := func(f models.Frame, _ params.Record, _ params.Columns) (*models.Output, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		defer atomic.AddInt32(&active, -1)
		return single(f, "SLOW", make([]float64, f.Len())), nil
	}

	r := NewRegistry()
	require.NoError(t, r.Register(Kernel{Tag: "SLOW", Compute: slow}))
	e := NewEngine(2, WithRegistry(r))

	reqs := make([]Request, 20)
	for i := range reqs {
		reqs[i] = Request{Kernel: "SLOW"}
	}
	results, err := e.Compute(context.Background(), engineFrame(t), reqs)
	require.NoError(t, err)
	assert.Len(t, results, 20)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestEngine_LogsAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	m := metrics.NewMetrics(nil)
	e := NewEngine(2,
		WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)),
		WithMetrics(m),
	)

	_, err := e.Compute(context.Background(), engineFrame(t), []Request{{Kernel: "SMA"}, {Kernel: "SMA"}, {Kernel: "WAD"}})
	require.NoError(t, err)
	_, err = e.Run(closeFrame(t, 1, 2), "OBV", nil, nil)
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.KernelRunsTotal.WithLabelValues("SMA", metrics.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KernelRunsTotal.WithLabelValues("WAD", metrics.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KernelRunsTotal.WithLabelValues("OBV", metrics.StatusError)))
	assert.Contains(t, buf.String(), `"kernel":"WAD"`)
	assert.Contains(t, buf.String(), "Kernel failed")
}
