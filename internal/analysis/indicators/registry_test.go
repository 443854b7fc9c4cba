package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ta-kernels/internal/analysis/params"
	apperrors "ta-kernels/internal/errors"
	"ta-kernels/internal/models"
)

func TestLookup_TagsAndAliases(t *testing.T) {
	aliases := map[string]string{
		"SMMA":       "SOA",
		"zlema":      "ZMA",
		"KAMA":       "KMA",
		"VIDYA":      "VID",
		"vwa":        "VWAP",
		"CyberCycle": "EAC",
		"MCGINLEY":   "MGD",
		"ITREND":     "EIT",
		"hilbert":    "HTT",
		" tema ":     "TEMA",
	}
	for name, tag := range aliases {
		k, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, tag, k.Tag, name)
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrKernelNotFound)
}

func TestKernels_SortedByGroupThenTag(t *testing.T) {
	kernels := Kernels()
	require.Len(t, kernels, 34)

	for i := 1; i < len(kernels); i++ {
		a, b := kernels[i-1], kernels[i]
		if a.Group == b.Group {
			assert.Less(t, a.Tag, b.Tag)
			continue
		}
		assert.Less(t, groupOrder(a.Group), groupOrder(b.Group))
	}
	assert.Equal(t, GroupTrend, kernels[0].Group)
	assert.Equal(t, GroupMomentum, kernels[len(kernels)-1].Group)
}

func TestKernels_Metadata(t *testing.T) {
	for _, k := range Kernels() {
		assert.NotEmpty(t, k.Description, k.Tag)
		assert.NotEmpty(t, k.Inputs, k.Tag)
		assert.NotNil(t, k.Compute, k.Tag)
	}
}

func TestDefaultSchemas(t *testing.T) {
	tests := []struct {
		tag  string
		want map[string]float64
	}{
		{"DEMA", map[string]float64{"window": 20}},
		{"TRIX", map[string]float64{"window": 15, "signal": 9}},
		{"ALMA", map[string]float64{"window": 9, "sigma": 6, "offset": 0.85}},
		{"KMA", map[string]float64{"window": 10, "fast": 2, "slow": 30}},
		{"JMA", map[string]float64{"length": 21, "phase": 0, "power": 2}},
		{"VID", map[string]float64{"window": 14, "cmo_window": 9}},
		{"EIT", map[string]float64{"alpha": 0.07}},
		{"VR", map[string]float64{"short_period": 5, "long_period": 20}},
		{"PVO", map[string]float64{"fast": 12, "slow": 26, "signal": 9}},
		{"EMV", map[string]float64{"period": 14, "divisor": 10000}},
		{"NVI", map[string]float64{"initial_value": 1000}},
		{"OBV", map[string]float64{}},
	}
	for _, tt := range tests {
		k, err := Lookup(tt.tag)
		require.NoError(t, err)
		assert.Equal(t, tt.want, k.Schema.Defaults().Map(), tt.tag)
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	noop := func(f models.Frame, _ params.Record, _ params.Columns) (*models.Output, error) {
		return single(f, "X", make([]float64, f.Len())), nil
	}

	require.NoError(t, r.Register(Kernel{Tag: "X", Aliases: []string{"EX"}, Compute: noop}))
	assert.Error(t, r.Register(Kernel{Tag: "ex", Compute: noop}))
	assert.Error(t, r.Register(Kernel{Tag: "Y", Aliases: []string{"x"}, Compute: noop}))
	assert.Error(t, r.Register(Kernel{Tag: "Z"}))

	k, err := r.Lookup("Ex")
	require.NoError(t, err)
	assert.Equal(t, "X", k.Tag)
	assert.Len(t, r.Kernels(), 1)
}
