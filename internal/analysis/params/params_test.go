package params

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testSchema = Schema{
	IntParam("window", 20, 1),
	FloatParam("phase", 0, -100, 100),
	FloatParam("alpha", 0.07, 0.01, 1),
}

func TestResolve_Defaults(t *testing.T) {
	r := testSchema.Defaults()
	assert.Equal(t, 20, r.Int("window"))
	assert.Equal(t, 0.0, r.Float("phase"))
	assert.Equal(t, 0.07, r.Float("alpha"))
	assert.Equal(t, []string{"alpha", "phase", "window"}, r.Keys())
}

func TestResolve_Coercion(t *testing.T) {
	tests := []struct {
		name  string
		in    map[string]any
		param string
		want  float64
	}{
		{"int value", map[string]any{"window": 5}, "window", 5},
		{"int64 value", map[string]any{"window": int64(7)}, "window", 7},
		{"float truncated", map[string]any{"window": 9.9}, "window", 9},
		{"numeric string", map[string]any{"window": "12"}, "window", 12},
		{"garbage string", map[string]any{"window": "abc"}, "window", 20},
		{"float32", map[string]any{"alpha": float32(0.5)}, "alpha", 0.5},
		{"NaN falls back", map[string]any{"alpha": math.NaN()}, "alpha", 0.07},
		{"infinite int falls back", map[string]any{"window": math.Inf(1)}, "window", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testSchema.Resolve(tt.in)
			assert.InDelta(t, tt.want, r.Float(tt.param), 1e-6)
		})
	}
}

func TestResolve_Clamping(t *testing.T) {
	r := testSchema.Resolve(map[string]any{
		"window": -3,
		"phase":  250,
		"alpha":  0.0001,
	})
	assert.Equal(t, 1, r.Int("window"))
	assert.Equal(t, 100.0, r.Float("phase"))
	assert.Equal(t, 0.01, r.Float("alpha"))

	r = testSchema.Resolve(map[string]any{"phase": -1000, "alpha": 7})
	assert.Equal(t, -100.0, r.Float("phase"))
	assert.Equal(t, 1.0, r.Float("alpha"))
}

func TestResolve_UnknownKeysIgnored(t *testing.T) {
	r := testSchema.Resolve(map[string]any{"bogus": 1, "window": 3})
	assert.Equal(t, 3, r.Int("window"))
	assert.NotContains(t, r.Map(), "bogus")
	assert.Equal(t, 0, r.Int("bogus"))
}

func TestSchema_Names(t *testing.T) {
	assert.Equal(t, []string{"window", "phase", "alpha"}, testSchema.Names())
	assert.Equal(t, "int", Int.String())
	assert.Equal(t, "float", Float.String())
}

func TestResolveColumns(t *testing.T) {
	c := ResolveColumns(nil)
	assert.Equal(t, DefaultColumns(), c)
	assert.Equal(t, "Close", c.Close)
	assert.Equal(t, "Volume", c.Volume)

	c = ResolveColumns(map[string]string{
		"close_col": "Adj Close",
		"low_col":   "",
		"other_col": "x",
	})
	assert.Equal(t, "Adj Close", c.Name(RoleClose))
	assert.Equal(t, "Low", c.Name(RoleLow))
	assert.Equal(t, "High", c.Name(RoleHigh))
	assert.Equal(t, "", c.Name(Role("other_col")))
}

func TestResolve_OversizedInt(t *testing.T) {
	for _, v := range []any{1e30, "1e30", math.MaxInt64, uint64(math.MaxUint64)} {
		r := testSchema.Resolve(map[string]any{"window": v})
		assert.Equal(t, MaxInt, r.Int("window"), "%v", v)
	}
	r := testSchema.Resolve(map[string]any{"window": -1e30})
	assert.Equal(t, 1, r.Int("window"))

	bounded := Schema{{Name: "n", Kind: Int, Default: 3, Min: 1, Max: 10}}
	assert.Equal(t, 10, bounded.Resolve(map[string]any{"n": 1e30}).Int("n"))
}
