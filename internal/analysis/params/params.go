// Package params resolves caller-supplied parameter and column maps against per-kernel schemas.
//
// Resolution never fails: unknown keys are ignored, missing or uncoercible values take the
// default, and out-of-range values are clamped to the declared bounds.
package params

import (
	"math"
	"sort"

	"github.com/spf13/cast"
)

// Kind is the value type of a parameter.
type Kind int

const (
	// Int parameters are truncated toward zero when given a fractional value.
	Int Kind = iota
	// Float parameters keep their value as given.
	Float
)

func (k Kind) String() string {
	if k == Int {
		return "int"
	}
	return "float"
}

// Param declares one entry of a kernel's parameter record.
type Param struct {
	Name    string
	Kind    Kind
	Default float64
	Min     float64
	Max     float64
}

// MaxInt is the largest value an integer parameter resolves to, whatever its declared bound.
const MaxInt = math.MaxInt32

// IntParam declares an integer parameter with a lower bound and no declared upper bound.
// Values above MaxInt still clamp to MaxInt.
func IntParam(name string, def, min int) Param {
	return Param{Name: name, Kind: Int, Default: float64(def), Min: float64(min), Max: math.Inf(1)}
}

// FloatParam declares a float parameter bounded to [min, max].
func FloatParam(name string, def, min, max float64) Param {
	return Param{Name: name, Kind: Float, Default: def, Min: min, Max: max}
}

// clamp applies the bounds and integer truncation to v.
func (p Param) clamp(v float64) float64 {
	if math.IsNaN(v) || (p.Kind == Int && math.IsInf(v, 0)) {
		v = p.Default
	}
	if p.Kind == Int {
		v = math.Trunc(v)
		if v > MaxInt {
			v = MaxInt
		}
	}
	if v < p.Min {
		v = p.Min
	}
	if v > p.Max {
		v = p.Max
	}
	return v
}

// Schema is the ordered parameter declaration of a kernel.
type Schema []Param

// Resolve merges in with the schema defaults.
func (s Schema) Resolve(in map[string]any) Record {
	values := make(map[string]float64, len(s))
	for _, p := range s {
		v := p.Default
		if raw, ok := in[p.Name]; ok {
			if f, err := cast.ToFloat64E(raw); err == nil {
				v = f
			}
		}
		values[p.Name] = p.clamp(v)
	}
	return Record{values: values}
}

// Defaults returns the record obtained from an empty parameter map.
func (s Schema) Defaults() Record {
	return s.Resolve(nil)
}

// Names returns the parameter names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, p := range s {
		names[i] = p.Name
	}
	return names
}

// Record is a resolved, validated parameter set.
type Record struct {
	values map[string]float64
}

// Int returns an integer parameter. Undeclared names return zero.
func (r Record) Int(name string) int {
	return int(r.values[name])
}

// Float returns a float parameter. Undeclared names return zero.
func (r Record) Float(name string) float64 {
	return r.values[name]
}

// Map returns a copy of the resolved values.
func (r Record) Map() map[string]float64 {
	out := make(map[string]float64, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Keys returns the resolved parameter names sorted alphabetically.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RecordOf builds a record directly from values, bypassing a schema.
func RecordOf(values map[string]float64) Record {
	return Record{values: values}
}
