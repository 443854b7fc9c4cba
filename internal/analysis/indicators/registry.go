package indicators

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"ta-kernels/internal/analysis/params"
	apperrors "ta-kernels/internal/errors"
)

var (
	closeOnly  = []params.Role{params.RoleClose}
	closeVol   = []params.Role{params.RoleClose, params.RoleVolume}
	volumeOnly = []params.Role{params.RoleVolume}
	hlc        = []params.Role{params.RoleHigh, params.RoleLow, params.RoleClose}
	hlcv       = []params.Role{params.RoleHigh, params.RoleLow, params.RoleClose, params.RoleVolume}
	hlv        = []params.Role{params.RoleHigh, params.RoleLow, params.RoleVolume}
)

func window(def int) params.Schema {
	return params.Schema{params.IntParam("window", def, 1)}
}

func smoothingAlpha() params.Schema {
	return params.Schema{params.FloatParam("alpha", 0.07, 0.01, 1)}
}

func adaptiveSchema() params.Schema {
	return params.Schema{
		params.IntParam("window", 10, 1),
		params.IntParam("fast", 2, 1),
		params.IntParam("slow", 30, 1),
	}
}

func initialValue() params.Schema {
	return params.Schema{params.FloatParam("initial_value", 1000, math.Inf(-1), math.Inf(1))}
}

// builtinKernels is the full kernel table.
func builtinKernels() []Kernel {
	return []Kernel{
		// Trend
		{Tag: "SMA", Group: GroupTrend, Description: "Simple Moving Average", Schema: window(20), Inputs: closeOnly, Compute: SMA},
		{Tag: "EMA", Group: GroupTrend, Description: "Exponential Moving Average", Schema: window(20), Inputs: closeOnly, Compute: EMA},
		{Tag: "SOA", Aliases: []string{"SMMA"}, Group: GroupTrend, Description: "Smoothed Moving Average", Schema: window(14), Inputs: closeOnly, Compute: SOA},
		{Tag: "DEMA", Group: GroupTrend, Description: "Double Exponential Moving Average", Schema: window(20), Inputs: closeOnly, Compute: DEMA},
		{Tag: "TEMA", Group: GroupTrend, Description: "Triple Exponential Moving Average", Schema: window(20), Inputs: closeOnly, Compute: TEMA},
		{
			Tag: "TRIX", Group: GroupTrend, Description: "Triple Exponential Average rate of change",
			Schema:  params.Schema{params.IntParam("window", 15, 1), params.IntParam("signal", 9, 1)},
			Inputs:  closeOnly,
			Compute: TRIX,
		},
		{Tag: "ZMA", Aliases: []string{"ZLEMA"}, Group: GroupTrend, Description: "Zero-Lag Exponential Moving Average", Schema: window(20), Inputs: closeOnly, Compute: ZMA},
		{Tag: "LSMA", Group: GroupTrend, Description: "Least Squares Moving Average", Schema: window(25), Inputs: closeOnly, Compute: LSMA},
		{
			Tag: "ALMA", Group: GroupTrend, Description: "Arnaud Legoux Moving Average",
			Schema: params.Schema{
				params.IntParam("window", 9, 1),
				params.FloatParam("sigma", 6, 0.01, math.Inf(1)),
				params.FloatParam("offset", 0.85, 0, 1),
			},
			Inputs:  closeOnly,
			Compute: ALMA,
		},
		{Tag: "SWMA", Group: GroupTrend, Description: "Sine Weighted Moving Average", Schema: window(10), Inputs: closeOnly, Compute: SWMA},
		{Tag: "KMA", Aliases: []string{"KAMA"}, Group: GroupTrend, Description: "Kaufman Adaptive Moving Average", Schema: adaptiveSchema(), Inputs: closeOnly, Compute: KMA},
		{Tag: "AMA", Group: GroupTrend, Description: "Adaptive Moving Average", Schema: adaptiveSchema(), Inputs: closeOnly, Compute: AMA},
		{
			Tag: "JMA", Group: GroupTrend, Description: "Jurik Moving Average approximation",
			Schema: params.Schema{
				params.IntParam("length", 21, 1),
				params.FloatParam("phase", 0, -100, 100),
				params.FloatParam("power", 2, math.Inf(-1), math.Inf(1)),
			},
			Inputs:  closeOnly,
			Compute: JMA,
		},
		{Tag: "MGD", Aliases: []string{"MCGINLEY"}, Group: GroupTrend, Description: "McGinley Dynamic", Schema: window(14), Inputs: closeOnly, Compute: MGD},
		{
			Tag: "VID", Aliases: []string{"VIDYA"}, Group: GroupTrend, Description: "Variable Index Dynamic Average",
			Schema:  params.Schema{params.IntParam("window", 14, 1), params.IntParam("cmo_window", 9, 1)},
			Inputs:  closeOnly,
			Compute: VID,
		},
		{Tag: "EIT", Aliases: []string{"ITREND"}, Group: GroupTrend, Description: "Ehlers Instantaneous Trendline", Schema: smoothingAlpha(), Inputs: closeOnly, Compute: EIT},
		{
			Tag: "HTT", Aliases: []string{"HILBERT"}, Group: GroupTrend, Description: "Hilbert Transform Trendline",
			Schema:  params.Schema{params.IntParam("window", 7, 7)},
			Inputs:  closeOnly,
			Compute: HTT,
		},
		{Tag: "EAC", Aliases: []string{"CYBERCYCLE"}, Group: GroupTrend, Description: "Ehlers Cyber Cycle", Schema: smoothingAlpha(), Inputs: closeOnly, Compute: EAC},

		// Volatility
		{
			Tag: "VR", Group: GroupVolatility, Description: "Volatility Ratio",
			Schema:  params.Schema{params.IntParam("short_period", 5, 1), params.IntParam("long_period", 20, 1)},
			Inputs:  closeOnly,
			Compute: VR,
		},
		{Tag: "ATR", Group: GroupVolatility, Description: "Average True Range", Schema: window(14), Inputs: hlc, Compute: ATR},

		// Momentum
		{Tag: "CMO", Group: GroupMomentum, Description: "Chande Momentum Oscillator", Schema: window(9), Inputs: closeOnly, Compute: CMO},

		// Volume
		{Tag: "OBV", Group: GroupVolume, Description: "On-Balance Volume", Inputs: closeVol, Compute: OBV},
		{Tag: "VWAP", Aliases: []string{"VWA"}, Group: GroupVolume, Description: "Volume Weighted Average Price", Inputs: hlcv, Compute: VWAP},
		{Tag: "VMA", Group: GroupVolume, Description: "Volume-weighted Moving Average", Schema: window(20), Inputs: closeVol, Compute: VMA},
		{
			Tag: "VO", Group: GroupVolume, Description: "Volume Oscillator",
			Schema:  params.Schema{params.IntParam("fast", 5, 1), params.IntParam("slow", 10, 1)},
			Inputs:  volumeOnly,
			Compute: VO,
		},
		{
			Tag: "PVO", Group: GroupVolume, Description: "Percentage Volume Oscillator",
			Schema: params.Schema{
				params.IntParam("fast", 12, 1),
				params.IntParam("slow", 26, 1),
				params.IntParam("signal", 9, 1),
			},
			Inputs:  volumeOnly,
			Compute: PVO,
		},
		{Tag: "ADL", Group: GroupVolume, Description: "Accumulation/Distribution Line", Inputs: hlcv, Compute: ADL},
		{
			Tag: "ADO", Group: GroupVolume, Description: "Accumulation/Distribution Oscillator",
			Schema:  params.Schema{params.IntParam("period", 14, 1)},
			Inputs:  hlcv,
			Compute: ADO,
		},
		{
			Tag: "EMV", Group: GroupVolume, Description: "Ease of Movement",
			Schema:  params.Schema{params.IntParam("period", 14, 1), params.FloatParam("divisor", 10000, 1e-12, math.Inf(1))},
			Inputs:  hlv,
			Compute: EMV,
		},
		{Tag: "BWMFI", Group: GroupVolume, Description: "Market Facilitation Index", Inputs: hlv, Compute: BWMFI},
		{
			Tag: "FI", Group: GroupVolume, Description: "Force Index",
			Schema:  params.Schema{params.IntParam("period", 13, 1)},
			Inputs:  closeVol,
			Compute: FI,
		},
		{Tag: "NVI", Group: GroupVolume, Description: "Negative Volume Index", Schema: initialValue(), Inputs: closeVol, Compute: NVI},
		{Tag: "PVI", Group: GroupVolume, Description: "Positive Volume Index", Schema: initialValue(), Inputs: closeVol, Compute: PVI},
		{Tag: "WAD", Group: GroupVolume, Description: "Williams Accumulation/Distribution", Inputs: hlc, Compute: WAD},
	}
}

// Registry maps kernel tags and aliases to kernels. Lookups are case-insensitive.
type Registry struct {
	mu      sync.RWMutex
	kernels map[string]Kernel
	names   map[string]string // upper-cased tag or alias -> tag
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		kernels: make(map[string]Kernel),
		names:   make(map[string]string),
	}
}

// Register adds a kernel. A tag or alias that is already taken is rejected.
func (r *Registry) Register(k Kernel) error {
	if k.Tag == "" || k.Compute == nil {
		return apperrors.NewValidationError("kernel", k.Tag, "tag and compute function are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{k.Tag}, k.Aliases...)
	for _, key := range keys {
		if owner, ok := r.names[strings.ToUpper(key)]; ok {
			return fmt.Errorf("kernel name %q already registered by %s", key, owner)
		}
	}
	for _, key := range keys {
		r.names[strings.ToUpper(key)] = k.Tag
	}
	r.kernels[k.Tag] = k
	return nil
}

// Lookup resolves a tag or alias.
func (r *Registry) Lookup(name string) (Kernel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag, ok := r.names[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Kernel{}, apperrors.Wrapf(apperrors.ErrKernelNotFound, "%q", name)
	}
	return r.kernels[tag], nil
}

// Kernels returns every registered kernel sorted by group then tag.
func (r *Registry) Kernels() []Kernel {
	r.mu.RLock()
	out := make([]Kernel, 0, len(r.kernels))
	for _, k := range r.kernels {
		out = append(out, k)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return groupOrder(out[i].Group) < groupOrder(out[j].Group)
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func groupOrder(g Group) int {
	switch g {
	case GroupTrend:
		return 0
	case GroupVolatility:
		return 1
	case GroupVolume:
		return 2
	case GroupMomentum:
		return 3
	}
	return 4
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry holding the built-in kernels.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, k := range builtinKernels() {
			if err := defaultRegistry.Register(k); err != nil {
				panic(err)
			}
		}
	})
	return defaultRegistry
}

// Lookup resolves a built-in kernel by tag or alias.
func Lookup(name string) (Kernel, error) {
	return Default().Lookup(name)
}

// Kernels returns the built-in kernels sorted by group then tag.
func Kernels() []Kernel {
	return Default().Kernels()
}
