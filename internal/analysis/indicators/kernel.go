// Package indicators implements the indicator kernels: pure functions that turn a bar frame into
// aligned indicator columns, plus the registry and the batch engine that dispatch them.
package indicators

import (
	"ta-kernels/internal/analysis/params"
	"ta-kernels/internal/models"
)

// Group partitions the kernel set by what the indicator measures.
type Group string

const (
	GroupTrend      Group = "trend"
	GroupVolatility Group = "volatility"
	GroupVolume     Group = "volume"
	GroupMomentum   Group = "momentum"
)

// KernelFunc is the body of a kernel. It receives a resolved parameter record and column map.
type KernelFunc func(f models.Frame, p params.Record, c params.Columns) (*models.Output, error)

// Kernel is one registry entry.
type Kernel struct {
	Tag         string
	Aliases     []string
	Group       Group
	Description string
	Schema      params.Schema
	Inputs      []params.Role
	Compute     KernelFunc
}

// Run resolves the caller's parameter and column maps and computes the kernel.
// Nil maps select the defaults.
func (k Kernel) Run(f models.Frame, p map[string]any, c map[string]string) (*models.Output, error) {
	return k.Compute(f, k.Schema.Resolve(p), params.ResolveColumns(c))
}
