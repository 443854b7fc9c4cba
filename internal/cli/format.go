package cli

import (
	"fmt"
	"math"
	"strings"

	"ta-kernels/internal/analysis/params"
	"ta-kernels/pkg/utils"
)

// FormatSchema renders a parameter schema as "name=default" pairs, e.g. "window=20 sigma=6".
func FormatSchema(schema params.Schema) string {
	if len(schema) == 0 {
		return "-"
	}
	parts := make([]string, len(schema))
	for i, p := range schema {
		parts[i] = p.Name + "=" + utils.FormatParam(p.Default)
	}
	return strings.Join(parts, " ")
}

// FormatBounds renders the admissible range of a parameter, e.g. "[1, inf)".
func FormatBounds(p params.Param) string {
	bound := func(v float64) string {
		if math.IsInf(v, 1) {
			return "inf"
		}
		if math.IsInf(v, -1) {
			return "-inf"
		}
		return utils.FormatParam(v)
	}
	closing := "]"
	if math.IsInf(p.Max, 0) {
		closing = ")"
	}
	opening := "["
	if math.IsInf(p.Min, 0) {
		opening = "("
	}
	return fmt.Sprintf("%s%s, %s%s", opening, bound(p.Min), bound(p.Max), closing)
}

// FormatRoles renders the input roles of a kernel, e.g. "close,volume".
func FormatRoles(roles []params.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = strings.TrimSuffix(string(r), "_col")
	}
	return strings.Join(names, ",")
}

// ParseParams parses repeated key=value flags. Values stay strings; the kernel's schema coerces them.
func ParseParams(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (want key=value)", pair)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// ParseColumns parses repeated role=column flags. The role may omit its "_col" suffix,
// so "close=Adj Close" and "close_col=Adj Close" are equivalent.
func ParseColumns(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		role, name, ok := strings.Cut(pair, "=")
		role = strings.ToLower(strings.TrimSpace(role))
		if !ok || role == "" || name == "" {
			return nil, fmt.Errorf("invalid column mapping %q (want role=column)", pair)
		}
		if !strings.HasSuffix(role, "_col") {
			role += "_col"
		}
		switch params.Role(role) {
		case params.RoleClose, params.RoleHigh, params.RoleLow, params.RoleVolume:
		default:
			return nil, fmt.Errorf("unknown column role %q", role)
		}
		out[role] = name
	}
	return out, nil
}
