package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# ta-kernels configuration

[logging]
# Log level: debug, info, warn, error, disabled
level = "info"
# Human-readable log lines on stderr
console = true
# Rotating log file
file = false
file_path = ""
max_size = 50
max_backups = 5
max_age = 14

[engine]
# Kernels computed concurrently per batch
workers = 4

[data]
# Bar source: "csv" (path is a CSV file) or "sqlite" (path is a database)
source = "csv"
path = "bars.csv"
symbol = ""
timeframe = "1d"
# Export target: .csv or .xlsx; empty prints to stdout
output = ""
# Decimal places in exported values, -1 for shortest form
precision = 6

# Each [[indicators]] entry is one kernel of the batch.
[[indicators]]
kernel = "TEMA"
params = { window = 20 }

[[indicators]]
kernel = "PVO"
params = { fast = 12, slow = 26, signal = 9 }

[[indicators]]
kernel = "VWAP"
`

// WriteTemplate writes a commented takernels.toml into dir. An existing file is left untouched.
func WriteTemplate(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(dir, "takernels.toml")
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file %s already exists", path)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
		return "", fmt.Errorf("writing config template: %w", err)
	}
	return path, nil
}
