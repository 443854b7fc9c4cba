// Package config provides configuration management for the kernel engine and its CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ta-kernels/internal/analysis/indicators"
	apperrors "ta-kernels/internal/errors"
	"ta-kernels/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. TAKERNELS_ENGINE_WORKERS.
const EnvPrefix = "TAKERNELS"

// Config holds all application configuration.
type Config struct {
	Logging    logging.LogConfig `mapstructure:"logging"`
	Engine     EngineConfig      `mapstructure:"engine"`
	Data       DataConfig        `mapstructure:"data"`
	Indicators []IndicatorConfig `mapstructure:"indicators" validate:"dive"`
}

// EngineConfig holds batch engine configuration.
type EngineConfig struct {
	Workers int `mapstructure:"workers" validate:"gte=1,lte=256"`
}

// DataConfig selects the bar source and the export target.
type DataConfig struct {
	Source    string `mapstructure:"source" validate:"oneof=csv sqlite"`
	Path      string `mapstructure:"path"`
	Symbol    string `mapstructure:"symbol" validate:"required_if=Source sqlite"`
	Timeframe string `mapstructure:"timeframe"`
	Output    string `mapstructure:"output"`
	Precision int    `mapstructure:"precision" validate:"gte=-1,lte=15"`
}

// IndicatorConfig is one [[indicators]] entry of a batch.
type IndicatorConfig struct {
	Kernel  string            `mapstructure:"kernel" validate:"required"`
	Params  map[string]any    `mapstructure:"params"`
	Columns map[string]string `mapstructure:"columns"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "takernels")
	}
	return filepath.Join(home, ".config", "takernels")
}

func setDefaults(v *viper.Viper) {
	def := logging.DefaultLogConfig()
	v.SetDefault("logging.level", def.Level)
	v.SetDefault("logging.console", def.Console)
	v.SetDefault("logging.file", def.File)
	v.SetDefault("logging.file_path", def.FilePath)
	v.SetDefault("logging.max_size", def.MaxSize)
	v.SetDefault("logging.max_backups", def.MaxBackups)
	v.SetDefault("logging.max_age", def.MaxAge)

	v.SetDefault("engine.workers", runtime.NumCPU())

	v.SetDefault("data.source", "csv")
	v.SetDefault("data.path", "")
	v.SetDefault("data.symbol", "")
	v.SetDefault("data.timeframe", "1d")
	v.SetDefault("data.output", "")
	v.SetDefault("data.precision", 6)
}

// Load reads configuration from path. An empty path searches for takernels.toml in the
// working directory and then the default config directory; finding none yields the defaults.
// A .env file in the working directory is loaded first, and TAKERNELS_* variables override
// file values.
func Load(path string) (*Config, error) {
	// Don't fail if .env is absent; plain environment variables still apply.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("takernels")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, apperrors.Wrapf(err, "reading config %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the struct tags and that every batch entry names a registered kernel.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", apperrors.ErrConfigInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", apperrors.ErrConfigInvalid, err)
	}

	for i, ind := range c.Indicators {
		if _, err := indicators.Lookup(ind.Kernel); err != nil {
			return fmt.Errorf("%w: indicators[%d]: %v", apperrors.ErrConfigInvalid, i, err)
		}
	}
	return nil
}

// Requests converts the [[indicators]] entries into engine requests.
func (c *Config) Requests() []indicators.Request {
	reqs := make([]indicators.Request, len(c.Indicators))
	for i, ind := range c.Indicators {
		reqs[i] = indicators.Request{
			Kernel:  ind.Kernel,
			Params:  ind.Params,
			Columns: ind.Columns,
		}
	}
	return reqs
}
