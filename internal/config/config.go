// Package config loads critpath's runtime settings through viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid indicates a configuration value outside its allowed range.
var ErrInvalid = errors.New("config: invalid value")

// Output formats accepted by the format key.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config holds all runtime configuration for a critpath invocation.
// Values are populated from .critpath.yaml, CRITPATH_* env vars, and CLI flags.
type Config struct {
	ProjectFile string `mapstructure:"project_file"`
	DBPath      string `mapstructure:"db_path"`
	EventsPath  string `mapstructure:"events_path"`
	Format      string `mapstructure:"format"`
	DebounceMs  int    `mapstructure:"debounce_ms"`
	Verbose     bool   `mapstructure:"verbose"`
	Color       bool   `mapstructure:"color"`
}

// Debounce returns DebounceMs as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("project_file", "project.toml")
	viper.SetDefault("db_path", ".critpath/critpath.db")
	viper.SetDefault("events_path", "")
	viper.SetDefault("format", FormatTable)
	viper.SetDefault("debounce_ms", 150)
	viper.SetDefault("verbose", false)
	viper.SetDefault("color", true)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that viper cannot express.
func (c Config) Validate() error {
	switch c.Format {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("%w: format %q (want %s or %s)", ErrInvalid, c.Format, FormatTable, FormatJSON)
	}
	if c.DebounceMs < 0 {
		return fmt.Errorf("%w: debounce_ms %d is negative", ErrInvalid, c.DebounceMs)
	}
	if c.ProjectFile == "" {
		return fmt.Errorf("%w: project_file is empty", ErrInvalid)
	}
	return nil
}
