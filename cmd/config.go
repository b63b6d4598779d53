package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the CLI settings resolved from flags, environment
// (RAILZ_ prefix) and an optional config file.
type Config struct {
	Verbose  bool      `mapstructure:"verbose"`
	Initial  int       `mapstructure:"initial"`
	Pipeline string    `mapstructure:"pipeline"`
	Log      LogConfig `mapstructure:"log"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Format string `mapstructure:"format"`
}

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var errNoPipeline = errors.New("no pipeline file given")

func setDefaults(v *viper.Viper) {
	v.SetDefault("verbose", false)
	v.SetDefault("initial", 0)
	v.SetDefault("pipeline", "")
	v.SetDefault("log.format", LogFormatText)
}

// loadConfig unmarshals v into a Config and validates it.
func loadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that have a closed set of values.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q: must be %s or %s", c.Log.Format, LogFormatText, LogFormatJSON)
	}
	return nil
}
