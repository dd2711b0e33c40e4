// Package config loads engine configuration from CLI flags, environment
// variables prefixed with VOXELFLOW, or a config.yaml file, in that order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "VOXELFLOW"

// Config holds the process-wide engine defaults. Zero values are filled
// in by Default.
type Config struct {
	// Log configures the format (text, json) and level of the engine
	// logger.
	Log LogConfig

	// Workers bounds intra-node parallelism for nodes that do not set
	// their own worker count.
	Workers int

	// StreamDivisions is the default piece count for streaming sinks.
	StreamDivisions int

	// Trace enables OTel tracing of pipeline updates.
	Trace TraceConfig
}

type LogConfig struct {
	Format string
	Level  string
}

type TraceConfig struct {
	Enabled     bool
	SampleRatio float64
}

// Default returns the engine defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Workers:         1,
		StreamDivisions: 1,
		Trace: TraceConfig{
			Enabled:     false,
			SampleRatio: 0.2,
		},
	}
}

// Verify validates the configuration.
func (c *Config) Verify() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: invalid log format %q", c.Log.Format)
	}
	switch c.Log.Level {
	case "none", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", c.Log.Level)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if c.StreamDivisions < 1 {
		return fmt.Errorf("config: stream divisions must be at least 1, got %d", c.StreamDivisions)
	}
	if c.Trace.SampleRatio < 0 || c.Trace.SampleRatio > 1 {
		return fmt.Errorf("config: trace sample ratio must be in [0,1], got %v", c.Trace.SampleRatio)
	}
	return nil
}

// MustBindPFlag attempts to bind a specific key to a pflag and panics if
// the binding fails.
func MustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic("failed to bind pflag: " + err.Error())
	}
}

// MustBindEnv binds a config key to its VOXELFLOW_ environment variable
// and panics if the binding fails.
func MustBindEnv(input ...string) {
	if err := viper.BindEnv(input...); err != nil {
		panic("failed to bind env key: " + err.Error())
	}
}

// Load reads configuration from config.yaml (searched in ".",
// "$HOME/.voxelflow" and "/etc/voxelflow"), the environment, and any
// previously bound flags, layered over Default.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	for _, path := range []string{".", "$HOME/.voxelflow", "/etc/voxelflow"} {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	cfg := Default()
	viper.SetDefault("log.format", cfg.Log.Format)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("stream.divisions", cfg.StreamDivisions)
	viper.SetDefault("trace.enabled", cfg.Trace.Enabled)
	viper.SetDefault("trace.sampleRatio", cfg.Trace.SampleRatio)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	cfg.Log.Format = viper.GetString("log.format")
	cfg.Log.Level = viper.GetString("log.level")
	cfg.Workers = viper.GetInt("workers")
	cfg.StreamDivisions = viper.GetInt("stream.divisions")
	cfg.Trace.Enabled = viper.GetBool("trace.enabled")
	cfg.Trace.SampleRatio = viper.GetFloat64("trace.sampleRatio")

	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return cfg, nil
}
