// Package config loads the command line configuration from the environment.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Prefix of every environment variable, e.g. FILTERCHAIN_INSTANCES.
const Prefix = "FILTERCHAIN"

// Config holds the configuration of a run.
type Config struct {
	Run     RunConfig
	Logging LogConfig
	Output  OutputConfig
}

// RunConfig holds the shape of the run.
type RunConfig struct {
	Instances         int           `envconfig:"INSTANCES" default:"100"`
	Filters           int           `envconfig:"FILTERS" default:"3"`
	Work              time.Duration `envconfig:"WORK" default:"5s"`
	Timeout           time.Duration `envconfig:"TIMEOUT" default:"1s"`
	Poll              time.Duration `envconfig:"POLL" default:"1ms"`
	Countdown         bool          `envconfig:"COUNTDOWN" default:"false"`
	PropagateFailures bool          `envconfig:"PROPAGATE_FAILURES" default:"false"`
	Topology          string        `envconfig:"TOPOLOGY"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// OutputConfig holds the optional files written after a run.
type OutputConfig struct {
	DOTFile     string `envconfig:"DOT_FILE"`
	MetricsFile string `envconfig:"METRICS_FILE"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	// Sections share the prefix so variables are not namespaced by section.
	sections := map[string]interface{}{
		"run":     &cfg.Run,
		"logging": &cfg.Logging,
		"output":  &cfg.Output,
	}
	for name, section := range sections {
		if err := envconfig.Process(Prefix, section); err != nil {
			return nil, errors.Wrapf(err, "failed to load %s config", name)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Instances: 100,
			Filters:   3,
			Work:      5 * time.Second,
			Timeout:   time.Second,
			Poll:      time.Millisecond,
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration describes a run that can end.
func (c *Config) Validate() error {
	if c.Run.Instances <= 0 {
		return errors.Errorf("instances must be greater than 0, got %d", c.Run.Instances)
	}
	if c.Run.Topology == "" && c.Run.Filters <= 0 {
		return errors.Errorf("filters must be greater than 0, got %d", c.Run.Filters)
	}
	if c.Run.Work < 0 {
		return errors.Errorf("work must not be negative, got %s", c.Run.Work)
	}
	if c.Run.Poll <= 0 {
		return errors.Errorf("poll interval must be greater than 0, got %s", c.Run.Poll)
	}

	return nil
}
