// Package config loads scrubber runtime settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/lehigh-university-libraries/scrubber/dialect"
	"github.com/lehigh-university-libraries/scrubber/profile"
	"github.com/lehigh-university-libraries/scrubber/report"
)

// Config holds the settings of one directory run.
type Config struct {
	Dirty        string `env:"SCRUBBER_DIRTY" envDefault:"dirty"`
	Clean        string `env:"SCRUBBER_CLEAN" envDefault:"clean"`
	Profile      string `env:"SCRUBBER_PROFILE" envDefault:"gis"`
	ProfileFile  string `env:"SCRUBBER_PROFILE_FILE"`
	Workers      int    `env:"SCRUBBER_WORKERS" envDefault:"1"`
	Sentinel     string `env:"SCRUBBER_SENTINEL" envDefault:"_empty"`
	SampleSize   int    `env:"SCRUBBER_SAMPLE_SIZE" envDefault:"1024"`
	Report       string `env:"SCRUBBER_REPORT"`
	ReportFormat string `env:"SCRUBBER_REPORT_FORMAT" envDefault:"yaml"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Default returns the built-in settings, ignoring the environment.
func Default() *Config {
	return &Config{
		Dirty:        "dirty",
		Clean:        "clean",
		Profile:      profile.DefaultName,
		Workers:      1,
		Sentinel:     "_empty",
		SampleSize:   dialect.DefaultSampleSize,
		ReportFormat: report.FormatYAML,
		LogLevel:     "INFO",
	}
}

// Load reads and validates settings from environment variables over the
// defaults.
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads settings from environment variables without validating them,
// for callers that override some of them before calling Validate.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that the environment parser cannot.
func (c *Config) Validate() error {
	if c.Dirty == "" {
		return fmt.Errorf("dirty directory must be set")
	}
	if c.Clean == "" {
		return fmt.Errorf("clean directory must be set")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.SampleSize < 1 {
		return fmt.Errorf("sample size must be at least 1, got %d", c.SampleSize)
	}
	switch c.ReportFormat {
	case report.FormatYAML, report.FormatJSON:
	default:
		return fmt.Errorf("unknown report format: %s (want yaml or json)", c.ReportFormat)
	}
	return nil
}
