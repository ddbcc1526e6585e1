package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/quantmind-br/libmanifest/internal/utils"
	"github.com/quantmind-br/libmanifest/pkg/manifest"
)

// Config represents the application configuration
type Config struct {
	Reader  ReaderConfig  `mapstructure:"reader" yaml:"reader"`
	Scan    ScanConfig    `mapstructure:"scan" yaml:"scan"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
}

// ReaderConfig holds the manifest processing steps applied on read
type ReaderConfig struct {
	Normalize bool `mapstructure:"normalize" yaml:"normalize"`
	Validate  bool `mapstructure:"validate" yaml:"validate"`
	Clone     bool `mapstructure:"clone" yaml:"clone"`
}

// ScanConfig contains settings for scanning a source tree
type ScanConfig struct {
	Workers  int      `mapstructure:"workers" yaml:"workers"`
	Progress bool     `mapstructure:"progress" yaml:"progress"`
	Exclude  []string `mapstructure:"exclude" yaml:"exclude"` // doublestar patterns, relative to the scan root
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration, applying defaults for out-of-range
// values and rejecting values that cannot be interpreted
func (c *Config) Validate() error {
	if c.Scan.Workers < 1 {
		c.Scan.Workers = DefaultWorkers
	}

	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = DefaultOutputFormat
	}
	if !isOneOf(c.Output.Format, OutputFormats) {
		return fmt.Errorf("invalid output.format %q: must be one of %s", c.Output.Format, strings.Join(OutputFormats, ", "))
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if !utils.IsValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}

	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if !isOneOf(c.Logging.Format, LogFormats) {
		return fmt.Errorf("invalid logging.format %q: must be one of %s", c.Logging.Format, strings.Join(LogFormats, ", "))
	}

	for _, pattern := range c.Scan.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid scan.exclude pattern %q", pattern)
		}
	}

	return nil
}

// ReadOptions converts the reader settings into manifest options
func (c *Config) ReadOptions() manifest.Options {
	return manifest.Options{
		Normalize: c.Reader.Normalize,
		Validate:  c.Reader.Validate,
		Clone:     c.Reader.Clone,
	}
}

func isOneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
