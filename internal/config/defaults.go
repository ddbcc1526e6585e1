package config

import (
	"os"
	"path/filepath"
)

// Default values
const (
	// Reader defaults mirror manifest.DefaultOptions
	DefaultNormalize = true
	DefaultValidate  = true
	DefaultClone     = false

	// Scan defaults
	DefaultWorkers  = 8
	DefaultProgress = false

	// Logging defaults
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "pretty"

	// Output defaults
	DefaultOutputFormat = "text"

	// EnvPrefix prefixes environment overrides, e.g. LIBMANIFEST_SCAN_WORKERS
	EnvPrefix = "LIBMANIFEST"
)

// OutputFormats lists the accepted output.format values
var OutputFormats = []string{"text", "json", "yaml"}

// LogFormats lists the accepted logging.format values
var LogFormats = []string{"pretty", "json"}

// DefaultExcludePatterns skips dependency and VCS directories during scans
var DefaultExcludePatterns = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/bower_components/**",
}

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".libmanifest"
	}
	return filepath.Join(home, ".libmanifest")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Reader: ReaderConfig{
			Normalize: DefaultNormalize,
			Validate:  DefaultValidate,
			Clone:     DefaultClone,
		},
		Scan: ScanConfig{
			Workers:  DefaultWorkers,
			Progress: DefaultProgress,
			Exclude:  append([]string(nil), DefaultExcludePatterns...),
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
	}
}
