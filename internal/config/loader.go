package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quantmind-br/libmanifest/internal/utils"
	"github.com/spf13/viper"
)

// LoadWithViper loads configuration from file, environment, and defaults into
// v, which carries any CLI flag bindings. An empty configFile searches
// ~/.libmanifest and the working directory; a missing config file is only an
// error when configFile names it explicitly.
func LoadWithViper(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(utils.ExpandPath(configFile))
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Environment variables (LIBMANIFEST_*)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Reader defaults
	v.SetDefault("reader.normalize", DefaultNormalize)
	v.SetDefault("reader.validate", DefaultValidate)
	v.SetDefault("reader.clone", DefaultClone)

	// Scan defaults
	v.SetDefault("scan.workers", DefaultWorkers)
	v.SetDefault("scan.progress", DefaultProgress)
	v.SetDefault("scan.exclude", DefaultExcludePatterns)

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)

	// Output defaults
	v.SetDefault("output.format", DefaultOutputFormat)
}
