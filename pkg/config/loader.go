package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".refmine"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for refmine settings.
const envPrefix = "REFMINE"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
	}

	readErr := v.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := v.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// applyDefaults registers every key, which also makes each one reachable
// through AutomaticEnv.
func applyDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("thresholds.minimum", d.Thresholds.Minimum)
	v.SetDefault("thresholds.ideal", d.Thresholds.Ideal)
	v.SetDefault("thresholds.extract_minimum", d.Thresholds.ExtractMinimum)

	v.SetDefault("mining.workers", d.Mining.Workers)
	v.SetDefault("mining.commit_timeout", d.Mining.CommitTimeout)
	v.SetDefault("mining.first_parent", d.Mining.FirstParent)
	v.SetDefault("mining.max_file_size", d.Mining.MaxFileSize)
	v.SetDefault("mining.parse_cache_entries", d.Mining.ParseCacheEntries)
	v.SetDefault("mining.languages", d.Mining.Languages)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.json", d.Logging.JSON)

	v.SetDefault("observability.otlp_endpoint", d.Observability.OTLPEndpoint)
	v.SetDefault("observability.otlp_insecure", d.Observability.OTLPInsecure)
	v.SetDefault("observability.sample_ratio", d.Observability.SampleRatio)
	v.SetDefault("observability.metrics_addr", d.Observability.MetricsAddr)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.evidence", d.Output.Evidence)
}
