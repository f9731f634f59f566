package config

import (
	"time"

	"github.com/Sumatoshi-tech/refmine/pkg/similarity"
)

// Mining defaults.
const (
	DefaultWorkers           = 0
	DefaultCommitTimeout     = 2 * time.Minute
	DefaultFirstParent       = false
	DefaultMaxFileSize       = "1MiB"
	DefaultParseCacheEntries = 4096
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Observability defaults.
const (
	DefaultSampleRatio = 1.0
)

// Output defaults.
const (
	DefaultFormat = "csv"
)

// DefaultLanguages are the enry names of the built-in front ends.
func DefaultLanguages() []string {
	return []string{"Go", "Java"}
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Thresholds: similarity.DefaultThresholds(),
		Mining: MiningConfig{
			Workers:           DefaultWorkers,
			CommitTimeout:     DefaultCommitTimeout,
			FirstParent:       DefaultFirstParent,
			MaxFileSize:       DefaultMaxFileSize,
			ParseCacheEntries: DefaultParseCacheEntries,
			Languages:         DefaultLanguages(),
		},
		Logging:       LoggingConfig{Level: DefaultLogLevel, JSON: DefaultLogJSON},
		Observability: ObservabilityConfig{SampleRatio: DefaultSampleRatio},
		Output:        OutputConfig{Format: DefaultFormat},
	}
}
