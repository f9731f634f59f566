// Package config loads refmine settings from defaults, an optional YAML file
// and REFMINE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/refmine/pkg/observability"
	"github.com/Sumatoshi-tech/refmine/pkg/report"
	"github.com/Sumatoshi-tech/refmine/pkg/similarity"
)

// Sentinel validation errors.
var (
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("mining.workers must be non-negative")
	// ErrInvalidCommitTimeout indicates a negative commit timeout.
	ErrInvalidCommitTimeout = errors.New("mining.commit_timeout must be non-negative")
	// ErrInvalidMaxFileSize indicates an unparsable or zero size.
	ErrInvalidMaxFileSize = errors.New("mining.max_file_size must be a positive size")
	// ErrInvalidCacheEntries indicates a negative parse cache size.
	ErrInvalidCacheEntries = errors.New("mining.parse_cache_entries must be non-negative")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("logging.level is not a known level")
	// ErrInvalidSampleRatio indicates a ratio outside [0, 1].
	ErrInvalidSampleRatio = errors.New("observability.sample_ratio must be between 0 and 1")
)

// Config is the complete refmine configuration.
type Config struct {
	Thresholds    similarity.Thresholds `mapstructure:"thresholds"`
	Mining        MiningConfig          `mapstructure:"mining"`
	Logging       LoggingConfig         `mapstructure:"logging"`
	Observability ObservabilityConfig   `mapstructure:"observability"`
	Output        OutputConfig          `mapstructure:"output"`
}

// MiningConfig controls history walks.
type MiningConfig struct {
	// Workers is the number of parallel diff workers; 0 selects the CPU count.
	Workers       int           `mapstructure:"workers"`
	CommitTimeout time.Duration `mapstructure:"commit_timeout"`
	FirstParent   bool          `mapstructure:"first_parent"`
	// MaxFileSize is a humanized size such as "1MiB".
	MaxFileSize       string   `mapstructure:"max_file_size"`
	ParseCacheEntries int      `mapstructure:"parse_cache_entries"`
	Languages         []string `mapstructure:"languages"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// ObservabilityConfig controls tracing and metrics export.
type ObservabilityConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	// MetricsAddr enables the Prometheus endpoint when set, e.g. ":9090".
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format   string `mapstructure:"format"`
	Evidence bool   `mapstructure:"evidence"`
}

// MaxFileSizeBytes returns the parsed mining.max_file_size.
func (c *Config) MaxFileSizeBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.Mining.MaxFileSize)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxFileSize, c.Mining.MaxFileSize)
	}

	return int64(min(n, math.MaxInt64)), nil
}

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	if err := c.validateMining(); err != nil {
		return err
	}

	if _, err := observability.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Observability.SampleRatio)
	}

	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}

	return nil
}

func (c *Config) validateMining() error {
	if c.Mining.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.Mining.CommitTimeout < 0 {
		return ErrInvalidCommitTimeout
	}

	if c.Mining.ParseCacheEntries < 0 {
		return ErrInvalidCacheEntries
	}

	_, err := c.MaxFileSizeBytes()

	return err
}
