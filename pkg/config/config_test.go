package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/refmine/pkg/config"
	"github.com/Sumatoshi-tech/refmine/pkg/similarity"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".refmine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, similarity.DefaultThresholds(), cfg.Thresholds)
	assert.Equal(t, config.DefaultCommitTimeout, cfg.Mining.CommitTimeout)

	size, err := cfg.MaxFileSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), size)
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, `thresholds:
  minimum: 0.6
  extract_minimum: 0.4
mining:
  workers: 3
  commit_timeout: 30s
  first_parent: true
  max_file_size: 2MB
  languages: [java]
logging:
  level: debug
  json: true
observability:
  metrics_addr: ":9464"
output:
  format: json
  evidence: true
`))
	require.NoError(t, err)

	assert.InDelta(t, 0.6, cfg.Thresholds.Minimum, 1e-12)
	assert.InDelta(t, 0.4, cfg.Thresholds.ExtractMinimum, 1e-12)
	assert.InDelta(t, similarity.DefaultIdeal, cfg.Thresholds.Ideal, 1e-12)
	assert.Equal(t, 3, cfg.Mining.Workers)
	assert.Equal(t, 30*time.Second, cfg.Mining.CommitTimeout)
	assert.True(t, cfg.Mining.FirstParent)
	assert.Equal(t, []string{"java"}, cfg.Mining.Languages)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, ":9464", cfg.Observability.MetricsAddr)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.Evidence)

	size, err := cfg.MaxFileSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000), size)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("REFMINE_MINING_WORKERS", "7")
	t.Setenv("REFMINE_OUTPUT_FORMAT", "yaml")

	cfg, err := config.LoadConfig(writeConfig(t, "mining:\n  workers: 2\n"))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Mining.Workers)
	assert.Equal(t, "yaml", cfg.Output.Format)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"workers", "mining:\n  workers: -1\n", config.ErrInvalidWorkers},
		{"timeout", "mining:\n  commit_timeout: -5s\n", config.ErrInvalidCommitTimeout},
		{"size", "mining:\n  max_file_size: lots\n", config.ErrInvalidMaxFileSize},
		{"cache", "mining:\n  parse_cache_entries: -3\n", config.ErrInvalidCacheEntries},
		{"level", "logging:\n  level: loud\n", config.ErrInvalidLogLevel},
		{"ratio", "observability:\n  sample_ratio: 1.5\n", config.ErrInvalidSampleRatio},
		{"threshold", "thresholds:\n  minimum: 2\n", similarity.ErrThresholdRange},
		{"extract", "thresholds:\n  minimum: 0.2\n  extract_minimum: 0.3\n", similarity.ErrExtractAboveMain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err := config.LoadConfig(writeConfig(t, "output:\n  format: xml\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")
}

func TestLoadConfigMalformedFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "mining: [unterminated\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
