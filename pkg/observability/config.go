// Package observability wires OpenTelemetry tracing, metrics and structured
// logging for refmine.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// AppMode identifies the application execution mode.
type AppMode string

const (
	// ModeCLI is a one-shot command (diff, grammar).
	ModeCLI AppMode = "cli"
	// ModeMine is a repository mining run.
	ModeMine AppMode = "mine"
)

const (
	defaultServiceName        = "refmine"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// Environment is the deployment environment (e.g. "ci", "dev").
	Environment string
	Mode        AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export.
	// Headers and TLS settings follow the standard OTEL_EXPORTER_OTLP_* variables.
	OTLPEndpoint string
	OTLPInsecure bool

	// DebugTrace forces 100% trace sampling and logs blocked span attributes.
	DebugTrace bool
	// SampleRatio is the trace sampling ratio; zero or one samples every root.
	SampleRatio float64

	// Prometheus enables the pull exporter; Providers.MetricsHandler serves it.
	Prometheus bool

	LogLevel slog.Level
	LogJSON  bool
	// LogOutput defaults to stderr.
	LogOutput io.Writer

	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(strings.TrimSpace(s)))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}

	return level, nil
}
