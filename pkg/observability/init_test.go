package observability_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/refmine/pkg/observability"
)

func TestInitNoopWithoutExporters(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.LogOutput = io.Discard

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)
	assert.Nil(t, providers.MetricsHandler)

	_, span := providers.Tracer.Start(context.Background(), "mine")
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitPrometheusServesMiningMetrics(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.Prometheus = true
	cfg.LogOutput = io.Discard

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })
	require.NotNil(t, providers.MetricsHandler)

	metrics, err := observability.NewMetrics(providers.Meter)
	require.NoError(t, err)

	metrics.RecordCommit(context.Background(), observability.StatusOK, 0, map[string]int{"RENAME": 2})

	rec := httptest.NewRecorder()
	providers.MetricsHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "refmine_mining_commits")
	assert.Contains(t, rec.Body.String(), `type="RENAME"`)
}

func TestBuildResourceIncludesAppMode(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.Mode = observability.ModeMine

	res, err := observability.ProbeBuildResource(cfg)
	require.NoError(t, err)

	found := false

	for _, attr := range res.Attributes() {
		if string(attr.Key) == "app.mode" {
			assert.Equal(t, "mine", attr.Value.AsString())

			found = true
		}
	}

	assert.True(t, found, "app.mode attribute not found in resource")
}

func TestSamplerSelection(t *testing.T) {
	tests := []struct {
		sampler string
		arg     string
		debug   bool
		want    bool
	}{
		{"always_on", "", false, true},
		{"always_off", "", false, false},
		{"traceidratio", "1.0", false, true},
		{"parentbased_always_off", "", false, false},
		{"always_off", "", true, true},
		{"", "", false, true},
	}

	for _, tt := range tests {
		t.Setenv("OTEL_TRACES_SAMPLER", tt.sampler)
		t.Setenv("OTEL_TRACES_SAMPLER_ARG", tt.arg)

		cfg := observability.DefaultConfig()
		cfg.DebugTrace = tt.debug

		assert.Equal(t, tt.want, observability.ProbeSamplerSpan(cfg), tt.sampler)
	}
}
