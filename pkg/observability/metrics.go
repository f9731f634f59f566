package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRunsTotal           = "refmine.runs.total"
	metricRunDuration         = "refmine.run.duration.seconds"
	metricCommitsTotal        = "refmine.mining.commits.total"
	metricCommitDuration      = "refmine.mining.commit.duration.seconds"
	metricCommitsInflight     = "refmine.mining.commits.inflight"
	metricRefactoringsTotal   = "refmine.refactorings.total"
	metricCacheHitsTotal      = "refmine.parse_cache.hits.total"
	metricCacheMissesTotal    = "refmine.parse_cache.misses.total"
	metricCacheEvictionsTotal = "refmine.parse_cache.evictions.total"

	attrOp     = "op"
	attrStatus = "status"
	attrType   = "type"
)

// Commit and run statuses.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusTimeout = "timeout"
	StatusSkipped = "skipped"
)

// durationBucketBoundaries covers 1ms to 600s: single commit diffs are
// usually sub-second, whole-history runs take minutes.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// Metrics holds the OTel instruments of refmine. All methods are safe on a
// nil receiver.
type Metrics struct {
	runsTotal         metric.Int64Counter
	runDuration       metric.Float64Histogram
	commitsTotal      metric.Int64Counter
	commitDuration    metric.Float64Histogram
	commitsInflight   metric.Int64UpDownCounter
	refactoringsTotal metric.Int64Counter
	cacheHits         metric.Int64Counter
	cacheMisses       metric.Int64Counter
	cacheEvictions    metric.Int64Counter
}

// CacheStats is a parse cache delta, decoupled from the cache package.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// NewMetrics creates the metric instruments from the given meter.
func NewMetrics(mt metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.runsTotal, metricRunsTotal, "Commands run by operation and status", "{run}"},
		{&m.commitsTotal, metricCommitsTotal, "Commits processed by status", "{commit}"},
		{&m.refactoringsTotal, metricRefactoringsTotal, "Refactorings detected by type", "{refactoring}"},
		{&m.cacheHits, metricCacheHitsTotal, "Parse cache hits", "{hit}"},
		{&m.cacheMisses, metricCacheMissesTotal, "Parse cache misses", "{miss}"},
		{&m.cacheEvictions, metricCacheEvictionsTotal, "Parse cache evictions", "{eviction}"},
	}

	for _, c := range counters {
		*c.dst, err = mt.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", c.name, err)
		}
	}

	m.runDuration, err = mt.Float64Histogram(metricRunDuration,
		metric.WithDescription("Command duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunDuration, err)
	}

	m.commitDuration, err = mt.Float64Histogram(metricCommitDuration,
		metric.WithDescription("Per-commit load and diff duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitDuration, err)
	}

	m.commitsInflight, err = mt.Int64UpDownCounter(metricCommitsInflight,
		metric.WithDescription("Commits currently being diffed"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitsInflight, err)
	}

	return &m, nil
}

// RecordRun records a finished command.
func (m *Metrics) RecordRun(ctx context.Context, op, status string, duration time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrOp, op), attribute.String(attrStatus, status))
	m.runsTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
}

// TrackCommit increments the in-flight gauge and returns its decrement.
func (m *Metrics) TrackCommit(ctx context.Context) func() {
	if m == nil {
		return func() {}
	}

	m.commitsInflight.Add(ctx, 1)

	return func() {
		m.commitsInflight.Add(ctx, -1)
	}
}

// RecordCommit records one processed commit and its refactorings by type.
func (m *Metrics) RecordCommit(ctx context.Context, status string, duration time.Duration, byType map[string]int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))
	m.commitsTotal.Add(ctx, 1, attrs)
	m.commitDuration.Record(ctx, duration.Seconds(), attrs)

	for t, n := range byType {
		m.refactoringsTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrType, t)))
	}
}

// RecordCache adds a parse cache delta.
func (m *Metrics) RecordCache(ctx context.Context, stats CacheStats) {
	if m == nil {
		return
	}

	m.cacheHits.Add(ctx, stats.Hits)
	m.cacheMisses.Add(ctx, stats.Misses)
	m.cacheEvictions.Add(ctx, stats.Evictions)
}
