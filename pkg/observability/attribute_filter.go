package observability

import (
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Span attribute keys that reach the exporter: the exact key or any key under
// one of these prefixes. Author names and emails of mined commits never do.
var exportedKeys = []string{
	"refmine",
	"error",
	"http",
	"commit",
	"mining",
	"snapshot",
	"diff",
	"cache",
	"worker",
	"files",
	"refactorings",
}

func exported(key string) bool {
	for _, k := range exportedKeys {
		if key == k || strings.HasPrefix(key, k+".") || strings.HasPrefix(key, k+"_") {
			return true
		}
	}

	return false
}

// attributeFilter wraps a SpanProcessor and drops unlisted attributes from
// ended spans.
type attributeFilter struct {
	sdktrace.SpanProcessor

	logger *slog.Logger
}

// NewAttributeFilter returns a SpanProcessor that forwards spans to delegate
// with only exported attributes. A non-nil logger receives a warning for each
// dropped key.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{SpanProcessor: delegate, logger: logger}
}

// OnEnd implements sdktrace.SpanProcessor.
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.SpanProcessor.OnEnd(&filteredSpan{ReadOnlySpan: s, filter: f})
}

type filteredSpan struct {
	sdktrace.ReadOnlySpan

	filter *attributeFilter
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	all := s.ReadOnlySpan.Attributes()
	kept := make([]attribute.KeyValue, 0, len(all))

	for _, kv := range all {
		key := string(kv.Key)
		if exported(key) {
			kept = append(kept, kv)

			continue
		}

		if s.filter.logger != nil {
			s.filter.logger.Warn("attribute blocked by filter", "key", key)
		}
	}

	return kept
}
