package observability

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// scrapeAllow lists the methods a Prometheus scrape may use.
const scrapeAllow = "GET, HEAD"

// scrapeRecorder remembers what the exposition handler sent back.
type scrapeRecorder struct {
	http.ResponseWriter

	status int
	bytes  int
}

func (sr *scrapeRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}

	sr.ResponseWriter.WriteHeader(code)
}

func (sr *scrapeRecorder) Write(buf []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}

	n, err := sr.ResponseWriter.Write(buf)
	sr.bytes += n

	if err != nil {
		return n, fmt.Errorf("write exposition: %w", err)
	}

	return n, nil
}

// ScrapeHandler serves the Prometheus exposition handler on the metrics
// endpoint. Only GET and HEAD reach it; other methods get 405. Each scrape
// becomes a server span that continues the scraper's trace context, carrying
// the response status and exposition size.
func ScrapeHandler(tracer trace.Tracer, exposition http.Handler) http.Handler {
	return ScrapeHandlerWithPropagator(tracer, otel.GetTextMapPropagator(), exposition)
}

// ScrapeHandlerWithPropagator is ScrapeHandler with an explicit propagator.
func ScrapeHandlerWithPropagator(tracer trace.Tracer, prop propagation.TextMapPropagator, exposition http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			rw.Header().Set("Allow", scrapeAllow)
			http.Error(rw, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)

			return
		}

		ctx, span := tracer.Start(
			prop.Extract(req.Context(), propagation.HeaderCarrier(req.Header)),
			req.Method+" "+req.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(req.Method),
				semconv.URLPath(req.URL.Path),
			),
		)
		defer span.End()

		rec := &scrapeRecorder{ResponseWriter: rw}
		exposition.ServeHTTP(rec, req.WithContext(ctx))

		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		span.SetAttributes(
			semconv.HTTPResponseStatusCode(rec.status),
			semconv.HTTPResponseBodySize(rec.bytes),
		)

		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}
