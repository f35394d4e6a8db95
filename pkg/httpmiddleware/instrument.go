package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument returns a middleware that wraps the handler in otelhttp
// server spans and records a request counter and duration histogram.
func Instrument(operation string, m *app.Telemetry) Middleware {
	meter := m.MeterProvider().Meter("httpmiddleware")
	requests, _ := meter.Int64Counter("http.server.request.count")
	duration, _ := meter.Float64Histogram("http.server.duration",
		metric.WithUnit("ms"),
	)

	return func(next http.Handler) http.Handler {
		recorded := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			attrs := metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.Int("http.status_code", sw.status),
			)
			requests.Add(r.Context(), 1, attrs)
			duration.Record(r.Context(), float64(time.Since(start).Milliseconds()), attrs)
		})

		return otelhttp.NewHandler(recorded, operation,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		)
	}
}
