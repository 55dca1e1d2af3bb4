package tracing

import (
	"os"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer = otel.Tracer("nutrition-trends-backend")

// EndSpanWithErrCheck marks the span as failed when err is set, then ends it.
// Meant for deferred closures over a named error return.
func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
	span.End()
}

// HoneycombSetup configures the global otel provider to export to Honeycomb and
// hooks the redis client into it. A disabled setup returns a no-op shutdown.
// The API key is read from HONEYCOMB_API_KEY.
func HoneycombSetup(enabled bool, serviceName string, rdb *redis.Client) (func(), error) {
	if !enabled {
		return func() {}, nil
	}

	if os.Getenv("OTEL_SERVICE_NAME") == "" {
		if err := os.Setenv("OTEL_SERVICE_NAME", serviceName); err != nil {
			log.Warnf("set OTEL_SERVICE_NAME: %s", err)
		}
	}

	if rdb != nil {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	bsp := honeycomb.NewBaggageSpanProcessor()
	return otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithSpanProcessor(bsp),
	)
}
