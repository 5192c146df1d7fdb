package metrics

import (
	"context"
	"fmt"
	"strings"

	"github.com/webhookx-io/eventsvc"
	"github.com/webhookx-io/eventsvc/config/modules"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	prefix    = "eventsvc."
	meterName = "github.com/webhookx-io/eventsvc"
)

func newExporter(ctx context.Context, cfg modules.OpentelemetryMetrics) (sdkmetric.Exporter, error) {
	switch cfg.Protocol {
	case modules.OtlpProtocolHTTP:
		return otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(cfg.Endpoint))
	case modules.OtlpProtocolGRPC:
		// bare host:port endpoints are taken as plaintext
		if strings.Contains(cfg.Endpoint, "://") {
			return otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(cfg.Endpoint))
		}
		return otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpoint(cfg.Endpoint), otlpmetricgrpc.WithInsecure())
	}
	return nil, fmt.Errorf("invalid protocol: %s", cfg.Protocol)
}

func newResource(ctx context.Context, attributes map[string]string) (*resource.Resource, error) {
	attrs := make([]attribute.KeyValue, 0, len(attributes)+2)
	attrs = append(attrs,
		semconv.ServiceNameKey.String("eventsvc"),
		semconv.ServiceVersionKey.String(eventsvc.VERSION),
	)
	for name, value := range attributes {
		attrs = append(attrs, attribute.String(name, value))
	}
	return resource.New(ctx, resource.WithAttributes(attrs...), resource.WithFromEnv())
}

// instrument creates the otel-backed instruments from provider.
func (m *Metrics) instrument(provider *sdkmetric.MeterProvider) {
	meter := provider.Meter(meterName)

	m.RuntimeGoroutine = NewGauge(meter, prefix+"runtime.num_goroutine", "", "1")
	m.RuntimeAlloc = NewGauge(meter, prefix+"runtime.alloc_bytes", "", "By")
	m.RuntimeSys = NewGauge(meter, prefix+"runtime.sys_bytes", "", "By")
	m.RuntimeHeapObjects = NewGauge(meter, prefix+"runtime.heap_objects", "", "1")
	m.RuntimeGC = NewGauge(meter, prefix+"runtime.num_gc", "", "1")

	m.RequestCounter = NewCounter(meter, prefix+"request.total", "API requests by method and status")
	m.RequestDurationHistogram = NewHistogram(meter, prefix+"request.duration", "API request latency", "s")

	m.EventWriteCounter = NewCounter(meter, prefix+"event.writes", "stored event writes by operation")
	m.EventConflictCounter = NewCounter(meter, prefix+"event.conflicts", "writes rejected as duplicates")

	m.CacheHitCounter = NewCounter(meter, prefix+"cache.hits", "cache hits by level")
	m.CacheMissCounter = NewCounter(meter, prefix+"cache.misses", "cache misses")
}
