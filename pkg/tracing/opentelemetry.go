package tracing

import (
	"context"
	"fmt"
	"net/url"

	"github.com/webhookx-io/eventsvc"
	"github.com/webhookx-io/eventsvc/config/modules"
	"go.opentelemetry.io/contrib/propagators/autoprop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc/encoding/gzip"
)

const instrumentationName = "github.com/webhookx-io/eventsvc"

// collector splits an OTLP endpoint. Bare host:port endpoints are taken
// as plaintext.
func collector(endpoint string) (host string, path string, insecure bool, err error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		u, err = url.Parse("http://" + endpoint)
	}
	if err != nil || u.Host == "" {
		return "", "", false, fmt.Errorf("invalid collector endpoint %q", endpoint)
	}
	return u.Host, u.Path, u.Scheme != "https", nil
}

func newExporter(ctx context.Context, cfg modules.OpentelemetryTracing) (*otlptrace.Exporter, error) {
	host, path, insecure, err := collector(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	switch cfg.Protocol {
	case modules.OtlpProtocolGRPC:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(host),
			otlptracegrpc.WithCompressor(gzip.Name),
		}
		if insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	case modules.OtlpProtocolHTTP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(host),
			otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
		}
		if insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if path != "" {
			opts = append(opts, otlptracehttp.WithURLPath(path))
		}
		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	}
	return nil, fmt.Errorf("invalid protocol: %s", cfg.Protocol)
}

// newProvider builds the tracer provider and installs it, together with
// the propagators named by OTEL_PROPAGATORS, as the otel globals.
func newProvider(cfg *modules.TracingConfig) (*sdktrace.TracerProvider, error) {
	ctx := context.Background()
	exporter, err := newExporter(ctx, cfg.Opentelemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to setup exporter: %w", err)
	}

	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes)+2)
	attrs = append(attrs,
		semconv.ServiceNameKey.String("eventsvc"),
		semconv.ServiceVersionKey.String(eventsvc.VERSION),
	)
	for k, v := range cfg.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...), resource.WithFromEnv())
	if err != nil {
		return nil, fmt.Errorf("failed to build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRate))),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(autoprop.NewTextMapPropagator())
	return tp, nil
}
