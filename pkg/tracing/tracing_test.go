package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/eventsvc/config/modules"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDisabled(t *testing.T) {
	tracer, err := New(&modules.TracingConfig{})
	assert.NoError(t, err)
	assert.Nil(t, tracer)
	assert.False(t, Enabled("dao"))
	assert.NoError(t, tracer.Stop(context.TODO()))

	_, span := Start(context.TODO(), "noop")
	span.End()
}

func TestEnabled(t *testing.T) {
	tracer, err := New(&modules.TracingConfig{
		Instrumentations: []string{"dao"},
		SamplingRate:     1,
		Attributes:       map[string]string{"env": "test"},
		Opentelemetry: modules.OpentelemetryTracing{
			Protocol: modules.OtlpProtocolHTTP,
			Endpoint: "http://127.0.0.1:4318/v1/traces",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, tracer)
	defer tracer.Stop(context.TODO())

	assert.True(t, Enabled("dao"))
	assert.False(t, Enabled("request"))
	assert.Same(t, tracer, GetTracer())

	exporter := tracetest.NewInMemoryExporter()
	tp := tracer.TracerProvider.(*sdktrace.TracerProvider)
	tp.RegisterSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter))

	_, span := Start(context.TODO(), "dao.events.get")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "dao.events.get", spans[0].Name)
	found := false
	for _, attr := range spans[0].Resource.Attributes() {
		if string(attr.Key) == "env" && attr.Value.AsString() == "test" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCollector(t *testing.T) {
	host, path, insecure, err := collector("https://otel.example.com/v1/traces")
	require.NoError(t, err)
	assert.Equal(t, "otel.example.com", host)
	assert.Equal(t, "/v1/traces", path)
	assert.False(t, insecure)

	host, path, insecure, err = collector("127.0.0.1:4317")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4317", host)
	assert.Empty(t, path)
	assert.True(t, insecure)
}
