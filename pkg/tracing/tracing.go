package tracing

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/webhookx-io/eventsvc/config/modules"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

var current atomic.Pointer[Tracer]

type Tracer struct {
	TracerProvider   trace.TracerProvider
	instrumentations []string
}

// New sets up the OpenTelemetry pipeline. It returns nil when no
// instrumentation is enabled.
func New(conf *modules.TracingConfig) (*Tracer, error) {
	if !conf.Enabled() {
		return nil, nil
	}

	tp, err := newProvider(conf)
	if err != nil {
		return nil, err
	}

	tracer := &Tracer{
		TracerProvider:   tp,
		instrumentations: conf.Instrumentations,
	}
	current.Store(tracer)
	return tracer, nil
}

func GetTracer() *Tracer {
	return current.Load()
}

// Enabled reports whether the named instrumentation is on.
func Enabled(name string) bool {
	tracer := current.Load()
	if tracer == nil {
		return false
	}
	return slices.Contains(tracer.instrumentations, modules.InstrumentationAll) ||
		slices.Contains(tracer.instrumentations, name)
}

func Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, spanName, opts...)
}

func (t *Tracer) Stop(ctx context.Context) error {
	if t == nil {
		return nil
	}
	current.CompareAndSwap(t, nil)
	if tp, ok := t.TracerProvider.(*sdktrace.TracerProvider); ok {
		return tp.Shutdown(ctx)
	}
	return nil
}
