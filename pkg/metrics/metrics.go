package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/webhookx-io/eventsvc/config/modules"
	"github.com/webhookx-io/eventsvc/pkg/schedule"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

type Metrics struct {
	Enabled  bool
	Interval time.Duration

	provider  *sdkmetric.MeterProvider
	scheduler *schedule.Scheduler

	// runtime metrics

	RuntimeGoroutine   metrics.Gauge
	RuntimeAlloc       metrics.Gauge
	RuntimeSys         metrics.Gauge
	RuntimeHeapObjects metrics.Gauge
	RuntimeGC          metrics.Gauge

	// api metrics

	RequestCounter           metrics.Counter
	RequestDurationHistogram metrics.Histogram

	// event metrics

	EventWriteCounter    metrics.Counter
	EventConflictCounter metrics.Counter

	// cache metrics

	CacheHitCounter  metrics.Counter
	CacheMissCounter metrics.Counter
}

// NewDiscard returns Metrics whose instruments record nothing.
func NewDiscard() *Metrics {
	return &Metrics{
		RuntimeGoroutine:         discard.NewGauge(),
		RuntimeAlloc:             discard.NewGauge(),
		RuntimeSys:               discard.NewGauge(),
		RuntimeHeapObjects:       discard.NewGauge(),
		RuntimeGC:                discard.NewGauge(),
		RequestCounter:           discard.NewCounter(),
		RequestDurationHistogram: discard.NewHistogram(),
		EventWriteCounter:        discard.NewCounter(),
		EventConflictCounter:     discard.NewCounter(),
		CacheHitCounter:          discard.NewCounter(),
		CacheMissCounter:         discard.NewCounter(),
	}
}

func New(cfg modules.MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled() {
		return NewDiscard(), nil
	}

	interval := time.Second * time.Duration(cfg.PushInterval)
	exporter, err := newExporter(context.Background(), cfg.Opentelemetry)
	if err != nil {
		return nil, err
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))
	m, err := NewWithReader(cfg.Attributes, reader, interval)
	if err != nil {
		return nil, err
	}
	zap.S().Infof("enabled metric exports: %v", cfg.Exports)
	return m, nil
}

// NewWithReader builds Metrics that are read through reader, and registers
// its provider as the global meter provider.
func NewWithReader(attributes map[string]string, reader sdkmetric.Reader, interval time.Duration) (*Metrics, error) {
	res, err := newResource(context.Background(), attributes)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(provider)

	m := &Metrics{
		Enabled:   true,
		Interval:  interval,
		provider:  provider,
		scheduler: schedule.NewScheduler(),
	}
	m.instrument(provider)

	err = m.scheduler.AddTask(&schedule.Task{
		Name:     "metrics.runtime",
		Interval: interval,
		Do:       m.CollectRuntimeStats,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) Name() string {
	return "metrics"
}

func (m *Metrics) Start() error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Start()
}

// Stop flushes pending data points before shutting the provider down.
func (m *Metrics) Stop(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	if err := m.scheduler.Stop(ctx); err != nil {
		return err
	}
	return m.provider.Shutdown(ctx)
}

func (m *Metrics) CollectRuntimeStats() {
	m.RuntimeGoroutine.Set(float64(runtime.NumGoroutine()))

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	m.RuntimeAlloc.Set(float64(stats.Alloc))
	m.RuntimeSys.Set(float64(stats.Sys))
	m.RuntimeHeapObjects.Set(float64(stats.HeapObjects))
	m.RuntimeGC.Set(float64(stats.NumGC))
}
