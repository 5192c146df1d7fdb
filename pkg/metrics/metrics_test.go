package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/eventsvc/config/modules"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader sdkmetric.Reader) map[string]metricdata.Aggregation {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.TODO(), &rm))
	data := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			data[m.Name] = m.Data
		}
	}
	return data
}

func TestLabelValues(t *testing.T) {
	lvs := LabelValues{"a", "1"}
	assert.Equal(t, LabelValues{"a", "1", "b", "2"}, lvs.With("b", "2"))
	assert.Equal(t, LabelValues{"a", "1", "b", "unknown"}, lvs.With("b"))
	assert.Equal(t, LabelValues{"a", "1"}, lvs)
}

func TestDisabled(t *testing.T) {
	m, err := New(modules.MetricsConfig{})
	require.NoError(t, err)
	assert.False(t, m.Enabled)
	assert.NoError(t, m.Start())
	assert.NoError(t, m.Stop(context.TODO()))

	m.RequestCounter.With("method", "GET").Add(1)
	m.RequestDurationHistogram.Observe(0.1)
	m.CollectRuntimeStats()
}

func TestNewInvalidProtocol(t *testing.T) {
	_, err := New(modules.MetricsConfig{
		Exports:      []modules.Export{modules.ExportOpenTelemetry},
		PushInterval: 1,
		Opentelemetry: modules.OpentelemetryMetrics{
			Protocol: "udp",
		},
	})
	assert.EqualError(t, err, "invalid protocol: udp")
}

func TestNewExporters(t *testing.T) {
	tests := []struct {
		protocol modules.OtlpProtocol
		endpoint string
	}{
		{modules.OtlpProtocolHTTP, "http://127.0.0.1:4318/v1/metrics"},
		{modules.OtlpProtocolGRPC, "127.0.0.1:4317"},
		{modules.OtlpProtocolGRPC, "http://127.0.0.1:4317"},
	}
	for _, test := range tests {
		t.Run(string(test.protocol)+" "+test.endpoint, func(t *testing.T) {
			m, err := New(modules.MetricsConfig{
				Exports:      []modules.Export{modules.ExportOpenTelemetry},
				PushInterval: 1,
				Opentelemetry: modules.OpentelemetryMetrics{
					Protocol: test.protocol,
					Endpoint: test.endpoint,
				},
			})
			require.NoError(t, err)
			assert.True(t, m.Enabled)
			assert.Equal(t, "metrics", m.Name())
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_ = m.Stop(ctx)
		})
	}
}

func TestInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := NewWithReader(map[string]string{"env": "test"}, reader, 0)
	require.NoError(t, err)
	defer m.Stop(context.TODO())

	m.EventWriteCounter.With("op", "create").Add(1)
	m.EventWriteCounter.With("op", "create").Add(1)
	m.EventWriteCounter.With("op", "delete").Add(1)
	m.EventConflictCounter.Add(1)
	m.CacheHitCounter.With("level", "l1").Add(1)
	m.CacheMissCounter.Add(2)
	m.RequestDurationHistogram.With("method", "GET", "status", "200").Observe(0.02)

	data := collect(t, reader)

	writes := data["eventsvc.event.writes"].(metricdata.Sum[float64])
	byOp := make(map[string]float64)
	for _, dp := range writes.DataPoints {
		op, _ := dp.Attributes.Value("op")
		byOp[op.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]float64{"create": 2, "delete": 1}, byOp)

	conflicts := data["eventsvc.event.conflicts"].(metricdata.Sum[float64])
	require.Len(t, conflicts.DataPoints, 1)
	assert.Equal(t, float64(1), conflicts.DataPoints[0].Value)

	hits := data["eventsvc.cache.hits"].(metricdata.Sum[float64])
	require.Len(t, hits.DataPoints, 1)
	level, _ := hits.DataPoints[0].Attributes.Value("level")
	assert.Equal(t, "l1", level.AsString())

	misses := data["eventsvc.cache.misses"].(metricdata.Sum[float64])
	require.Len(t, misses.DataPoints, 1)
	assert.Equal(t, float64(2), misses.DataPoints[0].Value)

	latency := data["eventsvc.request.duration"].(metricdata.Histogram[float64])
	require.Len(t, latency.DataPoints, 1)
	assert.EqualValues(t, 1, latency.DataPoints[0].Count)
	assert.InDelta(t, 0.02, latency.DataPoints[0].Sum, 1e-9)
}

func TestCollectRuntimeStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := NewWithReader(nil, reader, 0)
	require.NoError(t, err)
	defer m.Stop(context.TODO())

	m.CollectRuntimeStats()

	data := collect(t, reader)
	for _, name := range []string{
		"eventsvc.runtime.num_goroutine",
		"eventsvc.runtime.alloc_bytes",
		"eventsvc.runtime.sys_bytes",
		"eventsvc.runtime.heap_objects",
		"eventsvc.runtime.num_gc",
	} {
		gauge, ok := data[name].(metricdata.Gauge[float64])
		require.True(t, ok, name)
		require.Len(t, gauge.DataPoints, 1, name)
	}
	goroutines := data["eventsvc.runtime.num_goroutine"].(metricdata.Gauge[float64])
	assert.Greater(t, goroutines.DataPoints[0].Value, float64(0))
}
