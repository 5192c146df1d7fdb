package metrics

import (
	"context"

	"github.com/go-kit/kit/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LabelValues is a flat list of label name/value pairs.
type LabelValues []string

func (lvs LabelValues) With(labelValues ...string) LabelValues {
	if len(labelValues)%2 != 0 {
		labelValues = append(labelValues, "unknown")
	}
	merged := make(LabelValues, 0, len(lvs)+len(labelValues))
	merged = append(merged, lvs...)
	return append(merged, labelValues...)
}

func (lvs LabelValues) options() metric.MeasurementOption {
	attrs := make([]attribute.KeyValue, len(lvs)/2)
	for i := range attrs {
		attrs[i] = attribute.String(lvs[2*i], lvs[2*i+1])
	}
	return metric.WithAttributes(attrs...)
}

// Counter adapts an otel counter to the go-kit Counter interface.
type Counter struct {
	lvs LabelValues
	c   metric.Float64Counter
}

func NewCounter(meter metric.Meter, name string, desc string) *Counter {
	c, _ := meter.Float64Counter(name, metric.WithDescription(desc), metric.WithUnit("1"))
	return &Counter{c: c}
}

func (c *Counter) With(labelValues ...string) metrics.Counter {
	return &Counter{lvs: c.lvs.With(labelValues...), c: c.c}
}

func (c *Counter) Add(delta float64) {
	c.c.Add(context.Background(), delta, c.lvs.options())
}

// Gauge adapts an otel gauge to the go-kit Gauge interface. Add records
// delta as the current value; otel gauges are not cumulative.
type Gauge struct {
	lvs LabelValues
	g   metric.Float64Gauge
}

func NewGauge(meter metric.Meter, name string, desc string, unit string) *Gauge {
	g, _ := meter.Float64Gauge(name, metric.WithDescription(desc), metric.WithUnit(unit))
	return &Gauge{g: g}
}

func (g *Gauge) With(labelValues ...string) metrics.Gauge {
	return &Gauge{lvs: g.lvs.With(labelValues...), g: g.g}
}

func (g *Gauge) Set(value float64) {
	g.g.Record(context.Background(), value, g.lvs.options())
}

func (g *Gauge) Add(delta float64) {
	g.Set(delta)
}

// Histogram adapts an otel histogram to the go-kit Histogram interface.
type Histogram struct {
	lvs LabelValues
	h   metric.Float64Histogram
}

func NewHistogram(meter metric.Meter, name string, desc string, unit string) *Histogram {
	h, _ := meter.Float64Histogram(
		name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(.005, .01, .025, .05, .075, .1, .25, .5, .75, 1, 2.5, 5, 7.5, 10),
	)
	return &Histogram{h: h}
}

func (h *Histogram) With(labelValues ...string) metrics.Histogram {
	return &Histogram{lvs: h.lvs.With(labelValues...), h: h.h}
}

func (h *Histogram) Observe(value float64) {
	h.h.Record(context.Background(), value, h.lvs.options())
}
