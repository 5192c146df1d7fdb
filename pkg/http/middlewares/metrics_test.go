package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/eventsvc/pkg/metrics"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetricsMiddleware(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := metrics.NewWithReader(nil, reader, 0)
	require.NoError(t, err)
	defer m.Stop(context.TODO())

	handler := NewMetricsMiddleware(m).Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	for _, method := range []string{http.MethodGet, http.MethodGet, http.MethodPost} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, "/api/v3/app/events", nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.TODO(), &rm))

	counts := make(map[string]float64)
	observed := uint64(0)
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			switch data := metric.Data.(type) {
			case metricdata.Sum[float64]:
				if metric.Name != "eventsvc.request.total" {
					continue
				}
				for _, dp := range data.DataPoints {
					method, _ := dp.Attributes.Value("method")
					status, _ := dp.Attributes.Value("status")
					counts[method.AsString()+" "+status.AsString()] += dp.Value
				}
			case metricdata.Histogram[float64]:
				if metric.Name != "eventsvc.request.duration" {
					continue
				}
				for _, dp := range data.DataPoints {
					observed += dp.Count
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"GET 200": 2, "POST 409": 1}, counts)
	assert.EqualValues(t, 3, observed)
}

func TestMetricsMiddlewareDiscard(t *testing.T) {
	handler := NewMetricsMiddleware(metrics.NewDiscard()).Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
