package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/webhookx-io/eventsvc/pkg/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

func NewMetricsMiddleware(metrics *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{
		metrics: metrics,
	}
}

// Handle counts requests by method and response status and observes their
// latency in seconds.
func (m *MetricsMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		labels := []string{"method", r.Method, "status", strconv.Itoa(rec.status)}
		m.metrics.RequestCounter.With(labels...).Add(1)
		m.metrics.RequestDurationHistogram.With(labels...).Observe(time.Since(start).Seconds())
	})
}
