package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"github.com/webhookx-io/eventsvc/constants"
	"github.com/webhookx-io/eventsvc/pkg/http/response"
	"github.com/webhookx-io/eventsvc/pkg/loglimiter"
	"go.uber.org/zap"
)

// RateLimit limits write requests per client address. Reads pass through.
type RateLimit struct {
	limiter    *redis_rate.Limiter
	limit      redis_rate.Limit
	logLimiter *loglimiter.Limiter
}

func NewRateLimit(client *redis.Client, quota int, period time.Duration) *RateLimit {
	return &RateLimit{
		limiter: redis_rate.NewLimiter(client),
		limit: redis_rate.Limit{
			Rate:   quota,
			Burst:  quota,
			Period: period,
		},
		logLimiter: loglimiter.NewLimiter(time.Minute),
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (m *RateLimit) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isWrite(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		res, err := m.limiter.Allow(r.Context(), constants.RateLimitKeyPrefix+clientIP(r), m.limit)
		if err != nil {
			// fail open
			if m.logLimiter.Allow("redis") {
				zap.S().Warnf("failed to check rate limit: %v", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limit.Rate))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if res.Allowed == 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter/time.Second)+1))
			response.Error(w, http.StatusTooManyRequests, "too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
