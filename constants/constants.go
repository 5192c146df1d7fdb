package constants

import (
	"github.com/webhookx-io/eventsvc"
)

type Header struct {
	Name  string
	Value string
}

var (
	HeaderRequestId        = "X-Request-Id"
	DefaultResponseHeaders = []Header{
		{Name: "Server", Value: "eventsvc/" + eventsvc.VERSION},
	}
)

type CacheKey struct {
	Name string
}

func (c CacheKey) Build(id string) string {
	return "eventsvc:" + c.Name + ":" + id
}

var (
	EventCacheKey = CacheKey{Name: "events"}
)

const (
	EventLockPrefix    = "eventsvc:lock:events:"
	RateLimitKeyPrefix = "eventsvc:ratelimit:"
)
