// Package loglimiter keeps a repeating failure from flooding the log.
package loglimiter

import (
	"sync"
	"time"
)

// Limiter allows one log line per key within window.
type Limiter struct {
	mux    sync.Mutex
	window time.Duration
	logs   map[string]time.Time
}

func NewLimiter(window time.Duration) *Limiter {
	return &Limiter{
		window: window,
		logs:   make(map[string]time.Time),
	}
}

// Allow reports whether key may be logged now.
func (l *Limiter) Allow(key string) bool {
	l.mux.Lock()
	defer l.mux.Unlock()

	now := time.Now()
	if last, ok := l.logs[key]; ok && now.Sub(last) <= l.window {
		return false
	}
	l.logs[key] = now
	return true
}
