package status

import "github.com/webhookx-io/eventsvc/status/health"

type HealthResponse struct {
	Status     health.Status            `json:"status"`
	Components map[string]health.Result `json:"components"`
}

type StatusResponse struct {
	UpTime   string                 `json:"uptime"`
	Version  string                 `json:"version"`
	Runtime  RuntimeStats           `json:"runtime"`
	Memory   MemoryStats            `json:"memory"`
	Database map[string]interface{} `json:"database"`
}

type MemoryStats struct {
	Alloc       string `json:"alloc"`
	Sys         string `json:"sys"`
	HeapAlloc   string `json:"heap_alloc"`
	HeapObjects int64  `json:"heap_objects"`
	GC          int64  `json:"gc"`
}

type RuntimeStats struct {
	Go         string `json:"go"`
	Goroutines int    `json:"goroutines"`
}

func BytesToMiB(bytes uint64) float64 {
	return float64(bytes) / 1024 / 1024
}
