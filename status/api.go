package status

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/webhookx-io/eventsvc"
	"github.com/webhookx-io/eventsvc/config/modules"
	"github.com/webhookx-io/eventsvc/pkg/accesslog"
	"github.com/webhookx-io/eventsvc/pkg/http/middlewares"
	"github.com/webhookx-io/eventsvc/pkg/http/response"
	"github.com/webhookx-io/eventsvc/pkg/tracing"
	"github.com/webhookx-io/eventsvc/pkg/tracing/instrumentations"
	"github.com/webhookx-io/eventsvc/status/health"
)

type API struct {
	startAt      time.Time
	accessLogger accesslog.AccessLogger
	indicators   []*health.Indicator
	stats        func() map[string]interface{}
}

func (api *API) Index(w http.ResponseWriter, r *http.Request) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	resp := StatusResponse{
		UpTime:  time.Since(api.startAt).Round(time.Second).String(),
		Version: eventsvc.VERSION,
		Runtime: RuntimeStats{
			Go:         runtime.Version(),
			Goroutines: runtime.NumGoroutine(),
		},
		Memory: MemoryStats{
			Alloc:       fmt.Sprintf("%.2f MiB", BytesToMiB(stats.Alloc)),
			Sys:         fmt.Sprintf("%.2f MiB", BytesToMiB(stats.Sys)),
			HeapAlloc:   fmt.Sprintf("%.2f MiB", BytesToMiB(stats.HeapAlloc)),
			HeapObjects: int64(stats.HeapObjects),
			GC:          int64(stats.NumGC),
		},
	}
	if api.stats != nil {
		resp.Database = api.stats()
	}

	response.JSON(w, http.StatusOK, resp)
}

func (api *API) Health(w http.ResponseWriter, r *http.Request) {
	status, components := health.Run(api.indicators)
	resp := HealthResponse{
		Status:     status,
		Components: components,
	}

	code := http.StatusOK
	if status != health.StatusUp {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, code, resp)
}

func (api *API) Handler() http.Handler {
	r := mux.NewRouter()

	if api.accessLogger != nil {
		r.Use(accesslog.NewMiddleware(api.accessLogger))
	}
	if tracing.Enabled(modules.InstrumentationRequest) {
		r.Use(instrumentations.NewMuxMiddleware("api.status"))
	}
	r.Use(middlewares.NewRecovery(nil).Handle)

	r.HandleFunc("/", api.Index).Methods("GET")
	r.HandleFunc("/health", api.Health).Methods("GET")

	return r
}
