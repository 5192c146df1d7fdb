package status

import (
	"time"

	"github.com/webhookx-io/eventsvc/config/modules"
	"github.com/webhookx-io/eventsvc/pkg/accesslog"
	"github.com/webhookx-io/eventsvc/pkg/http/server"
	"github.com/webhookx-io/eventsvc/status/health"
)

// TestIndicators are appended to every status server. Tests use them to
// force a component down.
var TestIndicators []*health.Indicator

// Status serves the index and health endpoints.
type Status struct {
	*server.Server
}

type Options struct {
	AccessLog  accesslog.AccessLogger
	Indicators []*health.Indicator
	// Stats reports store statistics for the index page.
	Stats func() map[string]interface{}
}

func NewStatus(cfg modules.StatusConfig, opts Options) *Status {
	api := &API{
		startAt:      time.Now(),
		accessLogger: opts.AccessLog,
		indicators:   append(opts.Indicators, TestIndicators...),
		stats:        opts.Stats,
	}
	return &Status{
		Server: server.New("status", cfg.Listen, api.Handler(), server.Options{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}),
	}
}
