package api

import (
	"net/http"

	"github.com/webhookx-io/eventsvc/config/modules"
	"github.com/webhookx-io/eventsvc/pkg/http/server"
	"github.com/webhookx-io/eventsvc/utils"
)

// NewServer returns the events API listener.
func NewServer(cfg modules.APIConfig, handler http.Handler) *server.Server {
	return server.New("api", cfg.Listen, handler, server.Options{
		ReadTimeout:  utils.DurationS(cfg.ReadTimeout),
		WriteTimeout: utils.DurationS(cfg.WriteTimeout),
		CertFile:     cfg.TLS.Cert,
		KeyFile:      cfg.TLS.Key,
	})
}
