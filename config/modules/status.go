package modules

import (
	"fmt"
	"net"

	"github.com/webhookx-io/eventsvc/utils"
)

// ListenOff disables a listener.
const ListenOff = "off"

func listening(addr string) bool {
	return addr != "" && addr != ListenOff
}

func validateListen(addr string) error {
	if !listening(addr) {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid listen '%s': %s", addr, err)
	}
	return nil
}

func listenURL(addr string, tls bool) string {
	if !listening(addr) {
		return "disabled"
	}
	return utils.ListenAddrToURL(tls, addr)
}

// StatusConfig configures the health and index listener.
type StatusConfig struct {
	BaseConfig
	Listen string `yaml:"listen" json:"listen" default:"127.0.0.1:9602"`
}

func (cfg StatusConfig) Validate() error { return validateListen(cfg.Listen) }

func (cfg StatusConfig) IsEnabled() bool { return listening(cfg.Listen) }

func (cfg StatusConfig) URL() string { return listenURL(cfg.Listen, false) }
