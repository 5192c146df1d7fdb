package modules

import (
	"fmt"

	"github.com/webhookx-io/eventsvc/config/types"
)

type Export string

const (
	ExportOpenTelemetry Export = "opentelemetry"
)

// MetricsConfig is off unless at least one export is listed.
type MetricsConfig struct {
	BaseConfig
	Attributes    types.Map            `yaml:"attributes" json:"attributes"`
	Exports       []Export             `yaml:"exports" json:"exports"`
	PushInterval  uint32               `yaml:"push_interval" json:"push_interval" default:"10" split_words:"true"`
	Opentelemetry OpentelemetryMetrics `yaml:"opentelemetry" json:"opentelemetry"`
}

func (cfg *MetricsConfig) Enabled() bool {
	return len(cfg.Exports) > 0
}

func (cfg *MetricsConfig) Validate() error {
	if err := cfg.Opentelemetry.Validate(); err != nil {
		return err
	}
	for _, export := range cfg.Exports {
		if export != ExportOpenTelemetry {
			return fmt.Errorf("invalid export: %s", export)
		}
	}
	if cfg.PushInterval < 1 || cfg.PushInterval > 60 {
		return fmt.Errorf("push_interval must be in the range [1, 60]")
	}
	return nil
}

type OpentelemetryMetrics struct {
	Protocol OtlpProtocol `yaml:"protocol" json:"protocol" default:"http/protobuf"`
	Endpoint string       `yaml:"endpoint" json:"endpoint" default:"http://127.0.0.1:4318/v1/metrics"`
}

func (cfg OpentelemetryMetrics) Validate() error {
	return cfg.Protocol.Validate()
}
