package modules

import (
	"errors"
	"fmt"
	"slices"

	"github.com/webhookx-io/eventsvc/config/types"
)

type OtlpProtocol string

const (
	OtlpProtocolGRPC OtlpProtocol = "grpc"
	OtlpProtocolHTTP OtlpProtocol = "http/protobuf"
)

func (p OtlpProtocol) Validate() error {
	switch p {
	case OtlpProtocolGRPC, OtlpProtocolHTTP:
		return nil
	}
	return fmt.Errorf("invalid protocol: %s", p)
}

// Instrumentations that can be switched on.
const (
	InstrumentationRequest = "request"
	InstrumentationService = "service"
	InstrumentationDAO     = "dao"
	InstrumentationAll     = "@all"
)

var instrumentations = []string{
	InstrumentationRequest,
	InstrumentationService,
	InstrumentationDAO,
	InstrumentationAll,
}

// TracingConfig is off unless at least one instrumentation is listed.
type TracingConfig struct {
	BaseConfig
	Instrumentations []string             `yaml:"instrumentations" json:"instrumentations"`
	Attributes       types.Map            `yaml:"attributes" json:"attributes"`
	Opentelemetry    OpentelemetryTracing `yaml:"opentelemetry" json:"opentelemetry"`
	SamplingRate     float64              `yaml:"sampling_rate" json:"sampling_rate" default:"1.0" split_words:"true"`
}

func (cfg *TracingConfig) Enabled() bool {
	return len(cfg.Instrumentations) > 0
}

func (cfg *TracingConfig) Validate() error {
	if cfg.SamplingRate < 0 || cfg.SamplingRate > 1 {
		return errors.New("sampling_rate must be in the range [0, 1]")
	}
	if err := cfg.Opentelemetry.Validate(); err != nil {
		return err
	}
	for _, name := range cfg.Instrumentations {
		if !slices.Contains(instrumentations, name) {
			return fmt.Errorf("invalid instrumentations: %s", name)
		}
	}
	return nil
}

type OpentelemetryTracing struct {
	Protocol OtlpProtocol `yaml:"protocol" json:"protocol" default:"http/protobuf"`
	Endpoint string       `yaml:"endpoint" json:"endpoint" default:"http://127.0.0.1:4318/v1/traces"`
}

func (cfg OpentelemetryTracing) Validate() error {
	return cfg.Protocol.Validate()
}
