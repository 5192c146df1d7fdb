package modules

import "github.com/webhookx-io/eventsvc/config/types"

var _ types.Config = BaseConfig{}

// BaseConfig is embedded by sections that need no checks or post-processing.
type BaseConfig struct{}

func (BaseConfig) PostProcess() error { return nil }

func (BaseConfig) Validate() error { return nil }
