package modules

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/webhookx-io/eventsvc/utils"
)

type UploadsConfig struct {
	BaseConfig
	Dir     string      `yaml:"dir" json:"dir" default:"uploads" validate:"required"`
	MaxSize int64       `yaml:"max_size" json:"max_size" default:"10485760" split_words:"true" validate:"gt=0"`
	Sweep   SweepConfig `yaml:"sweep" json:"sweep"`
}

// SweepConfig schedules removal of uploaded files that no record references.
type SweepConfig struct {
	Schedule string `yaml:"schedule" json:"schedule"`
	MinAge   int64  `yaml:"min_age" json:"min_age" default:"3600" split_words:"true" validate:"gte=0"`
}

func (cfg SweepConfig) Enabled() bool {
	return cfg.Schedule != ""
}

func (cfg UploadsConfig) Validate() error {
	if err := utils.Validate(cfg); err != nil {
		return err
	}
	if cfg.Sweep.Enabled() {
		if _, err := cron.ParseStandard(cfg.Sweep.Schedule); err != nil {
			return fmt.Errorf("invalid sweep schedule '%s': %s", cfg.Sweep.Schedule, err)
		}
	}
	return nil
}
