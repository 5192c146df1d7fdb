package config

import (
	"encoding/json"

	"github.com/creasty/defaults"
	"github.com/webhookx-io/eventsvc/config/modules"
	"github.com/webhookx-io/eventsvc/config/types"
)

var _ types.Config = &Config{}

// Config Configuration
type Config struct {
	modules.BaseConfig
	Log       modules.LogConfig       `yaml:"log" json:"log" envconfig:"LOG"`
	AccessLog modules.AccessLogConfig `yaml:"access_log" json:"access_log" envconfig:"ACCESS_LOG"`
	Database  modules.DatabaseConfig  `yaml:"database" json:"database" envconfig:"DATABASE"`
	Redis     modules.RedisConfig     `yaml:"redis" json:"redis" envconfig:"REDIS"`
	API       modules.APIConfig       `yaml:"api" json:"api" envconfig:"API"`
	Status    modules.StatusConfig    `yaml:"status" json:"status" envconfig:"STATUS"`
	Uploads   modules.UploadsConfig   `yaml:"uploads" json:"uploads" envconfig:"UPLOADS"`
	Events    modules.EventsConfig    `yaml:"events" json:"events" envconfig:"EVENTS"`
	Tracing   modules.TracingConfig   `yaml:"tracing" json:"tracing" envconfig:"TRACING"`
	Metrics   modules.MetricsConfig   `yaml:"metrics" json:"metrics" envconfig:"METRICS"`
}

func (cfg Config) String() string {
	bytes, err := json.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (cfg Config) Validate() error {
	validators := []types.Config{
		cfg.Log,
		cfg.AccessLog,
		cfg.Database,
		cfg.Redis,
		cfg.API,
		cfg.Status,
		cfg.Uploads,
		cfg.Events,
		&cfg.Tracing,
		&cfg.Metrics,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func New() *Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}
