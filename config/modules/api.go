package modules

import "github.com/webhookx-io/eventsvc/utils"

type APIConfig struct {
	BaseConfig
	Listen       string          `yaml:"listen" json:"listen" default:"0.0.0.0:3000"`
	ReadTimeout  int64           `yaml:"read_timeout" json:"read_timeout" default:"10" split_words:"true" validate:"gte=0"`
	WriteTimeout int64           `yaml:"write_timeout" json:"write_timeout" default:"60" split_words:"true" validate:"gte=0"`
	TLS          TLS             `yaml:"tls" json:"tls"`
	Cache        CacheConfig     `yaml:"cache" json:"cache"`
	RateLimit    RateLimitConfig `yaml:"rate_limit" json:"rate_limit" split_words:"true"`
}

type TLS struct {
	Cert string `yaml:"cert" json:"cert"`
	Key  string `yaml:"key" json:"key"`
}

func (cfg TLS) Enabled() bool {
	return cfg.Cert != "" && cfg.Key != ""
}

type CacheConfig struct {
	Enabled bool  `yaml:"enabled" json:"enabled" default:"true"`
	L1Size  int   `yaml:"l1_size" json:"l1_size" default:"1000" split_words:"true" validate:"gt=0"`
	L1TTL   int64 `yaml:"l1_ttl" json:"l1_ttl" default:"10" split_words:"true" validate:"gt=0"`
	L2TTL   int64 `yaml:"l2_ttl" json:"l2_ttl" default:"60" split_words:"true" validate:"gt=0"`
}

// RateLimitConfig limits write requests per client address.
type RateLimitConfig struct {
	Enabled bool  `yaml:"enabled" json:"enabled" default:"false"`
	Quota   int   `yaml:"quota" json:"quota" default:"60" validate:"gt=0"`
	Period  int64 `yaml:"period" json:"period" default:"60" validate:"gt=0"`
}

func (cfg APIConfig) Validate() error {
	if err := validateListen(cfg.Listen); err != nil {
		return err
	}
	return utils.Validate(cfg)
}

func (cfg APIConfig) IsEnabled() bool { return listening(cfg.Listen) }

func (cfg APIConfig) URL() string { return listenURL(cfg.Listen, cfg.TLS.Enabled()) }
