package modules

import "errors"

type EventsConfig struct {
	BaseConfig
	Lock LockConfig `yaml:"lock" json:"lock"`
}

// LockConfig serializes the duplicate check and the write that follows it
// across nodes. It requires redis.
type LockConfig struct {
	Enabled bool  `yaml:"enabled" json:"enabled" default:"false"`
	TTL     int64 `yaml:"ttl" json:"ttl" default:"5"`
	Tries   int   `yaml:"tries" json:"tries" default:"32"`
}

func (cfg EventsConfig) Validate() error {
	if cfg.Lock.TTL <= 0 {
		return errors.New("lock.ttl must be > 0")
	}
	if cfg.Lock.Tries <= 0 {
		return errors.New("lock.tries must be > 0")
	}
	return nil
}
