package modules

import "fmt"

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) Valid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}

type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJson LogFormat = "json"
)

func (f LogFormat) Valid() bool {
	return f == LogFormatText || f == LogFormatJson
}

// LogConfig configures the application log.
type LogConfig struct {
	BaseConfig
	File    string    `yaml:"file" json:"file" default:"/dev/stdout"`
	Level   LogLevel  `yaml:"level" json:"level" default:"info"`
	Format  LogFormat `yaml:"format" json:"format" default:"text"`
	Colored bool      `yaml:"colored" json:"colored" default:"true"`
}

func (cfg LogConfig) Validate() error {
	if !cfg.Level.Valid() {
		return fmt.Errorf("invalid level: %s", cfg.Level)
	}
	if !cfg.Format.Valid() {
		return fmt.Errorf("invalid format: %s", cfg.Format)
	}
	return nil
}

// AccessLogConfig configures the request logs of the api and status
// listeners.
type AccessLogConfig struct {
	BaseConfig
	Enabled bool      `yaml:"enabled" json:"enabled" default:"true"`
	Format  LogFormat `yaml:"format" json:"format" default:"text"`
	Colored bool      `yaml:"colored" json:"colored" default:"true"`
	File    string    `yaml:"file" json:"file" default:"/dev/stdout"`
}

func (cfg AccessLogConfig) Validate() error {
	if !cfg.Format.Valid() {
		return fmt.Errorf("invalid format: %s", cfg.Format)
	}
	return nil
}
