package modules

import (
	"fmt"
	"net/url"

	"github.com/webhookx-io/eventsvc/config/types"
)

type DatabaseDriver string

const (
	DriverPostgres DatabaseDriver = "postgres"
	DriverSQLite   DatabaseDriver = "sqlite3"
	DriverMongoDB  DatabaseDriver = "mongodb"
)

type DatabaseConfig struct {
	BaseConfig
	Driver      DatabaseDriver `yaml:"driver" json:"driver" default:"postgres"`
	DSN         types.Password `yaml:"dsn" json:"dsn"`
	Host        string         `yaml:"host" json:"host" default:"localhost"`
	Port        uint32         `yaml:"port" json:"port"`
	Username    string         `yaml:"username" json:"username" default:"eventsvc"`
	Password    types.Password `yaml:"password" json:"password" default:""`
	Database    string         `yaml:"database" json:"database" default:"eventsvc"`
	Parameters  string         `yaml:"parameters" json:"parameters"`
	File        string         `yaml:"file" json:"file" default:"eventsvc.db"`
	MaxPoolSize uint32         `yaml:"max_pool_size" json:"max_pool_size" default:"40" split_words:"true"`
	MaxLifetime uint32         `yaml:"max_life_time" json:"max_life_time" default:"1800" split_words:"true"`
}

func (cfg DatabaseConfig) IsSQL() bool {
	return cfg.Driver == DriverPostgres || cfg.Driver == DriverSQLite
}

func (cfg DatabaseConfig) port() uint32 {
	if cfg.Port != 0 {
		return cfg.Port
	}
	switch cfg.Driver {
	case DriverMongoDB:
		return 27017
	default:
		return 5432
	}
}

func (cfg DatabaseConfig) userinfo() string {
	if cfg.Username == "" {
		return ""
	}
	if cfg.Password == "" {
		return url.User(cfg.Username).String() + "@"
	}
	return url.UserPassword(cfg.Username, string(cfg.Password)).String() + "@"
}

// GetDSN returns the connection string for the configured driver.
// An explicit dsn wins over the individual connection fields.
func (cfg DatabaseConfig) GetDSN() string {
	if cfg.DSN != "" {
		return string(cfg.DSN)
	}

	var dsn string
	params := cfg.Parameters
	switch cfg.Driver {
	case DriverSQLite:
		dsn = "file:" + cfg.File
		if params == "" {
			params = "_busy_timeout=5000&_journal_mode=WAL"
		}
	case DriverMongoDB:
		dsn = fmt.Sprintf("mongodb://%s%s:%d/%s", cfg.userinfo(), cfg.Host, cfg.port(), cfg.Database)
	default:
		dsn = fmt.Sprintf("postgres://%s%s:%d/%s", cfg.userinfo(), cfg.Host, cfg.port(), cfg.Database)
		if params == "" {
			params = "application_name=eventsvc&sslmode=disable&connect_timeout=10"
		}
	}
	if len(params) > 0 {
		dsn = fmt.Sprintf("%s?%s", dsn, params)
	}
	return dsn
}

func (cfg DatabaseConfig) Validate() error {
	if cfg.Port > 65535 {
		return fmt.Errorf("port must be in the range [0, 65535]")
	}
	switch cfg.Driver {
	case DriverPostgres, DriverSQLite, DriverMongoDB:
	default:
		return fmt.Errorf("invalid driver: %s", cfg.Driver)
	}
	if cfg.Driver == DriverSQLite && cfg.File == "" && cfg.DSN == "" {
		return fmt.Errorf("file is required for driver %s", cfg.Driver)
	}
	return nil
}
