package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type nested struct {
	Driver      string `yaml:"driver" default:"postgres"`
	MaxPoolSize uint32 `yaml:"max_pool_size" default:"40" split_words:"true"`
	Host        string `yaml:"host"`
}

type root struct {
	Database nested `yaml:"database" envconfig:"DATABASE"`
	Debug    bool   `yaml:"debug" default:"false"`
}

func TestYAMLProvider(t *testing.T) {
	var cfg root
	content := []byte(`
database:
  driver: sqlite3
  host: db.local
debug: true
`)
	err := NewYAMLProvider("", content).Load(&cfg)
	assert.NoError(t, err)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.True(t, cfg.Debug)

	err = NewYAMLProvider("./notfound.yml", nil).Load(&cfg)
	assert.Error(t, err)

	assert.NoError(t, NewYAMLProvider("", nil).Load(&cfg))
	assert.NoError(t, NewYAMLProvider("", []byte("\n  \n")).Load(&cfg))
}

func TestYAMLProviderExpand(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	content := []byte(`
database:
  host: ${TEST_DB_HOST}
  driver: ${TEST_DB_DRIVER:-postgres}
`)
	var cfg root
	assert.NoError(t, NewYAMLProvider("", content).Load(&cfg))
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestEnvProvider(t *testing.T) {
	cfg := root{
		Database: nested{
			Driver:      "sqlite3",
			MaxPoolSize: 40,
			Host:        "from-yaml",
		},
	}
	t.Setenv("TEST_DATABASE_MAX_POOL_SIZE", "7")
	t.Setenv("TEST_DEBUG", "true")

	err := NewEnvProvider("TEST").Load(&cfg)
	assert.NoError(t, err)
	assert.Equal(t, "sqlite3", cfg.Database.Driver, "unset variables keep the loaded value")
	assert.Equal(t, "from-yaml", cfg.Database.Host)
	assert.EqualValues(t, 7, cfg.Database.MaxPoolSize)
	assert.True(t, cfg.Debug)
}

func TestEnvProviderInvalid(t *testing.T) {
	t.Setenv("TEST_DATABASE_MAX_POOL_SIZE", "x")
	err := NewEnvProvider("TEST").Load(&root{})
	assert.Error(t, err)

	assert.Error(t, NewEnvProvider("TEST").Load(root{}))
}
