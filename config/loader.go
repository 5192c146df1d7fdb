package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/webhookx-io/eventsvc/config/providers"
)

const EnvPrefix = "EVENTSVC"

// Loader is configuration loader
type Loader struct {
	cfg         *Config
	envPrefix   string
	envFiles    []string
	filename    string
	fileContent []byte
}

func NewLoader(cfg *Config) *Loader {
	return &Loader{cfg: cfg}
}

func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithEnvFiles loads dotenv files into the process environment before
// environment variables are read. Missing files are ignored.
func (l *Loader) WithEnvFiles(files ...string) *Loader {
	l.envFiles = files
	return l
}

func (l *Loader) WithFilename(filename string) *Loader {
	l.filename = filename
	return l
}

func (l *Loader) WithFileContent(content []byte) *Loader {
	l.fileContent = content
	return l
}

func (l *Loader) loadEnvFiles() error {
	for _, file := range l.envFiles {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (l *Loader) Load() error {
	if err := l.loadEnvFiles(); err != nil {
		return err
	}

	err := providers.NewYAMLProvider(l.filename, l.fileContent).Load(l.cfg)
	if err != nil {
		return err
	}

	if l.envPrefix != "" {
		err = providers.NewEnvProvider(l.envPrefix).Load(l.cfg)
		if err != nil {
			return err
		}
	}

	return l.cfg.PostProcess()
}

func Load(filename string, cfg *Config) error {
	return NewLoader(cfg).
		WithEnvPrefix(EnvPrefix).
		WithEnvFiles(".env").
		WithFilename(filename).
		Load()
}

// Init returns the default configuration overridden by the environment.
func Init() (*Config, error) {
	cfg := New()
	if err := Load("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
