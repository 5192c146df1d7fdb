package helper

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/webhookx-io/eventsvc/app"
	"github.com/webhookx-io/eventsvc/config"
	"github.com/webhookx-io/eventsvc/config/modules"
	"github.com/webhookx-io/eventsvc/db"
	"github.com/webhookx-io/eventsvc/db/entities"
	"github.com/webhookx-io/eventsvc/service"
	"go.uber.org/zap"
)

const LogFile = "eventsvc.log"

var (
	workdir     string
	defaultEnvs map[string]string
)

func init() {
	var err error
	workdir, err = os.MkdirTemp("", "eventsvc-test-")
	if err != nil {
		panic(err)
	}
	defaultEnvs = map[string]string{
		"EVENTSVC_LOG_LEVEL":          "debug",
		"EVENTSVC_LOG_FORMAT":         "text",
		"EVENTSVC_LOG_FILE":           LogFile,
		"EVENTSVC_ACCESS_LOG_FILE":    LogFile,
		"EVENTSVC_ACCESS_LOG_COLORED": "false",
		"EVENTSVC_DATABASE_DRIVER":    "sqlite3",
		"EVENTSVC_DATABASE_FILE":      filepath.Join(workdir, "eventsvc.db"),
		"EVENTSVC_UPLOADS_DIR":        filepath.Join(workdir, "uploads"),
		"EVENTSVC_API_LISTEN":         "127.0.0.1:3000",
		"EVENTSVC_STATUS_LISTEN":      "127.0.0.1:9602",
	}
	// variables set by the caller (e.g. a postgres DSN in CI) win
	for name, value := range defaultEnvs {
		if _, ok := os.LookupEnv(name); !ok {
			if err := os.Setenv(name, value); err != nil {
				panic(err)
			}
		}
	}
}

// UploadsDir is where started applications store attachments.
func UploadsDir() string {
	return os.Getenv("EVENTSVC_UPLOADS_DIR")
}

// setenv applies envs and returns a func restoring the previous values.
func setenv(envs map[string]string) (restore func()) {
	previous := make(map[string]*string, len(envs))
	for name, value := range envs {
		if old, ok := os.LookupEnv(name); ok {
			previous[name] = &old
		} else {
			previous[name] = nil
		}
		if err := os.Setenv(name, value); err != nil {
			panic(err)
		}
	}
	return func() {
		for name, old := range previous {
			if old == nil {
				_ = os.Unsetenv(name)
			} else {
				_ = os.Setenv(name, *old)
			}
		}
	}
}

// Config loads the configuration with envs applied on top of the
// environment. The environment is restored once loaded.
func Config(envs map[string]string) (*config.Config, error) {
	defer setenv(envs)()

	cfg, err := config.Init()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Start starts eventsvc with given environment variables
func Start(envs map[string]string) (*app.Application, error) {
	cfg, err := Config(envs)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.Log.File); err == nil {
		TruncateFile(cfg.Log.File)
	}

	app, err := app.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := app.Start(); err != nil {
		return nil, err
	}

	time.Sleep(time.Millisecond * 200)
	return app, nil
}

func MustStart(envs map[string]string) *app.Application {
	app, err := Start(envs)
	if err != nil {
		panic(err)
	}
	return app
}

// Stop stops app, waiting up to 5 seconds for servers to drain.
func Stop(app *app.Application) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.Stop(ctx)
}

func APIClient() *resty.Client {
	c := resty.New()
	c.SetBaseURL("http://localhost:3000")
	return c
}

func StatusClient() *resty.Client {
	c := resty.New()
	c.SetBaseURL("http://localhost:9602")
	return c
}

// DB opens the configured store without an event bus.
func DB() *db.DB {
	cfg, err := Config(nil)
	if err != nil {
		panic(err)
	}
	db, err := db.Open(context.TODO(), cfg.Database, zap.S(), nil)
	if err != nil {
		panic(err)
	}
	return db
}

// InitDB opens the store, optionally resetting it first, and creates records
// through the service so they are normalized like API writes.
func InitDB(truncated bool, records []map[string]interface{}) (*db.DB, []*entities.Event) {
	if truncated {
		if err := ResetDB(); err != nil {
			panic(err)
		}
	}

	db := DB()
	srv := service.NewService(service.Options{DB: db})
	events := make([]*entities.Event, 0, len(records))
	for _, raw := range records {
		event, err := srv.Create(context.TODO(), raw, nil)
		if err != nil {
			panic(err)
		}
		events = append(events, event)
	}
	return db, events
}

// ResetDB drops and recreates the schema on sql drivers and empties the
// collection on MongoDB.
func ResetDB() error {
	db := DB()
	defer db.Close()

	if db.Driver == modules.DriverMongoDB {
		return db.Truncate(context.TODO())
	}
	m := db.Migrator()
	if err := m.Reset(); err != nil {
		return err
	}
	return m.Up()
}

func TruncateFile(filename string) {
	err := os.Truncate(filename, 0)
	if err != nil {
		panic("failed to truncate file: " + err.Error())
	}
}

func FileLine(filename string, n int) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for i := 1; scanner.Scan(); i++ {
		s := scanner.Text()
		if i == n {
			return s, nil
		}
	}

	return "", nil
}

func FileHasLine(filename string, regex string) (bool, error) {
	file, err := os.Open(filename)
	if err != nil {
		return false, err
	}
	defer file.Close()

	r, err := regexp.Compile(regex)
	if err != nil {
		return false, err
	}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if r.MatchString(line) {
			return true, nil
		}
	}

	return false, nil
}

// EventRecord returns a complete record body.
func EventRecord(name string, schedule interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":         "launch",
		"uid":          "18",
		"name":         name,
		"tagline":      "A night to remember",
		"schedule":     schedule,
		"description":  "Release party",
		"moderator":    "Ada",
		"category":     "tech",
		"sub_category": "release",
		"rigor_rank":   "3",
		"attendees":    []interface{}{"1", "2"},
	}
}
