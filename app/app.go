package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/webhookx-io/eventsvc"
	"github.com/webhookx-io/eventsvc/api"
	"github.com/webhookx-io/eventsvc/config"
	"github.com/webhookx-io/eventsvc/config/modules"
	"github.com/webhookx-io/eventsvc/constants"
	"github.com/webhookx-io/eventsvc/db"
	"github.com/webhookx-io/eventsvc/eventbus"
	"github.com/webhookx-io/eventsvc/mcache"
	"github.com/webhookx-io/eventsvc/pkg/accesslog"
	"github.com/webhookx-io/eventsvc/pkg/cache"
	"github.com/webhookx-io/eventsvc/pkg/http/middlewares"
	"github.com/webhookx-io/eventsvc/pkg/log"
	"github.com/webhookx-io/eventsvc/pkg/metrics"
	"github.com/webhookx-io/eventsvc/pkg/schedule"
	"github.com/webhookx-io/eventsvc/pkg/serializer"
	"github.com/webhookx-io/eventsvc/pkg/tracing"
	"github.com/webhookx-io/eventsvc/pkg/tracing/instrumentations"
	"github.com/webhookx-io/eventsvc/pkg/upload"
	"github.com/webhookx-io/eventsvc/service"
	"github.com/webhookx-io/eventsvc/status"
	"github.com/webhookx-io/eventsvc/status/health"
	"github.com/webhookx-io/eventsvc/utils"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var (
	ErrApplicationStarted = errors.New("already started")
	ErrApplicationStopped = errors.New("already stopped")
	ErrRedisRequired      = errors.New("redis is required")
)

// Bus is an event bus with a lifecycle.
type Bus interface {
	eventbus.EventBus
	Start() error
	Stop(ctx context.Context) error
}

type Component interface {
	Name() string
	Start() error
	Stop(ctx context.Context) error
}

type Application struct {
	nodeID string

	cfg *config.Config

	mux     sync.Mutex
	started bool

	stop chan struct{}

	log    *zap.SugaredLogger
	db     *db.DB
	bus    Bus
	redis  *redis.Client
	tracer  *tracing.Tracer
	metrics *metrics.Metrics

	srv        *service.Service
	components []Component
}

func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		nodeID: utils.UUID(),
		cfg:    cfg,
		stop:   make(chan struct{}, 1),
	}

	err := app.initialize()
	if err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) newAccessLogger(name string) (accesslog.AccessLogger, error) {
	if !app.cfg.AccessLog.Enabled {
		return nil, nil
	}
	return accesslog.NewAccessLogger(name, accesslog.Options{
		File:    app.cfg.AccessLog.File,
		Format:  string(app.cfg.AccessLog.Format),
		Colored: app.cfg.AccessLog.Colored,
	})
}

func (app *Application) initialize() error {
	cfg := app.cfg

	log, err := log.NewZapLogger(&cfg.Log)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(log.Desugar())
	app.log = log

	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		app.log.Error(err)
	}))

	// tracing
	tracer, err := tracing.New(&cfg.Tracing)
	if err != nil {
		return err
	}
	app.tracer = tracer

	// metrics
	app.metrics, err = metrics.New(cfg.Metrics)
	if err != nil {
		return err
	}
	if app.metrics.Enabled {
		app.components = append(app.components, app.metrics)
	}

	// db & event bus
	if cfg.Database.Driver == modules.DriverPostgres {
		sqlDB, err := db.NewSqlDB(cfg.Database)
		if err != nil {
			return err
		}
		app.bus = eventbus.NewPostgresEventBus(app.nodeID, cfg.Database.GetDSN(), log, sqlDB)
		app.db, err = db.NewDB(sqlDB, cfg.Database.Driver, log, app.bus)
		if err != nil {
			return err
		}
	} else {
		app.bus = eventbus.NewLocalEventBus()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		app.db, err = db.Open(ctx, cfg.Database, log, app.bus)
		if err != nil {
			return err
		}
	}
	registerEventHandler(app.bus)

	app.redis = cfg.Redis.GetClient()

	// cache
	if cfg.API.Cache.Enabled {
		opts := &mcache.Options{
			L1Size:  cfg.API.Cache.L1Size,
			L1TTL:   utils.DurationS(cfg.API.Cache.L1TTL),
			L2TTL:   utils.DurationS(cfg.API.Cache.L2TTL),
			Metrics: app.metrics,
		}
		if app.redis != nil {
			opts.L2 = cache.NewRedisCache(app.redis, serializer.MsgPack)
		}
		mcache.Set(mcache.NewMCache(opts))
	}

	// service
	opts := service.Options{DB: app.db, Metrics: app.metrics}
	if cfg.Events.Lock.Enabled {
		if app.redis == nil {
			return fmt.Errorf("events.lock: %w", ErrRedisRequired)
		}
		opts.Locker = service.NewRedisLocker(app.redis, cfg.Events.Lock)
	}
	app.srv = service.NewService(opts)

	storage, err := upload.NewStorage(cfg.Uploads.Dir)
	if err != nil {
		return err
	}

	// api
	if cfg.API.IsEnabled() {
		handler, err := app.newAPIHandler(storage)
		if err != nil {
			return err
		}
		app.components = append(app.components, api.NewServer(cfg.API, handler))
	}

	// status
	if cfg.Status.IsEnabled() {
		accessLogger, err := app.newAccessLogger("status")
		if err != nil {
			return err
		}
		app.components = append(app.components, status.NewStatus(cfg.Status, status.Options{
			AccessLog:  accessLogger,
			Indicators: app.indicators(storage),
			Stats:      app.db.Stats,
		}))
	}

	// uploads sweeper
	if cfg.Uploads.Sweep.Enabled() {
		scheduler := schedule.NewScheduler()
		sweeper := upload.NewSweeper(storage, app.db.Events, utils.DurationS(cfg.Uploads.Sweep.MinAge))
		err := scheduler.AddTask(&schedule.Task{
			Name: "uploads.sweep",
			Spec: cfg.Uploads.Sweep.Schedule,
			Do:   sweeper.Run,
		})
		if err != nil {
			return err
		}
		app.components = append(app.components, scheduler)
	}

	return nil
}

func (app *Application) newAPIHandler(storage *upload.Storage) (http.Handler, error) {
	cfg := app.cfg
	opts := api.Options{
		Config:      cfg,
		Service:     app.srv,
		Storage:     storage,
		Middlewares: []mux.MiddlewareFunc{middlewares.RequestID},
	}
	if app.metrics.Enabled {
		opts.Middlewares = append(opts.Middlewares, middlewares.NewMetricsMiddleware(app.metrics).Handle)
	}
	if tracing.Enabled(modules.InstrumentationRequest) {
		opts.Middlewares = append(opts.Middlewares, instrumentations.NewMuxMiddleware("api"))
	}
	accessLogger, err := app.newAccessLogger("api")
	if err != nil {
		return nil, err
	}
	if accessLogger != nil {
		opts.Middlewares = append(opts.Middlewares, accesslog.NewMiddleware(accessLogger))
	}
	if cfg.API.RateLimit.Enabled {
		if app.redis == nil {
			return nil, fmt.Errorf("api.rate_limit: %w", ErrRedisRequired)
		}
		limiter := middlewares.NewRateLimit(app.redis, cfg.API.RateLimit.Quota, utils.DurationS(cfg.API.RateLimit.Period))
		opts.Middlewares = append(opts.Middlewares, limiter.Handle)
	}
	return api.NewAPI(opts).Handler(), nil
}

func (app *Application) indicators(storage *upload.Storage) []*health.Indicator {
	indicators := []*health.Indicator{
		{Name: "db", Check: app.db.Ping},
		{Name: "uploads", Check: storage.Check},
	}
	if app.redis != nil {
		client := app.redis
		indicators = append(indicators, &health.Indicator{
			Name: "redis",
			Check: func() error {
				resp := client.Ping(context.TODO())
				if resp.Err() != nil {
					return resp.Err()
				}
				if resp.Val() != "PONG" {
					return errors.New("invalid response from redis: " + resp.Val())
				}
				return nil
			},
		})
	}
	return indicators
}

func registerEventHandler(bus eventbus.EventBus) {
	bus.ClusteringSubscribe(eventbus.EventCRUD, func(data []byte) {
		eventData := &eventbus.CrudData{}
		if err := json.Unmarshal(data, eventData); err != nil {
			zap.S().Errorf("failed to unmarshal event: %s", err)
			return
		}
		bus.Broadcast(context.TODO(), eventbus.EventCRUD, eventData)
	})
	bus.Subscribe(eventbus.EventCRUD, func(data interface{}) {
		eventData := data.(*eventbus.CrudData)
		key := constants.CacheKey{Name: eventData.CacheName}.Build(eventData.ID)
		if err := mcache.Invalidate(context.TODO(), key); err != nil {
			zap.S().Errorf("failed to invalidate cache: key=%s %v", key, err)
		}
	})
}

func (app *Application) DB() *db.DB {
	return app.db
}

func (app *Application) NodeID() string {
	return app.nodeID
}

func (app *Application) Config() *config.Config {
	return app.cfg
}

func (app *Application) checkMigrations() error {
	if !app.cfg.Database.IsSQL() {
		return nil
	}
	m := app.db.Migrator()
	version, dirty, err := m.Status()
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database is in a dirty state at version %d", version)
	}
	latest, err := m.Latest()
	if err != nil {
		return err
	}
	if version < latest {
		return errors.New("database is not up to date. Run 'eventsvc db up' before starting")
	}
	return nil
}

// Start starts application
func (app *Application) Start() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if app.started {
		return ErrApplicationStarted
	}

	if err := app.checkMigrations(); err != nil {
		return err
	}

	app.log.Infof("starting eventsvc %s (api: %s, status: %s)",
		eventsvc.VERSION, app.cfg.API.URL(), app.cfg.Status.URL())

	if err := app.bus.Start(); err != nil {
		return err
	}
	for _, c := range app.components {
		if err := c.Start(); err != nil {
			return fmt.Errorf("failed to start %s: %w", c.Name(), err)
		}
	}

	app.started = true

	return nil
}

func (app *Application) Wait() {
	<-app.stop
}

// Stop stops application
func (app *Application) Stop(ctx context.Context) error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if !app.started {
		return ErrApplicationStopped
	}

	app.log.Info("exiting 👋")

	defer func() {
		app.log.Info("exit")
		_ = app.log.Sync()
	}()

	for i := len(app.components) - 1; i >= 0; i-- {
		c := app.components[i]
		if err := c.Stop(ctx); err != nil {
			app.log.Warnf("failed to stop %s: %v", c.Name(), err)
		}
	}
	_ = app.bus.Stop(ctx)
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if err := app.tracer.Stop(ctx); err != nil {
		app.log.Warnf("failed to stop tracer: %v", err)
	}
	_ = app.db.Close()

	app.started = false
	app.stop <- struct{}{}

	return nil
}
