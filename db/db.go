package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/webhookx-io/eventsvc/config/modules"
	"github.com/webhookx-io/eventsvc/db/dao"
	"github.com/webhookx-io/eventsvc/db/migrator"
	"github.com/webhookx-io/eventsvc/db/mongodb"
	"github.com/webhookx-io/eventsvc/eventbus"
	"github.com/webhookx-io/eventsvc/pkg/tracing"
	"go.uber.org/zap"
)

// DB is the record store. Exactly one of DB and Mongo is set, depending on
// the configured driver.
type DB struct {
	Driver modules.DatabaseDriver
	DB     *sqlx.DB
	Mongo  *mongodb.Store
	log    *zap.SugaredLogger

	Events dao.EventDAO
}

func sqlDriverName(driver modules.DatabaseDriver) string {
	if driver == modules.DriverSQLite {
		return "sqlite3"
	}
	return "pgx"
}

func NewSqlDB(cfg modules.DatabaseConfig) (*sql.DB, error) {
	if !cfg.IsSQL() {
		return nil, fmt.Errorf("driver %s is not a sql driver", cfg.Driver)
	}
	db, err := sql.Open(sqlDriverName(cfg.Driver), cfg.GetDSN())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", cfg.Driver)
	}
	if cfg.Driver == modules.DriverSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(int(cfg.MaxPoolSize))
		db.SetMaxIdleConns(int(cfg.MaxPoolSize))
	}
	db.SetConnMaxLifetime(time.Second * time.Duration(cfg.MaxLifetime))
	return db, nil
}

func daoOptions(bus eventbus.EventBus) []dao.OptionFunc {
	opts := make([]dao.OptionFunc, 0)
	if bus != nil {
		opts = append(opts, dao.WithPropagateHandler(func(ctx context.Context, opts *dao.Options, id string, entity interface{}) {
			data := &eventbus.CrudData{
				Entity:    opts.EntityName,
				ID:        id,
				Op:        eventbus.OpUpsert,
				CacheName: opts.CacheName,
			}
			if entity == nil {
				data.Op = eventbus.OpDelete
			}
			_ = bus.ClusteringBroadcast(ctx, eventbus.EventCRUD, data)
		}))
	}
	if tracing.Enabled(modules.InstrumentationDAO) {
		opts = append(opts, dao.WithInstrumented())
	}
	return opts
}

// NewDB wraps an opened sql database.
func NewDB(sqlDB *sql.DB, driver modules.DatabaseDriver, log *zap.SugaredLogger, bus eventbus.EventBus) (*DB, error) {
	sqlxDB := sqlx.NewDb(sqlDB, sqlDriverName(driver))

	db := &DB{
		Driver: driver,
		DB:     sqlxDB,
		log:    log,
		Events: dao.NewEventDao(sqlxDB, daoOptions(bus)...),
	}

	return db, nil
}

// NewMongoDB connects to MongoDB and ensures the collection indexes.
func NewMongoDB(ctx context.Context, cfg modules.DatabaseConfig, log *zap.SugaredLogger, bus eventbus.EventBus) (*DB, error) {
	store, err := mongodb.Connect(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mongodb")
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, errors.Wrap(err, "failed to create indexes")
	}
	return &DB{
		Driver: cfg.Driver,
		Mongo:  store,
		log:    log,
		Events: mongodb.NewEventStore(store, daoOptions(bus)...),
	}, nil
}

// Open opens the record store selected by cfg.Driver.
func Open(ctx context.Context, cfg modules.DatabaseConfig, log *zap.SugaredLogger, bus eventbus.EventBus) (*DB, error) {
	if cfg.Driver == modules.DriverMongoDB {
		return NewMongoDB(ctx, cfg, log, bus)
	}
	sqlDB, err := NewSqlDB(cfg)
	if err != nil {
		return nil, err
	}
	return NewDB(sqlDB, cfg.Driver, log, bus)
}

func (db *DB) Migrator() *migrator.Migrator {
	if db.DB == nil {
		return migrator.New(nil, db.Driver)
	}
	return migrator.New(db.DB.DB, db.Driver)
}

func (db *DB) Ping() error {
	if db.Mongo != nil {
		return db.Mongo.Ping(context.TODO())
	}
	return db.DB.Ping()
}

func (db *DB) Stats() map[string]interface{} {
	if db.Mongo != nil {
		return map[string]interface{}{
			"database.driver": string(db.Driver),
		}
	}
	stats := db.DB.Stats()
	return map[string]interface{}{
		"database.driver":             string(db.Driver),
		"database.total_connections":  stats.OpenConnections,
		"database.active_connections": stats.InUse,
	}
}

// Truncate removes every record.
func (db *DB) Truncate(ctx context.Context) error {
	if db.Mongo != nil {
		return db.Mongo.Truncate(ctx)
	}
	_, err := db.DB.ExecContext(ctx, "DELETE FROM events")
	return err
}

func (db *DB) SqlDB() *sql.DB {
	if db.DB == nil {
		return nil
	}
	return db.DB.DB
}

func (db *DB) Close() error {
	if db.Mongo != nil {
		return db.Mongo.Close(context.TODO())
	}
	return db.DB.Close()
}
