package migrator

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/webhookx-io/eventsvc/config/modules"
	"github.com/webhookx-io/eventsvc/db/migrations"
)

var ErrUnsupportedDriver = errors.New("driver does not use migrations")

// Migrator is a database migrator
type Migrator struct {
	db     *sql.DB
	driver modules.DatabaseDriver
}

func New(db *sql.DB, driver modules.DatabaseDriver) *Migrator {
	return &Migrator{
		db:     db,
		driver: driver,
	}
}

func (m *Migrator) source() (source.Driver, error) {
	var (
		files fs.FS
		err   error
	)
	switch m.driver {
	case modules.DriverPostgres:
		files, err = fs.Sub(migrations.Postgres, "postgres")
	case modules.DriverSQLite:
		files, err = fs.Sub(migrations.SQLite, "sqlite3")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, m.driver)
	}
	if err != nil {
		return nil, err
	}
	return iofs.New(files, ".")
}

func (m *Migrator) init() (*migrate.Migrate, error) {
	d, err := m.source()
	if err != nil {
		return nil, err
	}

	var driver database.Driver
	switch m.driver {
	case modules.DriverPostgres:
		driver, err = postgres.WithInstance(m.db, &postgres.Config{})
	case modules.DriverSQLite:
		driver, err = sqlite3.WithInstance(m.db, &sqlite3.Config{})
	}
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", d, string(m.driver), driver)
}

// Reset reset database
func (m *Migrator) Reset() error {
	migrate, err := m.init()
	if err != nil {
		return err
	}
	return migrate.Drop()
}

// Up applies all pending migrations. It is a no-op when the schema is current.
func (m *Migrator) Up() error {
	migrate, err := m.init()
	if err != nil {
		return err
	}
	err = migrate.Up()
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	return err
}

func (m *Migrator) Down() error {
	migrate, err := m.init()
	if err != nil {
		return err
	}
	return migrate.Down()
}

// Status returns the current status
func (m *Migrator) Status() (version uint, dirty bool, err error) {
	migrate, err := m.init()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = migrate.Version()
	if errors.Is(err, ErrNilVersion) {
		return 0, false, nil
	}
	return
}

// Latest returns the version of the newest embedded migration.
func (m *Migrator) Latest() (uint, error) {
	d, err := m.source()
	if err != nil {
		return 0, err
	}
	defer d.Close()

	version, err := d.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := d.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, err
		}
		version = next
	}
}

var (
	ErrNoChange   = migrate.ErrNoChange
	ErrNilVersion = migrate.ErrNilVersion
)
