package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/webhookx-io/eventsvc/config/modules"
	"github.com/webhookx-io/eventsvc/db"
	"github.com/webhookx-io/eventsvc/db/migrator"
	"go.uber.org/zap"
)

var (
	quiet bool
)

const dbTimeout = 30 * time.Second

// withDB opens the configured store without an event bus.
func withDB(fn func(ctx context.Context, db *db.DB) error) error {
	cfg, err := initConfig(configurationFile)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	store, err := db.Open(ctx, cfg.Database, zap.NewNop().Sugar(), nil)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

func newDatabaseResetCmd() *cobra.Command {
	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Reset the database",
		Long:  `Drop every table (or every stored document on MongoDB).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure? This operation is irreversible.") {
					return errors.New("canceled")
				}
			}
			return withDB(func(ctx context.Context, db *db.DB) error {
				if !quiet {
					cmd.Println("resetting database...")
				}
				var err error
				if db.Driver == modules.DriverMongoDB {
					err = db.Truncate(ctx)
				} else {
					err = db.Migrator().Reset()
				}
				if err != nil {
					return err
				}
				if !quiet {
					cmd.Println("database successfully reset")
				}
				return nil
			})
		},
	}
	reset.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "yes")
	return reset
}

func newDatabaseCmd() *cobra.Command {

	database := &cobra.Command{
		Use:   "db",
		Short: "Database commands",
		Long:  ``,
	}

	database.PersistentFlags().StringVarP(&configurationFile, "config", "", "", "The configuration filename")
	database.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	database.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the migration status",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, db *db.DB) error {
				if db.Driver == modules.DriverMongoDB {
					cmd.Printf("%s: %s\n", db.Driver, migrator.ErrUnsupportedDriver)
					return nil
				}
				m := db.Migrator()
				version, dirty, err := m.Status()
				if err != nil {
					return err
				}
				latest, err := m.Latest()
				if err != nil {
					return err
				}
				pending := uint(0)
				if latest > version {
					pending = latest - version
				}
				cmd.Printf("Summary:\n  Current version: %d\n  Dirty: %t\n  Latest version: %d\n  Pending: %d\n",
					version, dirty, latest, pending)
				return nil
			})
		},
	})

	database.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run any new migrations",
		Long:  `Run any new migrations. On MongoDB, ensure the collection indexes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, db *db.DB) error {
				if db.Driver != modules.DriverMongoDB {
					if err := db.Migrator().Up(); err != nil {
						return err
					}
				}
				if !quiet {
					cmd.Println("database is up-to-date")
				}
				return nil
			})
		},
	})

	database.AddCommand(newDatabaseResetCmd())

	return database
}
