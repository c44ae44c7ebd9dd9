package migrations

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/logging/fields"
	registrystorage "github.com/polystake/noderegistry/registry/storage"
	"github.com/polystake/noderegistry/storage/basedb"
)

var (
	migrationsPrefix   = []byte("migrations/")
	migrationCompleted = []byte("migrationCompleted")

	defaultMigrations = Migrations{
		migrationInitRegistrySchema,
	}
)

// Run executes the default migrations.
func Run(ctx context.Context, logger *zap.Logger, opt Options) (applied int, err error) {
	return defaultMigrations.Run(ctx, logger, opt)
}

// MigrationFunc is a function that performs a migration. It must write
// migrationCompleted under key in the same transaction as its effects.
type MigrationFunc func(ctx context.Context, logger *zap.Logger, opt Options, key []byte) error

// Migration is a named MigrationFunc.
type Migration struct {
	Name string
	Run  MigrationFunc
}

// Migrations is a slice of named migrations, meant to be executed
// from first to last (order is significant).
type Migrations []Migration

// Options is the options for running migrations.
type Options struct {
	Db basedb.Database
}

func (o Options) registryStorage(logger *zap.Logger) registrystorage.Storage {
	return registrystorage.NewRegistryStorage(logger, o.Db)
}

// Run executes the migrations.
func (m Migrations) Run(ctx context.Context, logger *zap.Logger, opt Options) (applied int, err error) {
	logger.Info("Running migrations")
	for _, migration := range m {
		// Skip the migration if it's already completed.
		obj, _, err := opt.Db.Get(migrationsPrefix, []byte(migration.Name))
		if err != nil {
			return applied, err
		}
		if bytes.Equal(obj.Value, migrationCompleted) {
			logger.Debug("migration already applied, skipping", fields.Migration(migration.Name))
			continue
		}

		// Execute the migration.
		start := time.Now()
		migrationLogger := logger.With(fields.Migration(migration.Name))
		err = migration.Run(ctx, migrationLogger, opt, []byte(migration.Name))
		if err != nil {
			return applied, errors.Wrapf(err, "migration %q failed", migration.Name)
		}
		applied++

		migrationLogger.Info("migration applied successfully", fields.Took(time.Since(start)))
	}
	if applied == 0 {
		logger.Info("no migrations to apply")
	}
	return applied, nil
}
