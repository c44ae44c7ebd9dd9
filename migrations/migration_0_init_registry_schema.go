package migrations

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	registrystorage "github.com/polystake/noderegistry/registry/storage"
)

// Seeds the aggregate status counters so stats reads are record-backed
// from the first start.
var migrationInitRegistrySchema = Migration{
	Name: "migration_0_init_registry_schema",
	Run: func(ctx context.Context, logger *zap.Logger, opt Options, key []byte) error {
		storage := opt.registryStorage(logger)

		txn := storage.Begin()
		defer txn.Discard()

		_, found, err := storage.GetStats(txn)
		if err != nil {
			return errors.Wrap(err, "could not get stats")
		}
		if !found {
			if err := storage.SaveStats(txn, &registrystorage.Stats{}); err != nil {
				return errors.Wrap(err, "could not seed stats")
			}
		}

		if err := txn.Set(migrationsPrefix, key, migrationCompleted); err != nil {
			return errors.Wrap(err, "could not mark migration as completed")
		}
		return txn.Commit()
	},
}
