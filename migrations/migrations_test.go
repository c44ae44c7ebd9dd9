package migrations

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/logging"
	registrystorage "github.com/polystake/noderegistry/registry/storage"
	"github.com/polystake/noderegistry/storage/basedb"
	"github.com/polystake/noderegistry/storage/kv"
)

func setupOptions(t *testing.T) Options {
	db, err := kv.NewInMemory(logging.TestLogger(t), basedb.Options{})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return Options{Db: db}
}

func fakeMigration(name string, returnErr error) Migration {
	return Migration{
		Name: name,
		Run: func(ctx context.Context, logger *zap.Logger, opt Options, key []byte) error {
			return opt.Db.Update(func(txn basedb.Txn) error {
				if returnErr != nil {
					return returnErr
				}
				return txn.Set(migrationsPrefix, key, migrationCompleted)
			})
		},
	}
}

func Test_RunNotMigratingTwice(t *testing.T) {
	ctx := context.Background()
	logger := logging.TestLogger(t)
	opt := setupOptions(t)

	var count int
	migrations := Migrations{
		{
			Name: "not_migrating_twice",
			Run: func(ctx context.Context, logger *zap.Logger, opt Options, key []byte) error {
				count++
				return opt.Db.Set(migrationsPrefix, key, migrationCompleted)
			},
		},
	}

	applied, err := migrations.Run(ctx, logger, opt)
	require.NoError(t, err)
	require.Equal(t, applied, 1)
	require.Equal(t, count, 1) // Only ran once.

	applied, err = migrations.Run(ctx, logger, opt)
	require.NoError(t, err)
	require.Equal(t, applied, 0)
	require.Equal(t, count, 1) // Only ran once.
}

func Test_Rollback(t *testing.T) {
	ctx := context.Background()
	logger := logging.TestLogger(t)
	opt := setupOptions(t)

	// Test that migration fails and rolls back on error.
	fakeError := errors.New("fake error")
	migrationKey := "test_migration"
	applied, err := Migrations{fakeMigration(migrationKey, fakeError)}.Run(ctx, logger, opt)
	require.Equal(t, 0, applied)
	require.Error(t, err)
	_, found, err := opt.Db.Get(migrationsPrefix, []byte(migrationKey))
	require.NoError(t, err)
	require.False(t, found)

	// Test that migration doesn't fail without error:
	applied, err = Migrations{fakeMigration(migrationKey, nil)}.Run(ctx, logger, opt)
	require.NoError(t, err)
	require.Equal(t, 1, applied)
	obj, found, err := opt.Db.Get(migrationsPrefix, []byte(migrationKey))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte(migrationKey), obj.Key)
	require.Equal(t, migrationCompleted, obj.Value)
}

func Test_NextMigrationNotExecutedOnFailure(t *testing.T) {
	ctx := context.Background()
	logger := logging.TestLogger(t)
	opt := setupOptions(t)

	fakeError := errors.New("fake error")
	migrations := Migrations{
		fakeMigration("first", fakeError),
		fakeMigration("second", nil),
	}
	applied, err := migrations.Run(ctx, logger, opt)
	require.Error(t, err)
	require.EqualError(t, err, fmt.Sprintf("migration \"first\" failed: %s", fakeError.Error()))
	require.Equal(t, 0, applied)
	_, found, err := opt.Db.Get(migrationsPrefix, []byte("first"))
	require.NoError(t, err)
	require.False(t, found)
	_, found, err = opt.Db.Get(migrationsPrefix, []byte("second"))
	require.NoError(t, err)
	require.False(t, found)
}

func Test_InitRegistrySchema(t *testing.T) {
	ctx := context.Background()
	logger := logging.TestLogger(t)
	opt := setupOptions(t)

	applied, err := Run(ctx, logger, opt)
	require.NoError(t, err)
	require.Equal(t, 1, applied)

	storage := opt.registryStorage(logger)
	stats, found, err := storage.GetStats(nil)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, registrystorage.Stats{}, *stats)

	// seeded counters are not reset on the next run
	require.NoError(t, storage.SaveStats(nil, &registrystorage.Stats{Total: 2, Active: 1, Staked: 1}))
	applied, err = Run(ctx, logger, opt)
	require.NoError(t, err)
	require.Equal(t, 0, applied)

	stats, _, err = storage.GetStats(nil)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.Total)
}
