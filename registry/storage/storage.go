package storage

import (
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/storage/basedb"
)

var storagePrefix = []byte("registry/")

// Storage is the single entry point to everything the registry persists:
// operator records and their indices, the aggregate counters, capability
// grants and the configuration record. Begin/BeginRead expose the underlying
// database transactions so one registry operation spans one transaction.
type Storage interface {
	Operators
	StatsCollection
	Grants
	Config

	Begin() basedb.Txn
	BeginRead() basedb.ReadTxn
}

type registryStorage struct {
	Operators
	StatsCollection
	Grants
	Config

	db basedb.Database
}

// NewRegistryStorage creates a new instance of Storage
func NewRegistryStorage(logger *zap.Logger, db basedb.Database) Storage {
	return &registryStorage{
		Operators:       NewOperatorsStorage(logger, db, storagePrefix),
		StatsCollection: NewStatsStorage(logger, db, storagePrefix),
		Grants:          NewGrantsStorage(logger, db, storagePrefix),
		Config:          NewConfigStorage(logger, db, storagePrefix),
		db:              db,
	}
}

func (s *registryStorage) Begin() basedb.Txn {
	return s.db.Begin()
}

func (s *registryStorage) BeginRead() basedb.ReadTxn {
	return s.db.BeginRead()
}
