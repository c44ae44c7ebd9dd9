package storage

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/storage/basedb"
)

var configPrefix = []byte("config")

// RegistryConfig is the singleton record written by initialization: the four
// collaborator contract addresses and the moment they were set. Its presence
// is what marks the registry as initialized.
type RegistryConfig struct {
	ValidatorFactory common.Address `json:"validatorFactory"`
	StakeManager     common.Address `json:"stakeManager"`
	RewardSink       common.Address `json:"rewardSink"`
	StakingToken     common.Address `json:"stakingToken"`
	InitializedAt    time.Time      `json:"initializedAt"`
}

// Config is the interface for managing the registry configuration record.
type Config interface {
	GetRegistryConfig(r basedb.Reader) (*RegistryConfig, bool, error)
	SaveRegistryConfig(rw basedb.ReadWriter, config *RegistryConfig) error
}

type configStorage struct {
	logger *zap.Logger
	db     basedb.Database
	lock   sync.RWMutex
	prefix []byte
}

// NewConfigStorage creates a new instance of Storage
func NewConfigStorage(logger *zap.Logger, db basedb.Database, prefix []byte) Config {
	return &configStorage{
		logger: logger,
		db:     db,
		prefix: prefix,
	}
}

// GetRegistryConfig returns the configuration record; found is false until
// the registry has been initialized.
func (s *configStorage) GetRegistryConfig(r basedb.Reader) (*RegistryConfig, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	obj, found, err := s.db.UsingReader(r).Get(s.prefix, buildConfigKey())
	if err != nil {
		return nil, found, err
	}
	if !found {
		return nil, found, nil
	}

	var config RegistryConfig
	err = json.Unmarshal(obj.Value, &config)
	return &config, found, err
}

// SaveRegistryConfig persists the configuration record.
func (s *configStorage) SaveRegistryConfig(rw basedb.ReadWriter, config *RegistryConfig) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	raw, err := json.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "could not marshal registry config")
	}
	return s.db.Using(rw).Set(s.prefix, buildConfigKey(), raw)
}

// buildConfigKey builds the configuration key, e.g. "config/registry"
func buildConfigKey() []byte {
	return bytes.Join([][]byte{configPrefix, []byte("registry")}, []byte("/"))
}
