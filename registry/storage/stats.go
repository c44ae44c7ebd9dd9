package storage

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/storage/basedb"
)

var statsPrefix = []byte("stats")

// Stats holds the aggregate operator counters. Total counts every record in
// the table; the remaining four partition it by status.
type Stats struct {
	Total    uint64 `json:"total"`
	Active   uint64 `json:"active"`
	Staked   uint64 `json:"staked"`
	Unstaked uint64 `json:"unstaked"`
	Exited   uint64 `json:"exited"`
}

// Consistent reports whether the status counters still partition the total.
func (s *Stats) Consistent() bool {
	return s.Total == s.Active+s.Staked+s.Unstaked+s.Exited
}

// StatsCollection is the interface for managing the aggregate counters.
type StatsCollection interface {
	GetStats(r basedb.Reader) (*Stats, bool, error)
	SaveStats(rw basedb.ReadWriter, stats *Stats) error
}

type statsStorage struct {
	logger *zap.Logger
	db     basedb.Database
	lock   sync.RWMutex
	prefix []byte
}

// NewStatsStorage creates a new instance of Storage
func NewStatsStorage(logger *zap.Logger, db basedb.Database, prefix []byte) StatsCollection {
	return &statsStorage{
		logger: logger,
		db:     db,
		prefix: prefix,
	}
}

// GetStats returns the persisted counters; found is false before the initial
// schema migration has seeded them.
func (s *statsStorage) GetStats(r basedb.Reader) (*Stats, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	obj, found, err := s.db.UsingReader(r).Get(s.prefix, buildStatsKey())
	if err != nil {
		return nil, found, err
	}
	if !found {
		return nil, found, nil
	}

	var stats Stats
	err = json.Unmarshal(obj.Value, &stats)
	return &stats, found, err
}

// SaveStats persists the counters, refusing any set that no longer partitions
// the total.
func (s *statsStorage) SaveStats(rw basedb.ReadWriter, stats *Stats) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !stats.Consistent() {
		return errors.Errorf("inconsistent counters: total %d != %d active + %d staked + %d unstaked + %d exited",
			stats.Total, stats.Active, stats.Staked, stats.Unstaked, stats.Exited)
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return errors.Wrap(err, "could not marshal stats")
	}
	return s.db.Using(rw).Set(s.prefix, buildStatsKey(), raw)
}

// buildStatsKey builds the counters key, e.g. "stats/operators"
func buildStatsKey() []byte {
	return bytes.Join([][]byte{statsPrefix, operatorsPrefix}, []byte("/"))
}
