package storage

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/storage/basedb"
)

var grantsPrefix = []byte("grants")

// Capability names a permissioned registry operation. Grants are explicit
// (principal, capability) pairs; there is no ambient role table.
type Capability string

const (
	// CapabilityAdmin allows granting and revoking the operational
	// capabilities. It does not imply them.
	CapabilityAdmin Capability = "ADMIN"

	CapabilityAddOperator    Capability = "ADD_OPERATOR"
	CapabilityRemoveOperator Capability = "REMOVE_OPERATOR"
	CapabilityExitOperator   Capability = "EXIT_OPERATOR"
)

// Valid reports whether the capability is one of the known names.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityAdmin, CapabilityAddOperator, CapabilityRemoveOperator, CapabilityExitOperator:
		return true
	default:
		return false
	}
}

// Operational reports whether the capability gates a registry operation
// rather than grant administration.
func (c Capability) Operational() bool {
	return c.Valid() && c != CapabilityAdmin
}

// Grants is the interface for managing persisted capability grants.
type Grants interface {
	GetGrants(r basedb.Reader, principal common.Address) ([]Capability, bool, error)
	SaveGrants(rw basedb.ReadWriter, principal common.Address, capabilities []Capability) error
	DeleteGrants(rw basedb.ReadWriter, principal common.Address) error
	ListGrants(r basedb.Reader) (map[common.Address][]Capability, error)
}

type grantsStorage struct {
	logger *zap.Logger
	db     basedb.Database
	lock   sync.RWMutex
	prefix []byte
}

// NewGrantsStorage creates a new instance of Storage
func NewGrantsStorage(logger *zap.Logger, db basedb.Database, prefix []byte) Grants {
	return &grantsStorage{
		logger: logger,
		db:     db,
		prefix: prefix,
	}
}

// GetGrants returns the capabilities granted to the given principal.
func (s *grantsStorage) GetGrants(r basedb.Reader, principal common.Address) ([]Capability, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	obj, found, err := s.db.UsingReader(r).Get(s.prefix, buildGrantKey(principal))
	if err != nil {
		return nil, found, err
	}
	if !found {
		return nil, found, nil
	}

	var capabilities []Capability
	if err := json.Unmarshal(obj.Value, &capabilities); err != nil {
		return nil, true, errors.Wrap(err, "could not unmarshal grants")
	}
	return capabilities, true, nil
}

// SaveGrants persists the full capability set of the given principal,
// replacing whatever was stored before. An empty set deletes the entry.
func (s *grantsStorage) SaveGrants(rw basedb.ReadWriter, principal common.Address, capabilities []Capability) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(capabilities) == 0 {
		return s.db.Using(rw).Delete(s.prefix, buildGrantKey(principal))
	}

	raw, err := json.Marshal(capabilities)
	if err != nil {
		return errors.Wrap(err, "could not marshal grants")
	}
	return s.db.Using(rw).Set(s.prefix, buildGrantKey(principal), raw)
}

// DeleteGrants removes every capability of the given principal.
func (s *grantsStorage) DeleteGrants(rw basedb.ReadWriter, principal common.Address) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.db.Using(rw).Delete(s.prefix, buildGrantKey(principal))
}

// ListGrants returns all persisted grants keyed by principal.
func (s *grantsStorage) ListGrants(r basedb.Reader) (map[common.Address][]Capability, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	grants := make(map[common.Address][]Capability)
	prefix := bytes.Join([][]byte{s.prefix, grantsPrefix, []byte("/")}, nil)
	err := s.db.UsingReader(r).GetAll(prefix, func(i int, obj basedb.Obj) error {
		var capabilities []Capability
		if err := json.Unmarshal(obj.Value, &capabilities); err != nil {
			return errors.Wrap(err, "could not unmarshal grants")
		}
		grants[common.BytesToAddress(obj.Key)] = capabilities
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// buildGrantKey builds grant key using grantsPrefix & principal address, e.g. "grants/0x00..01"
func buildGrantKey(principal common.Address) []byte {
	return bytes.Join([][]byte{grantsPrefix, principal.Bytes()}, []byte("/"))
}
