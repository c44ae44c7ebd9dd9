package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/storage/basedb"
)

var (
	operatorsPrefix = []byte("operators")
	ownersPrefix    = []byte("owners")
	sequencePrefix  = []byte("sequence")
	idsPrefix       = []byte("ids")
)

// OperatorStatus tracks where an operator stands in the staking lifecycle.
type OperatorStatus uint8

const (
	StatusUnknown OperatorStatus = iota
	StatusActive
	StatusStaked
	StatusUnstaked
	StatusExit
)

func (s OperatorStatus) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusStaked:
		return "STAKED"
	case StatusUnstaked:
		return "UNSTAKED"
	case StatusExit:
		return "EXIT"
	default:
		return "UNKNOWN"
	}
}

func (s OperatorStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *OperatorStatus) UnmarshalText(input []byte) error {
	switch string(input) {
	case "ACTIVE":
		*s = StatusActive
	case "STAKED":
		*s = StatusStaked
	case "UNSTAKED":
		*s = StatusUnstaked
	case "EXIT":
		*s = StatusExit
	default:
		return errors.Errorf("unknown operator status %q", string(input))
	}
	return nil
}

// OperatorData is the full record of a registered node operator.
// IDs are assigned from a monotonic sequence and never reused.
type OperatorData struct {
	ID                uint64
	Status            OperatorStatus
	Name              string
	RewardAddress     common.Address
	SignerPubkey      []byte
	ValidatorID       uint64
	ValidatorContract common.Address
	ValidatorShare    common.Address
}

func (o *OperatorData) MarshalJSON() ([]byte, error) {
	return json.Marshal(operatorDataJSON{
		ID:                o.ID,
		Status:            o.Status,
		Name:              o.Name,
		RewardAddress:     o.RewardAddress,
		SignerPubkey:      o.SignerPubkey,
		ValidatorID:       o.ValidatorID,
		ValidatorContract: o.ValidatorContract,
		ValidatorShare:    o.ValidatorShare,
	})
}

func (o *OperatorData) UnmarshalJSON(input []byte) error {
	var data operatorDataJSON
	if err := json.Unmarshal(input, &data); err != nil {
		return errors.Wrap(err, "invalid JSON")
	}
	o.ID = data.ID
	o.Status = data.Status
	o.Name = data.Name
	o.RewardAddress = data.RewardAddress
	o.SignerPubkey = data.SignerPubkey
	o.ValidatorID = data.ValidatorID
	o.ValidatorContract = data.ValidatorContract
	o.ValidatorShare = data.ValidatorShare
	return nil
}

type operatorDataJSON struct {
	ID                uint64         `json:"id"`
	Status            OperatorStatus `json:"status"`
	Name              string         `json:"name"`
	RewardAddress     common.Address `json:"rewardAddress"`
	SignerPubkey      hexutil.Bytes  `json:"signerPubkey"`
	ValidatorID       uint64         `json:"validatorId"`
	ValidatorContract common.Address `json:"validatorContract"`
	ValidatorShare    common.Address `json:"validatorShare"`
}

// Operators is the interface for managing operator records, the owner index,
// the id sequence and the ordered list of live ids. Methods take a
// basedb.Reader/basedb.ReadWriter so several calls compose into one
// transaction.
type Operators interface {
	GetOperatorData(r basedb.Reader, id uint64) (*OperatorData, bool, error)
	GetOperatorDataByOwner(r basedb.Reader, owner common.Address) (*OperatorData, bool, error)
	GetOperatorID(r basedb.Reader, owner common.Address) (uint64, bool, error)
	GetOperatorDataMany(r basedb.Reader, ids []uint64) ([]OperatorData, error)
	ListOperators(r basedb.Reader, from uint64, to uint64) ([]OperatorData, error)
	OperatorIDs(r basedb.Reader) ([]uint64, error)
	SaveOperatorData(rw basedb.ReadWriter, operatorData *OperatorData) error
	UpdateOperatorData(rw basedb.ReadWriter, operatorData *OperatorData) error
	DeleteOperatorData(rw basedb.ReadWriter, id uint64) error
	GetOperatorsPrefix() []byte
}

type operatorsStorage struct {
	logger *zap.Logger
	db     basedb.Database
	lock   sync.RWMutex
	prefix []byte
}

// NewOperatorsStorage creates a new instance of Storage
func NewOperatorsStorage(logger *zap.Logger, db basedb.Database, prefix []byte) Operators {
	return &operatorsStorage{
		logger: logger,
		db:     db,
		prefix: prefix,
	}
}

// GetOperatorsPrefix returns DB prefix
func (s *operatorsStorage) GetOperatorsPrefix() []byte {
	return operatorsPrefix
}

// GetOperatorData returns the record of the given operator by id
func (s *operatorsStorage) GetOperatorData(r basedb.Reader, id uint64) (*OperatorData, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.getOperatorData(r, id)
}

func (s *operatorsStorage) getOperatorData(r basedb.Reader, id uint64) (*OperatorData, bool, error) {
	obj, found, err := s.db.UsingReader(r).Get(s.prefix, buildOperatorKey(id))
	if err != nil {
		return nil, found, err
	}
	if !found {
		return nil, found, nil
	}

	var operatorData OperatorData
	err = json.Unmarshal(obj.Value, &operatorData)
	return &operatorData, found, err
}

// GetOperatorDataByOwner resolves the reward address through the owner index
// and returns the operator record it maps to.
func (s *operatorsStorage) GetOperatorDataByOwner(r basedb.Reader, owner common.Address) (*OperatorData, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	id, found, err := s.getOperatorID(r, owner)
	if err != nil || !found {
		return nil, found, err
	}
	return s.getOperatorData(r, id)
}

// GetOperatorID returns the id the given reward address is indexed under.
func (s *operatorsStorage) GetOperatorID(r basedb.Reader, owner common.Address) (uint64, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.getOperatorID(r, owner)
}

func (s *operatorsStorage) getOperatorID(r basedb.Reader, owner common.Address) (uint64, bool, error) {
	obj, found, err := s.db.UsingReader(r).Get(s.prefix, buildOwnerKey(owner))
	if err != nil {
		return 0, found, err
	}
	if !found {
		return 0, found, nil
	}
	if len(obj.Value) != 8 {
		return 0, true, errors.Errorf("malformed owner index entry of %d bytes", len(obj.Value))
	}
	return binary.BigEndian.Uint64(obj.Value), true, nil
}

// GetOperatorDataMany returns the records of the given ids, preserving order
// and skipping ids without a record.
func (s *operatorsStorage) GetOperatorDataMany(r basedb.Reader, ids []uint64) ([]OperatorData, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	keys := make([][]byte, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, buildOperatorKey(id))
	}
	var operators []OperatorData
	err := s.db.UsingReader(r).GetMany(s.prefix, keys, func(obj basedb.Obj) error {
		var od OperatorData
		if err := json.Unmarshal(obj.Value, &od); err != nil {
			return errors.Wrap(err, "could not unmarshal operator data")
		}
		operators = append(operators, od)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return operators, nil
}

// ListOperators returns all known operators within the id range (from, to);
// when 'to' equals zero the range is unbounded.
func (s *operatorsStorage) ListOperators(r basedb.Reader, from uint64, to uint64) ([]OperatorData, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.listOperators(r, from, to)
}

func (s *operatorsStorage) listOperators(r basedb.Reader, from, to uint64) ([]OperatorData, error) {
	var operators []OperatorData
	prefix := bytes.Join([][]byte{s.prefix, operatorsPrefix, []byte("/")}, nil)
	err := s.db.UsingReader(r).GetAll(prefix, func(i int, obj basedb.Obj) error {
		var od OperatorData
		if err := json.Unmarshal(obj.Value, &od); err != nil {
			return errors.Wrap(err, "could not unmarshal operator data")
		}
		if (od.ID >= from && od.ID <= to) || to == 0 {
			operators = append(operators, od)
		}
		return nil
	})
	return operators, err
}

// OperatorIDs returns the ordered list of live operator ids.
func (s *operatorsStorage) OperatorIDs(r basedb.Reader) ([]uint64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.getOperatorIDs(r)
}

func (s *operatorsStorage) getOperatorIDs(r basedb.Reader) ([]uint64, error) {
	obj, found, err := s.db.UsingReader(r).Get(s.prefix, buildIDsKey())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var ids []uint64
	if err := json.Unmarshal(obj.Value, &ids); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal operator ids")
	}
	return ids, nil
}

func (s *operatorsStorage) saveOperatorIDs(rw basedb.ReadWriter, ids []uint64) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return errors.Wrap(err, "could not marshal operator ids")
	}
	return s.db.Using(rw).Set(s.prefix, buildIDsKey(), raw)
}

// SaveOperatorData persists a new operator record along with its owner index
// entry and a slot in the live-id list. A zero id is assigned from the
// sequence; ids are never reused, also after the record is deleted.
func (s *operatorsStorage) SaveOperatorData(rw basedb.ReadWriter, operatorData *OperatorData) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if operatorData.ID == 0 {
		id, err := s.nextOperatorID(rw)
		if err != nil {
			return errors.Wrap(err, "could not assign next operator id")
		}
		operatorData.ID = id
	}

	_, found, err := s.getOperatorData(rw, operatorData.ID)
	if err != nil {
		return errors.Wrap(err, "could not get operator data")
	}
	if found {
		return errors.Errorf("operator %d already exists", operatorData.ID)
	}
	_, found, err = s.getOperatorID(rw, operatorData.RewardAddress)
	if err != nil {
		return errors.Wrap(err, "could not get owner index entry")
	}
	if found {
		return errors.Errorf("owner %s already indexed", operatorData.RewardAddress.Hex())
	}

	raw, err := json.Marshal(operatorData)
	if err != nil {
		return errors.Wrap(err, "could not marshal operator data")
	}
	if err := s.db.Using(rw).Set(s.prefix, buildOperatorKey(operatorData.ID), raw); err != nil {
		return errors.Wrap(err, "could not save operator data")
	}

	idBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(idBytes, operatorData.ID)
	if err := s.db.Using(rw).Set(s.prefix, buildOwnerKey(operatorData.RewardAddress), idBytes); err != nil {
		return errors.Wrap(err, "could not save owner index entry")
	}

	ids, err := s.getOperatorIDs(rw)
	if err != nil {
		return err
	}
	return s.saveOperatorIDs(rw, append(ids, operatorData.ID))
}

// UpdateOperatorData rewrites an existing record in place. The reward address
// is part of the identity and never changes, so the owner index and the
// live-id list are left untouched.
func (s *operatorsStorage) UpdateOperatorData(rw basedb.ReadWriter, operatorData *OperatorData) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	stored, found, err := s.getOperatorData(rw, operatorData.ID)
	if err != nil {
		return errors.Wrap(err, "could not get operator data")
	}
	if !found {
		return errors.Errorf("operator %d not found", operatorData.ID)
	}
	if stored.RewardAddress != operatorData.RewardAddress {
		return errors.Errorf("operator %d reward address is immutable", operatorData.ID)
	}

	raw, err := json.Marshal(operatorData)
	if err != nil {
		return errors.Wrap(err, "could not marshal operator data")
	}
	return s.db.Using(rw).Set(s.prefix, buildOperatorKey(operatorData.ID), raw)
}

// DeleteOperatorData removes the record, its owner index entry and its
// live-id slot. The freed slot is filled by the last listed id, so the list
// stays compact at the cost of ordering.
func (s *operatorsStorage) DeleteOperatorData(rw basedb.ReadWriter, id uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	stored, found, err := s.getOperatorData(rw, id)
	if err != nil {
		return errors.Wrap(err, "could not get operator data")
	}
	if !found {
		return errors.Errorf("operator %d not found", id)
	}

	if err := s.db.Using(rw).Delete(s.prefix, buildOperatorKey(id)); err != nil {
		return errors.Wrap(err, "could not delete operator data")
	}
	if err := s.db.Using(rw).Delete(s.prefix, buildOwnerKey(stored.RewardAddress)); err != nil {
		return errors.Wrap(err, "could not delete owner index entry")
	}

	ids, err := s.getOperatorIDs(rw)
	if err != nil {
		return err
	}
	for i, listed := range ids {
		if listed == id {
			ids[i] = ids[len(ids)-1]
			ids = ids[:len(ids)-1]
			break
		}
	}
	return s.saveOperatorIDs(rw, ids)
}

func (s *operatorsStorage) nextOperatorID(rw basedb.ReadWriter) (uint64, error) {
	var lastID uint64
	obj, found, err := s.db.Using(rw).Get(s.prefix, buildSequenceKey())
	if err != nil {
		return 0, err
	}
	if found {
		if len(obj.Value) != 8 {
			return 0, errors.Errorf("malformed id sequence of %d bytes", len(obj.Value))
		}
		lastID = binary.BigEndian.Uint64(obj.Value)
	}

	next := make([]byte, 8)
	binary.BigEndian.PutUint64(next, lastID+1)
	if err := s.db.Using(rw).Set(s.prefix, buildSequenceKey(), next); err != nil {
		return 0, err
	}
	return lastID + 1, nil
}

// buildOperatorKey builds operator key using operatorsPrefix & id, e.g. "operators/1"
func buildOperatorKey(id uint64) []byte {
	return bytes.Join([][]byte{operatorsPrefix, []byte(strconv.FormatUint(id, 10))}, []byte("/"))
}

// buildOwnerKey builds owner index key using ownersPrefix & owner address, e.g. "owners/0x00..01"
func buildOwnerKey(owner common.Address) []byte {
	return bytes.Join([][]byte{ownersPrefix, owner.Bytes()}, []byte("/"))
}

func buildSequenceKey() []byte {
	return bytes.Join([][]byte{sequencePrefix, operatorsPrefix}, []byte("/"))
}

func buildIDsKey() []byte {
	return bytes.Join([][]byte{idsPrefix, operatorsPrefix}, []byte("/"))
}
