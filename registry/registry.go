package registry

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/logging"
	"github.com/polystake/noderegistry/logging/fields"
	registrystorage "github.com/polystake/noderegistry/registry/storage"
	"github.com/polystake/noderegistry/staking"
	"github.com/polystake/noderegistry/storage/basedb"
)

// Version of the registry API.
const Version = "1.0.0"

// SignerPubkeyLength is the required byte length of an operator signer
// pubkey. Only the length is validated, never the curve point.
const SignerPubkeyLength = 64

// Registry owns the node operator table and drives operators through the
// register, stake, unstake, claim and exit lifecycle. All mutating
// operations serialize on a single mutex and commit through a single
// storage transaction, so observers never see partial state.
type Registry struct {
	logger  *zap.Logger
	storage registrystorage.Storage
	gate    *AccessGate
	factory staking.ValidatorFactory
	manager staking.StakeManager
	feed    *EventFeed[Event]

	mu sync.Mutex
}

type Option func(*Registry)

// WithLogger enables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger.Named(logging.NameRegistry)
	}
}

// WithAccessGate shares an externally constructed gate. Persisted grants
// are still loaded into it on startup.
func WithAccessGate(gate *AccessGate) Option {
	return func(r *Registry) {
		r.gate = gate
	}
}

func New(
	storage registrystorage.Storage,
	factory staking.ValidatorFactory,
	manager staking.StakeManager,
	opts ...Option,
) (*Registry, error) {
	r := &Registry{
		logger:  zap.NewNop(),
		storage: storage,
		gate:    NewAccessGate(),
		factory: factory,
		manager: manager,
		feed:    NewEventFeed[Event](),
	}
	for _, opt := range opts {
		opt(r)
	}

	grants, err := storage.ListGrants(nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not load capability grants")
	}
	for principal, capabilities := range grants {
		for _, capability := range capabilities {
			r.gate.Grant(principal, capability)
		}
	}

	return r, nil
}

// Subscribe registers a channel for committed registry events.
func (r *Registry) Subscribe(ch chan<- Event) event.Subscription {
	return r.feed.Subscribe(ch)
}

// InitializeParams carries the collaborator contract addresses bound at
// initialization. All four must be non-zero.
type InitializeParams struct {
	ValidatorFactory common.Address
	StakeManager     common.Address
	RewardSink       common.Address
	StakingToken     common.Address
}

func (p InitializeParams) validate() error {
	zero := common.Address{}
	switch {
	case p.ValidatorFactory == zero:
		return errors.Wrap(ErrInvalidInput, "zero validator factory address")
	case p.StakeManager == zero:
		return errors.Wrap(ErrInvalidInput, "zero stake manager address")
	case p.RewardSink == zero:
		return errors.Wrap(ErrInvalidInput, "zero reward sink address")
	case p.StakingToken == zero:
		return errors.Wrap(ErrInvalidInput, "zero staking token address")
	}
	return nil
}

// Initialize binds the collaborator addresses and grants the initializer
// the admin and operator lifecycle capabilities. It can succeed once.
func (r *Registry) Initialize(ctx context.Context, from common.Address, params InitializeParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.initialize(from, params)
	recordOperation(ctx, "initialize", err)
	if err != nil {
		return err
	}

	r.logger.Info("registry initialized",
		fields.OwnerAddress(from),
		fields.Version(Version))
	return nil
}

func (r *Registry) initialize(from common.Address, params InitializeParams) error {
	if from == (common.Address{}) {
		return errors.Wrap(ErrInvalidInput, "zero initializer address")
	}
	if err := params.validate(); err != nil {
		return err
	}

	txn := r.storage.Begin()
	defer txn.Discard()

	_, found, err := r.storage.GetRegistryConfig(txn)
	if err != nil {
		return errors.Wrap(err, "could not get registry config")
	}
	if found {
		return errors.Wrap(ErrInvalidState, "registry already initialized")
	}

	config := &registrystorage.RegistryConfig{
		ValidatorFactory: params.ValidatorFactory,
		StakeManager:     params.StakeManager,
		RewardSink:       params.RewardSink,
		StakingToken:     params.StakingToken,
		InitializedAt:    time.Now().UTC(),
	}
	if err := r.storage.SaveRegistryConfig(txn, config); err != nil {
		return errors.Wrap(err, "could not save registry config")
	}

	granted := []registrystorage.Capability{
		registrystorage.CapabilityAdmin,
		registrystorage.CapabilityAddOperator,
		registrystorage.CapabilityRemoveOperator,
		registrystorage.CapabilityExitOperator,
	}
	if err := r.storage.SaveGrants(txn, from, granted); err != nil {
		return errors.Wrap(err, "could not save initializer grants")
	}

	if err := txn.Commit(); err != nil {
		return errors.Wrap(err, "could not commit transaction")
	}

	for _, capability := range granted {
		r.gate.Grant(from, capability)
	}
	return nil
}

// GrantCapability persists a capability grant for the principal. Only
// admins may call it, and only operational capabilities can be granted.
func (r *Registry) GrantCapability(ctx context.Context, from, principal common.Address, capability registrystorage.Capability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.grantCapability(from, principal, capability)
	recordOperation(ctx, "grantCapability", err)
	if err != nil {
		return err
	}

	r.logger.Info("granted capability",
		fields.OwnerAddress(principal),
		fields.Capability(string(capability)))
	return nil
}

func (r *Registry) grantCapability(from, principal common.Address, capability registrystorage.Capability) error {
	if err := r.gate.Authorize(from, registrystorage.CapabilityAdmin); err != nil {
		return err
	}
	if principal == (common.Address{}) {
		return errors.Wrap(ErrInvalidInput, "zero principal address")
	}
	if !capability.Operational() {
		return errors.Wrapf(ErrInvalidInput, "capability %q is not grantable", capability)
	}

	txn := r.storage.Begin()
	defer txn.Discard()

	granted, _, err := r.storage.GetGrants(txn, principal)
	if err != nil {
		return errors.Wrap(err, "could not get capability grants")
	}
	if !slices.Contains(granted, capability) {
		granted = append(granted, capability)
		if err := r.storage.SaveGrants(txn, principal, granted); err != nil {
			return errors.Wrap(err, "could not save capability grants")
		}
		if err := txn.Commit(); err != nil {
			return errors.Wrap(err, "could not commit transaction")
		}
	}

	r.gate.Grant(principal, capability)
	return nil
}

// RevokeCapability removes a capability grant from the principal. Only
// admins may call it. Revoking an absent grant is a no-op.
func (r *Registry) RevokeCapability(ctx context.Context, from, principal common.Address, capability registrystorage.Capability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.revokeCapability(from, principal, capability)
	recordOperation(ctx, "revokeCapability", err)
	if err != nil {
		return err
	}

	r.logger.Info("revoked capability",
		fields.OwnerAddress(principal),
		fields.Capability(string(capability)))
	return nil
}

func (r *Registry) revokeCapability(from, principal common.Address, capability registrystorage.Capability) error {
	if err := r.gate.Authorize(from, registrystorage.CapabilityAdmin); err != nil {
		return err
	}
	if !capability.Operational() {
		return errors.Wrapf(ErrInvalidInput, "capability %q is not revocable", capability)
	}

	txn := r.storage.Begin()
	defer txn.Discard()

	granted, _, err := r.storage.GetGrants(txn, principal)
	if err != nil {
		return errors.Wrap(err, "could not get capability grants")
	}
	if slices.Contains(granted, capability) {
		kept := slices.DeleteFunc(granted, func(c registrystorage.Capability) bool {
			return c == capability
		})
		if err := r.storage.SaveGrants(txn, principal, kept); err != nil {
			return errors.Wrap(err, "could not save capability grants")
		}
		if err := txn.Commit(); err != nil {
			return errors.Wrap(err, "could not commit transaction")
		}
	}

	r.gate.Revoke(principal, capability)
	return nil
}

// getStats reads the aggregate counters, defaulting to zeroes before the
// first operator is registered.
func (r *Registry) getStats(txn basedb.Reader) (*registrystorage.Stats, error) {
	stats, found, err := r.storage.GetStats(txn)
	if err != nil {
		return nil, errors.Wrap(err, "could not get stats")
	}
	if !found {
		return &registrystorage.Stats{}, nil
	}
	return stats, nil
}
