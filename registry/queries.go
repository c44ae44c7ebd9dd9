package registry

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	registrystorage "github.com/polystake/noderegistry/registry/storage"
)

// GetNodeOperator returns one operator. Unless full is set the operator
// name is redacted.
func (r *Registry) GetNodeOperator(id uint64, full bool) (*registrystorage.OperatorData, error) {
	operatorData, err := r.operatorByID(nil, id)
	if err != nil {
		return nil, err
	}
	if !full {
		redact(operatorData)
	}
	return operatorData, nil
}

// GetNodeOperatorByOwner returns the operator whose reward address is
// owner. Unless full is set the operator name is redacted.
func (r *Registry) GetNodeOperatorByOwner(owner common.Address, full bool) (*registrystorage.OperatorData, error) {
	operatorData, err := r.operatorByOwner(nil, owner)
	if err != nil {
		return nil, err
	}
	if !full {
		redact(operatorData)
	}
	return operatorData, nil
}

// ListNodeOperators returns operators with from <= id <= to in id order.
// A zero to means unbounded.
func (r *Registry) ListNodeOperators(from, to uint64, full bool) ([]registrystorage.OperatorData, error) {
	operators, err := r.storage.ListOperators(nil, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "could not list operators")
	}
	if !full {
		for i := range operators {
			redact(&operators[i])
		}
	}
	return operators, nil
}

// GetNodeOperatorMany returns the operators with the given ids, skipping
// ids that do not exist.
func (r *Registry) GetNodeOperatorMany(ids []uint64, full bool) ([]registrystorage.OperatorData, error) {
	operators, err := r.storage.GetOperatorDataMany(nil, ids)
	if err != nil {
		return nil, errors.Wrap(err, "could not get operator data")
	}
	if !full {
		for i := range operators {
			redact(&operators[i])
		}
	}
	return operators, nil
}

// OperatorIDs returns the ids of live operators in registration order,
// subject to removal reordering.
func (r *Registry) OperatorIDs() ([]uint64, error) {
	ids, err := r.storage.OperatorIDs(nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not get operator ids")
	}
	return ids, nil
}

// Stats returns the aggregate status counters.
func (r *Registry) Stats() (*registrystorage.Stats, error) {
	return r.getStats(nil)
}

// Contracts returns the collaborator addresses bound at initialization.
func (r *Registry) Contracts() (*registrystorage.RegistryConfig, error) {
	config, found, err := r.storage.GetRegistryConfig(nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not get registry config")
	}
	if !found {
		return nil, errors.Wrap(ErrInvalidState, "registry is not initialized")
	}
	return config, nil
}

// Grants returns the principal's capabilities.
func (r *Registry) Grants(principal common.Address) []registrystorage.Capability {
	return r.gate.Capabilities(principal)
}

// OperatorStake reports the operator's current stake as seen by the stake
// manager.
func (r *Registry) OperatorStake(ctx context.Context, id uint64) (*big.Int, error) {
	operatorData, err := r.operatorByID(nil, id)
	if err != nil {
		return nil, err
	}
	if operatorData.ValidatorID == 0 {
		return nil, errors.Wrapf(ErrInvalidState, "operator %d has never staked", id)
	}

	stake, err := r.manager.ValidatorStake(ctx, operatorData.ValidatorID)
	if err != nil {
		return nil, errors.Wrap(err, "could not get validator stake")
	}
	return stake, nil
}

func redact(operatorData *registrystorage.OperatorData) {
	operatorData.Name = ""
}
