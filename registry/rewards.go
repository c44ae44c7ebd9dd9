package registry

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/polystake/noderegistry/logging/fields"
	registrystorage "github.com/polystake/noderegistry/registry/storage"
)

// WithdrawResult reports one reward withdrawal round. Shares are whole
// percents of the round total, index-aligned with Recipients.
type WithdrawResult struct {
	Shares     []*big.Int
	Recipients []common.Address
	Total      *big.Int
}

// WithdrawRewards sweeps accumulated rewards from every staked operator
// and reports each operator's proportional share of the round. Only the
// reward sink bound at initialization may call it.
func (r *Registry) WithdrawRewards(ctx context.Context, from common.Address) (*WithdrawResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.withdrawRewards(ctx, from)
	recordOperation(ctx, "withdrawRewards", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info("withdrew rewards",
		fields.Count(len(result.Recipients)),
		fields.TotalRewards(result.Total),
		fields.Shares(result.Shares))
	return result, nil
}

func (r *Registry) withdrawRewards(ctx context.Context, from common.Address) (*WithdrawResult, error) {
	config, found, err := r.storage.GetRegistryConfig(nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not get registry config")
	}
	if !found {
		return nil, errors.Wrap(ErrInvalidState, "registry is not initialized")
	}
	if from != config.RewardSink {
		return nil, errors.Wrapf(ErrUnauthorizedCaller, "%s is not the reward sink", from.Hex())
	}

	txn := r.storage.BeginRead()
	defer txn.Discard()

	ids, err := r.storage.OperatorIDs(txn)
	if err != nil {
		return nil, errors.Wrap(err, "could not get operator ids")
	}
	r.logger.Debug("sweeping operator rewards", fields.OperatorIDs(ids))
	operators, err := r.storage.GetOperatorDataMany(txn, ids)
	if err != nil {
		return nil, errors.Wrap(err, "could not get operator data")
	}

	var (
		amounts    []*big.Int
		recipients []common.Address
		total      = new(big.Int)
	)
	for _, operatorData := range operators {
		if operatorData.Status != registrystorage.StatusStaked {
			continue
		}
		validator := r.factory.Validator(operatorData.ValidatorContract)
		amount, err := validator.WithdrawRewards(ctx, operatorData.ValidatorID)
		if err != nil {
			return nil, errors.Wrapf(err, "could not withdraw rewards of operator %d", operatorData.ID)
		}
		amount = orZero(amount)

		amounts = append(amounts, amount)
		recipients = append(recipients, operatorData.RewardAddress)
		total.Add(total, amount)
	}

	shares := make([]*big.Int, len(amounts))
	for i, amount := range amounts {
		if total.Sign() == 0 {
			shares[i] = new(big.Int)
			continue
		}
		shares[i] = new(big.Int).Div(new(big.Int).Mul(amount, big.NewInt(100)), total)
	}

	rewardWithdrawalsCounter.Add(ctx, int64(len(recipients)))
	r.feed.Send(Event{
		Kind:   EventWithdrawRewards,
		Caller: from,
		Amount: total,
	})
	return &WithdrawResult{
		Shares:     shares,
		Recipients: recipients,
		Total:      total,
	}, nil
}
