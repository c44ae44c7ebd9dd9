package registry

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/polystake/noderegistry/logging/fields"
	registrystorage "github.com/polystake/noderegistry/registry/storage"
	"github.com/polystake/noderegistry/storage/basedb"
)

// tokenUnit is one staking token in wei. Initial stakes must commit at
// least one token of stake or one token of heimdall fee.
var tokenUnit = big.NewInt(1e18)

// AddNodeOperator registers a new operator, provisions its validator
// contract and puts it in ACTIVE status. Returns the assigned operator id.
func (r *Registry) AddNodeOperator(
	ctx context.Context,
	from common.Address,
	name string,
	rewardAddress common.Address,
	signerPubkey []byte,
) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.addNodeOperator(ctx, from, name, rewardAddress, signerPubkey)
	recordOperation(ctx, "addNodeOperator", err)
	if err != nil {
		return 0, err
	}

	r.logger.Info("added node operator",
		fields.OperatorID(id),
		fields.Name(name),
		fields.OwnerAddress(rewardAddress),
		fields.PubKey(signerPubkey))
	return id, nil
}

func (r *Registry) addNodeOperator(
	ctx context.Context,
	from common.Address,
	name string,
	rewardAddress common.Address,
	signerPubkey []byte,
) (uint64, error) {
	if err := r.gate.Authorize(from, registrystorage.CapabilityAddOperator); err != nil {
		return 0, err
	}
	if len(signerPubkey) != SignerPubkeyLength {
		return 0, errors.Wrapf(ErrInvalidInput, "signer pubkey must be %d bytes, got %d", SignerPubkeyLength, len(signerPubkey))
	}
	if rewardAddress == (common.Address{}) {
		return 0, errors.Wrap(ErrInvalidInput, "zero reward address")
	}

	txn := r.storage.Begin()
	defer txn.Discard()

	_, found, err := r.storage.GetOperatorID(txn, rewardAddress)
	if err != nil {
		return 0, errors.Wrap(err, "could not get owner index entry")
	}
	if found {
		return 0, errors.Wrapf(ErrInvalidInput, "reward address %s already in use", rewardAddress.Hex())
	}

	contract, err := r.factory.Create(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not create validator contract")
	}

	operatorData := &registrystorage.OperatorData{
		Status:            registrystorage.StatusActive,
		Name:              name,
		RewardAddress:     rewardAddress,
		SignerPubkey:      signerPubkey,
		ValidatorContract: contract,
	}
	if err := r.storage.SaveOperatorData(txn, operatorData); err != nil {
		return 0, errors.Wrap(err, "could not save operator data")
	}

	stats, err := r.getStats(txn)
	if err != nil {
		return 0, err
	}
	stats.Total++
	stats.Active++
	if err := r.storage.SaveStats(txn, stats); err != nil {
		return 0, errors.Wrap(err, "could not save stats")
	}

	if err := txn.Commit(); err != nil {
		return 0, errors.Wrap(err, "could not commit transaction")
	}

	recordStats(ctx, stats)
	r.feed.Send(Event{
		Kind:       EventNewOperator,
		OperatorID: operatorData.ID,
		Name:       name,
		Pubkey:     signerPubkey,
		Status:     operatorData.Status,
		Caller:     from,
	})
	return operatorData.ID, nil
}

// RemoveNodeOperator deletes an exited operator from the table. Its id is
// never reused.
func (r *Registry) RemoveNodeOperator(ctx context.Context, from common.Address, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.removeNodeOperator(ctx, from, id)
	recordOperation(ctx, "removeNodeOperator", err)
	if err != nil {
		return err
	}

	r.logger.Info("removed node operator", fields.OperatorID(id))
	return nil
}

func (r *Registry) removeNodeOperator(ctx context.Context, from common.Address, id uint64) error {
	if err := r.gate.Authorize(from, registrystorage.CapabilityRemoveOperator); err != nil {
		return err
	}

	txn := r.storage.Begin()
	defer txn.Discard()

	operatorData, err := r.operatorByID(txn, id)
	if err != nil {
		return err
	}
	if operatorData.Status != registrystorage.StatusExit {
		return errors.Wrapf(ErrInvalidState, "operator %d is %s, must be %s to be removed",
			id, operatorData.Status, registrystorage.StatusExit)
	}

	if err := r.storage.DeleteOperatorData(txn, id); err != nil {
		return errors.Wrap(err, "could not delete operator data")
	}

	stats, err := r.getStats(txn)
	if err != nil {
		return err
	}
	stats.Total--
	stats.Exited--
	if err := r.storage.SaveStats(txn, stats); err != nil {
		return errors.Wrap(err, "could not save stats")
	}

	if err := txn.Commit(); err != nil {
		return errors.Wrap(err, "could not commit transaction")
	}

	recordStats(ctx, stats)
	r.feed.Send(Event{
		Kind:       EventRemoveOperator,
		OperatorID: id,
		Caller:     from,
	})
	return nil
}

// ExitNodeOperator marks an active operator as exited without touching its
// stake. Used to retire operators that never staked, or after an off-band
// unstake settled.
func (r *Registry) ExitNodeOperator(ctx context.Context, from common.Address, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.exitNodeOperator(ctx, from, id)
	recordOperation(ctx, "exitNodeOperator", err)
	if err != nil {
		return err
	}

	r.logger.Info("exited node operator", fields.OperatorID(id))
	return nil
}

func (r *Registry) exitNodeOperator(ctx context.Context, from common.Address, id uint64) error {
	if err := r.gate.Authorize(from, registrystorage.CapabilityExitOperator); err != nil {
		return err
	}

	txn := r.storage.Begin()
	defer txn.Discard()

	operatorData, err := r.operatorByID(txn, id)
	if err != nil {
		return err
	}
	if operatorData.Status != registrystorage.StatusActive {
		return errors.Wrapf(ErrInvalidState, "operator %d is %s, must be %s to exit",
			id, operatorData.Status, registrystorage.StatusActive)
	}

	operatorData.Status = registrystorage.StatusExit
	if err := r.storage.UpdateOperatorData(txn, operatorData); err != nil {
		return errors.Wrap(err, "could not update operator data")
	}

	stats, err := r.getStats(txn)
	if err != nil {
		return err
	}
	stats.Active--
	stats.Exited++
	if err := r.storage.SaveStats(txn, stats); err != nil {
		return errors.Wrap(err, "could not save stats")
	}

	if err := txn.Commit(); err != nil {
		return errors.Wrap(err, "could not commit transaction")
	}

	recordStats(ctx, stats)
	return nil
}

// Stake moves the caller's operator from ACTIVE to STAKED, delegating the
// stake through the operator's validator contract and binding the
// validator id and share contract reported by the stake manager.
func (r *Registry) Stake(ctx context.Context, from common.Address, amount, heimdallFee *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	id, err := r.stake(ctx, from, orZero(amount), orZero(heimdallFee))
	recordOperation(ctx, "stake", err)
	if err != nil {
		return err
	}

	r.logger.Info("staked node operator",
		fields.OperatorID(id),
		fields.Amount(orZero(amount)),
		fields.Took(time.Since(start)))
	return nil
}

func (r *Registry) stake(ctx context.Context, from common.Address, amount, heimdallFee *big.Int) (uint64, error) {
	if amount.Cmp(tokenUnit) < 0 && heimdallFee.Cmp(tokenUnit) < 0 {
		return 0, errors.Wrap(ErrInvalidInput, "stake or heimdall fee must be at least one token")
	}

	txn := r.storage.Begin()
	defer txn.Discard()

	operatorData, err := r.operatorByOwner(txn, from)
	if err != nil {
		return 0, err
	}
	if operatorData.Status != registrystorage.StatusActive {
		return 0, errors.Wrapf(ErrInvalidState, "operator %d is %s, must be %s to stake",
			operatorData.ID, operatorData.Status, registrystorage.StatusActive)
	}

	validator := r.factory.Validator(operatorData.ValidatorContract)
	if err := validator.Stake(ctx, from, amount, heimdallFee, true, operatorData.SignerPubkey); err != nil {
		return 0, errors.Wrap(err, "could not stake through validator contract")
	}

	validatorID, err := r.manager.ValidatorID(ctx, operatorData.ValidatorContract)
	if err != nil {
		return 0, errors.Wrap(err, "could not get validator id")
	}
	validatorShare, err := r.manager.ValidatorContract(ctx, validatorID)
	if err != nil {
		return 0, errors.Wrap(err, "could not get validator share contract")
	}
	r.logger.Debug("resolved validator share contract",
		fields.OperatorID(operatorData.ID),
		fields.ValidatorID(validatorID))

	operatorData.Status = registrystorage.StatusStaked
	operatorData.ValidatorID = validatorID
	operatorData.ValidatorShare = validatorShare
	if err := r.storage.UpdateOperatorData(txn, operatorData); err != nil {
		return 0, errors.Wrap(err, "could not update operator data")
	}

	stats, err := r.getStats(txn)
	if err != nil {
		return 0, err
	}
	stats.Active--
	stats.Staked++
	if err := r.storage.SaveStats(txn, stats); err != nil {
		return 0, errors.Wrap(err, "could not save stats")
	}

	if err := txn.Commit(); err != nil {
		return 0, errors.Wrap(err, "could not commit transaction")
	}

	recordStats(ctx, stats)
	r.feed.Send(Event{
		Kind:       EventStakeOperator,
		OperatorID: operatorData.ID,
		Status:     operatorData.Status,
		Caller:     from,
		Amount:     amount,
	})
	return operatorData.ID, nil
}

// Unstake begins withdrawal of the caller's operator stake. The operator
// stays UNSTAKED until the claim settles.
func (r *Registry) Unstake(ctx context.Context, from common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.unstake(ctx, from)
	recordOperation(ctx, "unstake", err)
	if err != nil {
		return err
	}

	r.logger.Info("unstaked node operator", fields.OperatorID(id))
	return nil
}

func (r *Registry) unstake(ctx context.Context, from common.Address) (uint64, error) {
	txn := r.storage.Begin()
	defer txn.Discard()

	operatorData, err := r.operatorByOwner(txn, from)
	if err != nil {
		return 0, err
	}
	if operatorData.Status != registrystorage.StatusStaked {
		return 0, errors.Wrapf(ErrInvalidState, "operator %d is %s, must be %s to unstake",
			operatorData.ID, operatorData.Status, registrystorage.StatusStaked)
	}

	validator := r.factory.Validator(operatorData.ValidatorContract)
	if err := validator.Unstake(ctx, operatorData.ValidatorID); err != nil {
		return 0, errors.Wrap(err, "could not unstake through validator contract")
	}

	operatorData.Status = registrystorage.StatusUnstaked
	if err := r.storage.UpdateOperatorData(txn, operatorData); err != nil {
		return 0, errors.Wrap(err, "could not update operator data")
	}

	stats, err := r.getStats(txn)
	if err != nil {
		return 0, err
	}
	stats.Staked--
	stats.Unstaked++
	if err := r.storage.SaveStats(txn, stats); err != nil {
		return 0, errors.Wrap(err, "could not save stats")
	}

	if err := txn.Commit(); err != nil {
		return 0, errors.Wrap(err, "could not commit transaction")
	}

	recordStats(ctx, stats)
	r.feed.Send(Event{
		Kind:       EventUnstakeOperator,
		OperatorID: operatorData.ID,
		Status:     operatorData.Status,
		Caller:     from,
	})
	return operatorData.ID, nil
}

// TopUpForFee adds heimdall fee balance to the caller's staked operator.
// Registry state does not change.
func (r *Registry) TopUpForFee(ctx context.Context, from common.Address, heimdallFee *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.topUpForFee(ctx, from, orZero(heimdallFee))
	recordOperation(ctx, "topUpForFee", err)
	if err != nil {
		return err
	}

	r.logger.Info("topped up heimdall fees",
		fields.OperatorID(id),
		fields.Amount(orZero(heimdallFee)))
	return nil
}

func (r *Registry) topUpForFee(ctx context.Context, from common.Address, heimdallFee *big.Int) (uint64, error) {
	if heimdallFee.Sign() <= 0 {
		return 0, errors.Wrap(ErrInvalidInput, "heimdall fee must be positive")
	}

	operatorData, err := r.operatorByOwner(nil, from)
	if err != nil {
		return 0, err
	}
	if operatorData.Status != registrystorage.StatusStaked {
		return 0, errors.Wrapf(ErrInvalidState, "operator %d is %s, must be %s to top up fees",
			operatorData.ID, operatorData.Status, registrystorage.StatusStaked)
	}

	validator := r.factory.Validator(operatorData.ValidatorContract)
	if err := validator.TopUpForFee(ctx, from, heimdallFee); err != nil {
		return 0, errors.Wrap(err, "could not top up heimdall fees")
	}

	r.feed.Send(Event{
		Kind:       EventTopUpHeimdallFees,
		OperatorID: operatorData.ID,
		Caller:     from,
		Amount:     heimdallFee,
	})
	return operatorData.ID, nil
}

// UnstakeClaim settles the caller's pending withdrawal. Once nothing is
// left to claim the operator moves to EXIT. Returns the claimed amount.
func (r *Registry) UnstakeClaim(ctx context.Context, from common.Address) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, claimed, err := r.unstakeClaim(ctx, from)
	recordOperation(ctx, "unstakeClaim", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info("claimed unstaked amount",
		fields.OperatorID(id),
		fields.Amount(claimed))
	return claimed, nil
}

func (r *Registry) unstakeClaim(ctx context.Context, from common.Address) (uint64, *big.Int, error) {
	txn := r.storage.Begin()
	defer txn.Discard()

	operatorData, err := r.operatorByOwner(txn, from)
	if err != nil {
		return 0, nil, err
	}
	if operatorData.Status != registrystorage.StatusUnstaked {
		return 0, nil, errors.Wrapf(ErrInvalidState, "operator %d is %s, must be %s to claim",
			operatorData.ID, operatorData.Status, registrystorage.StatusUnstaked)
	}

	validator := r.factory.Validator(operatorData.ValidatorContract)
	claimed, remaining, err := validator.UnstakeClaim(ctx, from, operatorData.ValidatorID)
	if err != nil {
		return 0, nil, errors.Wrap(err, "could not claim unstaked amount")
	}

	if orZero(remaining).Sign() == 0 {
		operatorData.Status = registrystorage.StatusExit
		if err := r.storage.UpdateOperatorData(txn, operatorData); err != nil {
			return 0, nil, errors.Wrap(err, "could not update operator data")
		}

		stats, err := r.getStats(txn)
		if err != nil {
			return 0, nil, err
		}
		stats.Unstaked--
		stats.Exited++
		if err := r.storage.SaveStats(txn, stats); err != nil {
			return 0, nil, errors.Wrap(err, "could not save stats")
		}

		if err := txn.Commit(); err != nil {
			return 0, nil, errors.Wrap(err, "could not commit transaction")
		}
		recordStats(ctx, stats)
	}

	r.feed.Send(Event{
		Kind:       EventClaimUnstake,
		OperatorID: operatorData.ID,
		Status:     operatorData.Status,
		Caller:     from,
		Amount:     claimed,
	})
	return operatorData.ID, orZero(claimed), nil
}

func (r *Registry) operatorByID(txn basedb.Reader, id uint64) (*registrystorage.OperatorData, error) {
	operatorData, found, err := r.storage.GetOperatorData(txn, id)
	if err != nil {
		return nil, errors.Wrap(err, "could not get operator data")
	}
	if !found {
		return nil, errors.Wrapf(ErrNotFound, "operator %d", id)
	}
	return operatorData, nil
}

func (r *Registry) operatorByOwner(txn basedb.Reader, owner common.Address) (*registrystorage.OperatorData, error) {
	id, found, err := r.storage.GetOperatorID(txn, owner)
	if err != nil {
		return nil, errors.Wrap(err, "could not get owner index entry")
	}
	if !found {
		return nil, errors.Wrapf(ErrNotFound, "no operator for address %s", owner.Hex())
	}
	return r.operatorByID(txn, id)
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
