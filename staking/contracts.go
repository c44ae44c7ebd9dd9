package staking

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

//go:generate mockgen -package=mocks -destination=./mocks/contracts.go -source=./contracts.go

// ValidatorFactory deploys per-operator validator contracts and binds
// callers to existing ones.
type ValidatorFactory interface {
	// Create deploys a fresh validator contract and returns its address.
	Create(ctx context.Context) (common.Address, error)

	// Validator binds to the validator contract at the given address.
	Validator(contract common.Address) Validator
}

// Validator fronts a single operator's validator contract.
type Validator interface {
	// Stake delegates the owner's stake, registering the signer pubkey with
	// the stake manager. Amounts are wei-denominated.
	Stake(ctx context.Context, owner common.Address, amount *big.Int, heimdallFee *big.Int, autoRenew bool, signerPubkey []byte) error

	// Unstake starts the unbonding of the given validator.
	Unstake(ctx context.Context, validatorID uint64) error

	// TopUpForFee adds heimdall fee on top of an active stake.
	TopUpForFee(ctx context.Context, owner common.Address, heimdallFee *big.Int) error

	// UnstakeClaim claims the unbonded stake back to the owner. It returns
	// the claimed amount and the rewards still left on the validator; the
	// unbonding completes once the remainder reaches zero.
	UnstakeClaim(ctx context.Context, owner common.Address, validatorID uint64) (amount *big.Int, remainingRewards *big.Int, err error)

	// WithdrawRewards moves the validator's accumulated rewards to its
	// reward address and returns the moved amount.
	WithdrawRewards(ctx context.Context, validatorID uint64) (*big.Int, error)
}

// StakeManager fronts the global stake-manager ledger.
type StakeManager interface {
	// ValidatorID looks up the id the ledger assigned to the given
	// validator contract; zero means not staked yet.
	ValidatorID(ctx context.Context, validatorContract common.Address) (uint64, error)

	// ValidatorContract returns the share contract of the given validator.
	ValidatorContract(ctx context.Context, validatorID uint64) (common.Address, error)

	// ValidatorStake returns the current stake of the given validator.
	ValidatorStake(ctx context.Context, validatorID uint64) (*big.Int, error)
}
