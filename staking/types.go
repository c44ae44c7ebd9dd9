package staking

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Wire types of the staking gateway API. Token amounts travel as base-10
// strings so they survive JSON number precision limits.

type CreateValidatorResponse struct {
	Address common.Address `json:"address"`
}

type StakeRequest struct {
	Owner        common.Address `json:"owner"`
	Amount       string         `json:"amount"`
	HeimdallFee  string         `json:"heimdallFee"`
	AutoRenew    bool           `json:"autoRenew"`
	SignerPubkey hexutil.Bytes  `json:"signerPubkey"`
}

type UnstakeRequest struct {
	ValidatorID uint64 `json:"validatorId"`
}

type TopUpRequest struct {
	Owner       common.Address `json:"owner"`
	HeimdallFee string         `json:"heimdallFee"`
}

type UnstakeClaimRequest struct {
	Owner       common.Address `json:"owner"`
	ValidatorID uint64         `json:"validatorId"`
}

type UnstakeClaimResponse struct {
	Amount           string `json:"amount"`
	RemainingRewards string `json:"remainingRewards"`
}

type WithdrawRewardsRequest struct {
	ValidatorID uint64 `json:"validatorId"`
}

type AmountResponse struct {
	Amount string `json:"amount"`
}

type ValidatorIDResponse struct {
	ValidatorID uint64 `json:"validatorId"`
}

type ValidatorContractResponse struct {
	Address common.Address `json:"address"`
}
