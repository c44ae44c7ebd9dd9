package handlers

import (
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/polystake/noderegistry/api"
	registrystorage "github.com/polystake/noderegistry/registry/storage"
)

type operatorJSON struct {
	ID                uint64     `json:"id"`
	Status            api.Status `json:"status"`
	Name              string     `json:"name,omitempty"`
	RewardAddress     api.Hex    `json:"reward_address"`
	SignerPubkey      api.Hex    `json:"signer_pubkey"`
	ValidatorID       uint64     `json:"validator_id"`
	ValidatorContract api.Hex    `json:"validator_contract"`
	ValidatorShare    api.Hex    `json:"validator_share"`
}

func toOperatorJSON(operator *registrystorage.OperatorData) *operatorJSON {
	return &operatorJSON{
		ID:                operator.ID,
		Status:            api.Status(operator.Status),
		Name:              operator.Name,
		RewardAddress:     api.Hex(operator.RewardAddress.Bytes()),
		SignerPubkey:      api.Hex(operator.SignerPubkey),
		ValidatorID:       operator.ValidatorID,
		ValidatorContract: api.Hex(operator.ValidatorContract.Bytes()),
		ValidatorShare:    api.Hex(operator.ValidatorShare.Bytes()),
	}
}

type statusJSON struct {
	Status string `json:"status"`
}

var okJSON = statusJSON{Status: "ok"}

// operatorID parses the {id} route parameter.
func operatorID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, api.BadRequestError(fmt.Errorf("invalid operator id: %w", err))
	}
	return id, nil
}

// pathAddress parses a 0x-prefixed address route parameter.
func pathAddress(r *http.Request, name string) (common.Address, error) {
	value := chi.URLParam(r, name)
	if !common.IsHexAddress(value) {
		return common.Address{}, api.BadRequestError(fmt.Errorf("invalid address %q", value))
	}
	return common.HexToAddress(value), nil
}

// parseAmount parses a base-10 token amount, mapping the empty string to nil
// so that omitted amounts keep their zero meaning.
func parseAmount(value string) (*big.Int, error) {
	if value == "" {
		return nil, nil
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, api.BadRequestError(fmt.Errorf("invalid amount %q", value))
	}
	return amount, nil
}

func amountString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}
