package handlers

import (
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/polystake/noderegistry/api"
	"github.com/polystake/noderegistry/registry"
	registrystorage "github.com/polystake/noderegistry/registry/storage"
)

type Operators struct {
	Registry *registry.Registry
}

func (h *Operators) List(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		IDs      api.Uint64Slice `json:"ids" form:"ids"`
		Owners   api.HexSlice    `json:"owners" form:"owners"`
		Statuses api.StatusSlice `json:"statuses" form:"statuses"`
		Full     bool            `json:"full" form:"full"`
	}
	var response struct {
		Data []*operatorJSON `json:"data"`
	}

	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}

	// Optimize query for fast lookup.
	requestIDs := map[uint64]struct{}{}
	for _, id := range request.IDs {
		requestIDs[id] = struct{}{}
	}
	requestOwners := map[string]struct{}{}
	for _, owner := range request.Owners {
		requestOwners[string(owner)] = struct{}{}
	}
	requestStatuses := map[registrystorage.OperatorStatus]struct{}{}
	for _, status := range request.Statuses {
		requestStatuses[registrystorage.OperatorStatus(status)] = struct{}{}
	}

	operators, err := h.Registry.ListNodeOperators(0, 0, request.Full)
	if err != nil {
		return fmt.Errorf("failed to list operators: %w", err)
	}
	response.Data = make([]*operatorJSON, 0, len(operators))
	for i := range operators {
		operator := &operators[i]
		if len(request.IDs) > 0 {
			if _, ok := requestIDs[operator.ID]; !ok {
				continue
			}
		}
		if len(request.Owners) > 0 {
			if _, ok := requestOwners[string(operator.RewardAddress.Bytes())]; !ok {
				continue
			}
		}
		if len(request.Statuses) > 0 {
			if _, ok := requestStatuses[operator.Status]; !ok {
				continue
			}
		}
		response.Data = append(response.Data, toOperatorJSON(operator))
	}
	return api.Render(w, r, response)
}

func (h *Operators) Get(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		Full bool `json:"full" form:"full"`
	}
	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}
	id, err := operatorID(r)
	if err != nil {
		return err
	}

	operator, err := h.Registry.GetNodeOperator(id, request.Full)
	if err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, toOperatorJSON(operator))
}

// CurrentStake reports the operator's stake as seen by the stake manager.
func (h *Operators) CurrentStake(w http.ResponseWriter, r *http.Request) error {
	id, err := operatorID(r)
	if err != nil {
		return err
	}

	stake, err := h.Registry.OperatorStake(r.Context(), id)
	if err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, struct {
		Stake string `json:"stake"`
	}{Stake: amountString(stake)})
}

func (h *Operators) Add(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		From          common.Address `json:"from"`
		Name          string         `json:"name"`
		RewardAddress common.Address `json:"reward_address"`
		SignerPubkey  hexutil.Bytes  `json:"signer_pubkey"`
	}
	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}

	id, err := h.Registry.AddNodeOperator(r.Context(), request.From, request.Name, request.RewardAddress, request.SignerPubkey)
	if err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, struct {
		ID uint64 `json:"id"`
	}{ID: id})
}

func (h *Operators) Remove(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		From common.Address `json:"from"`
	}
	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}
	id, err := operatorID(r)
	if err != nil {
		return err
	}

	if err := h.Registry.RemoveNodeOperator(r.Context(), request.From, id); err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, okJSON)
}

func (h *Operators) Exit(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		From common.Address `json:"from"`
	}
	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}
	id, err := operatorID(r)
	if err != nil {
		return err
	}

	if err := h.Registry.ExitNodeOperator(r.Context(), request.From, id); err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, okJSON)
}

func (h *Operators) Stake(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		From        common.Address `json:"from"`
		Amount      string         `json:"amount"`
		HeimdallFee string         `json:"heimdall_fee"`
	}
	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}
	amount, err := parseAmount(request.Amount)
	if err != nil {
		return err
	}
	heimdallFee, err := parseAmount(request.HeimdallFee)
	if err != nil {
		return err
	}

	if err := h.Registry.Stake(r.Context(), request.From, amount, heimdallFee); err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, okJSON)
}

func (h *Operators) Unstake(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		From common.Address `json:"from"`
	}
	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}

	if err := h.Registry.Unstake(r.Context(), request.From); err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, okJSON)
}

func (h *Operators) TopUpForFee(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		From        common.Address `json:"from"`
		HeimdallFee string         `json:"heimdall_fee"`
	}
	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}
	heimdallFee, err := parseAmount(request.HeimdallFee)
	if err != nil {
		return err
	}

	if err := h.Registry.TopUpForFee(r.Context(), request.From, heimdallFee); err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, okJSON)
}

func (h *Operators) UnstakeClaim(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		From common.Address `json:"from"`
	}
	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}

	claimed, err := h.Registry.UnstakeClaim(r.Context(), request.From)
	if err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, struct {
		Claimed string `json:"claimed"`
	}{Claimed: amountString(claimed)})
}
