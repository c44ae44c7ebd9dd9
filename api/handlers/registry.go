package handlers

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/polystake/noderegistry/api"
	"github.com/polystake/noderegistry/registry"
	registrystorage "github.com/polystake/noderegistry/registry/storage"
)

type Registry struct {
	Registry *registry.Registry
}

func (h *Registry) Initialize(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		From             common.Address `json:"from"`
		ValidatorFactory common.Address `json:"validator_factory"`
		StakeManager     common.Address `json:"stake_manager"`
		RewardSink       common.Address `json:"reward_sink"`
		StakingToken     common.Address `json:"staking_token"`
	}
	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}

	err := h.Registry.Initialize(r.Context(), request.From, registry.InitializeParams{
		ValidatorFactory: request.ValidatorFactory,
		StakeManager:     request.StakeManager,
		RewardSink:       request.RewardSink,
		StakingToken:     request.StakingToken,
	})
	if err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, okJSON)
}

func (h *Registry) Stats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.Registry.Stats()
	if err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, stats)
}

func (h *Registry) Contracts(w http.ResponseWriter, r *http.Request) error {
	config, err := h.Registry.Contracts()
	if err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, struct {
		ValidatorFactory common.Address `json:"validator_factory"`
		StakeManager     common.Address `json:"stake_manager"`
		RewardSink       common.Address `json:"reward_sink"`
		StakingToken     common.Address `json:"staking_token"`
		InitializedAt    time.Time      `json:"initialized_at"`
	}{
		ValidatorFactory: config.ValidatorFactory,
		StakeManager:     config.StakeManager,
		RewardSink:       config.RewardSink,
		StakingToken:     config.StakingToken,
		InitializedAt:    config.InitializedAt,
	})
}

func (h *Registry) Grants(w http.ResponseWriter, r *http.Request) error {
	principal, err := pathAddress(r, "address")
	if err != nil {
		return err
	}

	return api.Render(w, r, struct {
		Capabilities []registrystorage.Capability `json:"capabilities"`
	}{Capabilities: h.Registry.Grants(principal)})
}

func (h *Registry) Grant(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		From       common.Address `json:"from"`
		Principal  common.Address `json:"principal"`
		Capability string         `json:"capability"`
	}
	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}

	err := h.Registry.GrantCapability(r.Context(), request.From, request.Principal, registrystorage.Capability(request.Capability))
	if err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, okJSON)
}

func (h *Registry) Revoke(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		From       common.Address `json:"from"`
		Principal  common.Address `json:"principal"`
		Capability string         `json:"capability"`
	}
	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}

	err := h.Registry.RevokeCapability(r.Context(), request.From, request.Principal, registrystorage.Capability(request.Capability))
	if err != nil {
		return api.DomainError(err)
	}
	return api.Render(w, r, okJSON)
}

func (h *Registry) WithdrawRewards(w http.ResponseWriter, r *http.Request) error {
	var request struct {
		From common.Address `json:"from"`
	}
	if err := api.Bind(r, &request); err != nil {
		return api.BadRequestError(err)
	}

	result, err := h.Registry.WithdrawRewards(r.Context(), request.From)
	if err != nil {
		return api.DomainError(err)
	}

	shares := make([]string, len(result.Shares))
	for i, share := range result.Shares {
		shares[i] = amountString(share)
	}
	return api.Render(w, r, struct {
		Recipients []common.Address `json:"recipients"`
		Shares     []string         `json:"shares"`
		Total      string           `json:"total"`
	}{
		Recipients: result.Recipients,
		Shares:     shares,
		Total:      amountString(result.Total),
	})
}
