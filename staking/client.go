package staking

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Options configures the connection to the staking gateway.
type Options struct {
	Address        string        `yaml:"Address" env:"STAKING_GATEWAY_ADDRESS" env-description:"Base URL of the staking gateway"`
	RequestTimeout time.Duration `yaml:"RequestTimeout" env:"STAKING_GATEWAY_REQUEST_TIMEOUT" env-default:"30s" env-description:"Timeout of a single gateway request"`
}

// GatewayClient talks to the staking gateway that fronts the validator
// factory and the stake manager. It implements both interfaces; per-operator
// validator clients are bound with Validator.
type GatewayClient struct {
	logger     *zap.Logger
	baseURL    string
	httpClient *http.Client

	// Collapses concurrent identical lookups into a single request.
	lookupSf singleflight.Group
}

var (
	_ ValidatorFactory = (*GatewayClient)(nil)
	_ StakeManager     = (*GatewayClient)(nil)
)

func NewGatewayClient(baseURL string, opts ...ClientOption) *GatewayClient {
	baseURL = strings.TrimRight(baseURL, "/")

	c := &GatewayClient{
		logger:  zap.NewNop(),
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type ClientOption func(*GatewayClient)

func WithLogger(logger *zap.Logger) ClientOption {
	return func(client *GatewayClient) {
		client.logger = logger
	}
}

func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(client *GatewayClient) {
		client.httpClient.Timeout = timeout
	}
}

// Create deploys a fresh validator contract through the gateway.
func (c *GatewayClient) Create(ctx context.Context) (common.Address, error) {
	var resp CreateValidatorResponse
	start := time.Now()
	err := requests.
		URL(c.baseURL).
		Client(c.httpClient).
		Path("/v1/validators").
		Post().
		ToJSON(&resp).
		Fetch(ctx)
	recordRequestDuration(ctx, c.baseURL, "create_validator", time.Since(start))
	if err != nil {
		return common.Address{}, fmt.Errorf("request failed: %w", err)
	}
	if resp.Address == (common.Address{}) {
		return common.Address{}, errors.New("gateway returned a zero validator address")
	}

	c.logger.Debug("created validator contract", zap.String("address", resp.Address.Hex()))
	return resp.Address, nil
}

// Validator binds a client to the validator contract at the given address.
func (c *GatewayClient) Validator(contract common.Address) Validator {
	return &validatorClient{gateway: c, contract: contract}
}

// ValidatorID looks up the stake-manager id of the given validator contract.
func (c *GatewayClient) ValidatorID(ctx context.Context, validatorContract common.Address) (uint64, error) {
	sfKey := fmt.Sprintf("validator-id/%s", validatorContract.Hex())
	val, err, _ := c.lookupSf.Do(sfKey, func() (any, error) {
		var resp ValidatorIDResponse
		start := time.Now()
		err := requests.
			URL(c.baseURL).
			Client(c.httpClient).
			Path("/v1/stake-manager/validator-id").
			Param("contract", validatorContract.Hex()).
			ToJSON(&resp).
			Fetch(ctx)
		recordRequestDuration(ctx, c.baseURL, "validator_id", time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		return resp.ValidatorID, nil
	})
	if err != nil {
		return 0, err
	}
	return val.(uint64), nil
}

// ValidatorContract returns the share contract of the given validator.
func (c *GatewayClient) ValidatorContract(ctx context.Context, validatorID uint64) (common.Address, error) {
	sfKey := fmt.Sprintf("validator-contract/%d", validatorID)
	val, err, _ := c.lookupSf.Do(sfKey, func() (any, error) {
		var resp ValidatorContractResponse
		start := time.Now()
		err := requests.
			URL(c.baseURL).
			Client(c.httpClient).
			Pathf("/v1/stake-manager/validators/%d/contract", validatorID).
			ToJSON(&resp).
			Fetch(ctx)
		recordRequestDuration(ctx, c.baseURL, "validator_contract", time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		return resp.Address, nil
	})
	if err != nil {
		return common.Address{}, err
	}
	return val.(common.Address), nil
}

// ValidatorStake returns the current stake of the given validator.
func (c *GatewayClient) ValidatorStake(ctx context.Context, validatorID uint64) (*big.Int, error) {
	sfKey := fmt.Sprintf("validator-stake/%d", validatorID)
	val, err, _ := c.lookupSf.Do(sfKey, func() (any, error) {
		var resp AmountResponse
		start := time.Now()
		err := requests.
			URL(c.baseURL).
			Client(c.httpClient).
			Pathf("/v1/stake-manager/validators/%d/stake", validatorID).
			ToJSON(&resp).
			Fetch(ctx)
		recordRequestDuration(ctx, c.baseURL, "validator_stake", time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		return parseAmount(resp.Amount)
	})
	if err != nil {
		return nil, err
	}
	return val.(*big.Int), nil
}

// Healthy probes the gateway's health endpoint.
func (c *GatewayClient) Healthy(ctx context.Context) error {
	start := time.Now()
	err := requests.
		URL(c.baseURL).
		Client(c.httpClient).
		Path("/v1/health").
		Fetch(ctx)
	recordRequestDuration(ctx, c.baseURL, "health", time.Since(start))
	if err != nil {
		recordGatewayStatus(ctx, c.baseURL, statusFailure)
		return fmt.Errorf("request failed: %w", err)
	}

	recordGatewayStatus(ctx, c.baseURL, statusHealthy)
	return nil
}

type validatorClient struct {
	gateway  *GatewayClient
	contract common.Address
}

func (v *validatorClient) Stake(ctx context.Context, owner common.Address, amount *big.Int, heimdallFee *big.Int, autoRenew bool, signerPubkey []byte) error {
	req := StakeRequest{
		Owner:        owner,
		Amount:       bigString(amount),
		HeimdallFee:  bigString(heimdallFee),
		AutoRenew:    autoRenew,
		SignerPubkey: signerPubkey,
	}
	start := time.Now()
	err := requests.
		URL(v.gateway.baseURL).
		Client(v.gateway.httpClient).
		Pathf("/v1/validators/%s/stake", v.contract.Hex()).
		BodyJSON(req).
		Post().
		Fetch(ctx)
	recordRequestDuration(ctx, v.gateway.baseURL, "stake", time.Since(start))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	return nil
}

func (v *validatorClient) Unstake(ctx context.Context, validatorID uint64) error {
	req := UnstakeRequest{ValidatorID: validatorID}
	start := time.Now()
	err := requests.
		URL(v.gateway.baseURL).
		Client(v.gateway.httpClient).
		Pathf("/v1/validators/%s/unstake", v.contract.Hex()).
		BodyJSON(req).
		Post().
		Fetch(ctx)
	recordRequestDuration(ctx, v.gateway.baseURL, "unstake", time.Since(start))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	return nil
}

func (v *validatorClient) TopUpForFee(ctx context.Context, owner common.Address, heimdallFee *big.Int) error {
	req := TopUpRequest{
		Owner:       owner,
		HeimdallFee: bigString(heimdallFee),
	}
	start := time.Now()
	err := requests.
		URL(v.gateway.baseURL).
		Client(v.gateway.httpClient).
		Pathf("/v1/validators/%s/fees/top-up", v.contract.Hex()).
		BodyJSON(req).
		Post().
		Fetch(ctx)
	recordRequestDuration(ctx, v.gateway.baseURL, "top_up_fee", time.Since(start))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	return nil
}

func (v *validatorClient) UnstakeClaim(ctx context.Context, owner common.Address, validatorID uint64) (*big.Int, *big.Int, error) {
	req := UnstakeClaimRequest{
		Owner:       owner,
		ValidatorID: validatorID,
	}
	var resp UnstakeClaimResponse
	start := time.Now()
	err := requests.
		URL(v.gateway.baseURL).
		Client(v.gateway.httpClient).
		Pathf("/v1/validators/%s/unstake-claim", v.contract.Hex()).
		BodyJSON(req).
		Post().
		ToJSON(&resp).
		Fetch(ctx)
	recordRequestDuration(ctx, v.gateway.baseURL, "unstake_claim", time.Since(start))
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}

	amount, err := parseAmount(resp.Amount)
	if err != nil {
		return nil, nil, fmt.Errorf("malformed claimed amount: %w", err)
	}
	remaining, err := parseAmount(resp.RemainingRewards)
	if err != nil {
		return nil, nil, fmt.Errorf("malformed remaining rewards: %w", err)
	}

	return amount, remaining, nil
}

func (v *validatorClient) WithdrawRewards(ctx context.Context, validatorID uint64) (*big.Int, error) {
	req := WithdrawRewardsRequest{ValidatorID: validatorID}
	var resp AmountResponse
	start := time.Now()
	err := requests.
		URL(v.gateway.baseURL).
		Client(v.gateway.httpClient).
		Pathf("/v1/validators/%s/rewards/withdraw", v.contract.Hex()).
		BodyJSON(req).
		Post().
		ToJSON(&resp).
		Fetch(ctx)
	recordRequestDuration(ctx, v.gateway.baseURL, "withdraw_rewards", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return parseAmount(resp.Amount)
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a base-10 amount: %q", s)
	}
	return v, nil
}
