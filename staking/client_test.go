package staking_test

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/polystake/noderegistry/logging"
	"github.com/polystake/noderegistry/staking"
)

func newGatewayForTest(t *testing.T, mux *http.ServeMux) *staking.GatewayClient {
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return staking.NewGatewayClient(srv.URL, staking.WithLogger(logging.TestLogger(t)))
}

func TestGatewayClient_Create(t *testing.T) {
	t.Run("returns the deployed address", func(t *testing.T) {
		contract := common.BytesToAddress([]byte("0xv1"))
		mux := http.NewServeMux()
		handleFunc(mux, "POST /v1/validators", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewEncoder(w).Encode(staking.CreateValidatorResponse{Address: contract}))
		})
		client := newGatewayForTest(t, mux)

		addr, err := client.Create(testContext(t))
		require.NoError(t, err)
		require.Equal(t, contract, addr)
	})

	t.Run("rejects a zero address", func(t *testing.T) {
		mux := http.NewServeMux()
		handleFunc(mux, "POST /v1/validators", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewEncoder(w).Encode(staking.CreateValidatorResponse{}))
		})
		client := newGatewayForTest(t, mux)

		_, err := client.Create(testContext(t))
		require.ErrorContains(t, err, "zero validator address")
	})

	t.Run("maps gateway failures", func(t *testing.T) {
		mux := http.NewServeMux()
		handleFunc(mux, "POST /v1/validators", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		client := newGatewayForTest(t, mux)

		_, err := client.Create(testContext(t))
		require.ErrorContains(t, err, "request failed")
	})
}

func TestGatewayClient_Validator(t *testing.T) {
	owner := common.BytesToAddress([]byte("0xo"))
	contract := common.BytesToAddress([]byte("0xv"))
	pubkey := make([]byte, 64)
	pubkey[0] = 0x1

	mux := http.NewServeMux()

	var stakeReq staking.StakeRequest
	handleFunc(mux, "POST /v1/validators/"+contract.Hex()+"/stake", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&stakeReq))
	})
	var unstakeReq staking.UnstakeRequest
	handleFunc(mux, "POST /v1/validators/"+contract.Hex()+"/unstake", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&unstakeReq))
	})
	var topUpReq staking.TopUpRequest
	handleFunc(mux, "POST /v1/validators/"+contract.Hex()+"/fees/top-up", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&topUpReq))
	})
	handleFunc(mux, "POST /v1/validators/"+contract.Hex()+"/unstake-claim", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(staking.UnstakeClaimResponse{
			Amount:           "1000000000000000000",
			RemainingRewards: "5",
		}))
	})
	handleFunc(mux, "POST /v1/validators/"+contract.Hex()+"/rewards/withdraw", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(staking.AmountResponse{Amount: "42"}))
	})

	client := newGatewayForTest(t, mux)
	validator := client.Validator(contract)

	t.Run("stake carries amounts as base-10 strings", func(t *testing.T) {
		amount, _ := new(big.Int).SetString("1000000000000000000", 10)
		require.NoError(t, validator.Stake(testContext(t), owner, amount, big.NewInt(0), true, pubkey))
		require.Equal(t, owner, stakeReq.Owner)
		require.Equal(t, "1000000000000000000", stakeReq.Amount)
		require.Equal(t, "0", stakeReq.HeimdallFee)
		require.True(t, stakeReq.AutoRenew)
		require.Equal(t, pubkey, []byte(stakeReq.SignerPubkey))
	})

	t.Run("unstake", func(t *testing.T) {
		require.NoError(t, validator.Unstake(testContext(t), 7))
		require.Equal(t, uint64(7), unstakeReq.ValidatorID)
	})

	t.Run("top up", func(t *testing.T) {
		require.NoError(t, validator.TopUpForFee(testContext(t), owner, big.NewInt(10)))
		require.Equal(t, owner, topUpReq.Owner)
		require.Equal(t, "10", topUpReq.HeimdallFee)
	})

	t.Run("unstake claim parses both amounts", func(t *testing.T) {
		amount, remaining, err := validator.UnstakeClaim(testContext(t), owner, 7)
		require.NoError(t, err)
		expected, _ := new(big.Int).SetString("1000000000000000000", 10)
		require.Zero(t, amount.Cmp(expected))
		require.Zero(t, remaining.Cmp(big.NewInt(5)))
	})

	t.Run("withdraw rewards", func(t *testing.T) {
		amount, err := validator.WithdrawRewards(testContext(t), 7)
		require.NoError(t, err)
		require.Zero(t, amount.Cmp(big.NewInt(42)))
	})
}

func TestGatewayClient_StakeManager(t *testing.T) {
	contract := common.BytesToAddress([]byte("0xv"))
	share := common.BytesToAddress([]byte("0xs"))

	mux := http.NewServeMux()
	handleFunc(mux, "GET /v1/stake-manager/validator-id", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, contract.Hex(), r.URL.Query().Get("contract"))
		require.NoError(t, json.NewEncoder(w).Encode(staking.ValidatorIDResponse{ValidatorID: 9}))
	})
	handleFunc(mux, "GET /v1/stake-manager/validators/9/contract", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(staking.ValidatorContractResponse{Address: share}))
	})
	handleFunc(mux, "GET /v1/stake-manager/validators/9/stake", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(staking.AmountResponse{Amount: "1500"}))
	})

	client := newGatewayForTest(t, mux)

	id, err := client.ValidatorID(testContext(t), contract)
	require.NoError(t, err)
	require.Equal(t, uint64(9), id)

	addr, err := client.ValidatorContract(testContext(t), 9)
	require.NoError(t, err)
	require.Equal(t, share, addr)

	stake, err := client.ValidatorStake(testContext(t), 9)
	require.NoError(t, err)
	require.Zero(t, stake.Cmp(big.NewInt(1500)))
}

func TestGatewayClient_LookupsNotCached(t *testing.T) {
	var hits atomic.Int64
	mux := http.NewServeMux()
	handleFunc(mux, "GET /v1/stake-manager/validators/3/stake", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.NoError(t, json.NewEncoder(w).Encode(staking.AmountResponse{Amount: "777"}))
	})
	client := newGatewayForTest(t, mux)

	for i := 0; i < 2; i++ {
		stake, err := client.ValidatorStake(testContext(t), 3)
		require.NoError(t, err)
		require.Zero(t, stake.Cmp(big.NewInt(777)))
	}

	// Lookups collapse only while one is in flight, they are never cached.
	require.EqualValues(t, 2, hits.Load())
}

func TestGatewayClient_MalformedAmount(t *testing.T) {
	mux := http.NewServeMux()
	handleFunc(mux, "GET /v1/stake-manager/validators/1/stake", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(staking.AmountResponse{Amount: "1.5e18"}))
	})
	client := newGatewayForTest(t, mux)

	_, err := client.ValidatorStake(testContext(t), 1)
	require.ErrorContains(t, err, "not a base-10 amount")
}

func TestGatewayClient_Healthy(t *testing.T) {
	t.Run("healthy gateway", func(t *testing.T) {
		mux := http.NewServeMux()
		handleFunc(mux, "GET /v1/health", func(w http.ResponseWriter, r *http.Request) {})
		client := newGatewayForTest(t, mux)
		require.NoError(t, client.Healthy(testContext(t)))
	})

	t.Run("unhealthy gateway", func(t *testing.T) {
		mux := http.NewServeMux()
		handleFunc(mux, "GET /v1/health", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		})
		client := newGatewayForTest(t, mux)
		require.Error(t, client.Healthy(testContext(t)))
	})
}
