package registry_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/polystake/noderegistry/registry"
)

func TestRegistry_WithdrawRewards(t *testing.T) {
	owners := []common.Address{
		common.HexToAddress("0x0000000000000000000000000000000000003a01"),
		common.HexToAddress("0x0000000000000000000000000000000000003a02"),
		common.HexToAddress("0x0000000000000000000000000000000000003a03"),
	}
	contracts := []common.Address{
		common.HexToAddress("0x0000000000000000000000000000000000003b01"),
		common.HexToAddress("0x0000000000000000000000000000000000003b02"),
		common.HexToAddress("0x0000000000000000000000000000000000003b03"),
	}

	// stakeAll registers and stakes one operator per owner, wiring each
	// validator mock to report the given reward on withdrawal.
	stakeAll := func(t *testing.T, env *testEnv, rewards []*big.Int) {
		for i, owner := range owners {
			env.addOperator(t, owner, contracts[i])
			validator := env.stakeOperator(t, owner, contracts[i], uint64(100+i))
			validator.EXPECT().WithdrawRewards(gomock.Any(), uint64(100+i)).Return(rewards[i], nil)
		}
	}

	t.Run("requires initialization", func(t *testing.T) {
		env := newRegistryForTest(t)

		_, err := env.registry.WithdrawRewards(testContext(t), sinkAddr)
		require.ErrorIs(t, err, registry.ErrInvalidState)
	})

	t.Run("only the reward sink may withdraw", func(t *testing.T) {
		env := newRegistryForTest(t)
		env.initialize(t)

		_, err := env.registry.WithdrawRewards(testContext(t), adminAddr)
		require.ErrorIs(t, err, registry.ErrUnauthorizedCaller)
	})

	t.Run("shares are proportional to withdrawn rewards", func(t *testing.T) {
		env := newRegistryForTest(t)
		env.initialize(t)
		stakeAll(t, env, []*big.Int{big.NewInt(300), big.NewInt(100), big.NewInt(100)})

		result, err := env.registry.WithdrawRewards(testContext(t), sinkAddr)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(500), result.Total)
		require.Equal(t, owners, result.Recipients)
		require.Equal(t, []*big.Int{big.NewInt(60), big.NewInt(20), big.NewInt(20)}, result.Shares)
	})

	t.Run("integer shares truncate", func(t *testing.T) {
		env := newRegistryForTest(t)
		env.initialize(t)
		stakeAll(t, env, []*big.Int{big.NewInt(1), big.NewInt(1), big.NewInt(1)})

		result, err := env.registry.WithdrawRewards(testContext(t), sinkAddr)
		require.NoError(t, err)
		require.Equal(t, []*big.Int{big.NewInt(33), big.NewInt(33), big.NewInt(33)}, result.Shares)
	})

	t.Run("a zero round yields zero shares", func(t *testing.T) {
		env := newRegistryForTest(t)
		env.initialize(t)
		stakeAll(t, env, []*big.Int{big.NewInt(0), big.NewInt(0), big.NewInt(0)})

		result, err := env.registry.WithdrawRewards(testContext(t), sinkAddr)
		require.NoError(t, err)
		require.Zero(t, result.Total.Sign())
		require.Equal(t, []*big.Int{new(big.Int), new(big.Int), new(big.Int)}, result.Shares)
	})

	t.Run("skips operators that are not staked", func(t *testing.T) {
		env := newRegistryForTest(t)
		env.initialize(t)

		// one staked operator earning rewards, one merely active
		env.addOperator(t, owners[0], contracts[0])
		validator := env.stakeOperator(t, owners[0], contracts[0], 100)
		validator.EXPECT().WithdrawRewards(gomock.Any(), uint64(100)).Return(big.NewInt(250), nil)

		env.addOperator(t, owners[1], contracts[1])

		result, err := env.registry.WithdrawRewards(testContext(t), sinkAddr)
		require.NoError(t, err)
		require.Equal(t, []common.Address{owners[0]}, result.Recipients)
		require.Equal(t, []*big.Int{big.NewInt(100)}, result.Shares)
		require.Equal(t, big.NewInt(250), result.Total)
	})

	t.Run("an empty registry withdraws nothing", func(t *testing.T) {
		env := newRegistryForTest(t)
		env.initialize(t)

		result, err := env.registry.WithdrawRewards(testContext(t), sinkAddr)
		require.NoError(t, err)
		require.Empty(t, result.Recipients)
		require.Empty(t, result.Shares)
		require.Zero(t, result.Total.Sign())
	})

	t.Run("one failing validator aborts the round", func(t *testing.T) {
		env := newRegistryForTest(t)
		env.initialize(t)

		env.addOperator(t, owners[0], contracts[0])
		validator := env.stakeOperator(t, owners[0], contracts[0], 100)
		validator.EXPECT().WithdrawRewards(gomock.Any(), uint64(100)).Return(nil, errors.New("gateway timeout"))

		_, err := env.registry.WithdrawRewards(testContext(t), sinkAddr)
		require.Error(t, err)
	})
}
