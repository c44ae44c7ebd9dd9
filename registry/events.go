package registry

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"

	registrystorage "github.com/polystake/noderegistry/registry/storage"
)

// Event kinds emitted on the registry feed.
const (
	EventNewOperator       = "NewOperator"
	EventRemoveOperator    = "RemoveOperator"
	EventStakeOperator     = "StakeOperator"
	EventUnstakeOperator   = "UnstakeOperator"
	EventTopUpHeimdallFees = "TopUpHeimdallFees"
	EventClaimUnstake      = "ClaimUnstake"
	EventWithdrawRewards   = "WithdrawRewards"
)

// Event is published after an operation commits. Subscribers observe
// committed state only.
type Event struct {
	Kind       string
	OperatorID uint64
	Name       string
	Pubkey     []byte
	Status     registrystorage.OperatorStatus
	Caller     common.Address
	Amount     *big.Int
}

// EventFeed wraps event.Feed to provide type safety for subscriptions.
type EventFeed[T any] struct {
	feed *event.Feed
}

func NewEventFeed[T any]() *EventFeed[T] {
	return &EventFeed[T]{
		feed: &event.Feed{},
	}
}

func (f *EventFeed[T]) Subscribe(ch chan<- T) event.Subscription {
	return f.feed.Subscribe(ch)
}

func (f *EventFeed[T]) Send(item T) {
	_ = f.feed.Send(item)
}
