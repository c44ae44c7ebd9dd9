package node

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/logging"
	"github.com/polystake/noderegistry/logging/fields"
	"github.com/polystake/noderegistry/nodeprobe"
	"github.com/polystake/noderegistry/registry"
)

// Options contains options to create the node.
type Options struct {
	Logger   *zap.Logger
	Registry *registry.Registry
	Prober   *nodeprobe.Prober
}

// Node represents the behavior of the registry node.
type Node interface {
	// Start runs the node until ctx is canceled.
	Start(ctx context.Context) error
	// HealthCheck returns an error when the node is not usable.
	HealthCheck() error
}

type registryNode struct {
	logger   *zap.Logger
	registry *registry.Registry
	prober   *nodeprobe.Prober
}

// New is the constructor of registryNode.
func New(opts Options) Node {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &registryNode{
		logger:   logger.Named(logging.NameRegistryNode),
		registry: opts.Registry,
		prober:   opts.Prober,
	}
}

// Start reports the committed registry state, then mirrors every event the
// registry publishes into the log until ctx is canceled.
func (n *registryNode) Start(ctx context.Context) error {
	n.reportOperators()

	events := make(chan registry.Event, 32)
	sub := n.registry.Subscribe(events)
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return errors.Wrap(err, "event subscription failed")
		case e := <-events:
			n.logEvent(e)
		}
	}
}

// HealthCheck returns an error when the staking gateway probe reports the
// gateway unreachable.
func (n *registryNode) HealthCheck() error {
	healthy, err := n.prober.Healthy(context.Background())
	if err != nil {
		return errors.Wrap(err, "could not check staking gateway health")
	}
	if !healthy {
		return errors.New("staking gateway is not healthy")
	}
	return nil
}

func (n *registryNode) reportOperators() {
	operators, err := n.registry.ListNodeOperators(0, 0, false)
	if err != nil {
		n.logger.Warn("could not report operators", zap.Error(err))
		return
	}
	n.logger.Info("managed operators", fields.Count(len(operators)))
	for _, operatorData := range operators {
		n.logger.Debug("managed operator",
			fields.OperatorID(operatorData.ID),
			fields.Status(operatorData.Status),
			fields.OwnerAddress(operatorData.RewardAddress))
	}
}

func (n *registryNode) logEvent(e registry.Event) {
	logger := n.logger.With(
		fields.EventName(e.Kind),
		fields.OperatorID(e.OperatorID),
		fields.OwnerAddress(e.Caller),
		fields.Status(e.Status),
	)
	if e.Amount != nil {
		logger = logger.With(fields.Amount(e.Amount))
	}
	logger.Info("registry event")
}
