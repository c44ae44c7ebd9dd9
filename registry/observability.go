package registry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/polystake/noderegistry/observability"
	"github.com/polystake/noderegistry/observability/metrics"
	registrystorage "github.com/polystake/noderegistry/registry/storage"
)

const (
	observabilityName      = "github.com/polystake/noderegistry/registry"
	observabilityNamespace = "noderegistry.registry"
)

type operationOutcome string

const (
	outcomeSuccess operationOutcome = "success"
	outcomeFailure operationOutcome = "failure"
)

var (
	meter = otel.Meter(observabilityName)

	operationsCounter = metrics.New(
		meter.Int64Counter(
			observability.InstrumentName(observabilityNamespace, "operations"),
			metric.WithUnit("{operation}"),
			metric.WithDescription("total number of registry operations by operation and outcome")))

	rewardWithdrawalsCounter = metrics.New(
		meter.Int64Counter(
			observability.InstrumentName(observabilityNamespace, "reward_withdrawals"),
			metric.WithUnit("{operator}"),
			metric.WithDescription("total number of per-operator reward withdrawals")))

	totalOperatorsGauge = metrics.New(
		meter.Int64Gauge(
			observability.InstrumentName(observabilityNamespace, "operators.total"),
			metric.WithUnit("{operator}"),
			metric.WithDescription("operators registered and not yet removed")))

	activeOperatorsGauge = metrics.New(
		meter.Int64Gauge(
			observability.InstrumentName(observabilityNamespace, "operators.active"),
			metric.WithUnit("{operator}"),
			metric.WithDescription("operators in ACTIVE status")))

	stakedOperatorsGauge = metrics.New(
		meter.Int64Gauge(
			observability.InstrumentName(observabilityNamespace, "operators.staked"),
			metric.WithUnit("{operator}"),
			metric.WithDescription("operators in STAKED status")))

	unstakedOperatorsGauge = metrics.New(
		meter.Int64Gauge(
			observability.InstrumentName(observabilityNamespace, "operators.unstaked"),
			metric.WithUnit("{operator}"),
			metric.WithDescription("operators in UNSTAKED status")))

	exitedOperatorsGauge = metrics.New(
		meter.Int64Gauge(
			observability.InstrumentName(observabilityNamespace, "operators.exited"),
			metric.WithUnit("{operator}"),
			metric.WithDescription("operators in EXIT status")))
)

func operationAttribute(operation string) attribute.KeyValue {
	return attribute.String(fmt.Sprintf("%s.operation", observabilityNamespace), operation)
}

func outcomeAttribute(outcome operationOutcome) attribute.KeyValue {
	return attribute.String(fmt.Sprintf("%s.outcome", observabilityNamespace), string(outcome))
}

func recordOperation(ctx context.Context, operation string, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	operationsCounter.Add(ctx, 1,
		metric.WithAttributes(operationAttribute(operation)),
		metric.WithAttributes(outcomeAttribute(outcome)),
	)
}

func recordStats(ctx context.Context, stats *registrystorage.Stats) {
	metrics.RecordUint64Value(ctx, stats.Total, totalOperatorsGauge.Record)
	metrics.RecordUint64Value(ctx, stats.Active, activeOperatorsGauge.Record)
	metrics.RecordUint64Value(ctx, stats.Staked, stakedOperatorsGauge.Record)
	metrics.RecordUint64Value(ctx, stats.Unstaked, unstakedOperatorsGauge.Record)
	metrics.RecordUint64Value(ctx, stats.Exited, exitedOperatorsGauge.Record)
}
