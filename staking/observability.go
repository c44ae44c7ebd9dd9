package staking

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/polystake/noderegistry/observability"
	"github.com/polystake/noderegistry/observability/metrics"
)

const (
	observabilityName      = "github.com/polystake/noderegistry/staking"
	observabilityNamespace = "noderegistry.gateway"
)

type gatewayStatus string

const (
	statusHealthy gatewayStatus = "healthy"
	statusFailure gatewayStatus = "failure"
)

var (
	meter = otel.Meter(observabilityName)

	requestDurationHistogram = metrics.New(
		meter.Float64Histogram(
			observability.InstrumentName(observabilityNamespace, "request.duration"),
			metric.WithUnit("s"),
			metric.WithDescription("staking gateway request duration in seconds"),
			metric.WithExplicitBucketBoundaries(metrics.SecondsHistogramBuckets...)))

	gatewayStatusGauge = metrics.New(
		meter.Int64Gauge(
			observability.InstrumentName(observabilityNamespace, "status"),
			metric.WithDescription("staking gateway health status")))
)

func endpointAttribute(value string) attribute.KeyValue {
	return attribute.String(fmt.Sprintf("%s.endpoint", observabilityNamespace), value)
}

func gatewayStatusAttribute(value gatewayStatus) attribute.KeyValue {
	return attribute.String(fmt.Sprintf("%s.status", observabilityNamespace), string(value))
}

func recordRequestDuration(ctx context.Context, serverAddr, endpoint string, duration time.Duration) {
	requestDurationHistogram.Record(
		ctx,
		duration.Seconds(),
		metric.WithAttributes(semconv.ServerAddress(serverAddr)),
		metric.WithAttributes(endpointAttribute(endpoint)))
}

func recordGatewayStatus(ctx context.Context, serverAddr string, status gatewayStatus) {
	resetGatewayStatusGauge(ctx, serverAddr)

	gatewayStatusGauge.Record(ctx, 1,
		metric.WithAttributes(semconv.ServerAddress(serverAddr)),
		metric.WithAttributes(gatewayStatusAttribute(status)),
	)
}

func resetGatewayStatusGauge(ctx context.Context, serverAddr string) {
	for _, status := range []gatewayStatus{statusHealthy, statusFailure} {
		gatewayStatusGauge.Record(ctx, 0,
			metric.WithAttributes(semconv.ServerAddress(serverAddr)),
			metric.WithAttributes(gatewayStatusAttribute(status)),
		)
	}
}
