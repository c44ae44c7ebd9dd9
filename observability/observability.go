package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/common/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func init() {
	// Force Prometheus to use the legacy metric name validation scheme.
	//
	// Starting from github.com/prometheus/client_golang v1.21.1,
	// the default NameValidationScheme changed to UTF8Validation,
	// which allows non-traditional delimiters like dots (.) in metric names.
	// Systems like Grafana Mimir do not support UTF-8 metric names and
	// expect underscores (_) as delimiters, so keep LegacyValidation until
	// the setting is deprecated.
	model.NameValidationScheme = model.LegacyValidation // nolint: staticcheck
}

var config Config

// Initialize sets up the process-global OTel providers according to the
// given options. The returned shutdown function flushes and stops them.
func Initialize(appName, appVersion string, options ...Option) (shutdown func(context.Context) error, err error) {
	shutdown = func(ctx context.Context) error { return nil }

	for _, option := range options {
		option(&config)
	}

	resources, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(appName),
		semconv.ServiceVersion(appVersion),
	))
	if err != nil {
		err = errors.Join(errors.New("failed to instantiate observability resources"), err)
		return shutdown, err
	}
	if config.metricsEnabled {
		promExporter, err := prometheus.New()
		if err != nil {
			err = errors.Join(errors.New("failed to instantiate metric Prometheus exporter"), err)
			return shutdown, err
		}
		meterProvider := metric.NewMeterProvider(
			metric.WithResource(resources),
			metric.WithReader(promExporter),
		)
		otel.SetMeterProvider(meterProvider)
		shutdown = meterProvider.Shutdown
	}

	return shutdown, err
}

// InstrumentName builds a full instrument name from a component namespace.
func InstrumentName(namespace, name string) string {
	return fmt.Sprintf("%s.%s", namespace, name)
}
