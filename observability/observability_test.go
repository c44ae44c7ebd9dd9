package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

const (
	testApp     = "noderegistry-test"
	testVersion = "1.0.0"
)

// TestInitialize verifies that Initialize returns a valid shutdown function.
func TestInitialize(t *testing.T) {
	shutdown, err := Initialize(testApp, testVersion)

	require.NoError(t, err)
	require.NotNil(t, shutdown)

	require.NoError(t, shutdown(context.Background()))
}

// TestInitializeWithMetrics verifies that the metrics option sets up the meter provider.
func TestInitializeWithMetrics(t *testing.T) {
	originalProvider := otel.GetMeterProvider()
	defer otel.SetMeterProvider(originalProvider)

	shutdown, err := Initialize(testApp, testVersion, WithMetrics())

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NotEqual(t, originalProvider, otel.GetMeterProvider())

	require.NoError(t, shutdown(context.Background()))
}

func TestInstrumentName(t *testing.T) {
	require.Equal(t, "noderegistry.registry.operations", InstrumentName("noderegistry.registry", "operations"))
}
