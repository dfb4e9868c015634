package parking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestNewTelemetryProvider(t *testing.T) {
	ctx := context.Background()
	// Nothing listens on the endpoint; construction must still succeed.
	tp, err := NewTelemetryProvider(ctx, TelemetryConfig{
		ServiceName:  "parking-gates-test",
		Environment:  "test",
		OTLPEndpoint: "http://localhost:4318",
	})
	require.NoError(t, err)
	assert.NotNil(t, tp.Tracer())
	assert.NotNil(t, tp.Meter())

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_ = tp.Shutdown(shutdownCtx)
}

func TestLocalTelemetryProviderShutdown(t *testing.T) {
	tp := NewLocalTelemetryProvider(sdkmetric.NewManualReader())

	_, span := tp.Tracer().Start(context.Background(), "op")
	span.End()

	require.NoError(t, tp.Shutdown(context.Background()))
}
