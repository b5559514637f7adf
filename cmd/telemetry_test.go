package main

import (
	"context"
	"testing"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetupTracing(t *testing.T) {
	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})

	t.Run("disabled keeps the default provider", func(t *testing.T) {
		shutdown, err := setupTracing(context.Background(), config.TelemetryConfig{})
		require.NoError(t, err)
		require.NoError(t, shutdown(context.Background()))

		_, isSDK := otel.GetTracerProvider().(*sdktrace.TracerProvider)
		assert.False(t, isSDK)
		assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
	})

	t.Run("enabled installs an exporting provider", func(t *testing.T) {
		shutdown, err := setupTracing(context.Background(), config.TelemetryConfig{
			Enabled:     true,
			Endpoint:    "localhost:4317",
			Insecure:    true,
			ServiceName: "event-checkin-test",
		})
		require.NoError(t, err)

		_, isSDK := otel.GetTracerProvider().(*sdktrace.TracerProvider)
		assert.True(t, isSDK)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, shutdown(ctx))
	})

	t.Run("propagates incoming trace context", func(t *testing.T) {
		_, err := setupTracing(context.Background(), config.TelemetryConfig{})
		require.NoError(t, err)

		carrier := propagation.MapCarrier{"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), carrier)

		out := propagation.MapCarrier{}
		otel.GetTextMapPropagator().Inject(ctx, out)
		assert.Equal(t, carrier["traceparent"], out["traceparent"])
	})
}
