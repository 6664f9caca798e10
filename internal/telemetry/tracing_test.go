package telemetry_test

import (
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer(t *testing.T) {
	t.Run("Success - Disabled", func(t *testing.T) {
		// Act
		shutdown, err := telemetry.InitTracer(t.Context(), &config.TelemetryConfig{Enabled: false}, "test")

		// Assert
		require.NoError(t, err)
		require.NotNil(t, shutdown)
		assert.NoError(t, shutdown(t.Context()))
	})

	t.Run("Success - Enabled", func(t *testing.T) {
		// Arrange
		cfg := &config.TelemetryConfig{
			Enabled:      true,
			ServiceName:  "storefront-test",
			Endpoint:     "127.0.0.1:4318",
			SamplerRatio: 1,
		}

		// Act
		shutdown, err := telemetry.InitTracer(t.Context(), cfg, "test")

		// Assert
		require.NoError(t, err)
		require.NotNil(t, shutdown)
		assert.NoError(t, shutdown(t.Context()))
	})
}
