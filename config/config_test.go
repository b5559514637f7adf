package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(NewViper())
		require.NoError(t, err)

		assert.Equal(t, EnvLocal, cfg.Env)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "EventCheckIn", cfg.Dynamo.TableName)
		assert.Empty(t, cfg.Catalog.SSMParameter)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "event-checkin", cfg.Telemetry.ServiceName)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "checkin.yaml")
		err := os.WriteFile(path, []byte(`
env: prod
server:
  port: "9090"
  allowed_origins:
    - https://checkin.icaa.world
dynamo:
  table_name: Prod-Table
catalog:
  messages:
    disable-event: Disable?
    delete-venue: Delete venue?
    delete-area: Delete area?
`), 0o600)
		require.NoError(t, err)

		v := NewViper()
		require.NoError(t, ReadFile(v, path))

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, EnvProd, cfg.Env)
		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, []string{"https://checkin.icaa.world"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, "Prod-Table", cfg.Dynamo.TableName)
		assert.Equal(t, "Disable?", cfg.Catalog.Messages["disable-event"])
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("CHECKIN_DYNAMO_TABLE_NAME", "From-Env")
		t.Setenv("CHECKIN_DYNAMO_ENDPOINT", "http://localhost:8000")
		t.Setenv("CHECKIN_TELEMETRY_ENABLED", "true")
		t.Setenv("CHECKIN_TELEMETRY_ENDPOINT", "otel-collector:4317")

		cfg, err := Load(NewViper())
		require.NoError(t, err)
		assert.Equal(t, "From-Env", cfg.Dynamo.TableName)
		assert.Equal(t, "http://localhost:8000", cfg.Dynamo.Endpoint)
		assert.True(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "otel-collector:4317", cfg.Telemetry.Endpoint)
	})

	t.Run("missing file", func(t *testing.T) {
		err := ReadFile(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		v := NewViper()
		v.Set("env", "staging")
		v.Set("email.from_address", "not-an-email")
		v.Set("dynamo.endpoint", "localhost")
		v.Set("telemetry.enabled", true)
		v.Set("telemetry.service_name", "")

		_, err := Load(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "staging")
		assert.Contains(t, err.Error(), "not-an-email")
		assert.Contains(t, err.Error(), "dynamo.endpoint")
		assert.Contains(t, err.Error(), "telemetry.service_name")
	})
}
