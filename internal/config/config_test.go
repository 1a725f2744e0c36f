package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.SchemaPath)
	assert.Equal(t, 0.2, cfg.TestSize)
	assert.Equal(t, uint64(42), cfg.RandomSeed)
	assert.Empty(t, cfg.MetricsFile)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "weather-prep-split", cfg.KafkaSinkTopic)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
	assert.Equal(t, "au", cfg.MapboxCountry)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SCHEMA_PATH", "/etc/weatherprep/schema.yaml")
	t.Setenv("TEST_SIZE", "0.25")
	t.Setenv("RANDOM_SEED", "7")
	t.Setenv("METRICS_FILE", "/var/lib/node_exporter/weatherprep.prom")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")
	t.Setenv("MAPBOX_COUNTRY", "nz")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/etc/weatherprep/schema.yaml", cfg.SchemaPath)
	assert.Equal(t, 0.25, cfg.TestSize)
	assert.Equal(t, uint64(7), cfg.RandomSeed)
	assert.Equal(t, "/var/lib/node_exporter/weatherprep.prom", cfg.MetricsFile)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
	assert.Equal(t, "nz", cfg.MapboxCountry)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"shutdown not a duration", "SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"shutdown negative", "SHUTDOWN_TIMEOUT", "-1s"},
		{"batch size zero", "BATCH_SIZE", "0"},
		{"batch size above limit", "BATCH_SIZE", "9999"},
		{"test size not a number", "TEST_SIZE", "abc"},
		{"seed negative", "RANDOM_SEED", "-1"},
		{"mapbox timeout", "MAPBOX_TIMEOUT", "bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestValidate_BrokersWithoutTopic(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.KafkaBrokers = []string{"localhost:9092"}
	cfg.KafkaSinkTopic = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_SINK_TOPIC")
}

func TestValidate_TestSizeRange(t *testing.T) {
	for _, v := range []string{"0", "1", "-0.2", "1.5"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("TEST_SIZE", v)
			cfg, err := Load()
			require.NoError(t, err, "range is checked after flag overrides")

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "TEST_SIZE")

			cfg.TestSize = 0.3
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestValidate_FlagOverride(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.TestSize = 1
	assert.Error(t, cfg.Validate())
}
