package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all run settings, populated from environment variables.
// Command-line flags override individual fields after Load.
type Config struct {
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Preparation settings.
	SchemaPath  string
	TestSize    float64
	RandomSeed  uint64
	MetricsFile string

	// Optional Kafka sink; disabled when KafkaBrokers is empty.
	KafkaBrokers   []string
	KafkaSinkTopic string
	BatchSize      int

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	MapboxCountry   string
}

// KafkaEnabled reports whether prepared rows should be published.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err2 := time.ParseDuration(mapboxTimeoutStr)
	if err2 != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	testSize, err := parseTestSize()
	if err != nil {
		return nil, err
	}

	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("RANDOM_SEED", "42"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RANDOM_SEED: %w", err)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SchemaPath:  os.Getenv("SCHEMA_PATH"),
		TestSize:    testSize,
		RandomSeed:  seed,
		MetricsFile: os.Getenv("METRICS_FILE"),

		KafkaBrokers:   parseBrokers(),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "weather-prep-split"),
		BatchSize:      batchSize,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
		MapboxCountry:   sharedcfg.EnvOrDefault("MAPBOX_COUNTRY", "au"),
	}

	if err := cfg.validateSinks(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field constraints. Callers run it
// after applying flag overrides; Load checks only the sink settings.
func (c *Config) Validate() error {
	if !(c.TestSize > 0 && c.TestSize < 1) {
		return fmt.Errorf("invalid TEST_SIZE: %v not in (0, 1)", c.TestSize)
	}
	return c.validateSinks()
}

func (c *Config) validateSinks() error {
	if c.KafkaEnabled() && c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	return nil
}

func parseTestSize() (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("TEST_SIZE", "0.2"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid TEST_SIZE: %w", err)
	}
	return v, nil
}

func parseBrokers() []string {
	raw := os.Getenv("KAFKA_BROKERS")
	if raw == "" {
		return nil
	}
	return sharedcfg.ParseBrokers(raw)
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
