package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/weather-prep/internal/adapter/csvout"
	kafkaadapter "github.com/couchcryptid/weather-prep/internal/adapter/kafka"
	"github.com/couchcryptid/weather-prep/internal/adapter/mapbox"
	"github.com/couchcryptid/weather-prep/internal/config"
	"github.com/couchcryptid/weather-prep/internal/domain"
	"github.com/couchcryptid/weather-prep/internal/observability"
	"github.com/couchcryptid/weather-prep/internal/pipeline"
)

type prepareFlags struct {
	outDir      string
	schemaPath  string
	testSize    float64
	seed        uint64
	metricsFile string
	jsonReport  bool
}

func newPrepareCmd() *cobra.Command {
	var f prepareFlags
	cmd := &cobra.Command{
		Use:   "prepare <input.csv>",
		Short: "Run the preparation pipeline on a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, f)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runPrepare(cmd, cfg, args[0], f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.outDir, "out", "o", "", "Directory for X_train.csv, X_test.csv, y_train.csv and y_test.csv")
	fl.StringVar(&f.schemaPath, "schema", "", "YAML file overriding the default column roles (env SCHEMA_PATH)")
	fl.Float64Var(&f.testSize, "test-size", 0.2, "Fraction of rows held out for testing (env TEST_SIZE)")
	fl.Uint64Var(&f.seed, "seed", 42, "Shuffle seed (env RANDOM_SEED)")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile (env METRICS_FILE)")
	fl.BoolVar(&f.jsonReport, "json", false, "Print the run report as JSON on stdout")
	return cmd
}

// applyFlags copies explicitly set flags over the environment configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f prepareFlags) {
	fl := cmd.Flags()
	if fl.Changed("schema") {
		cfg.SchemaPath = f.schemaPath
	}
	if fl.Changed("test-size") {
		cfg.TestSize = f.testSize
	}
	if fl.Changed("seed") {
		cfg.RandomSeed = f.seed
	}
	if fl.Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
}

func runPrepare(cmd *cobra.Command, cfg *config.Config, inputPath string, f prepareFlags) (err error) {
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	if cfg.MetricsFile != "" {
		defer func() {
			if werr := metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
				logger.Error("write metrics failed", "path", cfg.MetricsFile, "error", werr)
			}
		}()
	}

	schema, err := domain.LoadSchema(cfg.SchemaPath)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Schema:   schema,
		TestSize: cfg.TestSize,
		Seed:     cfg.RandomSeed,
		Region:   cfg.MapboxCountry,
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		opts.Geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		opts.Publisher = writer
		defer closeWithTimeout(writer, cfg.ShutdownTimeout, logger)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	input, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer input.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.New(opts, logger, metrics).Run(ctx, input)
	if err != nil {
		return err
	}

	if f.outDir != "" {
		if err := csvout.WriteSplit(f.outDir, res.Split, schema.Target); err != nil {
			return err
		}
		logger.Info("split written", "dir", f.outDir)
	}

	if f.jsonReport {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res.Report)
	}
	return nil
}

type closer interface{ Close() error }

// closeWithTimeout flushes c, giving up after timeout.
func closeWithTimeout(c closer, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Close() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	case <-ctx.Done():
		logger.Error("kafka writer close timed out", "timeout", timeout)
	}
}
