//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/weather-prep/internal/adapter/kafka"
	"github.com/couchcryptid/weather-prep/internal/config"
	"github.com/couchcryptid/weather-prep/internal/domain"
	"github.com/couchcryptid/weather-prep/internal/observability"
	"github.com/couchcryptid/weather-prep/internal/pipeline"
)

const testSinkTopic = "test-weather-prep-split"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("weather-prep-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

// publishedRow holds a deserialized message read from the sink topic.
type publishedRow struct {
	Row     kafka.Row
	Key     string
	Headers map[string]string
}

func readRow(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedRow {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var row kafka.Row
	require.NoError(t, json.Unmarshal(msg.Value, &row), "unmarshal sink message")
	return publishedRow{Row: row, Key: string(msg.Key), Headers: headers}
}

// TestPrepareAndPublish runs the full preparation on the sample extract and
// publishes the split to a real broker.
func TestPrepareAndPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
		BatchSize:      5,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	input, err := os.Open("../pipeline/testdata/weather_sample.csv")
	require.NoError(t, err)
	t.Cleanup(func() { _ = input.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(pipeline.Options{
		Schema:    domain.DefaultSchema(),
		TestSize:  0.2,
		Seed:      42,
		Publisher: writer,
	}, discardLogger(), metrics)

	res, err := p.Run(ctx, input)
	require.NoError(t, err)
	require.Equal(t, 18, res.Report.Published)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	counts := map[string]int{}
	for i := 0; i < res.Report.Published; i++ {
		pr := readRow(ctx, t, consumer)
		counts[pr.Row.Split]++

		assert.Equal(t, pr.Row.Split, pr.Headers["split"])
		assert.Equal(t, fmt.Sprintf("%s-%d", pr.Row.Split, pr.Row.Row), pr.Key)
		_, err := time.Parse(time.RFC3339, pr.Headers["prepared_at"])
		assert.NoError(t, err, "invalid prepared_at format")
		assert.Len(t, pr.Row.Features, len(res.Split.Features))
		assert.Contains(t, []float64{0, 1}, pr.Row.Label)
	}

	assert.Equal(t, res.Split.TrainRows(), counts[kafka.SplitTrain])
	assert.Equal(t, res.Split.TestRows(), counts[kafka.SplitTest])
}
