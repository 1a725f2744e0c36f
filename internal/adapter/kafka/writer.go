package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/weather-prep/internal/config"
	"github.com/couchcryptid/weather-prep/internal/domain"
)

// Split names used in message keys and headers.
const (
	SplitTrain = "train"
	SplitTest  = "test"
)

// Row is the JSON value of one published observation.
type Row struct {
	Split     string             `json:"split"`
	Row       int                `json:"row"`
	SourceRow int                `json:"source_row"`
	Features  map[string]float64 `json:"features"`
	Label     float64            `json:"label"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes prepared rows to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer    messageWriter
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
	}
	return &Writer{writer: w, batchSize: cfg.BatchSize, logger: logger}
}

// PublishSplit writes every train row, then every test row, in batches of
// the configured size. It returns the number of rows written before any error.
func (w *Writer) PublishSplit(ctx context.Context, split domain.Split) (int, error) {
	msgs, err := buildMessages(split)
	if err != nil {
		return 0, err
	}

	size := w.batchSize
	if size <= 0 {
		size = len(msgs)
	}
	written := 0
	for start := 0; start < len(msgs); start += size {
		end := min(start+size, len(msgs))
		if err := w.writer.WriteMessages(ctx, msgs[start:end]...); err != nil {
			return written, fmt.Errorf("write rows %d-%d: %w", start, end-1, err)
		}
		written = end
		w.logger.Debug("published batch", "rows", end-start, "written", written, "total", len(msgs))
	}
	w.logger.Info("split published", "rows", written)
	return written, nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// buildMessages serializes the split into one message per row, keyed
// "<split>-<row>".
func buildMessages(split domain.Split) ([]kafkago.Message, error) {
	preparedAt := []byte(split.PreparedAt.Format(time.RFC3339))
	msgs := make([]kafkago.Message, 0, split.TrainRows()+split.TestRows())

	for _, part := range []struct {
		name   string
		x      *mat.Dense
		y      []float64
		source []int
	}{
		{SplitTrain, split.XTrain, split.YTrain, split.TrainIndex},
		{SplitTest, split.XTest, split.YTest, split.TestIndex},
	} {
		for i, label := range part.y {
			row := Row{
				Split:     part.name,
				Row:       i,
				SourceRow: -1,
				Features:  make(map[string]float64, len(split.Features)),
				Label:     label,
			}
			if i < len(part.source) {
				row.SourceRow = part.source[i]
			}
			for j, name := range split.Features {
				row.Features[name] = part.x.At(i, j)
			}
			data, err := json.Marshal(row)
			if err != nil {
				return nil, fmt.Errorf("serialize %s row %d: %w", part.name, i, err)
			}
			msgs = append(msgs, kafkago.Message{
				Key:   []byte(part.name + "-" + strconv.Itoa(i)),
				Value: data,
				Headers: []kafkago.Header{
					{Key: "split", Value: []byte(part.name)},
					{Key: "prepared_at", Value: preparedAt},
				},
			})
		}
	}
	return msgs, nil
}
