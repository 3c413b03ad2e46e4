package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flu-mobility-etl/internal/config"
	"github.com/couchcryptid/flu-mobility-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes weekly inflow rows to a Kafka topic, one message per
// (week, destination). It implements pipeline.InflowLoader.
type Writer struct {
	writer    messageWriter
	logger    *slog.Logger
	batchSize int
}

// NewWriter creates a Kafka producer for the configured inflow topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaInflowTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, batchSize: 500}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// LoadInflows serializes and publishes every row of the snapshot. Rows are
// keyed by destination so a location's weeks land on one partition in order.
func (w *Writer) LoadInflows(ctx context.Context, snapshot domain.InflowSnapshot) error {
	for start := 0; start < len(snapshot.Rows); start += w.batchSize {
		end := min(start+w.batchSize, len(snapshot.Rows))
		msgs := make([]kafkago.Message, 0, end-start)
		for _, row := range snapshot.Rows[start:end] {
			msg, err := serializeToMessage(snapshot, row)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish inflows: %w", err)
		}
	}
	w.logger.Info("published weekly inflows", "rows", len(snapshot.Rows), "run_id", snapshot.RunID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an InflowRow into a Kafka message.
func serializeToMessage(snapshot domain.InflowSnapshot, row domain.InflowRow) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize inflow row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(row.DestFIPS),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(snapshot.RunID)},
			{Key: "generated_at", Value: []byte(snapshot.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
