package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// batchSize caps the messages handed to a single WriteMessages call.
const batchSize = 1000

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes each exported row as a JSON message.
// It implements pipeline.TableLoader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// rowMessage is the JSON value of one published row.
type rowMessage struct {
	Date      string           `json:"date"`
	StationID domain.StationID `json:"station_id"`
	Stadium   string           `json:"stadium"`
	domain.Metrics
	RunID      string `json:"run_id"`
	ExportedAt string `json:"exported_at"`
}

// LoadTable serializes every row and publishes them in batches. Keys hash
// on station and date so a row always lands on the same partition.
func (w *Writer) LoadTable(ctx context.Context, table domain.Table) error {
	if len(table.Rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, batchSize)
	for i := range table.Rows {
		msg, err := serializeToMessage(table, table.Rows[i])
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		if len(msgs) == batchSize {
			if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
				return fmt.Errorf("publish rows: %w", err)
			}
			msgs = make([]kafkago.Message, 0, batchSize)
		}
	}
	if len(msgs) > 0 {
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish rows: %w", err)
		}
	}
	w.logger.Debug("rows published", "rows", len(table.Rows), "run_id", table.RunID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a row into a Kafka message.
func serializeToMessage(table domain.Table, row domain.ShapedRecord) (kafkago.Message, error) {
	date := row.Date.Format(domain.DateLayout)
	exportedAt := table.ExportedAt.UTC().Format(time.RFC3339Nano)
	data, err := json.Marshal(rowMessage{
		Date:       date,
		StationID:  row.StationID,
		Stadium:    row.Location,
		Metrics:    row.Metrics,
		RunID:      table.RunID,
		ExportedAt: exportedAt,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(string(row.StationID) + "|" + date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(table.RunID)},
			{Key: "stadium", Value: []byte(row.Location)},
			{Key: "exported_at", Value: []byte(exportedAt)},
		},
	}, nil
}
