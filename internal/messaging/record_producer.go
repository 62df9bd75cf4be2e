package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/tmash55/oddsmash-sub001/internal/models"
)

// RecordProducer publishes finished scan records to Kafka for the
// persistence consumers downstream.
type RecordProducer struct {
	writer kafkaWriter
	logger zerolog.Logger
}

// kafkaWriter interface for Kafka writer abstraction
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewRecordProducer creates a new scan record producer
func NewRecordProducer(
	brokers []string,
	topic string,
	logger zerolog.Logger,
) *RecordProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: 5 * time.Second,
		Compression:  kafka.Snappy,
	}

	return &RecordProducer{
		writer: writer,
		logger: logger.With().Str("component", "record_producer").Logger(),
	}
}

// Publish publishes one finished scan record
func (p *RecordProducer) Publish(ctx context.Context, record models.ScanRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal scan record: %w", err)
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(record.RecordID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "record_id", Value: []byte(record.RecordID)},
			{Key: "sportsbook", Value: []byte(record.Sportsbook)},
			{Key: "created_at", Value: []byte(record.CreatedAt.Format(time.RFC3339))},
		},
	}

	if err := p.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		return fmt.Errorf("failed to write to Kafka: %w", err)
	}

	p.logger.Info().
		Str("record_id", record.RecordID).
		Str("sportsbook", record.Sportsbook).
		Int("selections", len(record.Selections)).
		Msg("published scan record")

	return nil
}

// Close closes the Kafka writer
func (p *RecordProducer) Close() error {
	return p.writer.Close()
}
