package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmash55/oddsmash-sub001/internal/models"
)

// mockKafkaWriter is a mock implementation of kafka.Writer for testing
type mockKafkaWriter struct {
	messages      []kafka.Message
	shouldError   bool
	closed        bool
	writeMessages func(ctx context.Context, msgs ...kafka.Message) error
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeMessages != nil {
		return m.writeMessages(ctx, msgs...)
	}
	if m.shouldError {
		return assert.AnError
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed = true
	return nil
}

// createTestProducer creates a producer with a mock writer for testing
func createTestProducer(mockWriter *mockKafkaWriter) *RecordProducer {
	logger := zerolog.Nop()
	return &RecordProducer{
		writer: mockWriter,
		logger: logger.With().Str("component", "record_producer").Logger(),
	}
}

func testRecord() models.ScanRecord {
	return models.ScanRecord{
		RecordID:   uuid.New().String(),
		Sportsbook: "draftkings",
		Title:      "Hunter Brown 6.5+ Strikeouts",
		Selections: []models.ResolvedSelection{
			{BetSelection: models.BetSelection{ID: "sel-1", Player: "Hunter Brown", Market: "Strikeouts"}},
		},
		RawOCRText:      "Hunter Brown Over 6.5 Strikeouts -115",
		LLMResponse:     `[{"player":"Hunter Brown"}]`,
		ScanConfidence:  0.9,
		OddsWereFetched: true,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestNewRecordProducer(t *testing.T) {
	producer := NewRecordProducer([]string{"localhost:9092"}, "betslip_scans", zerolog.Nop())

	assert.NotNil(t, producer)
	assert.NotNil(t, producer.writer)
}

func TestPublish_Success(t *testing.T) {
	mockWriter := &mockKafkaWriter{}
	producer := createTestProducer(mockWriter)
	record := testRecord()

	err := producer.Publish(context.Background(), record)

	require.NoError(t, err)
	require.Len(t, mockWriter.messages, 1)

	msg := mockWriter.messages[0]
	assert.Equal(t, record.RecordID, string(msg.Key))

	headers := make(map[string]string)
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, record.RecordID, headers["record_id"])
	assert.Equal(t, "draftkings", headers["sportsbook"])
	_, err = time.Parse(time.RFC3339, headers["created_at"])
	assert.NoError(t, err)

	var decoded models.ScanRecord
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, record.RecordID, decoded.RecordID)
	assert.Len(t, decoded.Selections, 1)
	assert.Equal(t, "Hunter Brown", decoded.Selections[0].Player)
	assert.True(t, decoded.OddsWereFetched)
}

func TestPublish_KafkaError(t *testing.T) {
	mockWriter := &mockKafkaWriter{shouldError: true}
	producer := createTestProducer(mockWriter)

	err := producer.Publish(context.Background(), testRecord())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write to Kafka")
}

func TestPublish_ContextCancellation(t *testing.T) {
	mockWriter := &mockKafkaWriter{
		writeMessages: func(ctx context.Context, msgs ...kafka.Message) error {
			return ctx.Err()
		},
	}
	producer := createTestProducer(mockWriter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, producer.Publish(ctx, testRecord()))
}

func TestProducerClose(t *testing.T) {
	mockWriter := &mockKafkaWriter{}
	producer := createTestProducer(mockWriter)

	require.NoError(t, producer.Close())
	assert.True(t, mockWriter.closed)
}
