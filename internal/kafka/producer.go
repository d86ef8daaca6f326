package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/velwu/docker-fin-data/internal/models"
)

// Producer handles publishing ingestion events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishRecordsIngested publishes an event after a symbol's daily batch
// has been written to the store
func (p *Producer) PublishRecordsIngested(ctx context.Context, symbol string, fetched int, inserted int64) error {
	event := models.IngestionEvent{
		EventType: "RECORDS_INGESTED",
		Symbol:    symbol,
		Fetched:   fetched,
		Inserted:  inserted,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, symbol, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.IngestionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close shuts down the underlying writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
