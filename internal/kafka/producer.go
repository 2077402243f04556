package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"eventgate/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

// PublishScan streams an entry/exit scan event to Kafka, keyed by event id
// so all scans of one event land on the same partition in order.
func (p *Producer) PublishScan(scan models.ScanEvent) error {
	msgBytes, err := json.Marshal(scan)
	if err != nil {
		return fmt.Errorf("failed to marshal scan event: %w", err)
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(scan.EventID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
