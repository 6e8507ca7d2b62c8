package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/printstarter/printstarter/internal/config"
)

// KafkaSink publishes alert events to a Kafka topic so downstream
// consumers (on-call tooling, long-term audit) can react independently of
// the synchronous webhook/email transports.
type KafkaSink struct {
	writer *kafka.Writer
}

// NewKafkaSink creates the Kafka sink. Callers should check
// cfg.Configured() first.
func NewKafkaSink(cfg *config.KafkaConfig) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (s *KafkaSink) Name() string {
	return "kafka"
}

func (s *KafkaSink) Send(ctx context.Context, payload Payload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal alert payload: %w", err)
	}

	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.Type),
		Value: value,
	})
}

// Close releases the underlying Kafka writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
