package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/inbox-reconciler/internal/config"
	"github.com/segmentio/kafka-go"
)

// RunRequestProducer publishes matching-run requests from the API gateway to
// the match processor. Messages are keyed by team id so one team's runs stay
// ordered on a single partition.
type RunRequestProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewRunRequestProducer creates the gateway-side producer and ensures the
// run-request topic exists.
func NewRunRequestProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*RunRequestProducer, error) {
	if cfg.RunRequestTopic == "" {
		return nil, fmt.Errorf("kafka run request topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for run request producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.RunRequestTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure run request topic %s exists: %w", cfg.RunRequestTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.RunRequestTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Using async for high throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.RunRequestTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.RunRequestTopic, "count", len(messages))
			}
		},
	}

	return &RunRequestProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.RunRequestTopic,
	}, nil
}

func (p *RunRequestProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for run request producer: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish run request",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s via run request producer: %w", p.topic, err)
	}

	p.logger.Debug("Published run request",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *RunRequestProducer) Close() error {
	p.logger.Info("Closing run request Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
