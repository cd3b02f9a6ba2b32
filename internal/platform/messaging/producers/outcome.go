package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/inbox-reconciler/internal/config"
	"github.com/inbox-reconciler/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

// OutcomeProducer reports committed match outcomes to the notification
// dispatcher's topic. It implements matching.NotificationDispatcher. Only
// auto-matches and suggestions are published; no-matches produce no events.
type OutcomeProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewOutcomeProducer creates the processor-side producer and ensures the
// outcome topic exists.
func NewOutcomeProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*OutcomeProducer, error) {
	if cfg.OutcomeTopic == "" {
		return nil, fmt.Errorf("kafka outcome topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for outcome producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.OutcomeTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure outcome topic %s exists: %w", cfg.OutcomeTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.OutcomeTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false, // Outcomes are low volume; synchronous writes surface errors to the caller
		WriteTimeout: cfg.MaxWait,
	}

	return &OutcomeProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.OutcomeTopic,
	}, nil
}

// Dispatch publishes one outcome event, keyed by team id
func (p *OutcomeProducer) Dispatch(ctx context.Context, event *shared.OutcomeEvent) error {
	jsonValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.TeamID.String()),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish outcome event",
			"topic", p.topic,
			"team_id", event.TeamID.String(),
			"transaction_id", event.TransactionID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to publish outcome event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published outcome event",
		"topic", p.topic,
		"team_id", event.TeamID.String(),
		"outcome", string(event.Outcome),
	)
	return nil
}

func (p *OutcomeProducer) Close() error {
	p.logger.Info("Closing outcome Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
