// Package consumer wires the Kafka run-request stream into the matching
// engine.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/domain/shared"
	"github.com/inbox-reconciler/internal/matching"
	"github.com/inbox-reconciler/internal/platform/messaging/producers"
)

// RunExecutor executes one matching run; satisfied by *matching.Engine
type RunExecutor interface {
	Run(ctx context.Context, teamID uuid.UUID, newTransactionIDs []uuid.UUID, correlationID string) (*matching.RunSummary, error)
}

// RunEventHandler handles incoming matching-run request messages from Kafka
type RunEventHandler struct {
	engine   RunExecutor
	producer producers.DeadLetterPublisher
	logger   *slog.Logger
}

// NewRunEventHandler creates a new handler
func NewRunEventHandler(
	logger *slog.Logger,
	engine RunExecutor,
	producer producers.DeadLetterPublisher,
) *RunEventHandler {
	return &RunEventHandler{
		engine:   engine,
		producer: producer,
		logger:   logger,
	}
}

// HandleMessage processes Kafka messages
func (h *RunEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.RunRequest
	if err := json.Unmarshal(value, &request); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal run request from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received matching run request",
		"team_id", request.TeamID.String(),
		"transaction_count", len(request.TransactionIDs),
	)

	summary, err := h.engine.Run(ctx, request.TeamID, request.TransactionIDs, request.CorrelationID)
	if err != nil {
		logger.Error("Matching run failed",
			"team_id", request.TeamID.String(),
			"error", err,
		)
		return fmt.Errorf("matching run for team %s failed: %w", request.TeamID.String(), err)
	}

	logger.Info("Matching run finished",
		"team_id", request.TeamID.String(),
		"auto_matched", summary.AutoMatched(),
		"suggested", summary.Suggested(),
		"no_matches", summary.NoMatches,
		"skipped", summary.Skipped,
	)
	return nil // Success, commit offset
}
