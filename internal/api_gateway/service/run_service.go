package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/domain/shared"
	"github.com/inbox-reconciler/internal/platform/messaging/producers"
)

// RunServiceImpl implements the RunService interface
type RunServiceImpl struct {
	producer producers.MessagePublisher
	logger   *slog.Logger
}

// NewRunService creates a new run service
func NewRunService(logger *slog.Logger, producer producers.MessagePublisher) RunService {
	return &RunServiceImpl{
		producer: producer,
		logger:   logger,
	}
}

// RequestRun publishes a run request keyed by team id, so one team's runs
// land on a single partition and execute in order.
func (s *RunServiceImpl) RequestRun(ctx context.Context, teamID uuid.UUID, transactionIDs []uuid.UUID, correlationID string) error {
	request := &shared.RunRequest{
		TeamID:         teamID,
		TransactionIDs: transactionIDs,
		CorrelationID:  correlationID,
		Timestamp:      time.Now().UTC(),
	}

	if err := s.producer.Publish(ctx, teamID.String(), request); err != nil {
		s.logger.Error("Failed to publish run request",
			"team_id", teamID.String(),
			"transaction_count", len(transactionIDs),
			"error", err,
		)
		return err
	}

	s.logger.Info("Run request published",
		"team_id", teamID.String(),
		"transaction_count", len(transactionIDs),
		"correlation_id", correlationID,
	)

	return nil
}
