package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/domain/transaction"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	txRepo     transaction.Repository
	runService RunService
	lookback   time.Duration // How far back existing transactions count for the dedup merge
	logger     *slog.Logger
}

// NewTransactionService creates a new transaction ingestion service
func NewTransactionService(logger *slog.Logger, txRepo transaction.Repository, runService RunService, lookback time.Duration) TransactionService {
	return &TransactionServiceImpl{
		txRepo:     txRepo,
		runService: runService,
		lookback:   lookback,
		logger:     logger,
	}
}

// ImportBatch merges the incoming batch against recently observed
// transactions by dedup key, persists the genuinely new ones, and requests a
// matching run covering them. Re-importing the same batch yields zero new
// transactions and still requests a (reverse-only) run.
func (s *TransactionServiceImpl) ImportBatch(ctx context.Context, teamID uuid.UUID, incoming []*transaction.Transaction, correlationID string) (*ImportResult, error) {
	since := time.Now().Add(-s.lookback)
	existing, err := s.txRepo.ListRecent(ctx, teamID, since)
	if err != nil {
		return nil, err
	}

	// Collapse same-key deliveries within the batch itself first: the
	// identity law hands a historyless batch back from Merge untouched,
	// which would let both copies of a redelivered transaction persist.
	batch := incoming
	if len(batch) > 1 {
		batch = transaction.Merge(batch[:1], batch[1:])
	}

	merged := transaction.Merge(existing, batch)
	fresh := merged[len(existing):]

	result := &ImportResult{
		DuplicateCount: len(incoming) - len(fresh),
	}

	for _, tx := range fresh {
		if err := s.txRepo.Create(ctx, tx); err != nil {
			s.logger.Error("Failed to persist imported transaction, skipping",
				"team_id", teamID.String(),
				"dedup_key", tx.DedupKey(),
				"error", err,
			)
			result.FailedCount++
			continue
		}
		result.Imported = append(result.Imported, tx)
	}

	importedIDs := make([]uuid.UUID, 0, len(result.Imported))
	for _, tx := range result.Imported {
		importedIDs = append(importedIDs, tx.ID)
	}

	if err := s.runService.RequestRun(ctx, teamID, importedIDs, correlationID); err != nil {
		// The transactions are stored; the next scheduled run will pick
		// them up even though this request was lost.
		s.logger.Error("Failed to request matching run after import",
			"team_id", teamID.String(),
			"imported_count", len(importedIDs),
			"error", err,
		)
		return result, err
	}

	s.logger.Info("Transaction batch imported",
		"team_id", teamID.String(),
		"imported", len(result.Imported),
		"duplicates", result.DuplicateCount,
		"failed", result.FailedCount,
	)

	return result, nil
}
