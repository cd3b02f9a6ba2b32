package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/domain/suggestion"
	"github.com/inbox-reconciler/internal/domain/transaction"
)

// RunService requests matching runs from the match processor
type RunService interface {
	// RequestRun publishes a run request for the team covering the given
	// newly imported transactions. An empty id list is valid: the run then
	// only evaluates pending documents against the existing pool.
	RequestRun(ctx context.Context, teamID uuid.UUID, transactionIDs []uuid.UUID, correlationID string) error
}

// ImportResult reports the outcome of one batch import
type ImportResult struct {
	Imported       []*transaction.Transaction
	DuplicateCount int
	FailedCount    int
}

// TransactionService defines the interface for transaction ingestion
type TransactionService interface {
	// ImportBatch merges the incoming batch against recently observed
	// transactions by dedup key, persists the genuinely new ones, and
	// requests a matching run covering them. Per-item persistence failures
	// are counted, not propagated.
	ImportBatch(ctx context.Context, teamID uuid.UUID, incoming []*transaction.Transaction, correlationID string) (*ImportResult, error)
}

// SuggestionService defines the read side for match suggestions
type SuggestionService interface {
	// ListSuggestions returns one page of the team's suggestions plus the
	// total count.
	ListSuggestions(ctx context.Context, teamID uuid.UUID, page, perPage int) ([]*suggestion.Suggestion, int64, error)
}
