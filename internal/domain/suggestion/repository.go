package suggestion

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages suggestion persistence with pagination support
type Repository interface {
	// Create persists a suggestion. The (transaction, document) pair is
	// unique; inserting an existing pair is a no-op and returns false, which
	// is what makes re-running a matching run produce zero new suggestions.
	Create(ctx context.Context, s *Suggestion) (bool, error)

	ListByTeam(ctx context.Context, teamID uuid.UUID, limit, offset int) ([]*Suggestion, error)
	CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
	ListByDocument(ctx context.Context, teamID, documentID uuid.UUID) ([]*Suggestion, error)

	// DeleteByDocument removes a resolved document's outstanding suggestions
	DeleteByDocument(ctx context.Context, teamID, documentID uuid.UUID) error

	WithTx(tx pgx.Tx) Repository
}
