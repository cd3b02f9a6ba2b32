package matchaudit

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages match audit record persistence
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetByTransactionID(ctx context.Context, teamID, transactionID uuid.UUID) ([]*Record, error)
	GetByDocumentID(ctx context.Context, teamID, documentID uuid.UUID) ([]*Record, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID, limit, offset int) ([]*Record, error)
}
