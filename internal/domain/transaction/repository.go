package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines transaction persistence operations. All reads are scoped
// by team id for isolation.
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, teamID, id uuid.UUID) (*Transaction, error)
	GetByIDs(ctx context.Context, teamID uuid.UUID, ids []uuid.UUID) ([]*Transaction, error)

	// ListUnmatched returns the team's candidate pool for the reverse pass:
	// transactions not yet linked to a document, newest first.
	ListUnmatched(ctx context.Context, teamID uuid.UUID, since time.Time) ([]*Transaction, error)

	// ListRecent returns the team's transactions observed since the given
	// time, used as the existing side of an ingestion merge.
	ListRecent(ctx context.Context, teamID uuid.UUID, since time.Time) ([]*Transaction, error)

	// LinkDocument records the terminal match link. The update is conditional
	// on the transaction being unlinked; a concurrent committer winning the
	// race surfaces as ErrAlreadyLinked.
	LinkDocument(ctx context.Context, teamID, id, documentID uuid.UUID) error

	WithTx(tx pgx.Tx) Repository
}

// ErrNotFound indicates a missing transaction
type ErrNotFound struct {
	ID uuid.UUID
}

func (e ErrNotFound) Error() string {
	return "transaction not found: " + e.ID.String()
}

// Is implements errors.Is matching; a zero-value target matches any ErrNotFound
func (e ErrNotFound) Is(target error) bool {
	t, ok := target.(ErrNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}

// ErrAlreadyLinked indicates the transaction is already linked to a document.
// It is the single-writer guard for the 1:1 match invariant: the first
// committer wins and later committers treat this as a no-op signal.
type ErrAlreadyLinked struct {
	ID uuid.UUID
}

func (e ErrAlreadyLinked) Error() string {
	return "transaction already linked to a document: " + e.ID.String()
}

// Is implements errors.Is matching; a zero-value target matches any ErrAlreadyLinked
func (e ErrAlreadyLinked) Is(target error) bool {
	t, ok := target.(ErrAlreadyLinked)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
