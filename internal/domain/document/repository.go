package document

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines inbox document persistence operations, scoped by team id
type Repository interface {
	Create(ctx context.Context, doc *InboxItem) error
	GetByID(ctx context.Context, teamID, id uuid.UUID) (*InboxItem, error)
	ListPending(ctx context.Context, teamID uuid.UUID) ([]*InboxItem, error)

	// MarkDone transitions a pending document to done and links the matched
	// transaction. The update is conditional on the document still being
	// pending; losing the race to a concurrent committer surfaces as
	// ErrAlreadyDone so callers can treat it as a no-op.
	MarkDone(ctx context.Context, teamID, id, transactionID uuid.UUID) error

	WithTx(tx pgx.Tx) Repository
}

// ErrNotFound indicates a missing inbox document
type ErrNotFound struct {
	ID uuid.UUID
}

func (e ErrNotFound) Error() string {
	return "inbox document not found: " + e.ID.String()
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

// ErrAlreadyDone indicates the document was resolved by another committer.
// First committer wins; this is a race signal, not a failure.
type ErrAlreadyDone struct {
	ID uuid.UUID
}

func (e ErrAlreadyDone) Error() string {
	return "inbox document already done: " + e.ID.String()
}

// Is implements errors.Is matching; a zero-value target matches any ErrAlreadyDone
func (e ErrAlreadyDone) Is(target error) bool {
	t, ok := target.(ErrAlreadyDone)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
