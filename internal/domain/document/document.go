package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status defines the reconciliation states of an inbox document
type Status string

const (
	// StatusPending means the document awaits reconciliation
	StatusPending Status = "pending"

	// StatusDone means the document is linked to its transaction
	StatusDone Status = "done"
)

// InboxItem is a candidate receipt, invoice, or forwarded email awaiting
// reconciliation against a bank transaction. Its amount, currency, date, and
// descriptive text come from an upstream extraction pipeline and may be
// partially missing; the matching engine degrades gracefully rather than
// rejecting such documents.
type InboxItem struct {
	ID          uuid.UUID       `json:"id"`
	TeamID      uuid.UUID       `json:"team_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Date        *time.Time      `json:"date,omitempty"`
	Description string          `json:"description,omitempty"`
	Status      Status          `json:"status"`

	// MatchedTransactionID is set when the document transitions to done
	MatchedTransactionID *uuid.UUID `json:"matched_transaction_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPending reports whether the document still awaits reconciliation
func (d *InboxItem) IsPending() bool {
	return d.Status == StatusPending
}
