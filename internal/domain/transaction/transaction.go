package transaction

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the textual form of a transaction date inside the dedup key
const DateLayout = "2006-01-02"

// Transaction represents a posted bank-account movement observed from an
// upstream banking feed. The feed assigns no reliable identifier, so the same
// real-world movement may be delivered more than once; identity is derived
// from the fundamental fields via DedupKey.
type Transaction struct {
	ID          uuid.UUID  `json:"id"`
	TeamID      uuid.UUID  `json:"team_id"`
	BookingDate *time.Time `json:"booking_date,omitempty"` // Date the bank recorded the movement, preferred
	ValueDate   *time.Time `json:"value_date,omitempty"`   // Fallback when the booking date is absent
	Amount      Amount     `json:"amount"`
	Currency    string     `json:"currency"`
	Description string     `json:"description,omitempty"` // Counterparty / remittance text from the feed

	// MatchedDocumentID links the transaction to its reconciled inbox
	// document once a match is committed. At most one document, ever.
	MatchedDocumentID *uuid.UUID `json:"matched_document_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Date returns the fundamental date of the transaction: the booking date when
// present, otherwise the value date, otherwise nil.
func (t *Transaction) Date() *time.Time {
	if t.BookingDate != nil {
		return t.BookingDate
	}
	return t.ValueDate
}

// IsCredit reports whether the amount classifies as a credit. Zero counts as
// credit so the classification is total over all inputs.
func (t *Transaction) IsCredit() bool {
	return t.Amount.Value() >= 0
}

// IsMatched reports whether the transaction is already linked to a document
func (t *Transaction) IsMatched() bool {
	return t.MatchedDocumentID != nil
}
