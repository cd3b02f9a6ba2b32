package handler

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/domain/transaction"
)

// RunMatchingRequest asks for a matching run over previously imported
// transactions. An empty list means the run only performs the reverse pass.
type RunMatchingRequest struct {
	TransactionIDs []string `json:"transaction_ids" binding:"omitempty,dive,uuid"`
}

// TransactionPayload is one bank transaction as delivered by the upstream
// feed. The amount accepts both wire encodings (bare number or
// {amount, currency} object); dates use the YYYY-MM-DD form and are optional.
type TransactionPayload struct {
	BookingDate *string            `json:"bookingDate,omitempty"`
	ValueDate   *string            `json:"valueDate,omitempty"`
	Amount      transaction.Amount `json:"amount"`
	Currency    string             `json:"currency,omitempty"`
	Description string             `json:"description,omitempty"`
}

// toDomain converts the payload into a domain transaction owned by the team
func (p *TransactionPayload) toDomain(teamID uuid.UUID) (*transaction.Transaction, error) {
	now := time.Now().UTC()
	tx := &transaction.Transaction{
		ID:          uuid.New(),
		TeamID:      teamID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Description: p.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var err error
	if tx.BookingDate, err = parseDate(p.BookingDate); err != nil {
		return nil, fmt.Errorf("invalid bookingDate: %w", err)
	}
	if tx.ValueDate, err = parseDate(p.ValueDate); err != nil {
		return nil, fmt.Errorf("invalid valueDate: %w", err)
	}

	return tx, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(transaction.DateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ImportTransactionsRequest carries a batch of transactions from the feed
type ImportTransactionsRequest struct {
	Transactions []TransactionPayload `json:"transactions" binding:"required,min=1"`
}

// ImportTransactionsResponse reports the outcome of a batch import
type ImportTransactionsResponse struct {
	ImportedCount  int      `json:"imported_count"`
	DuplicateCount int      `json:"duplicate_count"`
	FailedCount    int      `json:"failed_count"`
	ImportedIDs    []string `json:"imported_ids"`
	RunRequested   bool     `json:"run_requested"`
}

// DuplicateKeysRequest carries a batch to check for internal duplicates
type DuplicateKeysRequest struct {
	Transactions []TransactionPayload `json:"transactions" binding:"required"`
}

// DuplicateKeysResponse lists the dedup keys occurring more than once
type DuplicateKeysResponse struct {
	DuplicateKeys []string `json:"duplicate_keys"`
}

// SuggestionResponse represents a match suggestion in API responses
type SuggestionResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	DocumentID    string    `json:"document_id"`
	CombinedScore float64   `json:"combined_score"`
	SubScores     SubScores `json:"sub_scores"`
	Pass          string    `json:"pass"`
	CreatedAt     string    `json:"created_at"`
}

// SubScores mirrors the per-signal scores of a suggestion
type SubScores struct {
	Amount   float64 `json:"amount"`
	Currency float64 `json:"currency"`
	Date     float64 `json:"date"`
	Semantic float64 `json:"semantic"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
