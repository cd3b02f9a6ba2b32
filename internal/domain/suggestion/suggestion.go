package suggestion

import (
	"time"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/domain/shared"
)

// Suggestion is a persisted candidate pairing between one transaction and one
// document whose confidence fell below the auto-match cut-point. A document
// may accumulate several suggestions until a reviewer resolves it; the pair
// (transaction, document) is unique, which keeps re-runs from multiplying
// suggestions.
type Suggestion struct {
	ID            uuid.UUID        `json:"id"`
	TeamID        uuid.UUID        `json:"team_id"`
	TransactionID uuid.UUID        `json:"transaction_id"`
	DocumentID    uuid.UUID        `json:"document_id"`
	CombinedScore float64          `json:"combined_score"`
	SubScores     shared.SubScores `json:"sub_scores"`
	Pass          shared.Pass      `json:"pass"`
	CreatedAt     time.Time        `json:"created_at"`
}

// New builds a suggestion for a scored pair
func New(teamID, transactionID, documentID uuid.UUID, combined float64, scores shared.SubScores, pass shared.Pass) *Suggestion {
	return &Suggestion{
		ID:            uuid.New(),
		TeamID:        teamID,
		TransactionID: transactionID,
		DocumentID:    documentID,
		CombinedScore: combined,
		SubScores:     scores,
		Pass:          pass,
		CreatedAt:     time.Now().UTC(),
	}
}
