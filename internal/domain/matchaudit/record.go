package matchaudit

import (
	"time"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/domain/shared"
)

// Record is the audit trail of one terminal matching decision. Every
// auto-match and suggestion is recorded with the full set of sub-scores that
// produced it, so a decision can be explained long after the run finished.
type Record struct {
	TeamID        uuid.UUID        `json:"team_id" bson:"team_id"`
	TransactionID uuid.UUID        `json:"transaction_id" bson:"transaction_id"`
	DocumentID    uuid.UUID        `json:"document_id" bson:"document_id"`
	Outcome       shared.Outcome   `json:"outcome" bson:"outcome"`
	Pass          shared.Pass      `json:"pass" bson:"pass"`
	CombinedScore float64          `json:"combined_score" bson:"combined_score"`
	SubScores     shared.SubScores `json:"sub_scores" bson:"sub_scores"`
	CorrelationID string           `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at" bson:"created_at"`
}
