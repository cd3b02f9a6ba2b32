package shared

import (
	"time"

	"github.com/google/uuid"
)

// RunRequest defines a Kafka message asking the match processor to execute a
// matching run over a team's newly ingested (already deduplicated) batch.
type RunRequest struct {
	TeamID         uuid.UUID   `json:"team_id"`
	TransactionIDs []uuid.UUID `json:"transaction_ids"`
	CorrelationID  string      `json:"correlation_id"`
	Timestamp      time.Time   `json:"timestamp"`
}

// OutcomeEvent defines a Kafka message reporting one resolved or suggested
// pair to the notification dispatcher. Delivery and user-facing formatting are
// the dispatcher's concern, not this engine's.
type OutcomeEvent struct {
	TeamID        uuid.UUID `json:"team_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	DocumentID    uuid.UUID `json:"document_id"`
	Outcome       Outcome   `json:"outcome"`
	Pass          Pass      `json:"pass"`
	CombinedScore float64   `json:"combined_score"`
	SubScores     SubScores `json:"sub_scores"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
