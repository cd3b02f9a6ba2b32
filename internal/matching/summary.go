package matching

import (
	"time"

	"github.com/google/uuid"
)

// RunSummary reports what one matching run did. Auto-match and suggestion
// counts are split by pass so operators can see which traversal direction is
// doing the work.
type RunSummary struct {
	TeamID                uuid.UUID `json:"team_id"`
	TransactionsProcessed int       `json:"transactions_processed"`
	DocumentsProcessed    int       `json:"documents_processed"`
	TotalProcessed        int       `json:"total_processed"`
	AutoMatchedForward    int       `json:"auto_matched_forward"`
	AutoMatchedReverse    int       `json:"auto_matched_reverse"`
	SuggestedForward      int       `json:"suggested_forward"`
	SuggestedReverse      int       `json:"suggested_reverse"`
	NoMatches             int       `json:"no_matches"`
	Skipped               int       `json:"skipped"`
	StartedAt             time.Time `json:"started_at"`
	CompletedAt           time.Time `json:"completed_at"`
}

// AutoMatched is the total across both passes
func (s *RunSummary) AutoMatched() int {
	return s.AutoMatchedForward + s.AutoMatchedReverse
}

// Suggested is the total across both passes
func (s *RunSummary) Suggested() int {
	return s.SuggestedForward + s.SuggestedReverse
}
