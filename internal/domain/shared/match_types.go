package shared

// Outcome classifies a scored transaction/document pair
type Outcome string

const (
	// OutcomeAutoMatched means the pair was committed without human review
	OutcomeAutoMatched Outcome = "auto_matched"

	// OutcomeSuggested means the pair was persisted for manual review
	OutcomeSuggested Outcome = "suggested"

	// OutcomeNoMatch means the pair scored below the suggestion cut-point
	OutcomeNoMatch Outcome = "no_match_yet"
)

// Pass identifies which traversal direction produced an outcome
type Pass string

const (
	// PassForward starts from newly observed transactions and searches documents
	PassForward Pass = "forward"

	// PassReverse starts from pending documents and searches transactions
	PassReverse Pass = "reverse"
)

// SubScores carries the four independent signals a pair was scored on.
// Each is normalized to [0, 1]. They are persisted with every terminal
// outcome so reviewers and the notification layer can explain a decision.
type SubScores struct {
	Amount   float64 `json:"amount" bson:"amount"`
	Currency float64 `json:"currency" bson:"currency"`
	Date     float64 `json:"date" bson:"date"`
	Semantic float64 `json:"semantic" bson:"semantic"`
}
