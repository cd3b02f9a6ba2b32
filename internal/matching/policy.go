package matching

import (
	"time"

	"github.com/inbox-reconciler/internal/config"
	"github.com/inbox-reconciler/internal/domain/document"
	"github.com/inbox-reconciler/internal/domain/shared"
	"github.com/inbox-reconciler/internal/domain/transaction"
)

// Policy maps a combined confidence score to one of the three outcomes using
// two fixed cut-points. The cut-points are calibrated against the scorer's
// combination function and are loaded from configuration.
type Policy struct {
	autoMatchThreshold float64
	suggestThreshold   float64
}

// NewPolicy creates a policy from the matching configuration
func NewPolicy(cfg config.MatchingConfig) Policy {
	return Policy{
		autoMatchThreshold: cfg.AutoMatchThreshold,
		suggestThreshold:   cfg.SuggestThreshold,
	}
}

// Classify maps a combined score to an outcome
func (p Policy) Classify(score float64) shared.Outcome {
	switch {
	case score >= p.autoMatchThreshold:
		return shared.OutcomeAutoMatched
	case score >= p.suggestThreshold:
		return shared.OutcomeSuggested
	default:
		return shared.OutcomeNoMatch
	}
}

// Candidate is one scored transaction/document pair under consideration for a
// single subject (the transaction in the forward pass, the document in the
// reverse pass).
type Candidate struct {
	Transaction *transaction.Transaction
	Document    *document.InboxItem
	SubScores   shared.SubScores
	Combined    float64

	// date is the counterpart's date, used as the first tie-break; order is
	// the candidate's stable position in the input, used as the last one.
	date  *time.Time
	order int
}

// NewCandidate builds a candidate; date is the counterpart's date and order
// its position in the input list.
func NewCandidate(tx *transaction.Transaction, doc *document.InboxItem, scores shared.SubScores, combined float64, date *time.Time, order int) Candidate {
	return Candidate{
		Transaction: tx,
		Document:    doc,
		SubScores:   scores,
		Combined:    combined,
		date:        date,
		order:       order,
	}
}

// RankCandidates orders candidates best-first so outcomes are reproducible
// across runs: highest combined score wins, exact ties prefer the
// earlier-dated candidate, remaining ties fall back to stable input order.
// The input slice is not modified.
func RankCandidates(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	// Insertion sort keeps it simple and stable for the small candidate
	// sets a single team produces.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && betterCandidate(ranked[j], ranked[j-1]); j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	return ranked
}

// betterCandidate reports whether a should rank before b
func betterCandidate(a, b Candidate) bool {
	if a.Combined != b.Combined {
		return a.Combined > b.Combined
	}

	switch {
	case a.date != nil && b.date != nil:
		if !a.date.Equal(*b.date) {
			return a.date.Before(*b.date)
		}
	case a.date != nil:
		return true
	case b.date != nil:
		return false
	}

	return a.order < b.order
}
