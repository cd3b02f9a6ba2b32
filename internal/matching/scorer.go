// Package matching implements the transaction/document reconciliation engine:
// a multi-signal pair scorer, the threshold policy classifying combined scores,
// and the bidirectional matcher orchestrating forward and reverse passes.
package matching

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/inbox-reconciler/internal/config"
	"github.com/inbox-reconciler/internal/domain/document"
	"github.com/inbox-reconciler/internal/domain/shared"
	"github.com/inbox-reconciler/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Scorer computes the four sub-scores for a transaction/document pair and
// combines them into one confidence score. Sub-scores and the combined score
// are always within [0, 1] regardless of malformed inputs: a missing currency
// or date degrades the relevant sub-score to its minimum instead of failing.
type Scorer struct {
	cfg        config.MatchingConfig
	similarity SimilarityProvider
}

// NewScorer creates a scorer with the given calibration constants
func NewScorer(cfg config.MatchingConfig, similarity SimilarityProvider) *Scorer {
	return &Scorer{
		cfg:        cfg,
		similarity: similarity,
	}
}

// Score evaluates one pair. The only error source is the similarity provider;
// everything else degrades. A returned error means the pair evaluation failed
// and the item should be skipped, not that the run is broken.
func (s *Scorer) Score(ctx context.Context, tx *transaction.Transaction, doc *document.InboxItem) (shared.SubScores, float64, error) {
	scores := shared.SubScores{
		Amount:   s.amountScore(tx, doc),
		Currency: s.currencyScore(tx, doc),
		Date:     s.dateScore(tx, doc),
	}

	semantic, err := s.semanticScore(ctx, tx, doc)
	if err != nil {
		return shared.SubScores{}, 0, fmt.Errorf("semantic score for transaction %s / document %s: %w", tx.ID, doc.ID, err)
	}
	scores.Semantic = semantic

	return scores, s.Combine(scores), nil
}

// Combine folds the sub-scores into the combined confidence score: a weighted
// mean, normalized by the weight sum so the result stays in [0, 1] for any
// non-degenerate weight configuration.
func (s *Scorer) Combine(scores shared.SubScores) float64 {
	weightSum := s.cfg.AmountWeight + s.cfg.CurrencyWeight + s.cfg.DateWeight + s.cfg.SemanticWeight
	if weightSum <= 0 {
		return 0
	}

	combined := (scores.Amount*s.cfg.AmountWeight +
		scores.Currency*s.cfg.CurrencyWeight +
		scores.Date*s.cfg.DateWeight +
		scores.Semantic*s.cfg.SemanticWeight) / weightSum

	return clamp01(combined)
}

// amountScore is 1.0 when the absolute amounts are equal and decays linearly
// with the relative difference, reaching 0 at the configured tolerance ratio.
func (s *Scorer) amountScore(tx *transaction.Transaction, doc *document.InboxItem) float64 {
	txAbs := decimal.NewFromFloat(math.Abs(tx.Amount.Value()))
	docAbs := doc.Amount.Abs()

	if txAbs.Equal(docAbs) {
		return 1.0
	}

	larger := txAbs
	if docAbs.GreaterThan(larger) {
		larger = docAbs
	}
	if larger.IsZero() {
		// Both zero is handled by the equality check above; a zero larger
		// side with unequal amounts cannot happen, but guard the division.
		return 0
	}

	relDiff := txAbs.Sub(docAbs).Abs().Div(larger).InexactFloat64()
	if relDiff >= s.cfg.AmountTolerance {
		return 0
	}

	return clamp01(1 - relDiff/s.cfg.AmountTolerance)
}

// currencyScore is near-binary: full score on exact match, a reduced score on
// mismatch (extraction pipelines misread currencies often enough that a
// mismatch should dampen, not veto), and 0 when either side has no currency.
func (s *Scorer) currencyScore(tx *transaction.Transaction, doc *document.InboxItem) float64 {
	txCurrency := tx.Currency
	if txCurrency == "" {
		// The object amount encoding carries its own currency
		txCurrency = tx.Amount.Currency
	}

	if txCurrency == "" || doc.Currency == "" {
		return 0
	}
	if strings.EqualFold(txCurrency, doc.Currency) {
		return 1.0
	}
	return s.cfg.CurrencyMismatchScore
}

// dateScore is 1.0 at zero day offset and decays linearly to 0 at the
// configured window. A missing date on either side scores 0.
func (s *Scorer) dateScore(tx *transaction.Transaction, doc *document.InboxItem) float64 {
	txDate := tx.Date()
	if txDate == nil || doc.Date == nil {
		return 0
	}

	days := math.Abs(txDate.Sub(*doc.Date).Hours()) / 24
	window := float64(s.cfg.DateWindowDays)
	if days >= window {
		return 0
	}

	return clamp01(1 - days/window)
}

// semanticScore delegates to the similarity provider. Empty text on either
// side scores 0 without a lookup; provider failures propagate so the caller
// can count the pair as a per-item failure.
func (s *Scorer) semanticScore(ctx context.Context, tx *transaction.Transaction, doc *document.InboxItem) (float64, error) {
	if tx.Description == "" || doc.Description == "" {
		return 0, nil
	}

	similarity, err := s.similarity.Similarity(ctx, tx.Description, doc.Description)
	if err != nil {
		return 0, err
	}

	return clamp01(similarity), nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
