package matching

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/inbox-reconciler/internal/config"
	"github.com/inbox-reconciler/internal/domain/document"
	"github.com/inbox-reconciler/internal/domain/shared"
	"github.com/inbox-reconciler/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSimilarity returns a fixed similarity or error. The reverse pass scores
// concurrently, so the call counter is guarded.
type stubSimilarity struct {
	mu    sync.Mutex
	value float64
	err   error
	calls int
}

func (s *stubSimilarity) Similarity(_ context.Context, _, _ string) (float64, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.value, s.err
}

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		AutoMatchThreshold:    0.85,
		SuggestThreshold:      0.60,
		AmountWeight:          0.35,
		CurrencyWeight:        0.15,
		DateWeight:            0.25,
		SemanticWeight:        0.25,
		AmountTolerance:       0.10,
		CurrencyMismatchScore: 0.25,
		DateWindowDays:        30,
		ReverseBatchSize:      10,
		RunTimeout:            2 * time.Minute,
	}
}

func testDate(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(transaction.DateLayout, value)
	require.NoError(t, err)
	return &parsed
}

func pairFor(t *testing.T, txAmount float64, txCurrency, txDate string, docAmount, docCurrency, docDate string) (*transaction.Transaction, *document.InboxItem) {
	t.Helper()

	tx := &transaction.Transaction{
		Amount:      transaction.NumericAmount(txAmount),
		Currency:    txCurrency,
		Description: "ACME GmbH invoice 4711",
	}
	if txDate != "" {
		tx.BookingDate = testDate(t, txDate)
	}

	doc := &document.InboxItem{
		Amount:      decimal.RequireFromString(docAmount),
		Currency:    docCurrency,
		Description: "Invoice 4711 from ACME",
		Status:      document.StatusPending,
	}
	if docDate != "" {
		doc.Date = testDate(t, docDate)
	}

	return tx, doc
}

func TestScorer_Score_ExactPair(t *testing.T) {
	similarity := &stubSimilarity{value: 0.9}
	scorer := NewScorer(testMatchingConfig(), similarity)

	tx, doc := pairFor(t, -100.50, "EUR", "2024-01-15", "100.50", "EUR", "2024-01-15")

	scores, combined, err := scorer.Score(context.Background(), tx, doc)
	require.NoError(t, err)

	assert.Equal(t, 1.0, scores.Amount)
	assert.Equal(t, 1.0, scores.Currency)
	assert.Equal(t, 1.0, scores.Date)
	assert.Equal(t, 0.9, scores.Semantic)
	assert.InDelta(t, 0.975, combined, 1e-9)
}

func TestScorer_Score_DateOffsetDegrades(t *testing.T) {
	similarity := &stubSimilarity{value: 0.9}
	scorer := NewScorer(testMatchingConfig(), similarity)

	// Same amount and currency, dates 20 days apart
	tx, doc := pairFor(t, -100.50, "EUR", "2024-01-15", "100.50", "EUR", "2024-02-04")

	scores, combined, err := scorer.Score(context.Background(), tx, doc)
	require.NoError(t, err)

	assert.InDelta(t, 1.0/3.0, scores.Date, 1e-9)
	assert.InDelta(t, 0.80833, combined, 1e-4)
}

func TestScorer_AmountScore(t *testing.T) {
	scorer := NewScorer(testMatchingConfig(), &stubSimilarity{})

	tests := []struct {
		name      string
		txAmount  float64
		docAmount string
		want      float64
		delta     float64
	}{
		{"exact", -100.50, "100.50", 1.0, 0},
		{"signs ignored", 100.50, "100.50", 1.0, 0},
		{"small relative difference decays", -100, "105", 1 - (5.0/105.0)/0.10, 1e-9},
		{"at tolerance boundary", -100, "90", 0, 0},
		{"beyond tolerance", -100, "50", 0, 0},
		{"both zero", 0, "0", 1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &transaction.Transaction{Amount: transaction.NumericAmount(tt.txAmount)}
			doc := &document.InboxItem{Amount: decimal.RequireFromString(tt.docAmount)}
			got := scorer.amountScore(tx, doc)
			if tt.delta > 0 {
				assert.InDelta(t, tt.want, got, tt.delta)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestScorer_CurrencyScore(t *testing.T) {
	scorer := NewScorer(testMatchingConfig(), &stubSimilarity{})

	tests := []struct {
		name     string
		tx       *transaction.Transaction
		docCurr  string
		expected float64
	}{
		{"match", &transaction.Transaction{Currency: "EUR"}, "EUR", 1.0},
		{"match is case-insensitive", &transaction.Transaction{Currency: "eur"}, "EUR", 1.0},
		{"mismatch dampens", &transaction.Transaction{Currency: "USD"}, "EUR", 0.25},
		{"missing on transaction", &transaction.Transaction{}, "EUR", 0},
		{"missing on document", &transaction.Transaction{Currency: "EUR"}, "", 0},
		{
			"object amount carries the currency",
			&transaction.Transaction{Amount: transaction.ObjectAmount("100.50", "EUR")},
			"EUR",
			1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &document.InboxItem{Currency: tt.docCurr}
			assert.Equal(t, tt.expected, scorer.currencyScore(tt.tx, doc))
		})
	}
}

func TestScorer_DateScore(t *testing.T) {
	scorer := NewScorer(testMatchingConfig(), &stubSimilarity{})

	t.Run("same day", func(t *testing.T) {
		tx := &transaction.Transaction{BookingDate: testDate(t, "2024-01-15")}
		doc := &document.InboxItem{Date: testDate(t, "2024-01-15")}
		assert.Equal(t, 1.0, scorer.dateScore(tx, doc))
	})

	t.Run("monotonic decay with offset", func(t *testing.T) {
		doc := &document.InboxItem{Date: testDate(t, "2024-01-15")}
		prev := 1.0
		for _, day := range []string{"2024-01-16", "2024-01-20", "2024-01-30", "2024-02-10"} {
			tx := &transaction.Transaction{BookingDate: testDate(t, day)}
			score := scorer.dateScore(tx, doc)
			assert.Less(t, score, prev, "offset %s", day)
			prev = score
		}
	})

	t.Run("outside window", func(t *testing.T) {
		tx := &transaction.Transaction{BookingDate: testDate(t, "2024-03-15")}
		doc := &document.InboxItem{Date: testDate(t, "2024-01-15")}
		assert.Equal(t, 0.0, scorer.dateScore(tx, doc))
	})

	t.Run("missing dates", func(t *testing.T) {
		tx := &transaction.Transaction{}
		doc := &document.InboxItem{Date: testDate(t, "2024-01-15")}
		assert.Equal(t, 0.0, scorer.dateScore(tx, doc))
		assert.Equal(t, 0.0, scorer.dateScore(&transaction.Transaction{BookingDate: testDate(t, "2024-01-15")}, &document.InboxItem{}))
	})
}

func TestScorer_SemanticScore(t *testing.T) {
	t.Run("empty text skips the provider", func(t *testing.T) {
		similarity := &stubSimilarity{value: 0.9}
		scorer := NewScorer(testMatchingConfig(), similarity)

		tx := &transaction.Transaction{Description: ""}
		doc := &document.InboxItem{Description: "Invoice 4711"}

		score, err := scorer.semanticScore(context.Background(), tx, doc)
		require.NoError(t, err)
		assert.Equal(t, 0.0, score)
		assert.Zero(t, similarity.calls)
	})

	t.Run("provider error propagates", func(t *testing.T) {
		providerErr := errors.New("embedding service unavailable")
		scorer := NewScorer(testMatchingConfig(), &stubSimilarity{err: providerErr})

		tx, doc := pairFor(t, -100.50, "EUR", "2024-01-15", "100.50", "EUR", "2024-01-15")
		_, _, err := scorer.Score(context.Background(), tx, doc)
		assert.ErrorIs(t, err, providerErr)
	})

	t.Run("out-of-range similarity is clamped", func(t *testing.T) {
		scorer := NewScorer(testMatchingConfig(), &stubSimilarity{value: 1.7})

		tx, doc := pairFor(t, -100.50, "EUR", "2024-01-15", "100.50", "EUR", "2024-01-15")
		scores, _, err := scorer.Score(context.Background(), tx, doc)
		require.NoError(t, err)
		assert.Equal(t, 1.0, scores.Semantic)
	})
}

func sharedSubScores(v [4]float64) shared.SubScores {
	return shared.SubScores{Amount: v[0], Currency: v[1], Date: v[2], Semantic: v[3]}
}

func TestScorer_Combine_Bounds(t *testing.T) {
	scorer := NewScorer(testMatchingConfig(), &stubSimilarity{})

	tests := []struct {
		name   string
		scores [4]float64
		want   float64
	}{
		{"all zero", [4]float64{0, 0, 0, 0}, 0},
		{"all one", [4]float64{1, 1, 1, 1}, 1},
		{"mixed stays within bounds", [4]float64{0.5, 0.25, 0.75, 0.1}, 0.425},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combined := scorer.Combine(sharedSubScores(tt.scores))
			assert.InDelta(t, tt.want, combined, 1e-9)
			assert.GreaterOrEqual(t, combined, 0.0)
			assert.LessOrEqual(t, combined, 1.0)
		})
	}

	t.Run("degenerate weights", func(t *testing.T) {
		scorer := NewScorer(config.MatchingConfig{}, &stubSimilarity{})
		assert.Equal(t, 0.0, scorer.Combine(sharedSubScores([4]float64{1, 1, 1, 1})))
	})
}
