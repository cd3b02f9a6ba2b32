package transaction

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Date(t *testing.T) {
	booking := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	value := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)

	t.Run("PrefersBookingDate", func(t *testing.T) {
		tx := &Transaction{BookingDate: &booking, ValueDate: &value}
		assert.Equal(t, &booking, tx.Date())
	})

	t.Run("FallsBackToValueDate", func(t *testing.T) {
		tx := &Transaction{ValueDate: &value}
		assert.Equal(t, &value, tx.Date())
	})

	t.Run("NilWhenBothAbsent", func(t *testing.T) {
		tx := &Transaction{}
		assert.Nil(t, tx.Date())
	})
}

func TestTransaction_IsCredit(t *testing.T) {
	t.Run("PositiveAmountIsCredit", func(t *testing.T) {
		tx := &Transaction{Amount: NumericAmount(250.00)}
		assert.True(t, tx.IsCredit())
	})

	t.Run("NegativeAmountIsDebit", func(t *testing.T) {
		tx := &Transaction{Amount: NumericAmount(-100.50)}
		assert.False(t, tx.IsCredit())
	})

	t.Run("ZeroCountsAsCredit", func(t *testing.T) {
		tx := &Transaction{Amount: NumericAmount(0)}
		assert.True(t, tx.IsCredit())
	})
}

func TestTransaction_IsMatched(t *testing.T) {
	docID := uuid.New()

	t.Run("MatchedWhenDocumentLinked", func(t *testing.T) {
		tx := &Transaction{MatchedDocumentID: &docID}
		assert.True(t, tx.IsMatched())
	})

	t.Run("UnmatchedWhenNoDocument", func(t *testing.T) {
		tx := &Transaction{}
		assert.False(t, tx.IsMatched())
	})
}
