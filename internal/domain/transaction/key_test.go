package transaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(DateLayout, value)
	require.NoError(t, err)
	return &parsed
}

func TestDedupKey(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
		want string
	}{
		{
			name: "debit with booking date",
			tx: Transaction{
				BookingDate: datePtr(t, "2024-01-15"),
				Amount:      NumericAmount(-100.50),
			},
			want: "2024-01-15-100.5-DBIT",
		},
		{
			name: "credit with booking date",
			tx: Transaction{
				BookingDate: datePtr(t, "2024-01-15"),
				Amount:      NumericAmount(250),
			},
			want: "2024-01-15-250-CRDT",
		},
		{
			name: "zero amount counts as credit",
			tx: Transaction{
				BookingDate: datePtr(t, "2024-03-01"),
				Amount:      NumericAmount(0),
			},
			want: "2024-03-01-0-CRDT",
		},
		{
			name: "value date used when booking date missing",
			tx: Transaction{
				ValueDate: datePtr(t, "2024-02-20"),
				Amount:    NumericAmount(-42.1),
			},
			want: "2024-02-20-42.1-DBIT",
		},
		{
			name: "booking date preferred over value date",
			tx: Transaction{
				BookingDate: datePtr(t, "2024-01-15"),
				ValueDate:   datePtr(t, "2024-01-17"),
				Amount:      NumericAmount(10),
			},
			want: "2024-01-15-10-CRDT",
		},
		{
			name: "no date at all",
			tx: Transaction{
				Amount: NumericAmount(-5.25),
			},
			want: "undefined-5.25-DBIT",
		},
		{
			name: "object amount encoding",
			tx: Transaction{
				BookingDate: datePtr(t, "2024-01-15"),
				Amount:      ObjectAmount("-100.50", "EUR"),
			},
			want: "2024-01-15-100.5-DBIT",
		},
		{
			name: "unparseable object amount degrades to zero",
			tx: Transaction{
				BookingDate: datePtr(t, "2024-01-15"),
				Amount:      ObjectAmount("not-a-number", "EUR"),
			},
			want: "2024-01-15-0-CRDT",
		},
		{
			name: "trailing zeros normalized away",
			tx: Transaction{
				BookingDate: datePtr(t, "2024-01-15"),
				Amount:      ObjectAmount("100.00", "USD"),
			},
			want: "2024-01-15-100-CRDT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tx.DedupKey())
		})
	}
}

func TestDedupKey_EncodingIndependent(t *testing.T) {
	// The same movement delivered in both wire encodings must key identically.
	numeric := Transaction{
		BookingDate: datePtr(t, "2024-01-15"),
		Amount:      NumericAmount(-100.5),
	}
	object := Transaction{
		BookingDate: datePtr(t, "2024-01-15"),
		Amount:      ObjectAmount("-100.50", "EUR"),
	}

	assert.Equal(t, numeric.DedupKey(), object.DedupKey())
}

func TestDedupKey_Deterministic(t *testing.T) {
	tx := Transaction{
		BookingDate: datePtr(t, "2024-01-15"),
		Amount:      NumericAmount(-100.5),
		Description: "ACME GmbH invoice 4711",
	}

	first := tx.DedupKey()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, tx.DedupKey())
	}
}
