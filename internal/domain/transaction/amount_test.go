package transaction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	t.Run("bare number", func(t *testing.T) {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(`-100.5`), &a))
		assert.Equal(t, AmountKindNumeric, a.Kind)
		assert.Equal(t, -100.5, a.Value())
	})

	t.Run("object encoding", func(t *testing.T) {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(`{"amount":"-100.50","currency":"EUR"}`), &a))
		assert.Equal(t, AmountKindObject, a.Kind)
		assert.Equal(t, "EUR", a.Currency)
		assert.Equal(t, -100.5, a.Value())
	})

	t.Run("malformed object amount evaluates to zero", func(t *testing.T) {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(`{"amount":"12,50","currency":"EUR"}`), &a))
		assert.Equal(t, 0.0, a.Value())
	})

	t.Run("invalid json is rejected", func(t *testing.T) {
		var a Amount
		assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &a))
	})
}

func TestAmount_MarshalRoundTrip(t *testing.T) {
	t.Run("numeric stays a bare number", func(t *testing.T) {
		data, err := json.Marshal(NumericAmount(-100.5))
		require.NoError(t, err)
		assert.JSONEq(t, `-100.5`, string(data))
	})

	t.Run("object keeps its decimal string", func(t *testing.T) {
		data, err := json.Marshal(ObjectAmount("-100.50", "EUR"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount":"-100.50","currency":"EUR"}`, string(data))
	})
}
