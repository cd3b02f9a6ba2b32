package transaction

import (
	"encoding/json"
	"strconv"
)

// AmountKind tags the two wire encodings of a transaction amount.
type AmountKind int

const (
	// AmountKindNumeric is a bare signed number, e.g. -100.5.
	AmountKindNumeric AmountKind = iota

	// AmountKindObject is an {amount, currency} pair where the amount is a
	// decimal string, e.g. {"amount": "100.50", "currency": "EUR"}.
	AmountKindObject
)

// Amount is the signed transaction amount as delivered by the banking feed.
// Upstream providers deliver it in either of two encodings, so it is modeled
// as a tagged union rather than an interface{} inspected at runtime.
type Amount struct {
	Kind     AmountKind
	Number   float64 // set when Kind == AmountKindNumeric
	Raw      string  // decimal string, set when Kind == AmountKindObject
	Currency string  // set when Kind == AmountKindObject
}

// NumericAmount builds an Amount from a bare signed number.
func NumericAmount(v float64) Amount {
	return Amount{Kind: AmountKindNumeric, Number: v}
}

// ObjectAmount builds an Amount from the {amount, currency} encoding.
func ObjectAmount(raw, currency string) Amount {
	return Amount{Kind: AmountKindObject, Raw: raw, Currency: currency}
}

// Value returns the signed numeric value of the amount. An object amount whose
// string does not parse as a number evaluates to zero; it never fails, because
// a malformed amount must degrade rather than block a run.
func (a Amount) Value() float64 {
	switch a.Kind {
	case AmountKindNumeric:
		return a.Number
	case AmountKindObject:
		v, err := strconv.ParseFloat(a.Raw, 64)
		if err != nil {
			return 0
		}
		return v
	default:
		return 0
	}
}

// objectAmount is the wire shape of the {amount, currency} encoding
type objectAmount struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// UnmarshalJSON accepts both wire encodings: a bare JSON number or an
// {amount, currency} object.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*a = NumericAmount(num)
		return nil
	}

	var obj objectAmount
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*a = ObjectAmount(obj.Amount, obj.Currency)
	return nil
}

// MarshalJSON writes the amount back in the encoding it arrived in
func (a Amount) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AmountKindObject:
		return json.Marshal(objectAmount{Amount: a.Raw, Currency: a.Currency})
	default:
		return json.Marshal(a.Number)
	}
}
