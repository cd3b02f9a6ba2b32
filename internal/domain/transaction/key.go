package transaction

import (
	"fmt"
	"math"
	"strconv"
)

// Direction is the credit/debit indicator inside a dedup key
type Direction string

const (
	DirectionCredit Direction = "CRDT"
	DirectionDebit  Direction = "DBIT"
)

// UndefinedDateToken is the date component of a dedup key when a transaction
// carries neither a booking date nor a value date. Such transactions still get
// a key, but callers should treat it as lower-confidence for dedup purposes.
const UndefinedDateToken = "undefined"

// DedupKey derives the transaction's stable identity from its fundamental
// fields: date, absolute amount, and direction. The exact textual form is
// normative (equality is by string comparison, not numeric tolerance), so the
// amount is formatted with the shortest representation that round-trips
// ("100.50" and 100.5 both key as "100.5").
//
// The key is a pure function of fundamentals and is identical regardless of
// which wire encoding the amount arrived in.
func (t *Transaction) DedupKey() string {
	date := UndefinedDateToken
	if d := t.Date(); d != nil {
		date = d.Format(DateLayout)
	}

	value := t.Amount.Value()
	direction := DirectionCredit
	if value < 0 {
		direction = DirectionDebit
	}
	abs := strconv.FormatFloat(math.Abs(value), 'f', -1, 64)

	return fmt.Sprintf("%s-%s-%s", date, abs, direction)
}
