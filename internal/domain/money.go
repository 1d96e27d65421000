package domain

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount that always renders with two places, both in
// JSON and in the database.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{Decimal: d} }

// MustMoney parses s and panics on malformed input; for literals and tests.
func MustMoney(s string) Money { return Money{Decimal: decimal.RequireFromString(s)} }

func (m Money) String() string { return m.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) { return json.Marshal(m.StringFixed(2)) }

func (m Money) Value() (driver.Value, error) { return m.StringFixed(2), nil }
