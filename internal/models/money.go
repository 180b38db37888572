package models

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount with two fraction digits. It renders as "10.00" in JSON and
// in SQL, matching the decimal(12,2) columns it is stored in.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func (m Money) String() string {
	return m.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

func (m Money) Value() (driver.Value, error) {
	return m.StringFixed(2), nil
}
