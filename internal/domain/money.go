package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is used when a source omits the currency code.
const DefaultCurrency = "USD"

// MoneyAmount is an exact decimal value in a given ISO 4217 currency.
// It is a value type: copies are independent and nothing mutates it in place.
type MoneyAmount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// NewMoneyAmount validates the currency code and builds a MoneyAmount.
// An empty code falls back to DefaultCurrency.
func NewMoneyAmount(value decimal.Decimal, code string) (MoneyAmount, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	if _, err := currency.ParseISO(code); err != nil {
		return MoneyAmount{}, &ErrValidation{Field: "currency", Message: "unknown ISO 4217 code " + code}
	}
	return MoneyAmount{Value: value, Currency: code}, nil
}

// ParseMoneyAmount parses a decimal string such as "12765.00".
func ParseMoneyAmount(value, code string) (MoneyAmount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return MoneyAmount{}, &ErrValidation{Field: "value", Message: "not a decimal: " + value}
	}
	return NewMoneyAmount(d, code)
}

// MustParseMoneyAmount is ParseMoneyAmount for constants and tests; it panics on bad input.
func MustParseMoneyAmount(value, code string) MoneyAmount {
	m, err := ParseMoneyAmount(value, code)
	if err != nil {
		panic(err)
	}
	return m
}

// Equal reports whether both amounts carry the same numeric value and currency.
// 1.0 and 1.00 are equal.
func (m MoneyAmount) Equal(other MoneyAmount) bool {
	return m.Currency == other.Currency && m.Value.Equal(other.Value)
}

// IsNegative reports whether the value is below zero.
func (m MoneyAmount) IsNegative() bool {
	return m.Value.IsNegative()
}

func (m MoneyAmount) String() string {
	return m.Value.String() + " " + m.Currency
}
