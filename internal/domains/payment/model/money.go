package model

import (
	"fmt"
)

// Currency is the closed set of settlement currencies.
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyEUR Currency = "eur"
	CurrencyGBP Currency = "gbp"
	CurrencyJPY Currency = "jpy"
)

// ParseCurrency maps a lowercase currency code to a Currency.
func ParseCurrency(s string) (Currency, error) {
	switch s {
	case "usd":
		return CurrencyUSD, nil
	case "eur":
		return CurrencyEUR, nil
	case "gbp":
		return CurrencyGBP, nil
	case "jpy":
		return CurrencyJPY, nil
	default:
		return "", NewValidationError("unsupported currency: " + s)
	}
}

func (c Currency) String() string {
	return string(c)
}

// Money is a non-negative integer amount of minor units (cents) in a single
// currency. Arithmetic is checked; overflow and underflow are reported, never
// wrapped.
type Money struct {
	amount   int64
	currency Currency
}

// NewMoney validates the amount. Zero is allowed, negative is not.
func NewMoney(amount int64, currency Currency) (Money, error) {
	if amount < 0 {
		return Money{}, NewValidationError(fmt.Sprintf("amount must be non-negative, got %d", amount))
	}
	return Money{amount: amount, currency: currency}, nil
}

// Amount returns the minor-unit amount.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code.
func (m Money) Currency() Currency {
	return m.currency
}

// CheckedAdd adds two amounts of the same currency. ok is false on currency
// mismatch or on int64 overflow.
func (m Money) CheckedAdd(other Money) (Money, bool) {
	if m.currency != other.currency {
		return Money{}, false
	}
	sum := m.amount + other.amount
	if sum < m.amount {
		return Money{}, false
	}
	return Money{amount: sum, currency: m.currency}, true
}

// CheckedSub subtracts other from m. ok is false on currency mismatch or when
// the result would go negative.
func (m Money) CheckedSub(other Money) (Money, bool) {
	if m.currency != other.currency {
		return Money{}, false
	}
	if m.amount < other.amount {
		return Money{}, false
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, true
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.amount, m.currency)
}
