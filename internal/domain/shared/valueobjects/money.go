package valueobjects

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money is a non-negative amount in an ISO 4217 currency.
type Money struct {
	amount   decimal.Decimal
	currency string
}

func NewMoney(amount decimal.Decimal, code string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("amount cannot be negative: %s", amount)
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, err := currency.ParseISO(code); err != nil {
		return Money{}, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return Money{amount: amount.Round(2), currency: code}, nil
}

// MustMoney is NewMoney for literals known to be valid.
func MustMoney(amount string, code string) Money {
	m, err := NewMoney(decimal.RequireFromString(amount), code)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }

// Discounted applies a percentage discount, rounding to two places.
func (m Money) Discounted(percent int) Money {
	if percent <= 0 {
		return m
	}
	if percent >= 100 {
		return Money{amount: decimal.Zero, currency: m.currency}
	}
	factor := decimal.NewFromInt(int64(100 - percent)).Div(decimal.NewFromInt(100))
	return Money{amount: m.amount.Mul(factor).Round(2), currency: m.currency}
}

func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Format renders the amount with locale digit grouping, e.g. "INR 1,499.00".
func (m Money) Format(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	return m.currency + " " + p.Sprint(number.Decimal(m.amount.InexactFloat64(), number.Scale(2)))
}

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}
