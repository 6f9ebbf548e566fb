package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a currency amount held at cent precision. Every constructor and
// arithmetic result is rounded to two decimal places.
type Money struct {
	d decimal.Decimal
}

var Zero = Money{}

// NewMoney builds Money from a major-unit float, e.g. 0.2 for twenty cents.
func NewMoney(amount float64) Money {
	return Money{d: decimal.NewFromFloat(amount).Round(2)}
}

// Cents builds Money from an integer number of cents.
func Cents(c int64) Money {
	return Money{d: decimal.New(c, -2)}
}

// ParseMoney reads a decimal string such as "12.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{d: d.Round(2)}, nil
}

func (m Money) Add(other Money) Money {
	return Money{d: m.d.Add(other.d).Round(2)}
}

func (m Money) Sub(other Money) Money {
	return Money{d: m.d.Sub(other.d).Round(2)}
}

// Times multiplies by a whole payout factor.
func (m Money) Times(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n)).Round(2)}
}

func (m Money) Cmp(other Money) int {
	return m.d.Cmp(other.d)
}

func (m Money) Equal(other Money) bool {
	return m.d.Equal(other.d)
}

func (m Money) LessThan(other Money) bool {
	return m.d.LessThan(other.d)
}

func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.d.GreaterThanOrEqual(other.d)
}

func (m Money) IsZero() bool     { return m.d.IsZero() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// Float64 returns the amount as a float for reporting.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// Cents returns the amount in cents.
func (m Money) Cents() int64 {
	return m.d.Shift(2).IntPart()
}

func (m Money) String() string {
	return m.d.StringFixed(2)
}

// Max returns the larger of a and b.
func Max(a, b Money) Money {
	if a.LessThan(b) {
		return b
	}
	return a
}

// Min returns the smaller of a and b.
func Min(a, b Money) Money {
	if b.LessThan(a) {
		return b
	}
	return a
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.StringFixed(2)), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("decode money: %w", err)
	}
	m.d = d.Round(2)
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.d.StringFixed(2), nil
}

func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	m.d = d.Round(2)
	return nil
}
