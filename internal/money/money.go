// Package money provides a fixed-point amount type with two decimal places
// backed by shopspring/decimal. Amounts are stored as numeric(12,2) and
// serialize to JSON as strings such as "100.00".
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// Places is the number of decimal places an amount is stored with.
	Places = 2
	// IntegerDigits is the number of digits allowed before the decimal point.
	IntegerDigits = 10
)

var integerLimit = decimal.New(1, IntegerDigits)

// Amount is a monetary value. The embedded decimal provides arithmetic,
// driver.Valuer and sql.Scanner.
type Amount struct {
	decimal.Decimal
}

// Zero returns a zero amount.
func Zero() Amount {
	return Amount{decimal.Zero}
}

// New wraps a decimal, rounding it to two places.
func New(d decimal.Decimal) Amount {
	return Amount{d.Round(Places)}
}

// MustParse parses s and panics on malformed input. Intended for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Parse parses a decimal string such as "12.50". The value is kept exactly as
// written so callers can reject extra decimal places with HasExtraPlaces.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{d}, nil
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return New(a.Decimal.Add(b.Decimal))
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return New(a.Decimal.Sub(b.Decimal))
}

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool {
	return a.Decimal.IsPositive()
}

// HasExtraPlaces reports whether a has non-zero digits past the second decimal.
func (a Amount) HasExtraPlaces() bool {
	return !a.Decimal.Equal(a.Decimal.Round(Places))
}

// ExceedsIntegerDigits reports whether the integer part of a has more than
// IntegerDigits digits.
func (a Amount) ExceedsIntegerDigits() bool {
	return a.Decimal.Abs().GreaterThanOrEqual(integerLimit)
}

// Equal reports whether a and b represent the same value.
func (a Amount) Equal(b Amount) bool {
	return a.Decimal.Equal(b.Decimal)
}

// String renders the amount with exactly two decimals.
func (a Amount) String() string {
	return a.StringFixed(Places)
}

// MarshalJSON renders the amount as a quoted fixed-point string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal. The value is not
// rounded; services reject amounts that do not fit the column.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = Amount{d}
	return nil
}
