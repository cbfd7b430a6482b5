// Package money provides fixed-point monetary amounts in minor units.
//
// All engine arithmetic happens on integer cents so that split and
// balance invariants hold exactly. Decimal values exist only at the
// boundary: parsing user input and rendering JSON.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a currency-independent monetary value in cents.
// Positive and negative values are both meaningful; the sign convention
// is defined by the caller (e.g. a balance of +150 means "owed 1.50").
type Amount int64

// ErrInvalidAmount is returned when a decimal string cannot be parsed
// or carries more than two fractional digits.
var ErrInvalidAmount = errors.New("invalid amount")

// FromFloat converts a decimal value to cents, rounding half away from
// zero. Use only at the boundary; never accumulate floats.
func FromFloat(f float64) Amount {
	return Amount(math.Round(f * 100))
}

// Float64 converts the amount back to a decimal value for display.
func (a Amount) Float64() float64 {
	return float64(a) / 100
}

// Abs returns the magnitude of the amount.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// String renders the amount as a plain decimal with two fractional
// digits, e.g. "12.34" or "-0.05".
func (a Amount) String() string {
	sign := ""
	v := a
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Parse converts a decimal string such as "12.34", "-7" or "0.5" into
// cents. More than two fractional digits is an error rather than a
// silent rounding.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if whole == "" {
		whole = "0"
	}

	// Only digits from here on; ParseInt alone would accept a second
	// sign, making "--5" parse as +5.
	if !allDigits(whole) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	var cents int64
	if hasFrac {
		if frac == "" || len(frac) > 2 || !allDigits(frac) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	total := units*100 + cents
	if neg {
		total = -total
	}
	return Amount(total), nil
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// MarshalJSON renders the amount as a JSON number with two decimals,
// matching the wire shape {"balances": {"member": 12.34}}.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string
// and rounds to the nearest cent.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if v, err := Parse(s); err == nil {
		*a = v
		return nil
	}
	// Fall back to float parsing for exponent forms like 1.5e2.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	*a = FromFloat(f)
	return nil
}
