package week

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal amount string into cents.
// Examples: "12.34" -> 1234, "500" -> 50000.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// FormatCents renders cents as a plain decimal string with two places.
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
