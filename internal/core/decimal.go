package core

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")

	hundred = decimal.NewFromInt(100)

	// Exponent notation is rejected: "1e10000000" would otherwise expand to
	// a ten-million digit integer on the first addition.
	plainDecimal = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
)

// maxDecimalLen bounds the digits of any stored amount or rate.
const maxDecimalLen = 32

// ParseDecimal parses a plain decimal string such as "5000000" or "-12.5".
// Surrounding spaces are ignored. Exponents, separators and anything longer
// than maxDecimalLen are rejected.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxDecimalLen || !plainDecimal.MatchString(s) {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// LenientDecimal parses s and falls back to zero for empty or malformed input.
// Aggregations use it so that a bad record contributes nothing instead of
// failing the whole report.
func LenientDecimal(s string) decimal.Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
