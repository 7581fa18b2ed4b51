package domain

import (
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ParseAmount parses a user-entered decimal amount such as "4.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidInput)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", ErrInvalidInput, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount must not be negative, got %s", ErrInvalidInput, s)
	}
	return d, nil
}

// AmountFromFloat converts a float coming from JSON or the AI gateway.
// NaN and infinities are rejected.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: amount must be a finite number", ErrInvalidInput)
	}
	if f < 0 {
		return decimal.Zero, fmt.Errorf("%w: amount must not be negative, got %v", ErrInvalidInput, f)
	}
	return decimal.NewFromFloat(f), nil
}

// FormatAmount renders an amount with the two-fraction-digit convention.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
	}
	return d, nil
}
