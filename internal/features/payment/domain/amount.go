package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when an amount is not a decimal number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmountBelowMinimum is returned when a payment is below MinPaymentAmount.
	ErrAmountBelowMinimum = errors.New("payment amount must be at least 1.00")
	// ErrInvalidRefundAmount is returned when a refund is not in (0, original].
	ErrInvalidRefundAmount = errors.New("refund amount must be greater than 0 and not exceed the original amount")
)

// MinPaymentAmount is the smallest payment accepted for certification.
var MinPaymentAmount = decimal.RequireFromString("1.00")

// amountPlaces is the number of fractional digits the gateway accepts.
const amountPlaces = 2

// ParseAmount parses a currency amount such as "1", "1.5" or "12.00".
// Amounts finer than a cent are rejected, "1.500" is accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := checkPrecision(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// checkPrecision rejects amounts FormatAmount would have to round.
func checkPrecision(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(amountPlaces)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, d, amountPlaces)
	}
	return nil
}

// FormatAmount renders an amount the way the gateway expects (two decimals).
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ValidatePaymentAmount checks the certification minimum.
func ValidatePaymentAmount(amount decimal.Decimal) error {
	if err := checkPrecision(amount); err != nil {
		return err
	}
	if amount.LessThan(MinPaymentAmount) {
		return ErrAmountBelowMinimum
	}
	return nil
}

// ValidateRefundAmount checks that refund is positive and, when original is
// known (non-zero), does not exceed it.
func ValidateRefundAmount(refund, original decimal.Decimal) error {
	if err := checkPrecision(refund); err != nil {
		return err
	}
	if !refund.IsPositive() {
		return ErrInvalidRefundAmount
	}
	if !original.IsZero() && refund.GreaterThan(original) {
		return ErrInvalidRefundAmount
	}
	return nil
}
