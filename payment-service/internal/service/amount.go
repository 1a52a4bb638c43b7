package service

import (
	"fmt"
	"math"
)

// AmountUnit says how a request amount relates to the gateway's minor unit.
type AmountUnit string

const (
	// AmountMinor: the amount is already an integer count of minor units.
	AmountMinor AmountUnit = "minor"
	// AmountMajor: the amount is in major units and is multiplied by 100.
	AmountMajor AmountUnit = "major"
)

// ParseAmountUnit validates a configured unit name.
func ParseAmountUnit(s string) (AmountUnit, error) {
	switch AmountUnit(s) {
	case AmountMinor, AmountMajor:
		return AmountUnit(s), nil
	default:
		return "", fmt.Errorf("unknown amount unit %q (want %q or %q)", s, AmountMinor, AmountMajor)
	}
}

// ToMinorUnits converts amount under unit. The result is always a positive
// integer or ErrInvalidAmount.
func ToMinorUnits(amount float64, unit AmountUnit) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var minor float64
	switch unit {
	case AmountMajor:
		minor = math.Round(amount * 100)
	default:
		if amount != math.Trunc(amount) {
			return 0, fmt.Errorf("%w: %v is not a whole number of minor units", ErrInvalidAmount, amount)
		}
		minor = amount
	}

	if minor <= 0 || minor > math.MaxInt64/2 {
		return 0, ErrInvalidAmount
	}
	return int64(minor), nil
}
