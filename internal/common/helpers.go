package common

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SOLDecimals = 9 // SOL has 9 decimals (lamports)

	// Bounds on plain decimal input; no ledger asset needs more.
	MaxIntegerDigits  = 30
	MaxFractionDigits = 18
)

// ErrNonPositiveAmount is returned when an amount parses but is zero or negative.
var ErrNonPositiveAmount = errors.New("amount must be greater than zero")

// ParseAmount parses a decimal string amount without float precision loss.
// Only plain notation is accepted ("12.5", "-3"); exponents are rejected so an
// amount's rendered size is bounded by its input.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty string")
	}
	if err := checkPlainDecimal(s); err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format: %w", err)
	}
	return d, nil
}

func checkPlainDecimal(s string) error {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	intPart, fracPart, hasPoint := strings.Cut(digits, ".")
	if intPart == "" && fracPart == "" {
		return fmt.Errorf("invalid decimal format: %q", s)
	}
	for _, part := range []string{intPart, fracPart} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return fmt.Errorf("invalid decimal format: %q", s)
			}
		}
	}
	if hasPoint && fracPart == "" {
		return fmt.Errorf("invalid decimal format: %q", s)
	}
	if len(strings.TrimLeft(intPart, "0")) > MaxIntegerDigits {
		return fmt.Errorf("amount has more than %d integer digits", MaxIntegerDigits)
	}
	if len(fracPart) > MaxFractionDigits {
		return fmt.Errorf("amount has more than %d decimal places", MaxFractionDigits)
	}
	return nil
}

// ParsePositiveAmount parses a decimal string and requires it to be > 0
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrNonPositiveAmount
	}
	return d, nil
}

// ToBaseUnits converts a decimal string to integer base units (lamports, token micro units).
// Example: ToBaseUnits("0.024981836", 9) = 24981836
// Fractions finer than the asset precision are rejected rather than truncated.
func ToBaseUnits(s string, decimals int32) (uint64, error) {
	d, err := ParsePositiveAmount(s)
	if err != nil {
		return 0, err
	}

	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", s, decimals)
	}
	if !scaled.BigInt().IsUint64() {
		return 0, fmt.Errorf("amount %s is out of range", s)
	}
	return scaled.BigInt().Uint64(), nil
}

// FromBaseUnits converts integer base units to a decimal
// Example: FromBaseUnits(24981836, 9) = 0.024981836
func FromBaseUnits(value uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(value), -decimals)
}

// LamportsToSOL converts lamports to a SOL decimal
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return FromBaseUnits(lamports, SOLDecimals)
}

// SOLToLamports converts SOL string to lamports without float precision loss
func SOLToLamports(sol string) (uint64, error) {
	return ToBaseUnits(sol, SOLDecimals)
}

// FormatAmount renders an amount without exponent notation or trailing zeros.
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}
