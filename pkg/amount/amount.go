// Package amount converts between human readable token amounts and the
// integer base units used on chain.
package amount

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Rounding selects how fractional base units are resolved.
type Rounding uint8

const (
	// Round to the nearest base unit, half away from zero.
	Round Rounding = iota

	// Truncate drops fractional base units. Used for deposit maximums.
	Truncate

	// Floor rounds towards negative infinity. Used for conservative
	// estimates, such as minimum outputs after slippage.
	Floor
)

// MaxDecimals bounds the precision of a mint. No u64 supply can use more.
const MaxDecimals = 19

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrAmountOverflow  = errors.New("amount cannot be represented in base units")
	ErrInvalidDecimals = errors.New("invalid decimals")
	ErrInvalidRounding = errors.New("invalid rounding mode")
)

var maxUint64 = decimal.NewFromBigInt(new(big.Int).SetUint64(^uint64(0)), 0)

// ToBaseUnits scales a human amount by 10^decimals and resolves the
// fractional remainder with mode.
//
// For example, 1.5 with 6 decimals is 1_500_000 base units.
func ToBaseUnits(human decimal.Decimal, decimals uint8, mode Rounding) (uint64, error) {
	if decimals > MaxDecimals {
		return 0, errors.Wrapf(ErrInvalidDecimals, "%d", decimals)
	}
	if human.IsNegative() {
		return 0, ErrNegativeAmount
	}

	scaled := human.Shift(int32(decimals))
	switch mode {
	case Round:
		scaled = scaled.Round(0)
	case Truncate:
		scaled = scaled.Truncate(0)
	case Floor:
		scaled = scaled.Floor()
	default:
		return 0, ErrInvalidRounding
	}

	if scaled.GreaterThan(maxUint64) {
		return 0, errors.Wrapf(ErrAmountOverflow, "%s with %d decimals", human.String(), decimals)
	}
	return scaled.BigInt().Uint64(), nil
}

// ParseToBaseUnits is ToBaseUnits over the decimal text of an amount.
func ParseToBaseUnits(val string, decimals uint8, mode Rounding) (uint64, error) {
	human, err := decimal.NewFromString(val)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q", val)
	}
	return ToBaseUnits(human, decimals, mode)
}

// MustParseToBaseUnits calls ParseToBaseUnits, panicking if there's an error.
//
// This should only be used if you know for sure this will not panic.
func MustParseToBaseUnits(val string, decimals uint8, mode Rounding) uint64 {
	res, err := ParseToBaseUnits(val, decimals, mode)
	if err != nil {
		panic(err)
	}
	return res
}

// FromBaseUnits is the inverse of ToBaseUnits.
func FromBaseUnits(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
}

// StrFromBaseUnits formats raw with exactly decimals fractional digits.
func StrFromBaseUnits(raw uint64, decimals uint8) string {
	return FromBaseUnits(raw, decimals).StringFixed(int32(decimals))
}
