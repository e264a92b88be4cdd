package amount

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	for _, tc := range []struct {
		in       string
		decimals uint8
		mode     Rounding
		expected uint64
	}{
		{"1.5", 6, Round, 1_500_000},
		{"0.000001", 6, Round, 1},
		{"0", 9, Round, 0},
		{"1", 0, Round, 1},
		{"341856.59", 5, Round, 34185659000},
		{"9974.999", 5, Round, 997499900},
		{"0.0000015", 6, Round, 2},
		{"0.0000015", 6, Truncate, 1},
		{"0.0000015", 6, Floor, 1},
		{"0.0000004", 6, Round, 0},
		{"18446744073709551615", 0, Round, math.MaxUint64},
		{"18446744073.709551615", 9, Truncate, math.MaxUint64},
	} {
		actual, err := ParseToBaseUnits(tc.in, tc.decimals, tc.mode)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.expected, actual, tc.in)
	}
}

func TestToBaseUnits_Invalid(t *testing.T) {
	_, err := ParseToBaseUnits("abc", 6, Round)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseToBaseUnits("10.0.0", 6, Round)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseToBaseUnits("-1", 6, Round)
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = ParseToBaseUnits("18446744073709551616", 0, Round)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	_, err = ParseToBaseUnits("1", MaxDecimals+1, Round)
	assert.ErrorIs(t, err, ErrInvalidDecimals)

	_, err = ToBaseUnits(decimal.NewFromInt(1), 6, Rounding(42))
	assert.ErrorIs(t, err, ErrInvalidRounding)
}

func TestFromBaseUnits(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1.5").Equal(FromBaseUnits(1_500_000, 6)))
	assert.Equal(t, "0.000001", StrFromBaseUnits(1, 6))
	assert.Equal(t, "1.500000", StrFromBaseUnits(1_500_000, 6))
	assert.Equal(t, "42", StrFromBaseUnits(42, 0))

	for _, raw := range []uint64{0, 1, 999, 1_000_000_000, math.MaxUint64} {
		back, err := ToBaseUnits(FromBaseUnits(raw, 9), 9, Truncate)
		require.NoError(t, err)
		assert.Equal(t, raw, back)
	}
}
