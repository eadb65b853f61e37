package number

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertIdentity(t *testing.T) {
	// To/from None and same-unit conversions leave the magnitude untouched
	// and keep integer magnitudes integral.
	n := FromIntUnit(7, MM)
	assert.Equal(t, FromIntUnit(7, MM), n.Convert(MM))
	assert.True(t, n.Convert(MM).IsInt())

	assert.Equal(t, FromInt(7), FromIntUnit(7, MM).Convert(None))
	assert.Equal(t, FromIntUnit(7, CM), FromInt(7).Convert(CM))
}

func TestConvertThroughMillimetres(t *testing.T) {
	tests := []struct {
		name string
		in   Number
		to   Unit
		want float64
	}{
		{"mm to cm", FromIntUnit(25, MM), CM, 2.5},
		{"cm to mm", FromIntUnit(3, CM), MM, 30},
		{"m to mm", FromIntUnit(1, M), MM, 1000},
		{"in to mm", FromIntUnit(1, IN), MM, 25.4},
		{"ft to in", FromIntUnit(1, FT), IN, 12},
		{"yd to ft", FromIntUnit(1, YD), FT, 3},
		{"in to cm", FromFloatUnit(2, IN), CM, 5.08},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Convert(tt.to)
			assert.Equal(t, tt.to, got.Unit())
			assert.False(t, got.IsInt())
			assert.InDelta(t, tt.want, got.Float(), 1e-9)
		})
	}
}

func TestUnitReconcilingArithmetic(t *testing.T) {
	// Destination unit is the left operand's, unless the left is unitless.
	got := FromIntUnit(2, MM).Add(FromIntUnit(1, CM))
	assert.Equal(t, FromFloatUnit(12, MM), got)

	got = FromIntUnit(1, CM).Add(FromIntUnit(2, MM))
	assert.Equal(t, FromFloatUnit(1.2, CM), got)

	// A unitless left operand adopts the right's unit; both magnitudes are
	// integers, so the sum stays integral.
	got = FromInt(3).Add(FromIntUnit(5, MM))
	assert.Equal(t, FromIntUnit(8, MM), got)
}

func TestIntegerPreservation(t *testing.T) {
	assert.Equal(t, FromInt(12), FromInt(3).Mul(FromInt(4)))
	assert.Equal(t, FromInt(-1), FromInt(3).Sub(FromInt(4)))

	// Division always promotes to float.
	assert.Equal(t, FromFloat(2.5), FromInt(10).Div(FromInt(4)))

	// Mixed magnitudes promote.
	assert.Equal(t, FromFloat(4.5), FromInt(4).Add(FromFloat(0.5)))
}

func TestDivisionByZeroPropagates(t *testing.T) {
	got := FromInt(1).Div(FromInt(0))
	assert.True(t, math.IsInf(got.Float(), 1))

	got = FromInt(0).Div(FromInt(0))
	assert.True(t, math.IsNaN(got.Float()))
}

func TestAsFloatGate(t *testing.T) {
	f, err := FromInt(5).AsFloat()
	require.NoError(t, err)
	assert.Equal(t, 5.0, f)

	_, err = FromIntUnit(5, MM).AsFloat()
	assert.ErrorIs(t, err, ErrNotScalar)
}

func TestAsInt(t *testing.T) {
	i, err := FromInt(5).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(5), i)

	_, err = FromFloat(5).AsInt()
	assert.ErrorIs(t, err, ErrNotInteger)
}

func TestNeg(t *testing.T) {
	assert.Equal(t, FromIntUnit(-3, MM), FromIntUnit(3, MM).Neg())
	assert.Equal(t, FromFloat(2.5), FromFloat(-2.5).Neg())
}

func TestPow(t *testing.T) {
	assert.Equal(t, FromInt(1024), FromInt(2).Pow(FromInt(10)))
	assert.Equal(t, FromInt(1), FromInt(2).Pow(FromInt(0)))

	// Non-integer or negative exponents go through math.Pow.
	got := FromFloat(2).Pow(FromFloat(0.5))
	assert.InDelta(t, math.Sqrt2, got.Float(), 1e-12)

	got = FromInt(2).Pow(FromInt(-1))
	assert.Equal(t, FromFloat(0.5), got)

	// The left operand's unit passes through.
	assert.Equal(t, MM, FromIntUnit(3, MM).Pow(FromInt(2)).Unit())
}

func TestFactorial(t *testing.T) {
	assert.Equal(t, FromInt(1), FromInt(0).Factorial())
	assert.Equal(t, FromInt(120), FromInt(5).Factorial())

	// Non-integers are total through Gamma(x+1).
	got := FromFloat(0.5).Factorial()
	assert.InDelta(t, math.Gamma(1.5), got.Float(), 1e-12)

	// Negative integers hit a Gamma pole rather than failing.
	got = FromFloat(-1).Factorial()
	assert.True(t, math.IsInf(got.Float(), 0) || math.IsNaN(got.Float()))
}

func TestParseUnit(t *testing.T) {
	for suffix, want := range map[string]Unit{
		"mm": MM, "cm": CM, "m": M, "in": IN, "ft": FT, "yd": YD, "": None,
	} {
		got, ok := ParseUnit(suffix)
		require.True(t, ok, "suffix %q", suffix)
		assert.Equal(t, want, got)
	}

	_, ok := ParseUnit("km")
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	assert.Equal(t, "5mm", FromIntUnit(5, MM).String())
	assert.Equal(t, "2.5", FromFloat(2.5).String())
	assert.Equal(t, "1.5in", FromFloatUnit(1.5, IN).String())
}
