package decimal

import (
	"math/big"
	"testing"

	"github.com/zeebo/assert"
)

func TestParseRescalesToTargetScale(t *testing.T) {
	// S3: schema Decimal128(9,2); "1.2e3" -> unscaled 120000, i.e. 1200.00.
	p, err := Parse("1.2e3", 2)
	assert.NoError(t, err)
	assert.False(t, p.Wide)
	assert.Equal(t, "120000", ToBigInt128(p.D128).String())
}

func TestFormatRoundTripsThroughParse(t *testing.T) {
	// S3: decode string = "120000e-2".
	got := Format(big.NewInt(120000), 2)
	assert.Equal(t, "120000e-2", got)

	p, err := Parse("120000e-2", 2)
	assert.NoError(t, err)
	assert.Equal(t, "120000", ToBigInt128(p.D128).String())
}

func TestFormatNonPositiveScale(t *testing.T) {
	got := Format(big.NewInt(12), -2)
	assert.Equal(t, "12e2", got)
}

func TestParseNegativeAndPositiveSign(t *testing.T) {
	p, err := Parse("-3.50", 2)
	assert.NoError(t, err)
	assert.Equal(t, "-350", ToBigInt128(p.D128).String())

	p, err = Parse("+3.50", 2)
	assert.NoError(t, err)
	assert.Equal(t, "350", ToBigInt128(p.D128).String())
}

func TestParseTruncatesWhenNarrowingScale(t *testing.T) {
	p, err := Parse("1.239", 2)
	assert.NoError(t, err)
	assert.Equal(t, "123", ToBigInt128(p.D128).String())
}

func TestParseRejectsEmptyString(t *testing.T) {
	_, err := Parse("   ", 2)
	assert.Error(t, err)
}

func TestParseFallsBackTo256Bits(t *testing.T) {
	// 10^40 overflows i128 (max ~1.7e38) but fits in i256.
	big40 := new(big.Int).Exp(big.NewInt(10), big.NewInt(40), nil)
	p, err := Parse(big40.String(), 0)
	assert.NoError(t, err)
	assert.True(t, p.Wide)
	assert.Equal(t, big40.String(), ToBigInt256(p.D256).String())
}

func TestFromBigIntOutOfRange(t *testing.T) {
	huge := new(big.Int).Exp(big.NewInt(10), big.NewInt(80), nil)
	_, err := FromBigInt(huge, 0)
	assert.Error(t, err)
}

func TestDecimal256BytesRoundTrip(t *testing.T) {
	// S2: Decimal256(76,0); v = 10^75; 32-byte little-endian pattern.
	v := new(big.Int).Exp(big.NewInt(10), big.NewInt(75), nil)
	b, err := Decimal256ToBytes(v)
	assert.NoError(t, err)

	back := BytesToDecimal256(b)
	assert.Equal(t, v.String(), back.String())
}

func TestDecimal256BytesNegativeRoundTrip(t *testing.T) {
	v := new(big.Int).Neg(new(big.Int).Exp(big.NewInt(10), big.NewInt(10), nil))
	b, err := Decimal256ToBytes(v)
	assert.NoError(t, err)

	back := BytesToDecimal256(b)
	assert.Equal(t, v.String(), back.String())

	// top bit of the highest-order byte marks the sign.
	assert.True(t, b[31]&0x80 != 0)
}

func TestDecimal256BytesZero(t *testing.T) {
	b, err := Decimal256ToBytes(big.NewInt(0))
	assert.NoError(t, err)
	back := BytesToDecimal256(b)
	assert.Equal(t, int64(0), back.Int64())
}

func TestDecimal256ToBytesOverflow(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err := Decimal256ToBytes(tooBig)
	assert.Error(t, err)
}

func TestEqualValueAcrossScale(t *testing.T) {
	a := big.NewInt(1200)
	b := big.NewInt(12)
	assert.True(t, EqualValue(a, 0, b, -2))
	assert.False(t, EqualValue(a, 0, b, 0))
}

func TestCanonicalReduceStripsPastScaleZero(t *testing.T) {
	// 1200 at scale 0 and 12 at scale -2 denote the same value and must
	// canonicalize identically, including across scale 0.
	v1, s1 := CanonicalReduce(big.NewInt(1200), 0)
	v2, s2 := CanonicalReduce(big.NewInt(12), -2)
	assert.Equal(t, v1.String(), v2.String())
	assert.Equal(t, s1, s2)
	assert.Equal(t, "12", v1.String())
	assert.Equal(t, int8(-2), s1)
}

func TestCanonicalReduceZero(t *testing.T) {
	v, s := CanonicalReduce(big.NewInt(0), 5)
	assert.Equal(t, "0", v.String())
	assert.Equal(t, int8(0), s)
}

func TestCanonicalReduceStopsAtNonZeroRemainder(t *testing.T) {
	v, s := CanonicalReduce(big.NewInt(125), 3)
	assert.Equal(t, "125", v.String())
	assert.Equal(t, int8(3), s)
}
