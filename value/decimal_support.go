package value

import (
	"fmt"
	"math/big"

	"github.com/johanan/pval/decimal"
	"github.com/johanan/pval/perr"
)

const component = "value"

// decimalEqual compares two Decimal128/Decimal256 PValues (regardless
// of width) by mathematical value, per §3.1: equality must bring both
// sides to a common scale, widening to arbitrary precision.
func decimalEqual(a, b PValue) bool {
	aUnscaled, aScale := decimalUnscaled(a)
	bUnscaled, bScale := decimalUnscaled(b)
	if aUnscaled == nil || bUnscaled == nil {
		return false
	}
	return decimal.EqualValue(aUnscaled, aScale, bUnscaled, bScale)
}

func decimalUnscaled(v PValue) (*big.Int, int8) {
	switch v.kind {
	case KindDecimal128:
		return decimal.ToBigInt128(v.dec128), v.scale
	case KindDecimal256:
		return decimal.ToBigInt256(v.dec256), v.scale
	default:
		return nil, 0
	}
}

// canonicalDecimal reduces v's decimal representation to its minimal
// scale so that hashing agrees with decimalEqual.
func canonicalDecimal(v PValue) (sign int, magnitude []byte, scale int8) {
	unscaled, s := decimalUnscaled(v)
	reduced, rs := decimal.CanonicalReduce(unscaled, s)
	return reduced.Sign(), new(big.Int).Abs(reduced).Bytes(), rs
}

// ParseDecimal128 parses s (§4.2's parse operation) and rescales it to
// scale, failing with OutOfRange if the rescaled value needs more than
// 128 bits.
func ParseDecimal128(s string, scale int8) (PValue, error) {
	p, err := decimal.Parse(s, scale)
	if err != nil {
		return PValue{}, err
	}
	if p.Wide {
		return PValue{}, perr.OutOfRange(component, "ParseDecimal128", "", fmt.Errorf("%q exceeds 128 bits at scale %d", s, scale))
	}
	return Decimal128Value(p.D128, scale), nil
}

// ParseDecimal256 parses s (§4.2's parse operation) and rescales it to
// scale, widening a 128-bit-fitting parse result up to 256 bits so the
// result is always a Decimal256 PValue.
func ParseDecimal256(s string, scale int8) (PValue, error) {
	p, err := decimal.Parse(s, scale)
	if err != nil {
		return PValue{}, err
	}
	return Decimal256Value(decimal.WidenTo256(p), scale), nil
}

// FormatDecimal renders v's canonical decimal string (§4.2's format
// operation): "Ne-S" for positive scale, "NeS" otherwise.
func FormatDecimal(v PValue) (string, bool) {
	unscaled, scale := decimalUnscaled(v)
	if unscaled == nil {
		return "", false
	}
	return decimal.Format(unscaled, scale), true
}

// Decimal256Bytes encodes v's unscaled value as Arrow's 32-byte
// little-endian two's-complement Decimal256 layout (§4.2), the same
// layout a Parquet FIXED_LEN_BYTE_ARRAY(32) column stores on disk.
func Decimal256Bytes(v PValue) ([32]byte, bool) {
	if v.kind != KindDecimal256 {
		return [32]byte{}, false
	}
	b, err := decimal.Decimal256ToBytes(decimal.ToBigInt256(v.dec256))
	if err != nil {
		return [32]byte{}, false
	}
	return b, true
}

// Decimal256FromBytes decodes the 32-byte little-endian two's-complement
// layout (§4.2) back into a Decimal256 PValue at scale (§4.3's "For
// Decimal256, the raw 32 bytes are decoded to an arbitrary-precision
// integer").
func Decimal256FromBytes(b [32]byte, scale int8) (PValue, error) {
	unscaled := decimal.BytesToDecimal256(b)
	p, err := decimal.FromBigInt(unscaled, scale)
	if err != nil {
		return PValue{}, err
	}
	return Decimal256Value(decimal.WidenTo256(p), scale), nil
}
