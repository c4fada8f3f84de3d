// Package decimal implements the decimal codec (spec component C4):
// parsing decimal strings/scientific notation into 128- or 256-bit
// two's-complement unscaled integers, rescaling, canonical string
// formatting, and the Decimal256 <-> 32-byte two's-complement layout.
//
// Arbitrary-precision arithmetic (math/big) is localized to this
// package; everything above it (value.PValue, arrowconv) works with
// the fixed-width decimal128.Num/decimal256.Num types from arrow-go.
package decimal

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/decimal256"
	shopspring "github.com/shopspring/decimal"

	"github.com/johanan/pval/perr"
)

const component = "decimal"

var (
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxI256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	minI256 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
)

// Parsed is the result of Parse: either a 128-bit or a 256-bit
// two's-complement unscaled value at Scale.
type Parsed struct {
	Wide  bool
	D128  decimal128.Num
	D256  decimal256.Num
	Scale int8
}

// Parse parses a decimal string (optional sign, optional decimal
// point, optional [eE][+-]?\d+ exponent) and rescales it to
// targetScale. If the rescaled unscaled value does not fit in 128
// bits, it falls back to 256 bits; if it does not fit in 256 bits
// either, it fails with perr.ErrOutOfRange.
func Parse(s string, targetScale int8) (Parsed, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Parsed{}, perr.Conversion(component, "Parse", "", fmt.Errorf("empty decimal string"))
	}

	d, err := shopspring.NewFromString(trimmed)
	if err != nil {
		return Parsed{}, perr.Conversion(component, "Parse", "", err)
	}

	unscaled := new(big.Int).Set(d.Coefficient())
	effectiveScale := -d.Exponent()

	diff := int64(targetScale) - int64(effectiveScale)
	switch {
	case diff > 0:
		unscaled.Mul(unscaled, pow10(diff))
	case diff < 0:
		unscaled.Quo(unscaled, pow10(-diff))
	}

	return fromBigInt(unscaled, targetScale)
}

// FromBigInt builds a Parsed directly from an already-scaled unscaled
// integer, choosing the narrowest width that fits.
func FromBigInt(unscaled *big.Int, scale int8) (Parsed, error) {
	return fromBigInt(unscaled, scale)
}

func fromBigInt(unscaled *big.Int, scale int8) (Parsed, error) {
	if fitsIn(unscaled, minI128, maxI128) {
		return Parsed{Wide: false, D128: decimal128.FromBigInt(unscaled), Scale: scale}, nil
	}
	if fitsIn(unscaled, minI256, maxI256) {
		return Parsed{Wide: true, D256: decimal256.FromBigInt(unscaled), Scale: scale}, nil
	}
	return Parsed{}, perr.OutOfRange(component, "Parse", "", fmt.Errorf("unscaled value %s exceeds 256 bits", unscaled.String()))
}

func fitsIn(v, lo, hi *big.Int) bool {
	return v.Cmp(lo) >= 0 && v.Cmp(hi) <= 0
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

// WidenTo256 returns p's unscaled value as a 256-bit Num, widening a
// narrower 128-bit Parse result when the caller's field is declared
// Decimal256 regardless of how small the parsed value turned out to be.
func WidenTo256(p Parsed) decimal256.Num {
	if p.Wide {
		return p.D256
	}
	return decimal256.FromBigInt(ToBigInt128(p.D128))
}

// ToBigInt128 widens a 128-bit unscaled value to *big.Int.
func ToBigInt128(n decimal128.Num) *big.Int { return n.BigInt() }

// ToBigInt256 widens a 256-bit unscaled value to *big.Int.
func ToBigInt256(n decimal256.Num) *big.Int { return n.BigInt() }

// Format renders the canonical string for (unscaled, scale): positive
// scale emits "Ne-S", non-positive scale emits "NeS" (exponent is
// always -scale). The result round-trips through Parse at the same
// target scale.
func Format(unscaled *big.Int, scale int8) string {
	return fmt.Sprintf("%se%d", unscaled.String(), -int64(scale))
}

// EqualValue reports whether (aUnscaled, aScale) and (bUnscaled,
// bScale) denote the same rational number, rescaling to the larger
// scale before comparing.
func EqualValue(aUnscaled *big.Int, aScale int8, bUnscaled *big.Int, bScale int8) bool {
	a, b := new(big.Int).Set(aUnscaled), new(big.Int).Set(bUnscaled)
	switch {
	case aScale == bScale:
		// already aligned
	case aScale < bScale:
		a.Mul(a, pow10(int64(bScale)-int64(aScale)))
	default:
		b.Mul(b, pow10(int64(aScale)-int64(bScale)))
	}
	return a.Cmp(b) == 0
}

// CanonicalReduce strips all trailing zeros from unscaled, decreasing
// scale to match — including past scale 0 into negative scale — so
// that every value in a numeric equivalence class (e.g. 1200 at scale
// 0, 120 at scale 1, 12 at scale -2) canonicalizes to the same
// (unscaled, scale) pair for hashing. Only a zero remainder stops the
// reduction; scale itself is never a bound.
func CanonicalReduce(unscaled *big.Int, scale int8) (*big.Int, int8) {
	if unscaled.Sign() == 0 {
		return big.NewInt(0), 0
	}
	v := new(big.Int).Set(unscaled)
	ten := big.NewInt(10)
	q, r := new(big.Int), new(big.Int)
	for {
		q.QuoRem(v, ten, r)
		if r.Sign() != 0 {
			break
		}
		v.Set(q)
		scale--
	}
	return v, scale
}

// Decimal256ToBytes encodes an unscaled integer as the 32-byte
// little-endian two's-complement layout Arrow's Decimal256 uses:
// little-endian bytes of the absolute value, zero-padded to 32, then
// (for negative values) bitwise-inverted and incremented with carry.
func Decimal256ToBytes(v *big.Int) ([32]byte, error) {
	var out [32]byte
	abs := new(big.Int).Abs(v)
	absBytes := abs.Bytes() // big-endian
	if len(absBytes) > 32 {
		return out, perr.OutOfRange(component, "Decimal256ToBytes", "", fmt.Errorf("value %s exceeds 32 bytes", v.String()))
	}
	// place little-endian
	for i, b := range absBytes {
		out[i] = absBytes[len(absBytes)-1-i]
		_ = b
	}
	if v.Sign() < 0 {
		carry := uint16(1)
		for i := 0; i < 32; i++ {
			sum := uint16(^out[i]) + carry
			out[i] = byte(sum)
			carry = sum >> 8
		}
	}
	return out, nil
}

// BytesToDecimal256 decodes the 32-byte little-endian two's-complement
// layout back into an arbitrary-precision signed integer.
func BytesToDecimal256(b [32]byte) *big.Int {
	negative := b[31]&0x80 != 0
	work := make([]byte, 32)
	copy(work, b[:])
	if negative {
		carry := uint16(1)
		for i := 0; i < 32; i++ {
			sum := uint16(^work[i]) + carry
			work[i] = byte(sum)
			carry = sum >> 8
		}
	}
	// work is now little-endian magnitude; big.Int wants big-endian.
	be := make([]byte, 32)
	for i := 0; i < 32; i++ {
		be[31-i] = work[i]
	}
	mag := new(big.Int).SetBytes(be)
	if negative {
		mag.Neg(mag)
	}
	return mag
}
