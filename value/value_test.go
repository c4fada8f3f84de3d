package value

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/google/uuid"
	"github.com/zeebo/assert"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "Int32", KindInt32.String())
	assert.Equal(t, "Record", KindRecord.String())
}

func TestEqualPrimitives(t *testing.T) {
	assert.True(t, Equal(Int32(5), Int32(5)))
	assert.True(t, !Equal(Int32(5), Int32(6)))
	assert.True(t, !Equal(Int32(5), Int64(5)))
	assert.True(t, Equal(Null, Null))
	assert.True(t, Equal(String("a"), String("a")))
	assert.True(t, Equal(Bytes([]byte{1, 2}), Bytes([]byte{1, 2})))
}

func TestEqualFloatBitPattern(t *testing.T) {
	nan := Float64(nan())
	assert.True(t, Equal(nan, nan))

	posZero := Float64(0.0)
	negZero := Float64(negZero())
	assert.True(t, !Equal(posZero, negZero))
}

func nan() float64     { var z float64; return z / z }
func negZero() float64 { var z float64; return -z }

func TestEqualTimestampIgnoresTimezone(t *testing.T) {
	a := TimestampMicros(1000, "UTC")
	b := TimestampMicros(1000, "America/New_York")
	assert.True(t, Equal(a, b))
}

func TestEqualDecimalAcrossScale(t *testing.T) {
	a := Decimal128Value(decimal128.FromI64(120), 1) // 12.0
	b := Decimal128Value(decimal128.FromI64(12), 0)  // 12
	assert.True(t, Equal(a, b))

	c := Decimal128Value(decimal128.FromI64(121), 1) // 12.1
	assert.True(t, !Equal(a, c))
}

func TestHashAgreesWithEqual(t *testing.T) {
	a := Decimal128Value(decimal128.FromI64(120), 1)
	b := Decimal128Value(decimal128.FromI64(12), 0)
	assert.Equal(t, Hash(a), Hash(b))
}

// TestHashAgreesWithEqualAcrossNegativeScale guards against
// canonicalization stopping at scale 0: 1200 at scale 0 and 12 at
// scale -2 both denote 1200 and must hash identically.
func TestHashAgreesWithEqualAcrossNegativeScale(t *testing.T) {
	a := Decimal128Value(decimal128.FromI64(1200), 0)
	b := Decimal128Value(decimal128.FromI64(12), -2)
	assert.True(t, Equal(a, b))
	assert.Equal(t, Hash(a), Hash(b))
}

func TestListEqual(t *testing.T) {
	a := List([]PValue{Int32(1), Null, Int32(3)})
	b := List([]PValue{Int32(1), Null, Int32(3)})
	assert.True(t, Equal(a, b))

	c := List([]PValue{Int32(1), Int32(2), Int32(3)})
	assert.True(t, !Equal(a, c))
}

func TestMapEqualStorageOrder(t *testing.T) {
	a := Map([]MapEntry{{Key: String("a"), Value: Int32(1)}, {Key: String("b"), Value: Null}})
	b := Map([]MapEntry{{Key: String("a"), Value: Int32(1)}, {Key: String("b"), Value: Null}})
	assert.True(t, Equal(a, b))

	// different storage order is not equal (Map compares by storage order).
	c := Map([]MapEntry{{Key: String("b"), Value: Null}, {Key: String("a"), Value: Int32(1)}})
	assert.True(t, !Equal(a, c))
}

func TestRecordEqual(t *testing.T) {
	names := []string{"id", "name"}
	a := RecordValue(NewRecord(names, []PValue{Int64(1), String("x")}))
	b := RecordValue(NewRecord(names, []PValue{Int64(1), String("x")}))
	assert.True(t, Equal(a, b))
}

func TestUUIDBytesRoundTrip(t *testing.T) {
	u := uuid.New()
	v := UUIDBytes(u)
	got, ok := AsUUID(v)
	assert.True(t, ok)
	assert.Equal(t, u, got)
}
