package arrowconv

import (
	"math/big"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/zeebo/assert"

	"github.com/johanan/pval/schema"
	"github.com/johanan/pval/value"
)

func roundTrip(t *testing.T, node *schema.Node, in []value.PValue) []value.PValue {
	t.Helper()
	alloc := memory.NewGoAllocator()
	arr, err := EncodeColumn(alloc, node, in, node.Name)
	assert.NoError(t, err)
	defer arr.Release()

	d := Decoder{Strict: true}
	out, err := d.DecodeColumn(arr, node.Name)
	assert.NoError(t, err)
	return out
}

func TestRoundTripInt64(t *testing.T) {
	node := &schema.Node{Name: "id", Shape: schema.ShapePrimitive, Prim: schema.Int64, Nullable: false}
	in := []value.PValue{value.Int64(1), value.Int64(2), value.Int64(3)}
	out := roundTrip(t, node, in)
	for i := range in {
		assert.True(t, value.Equal(in[i], out[i]))
	}
}

func TestRoundTripNullableString(t *testing.T) {
	node := &schema.Node{Name: "name", Shape: schema.ShapePrimitive, Prim: schema.String, Nullable: true}
	in := []value.PValue{value.String("a"), value.Null, value.String("c")}
	out := roundTrip(t, node, in)
	for i := range in {
		assert.True(t, value.Equal(in[i], out[i]))
	}
}

func TestWideningInt8ToInt64(t *testing.T) {
	node := &schema.Node{Name: "v", Shape: schema.ShapePrimitive, Prim: schema.Int64, Nullable: false}
	in := []value.PValue{value.Int8(5)}
	out := roundTrip(t, node, in)
	got, ok := out[0].AsInt64()
	assert.True(t, ok)
	assert.Equal(t, int64(5), got)
}

func TestNarrowingRejected(t *testing.T) {
	alloc := memory.NewGoAllocator()
	node := &schema.Node{Name: "v", Shape: schema.ShapePrimitive, Prim: schema.Int8, Nullable: false}
	_, err := EncodeColumn(alloc, node, []value.PValue{value.Int64(5)}, "v")
	assert.Error(t, err)
}

func TestCrossSignRejected(t *testing.T) {
	alloc := memory.NewGoAllocator()
	node := &schema.Node{Name: "v", Shape: schema.ShapePrimitive, Prim: schema.Uint16, Nullable: false}
	_, err := EncodeColumn(alloc, node, []value.PValue{value.Int8(5)}, "v")
	assert.Error(t, err)
}

func TestNonNullableRejectsNull(t *testing.T) {
	alloc := memory.NewGoAllocator()
	node := &schema.Node{Name: "v", Shape: schema.ShapePrimitive, Prim: schema.Int32, Nullable: false}
	_, err := EncodeColumn(alloc, node, []value.PValue{value.Null}, "v")
	assert.Error(t, err)
}

func TestRoundTripListOfStruct(t *testing.T) {
	itemStruct := &schema.Node{
		Name: "item", Shape: schema.ShapeStruct, Nullable: true,
		Fields: []*schema.Node{
			{Name: "pid", Shape: schema.ShapePrimitive, Prim: schema.Int32, Nullable: false},
			{Name: "qty", Shape: schema.ShapePrimitive, Prim: schema.Int32, Nullable: false},
		},
	}
	node := &schema.Node{Name: "items", Shape: schema.ShapeList, Nullable: true, Item: itemStruct}

	mkItem := func(pid, qty int32) value.PValue {
		return value.RecordValue(value.NewRecord([]string{"pid", "qty"}, []value.PValue{value.Int32(pid), value.Int32(qty)}))
	}

	in := []value.PValue{
		value.List([]value.PValue{mkItem(1, 2), mkItem(3, 4)}),
		value.List(nil), // empty, not null
		value.Null,      // null list
	}
	out := roundTrip(t, node, in)

	items0, ok := out[0].AsList()
	assert.True(t, ok)
	assert.Equal(t, 2, len(items0))

	items1, ok := out[1].AsList()
	assert.True(t, ok)
	assert.Equal(t, 0, len(items1))

	assert.True(t, out[2].IsNull())
}

func TestRoundTripMap(t *testing.T) {
	node := &schema.Node{
		Name: "tags", Shape: schema.ShapeMap, Nullable: true,
		Key:   &schema.Node{Name: "key", Shape: schema.ShapePrimitive, Prim: schema.String, Nullable: false},
		Value: &schema.Node{Name: "value", Shape: schema.ShapePrimitive, Prim: schema.String, Nullable: true},
	}
	in := []value.PValue{
		value.Map([]value.MapEntry{
			{Key: value.String("a"), Value: value.String("x")},
			{Key: value.String("b"), Value: value.Null},
		}),
	}
	out := roundTrip(t, node, in)
	entries, ok := out[0].AsMap()
	assert.True(t, ok)
	assert.Equal(t, 2, len(entries))
	assert.True(t, value.Equal(entries[0].Key, value.String("a")))
	assert.True(t, entries[1].Value.IsNull())
}

func TestRoundTripDecimal128Rescale(t *testing.T) {
	node := &schema.Node{Name: "v", Shape: schema.ShapePrimitive, Prim: schema.Decimal128, Prec: 9, Scale: 2, Nullable: false}
	in := []value.PValue{value.Decimal128Value(decimal128.FromI64(120000), 2)}
	out := roundTrip(t, node, in)
	got, scale, ok := out[0].AsDecimal128()
	assert.True(t, ok)
	assert.Equal(t, int8(2), scale)
	assert.Equal(t, int64(120000), got.BigInt().Int64())
}

// TestScenarioS3DecimalRescale is spec scenario S3: schema
// Decimal128(9,2), input parsed from "1.2e3", unscaled stored value
// 120000 (1200.00), decode string "120000e-2".
func TestScenarioS3DecimalRescale(t *testing.T) {
	in, err := value.ParseDecimal128("1.2e3", 2)
	assert.NoError(t, err)

	node := &schema.Node{Name: "v", Shape: schema.ShapePrimitive, Prim: schema.Decimal128, Prec: 9, Scale: 2, Nullable: false}
	out := roundTrip(t, node, []value.PValue{in})

	str, ok := value.FormatDecimal(out[0])
	assert.True(t, ok)
	assert.Equal(t, "120000e-2", str)

	got, scale, ok := out[0].AsDecimal128()
	assert.True(t, ok)
	assert.Equal(t, int8(2), scale)
	assert.Equal(t, int64(120000), got.BigInt().Int64())
}

// TestScenarioS2WideDecimal256 is spec scenario S2: schema
// Decimal256(76,0), input v = 10^75, expected byte encoding is a
// 32-byte little-endian pattern, and decode recovers the original
// arbitrary-precision integer.
func TestScenarioS2WideDecimal256(t *testing.T) {
	want := new(big.Int).Exp(big.NewInt(10), big.NewInt(75), nil)
	in, err := value.ParseDecimal256(want.String(), 0)
	assert.NoError(t, err)

	raw, ok := value.Decimal256Bytes(in)
	assert.True(t, ok)
	// little-endian, positive: sign bit (top bit of the highest-order
	// byte) is clear.
	assert.True(t, raw[31]&0x80 == 0)

	node := &schema.Node{Name: "v", Shape: schema.ShapePrimitive, Prim: schema.Decimal256, Prec: 76, Scale: 0, Nullable: false}
	out := roundTrip(t, node, []value.PValue{in})

	got, scale, ok := out[0].AsDecimal256()
	assert.True(t, ok)
	assert.Equal(t, int8(0), scale)
	assert.Equal(t, want.String(), got.BigInt().String())

	// the 32-byte codec round-trips independently of arrow-go's own
	// Decimal256 <-> big.Int conversion.
	back, err := value.Decimal256FromBytes(raw, 0)
	assert.NoError(t, err)
	assert.True(t, value.Equal(in, back))
}
