package schema

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/zeebo/assert"
)

func simpleSchema(t *testing.T) *Schema {
	root := &Node{
		Shape: ShapeStruct,
		Fields: []*Node{
			{Name: "id", Shape: ShapePrimitive, Prim: Int64, Nullable: false},
			{Name: "name", Shape: ShapePrimitive, Prim: String, Nullable: true},
		},
	}
	s, err := New(root)
	assert.NoError(t, err)
	return s
}

func TestNewRejectsEmptyStruct(t *testing.T) {
	root := &Node{Shape: ShapeStruct, Fields: nil}
	_, err := New(root)
	assert.Error(t, err)
}

func TestNewRejectsDuplicateTopLevelNames(t *testing.T) {
	root := &Node{
		Shape: ShapeStruct,
		Fields: []*Node{
			{Name: "id", Shape: ShapePrimitive, Prim: Int64},
			{Name: "id", Shape: ShapePrimitive, Prim: String},
		},
	}
	_, err := New(root)
	assert.Error(t, err)
}

func TestToArrowPrimitives(t *testing.T) {
	s := simpleSchema(t)
	as, err := ToArrow(s)
	assert.NoError(t, err)
	assert.Equal(t, 2, as.NumFields())
	assert.Equal(t, arrow.INT64, as.Field(0).Type.ID())
	assert.True(t, !as.Field(0).Nullable)
	assert.Equal(t, arrow.STRING, as.Field(1).Type.ID())
	assert.True(t, as.Field(1).Nullable)
}

func TestTimestampTimezoneNormalizesToUTC(t *testing.T) {
	root := &Node{
		Shape: ShapeStruct,
		Fields: []*Node{
			{Name: "ts", Shape: ShapePrimitive, Prim: TimestampMicros, Tz: "America/New_York"},
		},
	}
	s, err := New(root)
	assert.NoError(t, err)
	as, err := ToArrow(s)
	assert.NoError(t, err)
	tt := as.Field(0).Type.(*arrow.TimestampType)
	assert.Equal(t, "UTC", tt.TimeZone)
}

func TestListMapping(t *testing.T) {
	root := &Node{
		Shape: ShapeStruct,
		Fields: []*Node{
			{Name: "tags", Shape: ShapeList, Item: &Node{Name: "item", Shape: ShapePrimitive, Prim: String, Nullable: true}},
		},
	}
	s, err := New(root)
	assert.NoError(t, err)
	as, err := ToArrow(s)
	assert.NoError(t, err)
	lt := as.Field(0).Type.(*arrow.ListType)
	assert.Equal(t, "item", lt.ElemField().Name)
}

func TestMapMapping(t *testing.T) {
	root := &Node{
		Shape: ShapeStruct,
		Fields: []*Node{
			{
				Name:  "attrs",
				Shape: ShapeMap,
				Key:   &Node{Name: "key", Shape: ShapePrimitive, Prim: String, Nullable: false},
				Value: &Node{Name: "value", Shape: ShapePrimitive, Prim: String, Nullable: true},
			},
		},
	}
	s, err := New(root)
	assert.NoError(t, err)
	as, err := ToArrow(s)
	assert.NoError(t, err)
	mt := as.Field(0).Type.(*arrow.MapType)
	assert.True(t, !mt.KeysSorted)
}

func TestDate64RejectedWithoutOptIn(t *testing.T) {
	root := arrow.NewSchema([]arrow.Field{
		{Name: "d", Type: arrow.FixedWidthTypes.Date64, Nullable: true},
	}, nil)
	_, err := FromArrow(root, false)
	assert.Error(t, err)

	_, err = FromArrow(root, true)
	assert.NoError(t, err)
}

func TestFormatHintRoundTripsAsFieldMetadata(t *testing.T) {
	root := &Node{
		Shape: ShapeStruct,
		Fields: []*Node{
			{Name: "amount", Shape: ShapePrimitive, Prim: Decimal128, Prec: 18, Scale: 4, Format: "currency"},
		},
	}
	s, err := New(root)
	assert.NoError(t, err)
	as, err := ToArrow(s)
	assert.NoError(t, err)

	idx := as.Field(0).Metadata.FindKey(formatMetadataKey)
	assert.True(t, idx >= 0)
	assert.Equal(t, "currency", as.Field(0).Metadata.Values()[idx])

	back, err := FromArrow(as, false)
	assert.NoError(t, err)
	assert.Equal(t, "currency", back.Root.Fields[0].Format)
}

func TestRoundTripDecimal128(t *testing.T) {
	root := &Node{
		Shape: ShapeStruct,
		Fields: []*Node{
			{Name: "v", Shape: ShapePrimitive, Prim: Decimal128, Prec: 9, Scale: 2},
		},
	}
	s, err := New(root)
	assert.NoError(t, err)
	as, err := ToArrow(s)
	assert.NoError(t, err)

	back, err := FromArrow(as, false)
	assert.NoError(t, err)
	assert.Equal(t, Decimal128, back.Root.Fields[0].Prim)
	assert.Equal(t, int32(9), back.Root.Fields[0].Prec)
	assert.Equal(t, int32(2), back.Root.Fields[0].Scale)
}
