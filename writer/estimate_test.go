package writer

import (
	"testing"

	"github.com/zeebo/assert"

	"github.com/johanan/pval/schema"
	"github.com/johanan/pval/value"
)

func TestEstimatePrimitiveInt64(t *testing.T) {
	node := &schema.Node{Name: "id", Shape: schema.ShapePrimitive, Prim: schema.Int64}
	got := estimateValue(node, value.Int64(1))
	assert.Equal(t, int64(8+primitiveOverhead), got)
}

func TestEstimateStringByteLength(t *testing.T) {
	node := &schema.Node{Name: "s", Shape: schema.ShapePrimitive, Prim: schema.String}
	got := estimateValue(node, value.String("hello"))
	assert.Equal(t, int64(5+3*wordSize), got)
}

func TestEstimateNullIsOverheadOnly(t *testing.T) {
	node := &schema.Node{Name: "s", Shape: schema.ShapePrimitive, Prim: schema.String, Nullable: true}
	got := estimateValue(node, value.Null)
	assert.Equal(t, int64(primitiveOverhead), got)
}

func TestEstimateEmptyListIsOverheadOnly(t *testing.T) {
	node := &schema.Node{Name: "l", Shape: schema.ShapeList, Item: &schema.Node{Shape: schema.ShapePrimitive, Prim: schema.Int32}}
	got := estimateValue(node, value.List(nil))
	assert.Equal(t, int64(listOverhead), got)
}

func TestEstimateListScalesWithLength(t *testing.T) {
	item := &schema.Node{Shape: schema.ShapePrimitive, Prim: schema.Int32}
	node := &schema.Node{Name: "l", Shape: schema.ShapeList, Item: item}
	ten := make([]value.PValue, 10)
	for i := range ten {
		ten[i] = value.Int32(1)
	}
	got := estimateValue(node, value.List(ten))
	want := estimateValue(item, value.Int32(1))*10 + listOverhead
	assert.Equal(t, want, got)
}
