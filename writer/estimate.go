package writer

import (
	"github.com/johanan/pval/schema"
	"github.com/johanan/pval/value"
)

// Estimation constants for §4.5.1. wordSize mirrors a 64-bit pointer
// word, the unit the original Rust sizing model charges per
// String/Binary for its length-prefix-and-pointer overhead.
const (
	wordSize          = 8
	primitiveOverhead = 8
	listOverhead      = 16
	mapOverhead       = 16
	structOverhead    = 8
	maxSampleChildren = 5
)

// estimateRow sums the estimated cost of one row's values against
// their declared fields.
func estimateRow(fields []*schema.Node, row []value.PValue) int64 {
	var total int64
	for i, f := range fields {
		total += estimateValue(f, row[i])
	}
	return total
}

func estimateValue(node *schema.Node, v value.PValue) int64 {
	if v.IsNull() {
		return primitiveOverhead
	}
	switch node.Shape {
	case schema.ShapeList:
		items, _ := v.AsList()
		return estimateSequence(node.Item, items, listOverhead)
	case schema.ShapeMap:
		entries, _ := v.AsMap()
		return estimateMap(node, entries)
	case schema.ShapeStruct:
		rec, ok := v.AsRecord()
		if !ok {
			return structOverhead
		}
		var sum int64 = structOverhead
		for _, f := range node.Fields {
			fv, present := rec.Get(f.Name)
			if !present {
				fv = value.Null
			}
			sum += estimateValue(f, fv)
		}
		return sum
	default:
		return estimatePrimitive(node, v)
	}
}

func estimateSequence(item *schema.Node, items []value.PValue, overhead int64) int64 {
	n := len(items)
	if n == 0 {
		return overhead
	}
	sampleN := n
	if sampleN > maxSampleChildren {
		sampleN = maxSampleChildren
	}
	var sum int64
	for i := 0; i < sampleN; i++ {
		sum += estimateValue(item, items[i])
	}
	mean := float64(sum) / float64(sampleN)
	return overhead + int64(mean*float64(n))
}

func estimateMap(node *schema.Node, entries []value.MapEntry) int64 {
	n := len(entries)
	if n == 0 {
		return mapOverhead
	}
	sampleN := n
	if sampleN > maxSampleChildren {
		sampleN = maxSampleChildren
	}
	var sum int64
	for i := 0; i < sampleN; i++ {
		sum += mapOverhead + estimateValue(node.Key, entries[i].Key) + estimateValue(node.Value, entries[i].Value)
	}
	mean := float64(sum) / float64(sampleN)
	return mapOverhead + int64(mean*float64(n))
}

func estimatePrimitive(node *schema.Node, v value.PValue) int64 {
	switch node.Prim {
	case schema.Boolean, schema.Int8, schema.Uint8:
		return 1 + primitiveOverhead
	case schema.Int16, schema.Uint16, schema.Float16:
		return 2 + primitiveOverhead
	case schema.Int32, schema.Uint32, schema.Float32, schema.Date32, schema.TimeMillis:
		return 4 + primitiveOverhead
	case schema.Int64, schema.Uint64, schema.Float64, schema.Date64, schema.TimeMicros,
		schema.TimestampSecond, schema.TimestampMillis, schema.TimestampMicros, schema.TimestampNanos:
		return 8 + primitiveOverhead
	case schema.Decimal128:
		return 16 + primitiveOverhead
	case schema.Decimal256:
		return 32 + primitiveOverhead
	case schema.FixedLenByteArray:
		return int64(node.Length) + primitiveOverhead
	case schema.String:
		s, _ := v.AsString()
		return int64(len(s)) + 3*wordSize
	case schema.Binary:
		b, _ := v.AsBytes()
		return int64(len(b)) + 3*wordSize
	default:
		return primitiveOverhead
	}
}
