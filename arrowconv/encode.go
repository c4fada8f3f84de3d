package arrowconv

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/johanan/pval/perr"
	"github.com/johanan/pval/schema"
	"github.com/johanan/pval/value"
)

// EncodeColumn builds an Arrow array from values against node's
// declared type, per §4.4. alloc is the allocator the resulting array
// is built with; the caller owns the returned array's reference.
func EncodeColumn(alloc memory.Allocator, node *schema.Node, values []value.PValue, path string) (arrow.Array, error) {
	dt, err := schema.TypeOf(node)
	if err != nil {
		return nil, err
	}
	b := array.NewBuilder(alloc, dt)
	defer b.Release()
	b.Reserve(len(values))

	if err := appendColumn(b, node, values, path); err != nil {
		return nil, err
	}
	return b.NewArray(), nil
}

func appendColumn(b array.Builder, node *schema.Node, values []value.PValue, path string) error {
	for i, v := range values {
		if err := appendValue(b, node, v, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func appendValue(b array.Builder, node *schema.Node, v value.PValue, path string) error {
	if v.IsNull() {
		if !node.Nullable {
			return perr.Schema(component, "encode", path, fmt.Errorf("null value for non-nullable field %q", node.Name))
		}
		b.AppendNull()
		return nil
	}

	switch bb := b.(type) {
	case *array.BooleanBuilder:
		bv, ok := v.AsBool()
		if !ok {
			return conversionErr(path, node, v)
		}
		bb.Append(bv)

	case *array.Int8Builder:
		iv, err := widenInt64(v, node.Prim, path)
		if err != nil {
			return err
		}
		bb.Append(int8(iv))

	case *array.Int16Builder:
		iv, err := widenInt64(v, node.Prim, path)
		if err != nil {
			return err
		}
		bb.Append(int16(iv))

	case *array.Int32Builder:
		iv, err := widenInt64(v, node.Prim, path)
		if err != nil {
			return err
		}
		bb.Append(int32(iv))

	case *array.Int64Builder:
		iv, err := widenInt64(v, node.Prim, path)
		if err != nil {
			return err
		}
		bb.Append(iv)

	case *array.Uint8Builder:
		uv, err := widenUint64(v, node.Prim, path)
		if err != nil {
			return err
		}
		bb.Append(uint8(uv))

	case *array.Uint16Builder:
		uv, err := widenUint64(v, node.Prim, path)
		if err != nil {
			return err
		}
		bb.Append(uint16(uv))

	case *array.Uint32Builder:
		uv, err := widenUint64(v, node.Prim, path)
		if err != nil {
			return err
		}
		bb.Append(uint32(uv))

	case *array.Uint64Builder:
		uv, err := widenUint64(v, node.Prim, path)
		if err != nil {
			return err
		}
		bb.Append(uv)

	case *array.Float32Builder:
		fv, err := widenFloat64(v, node.Prim, path)
		if err != nil {
			return err
		}
		bb.Append(float32(fv))

	case *array.Float64Builder:
		fv, err := widenFloat64(v, node.Prim, path)
		if err != nil {
			return err
		}
		bb.Append(fv)

	case *array.StringBuilder:
		sv, ok := v.AsString()
		if !ok {
			return conversionErr(path, node, v)
		}
		bb.Append(sv)

	case *array.BinaryBuilder:
		bv, ok := v.AsBytes()
		if !ok {
			return conversionErr(path, node, v)
		}
		bb.Append(bv)

	case *array.FixedSizeBinaryBuilder:
		bv, ok := v.AsBytes()
		if !ok {
			return conversionErr(path, node, v)
		}
		if int32(len(bv)) != node.Length {
			return perr.OutOfRange(component, "encode", path, fmt.Errorf("fixed binary length %d does not match declared length %d", len(bv), node.Length))
		}
		bb.Append(bv)

	case *array.Date32Builder:
		iv, ok := v.AsInt64()
		if !ok || v.Kind() != value.KindDate32 {
			return conversionErr(path, node, v)
		}
		bb.Append(arrow.Date32(iv))

	case *array.Date64Builder:
		iv, ok := v.AsInt64()
		if !ok || v.Kind() != value.KindDate64 {
			return conversionErr(path, node, v)
		}
		bb.Append(arrow.Date64(iv))

	case *array.Time32Builder:
		iv, ok := v.AsInt64()
		if !ok || v.Kind() != value.KindTimeMillis {
			return conversionErr(path, node, v)
		}
		bb.Append(arrow.Time32(iv))

	case *array.Time64Builder:
		iv, ok := v.AsInt64()
		if !ok || v.Kind() != value.KindTimeMicros {
			return conversionErr(path, node, v)
		}
		bb.Append(arrow.Time64(iv))

	case *array.TimestampBuilder:
		iv, ok := v.AsInt64()
		if !ok || !isTimestampKind(v.Kind()) {
			return conversionErr(path, node, v)
		}
		bb.Append(arrow.Timestamp(iv))

	case *array.Decimal128Builder:
		dv, _, ok := v.AsDecimal128()
		if !ok {
			return conversionErr(path, node, v)
		}
		bb.Append(dv)

	case *array.Decimal256Builder:
		dv, _, ok := v.AsDecimal256()
		if !ok {
			return conversionErr(path, node, v)
		}
		bb.Append(dv)

	case *array.ListBuilder:
		return appendList(bb, node, v, path)

	case *array.MapBuilder:
		return appendMap(bb, node, v, path)

	case *array.StructBuilder:
		return appendStruct(bb, node, v, path)

	default:
		return perr.Conversion(component, "encode", path, fmt.Errorf("unsupported builder type %T", b))
	}
	return nil
}

func appendList(b *array.ListBuilder, node *schema.Node, v value.PValue, path string) error {
	items, ok := v.AsList()
	if !ok {
		return conversionErr(path, node, v)
	}
	b.Append(true)
	vb := b.ValueBuilder()
	for i, item := range items {
		if err := appendValue(vb, node.Item, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func appendMap(b *array.MapBuilder, node *schema.Node, v value.PValue, path string) error {
	entries, ok := v.AsMap()
	if !ok {
		return conversionErr(path, node, v)
	}
	b.Append(true)
	kb := b.KeyBuilder()
	ib := b.ItemBuilder()
	for _, e := range entries {
		if e.Key.IsNull() {
			return perr.Schema(component, "encode", path+".key", fmt.Errorf("null map key"))
		}
		if err := appendValue(kb, node.Key, e.Key, path+".key"); err != nil {
			return err
		}
		if err := appendValue(ib, node.Value, e.Value, path+".value"); err != nil {
			return err
		}
	}
	return nil
}

func appendStruct(b *array.StructBuilder, node *schema.Node, v value.PValue, path string) error {
	rec, ok := v.AsRecord()
	if !ok {
		return conversionErr(path, node, v)
	}
	b.Append(true)
	for i, f := range node.Fields {
		fv, present := rec.Get(f.Name)
		if !present {
			fv = value.Null
		}
		if err := appendValue(b.FieldBuilder(i), f, fv, path+"."+f.Name); err != nil {
			return err
		}
	}
	return nil
}

func isTimestampKind(k value.Kind) bool {
	switch k {
	case value.KindTimestampSecond, value.KindTimestampMillis, value.KindTimestampMicros, value.KindTimestampNanos:
		return true
	default:
		return false
	}
}

func conversionErr(path string, node *schema.Node, v value.PValue) error {
	return perr.Conversion(component, "encode", path, fmt.Errorf("field %q expected kind compatible with schema primitive %d, got %s", node.Name, node.Prim, v.Kind()))
}
