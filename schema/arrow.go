package schema

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/johanan/pval/perr"
)

// utcTimezone is the Arrow timezone literal every non-empty Schema
// timezone is normalized to: Parquet's isAdjustedToUTC=true stores
// UTC-normalized instants and does not preserve the originating zone.
const utcTimezone = "UTC"

// TypeOf returns the Arrow type for a single node, for callers (the
// encoder) that need a builder for one field without a full Schema.
func TypeOf(n *Node) (arrow.DataType, error) {
	return nodeToArrowType(n, n.Name)
}

// FieldOf returns the Arrow field (type plus nullability) for a single
// node.
func FieldOf(n *Node) (arrow.Field, error) {
	return nodeToArrowField(n, n.Name)
}

// ToArrow converts s to an Arrow schema. The conversion is total over
// the Primitive space in schema.go; List/Map/Struct recurse using the
// fixed child-field names required by §4.1.
func ToArrow(s *Schema) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(s.Root.Fields))
	for i, f := range s.Root.Fields {
		af, err := nodeToArrowField(f, f.Name)
		if err != nil {
			return nil, err
		}
		fields[i] = af
	}
	return arrow.NewSchema(fields, nil), nil
}

// formatMetadataKey is the Arrow field metadata key a Node's display
// Format hint round-trips through, so FromArrow recovers the same
// string a prior ToArrow attached (the Rust original's
// parquet-ruby-adapter/src/schema.rs does the same under its own key).
const formatMetadataKey = "original_type"

func nodeToArrowField(n *Node, path string) (arrow.Field, error) {
	dt, err := nodeToArrowType(n, path)
	if err != nil {
		return arrow.Field{}, err
	}
	f := arrow.Field{Name: n.Name, Type: dt, Nullable: n.Nullable}
	if n.Format != "" {
		f.Metadata = arrow.NewMetadata([]string{formatMetadataKey}, []string{n.Format})
	}
	return f, nil
}

func nodeToArrowType(n *Node, path string) (arrow.DataType, error) {
	switch n.Shape {
	case ShapePrimitive:
		return primitiveToArrow(n, path)
	case ShapeList:
		item, err := nodeToArrowField(n.Item, path+".item")
		if err != nil {
			return nil, err
		}
		item.Name = "item"
		return arrow.ListOfField(item), nil
	case ShapeMap:
		return mapToArrow(n, path)
	case ShapeStruct:
		return structToArrow(n, path)
	default:
		return nil, perr.Schema(component, "ToArrow", path, fmt.Errorf("unknown node shape %d", n.Shape))
	}
}

func mapToArrow(n *Node, path string) (arrow.DataType, error) {
	keyType, err := nodeToArrowType(n.Key, path+".key")
	if err != nil {
		return nil, err
	}
	valType, err := nodeToArrowType(n.Value, path+".value")
	if err != nil {
		return nil, err
	}
	mt := arrow.MapOf(keyType, valType)
	mt.KeysSorted = false
	mt.SetItemNullable(n.Value.Nullable)
	return mt, nil
}

func structToArrow(n *Node, path string) (arrow.DataType, error) {
	if len(n.Fields) == 0 {
		return nil, perr.Schema(component, "ToArrow", path, fmt.Errorf("struct has no fields"))
	}
	fields := make([]arrow.Field, len(n.Fields))
	for i, f := range n.Fields {
		af, err := nodeToArrowField(f, path+"."+f.Name)
		if err != nil {
			return nil, err
		}
		fields[i] = af
	}
	return arrow.StructOf(fields...), nil
}

func primitiveToArrow(n *Node, path string) (arrow.DataType, error) {
	switch n.Prim {
	case Boolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case Int8:
		return arrow.PrimitiveTypes.Int8, nil
	case Int16:
		return arrow.PrimitiveTypes.Int16, nil
	case Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case Uint8:
		return arrow.PrimitiveTypes.Uint8, nil
	case Uint16:
		return arrow.PrimitiveTypes.Uint16, nil
	case Uint32:
		return arrow.PrimitiveTypes.Uint32, nil
	case Uint64:
		return arrow.PrimitiveTypes.Uint64, nil
	case Float16:
		return arrow.FixedWidthTypes.Float16, nil
	case Float32:
		return arrow.PrimitiveTypes.Float32, nil
	case Float64:
		return arrow.PrimitiveTypes.Float64, nil
	case String:
		return arrow.BinaryTypes.String, nil
	case Binary:
		return arrow.BinaryTypes.Binary, nil
	case FixedLenByteArray:
		if n.Length <= 0 {
			return nil, perr.Schema(component, "ToArrow", path, fmt.Errorf("FixedLenByteArray requires length > 0"))
		}
		return &arrow.FixedSizeBinaryType{ByteWidth: int(n.Length)}, nil
	case Date32:
		return arrow.FixedWidthTypes.Date32, nil
	case Date64:
		return arrow.FixedWidthTypes.Date64, nil
	case TimeMillis:
		return arrow.FixedWidthTypes.Time32ms, nil
	case TimeMicros:
		return arrow.FixedWidthTypes.Time64us, nil
	case TimestampSecond, TimestampMillis, TimestampMicros, TimestampNanos:
		return timestampToArrow(n), nil
	case Decimal128:
		return &arrow.Decimal128Type{Precision: n.Prec, Scale: n.Scale}, nil
	case Decimal256:
		return &arrow.Decimal256Type{Precision: n.Prec, Scale: n.Scale}, nil
	default:
		return nil, perr.Schema(component, "ToArrow", path, fmt.Errorf("unknown primitive %d", n.Prim))
	}
}

func timestampToArrow(n *Node) arrow.DataType {
	unit := timestampUnit(n.Prim)
	tz := ""
	if n.Tz != "" {
		tz = utcTimezone
	}
	return &arrow.TimestampType{Unit: unit, TimeZone: tz}
}

func timestampUnit(p Primitive) arrow.TimeUnit {
	switch p {
	case TimestampSecond:
		return arrow.Second
	case TimestampMillis:
		return arrow.Millisecond
	case TimestampMicros:
		return arrow.Microsecond
	case TimestampNanos:
		return arrow.Nanosecond
	default:
		return arrow.Microsecond
	}
}

// FromArrow converts an Arrow schema back into a Schema, rejecting
// types this engine does not support: dictionary-encoded columns,
// unions, run-end encoding, any other type without a case below, and
// Date64 unless allowDate64 is set (see Open Question in DESIGN.md).
// Nanosecond timestamps are accepted and map to TimestampNanos.
func FromArrow(as *arrow.Schema, allowDate64 bool) (*Schema, error) {
	fields := make([]*Node, as.NumFields())
	for i, f := range as.Fields() {
		n, err := arrowFieldToNode(f, f.Name, allowDate64)
		if err != nil {
			return nil, err
		}
		fields[i] = n
	}
	root := &Node{Shape: ShapeStruct, Fields: fields}
	return New(root)
}

func arrowFieldToNode(f arrow.Field, path string, allowDate64 bool) (*Node, error) {
	n, err := arrowTypeToNode(f.Type, f.Name, path, allowDate64)
	if err != nil {
		return nil, err
	}
	n.Nullable = f.Nullable
	if idx := f.Metadata.FindKey(formatMetadataKey); idx >= 0 {
		n.Format = f.Metadata.Values()[idx]
	}
	return n, nil
}

func arrowTypeToNode(dt arrow.DataType, name, path string, allowDate64 bool) (*Node, error) {
	switch t := dt.(type) {
	case *arrow.BooleanType:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Boolean}, nil
	case *arrow.Int8Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Int8}, nil
	case *arrow.Int16Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Int16}, nil
	case *arrow.Int32Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Int32}, nil
	case *arrow.Int64Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Int64}, nil
	case *arrow.Uint8Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Uint8}, nil
	case *arrow.Uint16Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Uint16}, nil
	case *arrow.Uint32Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Uint32}, nil
	case *arrow.Uint64Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Uint64}, nil
	case *arrow.Float16Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Float16}, nil
	case *arrow.Float32Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Float32}, nil
	case *arrow.Float64Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Float64}, nil
	case *arrow.StringType:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: String}, nil
	case *arrow.BinaryType:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Binary}, nil
	case *arrow.FixedSizeBinaryType:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: FixedLenByteArray, Length: int32(t.ByteWidth)}, nil
	case *arrow.Date32Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Date32}, nil
	case *arrow.Date64Type:
		if !allowDate64 {
			return nil, perr.Schema(component, "FromArrow", path, fmt.Errorf("Date64 rejected without explicit opt-in"))
		}
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Date64}, nil
	case *arrow.Time32Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: TimeMillis}, nil
	case *arrow.Time64Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: TimeMicros}, nil
	case *arrow.TimestampType:
		return timestampToNode(t, name, path)
	case *arrow.Decimal128Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Decimal128, Prec: t.Precision, Scale: t.Scale}, nil
	case *arrow.Decimal256Type:
		return &Node{Name: name, Shape: ShapePrimitive, Prim: Decimal256, Prec: t.Precision, Scale: t.Scale}, nil
	case *arrow.ListType:
		item, err := arrowFieldToNode(t.ElemField(), path+".item", allowDate64)
		if err != nil {
			return nil, err
		}
		return &Node{Name: name, Shape: ShapeList, Item: item}, nil
	case *arrow.MapType:
		return mapTypeToNode(t, name, path, allowDate64)
	case *arrow.StructType:
		fields := make([]*Node, t.NumFields())
		for i, f := range t.Fields() {
			fn, err := arrowFieldToNode(f, path+"."+f.Name, allowDate64)
			if err != nil {
				return nil, err
			}
			fields[i] = fn
		}
		return &Node{Name: name, Shape: ShapeStruct, Fields: fields}, nil
	default:
		return nil, perr.Schema(component, "FromArrow", path, fmt.Errorf("unsupported Arrow type %s", dt))
	}
}

func timestampToNode(t *arrow.TimestampType, name, path string) (*Node, error) {
	var prim Primitive
	switch t.Unit {
	case arrow.Second:
		prim = TimestampSecond
	case arrow.Millisecond:
		prim = TimestampMillis
	case arrow.Microsecond:
		prim = TimestampMicros
	case arrow.Nanosecond:
		prim = TimestampNanos
	default:
		return nil, perr.Schema(component, "FromArrow", path, fmt.Errorf("unknown timestamp unit %v", t.Unit))
	}
	tz := ""
	if t.TimeZone != "" {
		tz = utcTimezone
	}
	return &Node{Name: name, Shape: ShapePrimitive, Prim: prim, Tz: tz}, nil
}

func mapTypeToNode(t *arrow.MapType, name, path string, allowDate64 bool) (*Node, error) {
	entries, ok := t.ElemField().Type.(*arrow.StructType)
	if !ok || entries.NumFields() != 2 {
		return nil, perr.Schema(component, "FromArrow", path, fmt.Errorf("map entries struct must have exactly 2 fields"))
	}
	key, err := arrowFieldToNode(entries.Field(0), path+".key", allowDate64)
	if err != nil {
		return nil, err
	}
	val, err := arrowFieldToNode(entries.Field(1), path+".value", allowDate64)
	if err != nil {
		return nil, err
	}
	return &Node{Name: name, Shape: ShapeMap, Key: key, Value: val}, nil
}
