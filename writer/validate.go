package writer

import (
	"fmt"

	"github.com/johanan/pval/perr"
	"github.com/johanan/pval/schema"
	"github.com/johanan/pval/value"
)

// validateRow walks row against fields without mutating it (§4.5):
// nullability at every level, primitive kind compatibility per the
// widening table, List/Map/Struct structural shape, FixedSizeBinary
// length.
func validateRow(fields []*schema.Node, row []value.PValue) error {
	if len(row) != len(fields) {
		return perr.Schema(component, "WriteRow", "", fmt.Errorf("row has %d values, schema has %d fields", len(row), len(fields)))
	}
	for i, f := range fields {
		if err := validateValue(f, row[i], f.Name); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(node *schema.Node, v value.PValue, path string) error {
	if v.IsNull() {
		if !node.Nullable {
			return perr.Schema(component, "WriteRow", path, fmt.Errorf("null value for non-nullable field %q", node.Name))
		}
		return nil
	}

	switch node.Shape {
	case schema.ShapeList:
		items, ok := v.AsList()
		if !ok {
			return kindMismatch(path, node, v)
		}
		for i, item := range items {
			if err := validateValue(node.Item, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil

	case schema.ShapeMap:
		entries, ok := v.AsMap()
		if !ok {
			return kindMismatch(path, node, v)
		}
		for _, e := range entries {
			if e.Key.IsNull() {
				return perr.Schema(component, "WriteRow", path+".key", fmt.Errorf("null map key"))
			}
			if err := validateValue(node.Key, e.Key, path+".key"); err != nil {
				return err
			}
			if err := validateValue(node.Value, e.Value, path+".value"); err != nil {
				return err
			}
		}
		return nil

	case schema.ShapeStruct:
		rec, ok := v.AsRecord()
		if !ok {
			return kindMismatch(path, node, v)
		}
		for _, f := range node.Fields {
			fv, present := rec.Get(f.Name)
			if !present {
				if !f.Nullable {
					return perr.Schema(component, "WriteRow", path+"."+f.Name, fmt.Errorf("missing required struct field %q", f.Name))
				}
				continue
			}
			if err := validateValue(f, fv, path+"."+f.Name); err != nil {
				return err
			}
		}
		return nil

	default:
		return validatePrimitive(node, v, path)
	}
}

func validatePrimitive(node *schema.Node, v value.PValue, path string) error {
	switch node.Prim {
	case schema.Boolean:
		if _, ok := v.AsBool(); !ok {
			return kindMismatch(path, node, v)
		}
	case schema.Int8, schema.Int16, schema.Int32, schema.Int64:
		if !intWidenable(v.Kind(), node.Prim) {
			return kindMismatch(path, node, v)
		}
	case schema.Uint8, schema.Uint16, schema.Uint32, schema.Uint64:
		if !uintWidenable(v.Kind(), node.Prim) {
			return kindMismatch(path, node, v)
		}
	case schema.Float32:
		if v.Kind() != value.KindFloat16 && v.Kind() != value.KindFloat32 {
			return kindMismatch(path, node, v)
		}
	case schema.Float64:
		if v.Kind() != value.KindFloat16 && v.Kind() != value.KindFloat32 && v.Kind() != value.KindFloat64 {
			return kindMismatch(path, node, v)
		}
	case schema.String:
		if _, ok := v.AsString(); !ok {
			return kindMismatch(path, node, v)
		}
	case schema.Binary:
		if _, ok := v.AsBytes(); !ok {
			return kindMismatch(path, node, v)
		}
	case schema.FixedLenByteArray:
		b, ok := v.AsBytes()
		if !ok {
			return kindMismatch(path, node, v)
		}
		if int32(len(b)) != node.Length {
			return perr.OutOfRange(component, "WriteRow", path, fmt.Errorf("fixed binary length %d does not match declared length %d", len(b), node.Length))
		}
	case schema.Date32:
		if v.Kind() != value.KindDate32 {
			return kindMismatch(path, node, v)
		}
	case schema.Date64:
		if v.Kind() != value.KindDate64 {
			return kindMismatch(path, node, v)
		}
	case schema.TimeMillis:
		if v.Kind() != value.KindTimeMillis {
			return kindMismatch(path, node, v)
		}
	case schema.TimeMicros:
		if v.Kind() != value.KindTimeMicros {
			return kindMismatch(path, node, v)
		}
	case schema.TimestampSecond, schema.TimestampMillis, schema.TimestampMicros, schema.TimestampNanos:
		if !isTimestampKind(v.Kind()) {
			return kindMismatch(path, node, v)
		}
	case schema.Decimal128:
		if _, _, ok := v.AsDecimal128(); !ok {
			return kindMismatch(path, node, v)
		}
	case schema.Decimal256:
		if _, _, ok := v.AsDecimal256(); !ok {
			return kindMismatch(path, node, v)
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

func kindMismatch(path string, node *schema.Node, v value.PValue) error {
	return perr.Conversion(component, "WriteRow", path, fmt.Errorf("field %q expected a value compatible with schema primitive %d, got %s", node.Name, node.Prim, v.Kind()))
}

func intRank(k value.Kind) (int, bool) {
	switch k {
	case value.KindInt8:
		return 0, true
	case value.KindInt16:
		return 1, true
	case value.KindInt32:
		return 2, true
	case value.KindInt64:
		return 3, true
	default:
		return 0, false
	}
}

func intTargetRank(p schema.Primitive) int {
	switch p {
	case schema.Int8:
		return 0
	case schema.Int16:
		return 1
	case schema.Int32:
		return 2
	default:
		return 3
	}
}

func intWidenable(k value.Kind, target schema.Primitive) bool {
	rank, ok := intRank(k)
	return ok && rank <= intTargetRank(target)
}

func uintRank(k value.Kind) (int, bool) {
	switch k {
	case value.KindUint8:
		return 0, true
	case value.KindUint16:
		return 1, true
	case value.KindUint32:
		return 2, true
	case value.KindUint64:
		return 3, true
	default:
		return 0, false
	}
}

func uintTargetRank(p schema.Primitive) int {
	switch p {
	case schema.Uint8:
		return 0
	case schema.Uint16:
		return 1
	case schema.Uint32:
		return 2
	default:
		return 3
	}
}

func uintWidenable(k value.Kind, target schema.Primitive) bool {
	rank, ok := uintRank(k)
	return ok && rank <= uintTargetRank(target)
}
