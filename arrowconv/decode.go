// Package arrowconv implements the two halves of the value-model
// bridge: decoding Arrow arrays into PValue (component C5) and
// encoding PValue slices into Arrow arrays (component C6).
package arrowconv

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/johanan/pval/perr"
	"github.com/johanan/pval/value"
)

const component = "arrowconv"

// Decoder turns Arrow arrays into PValue. Strict controls String
// decoding: in strict mode invalid UTF-8 fails with perr.ErrInvalidUTF8;
// in lossy mode invalid bytes are replaced (§3.1).
type Decoder struct {
	Strict bool
}

// DecodeColumn maps DecodeScalar over every index of arr.
func (d Decoder) DecodeColumn(arr arrow.Array, path string) ([]value.PValue, error) {
	out := make([]value.PValue, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		v, err := d.DecodeScalar(arr, i, path)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// DecodeScalar extracts the value at index i of arr. Returns value.Null
// if the validity bit at i is cleared.
func (d Decoder) DecodeScalar(arr arrow.Array, i int, path string) (value.PValue, error) {
	if i < 0 || i >= arr.Len() {
		return value.Null, perr.Conversion(component, "DecodeScalar", path, fmt.Errorf("index %d out of range (len %d)", i, arr.Len()))
	}
	if arr.IsNull(i) {
		return value.Null, nil
	}

	switch a := arr.(type) {
	case *array.Boolean:
		return value.Boolean(a.Value(i)), nil
	case *array.Int8:
		return value.Int8(a.Value(i)), nil
	case *array.Int16:
		return value.Int16(a.Value(i)), nil
	case *array.Int32:
		return value.Int32(a.Value(i)), nil
	case *array.Int64:
		return value.Int64(a.Value(i)), nil
	case *array.Uint8:
		return value.Uint8(a.Value(i)), nil
	case *array.Uint16:
		return value.Uint16(a.Value(i)), nil
	case *array.Uint32:
		return value.Uint32(a.Value(i)), nil
	case *array.Uint64:
		return value.Uint64(a.Value(i)), nil
	case *array.Float16:
		return value.Float16(a.Value(i).Uint16()), nil
	case *array.Float32:
		return value.Float32(a.Value(i)), nil
	case *array.Float64:
		return value.Float64(a.Value(i)), nil
	case *array.String:
		return d.decodeString(a.Value(i), path)
	case *array.Binary:
		return value.Bytes(copyBytes(a.Value(i))), nil
	case *array.FixedSizeBinary:
		return value.Bytes(copyBytes(a.Value(i))), nil
	case *array.Date32:
		return value.Date32(int32(a.Value(i))), nil
	case *array.Date64:
		return value.Date64(int64(a.Value(i))), nil
	case *array.Time32:
		return value.TimeMillis(int32(a.Value(i))), nil
	case *array.Time64:
		return value.TimeMicros(int64(a.Value(i))), nil
	case *array.Timestamp:
		return decodeTimestamp(a, i)
	case *array.Decimal128:
		dt := a.DataType().(*arrow.Decimal128Type)
		return value.Decimal128Value(a.Value(i), int8(dt.Scale)), nil
	case *array.Decimal256:
		dt := a.DataType().(*arrow.Decimal256Type)
		return value.Decimal256Value(a.Value(i), int8(dt.Scale)), nil
	case *array.List:
		return d.decodeList(a, i, path)
	case *array.Map:
		return d.decodeMap(a, i, path)
	case *array.Struct:
		return d.decodeStruct(a, i, path)
	default:
		return value.Null, perr.Conversion(component, "DecodeScalar", path, fmt.Errorf("unsupported array type %T", arr))
	}
}

func (d Decoder) decodeString(s, path string) (value.PValue, error) {
	if utf8.ValidString(s) {
		return value.String(s), nil
	}
	if d.Strict {
		return value.Null, perr.InvalidUTF8(component, "DecodeScalar", path, fmt.Errorf("invalid UTF-8 byte sequence"))
	}
	return value.String(strings.ToValidUTF8(s, "�")), nil
}

func decodeTimestamp(a *array.Timestamp, i int) (value.PValue, error) {
	tt := a.DataType().(*arrow.TimestampType)
	v := int64(a.Value(i))
	switch tt.Unit {
	case arrow.Second:
		return value.TimestampSecond(v, tt.TimeZone), nil
	case arrow.Millisecond:
		return value.TimestampMillis(v, tt.TimeZone), nil
	case arrow.Microsecond:
		return value.TimestampMicros(v, tt.TimeZone), nil
	case arrow.Nanosecond:
		return value.TimestampNanos(v, tt.TimeZone), nil
	default:
		return value.Null, perr.Conversion(component, "DecodeScalar", "", fmt.Errorf("unknown timestamp unit %v", tt.Unit))
	}
}

func (d Decoder) decodeList(a *array.List, i int, path string) (value.PValue, error) {
	offsets := a.Offsets()
	start, end := offsets[i], offsets[i+1]
	child := a.ListValues()
	items := make([]value.PValue, 0, end-start)
	for j := start; j < end; j++ {
		iv, err := d.DecodeScalar(child, int(j), path+"[]")
		if err != nil {
			return value.Null, err
		}
		items = append(items, iv)
	}
	return value.List(items), nil
}

func (d Decoder) decodeMap(a *array.Map, i int, path string) (value.PValue, error) {
	offsets := a.Offsets()
	start, end := offsets[i], offsets[i+1]
	keys := a.Keys()
	items := a.Items()
	entries := make([]value.MapEntry, 0, end-start)
	for j := start; j < end; j++ {
		k, err := d.DecodeScalar(keys, int(j), path+".key")
		if err != nil {
			return value.Null, err
		}
		v, err := d.DecodeScalar(items, int(j), path+".value")
		if err != nil {
			return value.Null, err
		}
		entries = append(entries, value.MapEntry{Key: k, Value: v})
	}
	return value.Map(entries), nil
}

func (d Decoder) decodeStruct(a *array.Struct, i int, path string) (value.PValue, error) {
	st := a.DataType().(*arrow.StructType)
	n := st.NumFields()
	names := make([]string, n)
	values := make([]value.PValue, n)
	for f := 0; f < n; f++ {
		names[f] = st.Field(f).Name
		fv, err := d.DecodeScalar(a.Field(f), i, path+"."+names[f])
		if err != nil {
			return value.Null, err
		}
		values[f] = fv
	}
	return value.RecordValue(value.NewRecord(names, values)), nil
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
