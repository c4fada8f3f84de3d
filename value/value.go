// Package value implements PValue, the tagged-variant value model
// bridged to Arrow/Parquet by the arrowconv package.
//
// PValue is a struct rather than an interface: List/Map/Record payloads
// hold slices, which are not comparable in Go, so a plain sum-of-types
// interface could not support a usable Equal/Hash pair. Equal and Hash
// below give PValue a total equality without requiring the Go
// compiler's built-in ==. PValue defines no ordering.
package value

import (
	"hash/fnv"
	"math"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/decimal256"
)

// Kind tags the active alternative of a PValue.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat16
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindDate32
	KindDate64
	KindTimeMillis
	KindTimeMicros
	KindTimestampSecond
	KindTimestampMillis
	KindTimestampMicros
	KindTimestampNanos
	KindDecimal128
	KindDecimal256
	KindList
	KindMap
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindUint8:
		return "UInt8"
	case KindUint16:
		return "UInt16"
	case KindUint32:
		return "UInt32"
	case KindUint64:
		return "UInt64"
	case KindFloat16:
		return "Float16"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindDate32:
		return "Date32"
	case KindDate64:
		return "Date64"
	case KindTimeMillis:
		return "TimeMillis"
	case KindTimeMicros:
		return "TimeMicros"
	case KindTimestampSecond:
		return "TimestampSecond"
	case KindTimestampMillis:
		return "TimestampMillis"
	case KindTimestampMicros:
		return "TimestampMicros"
	case KindTimestampNanos:
		return "TimestampNanos"
	case KindDecimal128:
		return "Decimal128"
	case KindDecimal256:
		return "Decimal256"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindRecord:
		return "Record"
	default:
		return "Unknown"
	}
}

// MapEntry is one (key, value) pair of a Map PValue, in storage order.
type MapEntry struct {
	Key   PValue
	Value PValue
}

// PValue is the tagged-variant value. The zero value is Null.
type PValue struct {
	kind Kind

	i64  int64
	u64  uint64
	f64  float64
	bits uint16 // Float16 raw bit pattern (hash/equality discriminant)

	str string
	byt []byte
	tz  string

	dec128 decimal128.Num
	dec256 decimal256.Num
	scale  int8

	items   []PValue
	entries []MapEntry
	record  *Record
}

// Null is the shared Null value.
var Null = PValue{kind: KindNull}

func Boolean(v bool) PValue {
	var i int64
	if v {
		i = 1
	}
	return PValue{kind: KindBoolean, i64: i}
}

func Int8(v int8) PValue   { return PValue{kind: KindInt8, i64: int64(v)} }
func Int16(v int16) PValue { return PValue{kind: KindInt16, i64: int64(v)} }
func Int32(v int32) PValue { return PValue{kind: KindInt32, i64: int64(v)} }
func Int64(v int64) PValue { return PValue{kind: KindInt64, i64: v} }

func Uint8(v uint8) PValue   { return PValue{kind: KindUint8, u64: uint64(v)} }
func Uint16(v uint16) PValue { return PValue{kind: KindUint16, u64: uint64(v)} }
func Uint32(v uint32) PValue { return PValue{kind: KindUint32, u64: uint64(v)} }
func Uint64(v uint64) PValue { return PValue{kind: KindUint64, u64: v} }

// Float16 stores a raw IEEE-754 half-precision bit pattern. Use
// arrow/float16 to convert to/from float32 at call sites.
func Float16(bits uint16) PValue { return PValue{kind: KindFloat16, bits: bits} }

func Float32(v float32) PValue { return PValue{kind: KindFloat32, f64: float64(v)} }
func Float64(v float64) PValue { return PValue{kind: KindFloat64, f64: v} }

func String(v string) PValue { return PValue{kind: KindString, str: v} }
func Bytes(v []byte) PValue  { return PValue{kind: KindBytes, byt: v} }

func Date32(days int32) PValue { return PValue{kind: KindDate32, i64: int64(days)} }
func Date64(ms int64) PValue   { return PValue{kind: KindDate64, i64: ms} }

func TimeMillis(ms int32) PValue { return PValue{kind: KindTimeMillis, i64: int64(ms)} }
func TimeMicros(us int64) PValue { return PValue{kind: KindTimeMicros, i64: us} }

func TimestampSecond(v int64, tz string) PValue {
	return PValue{kind: KindTimestampSecond, i64: v, tz: tz}
}
func TimestampMillis(v int64, tz string) PValue {
	return PValue{kind: KindTimestampMillis, i64: v, tz: tz}
}
func TimestampMicros(v int64, tz string) PValue {
	return PValue{kind: KindTimestampMicros, i64: v, tz: tz}
}
func TimestampNanos(v int64, tz string) PValue {
	return PValue{kind: KindTimestampNanos, i64: v, tz: tz}
}

func Decimal128Value(unscaled decimal128.Num, scale int8) PValue {
	return PValue{kind: KindDecimal128, dec128: unscaled, scale: scale}
}

func Decimal256Value(unscaled decimal256.Num, scale int8) PValue {
	return PValue{kind: KindDecimal256, dec256: unscaled, scale: scale}
}

// List builds a List PValue. A nil slice is a non-null, zero-length
// list; use Null for a Null list.
func List(items []PValue) PValue { return PValue{kind: KindList, items: items} }

// Map builds a Map PValue from ordered (key, value) entries.
func Map(entries []MapEntry) PValue { return PValue{kind: KindMap, entries: entries} }

// RecordValue wraps a *Record as a Struct-kind PValue.
func RecordValue(r *Record) PValue { return PValue{kind: KindRecord, record: r} }

func (v PValue) Kind() Kind  { return v.kind }
func (v PValue) IsNull() bool { return v.kind == KindNull }

func (v PValue) AsBool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.i64 != 0, true
}

// AsInt64 returns the value for any signed-integer kind (Int8..Int64,
// Date32/64, TimeMillis/Micros, TimestampX), sign-extended.
func (v PValue) AsInt64() (int64, bool) {
	switch v.kind {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindDate32, KindDate64, KindTimeMillis, KindTimeMicros,
		KindTimestampSecond, KindTimestampMillis, KindTimestampMicros, KindTimestampNanos:
		return v.i64, true
	default:
		return 0, false
	}
}

func (v PValue) AsUint64() (uint64, bool) {
	switch v.kind {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return v.u64, true
	default:
		return 0, false
	}
}

func (v PValue) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindFloat32, KindFloat64:
		return v.f64, true
	default:
		return 0, false
	}
}

// AsFloat16Bits returns the raw half-precision bit pattern.
func (v PValue) AsFloat16Bits() (uint16, bool) {
	if v.kind != KindFloat16 {
		return 0, false
	}
	return v.bits, true
}

func (v PValue) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v PValue) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return v.byt, true
}

// Timezone returns the carried timezone identifier for a TimestampX
// value; "" means no timezone (naive instant).
func (v PValue) Timezone() string { return v.tz }

func (v PValue) AsDecimal128() (decimal128.Num, int8, bool) {
	if v.kind != KindDecimal128 {
		return decimal128.Num{}, 0, false
	}
	return v.dec128, v.scale, true
}

func (v PValue) AsDecimal256() (decimal256.Num, int8, bool) {
	if v.kind != KindDecimal256 {
		return decimal256.Num{}, 0, false
	}
	return v.dec256, v.scale, true
}

func (v PValue) AsList() ([]PValue, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.items, true
}

func (v PValue) AsMap() ([]MapEntry, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.entries, true
}

func (v PValue) AsRecord() (*Record, bool) {
	if v.kind != KindRecord {
		return nil, false
	}
	return v.record, true
}

// Equal reports whether two PValues denote the same value. Floats
// compare by IEEE-754 bit pattern (so NaN equals NaN and +0 does not
// equal -0), matching the hashing rule required for PValue's use as a
// map key. Decimal128/Decimal256 compare by mathematical value across
// differing scales (and across width), never by (unscaled, scale)
// identity.
func Equal(a, b PValue) bool {
	if a.kind != b.kind {
		if isDecimalKind(a.kind) && isDecimalKind(b.kind) {
			return decimalEqual(a, b)
		}
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBoolean, KindInt8, KindInt16, KindInt32, KindInt64,
		KindDate32, KindDate64, KindTimeMillis, KindTimeMicros:
		return a.i64 == b.i64
	case KindTimestampSecond, KindTimestampMillis, KindTimestampMicros, KindTimestampNanos:
		// §3.1: timestamp equality compares only the integer count.
		return a.i64 == b.i64
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return a.u64 == b.u64
	case KindFloat16:
		return a.bits == b.bits
	case KindFloat32:
		return math.Float32bits(float32(a.f64)) == math.Float32bits(float32(b.f64))
	case KindFloat64:
		return math.Float64bits(a.f64) == math.Float64bits(b.f64)
	case KindString:
		return a.str == b.str
	case KindBytes:
		return bytesEqual(a.byt, b.byt)
	case KindDecimal128, KindDecimal256:
		return decimalEqual(a, b)
	case KindList:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.entries) != len(b.entries) {
			return false
		}
		for i := range a.entries {
			if !Equal(a.entries[i].Key, b.entries[i].Key) || !Equal(a.entries[i].Value, b.entries[i].Value) {
				return false
			}
		}
		return true
	case KindRecord:
		return recordEqual(a.record, b.record)
	default:
		return false
	}
}

func isDecimalKind(k Kind) bool { return k == KindDecimal128 || k == KindDecimal256 }

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func recordEqual(a, b *Record) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Names) != len(b.Names) {
		return false
	}
	for i := range a.Names {
		if a.Names[i] != b.Names[i] {
			return false
		}
		if !Equal(a.Values[i], b.Values[i]) {
			return false
		}
	}
	return true
}

// Hash returns a hash of v consistent with Equal: equal values hash
// equally. Floats hash by bit pattern; decimals canonicalize to their
// minimal representable scale before hashing so that e.g. 1.20 and
// 1.2000 collide.
func Hash(v PValue) uint64 {
	h := fnv.New64a()
	hashInto(h, v)
	return h.Sum64()
}

func hashInto(h interface{ Write([]byte) (int, error) }, v PValue) {
	var buf [9]byte
	buf[0] = byte(v.kind)
	write := func(b []byte) { h.Write(b) }

	switch v.kind {
	case KindNull:
		write(buf[:1])
	case KindBoolean, KindInt8, KindInt16, KindInt32, KindInt64,
		KindDate32, KindDate64, KindTimeMillis, KindTimeMicros,
		KindTimestampSecond, KindTimestampMillis, KindTimestampMicros, KindTimestampNanos:
		putU64(buf[1:9], uint64(v.i64))
		write(buf[:9])
	case KindUint8, KindUint16, KindUint32, KindUint64:
		putU64(buf[1:9], v.u64)
		write(buf[:9])
	case KindFloat16:
		putU64(buf[1:9], uint64(v.bits))
		write(buf[:9])
	case KindFloat32:
		putU64(buf[1:9], uint64(math.Float32bits(float32(v.f64))))
		write(buf[:9])
	case KindFloat64:
		putU64(buf[1:9], math.Float64bits(v.f64))
		write(buf[:9])
	case KindString:
		write(buf[:1])
		write([]byte(v.str))
	case KindBytes:
		write(buf[:1])
		write(v.byt)
	case KindDecimal128, KindDecimal256:
		sign, mag, scale := canonicalDecimal(v)
		write([]byte{byte(KindDecimal128), byte(sign), byte(scale)})
		write(mag)
	case KindList:
		write(buf[:1])
		for _, item := range v.items {
			hashInto(h, item)
		}
	case KindMap:
		write(buf[:1])
		for _, e := range v.entries {
			hashInto(h, e.Key)
			hashInto(h, e.Value)
		}
	case KindRecord:
		write(buf[:1])
		if v.record != nil {
			for i, name := range v.record.Names {
				write([]byte(name))
				hashInto(h, v.record.Values[i])
			}
		}
	}
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}
