package arrowconv

import (
	"fmt"

	"github.com/johanan/pval/perr"
	"github.com/johanan/pval/schema"
	"github.com/johanan/pval/value"
)

// Widening is permitted from a smaller signed integer to a larger one,
// from a smaller unsigned integer to a larger one, and from a smaller
// float (including Float16) to a larger one. Narrowing,
// cross-signedness promotion, and int<->float coercion are all
// rejected (§4.4).

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

func intTargetRank(p schema.Primitive) (int, bool) {
	switch p {
	case schema.Int8:
		return 0, true
	case schema.Int16:
		return 1, true
	case schema.Int32:
		return 2, true
	case schema.Int64:
		return 3, true
	default:
		return 0, false
	}
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

func uintTargetRank(p schema.Primitive) (int, bool) {
	switch p {
	case schema.Uint8:
		return 0, true
	case schema.Uint16:
		return 1, true
	case schema.Uint32:
		return 2, true
	case schema.Uint64:
		return 3, true
	default:
		return 0, false
	}
}

func floatRank(k value.Kind) (int, bool) {
	switch k {
	case value.KindFloat16:
		return 0, true
	case value.KindFloat32:
		return 1, true
	case value.KindFloat64:
		return 2, true
	default:
		return 0, false
	}
}

func floatTargetRank(p schema.Primitive) (int, bool) {
	switch p {
	case schema.Float32:
		return 1, true
	case schema.Float64:
		return 2, true
	default:
		return 0, false
	}
}

// widenInt64 widens v (a signed-integer PValue) to the target
// primitive's int64 representation, or fails if v's kind is not an
// integer kind with rank <= the target's rank.
func widenInt64(v value.PValue, target schema.Primitive, path string) (int64, error) {
	srcRank, ok := intRank(v.Kind())
	if !ok {
		return 0, perr.Conversion(component, "encode", path, fmt.Errorf("expected signed integer, got %s", v.Kind()))
	}
	dstRank, ok := intTargetRank(target)
	if !ok {
		return 0, perr.Conversion(component, "encode", path, fmt.Errorf("field is not a signed integer"))
	}
	if srcRank > dstRank {
		return 0, perr.Conversion(component, "encode", path, fmt.Errorf("narrowing %s into a smaller integer field is not permitted", v.Kind()))
	}
	iv, _ := v.AsInt64()
	return iv, nil
}

// widenUint64 is the unsigned analogue of widenInt64.
func widenUint64(v value.PValue, target schema.Primitive, path string) (uint64, error) {
	srcRank, ok := uintRank(v.Kind())
	if !ok {
		return 0, perr.Conversion(component, "encode", path, fmt.Errorf("expected unsigned integer, got %s", v.Kind()))
	}
	dstRank, ok := uintTargetRank(target)
	if !ok {
		return 0, perr.Conversion(component, "encode", path, fmt.Errorf("field is not an unsigned integer"))
	}
	if srcRank > dstRank {
		return 0, perr.Conversion(component, "encode", path, fmt.Errorf("narrowing %s into a smaller unsigned integer field is not permitted", v.Kind()))
	}
	uv, _ := v.AsUint64()
	return uv, nil
}

// widenFloat64 widens a Float16/Float32/Float64 PValue to float64 for
// a Float32 or Float64 target field.
func widenFloat64(v value.PValue, target schema.Primitive, path string) (float64, error) {
	srcRank, ok := floatRank(v.Kind())
	if !ok {
		return 0, perr.Conversion(component, "encode", path, fmt.Errorf("expected float, got %s", v.Kind()))
	}
	dstRank, ok := floatTargetRank(target)
	if !ok {
		return 0, perr.Conversion(component, "encode", path, fmt.Errorf("field is not a float"))
	}
	if srcRank > dstRank {
		return 0, perr.Conversion(component, "encode", path, fmt.Errorf("narrowing %s into a smaller float field is not permitted", v.Kind()))
	}
	switch v.Kind() {
	case value.KindFloat16:
		bits, _ := v.AsFloat16Bits()
		return float64(float16FromBits(bits).Float32()), nil
	default:
		fv, _ := v.AsFloat64()
		return fv, nil
	}
}
