package arrowconv

import "github.com/apache/arrow-go/v18/arrow/float16"

// float16FromBits reconstructs a float16.Num from a raw bit pattern,
// isolated to one call site since value.PValue stores Float16 as raw
// bits rather than the arrow-go wrapper type.
func float16FromBits(bits uint16) float16.Num {
	return float16.NewFromBits(bits)
}
