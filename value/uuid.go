package value

import "github.com/google/uuid"

// UUIDBytes builds a Bytes PValue holding the 16-byte representation
// of u, for use against a FixedLenByteArray(16) schema field — the
// common concrete use of FixedSizeBinary columns.
func UUIDBytes(u uuid.UUID) PValue {
	b := make([]byte, 16)
	copy(b, u[:])
	return Bytes(b)
}

// AsUUID interprets a Bytes PValue as a 16-byte UUID.
func AsUUID(v PValue) (uuid.UUID, bool) {
	b, ok := v.AsBytes()
	if !ok || len(b) != 16 {
		return uuid.UUID{}, false
	}
	var u uuid.UUID
	copy(u[:], b)
	return u, true
}
