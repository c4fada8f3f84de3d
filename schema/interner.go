package schema

import "sync"

// Interner is a per-Schema string table. schema.New registers every
// field name reachable from the root here, and the reader keys
// hash-mode rows by the handles Intern returns (§9 "Ownership of
// shared strings"). The arrowconv decoder does not consult it: decoded
// value.Record field names come from the Arrow struct type.
type Interner struct {
	mu    sync.Mutex
	table map[string]string
}

// NewInterner builds an empty Interner.
func NewInterner() *Interner {
	return &Interner{table: make(map[string]string)}
}

// Intern returns the shared handle for s, registering it on first use.
func (in *Interner) Intern(s string) string {
	in.mu.Lock()
	defer in.mu.Unlock()
	if existing, ok := in.table[s]; ok {
		return existing
	}
	in.table[s] = s
	return s
}
