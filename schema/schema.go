// Package schema implements the schema tree (component C2) and the
// Schema<->Arrow mapper (component C3): a SchemaNode tree describing
// Primitive/List/Map/Struct shapes with nullability and format hints,
// and total conversion functions to and from an Arrow schema.
package schema

import (
	"errors"

	"github.com/johanan/pval/perr"
)

const component = "schema"

// Primitive enumerates the leaf primitive kinds a SchemaNode can carry.
// It mirrors value.Kind's primitive subset plus the parametric types
// that only exist at the schema level (FixedLenByteArray, the two
// decimal widths, and the four timestamp resolutions).
type Primitive uint8

const (
	Boolean Primitive = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float16
	Float32
	Float64
	String
	Binary
	FixedLenByteArray
	Date32
	Date64
	TimeMillis
	TimeMicros
	TimestampSecond
	TimestampMillis
	TimestampMicros
	TimestampNanos
	Decimal128
	Decimal256
)

// Shape distinguishes the four SchemaNode alternatives.
type Shape uint8

const (
	ShapePrimitive Shape = iota
	ShapeList
	ShapeMap
	ShapeStruct
)

// Node is one SchemaNode: a Primitive, List, Map, or Struct per §3.2.
// Only the fields relevant to Shape are populated; the rest are zero.
type Node struct {
	Name     string
	Nullable bool
	Shape    Shape

	// Primitive
	Prim   Primitive
	Length int32 // FixedLenByteArray(n)
	Prec   int32 // Decimal128/256(p, s)
	Scale  int32
	Tz     string // TimestampX(tz?); "" means no timezone
	Format string // display hint, no effect on binary encoding

	// List
	Item *Node

	// Map
	Key   *Node
	Value *Node

	// Struct
	Fields []*Node
}

// Schema is a named, immutable tree rooted at a Struct node whose
// fields are non-empty and whose top-level names are unique. Schema is
// built once per writer/reader session (§3.3) and never mutated.
type Schema struct {
	Root     *Node
	interner *Interner
}

// New validates root and builds a Schema, interning every field name
// reachable from it (§9 "Ownership of shared strings").
func New(root *Node) (*Schema, error) {
	if root == nil || root.Shape != ShapeStruct {
		return nil, perr.Schema(component, "New", "", errors.New("schema root must be a non-nil Struct"))
	}
	in := NewInterner()
	if err := validateStruct(root, "", in, true); err != nil {
		return nil, err
	}
	return &Schema{Root: root, interner: in}, nil
}

// Intern returns the shared handle for name from the schema's interner;
// the reader uses it to key hash-mode rows (§9).
func (s *Schema) Intern(name string) string { return s.interner.Intern(name) }

func validateStruct(n *Node, path string, in *Interner, isRoot bool) error {
	if len(n.Fields) == 0 {
		return perr.Schema(component, "validate", path, errors.New("struct has no fields (empty structs are rejected)"))
	}
	seen := make(map[string]struct{}, len(n.Fields))
	for _, f := range n.Fields {
		in.Intern(f.Name)
		if isRoot {
			if _, dup := seen[f.Name]; dup {
				return perr.Schema(component, "validate", path+"."+f.Name, errors.New("duplicate top-level field name"))
			}
			seen[f.Name] = struct{}{}
		}
		if err := validateNode(f, path+"."+f.Name, in); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(n *Node, path string, in *Interner) error {
	in.Intern(n.Name)
	switch n.Shape {
	case ShapeStruct:
		return validateStruct(n, path, in, false)
	case ShapeList:
		if n.Item == nil {
			return perr.Schema(component, "validate", path, errors.New("list node missing item"))
		}
		in.Intern("item")
		return validateNode(n.Item, path+".item", in)
	case ShapeMap:
		if n.Key == nil || n.Value == nil {
			return perr.Schema(component, "validate", path, errors.New("map node missing key or value"))
		}
		if n.Key.Nullable {
			return perr.Schema(component, "validate", path, errors.New("map key must be non-nullable"))
		}
		in.Intern("entries")
		in.Intern("key")
		in.Intern("value")
		if err := validateNode(n.Key, path+".key", in); err != nil {
			return err
		}
		return validateNode(n.Value, path+".value", in)
	default:
		return nil
	}
}
