// Package perr defines the error taxonomy surfaced at the boundary of
// the value/schema/decimal/arrowconv/writer/reader packages.
//
// Each kind is a sentinel so callers can test with errors.Is; every
// raise site wraps the sentinel in an *E (see Wrap), whose Unwrap
// returns the sentinel, so the error still carries component,
// operation and path context.
package perr

import "errors"

var (
	// ErrSchema is returned for structural validation failures: arity
	// mismatch, null in a non-nullable field, duplicate field name, an
	// empty struct, or an unsupported schema/Arrow type mapping.
	ErrSchema = errors.New("schema error")

	// ErrConversion is returned when a value's shape does not match
	// the kind a field declares.
	ErrConversion = errors.New("conversion error")

	// ErrOutOfRange is returned for numeric widening/narrowing
	// overflow, decimal overflow, or a FixedSizeBinary length
	// mismatch.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidUTF8 is returned by strict-mode UTF-8 validation.
	ErrInvalidUTF8 = errors.New("invalid utf-8")

	// ErrParquetFormat is returned when the wrapped Parquet
	// encoder/decoder rejects a batch.
	ErrParquetFormat = errors.New("parquet format error")

	// ErrIO is returned when the underlying byte sink/source fails.
	ErrIO = errors.New("io error")

	// ErrWriterClosed is returned by any writer operation issued after
	// Close or after a terminal encoder/IO error.
	ErrWriterClosed = errors.New("writer closed")
)

// E wraps one of the sentinels above with component/operation/path
// context. path may be empty for non-structural errors.
type E struct {
	Kind      error
	Component string
	Op        string
	Path      string
	Err       error
}

func (e *E) Error() string {
	msg := e.Component + ": " + e.Op + ": " + e.Kind.Error()
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *E) Unwrap() error { return e.Kind }

// Wrap constructs an *E. err may be nil.
func Wrap(kind error, component, op, path string, err error) *E {
	return &E{Kind: kind, Component: component, Op: op, Path: path, Err: err}
}

// Schema builds an ErrSchema-kind error.
func Schema(component, op, path string, err error) error {
	return Wrap(ErrSchema, component, op, path, err)
}

// Conversion builds an ErrConversion-kind error.
func Conversion(component, op, path string, err error) error {
	return Wrap(ErrConversion, component, op, path, err)
}

// OutOfRange builds an ErrOutOfRange-kind error.
func OutOfRange(component, op, path string, err error) error {
	return Wrap(ErrOutOfRange, component, op, path, err)
}

// InvalidUTF8 builds an ErrInvalidUTF8-kind error.
func InvalidUTF8(component, op, path string, err error) error {
	return Wrap(ErrInvalidUTF8, component, op, path, err)
}

// ParquetFormat builds an ErrParquetFormat-kind error.
func ParquetFormat(component, op string, err error) error {
	return Wrap(ErrParquetFormat, component, op, "", err)
}

// IO builds an ErrIO-kind error.
func IO(component, op string, err error) error {
	return Wrap(ErrIO, component, op, "", err)
}

// Closed builds an ErrWriterClosed-kind error.
func Closed(component, op string) error {
	return Wrap(ErrWriterClosed, component, op, "", nil)
}
