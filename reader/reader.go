// Package reader implements the Row/Column Reader Driver (component
// C8): iterating a wrapped Parquet decoder's Arrow record batches and
// exposing them as row-wise or column-wise PValue results, with
// optional schema-order column projection.
package reader

import (
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/johanan/pval/arrowconv"
	"github.com/johanan/pval/perr"
	"github.com/johanan/pval/schema"
)

const component = "reader"

// Config controls reader construction. AllowDate64 opts into the
// Date64 decode path that schema.FromArrow otherwise rejects (see
// DESIGN.md's Open Question decision).
type Config struct {
	Strict      bool `yaml:"strict" json:"strict"`
	AllowDate64 bool `yaml:"allow_date64" json:"allow_date64"`
}

// Reader wraps a Parquet file's Arrow record-batch stream. Not safe
// for concurrent use (§5).
type Reader struct {
	cfg     Config
	schema  *schema.Schema
	arrow   *arrow.Schema
	decoder arrowconv.Decoder

	pf *file.Reader
	fr *pqarrow.FileReader

	fields []*schema.Node
}

// Open constructs a Reader over a Parquet file read through ra.
func Open(ra io.ReaderAt, cfg Config) (*Reader, error) {
	pf, err := file.NewParquetReader(ra)
	if err != nil {
		return nil, perr.ParquetFormat(component, "Open", err)
	}

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, perr.ParquetFormat(component, "Open", err)
	}

	as, err := fr.Schema()
	if err != nil {
		return nil, perr.ParquetFormat(component, "Open", err)
	}

	sc, err := schema.FromArrow(as, cfg.AllowDate64)
	if err != nil {
		return nil, err
	}

	return &Reader{
		cfg:     cfg,
		schema:  sc,
		arrow:   as,
		decoder: arrowconv.Decoder{Strict: cfg.Strict},
		pf:      pf,
		fr:      fr,
		fields:  sc.Root.Fields,
	}, nil
}

// Schema returns the Schema recovered from the Parquet file's Arrow
// schema, materialized whether or not the file has any rows (§4.6
// "Empty files... yield zero batches; the caller must still receive
// the schema").
func (r *Reader) Schema() *schema.Schema { return r.schema }

// Close releases the underlying Parquet file.
func (r *Reader) Close() error {
	if err := r.pf.Close(); err != nil {
		return perr.IO(component, "Close", err)
	}
	return nil
}

// projectionIndices resolves names to field indices in schema order,
// skipping names not present in the file (§4.6, supplemented by the
// Rust column_projection.rs edge case).
func (r *Reader) projectionIndices(names []string) []int {
	if names == nil {
		idx := make([]int, len(r.fields))
		for i := range r.fields {
			idx[i] = i
		}
		return idx
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	idx := make([]int, 0, len(names))
	for i, f := range r.fields {
		if _, ok := want[f.Name]; ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// recordReader opens a batch cursor projected to colIndices (in
// schema order), spanning every row group (rowGroups == nil means
// all).
func (r *Reader) recordReader(ctx context.Context, colIndices []int) (pqarrow.RecordReader, error) {
	rr, err := r.fr.GetRecordReader(ctx, colIndices, nil)
	if err != nil {
		return nil, perr.ParquetFormat(component, "recordReader", err)
	}
	return rr, nil
}

func fieldsForIndices(fields []*schema.Node, idx []int) []*schema.Node {
	out := make([]*schema.Node, len(idx))
	for i, fi := range idx {
		out[i] = fields[fi]
	}
	return out
}
