package reader

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/rs/zerolog/log"

	"github.com/johanan/pval/perr"
	"github.com/johanan/pval/schema"
	"github.com/johanan/pval/value"
)

// Row is one array-mode row: an ordered vector of PValue matching
// projected schema order.
type Row []value.PValue

// HashRow is one hash-mode row: field name -> PValue, keyed by the
// reader's interned field names.
type HashRow map[string]value.PValue

// RowIterator yields row-wise records from the wrapped record-batch
// stream, in array mode.
type RowIterator struct {
	r      *Reader
	rr     pqarrow.RecordReader
	fields []*schema.Node
	rows   []Row
	pos    int
	done   bool
}

// Rows opens a row-wise iterator projected to project (nil means every
// field, in schema order).
func (r *Reader) Rows(ctx context.Context, project []string) (*RowIterator, error) {
	idx := r.projectionIndices(project)
	rr, err := r.recordReader(ctx, idx)
	if err != nil {
		return nil, err
	}
	return &RowIterator{r: r, rr: rr, fields: fieldsForIndices(r.fields, idx)}, nil
}

// Close releases the iterator's underlying batch cursor.
func (it *RowIterator) Close() { it.rr.Release() }

// Next returns the next row, or ok=false once the stream is exhausted.
func (it *RowIterator) Next() (Row, bool, error) {
	for it.pos >= len(it.rows) {
		if it.done {
			return nil, false, nil
		}
		if !it.rr.Next() {
			it.done = true
			if err := it.rr.Err(); err != nil {
				return nil, false, perr.ParquetFormat(component, "Next", err)
			}
			return nil, false, nil
		}
		rec := it.rr.Record()
		rows, err := it.decodeBatch(rec)
		rec.Release()
		if err != nil {
			log.Debug().Err(err).Str("component", component).Msg("row batch decode failed")
			return nil, false, err
		}
		it.rows = rows
		it.pos = 0
	}
	row := it.rows[it.pos]
	it.pos++
	return row, true, nil
}

// decodeBatch decodes every projected column of rec, then transposes
// the column-wise PValue slices into row-wise vectors.
func (it *RowIterator) decodeBatch(rec arrow.Record) ([]Row, error) {
	n := int(rec.NumRows())
	cols := make([][]value.PValue, len(it.fields))
	for c, f := range it.fields {
		vals, err := it.r.decoder.DecodeColumn(rec.Column(c), f.Name)
		if err != nil {
			return nil, err
		}
		cols[c] = vals
	}

	rows := make([]Row, n)
	for i := 0; i < n; i++ {
		row := make(Row, len(cols))
		for c := range cols {
			row[c] = cols[c][i]
		}
		rows[i] = row
	}
	return rows, nil
}

// HashRows wraps Rows, converting each Row into a HashRow keyed by the
// reader's interned field names.
func (r *Reader) HashRows(ctx context.Context, project []string) (*HashRowIterator, error) {
	ri, err := r.Rows(ctx, project)
	if err != nil {
		return nil, err
	}
	return &HashRowIterator{ri: ri}, nil
}

// HashRowIterator adapts a RowIterator into hash-mode records.
type HashRowIterator struct{ ri *RowIterator }

// Close releases the iterator's underlying batch cursor.
func (it *HashRowIterator) Close() { it.ri.Close() }

// Next returns the next row as a HashRow, or ok=false once exhausted.
func (it *HashRowIterator) Next() (HashRow, bool, error) {
	row, ok, err := it.ri.Next()
	if err != nil || !ok {
		return nil, ok, err
	}
	out := make(HashRow, len(row))
	for i, f := range it.ri.fields {
		out[it.ri.r.schema.Intern(f.Name)] = row[i]
	}
	return out, true, nil
}

// Column is one projected column's decoded values, one batch's worth.
type Column struct {
	Name   string
	Values []value.PValue
}

// ColumnIterator yields one batch's worth of columns at a time.
type ColumnIterator struct {
	r      *Reader
	rr     pqarrow.RecordReader
	fields []*schema.Node
}

// Columns opens a column-wise iterator projected to project (nil means
// every field, in schema order).
func (r *Reader) Columns(ctx context.Context, project []string) (*ColumnIterator, error) {
	idx := r.projectionIndices(project)
	rr, err := r.recordReader(ctx, idx)
	if err != nil {
		return nil, err
	}
	return &ColumnIterator{r: r, rr: rr, fields: fieldsForIndices(r.fields, idx)}, nil
}

// Close releases the iterator's underlying batch cursor.
func (it *ColumnIterator) Close() { it.rr.Release() }

// Next returns the next batch's columns, or ok=false once exhausted.
func (it *ColumnIterator) Next() ([]Column, bool, error) {
	if !it.rr.Next() {
		if err := it.rr.Err(); err != nil {
			return nil, false, perr.ParquetFormat(component, "Next", err)
		}
		return nil, false, nil
	}
	rec := it.rr.Record()
	defer rec.Release()

	out := make([]Column, len(it.fields))
	for c, f := range it.fields {
		vals, err := it.r.decoder.DecodeColumn(rec.Column(c), f.Name)
		if err != nil {
			log.Debug().Err(err).Str("component", component).Str("field", f.Name).Msg("column batch decode failed")
			return nil, false, err
		}
		out[c] = Column{Name: f.Name, Values: vals}
	}
	return out, true, nil
}
