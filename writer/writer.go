// Package writer implements the row-buffered writer (component C7):
// per-row validation, reservoir-sampled adaptive batch sizing, column
// transposition, and forwarding to the wrapped Parquet encoder
// (arrow-go's pqarrow bridge).
package writer

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/rs/zerolog/log"

	"github.com/johanan/pval/arrowconv"
	"github.com/johanan/pval/perr"
	"github.com/johanan/pval/schema"
	"github.com/johanan/pval/value"
)

const component = "writer"

// NamedColumn is one column of a write_columns batch (§4.5).
type NamedColumn struct {
	Name   string
	Values []value.PValue
}

// Writer is the row-buffered Parquet writer. Not safe for concurrent
// use (§5: single-threaded cooperative at the API boundary).
type Writer struct {
	cfg    Config
	schema *schema.Schema
	arrow  *arrow.Schema
	alloc  memory.Allocator
	fw     *pqarrow.FileWriter

	fields []*schema.Node

	buffer    [][]value.PValue
	reservoir *reservoir
	batchSize int
	totalRows int64

	closed      bool
	terminalErr error
}

// New constructs a Writer over sc, writing to w per cfg.
func New(sc *schema.Schema, w io.Writer, cfg Config) (*Writer, error) {
	as, err := schema.ToArrow(sc)
	if err != nil {
		return nil, err
	}

	props := parquet.NewWriterProperties(parquet.WithCompression(cfg.Compression.codec()))
	arrowProps := pqarrow.DefaultWriterProps()
	fw, err := pqarrow.NewFileWriter(as, w, props, arrowProps)
	if err != nil {
		return nil, perr.ParquetFormat(component, "New", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = cfg.MinBatchSize
	}

	return &Writer{
		cfg:       cfg,
		schema:    sc,
		arrow:     as,
		alloc:     memory.NewGoAllocator(),
		fw:        fw,
		fields:    sc.Root.Fields,
		reservoir: newReservoir(cfg.SampleSize, func(n int64) int64 { return rand.Int63n(n) }),
		batchSize: batchSize,
	}, nil
}

// Stats is a read-only snapshot for host-language adapters that want
// to report progress without reaching into writer internals.
type Stats struct {
	TotalRows        int64
	CurrentBatchSize int
	SampleCount      int
}

func (w *Writer) Stats() Stats {
	return Stats{TotalRows: w.totalRows, CurrentBatchSize: w.batchSize, SampleCount: w.reservoir.count()}
}

// WriteRow validates row against the schema, buffers it, updates the
// adaptive batch-size estimate, and flushes if the buffer has reached
// the current batch size (§4.5).
func (w *Writer) WriteRow(row []value.PValue) error {
	if w.closed {
		return perr.Closed(component, "WriteRow")
	}
	if err := validateRow(w.fields, row); err != nil {
		return err
	}

	if w.cfg.adaptive() {
		size := estimateRow(w.fields, row)
		w.reservoir.observe(size)
		if w.reservoir.count() >= w.cfg.MinSamples {
			mean := w.reservoir.mean()
			if mean > 0 {
				adaptive := int(math.Floor(float64(w.cfg.MemoryThreshold) / mean))
				if adaptive < w.cfg.MinBatchSize {
					adaptive = w.cfg.MinBatchSize
				}
				w.batchSize = adaptive
			}
		}
	}

	w.buffer = append(w.buffer, row)
	log.Debug().Int("buffered", len(w.buffer)).Int("batch_size", w.batchSize).Msg("row buffered")

	if len(w.buffer) >= w.batchSize {
		return w.Flush()
	}
	return nil
}

// WriteColumns bypasses the row buffer: it reorders cols to schema
// order, encodes each column directly via arrowconv, and writes the
// resulting RecordBatch immediately (§4.5).
func (w *Writer) WriteColumns(cols []NamedColumn) error {
	if w.closed {
		return perr.Closed(component, "WriteColumns")
	}

	byName := make(map[string]NamedColumn, len(cols))
	for _, c := range cols {
		if _, dup := byName[c.Name]; dup {
			return perr.Schema(component, "WriteColumns", c.Name, fmt.Errorf("duplicate column %q", c.Name))
		}
		byName[c.Name] = c
	}
	for name := range byName {
		if _, known := fieldIndex(w.fields, name); !known {
			return perr.Schema(component, "WriteColumns", name, fmt.Errorf("unknown column %q", name))
		}
	}

	rows := -1
	for _, f := range w.fields {
		c, ok := byName[f.Name]
		if !ok {
			return perr.Schema(component, "WriteColumns", f.Name, fmt.Errorf("missing column %q", f.Name))
		}
		if rows == -1 {
			rows = len(c.Values)
		} else if len(c.Values) != rows {
			return perr.Schema(component, "WriteColumns", f.Name, fmt.Errorf("column %q has %d rows, expected %d", f.Name, len(c.Values), rows))
		}
	}
	if rows == -1 {
		rows = 0
	}

	arrays := make([]arrow.Array, len(w.fields))
	for i, f := range w.fields {
		c := byName[f.Name]
		arr, err := arrowconv.EncodeColumn(w.alloc, f, c.Values, f.Name)
		if err != nil {
			releaseAll(arrays[:i])
			return err
		}
		arrays[i] = arr
	}

	rec := array.NewRecord(w.arrow, arrays, int64(rows))
	releaseAll(arrays)
	defer rec.Release()

	if err := w.fw.Write(rec); err != nil {
		werr := perr.ParquetFormat(component, "WriteColumns", err)
		w.fail(werr)
		return werr
	}
	w.totalRows += int64(rows)
	return nil
}

// Flush transposes the buffered rows into column vectors, encodes
// each via arrowconv, assembles a RecordBatch, and hands it to the
// Parquet encoder. Encoder errors are terminal (§4.5, §7).
func (w *Writer) Flush() error {
	if w.closed {
		return perr.Closed(component, "Flush")
	}
	if len(w.buffer) == 0 {
		return nil
	}

	rows := len(w.buffer)
	cols := transpose(w.buffer, len(w.fields))
	arrays := make([]arrow.Array, len(w.fields))
	for i, f := range w.fields {
		arr, err := arrowconv.EncodeColumn(w.alloc, f, cols[i], f.Name)
		if err != nil {
			w.fail(err)
			return err
		}
		arrays[i] = arr
	}

	rec := array.NewRecord(w.arrow, arrays, int64(rows))
	releaseAll(arrays)
	defer rec.Release()

	if err := w.fw.Write(rec); err != nil {
		werr := perr.ParquetFormat(component, "Flush", err)
		w.fail(werr)
		return werr
	}

	w.totalRows += int64(rows)
	w.buffer = w.buffer[:0]
	log.Debug().Int64("total_rows", w.totalRows).Msg("flushed row group")
	return nil
}

// Close flushes any buffered rows, finalizes the Parquet footer, and
// releases the sink. Close consumes the writer: every call after
// returns WriterClosed.
func (w *Writer) Close() error {
	if w.closed {
		return perr.Closed(component, "Close")
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := w.fw.Close(); err != nil {
		werr := perr.IO(component, "Close", err)
		w.fail(werr)
		return werr
	}
	w.closed = true
	return nil
}

func (w *Writer) fail(err error) {
	w.closed = true
	w.terminalErr = err
}

func transpose(rows [][]value.PValue, numFields int) [][]value.PValue {
	cols := make([][]value.PValue, numFields)
	for c := 0; c < numFields; c++ {
		col := make([]value.PValue, len(rows))
		for r, row := range rows {
			col[r] = row[c]
		}
		cols[c] = col
	}
	return cols
}

func fieldIndex(fields []*schema.Node, name string) (int, bool) {
	for i, f := range fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

func releaseAll(arrays []arrow.Array) {
	for _, a := range arrays {
		if a != nil {
			a.Release()
		}
	}
}
