package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// ErrEmptyTable is returned when a record table is created without records
// and without a schema.
var ErrEmptyTable = errors.New("table has no records and no schema")

// Table is a record source a grid can query.
// Implementations MUST be goroutine-safe.
type Table interface {
	// Name returns the table name (e.g., "people", "orders").
	Name() string

	// ArrowSchema returns the schema describing table columns.
	// MUST return valid *arrow.Schema.
	ArrowSchema() *arrow.Schema

	// Scan returns the table rows.
	// Context allows cancellation; implementation MUST respect ctx.Done().
	// Caller MUST call reader.Release() to free memory.
	// Returned RecordReader schema MUST match ArrowSchema().
	Scan(ctx context.Context, opts *ScanOptions) (array.RecordReader, error)
}

// ScanOptions provides options for table scans.
type ScanOptions struct {
	// Columns to return. If nil/empty, return all columns.
	// Implementations MAY ignore this hint and return all columns.
	Columns []string

	// BatchSize is hint for RecordReader batch size.
	// If 0, implementation chooses default.
	BatchSize int
}

// ScanFunc is a function type for table data retrieval.
// User implements this to connect to their data source.
type ScanFunc func(ctx context.Context, opts *ScanOptions) (array.RecordReader, error)

// StaticTable is an immutable table backed by a scan function.
type StaticTable struct {
	name     string
	schema   *arrow.Schema
	scanFunc ScanFunc
	records  []arrow.RecordBatch
}

// NewStaticTable creates a table that delegates scans to scanFunc.
func NewStaticTable(name string, schema *arrow.Schema, scanFunc ScanFunc) *StaticTable {
	return &StaticTable{
		name:     name,
		schema:   schema,
		scanFunc: scanFunc,
	}
}

// NewRecordTable creates a table over in-memory records.
// The records are retained until Release is called.
// All records MUST share the schema of the first one.
func NewRecordTable(name string, records ...arrow.RecordBatch) (*StaticTable, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}
	schema := records[0].Schema()
	for i, rec := range records[1:] {
		if !rec.Schema().Equal(schema) {
			return nil, fmt.Errorf("record %d: schema does not match first record", i+1)
		}
	}
	for _, rec := range records {
		rec.Retain()
	}

	t := &StaticTable{name: name, schema: schema, records: records}
	t.scanFunc = t.scanRecords
	return t, nil
}

// Name implements Table interface.
func (t *StaticTable) Name() string {
	return t.name
}

// ArrowSchema implements Table interface.
func (t *StaticTable) ArrowSchema() *arrow.Schema {
	return t.schema
}

// Scan implements Table interface.
func (t *StaticTable) Scan(ctx context.Context, opts *ScanOptions) (array.RecordReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &ScanOptions{}
	}
	return t.scanFunc(ctx, opts)
}

// Release releases records held by a table created with NewRecordTable.
func (t *StaticTable) Release() {
	for _, rec := range t.records {
		rec.Release()
	}
	t.records = nil
}

func (t *StaticTable) scanRecords(ctx context.Context, opts *ScanOptions) (array.RecordReader, error) {
	if opts.BatchSize <= 0 {
		return array.NewRecordReader(t.schema, t.records)
	}

	// Re-slice records so no batch exceeds BatchSize rows.
	batches := make([]arrow.RecordBatch, 0, len(t.records))
	defer func() {
		for _, b := range batches {
			b.Release()
		}
	}()
	size := int64(opts.BatchSize)
	for _, rec := range t.records {
		for start := int64(0); start < rec.NumRows(); start += size {
			end := min(start+size, rec.NumRows())
			batches = append(batches, rec.NewSlice(start, end))
		}
	}
	return array.NewRecordReader(t.schema, batches)
}
