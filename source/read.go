package source

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ReadAll drains rdr into a single record batch.
// Cancellation is checked between batches. Caller MUST release the result.
func ReadAll(ctx context.Context, rdr array.RecordReader, alloc memory.Allocator) (arrow.RecordBatch, error) {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}

	var batches []arrow.RecordBatch
	defer func() {
		for _, b := range batches {
			b.Release()
		}
	}()

	for rdr.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := rdr.RecordBatch()
		rec.Retain()
		batches = append(batches, rec)
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	return concatRecords(rdr.Schema(), batches, alloc)
}

func concatRecords(schema *arrow.Schema, batches []arrow.RecordBatch, alloc memory.Allocator) (arrow.RecordBatch, error) {
	switch len(batches) {
	case 0:
		builder := array.NewRecordBuilder(alloc, schema)
		defer builder.Release()
		return builder.NewRecordBatch(), nil
	case 1:
		batches[0].Retain()
		return batches[0], nil
	}

	var rows int64
	for _, b := range batches {
		rows += b.NumRows()
	}

	cols := make([]arrow.Array, schema.NumFields())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	parts := make([]arrow.Array, len(batches))
	for i := range cols {
		for j, b := range batches {
			parts[j] = b.Column(i)
		}
		c, err := array.Concatenate(parts, alloc)
		if err != nil {
			return nil, fmt.Errorf("concatenating column %s: %w", schema.Field(i).Name, err)
		}
		cols[i] = c
	}
	return array.NewRecordBatch(schema, cols, rows), nil
}

// Take returns a new record batch holding the given rows of rec, in order.
// Runs of consecutive rows are copied as slices. Caller MUST release the result.
func Take(rec arrow.RecordBatch, rows []int, alloc memory.Allocator) (arrow.RecordBatch, error) {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	if len(rows) == 0 {
		return rec.NewSlice(0, 0), nil
	}

	runs := toRuns(rows)
	if len(runs) == 1 {
		return rec.NewSlice(int64(runs[0].start), int64(runs[0].end)), nil
	}

	slices := make([]arrow.RecordBatch, 0, len(runs))
	defer func() {
		for _, s := range slices {
			s.Release()
		}
	}()
	for _, r := range runs {
		slices = append(slices, rec.NewSlice(int64(r.start), int64(r.end)))
	}
	return concatRecords(rec.Schema(), slices, alloc)
}

type run struct{ start, end int }

// toRuns groups rows into half-open runs of consecutive indices.
func toRuns(rows []int) []run {
	runs := []run{{rows[0], rows[0] + 1}}
	for _, r := range rows[1:] {
		last := &runs[len(runs)-1]
		if r == last.end {
			last.end++
			continue
		}
		runs = append(runs, run{r, r + 1})
	}
	return runs
}
