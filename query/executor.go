package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridfilter/expr"
	"github.com/hugr-lab/gridfilter/grid"
	"github.com/hugr-lab/gridfilter/internal/recovery"
	"github.com/hugr-lab/gridfilter/source"
	"github.com/hugr-lab/gridfilter/translate"
)

// ErrNilTable is returned when a query is run without a table.
var ErrNilTable = errors.New("nil table")

// Executor applies grid state to tables and struct slices.
// An Executor is safe for concurrent use.
type Executor struct {
	registry *translate.Registry
	alloc    memory.Allocator
	logger   *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithAllocator sets the allocator for result batches.
func WithAllocator(alloc memory.Allocator) Option {
	return func(e *Executor) { e.alloc = alloc }
}

// WithLogger sets the executor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// NewExecutor creates an executor translating through registry.
// A nil registry selects translate.DefaultRegistry().
func NewExecutor(registry *translate.Registry, opts ...Option) *Executor {
	e := &Executor{registry: registry}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = translate.DefaultRegistry()
	}
	if e.alloc == nil {
		e.alloc = memory.DefaultAllocator
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Registry returns the registry the executor translates through.
func (e *Executor) Registry() *translate.Registry {
	return e.registry
}

// Plan translates snap. Descriptors with operator None are skipped.
func (e *Executor) Plan(snap grid.Snapshot) (*Plan, error) {
	parts := make([]expr.Expression, 0, len(snap.Filters))
	for _, d := range snap.Filters {
		if d.Operator().IsNone() {
			continue
		}
		x, err := recovery.RecoverToValue(e.logger, "Translate", func() (expr.Expression, error) {
			return e.registry.Translate(d)
		})
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", d.PropertyName(), err)
		}
		parts = append(parts, x)
	}

	p := &Plan{
		Filter:  expr.And(parts...),
		Sort:    snap.Sort,
		Window:  snap.Window,
		Version: snap.Version,
	}
	frag, err := expr.Format(p.Filter)
	if err != nil {
		return nil, fmt.Errorf("format filter: %w", err)
	}
	p.Fragment = frag

	e.logger.Debug("Query planned",
		"version", snap.Version,
		"filters", len(parts),
		"fragment", frag.Text,
	)
	return p, nil
}

// Apply returns the filtered, sorted and windowed rows of tbl.
// Caller MUST release the reader.
func (e *Executor) Apply(ctx context.Context, tbl source.Table, st *grid.State) (array.RecordReader, error) {
	page, err := e.Query(ctx, tbl, st)
	if err != nil {
		return nil, err
	}
	defer page.Release()
	return array.NewRecordReader(page.Records.Schema(), []arrow.RecordBatch{page.Records})
}

// TotalCount returns the number of rows of tbl passing the filters of st.
// Sort and window are ignored.
func (e *Executor) TotalCount(ctx context.Context, tbl source.Table, st *grid.State) (int64, error) {
	plan, err := e.Plan(st.Snapshot())
	if err != nil {
		return 0, err
	}
	rec, err := e.read(ctx, tbl)
	if err != nil {
		return 0, err
	}
	defer rec.Release()

	n, err := plan.Count(ctx, source.NewBatchBinding(rec))
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// Page is one query result.
type Page struct {
	// Records holds the windowed rows in order.
	Records arrow.RecordBatch
	// TotalCount is the number of rows passing the filters before the
	// window is applied.
	TotalCount int64
	Skip       int
	Top        int
	// Version is the state version the page was computed from.
	Version uint64
	Plan    *Plan
}

// Release releases the page records.
func (p *Page) Release() {
	if p.Records != nil {
		p.Records.Release()
		p.Records = nil
	}
}

// Query computes one page and its total count from a single snapshot of st.
// Caller MUST release the page.
func (e *Executor) Query(ctx context.Context, tbl source.Table, st *grid.State) (*Page, error) {
	return e.QuerySnapshot(ctx, tbl, st.Snapshot())
}

// QuerySnapshot is Query over an already taken snapshot.
func (e *Executor) QuerySnapshot(ctx context.Context, tbl source.Table, snap grid.Snapshot) (*Page, error) {
	plan, err := e.Plan(snap)
	if err != nil {
		return nil, err
	}
	rec, err := e.read(ctx, tbl)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	rows, err := plan.Select(ctx, source.NewBatchBinding(rec))
	if err != nil {
		return nil, err
	}
	window := plan.Page(rows)
	out, err := source.Take(rec, window, e.alloc)
	if err != nil {
		return nil, fmt.Errorf("take rows: %w", err)
	}

	page := &Page{
		Records:    out,
		TotalCount: int64(len(rows)),
		Version:    snap.Version,
		Plan:       plan,
	}
	if plan.Window != nil {
		page.Skip, page.Top = plan.Window.Skip, plan.Window.Top
	}

	e.logger.Debug("Query applied",
		"table", tbl.Name(),
		"scanned", rec.NumRows(),
		"total", page.TotalCount,
		"returned", out.NumRows(),
	)
	return page, nil
}

func (e *Executor) read(ctx context.Context, tbl source.Table) (arrow.RecordBatch, error) {
	if tbl == nil {
		return nil, ErrNilTable
	}
	rdr, err := tbl.Scan(ctx, &source.ScanOptions{})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", tbl.Name(), err)
	}
	defer rdr.Release()

	rec, err := source.ReadAll(ctx, rdr, e.alloc)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", tbl.Name(), err)
	}
	return rec, nil
}

// ApplySlice returns the filtered, sorted and windowed elements of rows.
// T must be a struct or a pointer to a struct.
func ApplySlice[T any](ctx context.Context, e *Executor, rows []T, st *grid.State) ([]T, error) {
	plan, err := e.Plan(st.Snapshot())
	if err != nil {
		return nil, err
	}
	b, err := source.NewSliceBinding(rows)
	if err != nil {
		return nil, err
	}
	sel, err := plan.Select(ctx, b)
	if err != nil {
		return nil, err
	}
	sel = plan.Page(sel)

	out := make([]T, len(sel))
	for i, r := range sel {
		out[i] = rows[r]
	}
	return out, nil
}

// CountSlice returns the number of elements of rows passing the filters of st.
func CountSlice[T any](ctx context.Context, e *Executor, rows []T, st *grid.State) (int, error) {
	plan, err := e.Plan(st.Snapshot())
	if err != nil {
		return 0, err
	}
	b, err := source.NewSliceBinding(rows)
	if err != nil {
		return 0, err
	}
	return plan.Count(ctx, b)
}
