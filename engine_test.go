package gridfilter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridfilter/filter"
	"github.com/hugr-lab/gridfilter/grid"
	"github.com/hugr-lab/gridfilter/query"
	"github.com/hugr-lab/gridfilter/source"
	"github.com/hugr-lab/gridfilter/translate"
)

type order struct {
	ID       int64
	Customer string
	Amount   float64
	Shipped  *time.Time `grid:"shipped"`
}

func orders() []order {
	day := func(d int) *time.Time {
		t := time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
		return &t
	}
	return []order{
		{ID: 1, Customer: "acme", Amount: 10.5, Shipped: day(1)},
		{ID: 2, Customer: "globex", Amount: 99.0, Shipped: nil},
		{ID: 3, Customer: "acme", Amount: 42.0, Shipped: day(5)},
		{ID: 4, Customer: "initech", Amount: 7.25, Shipped: day(9)},
	}
}

func testEngine(tb testing.TB, alloc memory.Allocator) *Engine {
	tb.Helper()
	level := slog.LevelDebug
	e, err := New(Config{
		Allocator: alloc,
		Logger:    slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: level})),
	})
	if err != nil {
		tb.Fatalf("New failed: %v", err)
	}
	return e
}

// TestNewConfig tests engine config defaults and validation.
func TestNewConfig(t *testing.T) {
	level := slog.LevelWarn
	e, err := New(Config{LogLevel: &level})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if e.Executor().Registry().Len() != 6 {
		t.Errorf("Expected default registry, got %d translators", e.Executor().Registry().Len())
	}

	_, err = New(Config{Registry: translate.NewRegistry()})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

// TestEngineQuery tests query, apply and count through the engine.
func TestEngineQuery(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer alloc.AssertSize(t, 0)

	tbl, err := source.FromStructs("orders", orders(), alloc)
	if err != nil {
		t.Fatalf("FromStructs failed: %v", err)
	}
	defer tbl.Release()

	e := testEngine(t, alloc)
	ctx := context.Background()

	st := grid.New()
	st.Mutate(func(tx *grid.Tx) {
		tx.AddFilter(filter.NewDateTimeOffsetFilter("shipped", filter.After,
			filter.Ptr(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)), nil))
		tx.SetSortColumn(filter.NewSortColumn("Amount", filter.Ascending))
		tx.SetSkipTop(0, 1)
	})

	page, err := e.Query(ctx, tbl, st)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if page.TotalCount != 2 {
		t.Errorf("Expected total 2, got %d", page.TotalCount)
	}
	if page.Records.NumRows() != 1 {
		t.Errorf("Expected 1 row, got %d", page.Records.NumRows())
	}
	page.Release()

	total, err := e.TotalCount(ctx, tbl, st)
	if err != nil {
		t.Fatalf("TotalCount failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected total 2, got %d", total)
	}

	rdr, err := e.Apply(ctx, tbl, st)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	rdr.Release()
}

// TestEngineWatch tests that state changes trigger re-queries.
func TestEngineWatch(t *testing.T) {
	tbl, err := source.FromStructs("orders", orders(), nil)
	if err != nil {
		t.Fatalf("FromStructs failed: %v", err)
	}
	defer tbl.Release()

	e := testEngine(t, nil)
	st := grid.New()

	totals := make(chan int64, 16)
	stop := e.Watch(context.Background(), tbl, st, func(page *query.Page, err error) {
		if err != nil {
			t.Errorf("Watch query failed: %v", err)
			return
		}
		defer page.Release()
		totals <- page.TotalCount
	})
	defer stop()

	waitTotal := func(want int64) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case got := <-totals:
				if got == want {
					return
				}
			case <-deadline:
				t.Fatalf("Timed out waiting for total %d", want)
			}
		}
	}

	waitTotal(4)
	st.AddFilter(filter.NewStringFilter("Customer", filter.IsEqualTo, filter.Ptr("acme")))
	waitTotal(2)
	st.RemoveFilter("Customer")
	waitTotal(4)

	stop()
	stop()
}

// TestEngineWatchError tests that query errors reach the callback.
// TestEngineWatchNilTable tests that a nil table is reported to the callback.
func TestEngineWatchNilTable(t *testing.T) {
	errs := make(chan error, 1)
	stop := testEngine(t, nil).Watch(context.Background(), nil, grid.New(), func(page *query.Page, err error) {
		if page != nil {
			page.Release()
		}
		select {
		case errs <- err:
		default:
		}
	})
	defer stop()

	select {
	case err := <-errs:
		if !errors.Is(err, query.ErrNilTable) {
			t.Errorf("Expected ErrNilTable, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for watch error")
	}
}

func TestEngineWatchError(t *testing.T) {
	tbl, err := source.FromStructs("orders", orders(), nil)
	if err != nil {
		t.Fatalf("FromStructs failed: %v", err)
	}
	defer tbl.Release()

	st := grid.New()
	st.AddFilter(filter.NewBooleanFilter("Customer", filter.Contains))

	errs := make(chan error, 1)
	stop := testEngine(t, nil).Watch(context.Background(), tbl, st, func(page *query.Page, err error) {
		if page != nil {
			page.Release()
		}
		select {
		case errs <- err:
		default:
		}
	})
	defer stop()

	select {
	case err := <-errs:
		if !errors.Is(err, filter.ErrUnsupportedOperator) {
			t.Errorf("Expected ErrUnsupportedOperator, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for watch error")
	}
}
