package source

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridfilter/expr"
)

type person struct {
	Name    string
	Age     *int
	Score   sql.NullFloat64
	Active  bool
	Born    time.Time `grid:"born,local"`
	Seen    *time.Time
	Comment string `grid:"-"`
	secret  string
}

func intPtr(v int) *int { return &v }

func testPeople() []person {
	seen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	return []person{
		{Name: "Anna", Age: intPtr(30), Score: sql.NullFloat64{Float64: 1.5, Valid: true}, Active: true,
			Born: time.Date(1994, 1, 2, 8, 0, 0, 0, time.UTC), Seen: &seen},
		{Name: "Bob", Age: nil, Active: false, Born: time.Date(1983, 6, 7, 9, 30, 0, 0, time.UTC)},
		{Name: "Cleo", Age: intPtr(25), Score: sql.NullFloat64{Float64: 4.5, Valid: true}, Active: true,
			Born: time.Date(1999, 12, 31, 23, 0, 0, 0, time.UTC)},
	}
}

// TestSliceBindingColumns tests field naming, nullability and kinds.
func TestSliceBindingColumns(t *testing.T) {
	b, err := NewSliceBinding(testPeople())
	if err != nil {
		t.Fatalf("NewSliceBinding failed: %v", err)
	}
	if b.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", b.Len())
	}

	tests := []struct {
		column string
		kind   expr.ValueKind
		nulls  []bool
	}{
		{"Name", expr.KindString, []bool{false, false, false}},
		{"Age", expr.KindInt, []bool{false, true, false}},
		{"Score", expr.KindDouble, []bool{false, true, false}},
		{"Active", expr.KindBool, []bool{false, false, false}},
		{"born", expr.KindDateTime, []bool{false, false, false}},
		{"Seen", expr.KindDateTimeOffset, []bool{false, true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			c, err := b.Column(tt.column)
			if err != nil {
				t.Fatalf("Column(%q) failed: %v", tt.column, err)
			}
			if c.Kind() != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, c.Kind())
			}
			for row, null := range tt.nulls {
				if c.IsNull(row) != null {
					t.Errorf("row %d: expected null=%v", row, null)
				}
			}
		})
	}

	age, _ := b.Column("Age")
	if v := age.Value(0); v != int64(30) {
		t.Errorf("expected int64(30), got %v (%T)", v, v)
	}

	for _, hidden := range []string{"Comment", "secret", "Born"} {
		if _, err := b.Column(hidden); !errors.Is(err, expr.ErrUnknownColumn) {
			t.Errorf("expected ErrUnknownColumn for %s, got %v", hidden, err)
		}
	}
}

// TestSliceBindingPointerRows tests slices of struct pointers with nil rows.
func TestSliceBindingPointerRows(t *testing.T) {
	rows := []*person{{Name: "Anna"}, nil}
	b, err := NewSliceBinding(rows)
	if err != nil {
		t.Fatalf("NewSliceBinding failed: %v", err)
	}
	c, _ := b.Column("Name")
	if c.IsNull(0) || !c.IsNull(1) {
		t.Error("Expected only the nil row to be null")
	}
}

// TestSliceBindingUnsupported tests rejected row types.
func TestSliceBindingUnsupported(t *testing.T) {
	if _, err := NewSliceBinding([]int{1, 2}); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType for []int, got %v", err)
	}
	type withMap struct{ M map[string]int }
	if _, err := NewSliceBinding([]withMap{{}}); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType for map field, got %v", err)
	}
}

// TestFromStructsRoundTrip tests that a struct table reads back through a batch binding.
func TestFromStructsRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	tbl, err := FromStructs("people", testPeople(), mem)
	if err != nil {
		t.Fatalf("FromStructs failed: %v", err)
	}
	defer tbl.Release()

	if tbl.Name() != "people" {
		t.Errorf("expected name 'people', got '%s'", tbl.Name())
	}
	if n := tbl.ArrowSchema().NumFields(); n != 6 {
		t.Fatalf("Expected 6 fields, got %d", n)
	}

	rdr, err := tbl.Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	defer rdr.Release()

	rec, err := ReadAll(context.Background(), rdr, mem)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	defer rec.Release()

	b := NewBatchBinding(rec)
	if b.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", b.Len())
	}

	born, err := b.Column("born")
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	if born.Kind() != expr.KindDateTime {
		t.Errorf("expected datetime kind, got %s", born.Kind())
	}
	got := born.Value(1).(time.Time)
	if got.Hour() != 9 || got.Minute() != 30 {
		t.Errorf("expected wall clock 09:30, got %s", got)
	}

	seen, _ := b.Column("Seen")
	if seen.Kind() != expr.KindDateTimeOffset {
		t.Errorf("expected datetimeoffset kind, got %s", seen.Kind())
	}
	if !seen.Value(0).(time.Time).Equal(time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("expected instant 11:00 UTC, got %v", seen.Value(0))
	}

	age, _ := b.Column("Age")
	if !age.IsNull(1) || age.Value(2) != int64(25) {
		t.Error("Expected Age to round-trip nulls and values")
	}
}

// TestBatchBindingArrowTypes tests column readers for narrow Arrow types.
func TestBatchBindingArrowTypes(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "i8", Type: arrow.PrimitiveTypes.Int8, Nullable: true},
		{Name: "u32", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "f32", Type: arrow.PrimitiveTypes.Float32},
		{Name: "d32", Type: arrow.FixedWidthTypes.Date32},
		{Name: "ls", Type: arrow.BinaryTypes.LargeString},
		{Name: "u64", Type: arrow.PrimitiveTypes.Uint64},
	}, nil)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()
	builder.Field(0).(*array.Int8Builder).AppendValues([]int8{-3, 0}, []bool{true, false})
	builder.Field(1).(*array.Uint32Builder).AppendValues([]uint32{7, 8}, nil)
	builder.Field(2).(*array.Float32Builder).AppendValues([]float32{0.5, 1.5}, nil)
	builder.Field(3).(*array.Date32Builder).AppendValues([]arrow.Date32{
		arrow.Date32FromTime(time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)),
		arrow.Date32FromTime(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)),
	}, nil)
	builder.Field(4).(*array.LargeStringBuilder).AppendValues([]string{"x", "y"}, nil)
	builder.Field(5).(*array.Uint64Builder).AppendValues([]uint64{1, 2}, nil)
	rec := builder.NewRecordBatch()
	defer rec.Release()

	b := NewBatchBinding(rec)

	i8, _ := b.Column("i8")
	if i8.Value(0) != int64(-3) || !i8.IsNull(1) {
		t.Error("Expected int8 column to widen to int64 with nulls")
	}
	u32, _ := b.Column("u32")
	if u32.Kind() != expr.KindInt || u32.Value(1) != int64(8) {
		t.Error("Expected uint32 column to read as int")
	}
	f32, _ := b.Column("f32")
	if f32.Value(1) != 1.5 {
		t.Errorf("expected 1.5, got %v", f32.Value(1))
	}
	d32, _ := b.Column("d32")
	if d := d32.Value(0).(time.Time); d.Month() != time.February || d.Day() != 29 {
		t.Errorf("expected 2020-02-29, got %v", d)
	}
	ls, _ := b.Column("ls")
	if ls.Kind() != expr.KindString || ls.Value(1) != "y" {
		t.Error("Expected large string column to read as string")
	}
	if _, err := b.Column("u64"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType for uint64, got %v", err)
	}
}

// TestScanBatchSize tests that record tables honour the batch size hint.
func TestScanBatchSize(t *testing.T) {
	tbl, err := FromStructs("people", testPeople(), nil)
	if err != nil {
		t.Fatalf("FromStructs failed: %v", err)
	}
	defer tbl.Release()

	rdr, err := tbl.Scan(context.Background(), &ScanOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	defer rdr.Release()

	var sizes []int64
	for rdr.Next() {
		sizes = append(sizes, rdr.RecordBatch().NumRows())
	}
	if len(sizes) != 2 || sizes[0] != 2 || sizes[1] != 1 {
		t.Errorf("expected batches [2 1], got %v", sizes)
	}
}

// TestScanCancelled tests that a cancelled context fails the scan.
func TestScanCancelled(t *testing.T) {
	tbl, err := FromStructs("people", testPeople(), nil)
	if err != nil {
		t.Fatalf("FromStructs failed: %v", err)
	}
	defer tbl.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tbl.Scan(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestTake tests row selection with runs and reordering.
func TestTake(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{{Name: "n", Type: arrow.PrimitiveTypes.Int64}}, nil)
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()
	builder.Field(0).(*array.Int64Builder).AppendValues([]int64{0, 10, 20, 30, 40, 50}, nil)
	rec := builder.NewRecordBatch()
	defer rec.Release()

	tests := []struct {
		name     string
		rows     []int
		expected []int64
	}{
		{"empty", nil, []int64{}},
		{"single run", []int{1, 2, 3}, []int64{10, 20, 30}},
		{"gaps", []int{0, 2, 3, 5}, []int64{0, 20, 30, 50}},
		{"reordered", []int{4, 0, 1}, []int64{40, 0, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Take(rec, tt.rows, mem)
			if err != nil {
				t.Fatalf("Take failed: %v", err)
			}
			defer out.Release()

			if int(out.NumRows()) != len(tt.expected) {
				t.Fatalf("Expected %d rows, got %d", len(tt.expected), out.NumRows())
			}
			col := out.Column(0).(*array.Int64)
			for i, v := range tt.expected {
				if col.Value(i) != v {
					t.Errorf("row %d: expected %d, got %d", i, v, col.Value(i))
				}
			}
		})
	}
}

// TestReadAllEmpty tests draining a reader without batches.
func TestReadAllEmpty(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{{Name: "n", Type: arrow.PrimitiveTypes.Int64}}, nil)
	rdr, err := array.NewRecordReader(schema, nil)
	if err != nil {
		t.Fatalf("NewRecordReader failed: %v", err)
	}
	defer rdr.Release()

	rec, err := ReadAll(context.Background(), rdr, nil)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	defer rec.Release()
	if rec.NumRows() != 0 || rec.NumCols() != 1 {
		t.Errorf("expected empty batch with 1 column, got %d rows %d cols", rec.NumRows(), rec.NumCols())
	}
}

// TestNewRecordTableErrors tests rejected record sets.
func TestNewRecordTableErrors(t *testing.T) {
	if _, err := NewRecordTable("empty"); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("expected ErrEmptyTable, got %v", err)
	}
}
