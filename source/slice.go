package source

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridfilter/expr"
)

// StructTag is the struct tag that renames or skips fields:
//
//	type Person struct {
//	    Name  string     `grid:"name"`
//	    Born  time.Time  `grid:"born,local"` // wall-clock date-time
//	    Notes string     `grid:"-"`
//	    Age   *int       // nullable
//	}
const StructTag = "grid"

var (
	timeType = reflect.TypeOf(time.Time{})

	nullTypes = map[reflect.Type]expr.ValueKind{
		reflect.TypeOf(sql.NullString{}):  expr.KindString,
		reflect.TypeOf(sql.NullBool{}):    expr.KindBool,
		reflect.TypeOf(sql.NullByte{}):    expr.KindInt,
		reflect.TypeOf(sql.NullInt16{}):   expr.KindInt,
		reflect.TypeOf(sql.NullInt32{}):   expr.KindInt,
		reflect.TypeOf(sql.NullInt64{}):   expr.KindInt,
		reflect.TypeOf(sql.NullFloat64{}): expr.KindDouble,
		reflect.TypeOf(sql.NullTime{}):    expr.KindDateTimeOffset,
	}
)

// structField describes one exported field of a row struct.
type structField struct {
	name  string
	index []int
	kind  expr.ValueKind
	// read returns the canonical value of the field, or false when null.
	read func(v reflect.Value) (any, bool)
}

// structFields returns the column plan of a struct (or pointer to struct) type.
func structFields(t reflect.Type) ([]structField, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrUnsupportedType, t)
	}

	fields := make([]structField, 0, t.NumField())
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get(StructTag), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		local := opts == "local"

		kind, read, ok := fieldReader(f.Type, local)
		if !ok {
			return nil, fmt.Errorf("%w: field %s has type %s", ErrUnsupportedType, f.Name, f.Type)
		}
		fields = append(fields, structField{name: name, index: f.Index, kind: kind, read: read})
	}
	return fields, nil
}

func fieldReader(t reflect.Type, local bool) (expr.ValueKind, func(reflect.Value) (any, bool), bool) {
	if kind, ok := nullTypes[t]; ok {
		if local && kind == expr.KindDateTimeOffset {
			kind = expr.KindDateTime
		}
		return kind, readNullable(kind), true
	}

	if t.Kind() == reflect.Pointer {
		kind, read, ok := fieldReader(t.Elem(), local)
		if !ok {
			return expr.KindInvalid, nil, false
		}
		return kind, func(v reflect.Value) (any, bool) {
			if v.IsNil() {
				return nil, false
			}
			return read(v.Elem())
		}, true
	}

	if t == timeType {
		kind := expr.KindDateTimeOffset
		if local {
			kind = expr.KindDateTime
		}
		return kind, func(v reflect.Value) (any, bool) { return v.Interface().(time.Time), true }, true
	}

	switch t.Kind() {
	case reflect.Bool:
		return expr.KindBool, func(v reflect.Value) (any, bool) { return v.Bool(), true }, true
	case reflect.String:
		return expr.KindString, func(v reflect.Value) (any, bool) { return v.String(), true }, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return expr.KindInt, func(v reflect.Value) (any, bool) { return v.Int(), true }, true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return expr.KindInt, func(v reflect.Value) (any, bool) { return int64(v.Uint()), true }, true
	case reflect.Float32, reflect.Float64:
		return expr.KindDouble, func(v reflect.Value) (any, bool) { return v.Float(), true }, true
	}
	return expr.KindInvalid, nil, false
}

// readNullable reads the sql.Null* wrappers through their Value method.
func readNullable(kind expr.ValueKind) func(reflect.Value) (any, bool) {
	return func(v reflect.Value) (any, bool) {
		dv, err := v.Interface().(driver.Valuer).Value()
		if err != nil || dv == nil {
			return nil, false
		}
		switch x := dv.(type) {
		case int64, float64, bool, string, time.Time:
			return x, true
		}
		return nil, false
	}
}

// SliceBinding exposes a slice of structs to compiled predicates.
type SliceBinding[T any] struct {
	rows    []T
	columns map[string]*sliceColumn[T]
}

// NewSliceBinding creates a binding over rows. T must be a struct or a
// pointer to a struct; nil pointer rows read as all-null.
func NewSliceBinding[T any](rows []T) (*SliceBinding[T], error) {
	fields, err := structFields(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	b := &SliceBinding[T]{rows: rows, columns: make(map[string]*sliceColumn[T], len(fields))}
	for _, f := range fields {
		b.columns[f.name] = &sliceColumn[T]{rows: rows, field: f}
	}
	return b, nil
}

// Len implements expr.Binding.
func (b *SliceBinding[T]) Len() int { return len(b.rows) }

// Column implements expr.Binding.
func (b *SliceBinding[T]) Column(name string) (expr.Column, error) {
	c, ok := b.columns[name]
	if !ok {
		return nil, &expr.UnknownColumnError{Name: name}
	}
	return c, nil
}

// Rows returns the bound slice.
func (b *SliceBinding[T]) Rows() []T { return b.rows }

type sliceColumn[T any] struct {
	rows  []T
	field structField
}

func (c *sliceColumn[T]) Kind() expr.ValueKind { return c.field.kind }

func (c *sliceColumn[T]) get(row int) (any, bool) {
	v := reflect.ValueOf(&c.rows[row]).Elem()
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	return c.field.read(v.FieldByIndex(c.field.index))
}

func (c *sliceColumn[T]) IsNull(row int) bool {
	_, ok := c.get(row)
	return !ok
}

func (c *sliceColumn[T]) Value(row int) any {
	v, _ := c.get(row)
	return v
}

// FromStructs builds a record table from a slice of structs using the same
// field rules as NewSliceBinding.
func FromStructs[T any](name string, rows []T, alloc memory.Allocator) (*StaticTable, error) {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	binding, err := NewSliceBinding(rows)
	if err != nil {
		return nil, err
	}
	plan, err := structFields(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, len(plan))
	for i, f := range plan {
		fields[i] = arrow.Field{Name: f.name, Type: arrowType(f.kind), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(alloc, schema)
	defer builder.Release()

	for i, f := range plan {
		col := binding.columns[f.name]
		if err := appendColumn(builder.Field(i), col, len(rows)); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
	}

	rec := builder.NewRecordBatch()
	defer rec.Release()
	return NewRecordTable(name, rec)
}

func arrowType(kind expr.ValueKind) arrow.DataType {
	switch kind {
	case expr.KindBool:
		return arrow.FixedWidthTypes.Boolean
	case expr.KindString:
		return arrow.BinaryTypes.String
	case expr.KindInt:
		return arrow.PrimitiveTypes.Int64
	case expr.KindDouble:
		return arrow.PrimitiveTypes.Float64
	}
	return timestampType(kind)
}

func appendColumn(b array.Builder, col expr.Column, n int) error {
	for row := 0; row < n; row++ {
		if col.IsNull(row) {
			b.AppendNull()
			continue
		}
		v := col.Value(row)
		switch bb := b.(type) {
		case *array.BooleanBuilder:
			bb.Append(v.(bool))
		case *array.StringBuilder:
			bb.Append(v.(string))
		case *array.Int64Builder:
			bb.Append(v.(int64))
		case *array.Float64Builder:
			bb.Append(v.(float64))
		case *array.TimestampBuilder:
			bb.Append(timestampValue(col.Kind(), v.(time.Time)))
		default:
			return fmt.Errorf("%w: builder %T", ErrUnsupportedType, b)
		}
	}
	return nil
}
