package source

import (
	"errors"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/hugr-lab/gridfilter/expr"
)

// ErrUnsupportedType is matched by errors for columns whose Arrow type has no
// value kind.
var ErrUnsupportedType = errors.New("unsupported column type")

// BatchBinding exposes one Arrow record batch to compiled predicates.
// The batch must stay alive while the binding is in use.
type BatchBinding struct {
	rec     arrow.RecordBatch
	columns map[string]expr.Column
}

// NewBatchBinding creates a binding over rec.
func NewBatchBinding(rec arrow.RecordBatch) *BatchBinding {
	return &BatchBinding{rec: rec, columns: make(map[string]expr.Column)}
}

// Len implements expr.Binding.
func (b *BatchBinding) Len() int {
	return int(b.rec.NumRows())
}

// Column implements expr.Binding.
func (b *BatchBinding) Column(name string) (expr.Column, error) {
	if c, ok := b.columns[name]; ok {
		return c, nil
	}
	idx := FindField(b.rec.Schema(), name)
	if idx < 0 {
		return nil, &expr.UnknownColumnError{Name: name}
	}
	c, err := arrowColumn(b.rec.Column(idx))
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", name, err)
	}
	b.columns[name] = c
	return c, nil
}

// FindField returns the index of the named field in schema.
// Returns -1 if there is no such field or schema is nil.
func FindField(schema *arrow.Schema, name string) int {
	if schema == nil {
		return -1
	}
	if idx := schema.FieldIndices(name); len(idx) > 0 {
		return idx[0]
	}
	return -1
}

// KindOf returns the value kind an Arrow type is read as.
func KindOf(dt arrow.DataType) (expr.ValueKind, error) {
	switch dt.ID() {
	case arrow.BOOL:
		return expr.KindBool, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return expr.KindString, nil
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return expr.KindInt, nil
	case arrow.FLOAT32, arrow.FLOAT64:
		return expr.KindDouble, nil
	case arrow.DATE32, arrow.DATE64:
		return expr.KindDateTime, nil
	case arrow.TIMESTAMP:
		if dt.(*arrow.TimestampType).TimeZone != "" {
			return expr.KindDateTimeOffset, nil
		}
		return expr.KindDateTime, nil
	}
	return expr.KindInvalid, fmt.Errorf("%w: %s", ErrUnsupportedType, dt)
}

type column struct {
	kind  expr.ValueKind
	arr   arrow.Array
	value func(row int) any
}

func (c *column) Kind() expr.ValueKind { return c.kind }

func (c *column) IsNull(row int) bool { return c.arr.IsNull(row) }

func (c *column) Value(row int) any { return c.value(row) }

func arrowColumn(arr arrow.Array) (*column, error) {
	kind, err := KindOf(arr.DataType())
	if err != nil {
		return nil, err
	}
	c := &column{kind: kind, arr: arr}

	switch a := arr.(type) {
	case *array.Boolean:
		c.value = func(i int) any { return a.Value(i) }
	case *array.String:
		c.value = func(i int) any { return a.Value(i) }
	case *array.LargeString:
		c.value = func(i int) any { return a.Value(i) }
	case *array.Int8:
		c.value = func(i int) any { return int64(a.Value(i)) }
	case *array.Int16:
		c.value = func(i int) any { return int64(a.Value(i)) }
	case *array.Int32:
		c.value = func(i int) any { return int64(a.Value(i)) }
	case *array.Int64:
		c.value = func(i int) any { return a.Value(i) }
	case *array.Uint8:
		c.value = func(i int) any { return int64(a.Value(i)) }
	case *array.Uint16:
		c.value = func(i int) any { return int64(a.Value(i)) }
	case *array.Uint32:
		c.value = func(i int) any { return int64(a.Value(i)) }
	case *array.Float32:
		c.value = func(i int) any { return float64(a.Value(i)) }
	case *array.Float64:
		c.value = func(i int) any { return a.Value(i) }
	case *array.Date32:
		c.value = func(i int) any { return a.Value(i).ToTime() }
	case *array.Date64:
		c.value = func(i int) any { return a.Value(i).ToTime() }
	case *array.Timestamp:
		toTime, err := a.DataType().(*arrow.TimestampType).GetToTimeFunc()
		if err != nil {
			return nil, err
		}
		c.value = func(i int) any { return toTime(a.Value(i)) }
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, arr.DataType())
	}
	return c, nil
}

// timestampType returns the Arrow type used to store a temporal kind.
func timestampType(kind expr.ValueKind) *arrow.TimestampType {
	if kind == expr.KindDateTimeOffset {
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	}
	return &arrow.TimestampType{Unit: arrow.Microsecond}
}

// timestampValue converts t to microseconds for the given kind. Wall-clock
// values are stored as if they were UTC.
func timestampValue(kind expr.ValueKind, t time.Time) arrow.Timestamp {
	if kind == expr.KindDateTime {
		y, mo, d := t.Date()
		h, mi, s := t.Clock()
		t = time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
	}
	return arrow.Timestamp(t.UnixMicro())
}
