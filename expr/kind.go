package expr

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// ValueKind is the declared kind of a column or operand.
type ValueKind int

const (
	KindInvalid ValueKind = iota
	KindBool
	KindString
	KindInt
	KindDouble
	// KindDateTime values are compared by wall clock, ignoring location.
	KindDateTime
	// KindDateTimeOffset values are compared as absolute instants.
	KindDateTimeOffset
)

func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindDateTime:
		return "datetime"
	case KindDateTimeOffset:
		return "datetimeoffset"
	}
	return "invalid"
}

func (k ValueKind) numeric() bool { return k == KindInt || k == KindDouble }

func (k ValueKind) temporal() bool { return k == KindDateTime || k == KindDateTimeOffset }

// LocalDateTime marks a fragment argument as a wall-clock date-time.
// A plain time.Time argument is a date-time with offset.
type LocalDateTime struct {
	time.Time
}

// KindOf returns the kind of a fragment argument and its canonical value.
func KindOf(v any) (ValueKind, any, error) {
	switch x := v.(type) {
	case bool:
		return KindBool, x, nil
	case string:
		return KindString, x, nil
	case int:
		return KindInt, int64(x), nil
	case int8:
		return KindInt, int64(x), nil
	case int16:
		return KindInt, int64(x), nil
	case int32:
		return KindInt, int64(x), nil
	case int64:
		return KindInt, x, nil
	case uint8:
		return KindInt, int64(x), nil
	case uint16:
		return KindInt, int64(x), nil
	case uint32:
		return KindInt, int64(x), nil
	case float32:
		return KindDouble, float64(x), nil
	case float64:
		return KindDouble, x, nil
	case LocalDateTime:
		return KindDateTime, x.Time, nil
	case time.Time:
		return KindDateTimeOffset, x, nil
	}
	return KindInvalid, nil, fmt.Errorf("unsupported argument type %T", v)
}

// wallClock returns t's wall clock reading as a UTC time.
func wallClock(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
}

// comparator returns a three-way comparison between a column value of kind
// col and an operand of kind val. Numeric kinds widen to double and temporal
// kinds compare by wall clock when either side is a wall-clock date-time.
func comparator(col, val ValueKind) (func(a, b any) int, bool) {
	switch {
	case col == val && col == KindBool:
		return compareBool, true
	case col == val && col == KindString:
		return func(a, b any) int { return strings.Compare(a.(string), b.(string)) }, true
	case col == val && col == KindInt:
		return func(a, b any) int { return cmp.Compare(a.(int64), b.(int64)) }, true
	case col.numeric() && val.numeric():
		return func(a, b any) int { return cmp.Compare(toFloat(a), toFloat(b)) }, true
	case col.temporal() && val.temporal():
		if col == KindDateTime || val == KindDateTime {
			return func(a, b any) int { return wallClock(a.(time.Time)).Compare(wallClock(b.(time.Time))) }, true
		}
		return func(a, b any) int { return a.(time.Time).Compare(b.(time.Time)) }, true
	}
	return nil, false
}

func compareBool(a, b any) int {
	x, y := a.(bool), b.(bool)
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	}
	return 1
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return 0
}

// CompareValues orders two non-null values of the same kind.
// It is used by sort translators.
func CompareValues(kind ValueKind, a, b any) int {
	f, ok := comparator(kind, kind)
	if !ok {
		return 0
	}
	return f(a, b)
}
