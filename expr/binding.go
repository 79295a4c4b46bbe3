package expr

import "errors"

// Binding exposes the rows of a record source to compiled predicates.
type Binding interface {
	// Len returns the number of rows.
	Len() int

	// Column returns the named column.
	// Returns an *UnknownColumnError if no such column exists.
	Column(name string) (Column, error)
}

// Column reads one column of a Binding.
// Value returns the canonical Go type of the column kind:
// bool, string, int64, float64 or time.Time.
// Value is only called for rows where IsNull is false.
type Column interface {
	Kind() ValueKind
	IsNull(row int) bool
	Value(row int) any
}

var (
	// ErrUnknownColumn is matched by every UnknownColumnError.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrKindMismatch is matched by every KindMismatchError.
	ErrKindMismatch = errors.New("kind mismatch")
)

// UnknownColumnError indicates a property that the record source does not expose.
type UnknownColumnError struct {
	Name string
}

func (e *UnknownColumnError) Error() string {
	return "unknown column: " + e.Name
}

func (e *UnknownColumnError) Is(target error) bool { return target == ErrUnknownColumn }

// KindMismatchError indicates an expression that cannot be applied to a column.
type KindMismatchError struct {
	Column     string
	ColumnKind ValueKind
	ValueKind  ValueKind
	Type       ExpressionType
}

func (e *KindMismatchError) Error() string {
	return "cannot apply " + string(e.Type) + " with " + e.ValueKind.String() +
		" operand to " + e.ColumnKind.String() + " column " + e.Column
}

func (e *KindMismatchError) Is(target error) bool { return target == ErrKindMismatch }
