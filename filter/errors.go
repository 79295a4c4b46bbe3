package filter

import "errors"

var (
	// ErrUnsupportedOperator is matched by every UnsupportedOperatorError.
	ErrUnsupportedOperator = errors.New("unsupported filter operator")

	// ErrUnknownOperator is matched by every UnknownOperatorError.
	ErrUnknownOperator = errors.New("unknown filter operator")
)

// UnsupportedOperatorError indicates that a translator does not handle the
// descriptor's operator.
type UnsupportedOperatorError struct {
	Type     FilterType
	Operator Operator
}

func (e *UnsupportedOperatorError) Error() string {
	return "could not translate operator " + e.Operator.String() + " for filter type " + string(e.Type)
}

func (e *UnsupportedOperatorError) Is(target error) bool {
	return target == ErrUnsupportedOperator
}

// UnknownOperatorError indicates an operator name outside the canonical set.
type UnknownOperatorError struct {
	Name string
}

func (e *UnknownOperatorError) Error() string {
	return "unknown filter operator: " + e.Name
}

func (e *UnknownOperatorError) Is(target error) bool {
	return target == ErrUnknownOperator
}
