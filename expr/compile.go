package expr

import (
	"fmt"
	"strings"
)

// Predicate reports whether a row of a Binding is selected.
type Predicate func(row int) bool

// Compile binds e to the columns of b and returns a row predicate.
//
// Null rows follow lifted two-valued semantics: == and the relational
// comparisons are false, <> is true, and string functions other than the
// null-or-empty tests are false. Column and operand kinds are checked here,
// so a compiled predicate never fails.
func Compile(e Expression, b Binding) (Predicate, error) {
	switch x := e.(type) {
	case *ConstantExpression:
		v := x.Value
		return func(int) bool { return v }, nil
	case *NullTestExpression:
		return compileNullTest(x, b)
	case *ComparisonExpression:
		return compileComparison(x, b)
	case *FunctionExpression:
		return compileFunction(x, b)
	case *NotExpression:
		child, err := Compile(x.Child, b)
		if err != nil {
			return nil, err
		}
		return func(row int) bool { return !child(row) }, nil
	case *ConjunctionExpression:
		return compileConjunction(x, b)
	case nil:
		return nil, fmt.Errorf("nil expression")
	}
	return nil, fmt.Errorf("unsupported expression type %s", e.Type())
}

func compileNullTest(n *NullTestExpression, b Binding) (Predicate, error) {
	col, err := b.Column(n.Column)
	if err != nil {
		return nil, err
	}
	if n.Type() == TypeIsNotNull {
		return func(row int) bool { return !col.IsNull(row) }, nil
	}
	return col.IsNull, nil
}

func compileComparison(c *ComparisonExpression, b Binding) (Predicate, error) {
	if c.Value == nil {
		return nil, fmt.Errorf("comparison on %s has a null operand", c.Column)
	}
	col, err := b.Column(c.Column)
	if err != nil {
		return nil, err
	}
	compare, ok := comparator(col.Kind(), c.Kind)
	if !ok {
		return nil, &KindMismatchError{Column: c.Column, ColumnKind: col.Kind(), ValueKind: c.Kind, Type: c.Type()}
	}

	var test func(int) bool
	switch c.Type() {
	case TypeCompareEqual:
		test = func(r int) bool { return r == 0 }
	case TypeCompareNotEqual:
		test = func(r int) bool { return r != 0 }
	case TypeCompareLessThan:
		test = func(r int) bool { return r < 0 }
	case TypeCompareGreaterThan:
		test = func(r int) bool { return r > 0 }
	case TypeCompareLessThanOrEqual:
		test = func(r int) bool { return r <= 0 }
	case TypeCompareGreaterThanOrEqual:
		test = func(r int) bool { return r >= 0 }
	default:
		return nil, fmt.Errorf("unsupported comparison type %s", c.Type())
	}

	nullResult := c.Type() == TypeCompareNotEqual
	value := c.Value
	return func(row int) bool {
		if col.IsNull(row) {
			return nullResult
		}
		return test(compare(col.Value(row), value))
	}, nil
}

func compileFunction(f *FunctionExpression, b Binding) (Predicate, error) {
	col, err := b.Column(f.Column)
	if err != nil {
		return nil, err
	}
	if col.Kind() != KindString {
		return nil, &KindMismatchError{Column: f.Column, ColumnKind: col.Kind(), ValueKind: KindString, Type: f.Type()}
	}

	var test func(s string) bool
	arg := f.Arg
	switch f.Name {
	case FuncContains:
		test = func(s string) bool { return strings.Contains(s, arg) }
	case FuncStartsWith:
		test = func(s string) bool { return strings.HasPrefix(s, arg) }
	case FuncEndsWith:
		test = func(s string) bool { return strings.HasSuffix(s, arg) }
	case FuncIsNullOrEmpty:
		return func(row int) bool {
			return col.IsNull(row) || col.Value(row).(string) == ""
		}, nil
	case FuncIsNullOrWhitespace:
		return func(row int) bool {
			return col.IsNull(row) || strings.TrimSpace(col.Value(row).(string)) == ""
		}, nil
	default:
		return nil, fmt.Errorf("unsupported function %q", f.Name)
	}

	return func(row int) bool {
		if col.IsNull(row) {
			return false
		}
		return test(col.Value(row).(string))
	}, nil
}

func compileConjunction(c *ConjunctionExpression, b Binding) (Predicate, error) {
	children := make([]Predicate, 0, len(c.Children))
	for _, child := range c.Children {
		p, err := Compile(child, b)
		if err != nil {
			return nil, err
		}
		children = append(children, p)
	}

	if c.Type() == TypeConjunctionOr {
		return func(row int) bool {
			for _, p := range children {
				if p(row) {
					return true
				}
			}
			return false
		}, nil
	}
	return func(row int) bool {
		for _, p := range children {
			if !p(row) {
				return false
			}
		}
		return true
	}, nil
}
