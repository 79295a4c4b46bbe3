package expr

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fragment is a parameterised textual rendering of an expression.
// Operands never appear in Text; each is referenced as @N and stored in Args[N].
// Args of kind DateTime are LocalDateTime values.
type Fragment struct {
	Text string
	Args []any
}

func (f Fragment) String() string {
	return f.Text
}

// Format renders e as a text fragment, e.g.
//
//	Age != null && Age > @0
//	Name != null && !Name.Contains(@1)
//	String.IsNullOrWhiteSpace(Name)
//
// Parse accepts the same syntax.
func Format(e Expression) (Fragment, error) {
	f := &formatter{}
	text, err := f.format(e, precOr)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{Text: text, Args: f.args}, nil
}

// MustFormat is like Format but panics on error.
func MustFormat(e Expression) Fragment {
	f, err := Format(e)
	if err != nil {
		panic(err)
	}
	return f
}

const (
	precOr = iota
	precAnd
	precUnary
)

type formatter struct {
	args []any
}

func (f *formatter) param(v any) string {
	f.args = append(f.args, v)
	return "@" + strconv.Itoa(len(f.args)-1)
}

func (f *formatter) format(e Expression, outer int) (string, error) {
	switch x := e.(type) {
	case *ConstantExpression:
		return strconv.FormatBool(x.Value), nil
	case *NullTestExpression:
		if x.Type() == TypeIsNotNull {
			return QuoteIdentifier(x.Column) + " != null", nil
		}
		return QuoteIdentifier(x.Column) + " == null", nil
	case *ComparisonExpression:
		return f.formatComparison(x)
	case *FunctionExpression:
		return f.formatFunction(x)
	case *NotExpression:
		child, err := f.format(x.Child, precUnary)
		if err != nil {
			return "", err
		}
		if needsGroup(x.Child) {
			return "!(" + child + ")", nil
		}
		return "!" + child, nil
	case *ConjunctionExpression:
		return f.formatConjunction(x, outer)
	case nil:
		return "", fmt.Errorf("nil expression")
	}
	return "", fmt.Errorf("unsupported expression type %s", e.Type())
}

// needsGroup reports whether a negated child must be parenthesised.
func needsGroup(e Expression) bool {
	switch e.(type) {
	case *ConstantExpression, *FunctionExpression, *NotExpression:
		return false
	case *ConjunctionExpression:
		return false // parenthesised by formatConjunction
	}
	return true
}

func (f *formatter) formatComparison(c *ComparisonExpression) (string, error) {
	op, ok := comparisonOps[c.Type()]
	if !ok {
		return "", fmt.Errorf("unsupported comparison type %s", c.Type())
	}
	if c.Value == nil {
		return "", fmt.Errorf("comparison on %s has a null operand", c.Column)
	}
	value := c.Value
	if c.Kind == KindDateTime {
		if t, ok := value.(time.Time); ok {
			value = LocalDateTime{Time: t}
		}
	}
	return QuoteIdentifier(c.Column) + " " + op + " " + f.param(value), nil
}

func (f *formatter) formatFunction(fn *FunctionExpression) (string, error) {
	col := QuoteIdentifier(fn.Column)
	switch fn.Name {
	case FuncContains:
		return col + ".Contains(" + f.param(fn.Arg) + ")", nil
	case FuncStartsWith:
		return col + ".StartsWith(" + f.param(fn.Arg) + ")", nil
	case FuncEndsWith:
		return col + ".EndsWith(" + f.param(fn.Arg) + ")", nil
	case FuncIsNullOrEmpty:
		return "String.IsNullOrEmpty(" + col + ")", nil
	case FuncIsNullOrWhitespace:
		return "String.IsNullOrWhiteSpace(" + col + ")", nil
	}
	return "", fmt.Errorf("unsupported function %q", fn.Name)
}

func (f *formatter) formatConjunction(c *ConjunctionExpression, outer int) (string, error) {
	sep, prec := " && ", precAnd
	if c.Type() == TypeConjunctionOr {
		sep, prec = " || ", precOr
	}

	parts := make([]string, 0, len(c.Children))
	for _, child := range c.Children {
		s, err := f.format(child, prec)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	text := strings.Join(parts, sep)
	if outer > prec {
		return "(" + text + ")", nil
	}
	return text, nil
}

var comparisonOps = map[ExpressionType]string{
	TypeCompareEqual:              "==",
	TypeCompareNotEqual:           "!=",
	TypeCompareLessThan:           "<",
	TypeCompareGreaterThan:        ">",
	TypeCompareLessThanOrEqual:    "<=",
	TypeCompareGreaterThanOrEqual: ">=",
}

// QuoteIdentifier returns a quoted identifier if needed.
// Fragments use double quotes for identifiers.
func QuoteIdentifier(name string) string {
	if needsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// needsQuoting returns true if the identifier needs quoting.
func needsQuoting(name string) bool {
	if len(name) == 0 {
		return true
	}

	c := name[0]
	if !isLetter(c) && c != '_' {
		return true
	}
	for i := 1; i < len(name); i++ {
		c = name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return true
		}
	}

	switch strings.ToUpper(name) {
	case "NULL", "TRUE", "FALSE", "STRING":
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
