package expr

// ExpressionType identifies the specific operation of an expression node.
type ExpressionType string

const (
	TypeConstant ExpressionType = "VALUE_CONSTANT"

	// Null tests
	TypeIsNull    ExpressionType = "OPERATOR_IS_NULL"
	TypeIsNotNull ExpressionType = "OPERATOR_IS_NOT_NULL"

	// Comparison operators
	TypeCompareEqual              ExpressionType = "COMPARE_EQUAL"
	TypeCompareNotEqual           ExpressionType = "COMPARE_NOTEQUAL"
	TypeCompareLessThan           ExpressionType = "COMPARE_LESSTHAN"
	TypeCompareGreaterThan        ExpressionType = "COMPARE_GREATERTHAN"
	TypeCompareLessThanOrEqual    ExpressionType = "COMPARE_LESSTHANOREQUALTO"
	TypeCompareGreaterThanOrEqual ExpressionType = "COMPARE_GREATERTHANOREQUALTO"

	TypeFunction ExpressionType = "FUNCTION"

	TypeOperatorNot ExpressionType = "OPERATOR_NOT"

	// Conjunction operators
	TypeConjunctionAnd ExpressionType = "CONJUNCTION_AND"
	TypeConjunctionOr  ExpressionType = "CONJUNCTION_OR"
)

// Expression is the interface implemented by all expression node types.
// Use type assertions or type switches to access specific node data.
type Expression interface {
	// Type returns the specific expression type (e.g., COMPARE_EQUAL, CONJUNCTION_AND).
	Type() ExpressionType

	// expressionMarker is a marker method to prevent external implementation.
	expressionMarker()
}

// BaseExpression contains common fields for all expression types.
type BaseExpression struct {
	ExprType ExpressionType
}

// Type returns the expression type.
func (b *BaseExpression) Type() ExpressionType { return b.ExprType }

func (b *BaseExpression) expressionMarker() {}

// ConstantExpression is a boolean literal.
type ConstantExpression struct {
	BaseExpression
	Value bool
}

// NullTestExpression tests a column for null (IS NULL / IS NOT NULL).
type NullTestExpression struct {
	BaseExpression
	Column string
}

// ComparisonExpression compares a column with a non-null operand
// (=, <>, <, >, <=, >=). Kind is the declared kind of Value.
type ComparisonExpression struct {
	BaseExpression
	Column string
	Kind   ValueKind
	Value  any
}

// FunctionName identifies a string function.
type FunctionName string

const (
	FuncContains           FunctionName = "contains"
	FuncStartsWith         FunctionName = "starts_with"
	FuncEndsWith           FunctionName = "ends_with"
	FuncIsNullOrEmpty      FunctionName = "is_null_or_empty"
	FuncIsNullOrWhitespace FunctionName = "is_null_or_whitespace"
)

// takesArg reports whether the function has a string argument.
func (f FunctionName) takesArg() bool {
	switch f {
	case FuncContains, FuncStartsWith, FuncEndsWith:
		return true
	}
	return false
}

// FunctionExpression applies a string function to a column.
// Arg is used by contains, starts_with and ends_with only.
type FunctionExpression struct {
	BaseExpression
	Name   FunctionName
	Column string
	Arg    string
}

// NotExpression negates its child.
type NotExpression struct {
	BaseExpression
	Child Expression
}

// ConjunctionExpression represents AND/OR with multiple children.
type ConjunctionExpression struct {
	BaseExpression
	Children []Expression
}

// True returns the vacuous expression that selects every row.
func True() *ConstantExpression {
	return &ConstantExpression{BaseExpression: BaseExpression{ExprType: TypeConstant}, Value: true}
}

// False returns the expression that selects no row.
func False() *ConstantExpression {
	return &ConstantExpression{BaseExpression: BaseExpression{ExprType: TypeConstant}, Value: false}
}

// IsTrue reports whether e is the constant true.
func IsTrue(e Expression) bool {
	c, ok := e.(*ConstantExpression)
	return ok && c.Value
}

// IsFalse reports whether e is the constant false.
func IsFalse(e Expression) bool {
	c, ok := e.(*ConstantExpression)
	return ok && !c.Value
}

// IsNull returns a test for column == null.
func IsNull(column string) *NullTestExpression {
	return &NullTestExpression{BaseExpression: BaseExpression{ExprType: TypeIsNull}, Column: column}
}

// IsNotNull returns a test for column != null.
func IsNotNull(column string) *NullTestExpression {
	return &NullTestExpression{BaseExpression: BaseExpression{ExprType: TypeIsNotNull}, Column: column}
}

// Compare returns a comparison of column against value of the given kind.
// t must be one of the TypeCompare* types.
func Compare(column string, t ExpressionType, kind ValueKind, value any) *ComparisonExpression {
	return &ComparisonExpression{
		BaseExpression: BaseExpression{ExprType: t},
		Column:         column,
		Kind:           kind,
		Value:          value,
	}
}

// Call returns a string function applied to column.
func Call(name FunctionName, column, arg string) *FunctionExpression {
	return &FunctionExpression{
		BaseExpression: BaseExpression{ExprType: TypeFunction},
		Name:           name,
		Column:         column,
		Arg:            arg,
	}
}

// Not returns the negation of e. Constants are folded.
func Not(e Expression) Expression {
	if c, ok := e.(*ConstantExpression); ok {
		if c.Value {
			return False()
		}
		return True()
	}
	return &NotExpression{BaseExpression: BaseExpression{ExprType: TypeOperatorNot}, Child: e}
}

// And returns the conjunction of es. True children are dropped, a false
// child makes the result false, and a single remaining child is returned
// as is. And() is true.
func And(es ...Expression) Expression {
	return conjunction(TypeConjunctionAnd, true, es)
}

// Or returns the disjunction of es with the same folding rules as And.
// Or() is false.
func Or(es ...Expression) Expression {
	return conjunction(TypeConjunctionOr, false, es)
}

func conjunction(t ExpressionType, identity bool, es []Expression) Expression {
	children := make([]Expression, 0, len(es))
	for _, e := range es {
		if e == nil {
			continue
		}
		if c, ok := e.(*ConstantExpression); ok {
			if c.Value == identity {
				continue
			}
			return c
		}
		children = append(children, e)
	}
	switch len(children) {
	case 0:
		if identity {
			return True()
		}
		return False()
	case 1:
		return children[0]
	}
	return &ConjunctionExpression{BaseExpression: BaseExpression{ExprType: t}, Children: children}
}
