package translate

import (
	"slices"

	"github.com/hugr-lab/gridfilter/expr"
	"github.com/hugr-lab/gridfilter/filter"
)

var (
	numericOperators = []filter.Operator{
		filter.IsNull,
		filter.IsNotNull,
		filter.IsEqualTo,
		filter.IsNotEqualTo,
		filter.IsGreaterThan,
		filter.IsGreaterThanOrEqualTo,
		filter.IsLessThan,
		filter.IsLessThanOrEqualTo,
		filter.BetweenExclusive,
		filter.BetweenInclusive,
	}

	dateOperators = append(slices.Clone(numericOperators), filter.Before, filter.After)
)

func supports(ops []filter.Operator, op filter.Operator) bool {
	return slices.Contains(ops, op)
}

// guarded returns (p != null) AND (p <t> v).
func guarded(prop string, t expr.ExpressionType, kind expr.ValueKind, v any) expr.Expression {
	return expr.And(expr.IsNotNull(prop), expr.Compare(prop, t, kind, v))
}

// translateRange implements the operator table shared by the numeric and
// date kinds. lower is the operand of unary comparisons.
func translateRange[T any](typ filter.FilterType, ops []filter.Operator, kind expr.ValueKind,
	d filter.Descriptor, lower, upper *T) (expr.Expression, error) {

	op, prop := d.Operator(), d.PropertyName()
	if !supports(ops, op) {
		return nil, &filter.UnsupportedOperatorError{Type: typ, Operator: op}
	}

	// bound returns the guarded comparison, or true when the operand is absent.
	bound := func(t expr.ExpressionType, v *T) expr.Expression {
		if v == nil {
			return expr.True()
		}
		return guarded(prop, t, kind, *v)
	}

	// between conjoins the present bounds under a single guard.
	between := func(lowerType, upperType expr.ExpressionType) expr.Expression {
		clauses := []expr.Expression{}
		if lower != nil {
			clauses = append(clauses, expr.Compare(prop, lowerType, kind, *lower))
		}
		if upper != nil {
			clauses = append(clauses, expr.Compare(prop, upperType, kind, *upper))
		}
		if len(clauses) == 0 {
			return expr.True()
		}
		return expr.And(append([]expr.Expression{expr.IsNotNull(prop)}, clauses...)...)
	}

	switch op {
	case filter.IsNull:
		return expr.IsNull(prop), nil
	case filter.IsNotNull:
		return expr.IsNotNull(prop), nil
	case filter.IsEqualTo:
		if lower == nil {
			return expr.IsNull(prop), nil
		}
		return guarded(prop, expr.TypeCompareEqual, kind, *lower), nil
	case filter.IsNotEqualTo:
		if lower == nil {
			return expr.IsNotNull(prop), nil
		}
		return expr.Compare(prop, expr.TypeCompareNotEqual, kind, *lower), nil
	case filter.IsGreaterThan, filter.After:
		return bound(expr.TypeCompareGreaterThan, lower), nil
	case filter.IsGreaterThanOrEqualTo:
		return bound(expr.TypeCompareGreaterThanOrEqual, lower), nil
	case filter.IsLessThan, filter.Before:
		return bound(expr.TypeCompareLessThan, lower), nil
	case filter.IsLessThanOrEqualTo:
		return bound(expr.TypeCompareLessThanOrEqual, lower), nil
	case filter.BetweenExclusive:
		return between(expr.TypeCompareGreaterThan, expr.TypeCompareLessThan), nil
	case filter.BetweenInclusive:
		return between(expr.TypeCompareGreaterThanOrEqual, expr.TypeCompareLessThanOrEqual), nil
	}
	return nil, &filter.UnsupportedOperatorError{Type: typ, Operator: op}
}
