package translate

import (
	"slices"

	"github.com/hugr-lab/gridfilter/expr"
	"github.com/hugr-lab/gridfilter/filter"
)

// BooleanTranslator translates *filter.BooleanDescriptor.
type BooleanTranslator struct{}

var booleanOperators = []filter.Operator{
	filter.IsNull,
	filter.IsNotNull,
	filter.All,
	filter.Yes,
	filter.No,
}

func (BooleanTranslator) FilterType() filter.FilterType { return filter.TypeBoolean }

func (BooleanTranslator) Operators() []filter.Operator { return slices.Clone(booleanOperators) }

func (BooleanTranslator) Translate(d filter.Descriptor) (expr.Expression, error) {
	if _, ok := d.(*filter.BooleanDescriptor); !ok {
		return expr.True(), nil
	}

	prop := d.PropertyName()
	switch d.Operator() {
	case filter.IsNull:
		return expr.IsNull(prop), nil
	case filter.IsNotNull, filter.All:
		return expr.IsNotNull(prop), nil
	case filter.Yes:
		return guarded(prop, expr.TypeCompareEqual, expr.KindBool, true), nil
	case filter.No:
		return guarded(prop, expr.TypeCompareEqual, expr.KindBool, false), nil
	}
	return nil, &filter.UnsupportedOperatorError{Type: filter.TypeBoolean, Operator: d.Operator()}
}

// StringTranslator translates *filter.StringDescriptor.
// An absent operand of the substring operators is treated as "".
type StringTranslator struct{}

var stringOperators = []filter.Operator{
	filter.IsNull,
	filter.IsNotNull,
	filter.IsEqualTo,
	filter.IsNotEqualTo,
	filter.Contains,
	filter.NotContains,
	filter.StartsWith,
	filter.EndsWith,
	filter.IsEmpty,
	filter.IsNotEmpty,
	filter.IsNullOrWhitespace,
	filter.IsNotNullOrWhitespace,
}

func (StringTranslator) FilterType() filter.FilterType { return filter.TypeString }

func (StringTranslator) Operators() []filter.Operator { return slices.Clone(stringOperators) }

func (StringTranslator) Translate(d filter.Descriptor) (expr.Expression, error) {
	sd, ok := d.(*filter.StringDescriptor)
	if !ok {
		return expr.True(), nil
	}

	prop := sd.PropertyName()
	value := ""
	if sd.Value != nil {
		value = *sd.Value
	}
	call := func(name expr.FunctionName) expr.Expression {
		return expr.And(expr.IsNotNull(prop), expr.Call(name, prop, value))
	}

	switch sd.Operator() {
	case filter.IsNull:
		return expr.IsNull(prop), nil
	case filter.IsNotNull:
		return expr.IsNotNull(prop), nil
	case filter.IsEqualTo:
		if sd.Value == nil {
			return expr.IsNull(prop), nil
		}
		return guarded(prop, expr.TypeCompareEqual, expr.KindString, value), nil
	case filter.IsNotEqualTo:
		if sd.Value == nil {
			return expr.IsNotNull(prop), nil
		}
		return expr.Compare(prop, expr.TypeCompareNotEqual, expr.KindString, value), nil
	case filter.Contains:
		return call(expr.FuncContains), nil
	case filter.NotContains:
		return expr.And(expr.IsNotNull(prop), expr.Not(expr.Call(expr.FuncContains, prop, value))), nil
	case filter.StartsWith:
		return call(expr.FuncStartsWith), nil
	case filter.EndsWith:
		return call(expr.FuncEndsWith), nil
	case filter.IsEmpty:
		return expr.Call(expr.FuncIsNullOrEmpty, prop, ""), nil
	case filter.IsNotEmpty:
		return expr.Not(expr.Call(expr.FuncIsNullOrEmpty, prop, "")), nil
	case filter.IsNullOrWhitespace:
		return expr.Call(expr.FuncIsNullOrWhitespace, prop, ""), nil
	case filter.IsNotNullOrWhitespace:
		return expr.Not(expr.Call(expr.FuncIsNullOrWhitespace, prop, "")), nil
	}
	return nil, &filter.UnsupportedOperatorError{Type: filter.TypeString, Operator: sd.Operator()}
}

// IntNumericTranslator translates *filter.IntNumericDescriptor.
type IntNumericTranslator struct{}

func (IntNumericTranslator) FilterType() filter.FilterType { return filter.TypeIntNumeric }

func (IntNumericTranslator) Operators() []filter.Operator { return slices.Clone(numericOperators) }

func (IntNumericTranslator) Translate(d filter.Descriptor) (expr.Expression, error) {
	nd, ok := d.(*filter.IntNumericDescriptor)
	if !ok {
		return expr.True(), nil
	}
	return translateRange(filter.TypeIntNumeric, numericOperators, expr.KindInt, nd, nd.Lower, nd.Upper)
}

// DoubleNumericTranslator translates *filter.DoubleNumericDescriptor.
type DoubleNumericTranslator struct{}

func (DoubleNumericTranslator) FilterType() filter.FilterType { return filter.TypeDoubleNumeric }

func (DoubleNumericTranslator) Operators() []filter.Operator { return slices.Clone(numericOperators) }

func (DoubleNumericTranslator) Translate(d filter.Descriptor) (expr.Expression, error) {
	nd, ok := d.(*filter.DoubleNumericDescriptor)
	if !ok {
		return expr.True(), nil
	}
	return translateRange(filter.TypeDoubleNumeric, numericOperators, expr.KindDouble, nd, nd.Lower, nd.Upper)
}

// DateTimeTranslator translates *filter.DateTimeDescriptor using wall-clock comparison.
type DateTimeTranslator struct{}

func (DateTimeTranslator) FilterType() filter.FilterType { return filter.TypeDateTime }

func (DateTimeTranslator) Operators() []filter.Operator { return slices.Clone(dateOperators) }

func (DateTimeTranslator) Translate(d filter.Descriptor) (expr.Expression, error) {
	dd, ok := d.(*filter.DateTimeDescriptor)
	if !ok {
		return expr.True(), nil
	}
	return translateRange(filter.TypeDateTime, dateOperators, expr.KindDateTime, dd, dd.Start, dd.End)
}

// DateTimeOffsetTranslator translates *filter.DateTimeOffsetDescriptor using
// instant comparison.
type DateTimeOffsetTranslator struct{}

func (DateTimeOffsetTranslator) FilterType() filter.FilterType { return filter.TypeDateTimeOffset }

func (DateTimeOffsetTranslator) Operators() []filter.Operator { return slices.Clone(dateOperators) }

func (DateTimeOffsetTranslator) Translate(d filter.Descriptor) (expr.Expression, error) {
	dd, ok := d.(*filter.DateTimeOffsetDescriptor)
	if !ok {
		return expr.True(), nil
	}
	return translateRange(filter.TypeDateTimeOffset, dateOperators, expr.KindDateTimeOffset, dd, dd.Start, dd.End)
}
