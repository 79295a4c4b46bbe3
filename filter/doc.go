// Package filter defines the filter descriptor model of a filterable grid.
//
// A descriptor states one constraint on one property: the property name, an
// Operator and zero, one or two typed operands. The variant a descriptor
// belongs to is identified by its FilterType, which routes it to a translator
// (see package translate).
//
// # Operators
//
// Operators are opaque values compared with ==. The zero value is None,
// which disables a descriptor without removing it:
//
//	d := filter.NewIntNumericFilter("Age", filter.IsGreaterThan, filter.Ptr[int64](30), nil)
//	if d.Operator() == filter.IsGreaterThan {
//	    ...
//	}
//
// # Variants
//
// The built-in variants are BooleanDescriptor, StringDescriptor,
// IntNumericDescriptor, DoubleNumericDescriptor, DateTimeDescriptor and
// DateTimeOffsetDescriptor. Operands are pointers; nil means the operand is
// absent. Custom variants embed a Base created by NewBase with their own
// FilterType:
//
//	type ColorDescriptor struct {
//	    filter.Base
//	    Color string
//	}
//
//	d := &ColorDescriptor{Base: filter.NewBase("Color", filter.IsEqualTo, "Color"), Color: "red"}
//
// # Sorting
//
// SortColumn pairs a property name with a Direction.
package filter
