package filter

import "time"

// FilterType tags the value kind a descriptor filters on.
// Registries map each FilterType to exactly one translator.
// Callers may define additional types for custom descriptors.
type FilterType string

const (
	TypeBoolean        FilterType = "Boolean"
	TypeString         FilterType = "String"
	TypeIntNumeric     FilterType = "IntNumeric"
	TypeDoubleNumeric  FilterType = "DoubleNumeric"
	TypeDateTime       FilterType = "DateTime"
	TypeDateTimeOffset FilterType = "DateTimeOffset"
)

// Descriptor is the interface implemented by all filter descriptor variants.
// Use type assertions or type switches to access variant operands.
type Descriptor interface {
	// PropertyName returns the name of the filtered property.
	PropertyName() string

	// Operator returns the comparison operator.
	Operator() Operator

	// Type returns the variant tag. It is fixed at construction.
	Type() FilterType

	// descriptorMarker is a marker method to prevent external implementation
	// that does not embed Base.
	descriptorMarker()
}

// Base contains the fields common to every descriptor variant.
// Custom variants embed a Base created by NewBase.
type Base struct {
	property string
	op       Operator
	typ      FilterType
}

// NewBase creates the common part of a descriptor.
func NewBase(property string, op Operator, typ FilterType) Base {
	return Base{property: property, op: op, typ: typ}
}

// PropertyName returns the name of the filtered property.
func (b *Base) PropertyName() string { return b.property }

// Operator returns the comparison operator.
func (b *Base) Operator() Operator { return b.op }

// Type returns the variant tag.
func (b *Base) Type() FilterType { return b.typ }

func (b *Base) descriptorMarker() {}

// BooleanDescriptor filters a nullable boolean property. It has no operand.
type BooleanDescriptor struct {
	Base
}

// StringDescriptor filters a nullable string property.
type StringDescriptor struct {
	Base
	// Value is the operand. Nil means absent.
	Value *string
}

// IntNumericDescriptor filters a nullable integer property.
type IntNumericDescriptor struct {
	Base
	// Lower is the single operand of unary comparisons and the lower bound
	// of ranges. Nil means absent.
	Lower *int64
	// Upper is the upper bound of ranges. Nil means absent.
	Upper *int64
}

// DoubleNumericDescriptor filters a nullable floating point property.
type DoubleNumericDescriptor struct {
	Base
	Lower *float64
	Upper *float64
}

// DateTimeDescriptor filters a nullable date-time property by wall clock.
// The location of Start and End is ignored.
type DateTimeDescriptor struct {
	Base
	// Start is the single operand of unary comparisons and the start of ranges.
	Start *time.Time
	// End is the end of ranges.
	End *time.Time
}

// DateTimeOffsetDescriptor filters a nullable date-time-with-offset property.
// Values are compared as absolute instants.
type DateTimeOffsetDescriptor struct {
	Base
	Start *time.Time
	End   *time.Time
}

// NewBooleanFilter creates a boolean descriptor.
func NewBooleanFilter(property string, op Operator) *BooleanDescriptor {
	return &BooleanDescriptor{Base: NewBase(property, op, TypeBoolean)}
}

// NewStringFilter creates a string descriptor. value may be nil.
func NewStringFilter(property string, op Operator, value *string) *StringDescriptor {
	return &StringDescriptor{Base: NewBase(property, op, TypeString), Value: value}
}

// NewIntNumericFilter creates an integer descriptor. Either bound may be nil.
func NewIntNumericFilter(property string, op Operator, lower, upper *int64) *IntNumericDescriptor {
	return &IntNumericDescriptor{Base: NewBase(property, op, TypeIntNumeric), Lower: lower, Upper: upper}
}

// NewDoubleNumericFilter creates a floating point descriptor. Either bound may be nil.
func NewDoubleNumericFilter(property string, op Operator, lower, upper *float64) *DoubleNumericDescriptor {
	return &DoubleNumericDescriptor{Base: NewBase(property, op, TypeDoubleNumeric), Lower: lower, Upper: upper}
}

// NewDateTimeFilter creates a wall-clock date-time descriptor.
func NewDateTimeFilter(property string, op Operator, start, end *time.Time) *DateTimeDescriptor {
	return &DateTimeDescriptor{Base: NewBase(property, op, TypeDateTime), Start: start, End: end}
}

// NewDateTimeOffsetFilter creates an instant date-time descriptor.
func NewDateTimeOffsetFilter(property string, op Operator, start, end *time.Time) *DateTimeOffsetDescriptor {
	return &DateTimeOffsetDescriptor{Base: NewBase(property, op, TypeDateTimeOffset), Start: start, End: end}
}

// Ptr returns a pointer to v. It is a convenience for optional operands.
func Ptr[T any](v T) *T {
	return &v
}
