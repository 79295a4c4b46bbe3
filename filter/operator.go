package filter

// Operator identifies the comparison a descriptor applies to its property.
// Operators are opaque named values; compare them with ==.
// The zero value is None.
type Operator struct {
	name string
}

// Canonical operators.
var (
	None                   = Operator{}
	IsNull                 = Operator{"IsNull"}
	IsNotNull              = Operator{"IsNotNull"}
	IsEqualTo              = Operator{"IsEqualTo"}
	IsNotEqualTo           = Operator{"IsNotEqualTo"}
	IsGreaterThan          = Operator{"IsGreaterThan"}
	IsGreaterThanOrEqualTo = Operator{"IsGreaterThanOrEqualTo"}
	IsLessThan             = Operator{"IsLessThan"}
	IsLessThanOrEqualTo    = Operator{"IsLessThanOrEqualTo"}
	Before                 = Operator{"Before"}
	After                  = Operator{"After"}
	BetweenExclusive       = Operator{"BetweenExclusive"}
	BetweenInclusive       = Operator{"BetweenInclusive"}
	Contains               = Operator{"Contains"}
	NotContains            = Operator{"NotContains"}
	StartsWith             = Operator{"StartsWith"}
	EndsWith               = Operator{"EndsWith"}
	IsEmpty                = Operator{"IsEmpty"}
	IsNotEmpty             = Operator{"IsNotEmpty"}
	IsNullOrWhitespace     = Operator{"IsNullOrWhitespace"}
	IsNotNullOrWhitespace  = Operator{"IsNotNullOrWhitespace"}
	Yes                    = Operator{"Yes"}
	No                     = Operator{"No"}
	All                    = Operator{"All"}
)

var operators = []Operator{
	None, IsNull, IsNotNull, IsEqualTo, IsNotEqualTo,
	IsGreaterThan, IsGreaterThanOrEqualTo, IsLessThan, IsLessThanOrEqualTo,
	Before, After, BetweenExclusive, BetweenInclusive,
	Contains, NotContains, StartsWith, EndsWith,
	IsEmpty, IsNotEmpty, IsNullOrWhitespace, IsNotNullOrWhitespace,
	Yes, No, All,
}

// Operators returns the canonical operator set in declaration order.
func Operators() []Operator {
	out := make([]Operator, len(operators))
	copy(out, operators)
	return out
}

// String returns the canonical operator name.
func (o Operator) String() string {
	if o.name == "" {
		return "None"
	}
	return o.name
}

// IsNone reports whether o is the None operator.
func (o Operator) IsNone() bool { return o.name == "" }

// ParseOperator returns the canonical operator with the given name.
func ParseOperator(name string) (Operator, error) {
	for _, op := range operators {
		if op.String() == name {
			return op, nil
		}
	}
	return None, &UnknownOperatorError{Name: name}
}

// MarshalText implements encoding.TextMarshaler.
func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Operator) UnmarshalText(text []byte) error {
	op, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}
