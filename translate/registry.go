package translate

import (
	"errors"
	"slices"
	"sync"

	"github.com/hugr-lab/gridfilter/expr"
	"github.com/hugr-lab/gridfilter/filter"
)

// Translator compiles descriptors of one FilterType into expressions.
// Implementations MUST be goroutine-safe and free of side effects.
type Translator interface {
	// FilterType returns the descriptor variant this translator handles.
	FilterType() filter.FilterType

	// Operators returns the supported operators.
	Operators() []filter.Operator

	// Translate returns the expression selecting rows that satisfy d.
	// A descriptor of another variant yields expr.True().
	// An operator outside Operators() yields *filter.UnsupportedOperatorError.
	Translate(d filter.Descriptor) (expr.Expression, error)
}

var (
	// ErrNotRegistered is matched by every NotRegisteredError.
	ErrNotRegistered = errors.New("translator not registered")

	// ErrNilTranslator is returned when registering a nil translator.
	ErrNilTranslator = errors.New("translator is nil")
)

// NotRegisteredError indicates a FilterType without a translator.
type NotRegisteredError struct {
	Type filter.FilterType
}

func (e *NotRegisteredError) Error() string {
	return "no translator registered for type " + string(e.Type)
}

func (e *NotRegisteredError) Is(target error) bool { return target == ErrNotRegistered }

// Registry maps each FilterType to exactly one Translator.
// Registering a translator for a type that already has one replaces it.
// Registry is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	translators map[filter.FilterType]Translator
}

// NewRegistry creates a registry holding ts. Later translators override
// earlier ones of the same type; nil entries are skipped.
func NewRegistry(ts ...Translator) *Registry {
	r := &Registry{translators: make(map[filter.FilterType]Translator, len(ts))}
	for _, t := range ts {
		if t != nil {
			r.translators[t.FilterType()] = t
		}
	}
	return r
}

// Builtins returns the translators of the built-in descriptor variants.
func Builtins() []Translator {
	return []Translator{
		BooleanTranslator{},
		StringTranslator{},
		IntNumericTranslator{},
		DoubleNumericTranslator{},
		DateTimeTranslator{},
		DateTimeOffsetTranslator{},
	}
}

// DefaultRegistry returns a new registry with one translator per built-in variant.
func DefaultRegistry() *Registry {
	return NewRegistry(Builtins()...)
}

// Register associates t with its FilterType and reports whether it replaced
// an existing translator.
func (r *Registry) Register(t Translator) (bool, error) {
	if t == nil {
		return false, ErrNilTranslator
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, replaced := r.translators[t.FilterType()]
	r.translators[t.FilterType()] = t
	return replaced, nil
}

// Resolve returns the translator for typ.
func (r *Registry) Resolve(typ filter.FilterType) (Translator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.translators[typ]
	if !ok {
		return nil, &NotRegisteredError{Type: typ}
	}
	return t, nil
}

// Types returns the registered filter types in sorted order.
func (r *Registry) Types() []filter.FilterType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]filter.FilterType, 0, len(r.translators))
	for typ := range r.translators {
		types = append(types, typ)
	}
	slices.Sort(types)
	return types
}

// Len returns the number of registered translators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.translators)
}

// Operators returns the operators supported for typ, for populating
// operator pickers.
func (r *Registry) Operators(typ filter.FilterType) ([]filter.Operator, error) {
	t, err := r.Resolve(typ)
	if err != nil {
		return nil, err
	}
	return t.Operators(), nil
}

// Translate resolves the translator for d and translates d.
func (r *Registry) Translate(d filter.Descriptor) (expr.Expression, error) {
	t, err := r.Resolve(d.Type())
	if err != nil {
		return nil, err
	}
	return t.Translate(d)
}
