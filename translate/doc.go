// Package translate compiles filter descriptors into expressions.
//
// Each built-in descriptor variant has a Translator; a Registry maps filter
// types to translators and is the single entry point used by query
// application:
//
//	reg := translate.DefaultRegistry()
//	e, err := reg.Translate(filter.NewIntNumericFilter("Age", filter.IsGreaterThan, filter.Ptr[int64](30), nil))
//	// e is: Age != null && Age > @0
//
// Every relational test is null-guarded: it is conjoined with a
// "property is not null" test so null values never satisfy it. Operators a
// translator does not support fail with *filter.UnsupportedOperatorError.
// A descriptor routed to a translator of another variant yields expr.True().
//
// Custom variants register their own Translator, or a TemplateTranslator
// built from text fragments, on a Registry:
//
//	replaced, err := reg.Register(myTranslator)
//
// Registering a translator for a type that already has one replaces it.
package translate
