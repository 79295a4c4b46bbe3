package gridfilter

import (
	"fmt"

	"github.com/hugr-lab/gridfilter/translate"
)

// RegistryBuilder builds translator registries using fluent API.
// Not thread-safe - use only during initialization.
type RegistryBuilder struct {
	defaults    bool
	translators []translate.Translator
	templates   []*translate.TemplateTranslator
	built       bool
}

// NewRegistryBuilder creates a new fluent registry builder.
// Returns builder in "empty" state (no translators).
//
// Example:
//
//	reg, err := gridfilter.NewRegistryBuilder().
//	    Defaults().
//	    Translator(myColorTranslator).
//	    Build()
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

// Defaults adds the six built-in translators. Translators added with
// Translator or Template override built-ins of the same filter type.
// Returns self for method chaining.
func (rb *RegistryBuilder) Defaults() *RegistryBuilder {
	rb.defaults = true
	return rb
}

// Translator adds a translator. A later translator for the same filter type
// replaces an earlier one.
// Returns self for method chaining.
func (rb *RegistryBuilder) Translator(t translate.Translator) *RegistryBuilder {
	rb.translators = append(rb.translators, t)
	return rb
}

// Template adds a template translator. Its templates are validated by Build
// with sample arguments.
// Returns self for method chaining.
//
// Example:
//
//	builder.Template(&translate.TemplateTranslator{
//	    Type: "Color",
//	    Templates: map[filter.Operator]string{
//	        filter.IsEqualTo: "{property} != null && {property} == @0",
//	    },
//	    Args: colorArgs,
//	})
func (rb *RegistryBuilder) Template(t *translate.TemplateTranslator) *RegistryBuilder {
	if t == nil {
		rb.translators = append(rb.translators, nil)
		return rb
	}
	rb.templates = append(rb.templates, t)
	rb.translators = append(rb.translators, t)
	return rb
}

// Build validates the translators and returns the registry.
// Can only be called once.
func (rb *RegistryBuilder) Build() (*translate.Registry, error) {
	if rb.built {
		return nil, fmt.Errorf("registry builder: %w", ErrAlreadyBuilt)
	}

	for i, t := range rb.translators {
		if t == nil {
			return nil, fmt.Errorf("translator %d is nil", i)
		}
		if t.FilterType() == "" {
			return nil, fmt.Errorf("translator %d (%T) has empty filter type", i, t)
		}
	}
	for _, t := range rb.templates {
		if err := t.Validate(templateSamples(t)...); err != nil {
			return nil, err
		}
	}

	rb.built = true

	reg := translate.NewRegistry()
	if rb.defaults {
		for _, t := range translate.Builtins() {
			if _, err := reg.Register(t); err != nil {
				return nil, err
			}
		}
	}
	for _, t := range rb.translators {
		if _, err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	if reg.Len() == 0 {
		return nil, fmt.Errorf("%w: registry has no translators", ErrInvalidConfig)
	}
	return reg, nil
}

// templateSamples binds every parameter t references during validation.
func templateSamples(t *translate.TemplateTranslator) []any {
	samples := make([]any, t.ParamCount())
	for i := range samples {
		samples[i] = ""
	}
	return samples
}
