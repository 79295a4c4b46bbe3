package translate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hugr-lab/gridfilter/expr"
	"github.com/hugr-lab/gridfilter/filter"
)

// PropertyPlaceholder is replaced by the quoted property name in templates.
const PropertyPlaceholder = "{property}"

// TemplateTranslator translates custom descriptor variants from text
// fragment templates, one per supported operator:
//
//	colors := &translate.TemplateTranslator{
//	    Type: "Color",
//	    Templates: map[filter.Operator]string{
//	        filter.IsEqualTo:    "{property} != null && {property} == @0",
//	        filter.IsNotEqualTo: "{property} != @0",
//	    },
//	    Args: func(d filter.Descriptor) []any {
//	        return []any{d.(*ColorDescriptor).Color}
//	    },
//	}
//
// Operands are always bound as @N parameters and never spliced into the text.
type TemplateTranslator struct {
	Type      filter.FilterType
	Templates map[filter.Operator]string
	// Args returns the parameters referenced by the templates. May be nil
	// when no template references a parameter.
	Args func(d filter.Descriptor) []any
}

// FilterType implements Translator.
func (t *TemplateTranslator) FilterType() filter.FilterType { return t.Type }

// Operators implements Translator. Operators are returned in canonical order.
func (t *TemplateTranslator) Operators() []filter.Operator {
	ops := make([]filter.Operator, 0, len(t.Templates))
	for _, op := range filter.Operators() {
		if _, ok := t.Templates[op]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// Translate implements Translator.
func (t *TemplateTranslator) Translate(d filter.Descriptor) (expr.Expression, error) {
	if d.Type() != t.Type {
		return expr.True(), nil
	}
	tpl, ok := t.Templates[d.Operator()]
	if !ok {
		return nil, &filter.UnsupportedOperatorError{Type: t.Type, Operator: d.Operator()}
	}

	var args []any
	if t.Args != nil {
		args = t.Args(d)
	}
	text := strings.ReplaceAll(tpl, PropertyPlaceholder, expr.QuoteIdentifier(d.PropertyName()))
	e, err := expr.Parse(text, args...)
	if err != nil {
		return nil, fmt.Errorf("template for %s %s: %w", t.Type, d.Operator(), err)
	}
	return e, nil
}

// ParamCount returns one more than the highest @N referenced by any
// template, or 0 when no template takes parameters.
func (t *TemplateTranslator) ParamCount() int {
	n := 0
	for _, tpl := range t.Templates {
		for i := 0; i < len(tpl); i++ {
			if tpl[i] != '@' {
				continue
			}
			j := i + 1
			for j < len(tpl) && tpl[j] >= '0' && tpl[j] <= '9' {
				j++
			}
			if j == i+1 {
				continue
			}
			if idx, err := strconv.Atoi(tpl[i+1 : j]); err == nil && idx+1 > n {
				n = idx + 1
			}
			i = j - 1
		}
	}
	return n
}

// Validate checks that every template parses with the given sample arguments.
func (t *TemplateTranslator) Validate(sample ...any) error {
	if t.Type == "" {
		return fmt.Errorf("template translator has no filter type")
	}
	for op, tpl := range t.Templates {
		text := strings.ReplaceAll(tpl, PropertyPlaceholder, "p")
		if _, err := expr.Parse(text, sample...); err != nil {
			return fmt.Errorf("template for %s %s: %w", t.Type, op, err)
		}
	}
	return nil
}
