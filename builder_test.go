package gridfilter

import (
	"errors"
	"testing"

	"github.com/hugr-lab/gridfilter/expr"
	"github.com/hugr-lab/gridfilter/filter"
	"github.com/hugr-lab/gridfilter/translate"
)

type colorTranslator struct{}

func (colorTranslator) FilterType() filter.FilterType { return "Color" }
func (colorTranslator) Operators() []filter.Operator  { return []filter.Operator{filter.IsNull} }
func (colorTranslator) Translate(d filter.Descriptor) (expr.Expression, error) {
	return expr.IsNull(d.PropertyName()), nil
}

// TestRegistryBuilderBasic tests basic registry building functionality.
func TestRegistryBuilderBasic(t *testing.T) {
	reg, err := NewRegistryBuilder().
		Defaults().
		Translator(colorTranslator{}).
		Build()

	if err != nil {
		t.Fatalf("Expected successful build, got error: %v", err)
	}
	if reg.Len() != 7 {
		t.Errorf("Expected 7 translators, got %d", reg.Len())
	}
	if _, err := reg.Resolve("Color"); err != nil {
		t.Errorf("Resolve failed: %v", err)
	}
}

// TestRegistryBuilderOverride tests that later translators replace built-ins.
func TestRegistryBuilderOverride(t *testing.T) {
	custom := &translate.TemplateTranslator{
		Type: filter.TypeString,
		Templates: map[filter.Operator]string{
			filter.IsEqualTo: "{property} == @0",
		},
		Args: func(d filter.Descriptor) []any { return []any{*d.(*filter.StringDescriptor).Value} },
	}

	reg, err := NewRegistryBuilder().Defaults().Template(custom).Build()
	if err != nil {
		t.Fatalf("Expected successful build, got error: %v", err)
	}
	ops, err := reg.Operators(filter.TypeString)
	if err != nil {
		t.Fatalf("Operators failed: %v", err)
	}
	if len(ops) != 1 || ops[0] != filter.IsEqualTo {
		t.Errorf("Expected override operators [IsEqualTo], got %v", ops)
	}
}

// TestRegistryBuilderErrors tests builder validation.
func TestRegistryBuilderErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *RegistryBuilder
	}{
		{"empty", NewRegistryBuilder()},
		{"nil translator", NewRegistryBuilder().Defaults().Translator(nil)},
		{"nil template", NewRegistryBuilder().Defaults().Template(nil)},
		{"empty filter type", NewRegistryBuilder().Template(&translate.TemplateTranslator{
			Templates: map[filter.Operator]string{filter.IsNull: "{property} == null"},
		})},
		{"bad template", NewRegistryBuilder().Template(&translate.TemplateTranslator{
			Type:      "Color",
			Templates: map[filter.Operator]string{filter.IsEqualTo: "{property} == && @0"},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.builder.Build(); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

// TestRegistryBuilderManyParameters tests templates referencing more than a
// handful of parameters.
func TestRegistryBuilderManyParameters(t *testing.T) {
	palette := &translate.TemplateTranslator{
		Type: "Palette",
		Templates: map[filter.Operator]string{
			filter.IsEqualTo: "{property} == @0 || {property} == @1 || {property} == @2 || " +
				"{property} == @3 || {property} == @4 || {property} == @5",
		},
	}
	if got := palette.ParamCount(); got != 6 {
		t.Errorf("Expected 6 parameters, got %d", got)
	}

	reg, err := NewRegistryBuilder().Defaults().Template(palette).Build()
	if err != nil {
		t.Fatalf("Expected successful build, got error: %v", err)
	}
	if _, err := reg.Resolve("Palette"); err != nil {
		t.Errorf("Expected Palette translator, got %v", err)
	}
}

// TestRegistryBuilderBuildOnce tests that Build can only be called once.
func TestRegistryBuilderBuildOnce(t *testing.T) {
	builder := NewRegistryBuilder().Defaults()
	if _, err := builder.Build(); err != nil {
		t.Fatalf("First build failed: %v", err)
	}
	if _, err := builder.Build(); !errors.Is(err, ErrAlreadyBuilt) {
		t.Errorf("Expected ErrAlreadyBuilt, got %v", err)
	}
}
