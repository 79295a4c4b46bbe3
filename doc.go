// Package gridfilter provides the filter and query core of a filterable
// data grid.
//
// A grid keeps its filters, sort column and pagination window in a
// grid.State. Each filter is a typed descriptor (boolean, string, integer,
// double, date-time or date-time with offset) naming a property, an
// operator and optional operands. Translators turn descriptors into
// null-safe boolean expressions, which compile to row predicates over Arrow
// record batches or struct slices and render as parameterised text
// fragments.
//
// # Quick Start
//
//	table, err := source.FromStructs("people", people, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer table.Release()
//
//	engine, err := gridfilter.New(gridfilter.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	state := grid.New()
//	state.Mutate(func(tx *grid.Tx) {
//	    tx.AddFilter(filter.NewStringFilter("Name", filter.Contains, filter.Ptr("JSON")))
//	    tx.SetSortColumn(filter.NewSortColumn("Age", filter.Descending))
//	    tx.SetSkipTop(0, 25)
//	})
//
//	page, err := engine.Query(ctx, table, state)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer page.Release()
//	fmt.Println(page.TotalCount, page.Records.NumRows())
//
// # Architecture
//
//   - filter: operators, filter types, descriptors and sort columns
//   - grid: the mutable grid state and its change notifications
//   - expr: expression trees, bindings, compilation and text fragments
//   - translate: the translator registry and built-in translators
//   - source: Arrow tables, struct slice tables and column bindings
//   - query: query planning and application
//   - gridfeed: publishing grid state over NATS
//   - auth, flight: serving grid views over Arrow Flight with bearer tokens
//
// # Null Safety
//
// Relational tests are always guarded: a filter such as Age > 30 is
// translated to Age != null && Age > @0, so rows with a null property never
// pass a relational test. IsEqualTo without an operand selects null rows;
// IsNotEqualTo without an operand selects non-null rows, and IsNotEqualTo
// with an operand lets null rows pass.
//
// # Custom Filter Types
//
// Callers extend the registry with translators for their own descriptor
// variants, either in code or from text templates:
//
//	reg, err := gridfilter.NewRegistryBuilder().
//	    Defaults().
//	    Template(&translate.TemplateTranslator{
//	        Type: "Color",
//	        Templates: map[filter.Operator]string{
//	            filter.IsEqualTo: "{property} != null && {property} == @0",
//	        },
//	        Args: func(d filter.Descriptor) []any { return []any{d.(*Color).Hex} },
//	    }).
//	    Build()
//
// # Re-query on Change
//
// Engine.Watch re-runs a query whenever the grid state changes:
//
//	stop := engine.Watch(ctx, table, state, func(page *query.Page, err error) {
//	    if err != nil {
//	        return
//	    }
//	    defer page.Release()
//	    render(page)
//	})
//	defer stop()
package gridfilter
