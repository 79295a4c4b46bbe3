// Package grid holds the shared, mutable state of one filterable grid:
// at most one filter descriptor per property, an optional sort column and
// an optional skip/top window.
//
// Every mutation raises exactly one synchronous notification to the
// subscribed handlers. Several changes can be grouped into one
// notification with Mutate:
//
//	st := grid.New()
//	unsubscribe := st.Subscribe(func(ev grid.Event) {
//	    page, err := executor.Query(ctx, table, ev.State)
//	    ...
//	})
//	defer unsubscribe()
//
//	st.Mutate(func(tx *grid.Tx) {
//	    tx.AddFilter(filter.NewIntNumericFilter("Age", filter.IsGreaterThan, filter.Ptr[int64](30), nil))
//	    tx.SetSortColumn(filter.NewSortColumn("Name", filter.Ascending))
//	    tx.SetSkipTop(0, 20)
//	})
//
// A handler that mutates the state sees its change applied immediately, but
// the resulting notification is delivered after the current dispatch
// completes. Handlers never recurse.
//
// The grid and gridfeed tests use testify; the other packages keep to the
// plain testing style.
package grid
