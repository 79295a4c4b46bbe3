// Package query applies grid state to record sources.
//
// An Executor turns a grid.Snapshot into a Plan: every descriptor whose
// operator is not None is translated through a translate.Registry and the
// results are AND-folded into one expression. A Plan selects rows of any
// expr.Binding, filtering first and sorting second; the pagination window
// is applied last, and total counts are always taken before the window.
//
//	exec := query.NewExecutor(translate.DefaultRegistry())
//	page, err := exec.Query(ctx, table, state)
//	if err != nil {
//	    return err
//	}
//	defer page.Release()
//
// Any translation failure fails the whole query. There is no partial
// filtering.
package query
