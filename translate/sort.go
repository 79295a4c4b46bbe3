package translate

import (
	"errors"
	"slices"

	"github.com/hugr-lab/gridfilter/expr"
	"github.com/hugr-lab/gridfilter/filter"
)

// Order is a three-way comparison between two rows of a Binding.
type Order func(i, j int) int

// SortTranslator turns a SortColumn into a row ordering.
type SortTranslator struct{}

// Translate returns the ordering of b by sc. Nulls sort first ascending and
// last descending. A nil Order with a nil error means the rows keep their
// current order: sc has no direction or names a property b does not have.
func (SortTranslator) Translate(b expr.Binding, sc filter.SortColumn) (Order, error) {
	if sc.Direction == filter.NoDirection || sc.Property == "" {
		return nil, nil
	}
	col, err := b.Column(sc.Property)
	if errors.Is(err, expr.ErrUnknownColumn) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	kind := col.Kind()
	asc := func(i, j int) int {
		ni, nj := col.IsNull(i), col.IsNull(j)
		switch {
		case ni && nj:
			return 0
		case ni:
			return -1
		case nj:
			return 1
		}
		return expr.CompareValues(kind, col.Value(i), col.Value(j))
	}
	if sc.Direction == filter.Descending {
		return func(i, j int) int { return asc(j, i) }, nil
	}
	return asc, nil
}

// SortRows stably orders row indices. A nil order leaves rows unchanged.
func SortRows(rows []int, order Order) {
	if order == nil {
		return
	}
	slices.SortStableFunc(rows, func(a, b int) int { return order(a, b) })
}
