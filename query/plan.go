package query

import (
	"context"
	"fmt"

	"github.com/hugr-lab/gridfilter/expr"
	"github.com/hugr-lab/gridfilter/filter"
	"github.com/hugr-lab/gridfilter/grid"
	"github.com/hugr-lab/gridfilter/translate"
)

// checkEvery is the number of rows evaluated between context checks.
const checkEvery = 4096

// Plan is the translated form of one grid snapshot.
type Plan struct {
	// Filter is the AND-fold of all translated descriptors. It is
	// expr.True() when no descriptor filters.
	Filter expr.Expression
	// Fragment is the text rendering of Filter.
	Fragment expr.Fragment
	Sort     *filter.SortColumn
	Window   *grid.Window
	// Version is the state version the plan was built from.
	Version uint64
}

// Select returns the indices of the rows of b that pass the filter, in sort
// order. The window is not applied.
func (p *Plan) Select(ctx context.Context, b expr.Binding) ([]int, error) {
	rows, err := p.filter(ctx, b)
	if err != nil {
		return nil, err
	}
	if p.Sort == nil {
		return rows, nil
	}
	order, err := translate.SortTranslator{}.Translate(b, *p.Sort)
	if err != nil {
		return nil, fmt.Errorf("sort by %s: %w", p.Sort.Property, err)
	}
	translate.SortRows(rows, order)
	return rows, nil
}

// Count returns the number of rows of b that pass the filter.
func (p *Plan) Count(ctx context.Context, b expr.Binding) (int, error) {
	rows, err := p.filter(ctx, b)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Page returns the part of rows selected by the plan window.
func (p *Plan) Page(rows []int) []int {
	if p.Window == nil {
		return rows
	}
	lo, hi := p.Window.Bounds(len(rows))
	return rows[lo:hi]
}

func (p *Plan) filter(ctx context.Context, b expr.Binding) ([]int, error) {
	n := b.Len()
	if c, ok := p.Filter.(*expr.ConstantExpression); ok {
		if !c.Value {
			return []int{}, nil
		}
		rows := make([]int, n)
		for i := range rows {
			rows[i] = i
		}
		return rows, nil
	}

	pred, err := expr.Compile(p.Filter, b)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	rows := make([]int, 0, n)
	for i := range n {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if pred(i) {
			rows = append(rows, i)
		}
	}
	return rows, nil
}
