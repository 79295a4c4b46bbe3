package grid

import (
	"reflect"

	"github.com/hugr-lab/gridfilter/filter"
)

// Tx groups several mutations into one notification. A Tx is only valid
// inside the Mutate callback that received it.
type Tx struct {
	s       *State
	changes []Change
}

// AddFilter stores d under its property name, replacing any descriptor of
// any variant already stored there. A nil descriptor, including a typed
// nil pointer, is ignored.
func (tx *Tx) AddFilter(d filter.Descriptor) {
	if isNil(d) {
		return
	}
	tx.s.filters[d.PropertyName()] = d
	tx.record(Change{Kind: FilterAdded, Property: d.PropertyName()})
}

// RemoveFilter deletes the descriptor stored under property. The change is
// recorded even when no descriptor was stored.
func (tx *Tx) RemoveFilter(property string) {
	delete(tx.s.filters, property)
	tx.record(Change{Kind: FilterRemoved, Property: property})
}

// ClearFilters deletes every descriptor.
func (tx *Tx) ClearFilters() {
	clear(tx.s.filters)
	tx.record(Change{Kind: FiltersCleared})
}

// SetSortColumn replaces the sort column.
func (tx *Tx) SetSortColumn(sc filter.SortColumn) {
	tx.s.sort = &sc
	tx.record(Change{Kind: SortChanged})
}

// ClearSortColumn removes the sort column.
func (tx *Tx) ClearSortColumn() {
	tx.s.sort = nil
	tx.record(Change{Kind: SortChanged})
}

// SetSkipTop replaces the pagination window. Negative skip is clamped to 0
// and top <= 0 means no limit.
func (tx *Tx) SetSkipTop(skip, top int) {
	w := NewWindow(skip, top)
	tx.s.window = &w
	tx.record(Change{Kind: WindowChanged})
}

// ClearSkipTop removes the pagination window.
func (tx *Tx) ClearSkipTop() {
	tx.s.window = nil
	tx.record(Change{Kind: WindowChanged})
}

func (tx *Tx) record(c Change) {
	tx.changes = append(tx.changes, c)
}

// Filter returns the descriptor currently stored under property, including
// changes made earlier in this Tx.
func (tx *Tx) Filter(property string) (filter.Descriptor, bool) {
	d, ok := tx.s.filters[property]
	return d, ok
}

func isNil(d filter.Descriptor) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
