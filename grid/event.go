package grid

// ChangeKind identifies what a mutation changed.
type ChangeKind int

const (
	FilterAdded ChangeKind = iota + 1
	FilterRemoved
	FiltersCleared
	SortChanged
	WindowChanged
)

func (k ChangeKind) String() string {
	switch k {
	case FilterAdded:
		return "FilterAdded"
	case FilterRemoved:
		return "FilterRemoved"
	case FiltersCleared:
		return "FiltersCleared"
	case SortChanged:
		return "SortChanged"
	case WindowChanged:
		return "WindowChanged"
	}
	return "Unknown"
}

// Change is one recorded mutation.
type Change struct {
	Kind ChangeKind
	// Property is set for FilterAdded and FilterRemoved.
	Property string
}

// Event is delivered to handlers after a mutation.
type Event struct {
	// State is the mutated state itself, not a copy. Use State.Snapshot for a
	// consistent view.
	State *State
	// Changes lists the mutations in the order they were applied.
	Changes []Change
	// Version is the state version right after the mutation.
	Version uint64
}

// Has reports whether the event contains a change of the given kind.
func (e Event) Has(kind ChangeKind) bool {
	for _, c := range e.Changes {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// Handler receives change notifications.
type Handler func(Event)
