package grid

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/hugr-lab/gridfilter/filter"
	"github.com/hugr-lab/gridfilter/internal/recovery"
)

// State is the filter, sort and window state of one grid.
// A State is safe for concurrent use. Mutations are serialized and
// notifications are delivered outside the state lock.
type State struct {
	mu      sync.RWMutex
	filters map[string]filter.Descriptor
	sort    *filter.SortColumn
	window  *Window
	version uint64

	// nmu guards handlers and the notification queue.
	nmu         sync.Mutex
	handlers    []subscription
	nextID      uint64
	pending     []Event
	dispatching bool

	logger *slog.Logger
}

type subscription struct {
	id uint64
	fn Handler
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger used to report recovered handler panics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *State) { s.logger = logger }
}

// New creates an empty state.
func New(opts ...Option) *State {
	s := &State{
		filters: make(map[string]filter.Descriptor),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Mutate applies the changes made by fn and raises one notification if fn
// recorded at least one change. Reads from inside fn must go through tx;
// calling other State methods from fn deadlocks.
func (s *State) Mutate(fn func(tx *Tx)) {
	if fn == nil {
		return
	}
	if s.apply(fn) {
		s.dispatch()
	}
}

func (s *State) apply(fn func(tx *Tx)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{s: s}
	fn(tx)
	if len(tx.changes) == 0 {
		return false
	}
	s.version++

	// queued under the state lock so events keep mutation order
	s.nmu.Lock()
	s.pending = append(s.pending, Event{State: s, Changes: tx.changes, Version: s.version})
	s.nmu.Unlock()
	return true
}

// dispatch delivers queued events unless another call is already doing so.
// Events queued while handlers run are delivered by the active dispatcher.
func (s *State) dispatch() {
	s.nmu.Lock()
	if s.dispatching {
		s.nmu.Unlock()
		return
	}
	s.dispatching = true
	for len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		handlers := slices.Clone(s.handlers)
		s.nmu.Unlock()

		for _, h := range handlers {
			recovery.Recover(s.logger, "grid change handler", func() { h.fn(ev) })
		}

		s.nmu.Lock()
	}
	s.pending = nil
	s.dispatching = false
	s.nmu.Unlock()
}

// Subscribe registers h for change notifications. The returned function
// removes the subscription and may be called more than once.
func (s *State) Subscribe(h Handler) (unsubscribe func()) {
	if h == nil {
		return func() {}
	}
	s.nmu.Lock()
	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, subscription{id: id, fn: h})
	s.nmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.nmu.Lock()
			s.handlers = slices.DeleteFunc(s.handlers, func(sub subscription) bool {
				return sub.id == id
			})
			s.nmu.Unlock()
		})
	}
}

// AddFilter stores d under its property name, replacing any existing
// descriptor. A nil descriptor is ignored and raises no notification.
func (s *State) AddFilter(d filter.Descriptor) {
	s.Mutate(func(tx *Tx) { tx.AddFilter(d) })
}

// RemoveFilter deletes the descriptor stored under property. It notifies
// even when the property had no descriptor.
func (s *State) RemoveFilter(property string) {
	s.Mutate(func(tx *Tx) { tx.RemoveFilter(property) })
}

// ClearFilters deletes every descriptor.
func (s *State) ClearFilters() {
	s.Mutate(func(tx *Tx) { tx.ClearFilters() })
}

// SetSortColumn replaces the sort column.
func (s *State) SetSortColumn(sc filter.SortColumn) {
	s.Mutate(func(tx *Tx) { tx.SetSortColumn(sc) })
}

// ClearSortColumn removes the sort column.
func (s *State) ClearSortColumn() {
	s.Mutate(func(tx *Tx) { tx.ClearSortColumn() })
}

// SetSkipTop replaces the pagination window.
func (s *State) SetSkipTop(skip, top int) {
	s.Mutate(func(tx *Tx) { tx.SetSkipTop(skip, top) })
}

// ClearSkipTop removes the pagination window.
func (s *State) ClearSkipTop() {
	s.Mutate(func(tx *Tx) { tx.ClearSkipTop() })
}

// Filter returns the descriptor stored under property.
func (s *State) Filter(property string) (filter.Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.filters[property]
	return d, ok
}

// Filters returns a copy of the descriptor map.
func (s *State) Filters() map[string]filter.Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.filters)
}

// Len returns the number of stored descriptors.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filters)
}

// SortColumn returns the sort column if one is set.
func (s *State) SortColumn() (filter.SortColumn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sort == nil {
		return filter.SortColumn{}, false
	}
	return *s.sort, true
}

// Window returns the pagination window if one is set.
func (s *State) Window() (Window, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.window == nil {
		return Window{}, false
	}
	return *s.window, true
}

// Version returns the number of mutations applied so far.
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot is a consistent copy of a State.
// Descriptors are shared with the State and must not be modified.
type Snapshot struct {
	// Filters is ordered by property name.
	Filters []filter.Descriptor
	Sort    *filter.SortColumn
	Window  *Window
	Version uint64
}

// Snapshot returns a consistent copy of the state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Filters: slices.SortedFunc(maps.Values(s.filters), func(a, b filter.Descriptor) int {
			return strings.Compare(a.PropertyName(), b.PropertyName())
		}),
		Version: s.version,
	}
	if s.sort != nil {
		sc := *s.sort
		snap.Sort = &sc
	}
	if s.window != nil {
		w := *s.window
		snap.Window = &w
	}
	return snap
}

// Filter returns the descriptor stored under property in the snapshot.
func (snap Snapshot) Filter(property string) (filter.Descriptor, bool) {
	i, ok := slices.BinarySearchFunc(snap.Filters, property, func(d filter.Descriptor, p string) int {
		return strings.Compare(d.PropertyName(), p)
	})
	if !ok {
		return nil, false
	}
	return snap.Filters[i], true
}

// TryGetFilter returns the descriptor stored under property when it is of
// variant T. Absence and a different variant both report false.
func TryGetFilter[T filter.Descriptor](s *State, property string) (T, bool) {
	var zero T
	d, ok := s.Filter(property)
	if !ok {
		return zero, false
	}
	t, ok := d.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
