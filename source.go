package datagrid

// ItemSource supplies the grid with sequential item access and change
// notifications. The grid never retains item slices; it reads items by index
// on demand, so a source may be backed by anything indexable.
type ItemSource interface {
	// Len returns the number of items.
	Len() int

	// At returns the item at index i, or nil if out of bounds.
	At(i int) any

	// Subscribe adds a change listener and returns an unsubscribe function.
	Subscribe(fn func(SourceChange)) func()

	// Generation returns a counter that increments on every mutation.
	// The grid compares generations across detach/reattach to decide
	// whether a saved scroll position is still meaningful.
	Generation() uint64
}

// SourceChangeKind classifies a mutation to an item source.
type SourceChangeKind int

const (
	SourceInsert SourceChangeKind = iota
	SourceUpdate
	SourceRemove
	SourceReset // wholesale replacement or clear
)

// SourceChange describes a single mutation.
type SourceChange struct {
	Kind  SourceChangeKind
	Index int // item index for Insert/Update/Remove; -1 for Reset
}

// SliceSource is an ItemSource backed by a slice. Mutations notify
// subscribers and bump the generation counter.
type SliceSource[T any] struct {
	items     []T
	listeners []func(SourceChange)
	gen       uint64
}

// NewSliceSource creates a source over the given items.
func NewSliceSource[T any](items ...T) *SliceSource[T] {
	return &SliceSource[T]{items: items}
}

// Len returns the number of items.
func (s *SliceSource[T]) Len() int {
	return len(s.items)
}

// At returns the item at index i, or nil if out of bounds.
func (s *SliceSource[T]) At(i int) any {
	if i < 0 || i >= len(s.items) {
		return nil
	}
	return s.items[i]
}

// Item returns the typed item at index i, or the zero value if out of bounds.
func (s *SliceSource[T]) Item(i int) T {
	if i < 0 || i >= len(s.items) {
		var zero T
		return zero
	}
	return s.items[i]
}

// Items returns the backing slice.
func (s *SliceSource[T]) Items() []T {
	return s.items
}

// Set replaces all items.
func (s *SliceSource[T]) Set(items []T) *SliceSource[T] {
	s.items = items
	s.notify(SourceChange{Kind: SourceReset, Index: -1})
	return s
}

// Add appends an item.
func (s *SliceSource[T]) Add(item T) *SliceSource[T] {
	s.items = append(s.items, item)
	s.notify(SourceChange{Kind: SourceInsert, Index: len(s.items) - 1})
	return s
}

// Insert inserts an item at index i, clamping i into range.
func (s *SliceSource[T]) Insert(i int, item T) *SliceSource[T] {
	if i < 0 {
		i = 0
	}
	if i > len(s.items) {
		i = len(s.items)
	}
	s.items = append(s.items[:i], append([]T{item}, s.items[i:]...)...)
	s.notify(SourceChange{Kind: SourceInsert, Index: i})
	return s
}

// RemoveAt removes the item at index i. Out-of-range indices are ignored.
func (s *SliceSource[T]) RemoveAt(i int) *SliceSource[T] {
	if i < 0 || i >= len(s.items) {
		return s
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.notify(SourceChange{Kind: SourceRemove, Index: i})
	return s
}

// Update modifies the item at index i in place.
func (s *SliceSource[T]) Update(i int, fn func(*T)) *SliceSource[T] {
	if i < 0 || i >= len(s.items) {
		return s
	}
	fn(&s.items[i])
	s.notify(SourceChange{Kind: SourceUpdate, Index: i})
	return s
}

// Clear removes all items.
func (s *SliceSource[T]) Clear() *SliceSource[T] {
	s.items = s.items[:0]
	s.notify(SourceChange{Kind: SourceReset, Index: -1})
	return s
}

// Subscribe adds a change listener and returns an unsubscribe function.
func (s *SliceSource[T]) Subscribe(fn func(SourceChange)) func() {
	s.listeners = append(s.listeners, fn)
	idx := len(s.listeners) - 1
	return func() {
		// Zero out to allow GC, don't reorder
		s.listeners[idx] = nil
	}
}

// Generation returns the mutation counter.
func (s *SliceSource[T]) Generation() uint64 {
	return s.gen
}

func (s *SliceSource[T]) notify(c SourceChange) {
	s.gen++
	for _, fn := range s.listeners {
		if fn != nil {
			fn(c)
		}
	}
}
