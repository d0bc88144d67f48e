package datagrid

// DisplayData owns the currently realized containers and the bookkeeping of
// which slot each one represents. Realized slots always form the contiguous
// range [FirstSlot, LastSlot]; the window grows at its edges and shrinks by
// recycling from either end. No two realized containers ever bind the same
// slot — rebinding an in-window slot recycles the stale container first.
type DisplayData struct {
	factory ContainerFactory
	pool    *RecyclePool

	first    int
	last     int
	elements []Container // elements[i] is bound to slot first+i
}

// NewDisplayData creates empty display bookkeeping backed by the given
// factory and recycle pool.
func NewDisplayData(factory ContainerFactory, pool *RecyclePool) *DisplayData {
	return &DisplayData{
		factory: factory,
		pool:    pool,
		first:   0,
		last:    -1,
	}
}

// FirstSlot returns the first displayed slot, or -1 when nothing is
// realized.
func (d *DisplayData) FirstSlot() int {
	if d.last < d.first {
		return -1
	}
	return d.first
}

// LastSlot returns the last displayed slot, or -1 when nothing is realized.
func (d *DisplayData) LastSlot() int {
	if d.last < d.first {
		return -1
	}
	return d.last
}

// NumDisplayed returns the number of realized containers.
func (d *DisplayData) NumDisplayed() int {
	if d.last < d.first {
		return 0
	}
	return d.last - d.first + 1
}

// ElementAt returns the container bound to slot, or nil when the slot is
// outside the realized window.
func (d *DisplayData) ElementAt(slot int) Container {
	if d.last < d.first || slot < d.first || slot > d.last {
		return nil
	}
	return d.elements[slot-d.first]
}

// Realize binds a container for the given slot, reusing a pooled container
// when one is available. The slot must be inside or adjacent to the current
// window; a discontiguous slot resets the window first, which preserves the
// contiguity invariant even when callers jump.
func (d *DisplayData) Realize(slot int, info SlotInfo, content any) Container {
	if d.last >= d.first && (slot < d.first-1 || slot > d.last+1) {
		d.RecycleAll()
	}

	switch {
	case d.last < d.first:
		c := d.obtain(info)
		c.Bind(content, slot)
		d.first, d.last = slot, slot
		d.elements = append(d.elements[:0], c)
		return c

	case slot == d.first-1:
		c := d.obtain(info)
		c.Bind(content, slot)
		d.elements = append(d.elements, nil)
		copy(d.elements[1:], d.elements)
		d.elements[0] = c
		d.first = slot
		return c

	case slot == d.last+1:
		c := d.obtain(info)
		c.Bind(content, slot)
		d.elements = append(d.elements, c)
		d.last = slot
		return c

	default:
		// In-window rebind: recycle the stale binding so the slot is
		// never represented twice.
		i := slot - d.first
		if old := d.elements[i]; old != nil {
			old.Unbind()
			d.pool.AddRecyclable(old)
		}
		c := d.obtain(info)
		c.Bind(content, slot)
		d.elements[i] = c
		return c
	}
}

// obtain pops a matching pooled container or creates a new one.
func (d *DisplayData) obtain(info SlotInfo) Container {
	if info.Kind == SlotGroupHeader {
		if c := d.pool.GetRecycledHeader(); c != nil {
			return c
		}
		return d.factory.NewGroupHeaderContainer(info.Level)
	}
	if c := d.pool.GetRecycledRow(); c != nil {
		return c
	}
	return d.factory.NewRowContainer()
}

// RecycleLeading unbinds the first n realized containers and returns them
// to the pool.
func (d *DisplayData) RecycleLeading(n int) {
	for ; n > 0 && d.last >= d.first; n-- {
		c := d.elements[0]
		d.elements = d.elements[1:]
		d.first++
		c.Unbind()
		d.pool.AddRecyclable(c)
	}
}

// RecycleTrailing unbinds the last n realized containers and returns them
// to the pool.
func (d *DisplayData) RecycleTrailing(n int) {
	for ; n > 0 && d.last >= d.first; n-- {
		c := d.elements[len(d.elements)-1]
		d.elements = d.elements[:len(d.elements)-1]
		d.last--
		c.Unbind()
		d.pool.AddRecyclable(c)
	}
}

// RecycleAll unbinds every realized container.
func (d *DisplayData) RecycleAll() {
	for _, c := range d.elements {
		c.Unbind()
		d.pool.AddRecyclable(c)
	}
	d.elements = d.elements[:0]
	d.first, d.last = 0, -1
}

// Each visits realized containers in slot order. Returning false stops the
// walk.
func (d *DisplayData) Each(fn func(slot int, c Container) bool) {
	for i, c := range d.elements {
		if !fn(d.first+i, c) {
			return
		}
	}
}
