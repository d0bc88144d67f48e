package datagrid

// RecycledContainerHidingMode selects what happens to a container's visual
// state when it is recycled while staying attached to the host tree.
type RecycledContainerHidingMode uint8

const (
	// MoveOffscreen translates the container off the visible canvas.
	// Arrange-derived sizing survives, so rebinding skips a layout pass.
	MoveOffscreen RecycledContainerHidingMode = iota

	// SetIsVisibleOnly toggles the visibility flag and leaves bounds
	// untouched. Cheapest when reuse at the same position is likely.
	SetIsVisibleOnly

	// RemoveFromTree detaches the container entirely, minimizing
	// steady-state tree size at the cost of re-attach work.
	RemoveFromTree
)

// RecyclePool retains unbound containers for reuse, keyed only by container
// kind. Two free-list stacks, one for rows and one for group headers; a
// recycled header can be rebound at any nesting level. The pool exclusively
// owns recycled containers — handing one out transfers ownership back to
// the realized set.
type RecyclePool struct {
	rows    []Container
	headers []Container

	mode       RecycledContainerHidingMode
	keepInTree bool
}

// NewRecyclePool creates a pool with the given hiding behavior. When
// keepInTree is false the mode is forced to RemoveFromTree.
func NewRecyclePool(mode RecycledContainerHidingMode, keepInTree bool) *RecyclePool {
	if !keepInTree {
		mode = RemoveFromTree
	}
	return &RecyclePool{mode: mode, keepInTree: keepInTree}
}

// GetRecycledRow pops a pooled row container, or returns nil when the pool
// is empty and the caller must create one.
func (p *RecyclePool) GetRecycledRow() Container {
	n := len(p.rows)
	if n == 0 {
		return nil
	}
	c := p.rows[n-1]
	p.rows = p.rows[:n-1]
	p.reveal(c)
	return c
}

// GetRecycledHeader pops a pooled group header container, or nil.
func (p *RecyclePool) GetRecycledHeader() Container {
	n := len(p.headers)
	if n == 0 {
		return nil
	}
	c := p.headers[n-1]
	p.headers = p.headers[:n-1]
	p.reveal(c)
	return c
}

// AddRecyclable returns an unbound container to the pool, applying the
// configured hiding mode. The caller must have unbound it first.
func (p *RecyclePool) AddRecyclable(c Container) {
	if c == nil {
		return
	}
	switch p.mode {
	case MoveOffscreen:
		c.SetOffscreen(true)
	case SetIsVisibleOnly:
		c.SetHidden(true)
	case RemoveFromTree:
		// Fully detached; nothing to toggle.
	}
	if c.Kind() == SlotGroupHeader {
		p.headers = append(p.headers, c)
	} else {
		p.rows = append(p.rows, c)
	}
}

// reveal undoes the hiding mode when a container leaves the pool.
func (p *RecyclePool) reveal(c Container) {
	switch p.mode {
	case MoveOffscreen:
		c.SetOffscreen(false)
	case SetIsVisibleOnly:
		c.SetHidden(false)
	}
}

// Trim evicts surplus pooled containers down to target per kind. Only the
// unbound pool is touched; realized containers are never evicted. Called
// when the viewport shrinks so the pool tracks viewport capacity instead of
// its historical maximum.
func (p *RecyclePool) Trim(target int) {
	if target < 0 {
		target = 0
	}
	if len(p.rows) > target {
		for _, c := range p.rows[target:] {
			c.SetHidden(false)
			c.SetOffscreen(false)
		}
		p.rows = p.rows[:target]
	}
	if len(p.headers) > target {
		for _, c := range p.headers[target:] {
			c.SetHidden(false)
			c.SetOffscreen(false)
		}
		p.headers = p.headers[:target]
	}
}

// Clear evicts everything.
func (p *RecyclePool) Clear() {
	p.Trim(0)
}

// RowCount returns the number of pooled row containers.
func (p *RecyclePool) RowCount() int { return len(p.rows) }

// HeaderCount returns the number of pooled header containers.
func (p *RecyclePool) HeaderCount() int { return len(p.headers) }

// Len returns the total pooled container count.
func (p *RecyclePool) Len() int { return len(p.rows) + len(p.headers) }
