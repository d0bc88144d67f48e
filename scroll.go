package datagrid

// ScrollModel is the logical-scroll contract shared by the grid's internal
// scrollbar and host-provided scroll surfaces: a total content extent, a
// viewport size, and an offset coerced into the valid range. The vertical
// instance also carries the offset decomposition into whole slots scrolled
// plus the remainder scrolled into the first partially visible slot.
type ScrollModel struct {
	offset   int
	extent   int
	viewport int
	frozen   int

	major int // offset consumed by fully scrolled-past leading slots
	neg   int // remainder scrolled into the first displayed slot

	onInvalidate func()
}

// NewScrollModel creates an empty scroll model.
func NewScrollModel() *ScrollModel {
	return &ScrollModel{}
}

// OnInvalidate registers the notification raised when extent or viewport
// actually change.
func (s *ScrollModel) OnInvalidate(fn func()) {
	s.onInvalidate = fn
}

// Offset returns the current scroll offset.
func (s *ScrollModel) Offset() int { return s.offset }

// Extent returns the total estimated content size.
func (s *ScrollModel) Extent() int { return s.extent }

// Viewport returns the visible size.
func (s *ScrollModel) Viewport() int { return s.viewport }

// MaxOffset returns the largest valid offset. Zero when the content fits
// inside the viewport, so short content never yields a negative range.
func (s *ScrollModel) MaxOffset() int {
	max := s.extent - s.viewport
	if max < 0 {
		return 0
	}
	return max
}

// SetOffset coerces the requested offset into [0, MaxOffset] and stores it.
// It reports whether the stored offset changed.
func (s *ScrollModel) SetOffset(offset int) bool {
	if offset < 0 {
		offset = 0
	}
	if max := s.MaxOffset(); offset > max {
		offset = max
	}
	if offset == s.offset {
		return false
	}
	s.offset = offset
	return true
}

// ScrollBy applies a delta request. Deltas accumulate on the stored offset,
// so rapid repeated wheel events neither drop nor double-count.
func (s *ScrollModel) ScrollBy(delta int) bool {
	return s.SetOffset(s.offset + delta)
}

// SetFrozen sets the size of the frozen leading region excluded from
// paging.
func (s *ScrollModel) SetFrozen(frozen int) {
	if frozen < 0 {
		frozen = 0
	}
	s.frozen = frozen
}

// PageScrollSize returns the viewport minus the frozen region — the
// distance a page up/down request travels.
func (s *ScrollModel) PageScrollSize() int {
	page := s.viewport - s.frozen
	if page < 1 {
		page = 1
	}
	return page
}

// UpdateScrollInfo records a new extent and viewport, re-coerces the
// offset, and raises the invalidation notification only if either value
// actually changed. Calling twice with identical inputs notifies once.
func (s *ScrollModel) UpdateScrollInfo(extent, viewport int) {
	if extent < 0 {
		extent = 0
	}
	if viewport < 0 {
		viewport = 0
	}
	if extent == s.extent && viewport == s.viewport {
		return
	}
	s.extent = extent
	s.viewport = viewport
	s.SetOffset(s.offset) // re-coerce against the new range
	if s.onInvalidate != nil {
		s.onInvalidate()
	}
}

// SetDecomposition records the offset split produced by the virtualizer:
// major is the height of fully scrolled-past slots, neg the remainder
// scrolled into the first displayed slot.
func (s *ScrollModel) SetDecomposition(major, neg int) {
	s.major = major
	s.neg = neg
}

// MajorOffset returns the offset consumed by fully scrolled-past slots.
func (s *ScrollModel) MajorOffset() int { return s.major }

// NegOffset returns the remainder scrolled into the first displayed slot.
func (s *ScrollModel) NegOffset() int { return s.neg }
