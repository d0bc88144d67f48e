package datagrid

// unboundedSize is the threshold above which a host-reported available size
// is treated as "unlimited" and clamped, to avoid materializing containers
// for the whole slot space when the grid is nested in a flexible layout.
const unboundedSize = 1 << 20

// defaultPrefetch is the minimal slot budget used when no valid arranged
// size has ever been seen.
const defaultPrefetch = 8

// Virtualizer decides which slots are displayed for a given viewport and
// offset. It keeps the previous first-displayed slot as a sticky anchor so
// that small offset changes walk from the last position instead of
// re-deriving it, which keeps partially visible rows stable across layout
// passes.
type Virtualizer struct {
	slots *SlotMap
	est   HeightEstimator

	anchor    int // previous first displayed slot; -1 when invalid
	anchorTop int // content offset of the anchor's top edge

	lastViewport int // last valid arranged height, for clamping
	prefetch     int
}

// NewVirtualizer creates a virtualizer over the given slot map and
// estimator.
func NewVirtualizer(slots *SlotMap, est HeightEstimator) *Virtualizer {
	return &Virtualizer{
		slots:    slots,
		est:      est,
		anchor:   -1,
		prefetch: defaultPrefetch,
	}
}

// Invalidate discards the sticky anchor. Call after any mutation that
// renumbers slots (grouping change, expand/collapse, insert/remove).
func (v *Virtualizer) Invalidate() {
	v.anchor = -1
}

// HeightOf returns the estimated or measured height of a slot.
func (v *Virtualizer) HeightOf(slot int) int {
	info := v.slots.InfoAt(slot)
	if info.Kind == SlotDataRow && info.RowIndex == SlotNotFound {
		return 0
	}
	h := v.est.EstimatedHeight(slot, info.Kind, info.Level, false)
	if h < 1 {
		h = 1
	}
	return h
}

// Extent returns the estimated total content height. Only visible slots
// contribute; rows hidden under collapsed groups add nothing.
func (v *Virtualizer) Extent() int {
	return v.est.TotalHeight(v.slots.TotalSlots(), v.slots.HeaderCounts(), 0)
}

// ComputeDisplayedSlots maps (viewport height, offset) to the displayed
// slot range [first, last] and the remainder neg scrolled into the first
// slot. An empty range is returned as last < first.
//
// The walk starts at the sticky anchor and steps toward the requested
// offset; when the anchor is invalid or the offset jumped too far, the
// anchor is re-derived from the estimator instead of walking the whole
// distance. A trailing backfill pass pulls the window upward when content
// runs out before the viewport is filled, favoring a fully visible last
// row over a partial row at the top.
func (v *Virtualizer) ComputeDisplayedSlots(viewportH, offset int) (first, last, neg int) {
	total := v.slots.TotalSlots()
	if total == 0 {
		v.anchor = -1
		return 0, -1, 0
	}

	viewportH = v.clampViewport(viewportH)
	if viewportH <= 0 {
		return 0, -1, 0
	}
	if offset < 0 {
		offset = 0
	}

	anchor, top := v.anchor, v.anchorTop
	if anchor < 0 || anchor >= total || distance(top, offset) > 4*viewportH {
		anchor = v.est.SlotAtOffset(offset, total)
		top = v.est.OffsetToSlot(anchor)
	}

	// Walk backward while the anchor's top sits below the offset.
	for top > offset && anchor > 0 {
		anchor--
		top -= v.HeightOf(anchor)
	}
	if anchor == 0 && top > offset {
		top = offset // estimate undershot; clamp so neg stays valid
	}
	// Walk forward while the anchor is fully above the offset.
	for anchor < total-1 && top+v.HeightOf(anchor) <= offset {
		top += v.HeightOf(anchor)
		anchor++
	}

	neg = offset - top
	if h := v.HeightOf(anchor); neg >= h {
		neg = h - 1
	}
	if neg < 0 {
		neg = 0
	}

	// Fill the viewport from the anchor down.
	first = anchor
	last = first - 1
	filled := -neg
	for last+1 < total && filled < viewportH {
		last++
		filled += v.HeightOf(last)
	}

	// Backfill: content ran out below, pull the window up so trailing
	// space is given to earlier rows. Only fully fitting rows are
	// pulled in; otherwise the blank space stays.
	if filled < viewportH && first > 0 {
		filled += neg // the window now starts at the first slot's top
		neg = 0
		for first > 0 {
			h := v.HeightOf(first - 1)
			if filled+h > viewportH {
				break
			}
			first--
			filled += h
		}
	}

	v.anchor = first
	v.anchorTop = offset - neg
	return first, last, neg
}

// clampViewport guards against unbounded or bogus host-reported sizes by
// substituting the last valid arranged size, or a minimal prefetch budget
// when none has been seen yet.
func (v *Virtualizer) clampViewport(viewportH int) int {
	if viewportH >= 0 && viewportH < unboundedSize {
		v.lastViewport = viewportH
		return viewportH
	}
	if v.lastViewport > 0 {
		return v.lastViewport
	}
	// No arranged size ever seen: budget a handful of slots.
	h := 0
	for slot := 0; slot < v.prefetch; slot++ {
		h += v.HeightOf(slot)
	}
	return h
}

// OffsetToReveal returns the smallest offset change that makes the given
// slot fully visible: unchanged when already visible, the slot's top when
// it is above the viewport, or bottom-aligned when below.
func (v *Virtualizer) OffsetToReveal(slot, viewportH, offset int) int {
	total := v.slots.TotalSlots()
	if slot < 0 || slot >= total {
		return offset
	}

	top := v.offsetOfSlot(slot)
	if top < offset {
		return top
	}
	bottom := top + v.HeightOf(slot)
	if bottom > offset+viewportH {
		return bottom - viewportH
	}
	return offset
}

// offsetOfSlot returns the content offset of a slot's top edge, walking
// from the anchor when the slot is nearby and falling back to the
// estimator for far jumps.
func (v *Virtualizer) offsetOfSlot(slot int) int {
	if v.anchor >= 0 && distance(slot, v.anchor) <= 2*defaultPrefetch {
		top := v.anchorTop
		for s := v.anchor; s < slot; s++ {
			top += v.HeightOf(s)
		}
		for s := v.anchor; s > slot; s-- {
			top -= v.HeightOf(s - 1)
		}
		if top < 0 {
			top = 0
		}
		return top
	}
	return v.est.OffsetToSlot(slot)
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
