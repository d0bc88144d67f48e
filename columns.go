package datagrid

// ColumnKind selects how a column's width is resolved.
type ColumnKind uint8

const (
	// ColumnFixed uses the explicitly configured width.
	ColumnFixed ColumnKind = iota

	// ColumnAuto sizes to the larger of header and observed cell widths.
	ColumnAuto

	// ColumnSizeToCells sizes to the widest observed cell.
	ColumnSizeToCells

	// ColumnSizeToHeader sizes to the header title.
	ColumnSizeToHeader

	// ColumnStar takes a proportional share of the space remaining after
	// all non-star columns are sized.
	ColumnStar
)

// Column describes one grid column. Desired widths for the content-driven
// kinds grow as cells are observed during binding; AllocateWidths resolves
// them into display widths.
type Column struct {
	Title string
	Kind  ColumnKind
	Width int     // configured width for ColumnFixed
	Star  float64 // proportional factor for ColumnStar
	Min   int
	Max   int // 0 = unbounded

	desired int // widest observed content
	display int // resolved width
}

// NewColumn creates an auto-sized column.
func NewColumn(title string) *Column {
	return &Column{Title: title, Kind: ColumnAuto, Min: 1}
}

// Fixed makes the column a fixed width.
func (c *Column) Fixed(w int) *Column {
	c.Kind = ColumnFixed
	c.Width = w
	return c
}

// Proportional makes the column a star column with the given factor.
func (c *Column) Proportional(factor float64) *Column {
	c.Kind = ColumnStar
	if factor <= 0 {
		factor = 1
	}
	c.Star = factor
	return c
}

// SizeToCells sizes the column to its widest observed cell.
func (c *Column) SizeToCells() *Column {
	c.Kind = ColumnSizeToCells
	return c
}

// SizeToHeader sizes the column to its title.
func (c *Column) SizeToHeader() *Column {
	c.Kind = ColumnSizeToHeader
	return c
}

// MinWidth sets the minimum display width.
func (c *Column) MinWidth(w int) *Column {
	c.Min = w
	return c
}

// MaxWidth sets the maximum display width.
func (c *Column) MaxWidth(w int) *Column {
	c.Max = w
	return c
}

// NoteCellWidth records an observed cell width for content-driven sizing.
func (c *Column) NoteCellWidth(w int) {
	if w > c.desired {
		c.desired = w
	}
}

// DisplayWidth returns the resolved width from the last allocation.
func (c *Column) DisplayWidth() int {
	if c.display < 1 {
		return c.clamp(c.baseDesired())
	}
	return c.display
}

// clamp applies the column's min/max bounds.
func (c *Column) clamp(w int) int {
	if w < c.Min {
		w = c.Min
	}
	if c.Max > 0 && w > c.Max {
		w = c.Max
	}
	if w < 1 {
		w = 1
	}
	return w
}

// baseDesired returns the pre-clamp desired width for non-star kinds.
func (c *Column) baseDesired() int {
	switch c.Kind {
	case ColumnFixed:
		return c.Width
	case ColumnSizeToHeader:
		return len([]rune(c.Title))
	case ColumnSizeToCells:
		return c.desired
	default: // ColumnAuto
		d := c.desired
		if t := len([]rune(c.Title)); t > d {
			d = t
		}
		return d
	}
}

// ColumnSet resolves column widths against the available width, honoring
// frozen leading columns that are excluded from horizontal scrolling.
type ColumnSet struct {
	cols   []*Column
	frozen int
	gap    int
}

// NewColumnSet creates a column set with a one-cell gap between columns.
func NewColumnSet(cols ...*Column) *ColumnSet {
	return &ColumnSet{cols: cols, gap: 1}
}

// Columns returns the columns in display order.
func (s *ColumnSet) Columns() []*Column { return s.cols }

// Len returns the number of columns.
func (s *ColumnSet) Len() int { return len(s.cols) }

// Frozen sets the number of leading columns excluded from horizontal
// scrolling.
func (s *ColumnSet) Frozen(n int) *ColumnSet {
	if n < 0 {
		n = 0
	}
	if n > len(s.cols) {
		n = len(s.cols)
	}
	s.frozen = n
	return s
}

// FrozenCount returns the number of frozen leading columns.
func (s *ColumnSet) FrozenCount() int { return s.frozen }

// AllocateWidths resolves every column's display width against the
// available width and reports whether any width changed. Fixed and
// content-sized columns are clamped first; the remainder is split among
// star columns proportionally to their factors, re-distributing
// iteratively as columns pin to their min/max so that the proportion holds
// among the columns still free to move.
func (s *ColumnSet) AllocateWidths(available int) bool {
	before := make([]int, len(s.cols))
	for i, c := range s.cols {
		before[i] = c.display
	}
	s.allocate(available)
	for i, c := range s.cols {
		if c.display != before[i] {
			return true
		}
	}
	return false
}

func (s *ColumnSet) allocate(available int) {
	if len(s.cols) == 0 {
		return
	}

	gaps := s.gap * (len(s.cols) - 1)
	remaining := available - gaps

	var stars []*Column
	for _, c := range s.cols {
		if c.Kind == ColumnStar {
			stars = append(stars, c)
			continue
		}
		c.display = c.clamp(c.baseDesired())
		remaining -= c.display
	}
	if len(stars) == 0 {
		return
	}
	if remaining < 0 {
		remaining = 0
	}

	// Iterative proportional distribution: any star column whose share
	// violates its bounds is pinned, and the rest re-split what's left.
	free := append([]*Column(nil), stars...)
	for len(free) > 0 {
		total := 0.0
		for _, c := range free {
			total += c.Star
		}
		pinned := false
		next := free[:0]
		for _, c := range free {
			share := int(float64(remaining) * (c.Star / total))
			if clamped := c.clamp(share); clamped != share {
				c.display = clamped
				remaining -= clamped
				pinned = true
				continue
			}
			next = append(next, c)
		}
		free = next
		if remaining < 0 {
			remaining = 0
		}
		if !pinned {
			// All shares fit; assign and distribute rounding
			// leftovers left to right.
			total = 0
			for _, c := range free {
				total += c.Star
			}
			used := 0
			for _, c := range free {
				c.display = int(float64(remaining) * (c.Star / total))
				used += c.display
			}
			for i := 0; used < remaining && len(free) > 0; i = (i + 1) % len(free) {
				free[i].display++
				used++
			}
			return
		}
	}
}

// TotalWidth returns the summed display widths plus gaps.
func (s *ColumnSet) TotalWidth() int {
	if len(s.cols) == 0 {
		return 0
	}
	w := s.gap * (len(s.cols) - 1)
	for _, c := range s.cols {
		w += c.DisplayWidth()
	}
	return w
}

// FrozenWidth returns the width of the frozen leading region, including
// its trailing gaps.
func (s *ColumnSet) FrozenWidth() int {
	w := 0
	for i := 0; i < s.frozen && i < len(s.cols); i++ {
		w += s.cols[i].DisplayWidth() + s.gap
	}
	return w
}

// VisibleColumns returns the columns to render at a horizontal scroll
// offset: the frozen leading columns always, followed by the scrollable
// columns starting from the first one not yet fully scrolled past.
// Horizontal scrolling is column-quantized.
func (s *ColumnSet) VisibleColumns(offset int) []*Column {
	if offset <= 0 {
		return s.cols
	}
	out := make([]*Column, 0, len(s.cols))
	out = append(out, s.cols[:s.frozen]...)
	scrolled := 0
	for _, c := range s.cols[s.frozen:] {
		w := c.DisplayWidth() + s.gap
		if scrolled+w <= offset {
			scrolled += w
			continue
		}
		out = append(out, c)
	}
	return out
}

// ScrollableWidth returns the horizontal extent of the non-frozen region,
// which feeds the horizontal scroll model.
func (s *ColumnSet) ScrollableWidth() int {
	w := s.TotalWidth() - s.FrozenWidth()
	if w < 0 {
		return 0
	}
	return w
}
