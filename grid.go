package datagrid

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ScrollMode selects who drives scrolling.
type ScrollMode uint8

const (
	// ScrollbarMode renders an internal scrollbar column and the grid
	// owns the offset.
	ScrollbarMode ScrollMode = iota

	// LogicalMode suppresses the internal scrollbar; the host reads
	// extent/viewport/offset through a ScrollSurface and writes the
	// offset back with SetScrollOffset.
	LogicalMode
)

// ScrollSurface is the logical-scroll contract for host-provided scroll
// containers: it is notified whenever the grid's scroll geometry changes.
type ScrollSurface interface {
	ScrollChanged(extent, viewport, offset int)
}

// GridOptions configures virtualization behavior.
type GridOptions struct {
	// HidingMode controls what recycling does to a container that stays
	// in the visual tree.
	HidingMode RecycledContainerHidingMode

	// KeepRecycledContainersInVisualTree keeps recycled containers
	// attached (hidden or offscreen). False detaches them entirely.
	KeepRecycledContainersInVisualTree bool

	// ScrollMode selects the internal scrollbar or the logical-scroll
	// host contract.
	ScrollMode ScrollMode

	// DefaultRowHeight seeds the estimator before any row is measured.
	DefaultRowHeight int

	// UniformRows opts into the O(1) fixed-height estimator.
	UniformRows bool
}

// DefaultOptions returns the standard configuration: offscreen recycling,
// internal scrollbar, single-row estimates.
func DefaultOptions() GridOptions {
	return GridOptions{
		HidingMode:                         MoveOffscreen,
		KeepRecycledContainersInVisualTree: true,
		ScrollMode:                         ScrollbarMode,
		DefaultRowHeight:                   1,
	}
}

// savedState crosses a detach/reattach boundary.
type savedState struct {
	estimator  EstimatorState
	offset     int
	anchor     int
	generation uint64
}

// Selectable is implemented by containers that can display a selection
// state.
type Selectable interface {
	SetSelected(bool)
}

// Grid is the virtualized datagrid widget. It composes the slot map,
// height estimator, recycle pool, display data, virtualizer and scroll
// models, and adapts them to the bubbletea update/view cycle.
//
// All state is owned by the single grid instance and mutated only from the
// host's event loop; nothing here is safe for concurrent use, and nothing
// needs to be.
type Grid struct {
	opts  GridOptions
	theme Theme
	keys  KeyMap

	source  ItemSource
	unsub   func()
	columns *ColumnSet
	cell    CellFunc
	factory ContainerFactory
	textFac *TextFactory // non-nil when the default factory is in use

	slots   *SlotMap
	est     HeightEstimator
	pool    *RecyclePool
	display *DisplayData
	virt    *Virtualizer
	vScroll *ScrollModel
	hScroll *ScrollModel
	surface ScrollSurface

	// last geometry published to the surface, so unchanged refreshes
	// notify the host at most once.
	surfaceExtent   int
	surfaceViewport int
	surfaceOffset   int
	surfaceNotified bool

	width  int
	height int

	attached bool
	cleanup  *CleanupTask
	saved    *savedState

	selectedSlot int

	prevBodyH int
}

// NewGrid creates a grid over the given source and columns. Configure with
// the fluent setters, then Attach before use.
func NewGrid(source ItemSource, columns *ColumnSet, cell CellFunc) *Grid {
	g := &Grid{
		opts:    DefaultOptions(),
		theme:   DefaultTheme(),
		keys:    DefaultKeyMap(),
		source:  source,
		columns: columns,
		cell:    cell,
		vScroll: NewScrollModel(),
		hScroll: NewScrollModel(),
	}
	g.slots = NewSlotMap(source)
	g.rebuildEngine()
	return g
}

// rebuildEngine wires estimator, pool, display and virtualizer from the
// current options.
func (g *Grid) rebuildEngine() {
	if g.opts.UniformRows {
		u := NewUniformEstimator()
		u.RowHeight = g.opts.DefaultRowHeight
		g.est = u
	} else {
		g.est = NewAveragingEstimator(g.opts.DefaultRowHeight)
	}
	if g.factory == nil {
		g.textFac = NewTextFactory(g.theme, g.columns, g.cell)
		g.factory = g.textFac
	}
	g.pool = NewRecyclePool(g.opts.HidingMode, g.opts.KeepRecycledContainersInVisualTree)
	g.display = NewDisplayData(g.factory, g.pool)
	g.virt = NewVirtualizer(g.slots, g.est)
}

// Options applies grid options. Must be called before Attach.
func (g *Grid) Options(opts GridOptions) *Grid {
	g.opts = opts
	g.rebuildEngine()
	return g
}

// WithTheme sets the theme used by the default container factory.
func (g *Grid) WithTheme(t Theme) *Grid {
	g.theme = t
	if g.textFac != nil {
		g.textFac.Theme = t
		g.textFac.InvalidateLayout()
	}
	return g
}

// WithKeyMap replaces the keybindings.
func (g *Grid) WithKeyMap(k KeyMap) *Grid {
	g.keys = k
	return g
}

// WithFactory replaces the container factory. Must be called before
// Attach.
func (g *Grid) WithFactory(f ContainerFactory) *Grid {
	g.factory = f
	g.textFac = nil
	g.display = NewDisplayData(f, g.pool)
	return g
}

// WithSurface registers a host scroll surface for LogicalMode.
func (g *Grid) WithSurface(s ScrollSurface) *Grid {
	g.surface = s
	return g
}

// GroupBy sets the grouping descriptors. Collapse state for surviving
// group paths is retained.
func (g *Grid) GroupBy(descriptors ...GroupDescriptor) *Grid {
	g.slots.SetGroupBy(descriptors...)
	g.virt.Invalidate()
	return g
}

// Attach subscribes the grid to its source and restores any state saved by
// a previous Detach, provided the source was not mutated in between; a
// mutated source resets the scroll position to the top instead.
func (g *Grid) Attach() error {
	if g.attached {
		return ErrAlreadyAttached
	}
	if g.source == nil {
		return ErrNoItemSource
	}
	if g.cleanup != nil {
		g.cleanup.Cancel()
		g.cleanup = nil
	}
	g.unsub = g.source.Subscribe(g.onSourceChange)
	g.attached = true
	g.slots.Invalidate()
	g.virt.Invalidate()

	if g.saved != nil && g.saved.generation != g.source.Generation() {
		// Mutated while detached: positions are meaningless, start at
		// the top. Documented behavior, not reconciliation.
		g.saved = nil
		g.vScroll.SetOffset(0)
		g.selectedSlot = 0
	}
	return nil
}

// Detach unsubscribes from the source, captures restorable state, and
// returns a command that tears the recycle pool down after an idle delay.
// Reattaching before the command fires cancels the teardown.
func (g *Grid) Detach() (tea.Cmd, error) {
	if !g.attached {
		return nil, ErrNotAttached
	}
	if g.unsub != nil {
		g.unsub()
		g.unsub = nil
	}
	g.saved = &savedState{
		estimator:  g.est.CaptureState(),
		offset:     g.vScroll.Offset(),
		anchor:     g.display.FirstSlot(),
		generation: g.source.Generation(),
	}
	g.display.RecycleAll()
	g.attached = false

	g.cleanup = newCleanupTask(func() {
		// Liveness check: a reattach that raced the idle delay
		// supersedes the teardown.
		if g.attached {
			return
		}
		g.pool.Clear()
	})
	return scheduleCleanup(g.cleanup), nil
}

// Attached reports whether the grid is live.
func (g *Grid) Attached() bool { return g.attached }

func (g *Grid) onSourceChange(c SourceChange) {
	g.slots.Invalidate()
	g.virt.Invalidate()
	if c.Kind == SourceReset {
		// Wholesale replacement: measured history is for rows that no
		// longer exist.
		g.est.Reset()
		g.vScroll.SetOffset(0)
		g.selectedSlot = 0
	}
}

// SetSize sets the available width and height in cells.
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.refresh()
}

// SetScrollOffset writes a host-driven vertical offset, for LogicalMode
// surfaces and legacy scrollbars alike.
func (g *Grid) SetScrollOffset(offset int) {
	if g.vScroll.SetOffset(offset) {
		g.refresh()
	}
}

// ScrollBy applies a vertical delta request.
func (g *Grid) ScrollBy(delta int) {
	if g.vScroll.ScrollBy(delta) {
		g.refresh()
	}
}

// Offset returns the current vertical scroll offset.
func (g *Grid) Offset() int { return g.vScroll.Offset() }

// Extent returns the estimated total content height.
func (g *Grid) Extent() int { return g.vScroll.Extent() }

// Viewport returns the body height used for virtualization.
func (g *Grid) Viewport() int { return g.vScroll.Viewport() }

// FirstDisplayedSlot returns the first realized slot, or -1 when empty.
func (g *Grid) FirstDisplayedSlot() int { return g.display.FirstSlot() }

// LastDisplayedSlot returns the last realized slot, or -1 when empty.
func (g *Grid) LastDisplayedSlot() int { return g.display.LastSlot() }

// SelectedSlot returns the cursor slot.
func (g *Grid) SelectedSlot() int { return g.selectedSlot }

// SelectedRow returns the item index under the cursor, or SlotNotFound
// when the cursor is on a group header.
func (g *Grid) SelectedRow() int { return g.slots.SlotToRow(g.selectedSlot) }

// ToggleGroup flips the collapse state of the group at path.
func (g *Grid) ToggleGroup(path string) error {
	if err := g.slots.ToggleCollapsed(path); err != nil {
		return err
	}
	g.virt.Invalidate()
	g.refresh()
	return nil
}

// ScrollToSlot adjusts the offset so the given slot is fully visible.
func (g *Grid) ScrollToSlot(slot int) {
	offset := g.virt.OffsetToReveal(slot, g.bodyHeight(), g.vScroll.Offset())
	g.SetScrollOffset(offset)
}

// bodyHeight is the viewport height available to rows: total minus the
// frozen column-header line.
func (g *Grid) bodyHeight() int {
	h := g.height - 1
	if h < 0 {
		h = 0
	}
	return h
}

// bodyWidth is the width available to rows, excluding the scrollbar
// column.
func (g *Grid) bodyWidth() int {
	w := g.width
	if g.opts.ScrollMode == ScrollbarMode {
		w--
	}
	if w < 0 {
		w = 0
	}
	return w
}

// refresh runs a full measure pass: allocate columns, compute the
// displayed range, realize/recycle containers, record measured heights,
// and publish the resulting extent.
func (g *Grid) refresh() {
	if !g.attached || g.height <= 0 || g.width <= 0 {
		return
	}

	bodyW := g.bodyWidth()
	bodyH := g.bodyHeight()
	if g.columns != nil {
		if g.columns.AllocateWidths(bodyW) && g.textFac != nil {
			g.textFac.InvalidateLayout()
		}
	}

	// Restore a detach snapshot once geometry exists to coerce against.
	if g.saved != nil {
		g.est.TryRestoreState(g.saved.estimator)
		g.vScroll.UpdateScrollInfo(g.virt.Extent(), bodyH)
		g.vScroll.SetOffset(g.saved.offset)
		g.selectedSlot = g.saved.anchor
		g.saved = nil
	}

	g.vScroll.UpdateScrollInfo(g.virt.Extent(), bodyH)

	first, last, neg := g.virt.ComputeDisplayedSlots(bodyH, g.vScroll.Offset())
	g.reconcileWindow(first, last)
	g.measureWindow(first, last, bodyW)

	// Measured heights can move the extent; publish and re-clamp.
	g.vScroll.UpdateScrollInfo(g.virt.Extent(), bodyH)
	g.vScroll.SetDecomposition(g.vScroll.Offset()-neg, neg)

	if g.columns != nil {
		g.hScroll.SetFrozen(g.columns.FrozenWidth())
		g.hScroll.UpdateScrollInfo(g.columns.ScrollableWidth(), bodyW-g.columns.FrozenWidth())
	}

	// A shrinking viewport bounds the pool at the new capacity instead
	// of the historical maximum.
	if bodyH < g.prevBodyH {
		g.pool.Trim(g.display.NumDisplayed())
	}
	g.prevBodyH = bodyH

	if g.surface != nil {
		extent, viewport, offset := g.vScroll.Extent(), g.vScroll.Viewport(), g.vScroll.Offset()
		if !g.surfaceNotified || extent != g.surfaceExtent ||
			viewport != g.surfaceViewport || offset != g.surfaceOffset {
			g.surfaceExtent, g.surfaceViewport, g.surfaceOffset = extent, viewport, offset
			g.surfaceNotified = true
			g.surface.ScrollChanged(extent, viewport, offset)
		}
	}
}

// reconcileWindow slides the realized window to [first, last], recycling
// what fell out and realizing what came in.
func (g *Grid) reconcileWindow(first, last int) {
	if last < first {
		g.display.RecycleAll()
		return
	}

	oldFirst, oldLast := g.display.FirstSlot(), g.display.LastSlot()
	if oldLast >= 0 && (last < oldFirst || first > oldLast) {
		g.display.RecycleAll()
		oldFirst, oldLast = -1, -1
	}
	if oldLast >= 0 {
		if first > oldFirst {
			g.display.RecycleLeading(first - oldFirst)
		}
		if last < oldLast {
			g.display.RecycleTrailing(oldLast - last)
		}
		oldFirst, oldLast = g.display.FirstSlot(), g.display.LastSlot()
	}

	if oldLast < 0 {
		for slot := first; slot <= last; slot++ {
			g.realizeSlot(slot)
		}
		return
	}
	for slot := oldFirst - 1; slot >= first; slot-- {
		g.realizeSlot(slot)
	}
	for slot := oldLast + 1; slot <= last; slot++ {
		g.realizeSlot(slot)
	}
}

func (g *Grid) realizeSlot(slot int) {
	info := g.slots.InfoAt(slot)
	var content any
	if info.Kind == SlotGroupHeader {
		content = info.Group
	} else {
		if info.RowIndex == SlotNotFound {
			return
		}
		content = g.source.At(info.RowIndex)
	}
	g.display.Realize(slot, info, content)
}

// measureWindow sizes and measures every realized container, records the
// heights, and recalibrates the estimator from the live window.
func (g *Grid) measureWindow(first, last int, bodyW int) {
	if last < first {
		return
	}
	heights := make([]int, last-first+1)
	g.display.Each(func(slot int, c Container) bool {
		c.SetWidth(bodyW)
		if sel, ok := c.(Selectable); ok {
			sel.SetSelected(slot == g.selectedSlot)
		}
		h := c.Height()
		if c.Kind() == SlotDataRow {
			g.est.RecordMeasured(slot, h, false, 0)
			heights[slot-first] = h
		}
		return true
	})
	g.est.UpdateFromDisplayed(first, last, heights)
}

// Init implements the bubbletea model contract.
func (g *Grid) Init() tea.Cmd { return nil }

// Update handles host messages: window sizing, keys, mouse wheel, and the
// deferred cleanup round-trip.
func (g *Grid) Update(msg tea.Msg) (*Grid, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		g.SetSize(msg.Width, msg.Height)

	case CleanupMsg:
		msg.Task.Run()

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			g.ScrollBy(-3)
		case tea.MouseButtonWheelDown:
			g.ScrollBy(3)
		}

	case tea.KeyMsg:
		g.handleKey(msg)
	}
	return g, nil
}

func (g *Grid) handleKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, g.keys.LineUp):
		g.moveCursor(-1)
	case key.Matches(msg, g.keys.LineDown):
		g.moveCursor(1)
	case key.Matches(msg, g.keys.PageUp):
		g.ScrollBy(-g.vScroll.PageScrollSize())
	case key.Matches(msg, g.keys.PageDown):
		g.ScrollBy(g.vScroll.PageScrollSize())
	case key.Matches(msg, g.keys.Top):
		g.selectedSlot = 0
		g.SetScrollOffset(0)
	case key.Matches(msg, g.keys.Bottom):
		g.selectedSlot = g.slots.TotalSlots() - 1
		g.SetScrollOffset(g.vScroll.MaxOffset())
	case key.Matches(msg, g.keys.Left):
		if g.hScroll.ScrollBy(-2) {
			g.refresh()
		}
	case key.Matches(msg, g.keys.Right):
		if g.hScroll.ScrollBy(2) {
			g.refresh()
		}
	case key.Matches(msg, g.keys.ToggleGroup):
		info := g.slots.InfoAt(g.selectedSlot)
		if info.Kind == SlotGroupHeader {
			_ = g.ToggleGroup(info.Group.Path)
		}
	}
}

// moveCursor moves the selection by delta slots and scrolls to reveal it.
func (g *Grid) moveCursor(delta int) {
	total := g.slots.TotalSlots()
	if total == 0 {
		return
	}
	slot := g.selectedSlot + delta
	if slot < 0 {
		slot = 0
	}
	if slot >= total {
		slot = total - 1
	}
	g.selectedSlot = slot
	g.ScrollToSlot(slot)
	g.refresh()
}

// View renders the header line, the visible containers clipped to the
// viewport, and the scrollbar column.
func (g *Grid) View() string {
	g.refresh()
	if g.width <= 0 || g.height <= 0 {
		return ""
	}

	bodyW := g.bodyWidth()
	bodyH := g.bodyHeight()
	lines := make([]string, 0, g.height)
	lines = append(lines, g.renderHeader(bodyW))

	neg := g.vScroll.NegOffset()
	body := make([]string, 0, bodyH)
	g.display.Each(func(slot int, c Container) bool {
		block := c.Render()
		if block == "" {
			return true
		}
		rows := strings.Split(block, "\n")
		if len(body) == 0 && neg > 0 && neg < len(rows) {
			rows = rows[neg:]
		}
		body = append(body, rows...)
		return len(body) < bodyH
	})
	if len(body) > bodyH {
		body = body[:bodyH]
	}
	for len(body) < bodyH {
		body = append(body, "")
	}

	if g.opts.ScrollMode == ScrollbarMode {
		bar := g.renderScrollbar(bodyH)
		for i := range body {
			body[i] = lipgloss.JoinHorizontal(lipgloss.Top,
				lipgloss.NewStyle().Width(bodyW).MaxWidth(bodyW).Render(body[i]), bar[i])
		}
	}

	lines = append(lines, body...)
	return strings.Join(lines, "\n")
}

// renderHeader renders the column title line.
func (g *Grid) renderHeader(width int) string {
	if g.columns == nil {
		return g.theme.Header.Width(width).MaxWidth(width).Render("")
	}
	var cells []string
	for _, col := range g.columns.VisibleColumns(g.hScroll.Offset()) {
		cells = append(cells, padCell(col.Title, col.DisplayWidth()))
	}
	line := strings.Join(cells, " ")
	return g.theme.Header.Width(width).MaxWidth(width).Render(line)
}

// renderScrollbar produces one bar cell per body line, with the thumb
// sized and positioned from the extent/viewport/offset ratios.
func (g *Grid) renderScrollbar(bodyH int) []string {
	bar := make([]string, bodyH)
	extent := g.vScroll.Extent()
	viewport := g.vScroll.Viewport()

	if extent <= viewport || bodyH < 1 {
		for i := range bar {
			bar[i] = " "
		}
		return bar
	}

	thumb := bodyH * viewport / extent
	if thumb < 1 {
		thumb = 1
	}
	maxOffset := g.vScroll.MaxOffset()
	pos := 0
	if maxOffset > 0 {
		pos = (bodyH - thumb) * g.vScroll.Offset() / maxOffset
	}

	track := g.theme.Scrollbar.Render("│")
	thumbCell := g.theme.ScrollThumb.Render("┃")
	for i := range bar {
		if i >= pos && i < pos+thumb {
			bar[i] = thumbCell
		} else {
			bar[i] = track
		}
	}
	return bar
}
