package datagrid

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Container is a realized visual element bound to at most one slot.
// Implementations own their rendering; the engine only binds content, sizes
// the container and asks for the rendered block. The slot association is
// weak: a container remembers which slot it currently represents, but slot
// state never points back at containers.
type Container interface {
	// Bind associates the container with a slot's content. Rows receive
	// the source item; group headers receive a GroupInfo.
	Bind(content any, slot int)

	// Unbind clears the slot association and content.
	Unbind()

	// Slot returns the bound slot, or SlotNotFound when unbound.
	Slot() int

	// Kind reports whether this is a row or group header container.
	Kind() SlotKind

	// SetWidth sets the available width in cells. Height is derived from
	// content during Render and reported by Height.
	SetWidth(w int)

	// Height returns the measured height of the rendered content.
	Height() int

	// Render returns the styled cell block for the container.
	Render() string

	// SetHidden toggles the container's visibility without moving it,
	// for the SetIsVisibleOnly recycle mode.
	SetHidden(hidden bool)

	// SetOffscreen translates the container off the visible canvas while
	// keeping it attached, for the MoveOffscreen recycle mode.
	SetOffscreen(off bool)
}

// ContainerFactory creates and binds containers. Hosts provide one to
// control how rows and group headers look; the engine never constructs
// containers directly. Styling configuration is passed in explicitly when
// the factory is built rather than looked up from ambient state.
type ContainerFactory interface {
	NewRowContainer() Container
	NewGroupHeaderContainer(level int) Container
}

// CellFunc extracts the display text of one column cell from an item.
type CellFunc func(item any, col int) string

// TextFactory is the default ContainerFactory: single-purpose text
// containers styled with lipgloss against a Theme and a ColumnSet.
type TextFactory struct {
	Theme   Theme
	Columns *ColumnSet
	Cell    CellFunc

	// layoutGen invalidates every container's cached render when column
	// widths or the theme change.
	layoutGen uint64
}

// NewTextFactory creates a text container factory.
func NewTextFactory(theme Theme, columns *ColumnSet, cell CellFunc) *TextFactory {
	return &TextFactory{Theme: theme, Columns: columns, Cell: cell}
}

// InvalidateLayout forces all containers created by this factory to
// re-render on their next use.
func (f *TextFactory) InvalidateLayout() {
	f.layoutGen++
}

// NewRowContainer implements ContainerFactory.
func (f *TextFactory) NewRowContainer() Container {
	return &TextRowContainer{factory: f, slot: SlotNotFound}
}

// NewGroupHeaderContainer implements ContainerFactory.
func (f *TextFactory) NewGroupHeaderContainer(level int) Container {
	return &TextHeaderContainer{factory: f, level: level, slot: SlotNotFound}
}

// TextRowContainer renders one data row as a line of column cells.
type TextRowContainer struct {
	factory *TextFactory
	item    any
	slot    int
	width   int
	height  int

	rendered string
	dirty    bool
	gen      uint64

	hidden    bool
	offscreen bool
	selected  bool
}

// Bind implements Container.
func (c *TextRowContainer) Bind(content any, slot int) {
	c.item = content
	c.slot = slot
	c.dirty = true
}

// Unbind implements Container.
func (c *TextRowContainer) Unbind() {
	c.item = nil
	c.slot = SlotNotFound
	c.selected = false
	c.dirty = true
}

// Slot implements Container.
func (c *TextRowContainer) Slot() int { return c.slot }

// Kind implements Container.
func (c *TextRowContainer) Kind() SlotKind { return SlotDataRow }

// SetWidth implements Container.
func (c *TextRowContainer) SetWidth(w int) {
	if w != c.width {
		c.width = w
		c.dirty = true
	}
}

// SetSelected toggles the selection style for this row.
func (c *TextRowContainer) SetSelected(selected bool) {
	if selected != c.selected {
		c.selected = selected
		c.dirty = true
	}
}

// SetHidden implements Container.
func (c *TextRowContainer) SetHidden(hidden bool) { c.hidden = hidden }

// SetOffscreen implements Container.
func (c *TextRowContainer) SetOffscreen(off bool) { c.offscreen = off }

// Height implements Container.
func (c *TextRowContainer) Height() int {
	c.render()
	return c.height
}

// Render implements Container.
func (c *TextRowContainer) Render() string {
	if c.hidden || c.offscreen {
		return ""
	}
	c.render()
	return c.rendered
}

func (c *TextRowContainer) render() {
	if !c.dirty && c.gen == c.factory.layoutGen {
		return
	}
	c.dirty = false
	c.gen = c.factory.layoutGen

	f := c.factory
	var cells []string
	if f.Columns != nil && f.Cell != nil {
		for i, col := range f.Columns.Columns() {
			text := f.Cell(c.item, i)
			cells = append(cells, padCell(text, col.DisplayWidth()))
		}
	} else if c.item != nil {
		cells = append(cells, toDisplayString(c.item))
	}

	style := f.Theme.Row
	if c.selected {
		style = f.Theme.SelectedRow
	}
	line := strings.Join(cells, " ")
	if c.width > 0 {
		style = style.Width(c.width).MaxWidth(c.width)
	}
	c.rendered = style.Render(line)
	c.height = lipgloss.Height(c.rendered)
}

// TextHeaderContainer renders a group header with expand state and indent
// proportional to nesting level.
type TextHeaderContainer struct {
	factory *TextFactory
	group   GroupInfo
	level   int
	slot    int
	width   int
	height  int

	rendered string
	dirty    bool
	gen      uint64

	hidden    bool
	offscreen bool
}

// Bind implements Container.
func (c *TextHeaderContainer) Bind(content any, slot int) {
	if g, ok := content.(GroupInfo); ok {
		c.group = g
		c.level = g.Level
	}
	c.slot = slot
	c.dirty = true
}

// Unbind implements Container.
func (c *TextHeaderContainer) Unbind() {
	c.group = GroupInfo{}
	c.slot = SlotNotFound
	c.dirty = true
}

// Slot implements Container.
func (c *TextHeaderContainer) Slot() int { return c.slot }

// Kind implements Container.
func (c *TextHeaderContainer) Kind() SlotKind { return SlotGroupHeader }

// SetWidth implements Container.
func (c *TextHeaderContainer) SetWidth(w int) {
	if w != c.width {
		c.width = w
		c.dirty = true
	}
}

// SetHidden implements Container.
func (c *TextHeaderContainer) SetHidden(hidden bool) { c.hidden = hidden }

// SetOffscreen implements Container.
func (c *TextHeaderContainer) SetOffscreen(off bool) { c.offscreen = off }

// Group returns the bound group info.
func (c *TextHeaderContainer) Group() GroupInfo { return c.group }

// Height implements Container.
func (c *TextHeaderContainer) Height() int {
	c.render()
	return c.height
}

// Render implements Container.
func (c *TextHeaderContainer) Render() string {
	if c.hidden || c.offscreen {
		return ""
	}
	c.render()
	return c.rendered
}

func (c *TextHeaderContainer) render() {
	if !c.dirty && c.gen == c.factory.layoutGen {
		return
	}
	c.dirty = false
	c.gen = c.factory.layoutGen

	marker := "▼"
	if c.group.Collapsed {
		marker = "▶"
	}
	indent := strings.Repeat("  ", c.level)
	line := indent + marker + " " + c.group.Key

	style := c.factory.Theme.GroupHeader
	if c.width > 0 {
		style = style.Width(c.width).MaxWidth(c.width)
	}
	c.rendered = style.Render(line)
	c.height = lipgloss.Height(c.rendered)
}

// padCell pads or truncates text to the given width.
func padCell(text string, width int) string {
	if width <= 0 {
		return text
	}
	w := lipgloss.Width(text)
	if w > width {
		// Truncation by rune keeps this allocation-light; wide glyphs
		// are padded out by the column join either way.
		runes := []rune(text)
		if len(runes) > width {
			runes = runes[:width]
		}
		return string(runes)
	}
	return text + strings.Repeat(" ", width-w)
}

func toDisplayString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case interface{ String() string }:
		return s.String()
	default:
		return ""
	}
}
