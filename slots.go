package datagrid

import "sort"

// SlotNotFound is returned by slot and row lookups that fall outside the
// currently visible sequence. Layout code treats it as "skip", never as a
// fault.
const SlotNotFound = -1

// SlotKind identifies what a slot displays.
type SlotKind uint8

const (
	SlotDataRow SlotKind = iota
	SlotGroupHeader
)

// GroupDescriptor describes one level of grouping. Key extracts the group
// key for an item; items with equal consecutive keys share a group. The
// source is expected to arrive ordered so that equal keys are contiguous —
// the slot map groups runs, it does not sort.
type GroupDescriptor struct {
	Name string
	Key  func(item any) string
}

// GroupInfo is the public view of a group. Path joins the keys from the
// root ("key0/key1/...") and is the stable identity used for
// expand/collapse state; slots are not stable identities.
type GroupInfo struct {
	Path      string
	Key       string
	Level     int
	RowStart  int // first data-row index in the subtree
	RowCount  int // data rows in the subtree
	Collapsed bool
}

// SlotInfo describes what occupies one visible slot.
type SlotInfo struct {
	Kind     SlotKind
	Level    int       // header nesting level; 0 for data rows
	RowIndex int       // item index for data rows, SlotNotFound for headers
	Group    GroupInfo // set for group headers
}

type groupNode struct {
	info     GroupInfo
	children []*groupNode
	// prefix[i] = visible slots contributed by children[0..i]. Built on
	// rebuild, used for O(log n) slot descent.
	prefix  []int
	visible int // slots contributed by this subtree, including the header
}

// SlotMap maintains the bijection between visible slots and
// (row index | group header). Mutations only mark the map dirty; the
// visible-count tree is rebuilt lazily on the next query.
type SlotMap struct {
	source    ItemSource
	groupBy   []GroupDescriptor
	collapsed map[string]bool

	roots      []*groupNode
	rootPrefix []int
	byPath     map[string]*groupNode

	totalRows     int
	totalVisible  int
	collapsedRows int
	headerCounts  []int

	dirty bool
}

// NewSlotMap creates a slot map over the given source with optional
// grouping.
func NewSlotMap(source ItemSource, groupBy ...GroupDescriptor) *SlotMap {
	return &SlotMap{
		source:    source,
		groupBy:   groupBy,
		collapsed: make(map[string]bool),
		dirty:     true,
	}
}

// Invalidate marks the map dirty. Slot numbers are recomputed on the next
// query, not eagerly.
func (m *SlotMap) Invalidate() {
	m.dirty = true
}

// SetGroupBy replaces the group descriptors. Collapse state keyed by path
// is retained where paths still exist after the rebuild.
func (m *SlotMap) SetGroupBy(groupBy ...GroupDescriptor) {
	m.groupBy = groupBy
	m.dirty = true
}

// Grouped reports whether any group descriptors are configured.
func (m *SlotMap) Grouped() bool {
	return len(m.groupBy) > 0
}

// TotalSlots returns the number of currently visible slots.
func (m *SlotMap) TotalSlots() int {
	m.ensure()
	return m.totalVisible
}

// TotalRows returns the number of data rows in the source, visible or not.
func (m *SlotMap) TotalRows() int {
	m.ensure()
	return m.totalRows
}

// CollapsedRowCount returns the number of data rows hidden under collapsed
// groups.
func (m *SlotMap) CollapsedRowCount() int {
	m.ensure()
	return m.collapsedRows
}

// HeaderCounts returns the number of visible group headers per level.
func (m *SlotMap) HeaderCounts() []int {
	m.ensure()
	return m.headerCounts
}

// InfoAt resolves a slot to its occupant. Slots outside
// [0, TotalSlots()) yield Kind SlotDataRow with RowIndex SlotNotFound.
func (m *SlotMap) InfoAt(slot int) SlotInfo {
	m.ensure()
	if slot < 0 || slot >= m.totalVisible {
		return SlotInfo{Kind: SlotDataRow, RowIndex: SlotNotFound}
	}
	if len(m.groupBy) == 0 {
		return SlotInfo{Kind: SlotDataRow, RowIndex: slot}
	}

	nodes := m.roots
	prefix := m.rootPrefix
	rem := slot
	for {
		i := sort.SearchInts(prefix, rem+1)
		if i > 0 {
			rem -= prefix[i-1]
		}
		node := nodes[i]
		if rem == 0 {
			info := node.info
			info.Collapsed = m.collapsed[info.Path]
			return SlotInfo{Kind: SlotGroupHeader, Level: info.Level, RowIndex: SlotNotFound, Group: info}
		}
		rem-- // consume the header slot
		if len(node.children) == 0 {
			return SlotInfo{Kind: SlotDataRow, RowIndex: node.info.RowStart + rem}
		}
		nodes = node.children
		prefix = node.prefix
	}
}

// RowToSlot converts a data-row index to its visible slot, or SlotNotFound
// when the row is hidden under a collapsed group or out of range.
func (m *SlotMap) RowToSlot(row int) int {
	m.ensure()
	if row < 0 || row >= m.totalRows {
		return SlotNotFound
	}
	if len(m.groupBy) == 0 {
		return row
	}

	nodes := m.roots
	prefix := m.rootPrefix
	slot := 0
	for {
		// Binary search for the child subtree containing the row.
		i := sort.Search(len(nodes), func(i int) bool {
			return nodes[i].info.RowStart+nodes[i].info.RowCount > row
		})
		if i >= len(nodes) {
			return SlotNotFound
		}
		node := nodes[i]
		if i > 0 {
			slot += prefix[i-1]
		}
		if m.collapsed[node.info.Path] {
			return SlotNotFound
		}
		slot++ // the group's header slot
		if len(node.children) == 0 {
			return slot + (row - node.info.RowStart)
		}
		nodes = node.children
		prefix = node.prefix
	}
}

// SlotToRow converts a slot to a data-row index, or SlotNotFound for group
// headers and out-of-range slots.
func (m *SlotMap) SlotToRow(slot int) int {
	info := m.InfoAt(slot)
	if info.Kind != SlotDataRow {
		return SlotNotFound
	}
	return info.RowIndex
}

// Group returns the group at the given path.
func (m *SlotMap) Group(path string) (GroupInfo, error) {
	m.ensure()
	node, ok := m.byPath[path]
	if !ok {
		return GroupInfo{}, ErrGroupNotFound
	}
	info := node.info
	info.Collapsed = m.collapsed[path]
	return info, nil
}

// SetCollapsed expands or collapses the group at path.
func (m *SlotMap) SetCollapsed(path string, collapsed bool) error {
	m.ensure()
	if _, ok := m.byPath[path]; !ok {
		return ErrGroupNotFound
	}
	if m.collapsed[path] == collapsed {
		return nil
	}
	if collapsed {
		m.collapsed[path] = true
	} else {
		delete(m.collapsed, path)
	}
	m.dirty = true
	return nil
}

// IsCollapsed reports the collapse state of the group at path.
func (m *SlotMap) IsCollapsed(path string) bool {
	m.ensure()
	return m.collapsed[path]
}

// ToggleCollapsed flips the collapse state of the group at path.
func (m *SlotMap) ToggleCollapsed(path string) error {
	return m.SetCollapsed(path, !m.collapsed[path])
}

// ensure rebuilds the visible-count tree if a mutation invalidated it.
func (m *SlotMap) ensure() {
	if !m.dirty {
		return
	}
	m.dirty = false
	m.totalRows = 0
	if m.source != nil {
		m.totalRows = m.source.Len()
	}
	m.collapsedRows = 0
	m.headerCounts = make([]int, len(m.groupBy))
	m.byPath = make(map[string]*groupNode)

	if len(m.groupBy) == 0 {
		m.roots = nil
		m.rootPrefix = nil
		m.totalVisible = m.totalRows
	} else {
		m.roots = m.buildLevel(0, 0, m.totalRows, "", false)
		m.rootPrefix = prefixSums(m.roots)
		m.totalVisible = 0
		for _, n := range m.roots {
			m.totalVisible += n.visible
		}
	}

	// Collapse state is keyed by path; paths gone after a regroup or
	// reset would otherwise pin stale entries forever.
	for path := range m.collapsed {
		if _, ok := m.byPath[path]; !ok {
			delete(m.collapsed, path)
		}
	}
}

// buildLevel groups the contiguous row range [start, start+count) at the
// given level and recurses into deeper levels. hidden marks subtrees under
// a collapsed ancestor: their nodes still register for path lookup and
// collapse-state retention, but contribute no visible slots and no header
// counts.
func (m *SlotMap) buildLevel(level, start, count int, parentPath string, hidden bool) []*groupNode {
	desc := m.groupBy[level]
	var nodes []*groupNode

	i := start
	end := start + count
	for i < end {
		key := desc.Key(m.source.At(i))
		j := i + 1
		for j < end && desc.Key(m.source.At(j)) == key {
			j++
		}

		path := key
		if parentPath != "" {
			path = parentPath + "/" + key
		}
		node := &groupNode{info: GroupInfo{
			Path:     path,
			Key:      key,
			Level:    level,
			RowStart: i,
			RowCount: j - i,
		}}
		m.byPath[path] = node
		collapsed := m.collapsed[path]
		if !hidden {
			m.headerCounts[level]++
			if collapsed {
				m.collapsedRows += j - i
			}
		}

		if level+1 < len(m.groupBy) {
			node.children = m.buildLevel(level+1, i, j-i, path, hidden || collapsed)
			node.prefix = prefixSums(node.children)
		}

		switch {
		case collapsed:
			// Only the header slot; the descent never enters a node whose
			// visible count is one.
			node.visible = 1
		case len(node.children) > 0:
			node.visible = 1
			for _, c := range node.children {
				node.visible += c.visible
			}
		default:
			node.visible = 1 + (j - i)
		}

		nodes = append(nodes, node)
		i = j
	}
	return nodes
}

func prefixSums(nodes []*groupNode) []int {
	prefix := make([]int, len(nodes))
	sum := 0
	for i, n := range nodes {
		sum += n.visible
		prefix[i] = sum
	}
	return prefix
}
