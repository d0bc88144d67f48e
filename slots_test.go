package datagrid

import (
	"fmt"
	"testing"
)

type row struct {
	Group string
	Sub   string
	Name  string
}

func groupedSource(counts map[string]int) *SliceSource[row] {
	var rows []row
	for _, g := range []string{"alpha", "beta", "gamma"} {
		for i := 0; i < counts[g]; i++ {
			rows = append(rows, row{Group: g, Name: fmt.Sprintf("%s-%d", g, i)})
		}
	}
	return NewSliceSource(rows...)
}

func byGroup() GroupDescriptor {
	return GroupDescriptor{Name: "Group", Key: func(item any) string { return item.(row).Group }}
}

func bySub() GroupDescriptor {
	return GroupDescriptor{Name: "Sub", Key: func(item any) string { return item.(row).Sub }}
}

func TestSlotMapUngrouped(t *testing.T) {
	src := NewSliceSource(row{Name: "a"}, row{Name: "b"}, row{Name: "c"})
	m := NewSlotMap(src)

	if got := m.TotalSlots(); got != 3 {
		t.Fatalf("TotalSlots = %d, want 3", got)
	}
	for slot := 0; slot < 3; slot++ {
		info := m.InfoAt(slot)
		if info.Kind != SlotDataRow || info.RowIndex != slot {
			t.Errorf("InfoAt(%d) = %+v, want data row %d", slot, info, slot)
		}
		if got := m.RowToSlot(slot); got != slot {
			t.Errorf("RowToSlot(%d) = %d", slot, got)
		}
	}
	if got := m.InfoAt(3).RowIndex; got != SlotNotFound {
		t.Errorf("InfoAt(3).RowIndex = %d, want SlotNotFound", got)
	}
	if got := m.RowToSlot(-1); got != SlotNotFound {
		t.Errorf("RowToSlot(-1) = %d, want SlotNotFound", got)
	}
}

func TestSlotMapGrouped(t *testing.T) {
	src := groupedSource(map[string]int{"alpha": 3, "beta": 2, "gamma": 4})
	m := NewSlotMap(src, byGroup())

	// 3 headers + 9 rows
	if got := m.TotalSlots(); got != 12 {
		t.Fatalf("TotalSlots = %d, want 12", got)
	}
	if got := m.HeaderCounts(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("HeaderCounts = %v, want [3]", got)
	}

	t.Run("sequential coverage", func(t *testing.T) {
		// Every slot resolves, data rows appear in order, each exactly once.
		seen := make(map[int]bool)
		prev := -1
		for slot := 0; slot < m.TotalSlots(); slot++ {
			info := m.InfoAt(slot)
			if info.Kind == SlotGroupHeader {
				continue
			}
			if info.RowIndex == SlotNotFound {
				t.Fatalf("slot %d resolved to no row", slot)
			}
			if seen[info.RowIndex] {
				t.Fatalf("row %d appears in two slots", info.RowIndex)
			}
			seen[info.RowIndex] = true
			if info.RowIndex <= prev {
				t.Fatalf("rows out of order at slot %d: %d after %d", slot, info.RowIndex, prev)
			}
			prev = info.RowIndex
		}
		if len(seen) != 9 {
			t.Fatalf("covered %d rows, want 9", len(seen))
		}
	})

	t.Run("round trip", func(t *testing.T) {
		for r := 0; r < 9; r++ {
			slot := m.RowToSlot(r)
			if slot == SlotNotFound {
				t.Fatalf("RowToSlot(%d) = SlotNotFound", r)
			}
			if back := m.SlotToRow(slot); back != r {
				t.Errorf("SlotToRow(RowToSlot(%d)) = %d", r, back)
			}
		}
	})

	t.Run("header positions", func(t *testing.T) {
		info := m.InfoAt(0)
		if info.Kind != SlotGroupHeader || info.Group.Key != "alpha" {
			t.Fatalf("slot 0 = %+v, want alpha header", info)
		}
		info = m.InfoAt(4) // 1 header + 3 rows
		if info.Kind != SlotGroupHeader || info.Group.Key != "beta" {
			t.Fatalf("slot 4 = %+v, want beta header", info)
		}
	})
}

func TestSlotMapCollapse(t *testing.T) {
	src := groupedSource(map[string]int{"alpha": 3, "beta": 2, "gamma": 4})
	m := NewSlotMap(src, byGroup())

	if err := m.SetCollapsed("beta", true); err != nil {
		t.Fatal(err)
	}

	// beta contributes only its header slot now.
	if got := m.TotalSlots(); got != 10 {
		t.Fatalf("TotalSlots = %d, want 10", got)
	}
	if got := m.CollapsedRowCount(); got != 2 {
		t.Fatalf("CollapsedRowCount = %d, want 2", got)
	}

	t.Run("hidden rows map to no slot", func(t *testing.T) {
		for r := 3; r < 5; r++ {
			if got := m.RowToSlot(r); got != SlotNotFound {
				t.Errorf("RowToSlot(%d) = %d, want SlotNotFound", r, got)
			}
		}
	})

	t.Run("later groups renumber", func(t *testing.T) {
		// gamma header follows immediately after beta's header.
		info := m.InfoAt(5)
		if info.Kind != SlotGroupHeader || info.Group.Key != "gamma" {
			t.Fatalf("slot 5 = %+v, want gamma header", info)
		}
		if got := m.RowToSlot(5); got != 6 {
			t.Errorf("RowToSlot(5) = %d, want 6", got)
		}
	})

	t.Run("collapsed header reports state", func(t *testing.T) {
		info := m.InfoAt(4)
		if info.Kind != SlotGroupHeader || !info.Group.Collapsed {
			t.Fatalf("slot 4 = %+v, want collapsed beta header", info)
		}
	})

	t.Run("expand restores numbering", func(t *testing.T) {
		if err := m.ToggleCollapsed("beta"); err != nil {
			t.Fatal(err)
		}
		if got := m.TotalSlots(); got != 12 {
			t.Fatalf("TotalSlots after expand = %d, want 12", got)
		}
		if got := m.RowToSlot(3); got != 5 {
			t.Errorf("RowToSlot(3) = %d, want 5", got)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		if err := m.SetCollapsed("nope", true); err != ErrGroupNotFound {
			t.Errorf("SetCollapsed(nope) err = %v, want ErrGroupNotFound", err)
		}
	})
}

func TestSlotMapNested(t *testing.T) {
	rows := []row{
		{Group: "a", Sub: "x", Name: "1"},
		{Group: "a", Sub: "x", Name: "2"},
		{Group: "a", Sub: "y", Name: "3"},
		{Group: "b", Sub: "x", Name: "4"},
	}
	src := NewSliceSource(rows...)
	m := NewSlotMap(src, byGroup(), bySub())

	// a, a/x, 2 rows, a/y, 1 row, b, b/x, 1 row = 9 slots
	if got := m.TotalSlots(); got != 9 {
		t.Fatalf("TotalSlots = %d, want 9", got)
	}
	if got := m.HeaderCounts(); got[0] != 2 || got[1] != 3 {
		t.Fatalf("HeaderCounts = %v, want [2 3]", got)
	}

	t.Run("paths", func(t *testing.T) {
		g, err := m.Group("a/y")
		if err != nil {
			t.Fatal(err)
		}
		if g.Level != 1 || g.RowStart != 2 || g.RowCount != 1 {
			t.Fatalf("Group(a/y) = %+v", g)
		}
	})

	t.Run("collapsing outer hides nested headers", func(t *testing.T) {
		if err := m.SetCollapsed("a", true); err != nil {
			t.Fatal(err)
		}
		// a (collapsed), b, b/x, 1 row
		if got := m.TotalSlots(); got != 4 {
			t.Fatalf("TotalSlots = %d, want 4", got)
		}
		if err := m.SetCollapsed("a", false); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("collapse state survives renumbering", func(t *testing.T) {
		if err := m.SetCollapsed("a/x", true); err != nil {
			t.Fatal(err)
		}
		src.Insert(0, row{Group: "a", Sub: "x", Name: "0"})
		m.Invalidate()
		if !m.IsCollapsed("a/x") {
			t.Fatal("a/x lost collapse state after insert")
		}
		// a, a/x (collapsed, now 3 hidden rows), a/y, 1 row, b, b/x, 1 row
		if got := m.TotalSlots(); got != 7 {
			t.Fatalf("TotalSlots = %d, want 7", got)
		}
		if got := m.CollapsedRowCount(); got != 3 {
			t.Fatalf("CollapsedRowCount = %d, want 3", got)
		}
	})
}

func TestSlotMapCollapseStatePruning(t *testing.T) {
	t.Run("vanished path is forgotten", func(t *testing.T) {
		src := groupedSource(map[string]int{"alpha": 2, "beta": 2})
		m := NewSlotMap(src, byGroup())
		if err := m.SetCollapsed("beta", true); err != nil {
			t.Fatal(err)
		}

		src.Set([]row{{Group: "alpha", Name: "alpha-0"}})
		m.Invalidate()
		if m.IsCollapsed("beta") {
			t.Fatal("collapse state retained for a path that no longer exists")
		}

		// The group coming back starts expanded.
		src.Add(row{Group: "beta", Name: "beta-0"})
		m.Invalidate()
		if got := m.TotalSlots(); got != 4 {
			t.Fatalf("TotalSlots = %d, want 4", got)
		}
	})

	t.Run("regroup drops the old paths", func(t *testing.T) {
		src := groupedSource(map[string]int{"alpha": 2, "beta": 2})
		m := NewSlotMap(src, byGroup())
		if err := m.SetCollapsed("alpha", true); err != nil {
			t.Fatal(err)
		}
		m.SetGroupBy(bySub())
		_ = m.TotalSlots()
		if m.IsCollapsed("alpha") {
			t.Fatal("collapse state survived a regroup that removed the path")
		}
	})

	t.Run("nested state survives a collapsed ancestor", func(t *testing.T) {
		rows := []row{
			{Group: "a", Sub: "x", Name: "1"},
			{Group: "a", Sub: "y", Name: "2"},
			{Group: "b", Sub: "z", Name: "3"},
		}
		src := NewSliceSource(rows...)
		m := NewSlotMap(src, byGroup(), bySub())
		if err := m.SetCollapsed("a/x", true); err != nil {
			t.Fatal(err)
		}
		if err := m.SetCollapsed("a", true); err != nil {
			t.Fatal(err)
		}
		_ = m.TotalSlots() // rebuild while a/x is shadowed by its ancestor

		if err := m.SetCollapsed("a", false); err != nil {
			t.Fatal(err)
		}
		if !m.IsCollapsed("a/x") {
			t.Fatal("nested collapse state lost while its ancestor was collapsed")
		}
		// a, a/x (collapsed), a/y, 1 row, b, b/z, 1 row
		if got := m.TotalSlots(); got != 7 {
			t.Fatalf("TotalSlots = %d, want 7", got)
		}
	})
}

func TestSlotMapLazyRebuild(t *testing.T) {
	src := groupedSource(map[string]int{"alpha": 2, "beta": 2})
	m := NewSlotMap(src, byGroup())
	_ = m.TotalSlots()

	// Mutating the source doesn't change answers until Invalidate.
	src.Add(row{Group: "beta", Name: "beta-9"})
	if got := m.TotalSlots(); got != 6 {
		t.Fatalf("TotalSlots before Invalidate = %d, want stale 6", got)
	}
	m.Invalidate()
	if got := m.TotalSlots(); got != 7 {
		t.Fatalf("TotalSlots after Invalidate = %d, want 7", got)
	}
}
