package datagrid

import (
	"fmt"
	"testing"
)

func flatSource(n int) *SliceSource[row] {
	rows := make([]row, n)
	for i := range rows {
		rows[i] = row{Name: fmt.Sprintf("r%d", i)}
	}
	return NewSliceSource(rows...)
}

func uniformVirtualizer(n int) (*Virtualizer, *SlotMap) {
	m := NewSlotMap(flatSource(n))
	return NewVirtualizer(m, NewUniformEstimator()), m
}

// checkCoverage asserts the displayed range exactly tiles the viewport:
// no gaps, no overlap, heights summing to at least the viewport unless
// content ran out.
func checkCoverage(t *testing.T, v *Virtualizer, first, last, neg, viewportH, total int) {
	t.Helper()
	if last < first {
		t.Fatalf("empty range [%d, %d]", first, last)
	}
	if first < 0 || last >= total {
		t.Fatalf("range [%d, %d] out of bounds [0, %d)", first, last, total)
	}
	if neg < 0 || neg >= v.HeightOf(first) {
		t.Fatalf("neg = %d outside first slot height %d", neg, v.HeightOf(first))
	}
	filled := -neg
	for s := first; s <= last; s++ {
		filled += v.HeightOf(s)
	}
	if filled < viewportH && (first > 0 || neg > 0) {
		t.Fatalf("viewport underfilled: %d of %d with slack above", filled, viewportH)
	}
}

func TestComputeDisplayedSlots(t *testing.T) {
	v, m := uniformVirtualizer(100)

	t.Run("top of content", func(t *testing.T) {
		first, last, neg := v.ComputeDisplayedSlots(5, 0)
		if first != 0 || last != 4 || neg != 0 {
			t.Fatalf("got [%d, %d] neg %d, want [0, 4] neg 0", first, last, neg)
		}
	})

	t.Run("jump to the middle", func(t *testing.T) {
		first, last, neg := v.ComputeDisplayedSlots(5, 50)
		if first < 46 || first > 50 {
			t.Fatalf("first = %d, want within [46, 50]", first)
		}
		checkCoverage(t, v, first, last, neg, 5, m.TotalSlots())
	})

	t.Run("jump back to the top", func(t *testing.T) {
		first, last, neg := v.ComputeDisplayedSlots(5, 0)
		if first != 0 || last != 4 || neg != 0 {
			t.Fatalf("got [%d, %d] neg %d, want [0, 4] neg 0", first, last, neg)
		}
	})

	t.Run("window never exceeds viewport capacity", func(t *testing.T) {
		for offset := 0; offset <= 95; offset += 7 {
			first, last, neg := v.ComputeDisplayedSlots(5, offset)
			if n := last - first + 1; n > 6 {
				t.Fatalf("offset %d realized %d slots for viewport 5", offset, n)
			}
			checkCoverage(t, v, first, last, neg, 5, 100)
		}
	})

	t.Run("small steps keep the walk contiguous", func(t *testing.T) {
		prevFirst := -1
		for offset := 0; offset <= 40; offset++ {
			first, last, neg := v.ComputeDisplayedSlots(5, offset)
			checkCoverage(t, v, first, last, neg, 5, 100)
			if first < prevFirst {
				t.Fatalf("first slot moved backward while scrolling down: %d after %d", first, prevFirst)
			}
			prevFirst = first
		}
	})

	t.Run("bottom backfills to a full viewport", func(t *testing.T) {
		first, last, neg := v.ComputeDisplayedSlots(5, 95)
		if last != 99 {
			t.Fatalf("last = %d, want 99", last)
		}
		if first != 95 || neg != 0 {
			t.Fatalf("got first %d neg %d, want 95 / 0", first, neg)
		}
	})

	t.Run("offset past the extent still fills", func(t *testing.T) {
		first, last, neg := v.ComputeDisplayedSlots(5, 10_000)
		if last != 99 {
			t.Fatalf("last = %d, want 99", last)
		}
		checkCoverage(t, v, first, last, neg, 5, 100)
	})

	t.Run("empty source yields an empty range", func(t *testing.T) {
		v, _ := uniformVirtualizer(0)
		first, last, _ := v.ComputeDisplayedSlots(5, 0)
		if last >= first {
			t.Fatalf("non-empty range [%d, %d] for empty source", first, last)
		}
	})

	t.Run("unbounded viewport is clamped", func(t *testing.T) {
		v, _ := uniformVirtualizer(1000)
		first, last, _ := v.ComputeDisplayedSlots(1<<30, 0)
		if n := last - first + 1; n > defaultPrefetch {
			t.Fatalf("unbounded viewport realized %d slots", n)
		}
		// After a valid arrange, the remembered size is used instead.
		v.ComputeDisplayedSlots(10, 0)
		first, last, _ = v.ComputeDisplayedSlots(1<<30, 0)
		if n := last - first + 1; n != 10 {
			t.Fatalf("clamp to last viewport realized %d slots, want 10", n)
		}
	})
}

func TestComputeDisplayedSlotsVariableHeights(t *testing.T) {
	m := NewSlotMap(flatSource(20))
	est := NewAveragingEstimator(1)
	// Slots 0-4 are tall.
	for s := 0; s < 5; s++ {
		est.RecordMeasured(s, 3, false, 0)
	}
	v := NewVirtualizer(m, est)

	t.Run("partial first slot decomposes into neg", func(t *testing.T) {
		// Offset 4 lands one row into slot 1 (slot 0 covers [0, 3)).
		first, _, neg := v.ComputeDisplayedSlots(6, 4)
		if first != 1 || neg != 1 {
			t.Fatalf("got first %d neg %d, want 1 / 1", first, neg)
		}
	})

	t.Run("heights drive the fill count", func(t *testing.T) {
		first, last, neg := v.ComputeDisplayedSlots(6, 0)
		if first != 0 || neg != 0 {
			t.Fatalf("got first %d neg %d", first, neg)
		}
		// 3 + 3 = 6 fills the viewport with two slots.
		if last != 1 {
			t.Fatalf("last = %d, want 1", last)
		}
	})

	t.Run("invalidate discards the anchor", func(t *testing.T) {
		v.ComputeDisplayedSlots(6, 10)
		v.Invalidate()
		first, last, neg := v.ComputeDisplayedSlots(6, 0)
		if first != 0 {
			t.Fatalf("first = %d after invalidate, want 0", first)
		}
		checkCoverage(t, v, first, last, neg, 6, 20)
	})
}

// walkUnitOffsets scrolls one offset unit at a time and asserts the first
// displayed slot never jumps by more than one slot per step, with the
// remainder staying inside the first slot's height.
func walkUnitOffsets(t *testing.T, v *Virtualizer, viewportH, total int) {
	t.Helper()
	prevFirst := 0
	for offset := 0; offset <= v.Extent()-viewportH; offset++ {
		first, last, neg := v.ComputeDisplayedSlots(viewportH, offset)
		checkCoverage(t, v, first, last, neg, viewportH, total)
		if first < prevFirst || first > prevFirst+1 {
			t.Fatalf("offset %d: first slot jumped from %d to %d", offset, prevFirst, first)
		}
		prevFirst = first
	}
}

func TestComputeDisplayedSlotsCollapsedGroupContinuity(t *testing.T) {
	src := groupedSource(map[string]int{"alpha": 10, "beta": 8, "gamma": 5})
	m := NewSlotMap(src, byGroup())
	if err := m.SetCollapsed("alpha", true); err != nil {
		t.Fatal(err)
	}

	// alpha header + beta header + 8 rows + gamma header + 5 rows.
	if got := m.TotalSlots(); got != 16 {
		t.Fatalf("TotalSlots = %d, want 16", got)
	}

	t.Run("single-row slots", func(t *testing.T) {
		v := NewVirtualizer(m, NewUniformEstimator())
		walkUnitOffsets(t, v, 5, m.TotalSlots())
	})

	t.Run("multi-row slots", func(t *testing.T) {
		// Rows taller than headers: scrolling past the collapsed header
		// must still advance one slot at a time, with only a row-height
		// remainder absorbed by neg.
		v := NewVirtualizer(m, &UniformEstimator{RowHeight: 2, HeaderHeight: 1})
		walkUnitOffsets(t, v, 5, m.TotalSlots())
	})
}

func TestVirtualizerExtent(t *testing.T) {
	src := groupedSource(map[string]int{"alpha": 5, "beta": 5, "gamma": 5})
	m := NewSlotMap(src, byGroup())
	v := NewVirtualizer(m, NewUniformEstimator())

	// 3 headers + 15 rows, all height 1.
	if got := v.Extent(); got != 18 {
		t.Fatalf("Extent = %d, want 18", got)
	}

	// Collapsing removes the hidden rows from the extent.
	if err := m.SetCollapsed("beta", true); err != nil {
		t.Fatal(err)
	}
	v.Invalidate()
	if got := v.Extent(); got != 13 {
		t.Fatalf("Extent after collapse = %d, want 13", got)
	}
}

func TestOffsetToReveal(t *testing.T) {
	v, _ := uniformVirtualizer(100)
	v.ComputeDisplayedSlots(10, 20)

	t.Run("already visible keeps the offset", func(t *testing.T) {
		if got := v.OffsetToReveal(25, 10, 20); got != 20 {
			t.Errorf("OffsetToReveal = %d, want unchanged 20", got)
		}
	})

	t.Run("above scrolls to the slot top", func(t *testing.T) {
		if got := v.OffsetToReveal(15, 10, 20); got != 15 {
			t.Errorf("OffsetToReveal = %d, want 15", got)
		}
	})

	t.Run("below bottom-aligns", func(t *testing.T) {
		if got := v.OffsetToReveal(35, 10, 20); got != 26 {
			t.Errorf("OffsetToReveal = %d, want 26", got)
		}
	})

	t.Run("out of range keeps the offset", func(t *testing.T) {
		if got := v.OffsetToReveal(-1, 10, 20); got != 20 {
			t.Errorf("OffsetToReveal(-1) = %d", got)
		}
		if got := v.OffsetToReveal(100, 10, 20); got != 20 {
			t.Errorf("OffsetToReveal(100) = %d", got)
		}
	})
}
