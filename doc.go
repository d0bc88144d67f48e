// Package datagrid provides a virtualized table widget for terminal UIs.
//
// The grid maps a possibly-grouped, possibly-collapsed item sequence onto a
// dense "slot" address space, realizes styled containers only for the slots
// inside the viewport, and recycles containers as the window slides. Row
// heights are estimated until measured, so the scrollable extent stays stable
// while the user scrolls through rows that have never been rendered.
//
// The engine itself (SlotMap, HeightEstimator, RecyclePool, Virtualizer,
// ScrollModel, ColumnSet) has no terminal dependency and can drive any host
// that supplies a ContainerFactory and a viewport size. Grid ties the engine
// to the bubbletea event loop and renders with lipgloss.
package datagrid
