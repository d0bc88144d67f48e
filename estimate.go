package datagrid

// HeightEstimator predicts the height, in terminal rows, of slots that have
// never been rendered, and records actual heights once containers are
// measured. All inputs are tolerated: out-of-range slots, zero counts and
// negative measurements degrade to the default estimate rather than
// panicking, since estimators run inside the layout path.
type HeightEstimator interface {
	// EstimatedHeight returns the predicted height of a slot.
	EstimatedHeight(slot int, kind SlotKind, level int, hasDetails bool) int

	// RecordMeasured stores the actual height of a rendered slot.
	// Non-positive heights are ignored.
	RecordMeasured(slot, height int, hasDetails bool, detailsHeight int)

	// TotalHeight computes the estimated total content height from the
	// visible slot population.
	TotalHeight(totalSlots int, headerCounts []int, detailsVisible int) int

	// SlotAtOffset estimates which slot sits at a vertical offset,
	// letting the grid jump to an arbitrary scroll position without
	// realizing every intervening slot.
	SlotAtOffset(offset, totalSlots int) int

	// OffsetToSlot is the inverse estimate: the offset of a slot's top.
	OffsetToSlot(slot int) int

	// UpdateFromDisplayed recalibrates the running estimate from the
	// heights of the currently displayed window [first, last]. History
	// for slots outside the window is discarded.
	UpdateFromDisplayed(first, last int, heights []int)

	// CaptureState snapshots the estimator for detach/reattach cycles.
	CaptureState() EstimatorState

	// TryRestoreState restores a snapshot. It returns false and leaves
	// the estimator untouched when the snapshot came from an
	// incompatible estimator type.
	TryRestoreState(state EstimatorState) bool

	// Reset discards all measurements, for wholesale source replacement.
	Reset()
}

// EstimatorState is a serializable estimator snapshot. Token identifies the
// producing estimator type; restoring across types fails softly.
type EstimatorState struct {
	Token          string
	RowEstimate    float64
	HeaderEstimate int
	MeasuredCount  int
	Measured       map[int]int
}

const (
	defaultRowHeight    = 1
	defaultHeaderHeight = 1

	uniformStateToken   = "datagrid/uniform"
	averagingStateToken = "datagrid/averaging"
)

// UniformEstimator assumes every slot has a fixed height. Lookups and
// offset math are O(1), which makes it the right choice for single-line
// rows (the common case in a terminal).
type UniformEstimator struct {
	RowHeight    int
	HeaderHeight int
}

// NewUniformEstimator returns a uniform estimator with single-row slots.
func NewUniformEstimator() *UniformEstimator {
	return &UniformEstimator{RowHeight: defaultRowHeight, HeaderHeight: defaultHeaderHeight}
}

func (u *UniformEstimator) rowHeight() int {
	if u.RowHeight < 1 {
		return defaultRowHeight
	}
	return u.RowHeight
}

func (u *UniformEstimator) headerHeight() int {
	if u.HeaderHeight < 1 {
		return defaultHeaderHeight
	}
	return u.HeaderHeight
}

// EstimatedHeight implements HeightEstimator.
func (u *UniformEstimator) EstimatedHeight(slot int, kind SlotKind, level int, hasDetails bool) int {
	if kind == SlotGroupHeader {
		return u.headerHeight()
	}
	return u.rowHeight()
}

// RecordMeasured implements HeightEstimator. Uniform estimates ignore
// measurements.
func (u *UniformEstimator) RecordMeasured(slot, height int, hasDetails bool, detailsHeight int) {}

// TotalHeight implements HeightEstimator.
func (u *UniformEstimator) TotalHeight(totalSlots int, headerCounts []int, detailsVisible int) int {
	if totalSlots <= 0 {
		return 0
	}
	headers := 0
	for _, c := range headerCounts {
		headers += c
	}
	if headers > totalSlots {
		headers = totalSlots
	}
	return (totalSlots-headers)*u.rowHeight() + headers*u.headerHeight()
}

// SlotAtOffset implements HeightEstimator.
func (u *UniformEstimator) SlotAtOffset(offset, totalSlots int) int {
	if totalSlots <= 0 {
		return 0
	}
	slot := offset / u.rowHeight()
	if slot < 0 {
		slot = 0
	}
	if slot >= totalSlots {
		slot = totalSlots - 1
	}
	return slot
}

// OffsetToSlot implements HeightEstimator.
func (u *UniformEstimator) OffsetToSlot(slot int) int {
	if slot < 0 {
		return 0
	}
	return slot * u.rowHeight()
}

// UpdateFromDisplayed implements HeightEstimator. No-op for uniform rows.
func (u *UniformEstimator) UpdateFromDisplayed(first, last int, heights []int) {}

// CaptureState implements HeightEstimator.
func (u *UniformEstimator) CaptureState() EstimatorState {
	return EstimatorState{
		Token:          uniformStateToken,
		RowEstimate:    float64(u.rowHeight()),
		HeaderEstimate: u.headerHeight(),
	}
}

// TryRestoreState implements HeightEstimator.
func (u *UniformEstimator) TryRestoreState(state EstimatorState) bool {
	if state.Token != uniformStateToken {
		return false
	}
	u.RowHeight = int(state.RowEstimate)
	u.HeaderHeight = state.HeaderEstimate
	return true
}

// Reset implements HeightEstimator.
func (u *UniformEstimator) Reset() {}

// AveragingEstimator predicts unmeasured rows from a running average of
// measured ones and keeps a sparse cache of exact heights for slots seen
// this session. It is the default estimator for variable-height rows.
type AveragingEstimator struct {
	defaultHeight  int
	headerHeight   int
	detailsDefault int

	estimate float64 // running average of measured data rows
	count    int     // measurements contributing to estimate
	measured map[int]int
}

// NewAveragingEstimator returns an averaging estimator seeded with the
// given default row height.
func NewAveragingEstimator(defaultHeight int) *AveragingEstimator {
	if defaultHeight < 1 {
		defaultHeight = defaultRowHeight
	}
	return &AveragingEstimator{
		defaultHeight:  defaultHeight,
		headerHeight:   defaultHeaderHeight,
		detailsDefault: defaultHeight,
		estimate:       float64(defaultHeight),
		measured:       make(map[int]int),
	}
}

// HeaderHeight sets the height used for group header slots.
func (a *AveragingEstimator) HeaderHeight(h int) *AveragingEstimator {
	if h >= 1 {
		a.headerHeight = h
	}
	return a
}

// rowEstimate returns the current per-row estimate, never below one row.
func (a *AveragingEstimator) rowEstimate() int {
	h := int(a.estimate + 0.5)
	if h < 1 {
		h = 1
	}
	return h
}

// EstimatedHeight implements HeightEstimator.
func (a *AveragingEstimator) EstimatedHeight(slot int, kind SlotKind, level int, hasDetails bool) int {
	if kind == SlotGroupHeader {
		return a.headerHeight
	}
	h, ok := a.measured[slot]
	if !ok {
		h = a.rowEstimate()
	}
	if hasDetails {
		h += a.detailsDefault
	}
	return h
}

// RecordMeasured implements HeightEstimator.
func (a *AveragingEstimator) RecordMeasured(slot, height int, hasDetails bool, detailsHeight int) {
	if hasDetails && detailsHeight > 0 {
		height -= detailsHeight
	}
	if height <= 0 || slot < 0 {
		return
	}
	prev, seen := a.measured[slot]
	a.measured[slot] = height
	if seen {
		if prev != height && a.count > 0 {
			a.estimate += float64(height-prev) / float64(a.count)
		}
		return
	}
	a.count++
	a.estimate += (float64(height) - a.estimate) / float64(a.count)
}

// TotalHeight implements HeightEstimator.
func (a *AveragingEstimator) TotalHeight(totalSlots int, headerCounts []int, detailsVisible int) int {
	if totalSlots <= 0 {
		return 0
	}
	headers := 0
	for _, c := range headerCounts {
		headers += c
	}
	if headers > totalSlots {
		headers = totalSlots
	}
	dataRows := totalSlots - headers

	// Exact heights where known, the running estimate elsewhere. The
	// cache can hold slots beyond totalSlots after a shrink; those are
	// excluded.
	sum := 0
	known := 0
	for slot, h := range a.measured {
		if slot < totalSlots {
			sum += h
			known++
		}
	}
	if known > dataRows {
		known = dataRows
	}
	return sum + (dataRows-known)*a.rowEstimate() + headers*a.headerHeight +
		detailsVisible*a.detailsDefault
}

// SlotAtOffset implements HeightEstimator.
func (a *AveragingEstimator) SlotAtOffset(offset, totalSlots int) int {
	if totalSlots <= 0 || offset <= 0 {
		return 0
	}
	slot := offset / a.rowEstimate()
	if slot >= totalSlots {
		slot = totalSlots - 1
	}
	return slot
}

// OffsetToSlot implements HeightEstimator.
func (a *AveragingEstimator) OffsetToSlot(slot int) int {
	if slot < 0 {
		return 0
	}
	return slot * a.rowEstimate()
}

// UpdateFromDisplayed implements HeightEstimator. The running average is
// recomputed from the live window alone and cache entries outside the
// window are dropped, so estimates track the region the user is actually
// looking at without retaining unbounded history.
func (a *AveragingEstimator) UpdateFromDisplayed(first, last int, heights []int) {
	if first < 0 || last < first || len(heights) == 0 {
		return
	}
	for slot := range a.measured {
		if slot < first || slot > last {
			delete(a.measured, slot)
		}
	}
	sum := 0
	n := 0
	for i, h := range heights {
		if h <= 0 {
			continue
		}
		a.measured[first+i] = h
		sum += h
		n++
	}
	if n > 0 {
		a.estimate = float64(sum) / float64(n)
		a.count = n
	}
}

// CaptureState implements HeightEstimator.
func (a *AveragingEstimator) CaptureState() EstimatorState {
	measured := make(map[int]int, len(a.measured))
	for k, v := range a.measured {
		measured[k] = v
	}
	return EstimatorState{
		Token:          averagingStateToken,
		RowEstimate:    a.estimate,
		HeaderEstimate: a.headerHeight,
		MeasuredCount:  a.count,
		Measured:       measured,
	}
}

// TryRestoreState implements HeightEstimator.
func (a *AveragingEstimator) TryRestoreState(state EstimatorState) bool {
	if state.Token != averagingStateToken {
		return false
	}
	a.estimate = state.RowEstimate
	if a.estimate < 1 {
		a.estimate = float64(a.defaultHeight)
	}
	if state.HeaderEstimate >= 1 {
		a.headerHeight = state.HeaderEstimate
	}
	a.count = state.MeasuredCount
	a.measured = make(map[int]int, len(state.Measured))
	for k, v := range state.Measured {
		if k >= 0 && v > 0 {
			a.measured[k] = v
		}
	}
	return true
}

// Reset implements HeightEstimator.
func (a *AveragingEstimator) Reset() {
	a.estimate = float64(a.defaultHeight)
	a.count = 0
	a.measured = make(map[int]int)
}
