// Package change tracks which parts of a scene need recomputing.
//
// A [Tracker] is an explicit value owned by a scene and passed by pointer to
// every stage of an update cycle. Flags are set by configuration setters and
// data notifications, and cleared by the stage that consumed them only after
// that stage has finished.
package change

import "strings"

// Flag is one dirty bit.
type Flag uint32

const (
	// Data means values changed and bar heights need recomputing.
	Data Flag = 1 << iota
	// Visuals means colors or selection highlights changed.
	Visuals
	// Selection means the selected bar moved or was cleared.
	Selection
	// AxisRange means a row, column or value range changed.
	AxisRange
	// Spacing means bar thickness or spacing changed.
	Spacing
	// SeriesMargin means the inter-series margin changed.
	SeriesMargin
	// FloorLevel means the floor level changed.
	FloorLevel
	// Mode means the selection mode changed.
	Mode
	// SliceActivated means slicing was turned on or off.
	SliceActivated
	// SeriesList means series were attached, detached or changed visibility.
	SeriesList
)

var flagNames = []struct {
	f    Flag
	name string
}{
	{Data, "data"},
	{Visuals, "visuals"},
	{Selection, "selection"},
	{AxisRange, "axis-range"},
	{Spacing, "spacing"},
	{SeriesMargin, "series-margin"},
	{FloorLevel, "floor-level"},
	{Mode, "mode"},
	{SliceActivated, "slice-activated"},
	{SeriesList, "series-list"},
}

// String lists the set flags, separated by "|".
func (f Flag) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, n := range flagNames {
		if f&n.f != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Has reports whether any flag in o is set in f.
func (f Flag) Has(o Flag) bool { return f&o != 0 }

// Geometry is the set of flags that require a scale recompute.
const Geometry = AxisRange | Spacing | SeriesMargin | SeriesList

// Tracker holds scene-wide flags plus the set of series whose bar instances
// must be rebuilt instead of refreshed.
type Tracker struct {
	flags   Flag
	rebuild map[string]struct{}
}

// Mark sets f.
func (t *Tracker) Mark(f Flag) { t.flags |= f }

// Has reports whether any flag in f is set.
func (t *Tracker) Has(f Flag) bool { return t.flags&f != 0 }

// Clear unsets f.
func (t *Tracker) Clear(f Flag) { t.flags &^= f }

// Flags returns the current flag set.
func (t *Tracker) Flags() Flag { return t.flags }

// Any reports whether anything at all is pending.
func (t *Tracker) Any() bool { return t.flags != 0 || len(t.rebuild) > 0 }

// MarkRebuild requests a full instance rebuild for the named series.
func (t *Tracker) MarkRebuild(name string) {
	if t.rebuild == nil {
		t.rebuild = make(map[string]struct{})
	}
	t.rebuild[name] = struct{}{}
}

// NeedsRebuild reports whether the named series must be rebuilt.
func (t *Tracker) NeedsRebuild(name string) bool {
	_, ok := t.rebuild[name]
	return ok
}

// ClearRebuild drops the rebuild request for the named series.
func (t *Tracker) ClearRebuild(name string) { delete(t.rebuild, name) }

// Reset clears everything.
func (t *Tracker) Reset() {
	t.flags = 0
	t.rebuild = nil
}
