package selection

import "github.com/matzehuels/barscene/pkg/core/series"

// GraphHandle is the view of the owning scene that selection operations
// need. It is passed in explicitly; series never refer back to a scene.
type GraphHandle interface {
	// Attached reports whether s is currently part of the scene.
	Attached(s *series.Series) bool
	// DataWindow returns the current row and column window.
	DataWindow() series.Window
	// MarkVisualsDirty requests a highlight refresh on the next sync.
	MarkVisualsDirty()
	// SetSlicingActive turns the slice view on or off.
	SetSlicingActive(active bool)
	// SlicingActive reports whether the slice view is on.
	SlicingActive() bool
	// AllSeries returns every attached series in insertion order.
	AllSeries() []*series.Series
}

// State is a snapshot of the selection.
type State struct {
	Coord  series.Position
	Series *series.Series
	Mode   Mode
}

// Valid reports whether a bar is selected.
func (s State) Valid() bool { return s.Series != nil && s.Coord.Valid() }

// Machine holds the single selection of a scene. The zero value has no
// selection and mode None; use [NewMachine] for the default mode.
type Machine struct {
	mode   Mode
	coord  series.Position
	series *series.Series
}

// NewMachine returns a machine with mode and no selection. An invalid mode
// falls back to DefaultMode.
func NewMachine(mode Mode) *Machine {
	if mode.Validate() != nil {
		mode = DefaultMode
	}
	return &Machine{mode: mode, coord: series.InvalidPosition}
}

// Mode returns the active selection mode.
func (m *Machine) Mode() Mode { return m.mode }

// State returns the current selection.
func (m *Machine) State() State {
	return State{Coord: m.coord, Series: m.series, Mode: m.mode}
}

// Selected returns the selected coordinate and series. The coordinate is
// series.InvalidPosition when nothing is selected.
func (m *Machine) Selected() (series.Position, *series.Series) {
	return m.coord, m.series
}

// SetMode switches the selection mode. Invalid modes are rejected and the
// previous mode is kept. Leaving Slice turns slicing off.
func (m *Machine) SetMode(h GraphHandle, mode Mode) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	if mode == m.mode {
		return nil
	}
	prev := m.mode
	m.mode = mode
	if prev.Has(Slice) && !mode.Has(Slice) {
		h.SetSlicingActive(false)
	}
	h.MarkVisualsDirty()
	m.SetSelectedBar(h, m.coord, m.series, mode.Has(Slice))
	return nil
}

// SetSelectedBar selects coord in s. Coordinates outside the data of s, a nil
// s or a series that is not attached resolve to no selection. With Slice
// mode on, slicing is turned off when the bar is outside the data window or
// s is hidden, and turned on when enterSlice is set.
//
// It reports whether the selection changed. Repeating a call with the same
// arguments is a no-op.
func (m *Machine) SetSelectedBar(h GraphHandle, coord series.Position, s *series.Series, enterSlice bool) bool {
	if s != nil && !h.Attached(s) {
		s = nil
	}
	if s == nil || !s.Contains(coord) {
		coord, s = series.InvalidPosition, nil
	}

	if m.mode.Has(Slice) {
		if s == nil || !s.Visible || !h.DataWindow().Contains(coord) {
			h.SetSlicingActive(false)
		} else if enterSlice {
			h.SetSlicingActive(true)
		}
	}

	if coord == m.coord && s == m.series {
		return false
	}
	m.coord, m.series = coord, s

	for _, other := range h.AllSeries() {
		if other != s {
			other.SelectedBar = series.InvalidPosition
		}
	}
	if s != nil {
		s.SelectedBar = coord
	}
	h.MarkVisualsDirty()

	if s == nil {
		h.SetSlicingActive(false)
	}
	return true
}

// Clear drops the selection.
func (m *Machine) Clear(h GraphHandle) bool {
	return m.SetSelectedBar(h, series.InvalidPosition, nil, false)
}

// Revalidate re-applies the current selection against the current data,
// clearing it when the selected bar no longer exists.
func (m *Machine) Revalidate(h GraphHandle) bool {
	return m.SetSelectedBar(h, m.coord, m.series, false)
}

// IsSelected classifies the bar at (row, col) of s. Item matches need the
// exact bar and the Item flag. Row and Column matches need the matching
// index and flag, on the selected series or, with MultiSeries, on any
// series once a selection exists.
func (m *Machine) IsSelected(row, col int, s *series.Series) Kind {
	if m.series == nil || !m.coord.Valid() {
		return KindNone
	}
	if s != m.series && !m.mode.Has(MultiSeries) {
		return KindNone
	}
	switch {
	case s == m.series && row == m.coord.Row && col == m.coord.Col && m.mode.Has(Item):
		return KindItem
	case row == m.coord.Row && m.mode.Has(Row):
		return KindRow
	case col == m.coord.Col && m.mode.Has(Column):
		return KindColumn
	}
	return KindNone
}

// RowsInserted shifts the selection when count rows were inserted at or
// before the selected row of s.
func (m *Machine) RowsInserted(h GraphHandle, s *series.Series, start, count int) bool {
	if s != m.series || !m.coord.Valid() || count <= 0 || start > m.coord.Row {
		return false
	}
	return m.SetSelectedBar(h, series.Position{Row: m.coord.Row + count, Col: m.coord.Col}, s, false)
}

// RowsRemoved shifts the selection down when rows before it were removed
// and clears it when the selected row itself was removed.
func (m *Machine) RowsRemoved(h GraphHandle, s *series.Series, start, count int) bool {
	if s != m.series || !m.coord.Valid() || count <= 0 || start > m.coord.Row {
		return false
	}
	if start+count > m.coord.Row {
		return m.Clear(h)
	}
	return m.SetSelectedBar(h, series.Position{Row: m.coord.Row - count, Col: m.coord.Col}, s, false)
}

// SeriesRemoved clears the selection when it belonged to s.
func (m *Machine) SeriesRemoved(h GraphHandle, s *series.Series) bool {
	if s == nil || s != m.series {
		return false
	}
	s.SelectedBar = series.InvalidPosition
	m.coord, m.series = series.InvalidPosition, nil
	h.MarkVisualsDirty()
	h.SetSlicingActive(false)
	return true
}
