package bars

import (
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
)

// Pick handles a pointer hit on instance index of the named series, as
// reported by a picking collaborator against the latest frame. Hits on
// zero-height bars, hidden series or unknown indices are ignored. A valid
// hit selects the bar and, in Slice mode, opens the slice view.
//
// It reports whether the selection changed.
func (g *Graph) Pick(seriesName string, index int) bool {
	s := g.SeriesByName(seriesName)
	if s == nil || !s.Visible {
		g.logger.Debug("ignoring pick on unknown or hidden series", "series", seriesName)
		return false
	}
	coord, ok := g.cache.Resolve(seriesName, index)
	if !ok {
		g.logger.Debug("ignoring pick", "series", seriesName, "index", index)
		return false
	}
	return g.sel.SetSelectedBar(g, coord, s, true)
}

// PickBackground handles a hit on the floor or background: the selection
// is cleared and the slice view closed.
func (g *Graph) PickBackground() bool {
	return g.sel.Clear(g)
}

// PickAxisLabel handles a hit on a row (KindRow) or column (KindColumn)
// label. index counts from the first label in the data window. The whole
// row or column is selected on the currently selected series, or on the
// primary series when nothing is selected. Label picks need the matching
// Row or Column flag in the selection mode.
func (g *Graph) PickAxisLabel(orientation selection.Kind, index int) bool {
	mode := g.sel.Mode()
	w := g.DataWindow()
	st := g.sel.State()

	target := st.Series
	if target == nil || !target.Visible {
		target = g.labelTarget()
	}
	if target == nil {
		return false
	}

	var coord series.Position
	switch orientation {
	case selection.KindRow:
		if !mode.Has(selection.Row) {
			return false
		}
		coord = series.Position{Row: w.RowMin + index, Col: w.ColMin}
		if st.Valid() {
			coord.Col = st.Coord.Col
		}
	case selection.KindColumn:
		if !mode.Has(selection.Column) {
			return false
		}
		coord = series.Position{Row: w.RowMin, Col: w.ColMin + index}
		if st.Valid() {
			coord.Row = st.Coord.Row
		}
	default:
		return false
	}
	if !w.Contains(coord) {
		return false
	}
	return g.sel.SetSelectedBar(g, coord, target, true)
}

// labelTarget returns the primary series if visible, otherwise the first
// visible series.
func (g *Graph) labelTarget() *series.Series {
	if g.primary != nil && g.primary.Visible {
		return g.primary
	}
	for _, s := range g.series {
		if s.Visible {
			return s
		}
	}
	return nil
}
