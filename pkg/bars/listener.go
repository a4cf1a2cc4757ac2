package bars

import (
	"github.com/matzehuels/barscene/pkg/core/change"
	"github.com/matzehuels/barscene/pkg/core/series"
)

// seriesListener forwards array notifications of one attached series to
// the graph.
type seriesListener struct {
	g *Graph
	s *series.Series
}

var _ series.Listener = (*seriesListener)(nil)

func (l *seriesListener) dataChanged(rebuild bool) {
	l.g.tracker.Mark(change.Data)
	if rebuild {
		l.g.tracker.MarkRebuild(l.s.Name)
	}
	if l.s.Visible {
		l.g.adjustAxisRanges()
	}
}

func (l *seriesListener) ArrayReset() {
	l.dataChanged(true)
	l.g.sel.Revalidate(l.g)
}

func (l *seriesListener) RowsAdded(start, count int) {
	l.dataChanged(true)
}

func (l *seriesListener) RowsChanged(start, count int) {
	l.dataChanged(false)
	l.g.sel.Revalidate(l.g)
}

// The selection shifts before the axes re-fit, since the re-fit
// revalidates the selected coordinate against the mutated array.
func (l *seriesListener) RowsRemoved(start, count int) {
	l.g.sel.RowsRemoved(l.g, l.s, start, count)
	l.dataChanged(true)
	l.g.sel.Revalidate(l.g)
}

func (l *seriesListener) RowsInserted(start, count int) {
	l.g.sel.RowsInserted(l.g, l.s, start, count)
	l.dataChanged(true)
}

func (l *seriesListener) ItemChanged(row, col int) {
	l.dataChanged(false)
}
