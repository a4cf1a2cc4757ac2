// Package slice projects the selected row or column of a bar scene onto a
// flat cross-section.
//
// The projection reuses the geometry already computed by the layout engine.
// With Row selection the bars of the selected row keep their x position and
// are moved to z = 0. With Column selection the bars of the selected column
// are laid out along x using their z position, offset slightly per series so
// that series sharing a cell stay apart.
package slice

import (
	stderrors "errors"

	"github.com/matzehuels/barscene/pkg/core/layout"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
)

// ErrStaleIndex is returned when the selection or data changed after the
// layout was built and a slice bar has no counterpart in the full layout.
// Callers turn slicing off when they see it.
var ErrStaleIndex = stderrors.New("slice: selection does not match current layout")

// seriesGap separates series along x in a column slice.
const seriesGap = 0.1

// Source is one series and its laid-out bars.
type Source struct {
	Series      *series.Series
	VisualIndex int
	// Bars is the full row-major instance list of the series.
	Bars []layout.BarInstance
}

// Input is everything Project needs.
type Input struct {
	Mode           selection.Mode
	Selected       series.Position
	SelectedSeries *series.Series
	Window         series.Window
	Sources        []Source
}

// View is one projected cross-section.
type View struct {
	// Orientation is KindRow for a row slice and KindColumn for a column slice.
	Orientation selection.Kind `json:"orientation" bson:"orientation"`

	// Index is the selected row or column.
	Index int                  `json:"index" bson:"index"`
	Bars  []layout.BarInstance `json:"bars" bson:"bars"`
}

// Project builds the slice view. Hidden series are skipped, and unless
// MultiSeries is set only the selected series contributes bars.
func Project(in Input) (View, error) {
	if in.SelectedSeries == nil || !in.Selected.Valid() {
		return View{}, ErrStaleIndex
	}
	rowMode := in.Mode.Has(selection.Row)
	v := View{Orientation: selection.KindColumn, Index: in.Selected.Col}
	if rowMode {
		v.Orientation, v.Index = selection.KindRow, in.Selected.Row
	}

	for _, src := range in.Sources {
		s := src.Series
		if !s.Visible || (s != in.SelectedSeries && !in.Mode.Has(selection.MultiSeries)) {
			continue
		}
		for _, p := range slicePositions(s, in.Window, in.Selected, rowMode) {
			idx := layout.IndexOf(src.Bars, p)
			if idx < 0 {
				return View{}, ErrStaleIndex
			}
			b := src.Bars[idx]
			b.VisualIndex = src.VisualIndex
			if rowMode {
				b.Position.Z = 0
			} else {
				b.Position.X = b.Position.Z - float64(src.VisualIndex)*seriesGap
				b.Position.Z = 0
			}

			b.Selected = s == in.SelectedSeries && p == in.Selected && in.Mode.Has(selection.Item)
			if b.Selected {
				b.Highlight = selection.KindItem
				b.Color = s.Style.SingleHighlightColor
			} else {
				b.Highlight = selection.KindNone
				b.Color = s.Style.BaseColor
			}
			v.Bars = append(v.Bars, b)
		}
	}
	return v, nil
}

// slicePositions lists the coordinates of s that belong to the slice,
// clipped to the window and to the data.
func slicePositions(s *series.Series, w series.Window, sel series.Position, rowMode bool) []series.Position {
	data := s.Data()
	var out []series.Position
	if rowMode {
		if sel.Row < w.RowMin || sel.Row > w.RowMax {
			return nil
		}
		n := data.ColumnCount(sel.Row)
		for col := w.ColMin; col <= w.ColMax && col < n; col++ {
			out = append(out, series.Position{Row: sel.Row, Col: col})
		}
		return out
	}
	if sel.Col < w.ColMin || sel.Col > w.ColMax {
		return nil
	}
	for row := w.RowMin; row <= w.RowMax && row < data.RowCount(); row++ {
		if sel.Col < data.ColumnCount(row) {
			out = append(out, series.Position{Row: row, Col: sel.Col})
		}
	}
	return out
}
