package bars

import (
	"github.com/matzehuels/barscene/pkg/core/axis"
	"github.com/matzehuels/barscene/pkg/core/layout"
	"github.com/matzehuels/barscene/pkg/core/scale"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
	"github.com/matzehuels/barscene/pkg/core/slice"
)

// Frame is the output of one sync cycle. Nothing in a Frame is modified
// after it is returned, so it can be handed to a renderer or another
// goroutine as is.
type Frame struct {
	Seq uint64 `json:"seq" bson:"seq"`

	Window     series.Window `json:"window" bson:"window"`
	ValueRange axis.Range    `json:"value_range" bson:"value_range"`
	Params     scale.Params  `json:"params" bson:"params"`

	// SceneExtent is the half size of the floor plane in world units.
	SceneExtent scale.Size `json:"scene_extent" bson:"scene_extent"`
	// BackgroundAdjustment is the y offset of the floor plane.
	BackgroundAdjustment float64 `json:"background_adjustment" bson:"background_adjustment"`

	RowLabels    []string `json:"row_labels,omitempty" bson:"row_labels,omitempty"`
	ColumnLabels []string `json:"column_labels,omitempty" bson:"column_labels,omitempty"`

	Series    []SeriesFrame  `json:"series" bson:"series"`
	Selection SelectionFrame `json:"selection" bson:"selection"`

	// SelectedAnchor is where a label for the selected bar goes: just above
	// the top of a bar above the floor, just below a bar under it.
	SelectedAnchor *layout.Vec3 `json:"selected_anchor,omitempty" bson:"selected_anchor,omitempty"`

	SlicingActive bool        `json:"slicing_active" bson:"slicing_active"`
	Slice         *slice.View `json:"slice,omitempty" bson:"slice,omitempty"`

	// VisualsDirty and DataDirty tell a renderer whether colors or geometry
	// changed since the previous frame.
	VisualsDirty bool `json:"visuals_dirty" bson:"visuals_dirty"`
	DataDirty    bool `json:"data_dirty" bson:"data_dirty"`
}

// SeriesFrame is the laid-out state of one series.
type SeriesFrame struct {
	Name        string               `json:"name" bson:"name"`
	Visible     bool                 `json:"visible" bson:"visible"`
	VisualIndex int                  `json:"visual_index" bson:"visual_index"`
	Style       series.Style         `json:"style" bson:"style"`
	Bars        []layout.BarInstance `json:"bars" bson:"bars"`
}

// SelectionFrame describes the selection at the time of a frame.
type SelectionFrame struct {
	Series string          `json:"series,omitempty" bson:"series,omitempty"`
	Coord  series.Position `json:"coord" bson:"coord"`
	Mode   selection.Mode  `json:"mode" bson:"mode"`
}

// Valid reports whether a bar is selected.
func (s SelectionFrame) Valid() bool { return s.Series != "" && s.Coord.Valid() }

// BarCount returns the number of bars across all series.
func (f Frame) BarCount() int {
	n := 0
	for _, s := range f.Series {
		n += len(s.Bars)
	}
	return n
}

// SeriesFrame returns the frame of the named series.
func (f Frame) SeriesFrame(name string) (SeriesFrame, bool) {
	for _, s := range f.Series {
		if s.Name == name {
			return s, true
		}
	}
	return SeriesFrame{}, false
}

// Bar returns the bar of the named series at p.
func (f Frame) Bar(name string, p series.Position) (layout.BarInstance, bool) {
	s, ok := f.SeriesFrame(name)
	if !ok {
		return layout.BarInstance{}, false
	}
	if i := layout.IndexOf(s.Bars, p); i >= 0 {
		return s.Bars[i], true
	}
	return layout.BarInstance{}, false
}
