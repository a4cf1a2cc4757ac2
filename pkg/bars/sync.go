package bars

import (
	"context"
	"time"

	"github.com/matzehuels/barscene/pkg/core/axis"
	"github.com/matzehuels/barscene/pkg/core/change"
	"github.com/matzehuels/barscene/pkg/core/layout"
	"github.com/matzehuels/barscene/pkg/core/normalize"
	"github.com/matzehuels/barscene/pkg/core/scale"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
	"github.com/matzehuels/barscene/pkg/core/slice"
	"github.com/matzehuels/barscene/pkg/observability"
)

// anchorGap separates the selected-bar label anchor from the bar end.
const anchorGap = 0.2

const (
	scaleFlags  = change.Spacing | change.AxisRange | change.SeriesMargin | change.SeriesList
	layoutFlags = change.Data | change.FloorLevel | scaleFlags
	visualFlags = change.Visuals | change.Selection | change.Mode
)

// Sync runs one update cycle and returns the resulting frame. Stages run in
// a fixed order: scene scale, layout, selection highlights, slice view. A
// stage only runs when its inputs changed, and clears its change flags
// after it finishes.
//
// Without pending changes Sync returns the previous frame with both dirty
// flags unset.
func (g *Graph) Sync(ctx context.Context) Frame {
	if g.hasLast && !g.tracker.Any() {
		f := g.last
		f.VisualsDirty, f.DataDirty = false, false
		return f
	}

	hooks := observability.Scene()
	hooks.OnSyncStart(ctx, len(g.series))
	start := time.Now()

	dirty := g.tracker.Flags()
	window := g.DataWindow()
	visible := g.visibleSeries()

	// Stage 1: scene scale
	if _, ok := g.scaler.Current(); dirty&scaleFlags != 0 || !ok {
		if !g.scaler.Update(window.Rows(), window.Cols(), g.params) {
			g.logger.Debug("degenerate scene scale, keeping previous",
				"rows", window.Rows(), "cols", window.Cols())
		}
	}
	sc, scaleOK := g.scaler.Current()

	// Stage 2: normalize and lay out
	norm := normalize.New(g.valueAxis.Range, g.params.FloorLevel)
	layoutDirty := dirty&layoutFlags != 0
	rebuilt := 0
	if layoutDirty || g.needsRebuild() {
		rebuilt = g.layoutSeries(visible, window, sc, scaleOK, norm, dirty)
		g.tracker.Clear(layoutFlags)
		layoutDirty = true
	}

	// Stage 3: selection highlights
	if layoutDirty || dirty&visualFlags != 0 {
		for _, s := range visible {
			g.cache.Update(s.Name, func(list []layout.BarInstance) { g.highlight(s, list) })
		}
		g.tracker.Clear(visualFlags)
	}

	// Stage 4: slice view
	var view *slice.View
	if g.slicing {
		v, err := g.project(visible, window)
		if err != nil {
			g.logger.Warn("disabling slice view", "err", err)
			g.SetSlicingActive(false)
		} else {
			view = &v
		}
	}
	toggled := g.tracker.Has(change.SliceActivated)
	g.tracker.Clear(change.SliceActivated)

	f := g.buildFrame(visible, window, sc, norm, view)
	f.DataDirty = layoutDirty
	f.VisualsDirty = layoutDirty || toggled || dirty&visualFlags != 0

	g.emitChanges(ctx, f)
	g.last, g.hasLast = f, true

	duration := time.Since(start)
	hooks.OnSyncComplete(ctx, f.BarCount(), duration)
	g.logger.Debug("synced scene",
		"bars", f.BarCount(),
		"rebuilt", rebuilt,
		"changes", dirty,
		"duration", duration)
	return f
}

func (g *Graph) needsRebuild() bool {
	for _, s := range g.series {
		if g.tracker.NeedsRebuild(s.Name) {
			return true
		}
	}
	return false
}

// layoutSeries rebuilds or refreshes the instance lists of every visible
// series and drops those of hidden ones. It returns the number of rebuilds.
func (g *Graph) layoutSeries(visible []*series.Series, window series.Window, sc scale.Scale, scaleOK bool, norm normalize.Normalizer, dirty change.Flag) int {
	for _, s := range g.series {
		if !s.Visible {
			g.cache.Remove(s.Name)
			g.tracker.ClearRebuild(s.Name)
		}
	}

	offsets := layout.SeriesOffsets(len(visible), g.params.SeriesMargin, g.params.UniformSeriesScaling)
	fullRebuild := dirty&(change.SeriesList|change.SeriesMargin) != 0
	rebuilt := 0
	for vi, s := range visible {
		in := layout.Input{
			Series:      s,
			VisualIndex: vi,
			Window:      window,
			Scale:       sc,
			Normalizer:  norm,
			Offsets:     offsets,
			ZeroEpsilon: g.zeroEpsilon,
		}
		switch {
		case !scaleOK:
			g.cache.Remove(s.Name)
		case fullRebuild || g.tracker.NeedsRebuild(s.Name):
			g.cache.Rebuild(in)
			rebuilt++
		default:
			if _, r := g.cache.Refresh(in); r {
				rebuilt++
			}
		}
		g.tracker.ClearRebuild(s.Name)
	}
	return rebuilt
}

// highlight applies selection classes and colors to the bars of s.
func (g *Graph) highlight(s *series.Series, list []layout.BarInstance) {
	for i := range list {
		b := &list[i]
		k := g.sel.IsSelected(b.Coord.Row, b.Coord.Col, s)
		b.Highlight = k
		b.Selected = k == selection.KindItem
		switch k {
		case selection.KindItem:
			b.Color = s.Style.SingleHighlightColor
		case selection.KindRow, selection.KindColumn:
			b.Color = s.Style.MultiHighlightColor
		default:
			b.Color = s.Style.ColorForRow(b.Coord.Row)
		}
	}
}

func (g *Graph) project(visible []*series.Series, window series.Window) (slice.View, error) {
	st := g.sel.State()
	sources := make([]slice.Source, 0, len(visible))
	for vi, s := range visible {
		sources = append(sources, slice.Source{Series: s, VisualIndex: vi, Bars: g.cache.Front(s.Name)})
	}
	return slice.Project(slice.Input{
		Mode:           st.Mode,
		Selected:       st.Coord,
		SelectedSeries: st.Series,
		Window:         window,
		Sources:        sources,
	})
}

func (g *Graph) buildFrame(visible []*series.Series, window series.Window, sc scale.Scale, norm normalize.Normalizer, view *slice.View) Frame {
	g.seq++
	f := Frame{
		Seq:                  g.seq,
		Window:               window,
		ValueRange:           norm.Range,
		Params:               g.params,
		SceneExtent:          scale.Size{Width: sc.XScaleFactor, Height: sc.ZScaleFactor},
		BackgroundAdjustment: norm.BackgroundAdjustment,
		RowLabels:            g.labels(g.rowAxis, (*series.Array).RowLabels),
		ColumnLabels:         g.labels(g.colAxis, (*series.Array).ColumnLabels),
		SlicingActive:        g.slicing,
		Slice:                view,
	}

	visualIndex := make(map[*series.Series]int, len(visible))
	for vi, s := range visible {
		visualIndex[s] = vi
	}
	for _, s := range g.series {
		sf := SeriesFrame{Name: s.Name, Visible: s.Visible, VisualIndex: -1, Style: s.Style}
		sf.Style.RowColors = append([]string(nil), s.Style.RowColors...)
		if vi, ok := visualIndex[s]; ok {
			sf.VisualIndex = vi
			sf.Bars = g.cache.Snapshot(s.Name)
		}
		f.Series = append(f.Series, sf)
	}

	st := g.sel.State()
	f.Selection = SelectionFrame{Coord: st.Coord, Mode: st.Mode}
	if st.Valid() {
		f.Selection.Series = st.Series.Name
		if b, ok := f.Bar(st.Series.Name, st.Coord); ok {
			y := b.Position.Y + b.Height + anchorGap
			if b.Height < 0 {
				y = b.Position.Y + b.Height - anchorGap
			}
			f.SelectedAnchor = &layout.Vec3{X: b.Position.X, Y: y, Z: b.Position.Z}
		}
	} else {
		f.Selection.Coord = series.InvalidPosition
	}
	return f
}

// labels returns the window's labels of c. Labels set on the axis win over
// labels of the primary series.
func (g *Graph) labels(c *axis.Category, fromData func(*series.Array) []string) []string {
	if len(c.Labels) > 0 {
		return c.VisibleLabels()
	}
	if g.primary == nil {
		return nil
	}
	src := fromData(g.primary.Data())
	if len(src) == 0 {
		return nil
	}
	tmp := axis.Category{Min: c.Min, Max: c.Max, Labels: src}
	return tmp.VisibleLabels()
}

func (g *Graph) emitChanges(ctx context.Context, f Frame) {
	hooks := observability.Scene()
	prev := g.last.Selection
	if !g.hasLast {
		prev = SelectionFrame{Coord: series.InvalidPosition}
	}
	if prev.Series != f.Selection.Series || prev.Coord != f.Selection.Coord {
		hooks.OnSelectionChanged(ctx, f.Selection.Series, f.Selection.Coord.Row, f.Selection.Coord.Col)
		g.logger.Debug("selection changed", "series", f.Selection.Series, "coord", f.Selection.Coord)
	}
	if g.last.SlicingActive != f.SlicingActive {
		hooks.OnSliceToggled(ctx, f.SlicingActive)
		g.logger.Debug("slice view toggled", "active", f.SlicingActive)
	}
}
