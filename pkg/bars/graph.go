package bars

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/barscene/pkg/core/axis"
	"github.com/matzehuels/barscene/pkg/core/change"
	"github.com/matzehuels/barscene/pkg/core/layout"
	"github.com/matzehuels/barscene/pkg/core/scale"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
	"github.com/matzehuels/barscene/pkg/errors"
)

// Graph is a bar scene: a set of series laid out on a shared grid, with one
// selection and an optional slice view.
//
// A Graph is not safe for concurrent use. Mutations only record what
// changed; [Graph.Sync] does the work and returns the resulting [Frame].
type Graph struct {
	logger      *log.Logger
	params      scale.Params
	zeroEpsilon float64

	rowAxis   *axis.Category
	colAxis   *axis.Category
	valueAxis *axis.Value

	series  []*series.Series
	primary *series.Series
	unsub   map[*series.Series]func()

	tracker change.Tracker
	scaler  scale.Calculator
	cache   *layout.Cache
	sel     *selection.Machine
	slicing bool

	last    Frame
	hasLast bool
	seq     uint64
}

// Option configures a Graph.
type Option func(*Graph)

// WithParams sets the layout parameters. Invalid parameters are ignored
// with a warning.
func WithParams(p scale.Params) Option {
	return func(g *Graph) {
		if err := p.Validate(); err != nil {
			g.logger.Warn("ignoring invalid layout parameters", "err", err)
			return
		}
		g.params = p
	}
}

// WithSelectionMode sets the initial selection mode. Invalid modes are
// ignored with a warning.
func WithSelectionMode(m selection.Mode) Option {
	return func(g *Graph) {
		if err := m.Validate(); err != nil {
			g.logger.Warn("ignoring invalid selection mode", "mode", m, "err", err)
			return
		}
		g.sel = selection.NewMachine(m)
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithZeroEpsilon sets the threshold below which a bar counts as zero height
// and is made non-pickable. The default 0 compares exactly.
func WithZeroEpsilon(eps float64) Option {
	return func(g *Graph) {
		if eps >= 0 {
			g.zeroEpsilon = eps
		}
	}
}

// WithAxes replaces the default auto-adjusting axes. Nil arguments keep the
// default for that axis.
func WithAxes(rows, cols *axis.Category, values *axis.Value) Option {
	return func(g *Graph) {
		if rows != nil {
			g.rowAxis = rows
		}
		if cols != nil {
			g.colAxis = cols
		}
		if values != nil {
			g.valueAxis = values
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		params:    scale.DefaultParams(),
		rowAxis:   axis.NewCategory(),
		colAxis:   axis.NewCategory(),
		valueAxis: axis.NewValue(),
		unsub:     make(map[*series.Series]func()),
		cache:     layout.NewCache(),
		sel:       selection.NewMachine(selection.DefaultMode),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.tracker.Mark(change.Spacing | change.AxisRange | change.Mode)
	return g
}

// =============================================================================
// Series management
// =============================================================================

// AddSeries attaches s at the end of the series list.
func (g *Graph) AddSeries(s *series.Series) error {
	return g.InsertSeries(len(g.series), s)
}

// InsertSeries attaches s at index. The first attached series becomes the
// primary series, which supplies axis labels.
func (g *Graph) InsertSeries(index int, s *series.Series) error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidInput, "series is nil")
	}
	if err := errors.ValidateSeriesName(s.Name); err != nil {
		return err
	}
	if g.Attached(s) {
		return errors.New(errors.ErrCodeInvalidInput, "series %q is already attached", s.Name)
	}
	if g.SeriesByName(s.Name) != nil {
		return errors.New(errors.ErrCodeInvalidInput, "duplicate series name %q", s.Name)
	}
	if index < 0 || index > len(g.series) {
		index = len(g.series)
	}

	g.series = append(g.series, nil)
	copy(g.series[index+1:], g.series[index:])
	g.series[index] = s
	s.Style = s.Style.WithDefaults()
	g.unsub[s] = s.Data().Subscribe(&seriesListener{g: g, s: s})
	if g.primary == nil {
		g.primary = s
	}

	g.tracker.Mark(change.SeriesList | change.Data)
	g.tracker.MarkRebuild(s.Name)
	if s.Visible {
		g.adjustAxisRanges()
	}
	if s.SelectedBar.Valid() {
		g.sel.SetSelectedBar(g, s.SelectedBar, s, false)
	}
	g.logger.Debug("attached series", "series", s.Name, "rows", s.RowCount())
	return nil
}

// RemoveSeries detaches s. It reports whether s was attached.
func (g *Graph) RemoveSeries(s *series.Series) bool {
	i := g.indexOf(s)
	if i < 0 {
		return false
	}
	g.series = append(g.series[:i], g.series[i+1:]...)
	if unsub := g.unsub[s]; unsub != nil {
		unsub()
	}
	delete(g.unsub, s)
	g.cache.Remove(s.Name)
	g.tracker.ClearRebuild(s.Name)

	if g.primary == s {
		g.primary = nil
		if len(g.series) > 0 {
			g.primary = g.series[0]
		}
	}
	g.sel.SeriesRemoved(g, s)
	g.tracker.Mark(change.SeriesList | change.Data)
	g.adjustAxisRanges()
	g.logger.Debug("detached series", "series", s.Name)
	return true
}

// SetPrimarySeries makes s the series that supplies axis labels. Nil
// selects the first attached series.
func (g *Graph) SetPrimarySeries(s *series.Series) error {
	if s == nil {
		if len(g.series) > 0 {
			s = g.series[0]
		}
	} else if !g.Attached(s) {
		return errors.New(errors.ErrCodeSeriesNotFound, "series %q is not attached", s.Name)
	}
	if s != g.primary {
		g.primary = s
		g.tracker.Mark(change.AxisRange)
	}
	return nil
}

// PrimarySeries returns the label source, or nil for an empty graph.
func (g *Graph) PrimarySeries() *series.Series { return g.primary }

// SetSeriesVisible shows or hides s. Hidden series give up their visual
// slot, so every other series is re-laid out.
func (g *Graph) SetSeriesVisible(s *series.Series, visible bool) error {
	if !g.Attached(s) {
		return errors.New(errors.ErrCodeSeriesNotFound, "series is not attached")
	}
	if s.Visible == visible {
		return nil
	}
	s.Visible = visible
	g.tracker.Mark(change.SeriesList | change.Data)
	g.adjustAxisRanges()
	g.sel.Revalidate(g)
	return nil
}

// Series returns the attached series in order.
func (g *Graph) Series() []*series.Series {
	return append([]*series.Series(nil), g.series...)
}

// SeriesByName returns the attached series called name, or nil.
func (g *Graph) SeriesByName(name string) *series.Series {
	for _, s := range g.series {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (g *Graph) indexOf(s *series.Series) int {
	for i, o := range g.series {
		if o == s {
			return i
		}
	}
	return -1
}

// visibleSeries returns the visible series in order. A series' position in
// the result is its visual index.
func (g *Graph) visibleSeries() []*series.Series {
	var out []*series.Series
	for _, s := range g.series {
		if s.Visible {
			out = append(out, s)
		}
	}
	return out
}

// =============================================================================
// Axes
// =============================================================================

// RowAxis returns the row axis.
func (g *Graph) RowAxis() *axis.Category { return g.rowAxis }

// ColumnAxis returns the column axis.
func (g *Graph) ColumnAxis() *axis.Category { return g.colAxis }

// ValueAxis returns the value axis.
func (g *Graph) ValueAxis() *axis.Value { return g.valueAxis }

// adjustAxisRanges fits auto-adjusting axes to the visible data: the row
// and column windows cover the largest visible series and the value range
// covers the data inside the window.
func (g *Graph) adjustAxisRanges() {
	adjustRows, adjustCols := g.rowAxis.Auto, g.colAxis.Auto
	adjustValues := g.valueAxis.Auto
	if !adjustRows && !adjustCols && !adjustValues {
		return
	}

	visible := g.visibleSeries()
	maxRows, maxCols := 0, 0
	for _, s := range visible {
		if n := s.RowCount(); n > maxRows {
			maxRows = n
		}
		if n := s.Data().MaxColumnCount(); n > maxCols {
			maxCols = n
		}
	}

	changed := false
	if adjustRows && g.rowAxis.Fit(maxRows) {
		changed = true
	}
	if adjustCols && g.colAxis.Fit(maxCols) {
		changed = true
	}

	if adjustValues {
		var lo, hi float64
		for i, s := range visible {
			mn, mx := s.Data().Limits(g.rowAxis.Min, g.rowAxis.Max, g.colAxis.Min, g.colAxis.Max)
			if i == 0 || mn < lo {
				lo = mn
			}
			if i == 0 || mx > hi {
				hi = mx
			}
		}
		if g.valueAxis.Fit(lo, hi) {
			g.tracker.Mark(change.Data)
			changed = true
		}
	}

	if changed {
		g.tracker.Mark(change.AxisRange)
		g.sel.Revalidate(g)
	}
}

// =============================================================================
// Configuration
// =============================================================================

// Params returns the current layout parameters.
func (g *Graph) Params() scale.Params { return g.params }

// ZeroEpsilon returns the zero-height threshold.
func (g *Graph) ZeroEpsilon() float64 { return g.zeroEpsilon }

func (g *Graph) setParams(p scale.Params, flag change.Flag, what string) error {
	if err := p.Validate(); err != nil {
		g.logger.Warn("ignoring invalid "+what, "err", err)
		return err
	}
	if p == g.params {
		return nil
	}
	g.params = p
	g.tracker.Mark(flag)
	return nil
}

// SetBarThickness sets the bar width to depth ratio. It must be > 0.
func (g *Graph) SetBarThickness(ratio float64) error {
	p := g.params
	p.ThicknessRatio = ratio
	return g.setParams(p, change.Spacing, "bar thickness")
}

// SetBarSpacing sets the spacing between bars.
func (g *Graph) SetBarSpacing(spacing scale.Size) error {
	p := g.params
	p.Spacing = spacing
	return g.setParams(p, change.Spacing, "bar spacing")
}

// SetBarSpacingRelative sets whether spacing is a fraction of thickness.
func (g *Graph) SetBarSpacingRelative(relative bool) error {
	p := g.params
	p.SpacingRelative = relative
	return g.setParams(p, change.Spacing, "bar spacing")
}

// SetSeriesMargin sets the margin between series sharing a cell. Both
// components must lie in [0, 1).
func (g *Graph) SetSeriesMargin(margin scale.Size) error {
	p := g.params
	p.SeriesMargin = margin
	return g.setParams(p, change.SeriesMargin|change.Spacing, "series margin")
}

// SetFloorLevel sets the value treated as zero height.
func (g *Graph) SetFloorLevel(level float64) error {
	p := g.params
	p.FloorLevel = level
	return g.setParams(p, change.FloorLevel, "floor level")
}

// SetMultiSeriesUniform sets whether bar depth shrinks with bar width when
// several series share a cell.
func (g *Graph) SetMultiSeriesUniform(uniform bool) error {
	p := g.params
	p.UniformSeriesScaling = uniform
	return g.setParams(p, change.SeriesMargin, "series scaling")
}

// SelectionMode returns the active selection mode.
func (g *Graph) SelectionMode() selection.Mode { return g.sel.Mode() }

// SetSelectionMode changes the selection mode. Slice without exactly one of
// Row or Column is rejected and the previous mode is kept.
func (g *Graph) SetSelectionMode(m selection.Mode) error {
	prev := g.sel.Mode()
	if err := g.sel.SetMode(g, m); err != nil {
		g.logger.Warn("ignoring invalid selection mode", "mode", m, "keep", prev, "err", err)
		return err
	}
	if prev != m {
		g.tracker.Mark(change.Mode)
	}
	return nil
}

// SetValueRange fixes the value axis range and turns auto adjustment off.
func (g *Graph) SetValueRange(min, max float64) error {
	if max < min {
		err := errors.New(errors.ErrCodeInvalidConfig, "value range max %v is below min %v", max, min)
		g.logger.Warn("ignoring invalid value range", "err", err)
		return err
	}
	if g.valueAxis.SetRange(min, max) {
		g.tracker.Mark(change.AxisRange | change.Data)
	}
	return nil
}

// SetValueReversed flips the value axis.
func (g *Graph) SetValueReversed(reversed bool) {
	if g.valueAxis.SetReversed(reversed) {
		g.tracker.Mark(change.AxisRange | change.Data)
	}
}

// SetRowRange fixes the row window and turns auto adjustment off.
func (g *Graph) SetRowRange(min, max int) {
	if g.rowAxis.SetRange(min, max) {
		g.windowChanged()
	}
}

// SetColumnRange fixes the column window and turns auto adjustment off.
func (g *Graph) SetColumnRange(min, max int) {
	if g.colAxis.SetRange(min, max) {
		g.windowChanged()
	}
}

// SetAutoAdjust re-enables auto adjustment on all axes.
func (g *Graph) SetAutoAdjust() {
	g.rowAxis.Auto, g.colAxis.Auto, g.valueAxis.Auto = true, true, true
	g.adjustAxisRanges()
}

func (g *Graph) windowChanged() {
	g.tracker.Mark(change.AxisRange | change.Data)
	if g.valueAxis.Auto {
		g.adjustAxisRanges()
	}
	g.sel.Revalidate(g)
}

// =============================================================================
// selection.GraphHandle
// =============================================================================

var _ selection.GraphHandle = (*Graph)(nil)

// Attached reports whether s is part of the graph.
func (g *Graph) Attached(s *series.Series) bool { return s != nil && g.indexOf(s) >= 0 }

// DataWindow returns the row and column window.
func (g *Graph) DataWindow() series.Window {
	return series.Window{
		RowMin: g.rowAxis.Min,
		RowMax: maxInt(g.rowAxis.Max, g.rowAxis.Min),
		ColMin: g.colAxis.Min,
		ColMax: maxInt(g.colAxis.Max, g.colAxis.Min),
	}
}

// MarkVisualsDirty requests a highlight refresh.
func (g *Graph) MarkVisualsDirty() { g.tracker.Mark(change.Visuals | change.Selection) }

// SetSlicingActive turns the slice view on or off.
func (g *Graph) SetSlicingActive(active bool) {
	if g.slicing == active {
		return
	}
	g.slicing = active
	g.tracker.Mark(change.SliceActivated)
}

// SlicingActive reports whether the slice view is on.
func (g *Graph) SlicingActive() bool { return g.slicing }

// AllSeries returns the attached series.
func (g *Graph) AllSeries() []*series.Series { return g.series }

// =============================================================================
// Selection
// =============================================================================

// SetSelectedBar selects coord in s. Invalid coordinates clear the
// selection. See [selection.Machine.SetSelectedBar].
func (g *Graph) SetSelectedBar(coord series.Position, s *series.Series, enterSlice bool) bool {
	return g.sel.SetSelectedBar(g, coord, s, enterSlice)
}

// ClearSelection drops the selection.
func (g *Graph) ClearSelection() bool { return g.sel.Clear(g) }

// Selection returns the current selection.
func (g *Graph) Selection() selection.State { return g.sel.State() }

// IsSelected classifies the bar at (row, col) of s.
func (g *Graph) IsSelected(row, col int, s *series.Series) selection.Kind {
	return g.sel.IsSelected(row, col, s)
}

// Dirty returns the pending change flags.
func (g *Graph) Dirty() change.Flag { return g.tracker.Flags() }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
