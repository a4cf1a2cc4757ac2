package bars

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/barscene/pkg/core/axis"
	"github.com/matzehuels/barscene/pkg/core/change"
	"github.com/matzehuels/barscene/pkg/core/scale"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
	"github.com/matzehuels/barscene/pkg/observability"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func mustAdd(t *testing.T, g *Graph, s *series.Series) *series.Series {
	t.Helper()
	if err := g.AddSeries(s); err != nil {
		t.Fatalf("AddSeries(%q) error = %v", s.Name, err)
	}
	return s
}

func grid(rows, cols int) *series.Array {
	a := series.NewArray()
	for r := 0; r < rows; r++ {
		row := make(series.Row, cols)
		for c := range row {
			row[c].Value = float64(r*cols + c + 1)
		}
		a.AddRows(row)
	}
	return a
}

func TestSyncLaysOutSeries(t *testing.T) {
	ctx := context.Background()
	g := New()
	mustAdd(t, g, series.New("a", series.NewArray(series.Values(1, 2, 3), series.Values(4, 5, 6))))

	f := g.Sync(ctx)
	if f.BarCount() != 6 {
		t.Fatalf("BarCount() = %d, want 6", f.BarCount())
	}
	if f.ValueRange.Min != 0 || f.ValueRange.Max != 6 {
		t.Errorf("value range = %+v, want [0,6]", f.ValueRange)
	}
	if want := (series.Window{RowMax: 1, ColMax: 2}); f.Window != want {
		t.Errorf("window = %+v, want %+v", f.Window, want)
	}
	if !f.DataDirty || !f.VisualsDirty {
		t.Error("first frame should be dirty")
	}
	b, ok := f.Bar("a", series.Position{Row: 1, Col: 2})
	if !ok || !approx(b.Height, 1) {
		t.Errorf("bar (1,2) = %+v, %v; want height 1", b, ok)
	}

	again := g.Sync(ctx)
	if again.DataDirty || again.VisualsDirty {
		t.Error("frame without changes should not be dirty")
	}
	if again.Seq != f.Seq {
		t.Errorf("Seq = %d, want %d", again.Seq, f.Seq)
	}
}

func TestAxisAutoAdjust(t *testing.T) {
	tests := []struct {
		name   string
		rows   []series.Row
		wantLo float64
		wantHi float64
	}{
		{"positive data includes zero", []series.Row{series.Values(2, 5)}, 0, 5},
		{"negative data includes zero", []series.Row{series.Values(-2, -5)}, -5, 0},
		{"mixed data", []series.Row{series.Values(-3, 2)}, -3, 2},
		{"only zeros fall back to unit range", []series.Row{series.Values(0, 0)}, 0, 1},
		{"no data", nil, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			mustAdd(t, g, series.New("a", series.NewArray(tt.rows...)))
			r := g.ValueAxis().Range
			if r.Min != tt.wantLo || r.Max != tt.wantHi {
				t.Errorf("value range = [%v,%v], want [%v,%v]", r.Min, r.Max, tt.wantLo, tt.wantHi)
			}
		})
	}
}

func TestAxisFollowsLargestVisibleSeries(t *testing.T) {
	g := New()
	mustAdd(t, g, series.New("small", grid(2, 2)))
	big := mustAdd(t, g, series.New("big", grid(4, 5)))

	if w := g.DataWindow(); w.RowMax != 3 || w.ColMax != 4 {
		t.Errorf("window = %+v, want rows 0..3 cols 0..4", w)
	}
	if err := g.SetSeriesVisible(big, false); err != nil {
		t.Fatal(err)
	}
	if w := g.DataWindow(); w.RowMax != 1 || w.ColMax != 1 {
		t.Errorf("window after hiding = %+v, want rows 0..1 cols 0..1", w)
	}
}

func TestHiddenSeriesGiveUpSlot(t *testing.T) {
	ctx := context.Background()
	g := New()
	a := mustAdd(t, g, series.New("a", grid(2, 2)))
	mustAdd(t, g, series.New("b", grid(2, 2)))

	f := g.Sync(ctx)
	fa, _ := f.SeriesFrame("a")
	fb, _ := f.SeriesFrame("b")
	if fa.VisualIndex != 0 || fb.VisualIndex != 1 {
		t.Fatalf("visual indices = %d, %d; want 0, 1", fa.VisualIndex, fb.VisualIndex)
	}
	twoWide := fb.Bars[0].Scale.X

	if err := g.SetSeriesVisible(a, false); err != nil {
		t.Fatal(err)
	}
	f = g.Sync(ctx)
	fa, _ = f.SeriesFrame("a")
	fb, _ = f.SeriesFrame("b")
	if len(fa.Bars) != 0 || fa.VisualIndex != -1 {
		t.Errorf("hidden series has %d bars, visual index %d", len(fa.Bars), fa.VisualIndex)
	}
	if fb.VisualIndex != 0 {
		t.Errorf("b visual index = %d, want 0", fb.VisualIndex)
	}
	if !approx(fb.Bars[0].Scale.X, 2*twoWide) {
		t.Errorf("b bar width = %v, want %v", fb.Bars[0].Scale.X, 2*twoWide)
	}
}

func TestSeriesManagement(t *testing.T) {
	g := New()
	a := mustAdd(t, g, series.New("a", grid(1, 1)))
	b := series.New("b", grid(1, 1))

	if err := g.InsertSeries(0, b); err != nil {
		t.Fatal(err)
	}
	if got := g.Series(); got[0] != b || got[1] != a {
		t.Errorf("order = %s, %s; want b, a", got[0].Name, got[1].Name)
	}
	if g.PrimarySeries() != a {
		t.Error("first attached series should stay primary")
	}
	if err := g.AddSeries(series.New("a", grid(1, 1))); err == nil {
		t.Error("duplicate series name should be rejected")
	}
	if err := g.AddSeries(b); err == nil {
		t.Error("attaching a series twice should be rejected")
	}
	if err := g.AddSeries(series.New("", nil)); err == nil {
		t.Error("empty series name should be rejected")
	}

	if !g.RemoveSeries(a) {
		t.Fatal("RemoveSeries() = false")
	}
	if g.PrimarySeries() != b {
		t.Error("primary should move to the remaining series")
	}
	if g.RemoveSeries(a) {
		t.Error("removing twice should report false")
	}
	if err := g.SetPrimarySeries(a); err == nil {
		t.Error("SetPrimarySeries() on detached series should fail")
	}
}

func TestSetSelectionModeRejectsInvalid(t *testing.T) {
	var buf bytes.Buffer
	g := New(WithSelectionMode(selection.ItemAndRow), WithLogger(log.New(&buf)))

	if err := g.SetSelectionMode(selection.Item | selection.Slice); err == nil {
		t.Fatal("SetSelectionMode(item|slice) should fail")
	}
	if g.SelectionMode() != selection.ItemAndRow {
		t.Errorf("mode = %v, want %v", g.SelectionMode(), selection.ItemAndRow)
	}
	if !strings.Contains(buf.String(), "invalid selection mode") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

func TestSettersMarkOnlyRealChanges(t *testing.T) {
	g := New()
	mustAdd(t, g, series.New("a", grid(2, 2)))
	g.Sync(context.Background())

	if err := g.SetFloorLevel(0); err != nil || g.Dirty() != 0 {
		t.Errorf("unchanged floor level: err = %v, dirty = %v", err, g.Dirty())
	}
	if err := g.SetBarThickness(-1); err == nil {
		t.Error("negative thickness should be rejected")
	}
	if err := g.SetSeriesMargin(scale.Size{Width: 1}); err == nil {
		t.Error("series margin of 1 should be rejected")
	}
	if err := g.SetValueRange(5, 1); err == nil {
		t.Error("inverted value range should be rejected")
	}
	if g.Dirty() != 0 {
		t.Errorf("rejected setters marked %v", g.Dirty())
	}

	if err := g.SetBarThickness(2); err != nil {
		t.Fatal(err)
	}
	if !g.Dirty().Has(change.Spacing) {
		t.Errorf("dirty = %v, want spacing", g.Dirty())
	}
}

func TestPick(t *testing.T) {
	ctx := context.Background()
	g := New()
	mustAdd(t, g, series.New("a", series.NewArray(series.Values(0, 5))))
	g.Sync(ctx)

	if g.Pick("a", 0) {
		t.Error("pick on a zero-height bar should be ignored")
	}
	if g.Pick("missing", 1) || g.Pick("a", 7) {
		t.Error("picks on unknown series or indices should be ignored")
	}
	if !g.Pick("a", 1) {
		t.Fatal("Pick(a, 1) = false")
	}

	f := g.Sync(ctx)
	if f.Selection.Series != "a" || f.Selection.Coord != (series.Position{Row: 0, Col: 1}) {
		t.Fatalf("selection = %+v", f.Selection)
	}
	b, _ := f.Bar("a", series.Position{Row: 0, Col: 1})
	if !b.Selected || b.Color != series.DefaultSingleHighlightColor {
		t.Errorf("selected bar = %+v", b)
	}
	if f.SelectedAnchor == nil || !approx(f.SelectedAnchor.Y, b.Position.Y+b.Height+anchorGap) {
		t.Errorf("anchor = %+v for bar %+v", f.SelectedAnchor, b.Position)
	}

	if !g.PickBackground() {
		t.Error("PickBackground() should clear the selection")
	}
	f = g.Sync(ctx)
	if f.Selection.Valid() || f.SelectedAnchor != nil {
		t.Errorf("selection after background pick = %+v", f.Selection)
	}
}

func TestRowHighlightAcrossSeries(t *testing.T) {
	ctx := context.Background()
	g := New(WithSelectionMode(selection.Item | selection.Row | selection.MultiSeries))
	s := mustAdd(t, g, series.New("s", grid(5, 10)))
	mustAdd(t, g, series.New("other", grid(5, 10)))

	g.SetSelectedBar(series.Position{Row: 2, Col: 3}, s, false)
	if got := g.IsSelected(2, 7, g.SeriesByName("other")); got != selection.KindRow {
		t.Errorf("IsSelected(2, 7, other) = %v, want row", got)
	}

	f := g.Sync(ctx)
	b, _ := f.Bar("other", series.Position{Row: 2, Col: 7})
	if b.Highlight != selection.KindRow || b.Color != series.DefaultMultiHighlightColor {
		t.Errorf("other bar = highlight %v color %q", b.Highlight, b.Color)
	}
}

func TestSliceLifecycle(t *testing.T) {
	ctx := context.Background()
	g := New(WithSelectionMode(selection.ItemRowSlice))
	data := grid(3, 3)
	mustAdd(t, g, series.New("a", data))
	g.Sync(ctx)

	if !g.Pick("a", 4) {
		t.Fatal("Pick(a, 4) = false")
	}
	f := g.Sync(ctx)
	if !f.SlicingActive || f.Slice == nil {
		t.Fatal("picking in slice mode should open the slice view")
	}
	if f.Slice.Orientation != selection.KindRow || f.Slice.Index != 1 || len(f.Slice.Bars) != 3 {
		t.Errorf("slice = %v/%d with %d bars", f.Slice.Orientation, f.Slice.Index, len(f.Slice.Bars))
	}

	data.RemoveRows(1, 1)
	if g.Selection().Valid() {
		t.Error("removing the selected row should clear the selection")
	}
	f = g.Sync(ctx)
	if f.SlicingActive || f.Slice != nil {
		t.Error("slice view should close with the selection")
	}
}

func TestSelectionFollowsRowChanges(t *testing.T) {
	none := series.InvalidPosition
	tests := []struct {
		name   string
		rows   int
		sel    series.Position
		mutate func(a *series.Array)
		want   series.Position
	}{
		{
			name:   "insert equal row before",
			rows:   3,
			sel:    series.Position{Row: 1, Col: 0},
			mutate: func(a *series.Array) { a.InsertRows(0, series.Values(9, 9, 9)) },
			want:   series.Position{Row: 2, Col: 0},
		},
		{
			name:   "insert short row before",
			rows:   3,
			sel:    series.Position{Row: 0, Col: 2},
			mutate: func(a *series.Array) { a.InsertRows(0, series.Values(9)) },
			want:   series.Position{Row: 1, Col: 2},
		},
		{
			name:   "insert after",
			rows:   3,
			sel:    series.Position{Row: 0, Col: 1},
			mutate: func(a *series.Array) { a.InsertRows(2, series.Values(9)) },
			want:   series.Position{Row: 0, Col: 1},
		},
		{
			name:   "remove before last row",
			rows:   5,
			sel:    series.Position{Row: 4, Col: 1},
			mutate: func(a *series.Array) { a.RemoveRows(0, 1) },
			want:   series.Position{Row: 3, Col: 1},
		},
		{
			name:   "remove two before",
			rows:   3,
			sel:    series.Position{Row: 2, Col: 2},
			mutate: func(a *series.Array) { a.RemoveRows(0, 2) },
			want:   series.Position{Row: 0, Col: 2},
		},
		{
			name:   "remove selected row",
			rows:   3,
			sel:    series.Position{Row: 1, Col: 1},
			mutate: func(a *series.Array) { a.RemoveRows(1, 1) },
			want:   none,
		},
		{
			name:   "remove after",
			rows:   3,
			sel:    series.Position{Row: 0, Col: 1},
			mutate: func(a *series.Array) { a.RemoveRows(1, 2) },
			want:   series.Position{Row: 0, Col: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			data := grid(tt.rows, 3)
			s := mustAdd(t, g, series.New("a", data))
			g.SetSelectedBar(tt.sel, s, false)

			tt.mutate(data)
			if got := g.Selection().Coord; got != tt.want {
				t.Errorf("selection = %v, want %v", got, tt.want)
			}
			if s.SelectedBar != tt.want {
				t.Errorf("series SelectedBar = %v, want %v", s.SelectedBar, tt.want)
			}
			if f := g.Sync(context.Background()); f.Selection.Coord != tt.want {
				t.Errorf("frame selection = %v, want %v", f.Selection.Coord, tt.want)
			}
		})
	}
}

func TestStaleSliceMarksVisualsDirty(t *testing.T) {
	ctx := context.Background()
	g := New(WithSelectionMode(selection.ItemRowSlice))
	mustAdd(t, g, series.New("a", grid(2, 2)))
	g.Sync(ctx)

	// Slicing left on without a selection, with only a rebuild request for
	// a series that is no longer attached.
	g.slicing = true
	g.tracker.Reset()
	g.tracker.MarkRebuild("gone")

	f := g.Sync(ctx)
	if f.SlicingActive || g.SlicingActive() {
		t.Fatal("stale slice view should be turned off")
	}
	if !f.VisualsDirty {
		t.Error("turning the slice view off should mark visuals dirty")
	}
}

func TestDataWindow(t *testing.T) {
	ctx := context.Background()
	g := New(WithSelectionMode(selection.ItemColumnSlice))
	s := mustAdd(t, g, series.New("a", grid(4, 4)))
	g.SetSelectedBar(series.Position{Row: 0, Col: 0}, s, true)
	if !g.SlicingActive() {
		t.Fatal("slicing should be active")
	}

	g.SetRowRange(1, 2)
	if g.SlicingActive() {
		t.Error("moving the window off the selected bar should close the slice view")
	}
	if g.RowAxis().Auto {
		t.Error("explicit range should turn auto adjust off")
	}

	f := g.Sync(ctx)
	if f.BarCount() != 8 {
		t.Errorf("BarCount() = %d, want 8", f.BarCount())
	}
	for _, b := range f.Series[0].Bars {
		if b.Coord.Row < 1 || b.Coord.Row > 2 {
			t.Errorf("bar %v outside the window", b.Coord)
		}
	}
}

func TestPickAxisLabel(t *testing.T) {
	g := New(WithSelectionMode(selection.ItemAndRow))
	s := mustAdd(t, g, series.New("a", grid(3, 3)))

	if g.PickAxisLabel(selection.KindColumn, 1) {
		t.Error("column label pick without the column flag should be ignored")
	}
	if !g.PickAxisLabel(selection.KindRow, 2) {
		t.Fatal("PickAxisLabel(row, 2) = false")
	}
	st := g.Selection()
	if st.Series != s || st.Coord != (series.Position{Row: 2, Col: 0}) {
		t.Errorf("selection = %v on %v", st.Coord, st.Series)
	}
	if g.PickAxisLabel(selection.KindRow, 10) {
		t.Error("label outside the window should be ignored")
	}
}

func TestLabels(t *testing.T) {
	g := New()
	data := grid(2, 3)
	data.SetLabels([]string{"r0", "r1"}, []string{"c0", "c1"})
	mustAdd(t, g, series.New("a", data))

	f := g.Sync(context.Background())
	if strings.Join(f.RowLabels, ",") != "r0,r1" {
		t.Errorf("row labels = %v", f.RowLabels)
	}
	if strings.Join(f.ColumnLabels, ",") != "c0,c1," {
		t.Errorf("column labels = %v", f.ColumnLabels)
	}

	g.RowAxis().Labels = []string{"north", "south"}
	g.SetRowRange(1, 1)
	f = g.Sync(context.Background())
	if strings.Join(f.RowLabels, ",") != "south" {
		t.Errorf("axis labels = %v", f.RowLabels)
	}
}

func TestZeroEpsilonOption(t *testing.T) {
	g := New(WithZeroEpsilon(1e-6), WithAxes(nil, nil, &axis.Value{Range: axis.Range{Min: 0, Max: 1}}))
	mustAdd(t, g, series.New("a", series.NewArray(series.Values(1e-9, 0.5))))
	g.Sync(context.Background())

	if g.Pick("a", 0) {
		t.Error("near-zero bar should not be pickable with an epsilon")
	}
}

type recordingHooks struct {
	observability.NoopSceneHooks
	selections []string
	slices     []bool
}

func (h *recordingHooks) OnSelectionChanged(_ context.Context, s string, row, col int) {
	h.selections = append(h.selections, series.Position{Row: row, Col: col}.String()+"@"+s)
}

func (h *recordingHooks) OnSliceToggled(_ context.Context, active bool) {
	h.slices = append(h.slices, active)
}

func TestSceneHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetSceneHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	g := New(WithSelectionMode(selection.ItemColumnSlice))
	mustAdd(t, g, series.New("a", grid(2, 2)))
	g.Sync(ctx)
	g.Pick("a", 3)
	g.Sync(ctx)
	g.PickBackground()
	g.Sync(ctx)

	want := []string{"(1,1)@a", "(none)@"}
	if strings.Join(hooks.selections, " ") != strings.Join(want, " ") {
		t.Errorf("selections = %v, want %v", hooks.selections, want)
	}
	if len(hooks.slices) != 2 || !hooks.slices[0] || hooks.slices[1] {
		t.Errorf("slice toggles = %v, want [true false]", hooks.slices)
	}
}
