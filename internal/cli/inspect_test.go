package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
)

func testGraph(t *testing.T, mode selection.Mode) *bars.Graph {
	t.Helper()
	g := bars.New(bars.WithSelectionMode(mode))
	a := series.NewArray(series.Values(1, 2, 3), series.Values(4, 5, 6))
	a.SetLabels([]string{"north", "south"}, []string{"Q1", "Q2", "Q3"})
	for _, s := range []*series.Series{
		series.New("sales", a),
		series.New("costs", series.NewArray(series.Values(0, 1), series.Values(2, 3))),
	} {
		if err := g.AddSeries(s); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func press(m InspectModel, keys ...string) InspectModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(InspectModel)
	}
	return m
}

func TestInspectPick(t *testing.T) {
	m := NewInspectModel(context.Background(), testGraph(t, selection.ItemAndRow))

	m = press(m, "down", "right", "right", "enter")
	sel := m.Frame.Selection
	if sel.Series != "sales" || sel.Coord != (series.Position{Row: 1, Col: 2}) {
		t.Fatalf("selection = %+v", sel)
	}
	if b, _ := m.Frame.Bar("sales", series.Position{Row: 1, Col: 0}); b.Highlight != selection.KindRow {
		t.Errorf("row neighbour highlight = %s", b.Highlight)
	}

	// The cursor stops at the window edge.
	m = press(m, "right", "right", "down")
	if m.Cursor != (series.Position{Row: 1, Col: 2}) {
		t.Errorf("cursor = %v", m.Cursor)
	}

	m = press(m, "esc")
	if m.Frame.Selection.Valid() {
		t.Error("esc should clear the selection")
	}
}

func TestInspectZeroBarNotPickable(t *testing.T) {
	m := NewInspectModel(context.Background(), testGraph(t, selection.Item))
	m = press(m, "tab", "enter")
	if m.Frame.Selection.Valid() {
		t.Errorf("zero-height bar was picked: %+v", m.Frame.Selection)
	}
	if !strings.Contains(m.Status, "no pickable bar") {
		t.Errorf("status = %q", m.Status)
	}
}

func TestInspectModesAndLabels(t *testing.T) {
	m := NewInspectModel(context.Background(), testGraph(t, selection.Item))

	m = press(m, "c")
	if m.Frame.Selection.Valid() {
		t.Error("column label pick should need the column flag")
	}

	m = press(m, "m", "m")
	if m.Frame.Selection.Mode != selection.ItemAndColumn {
		t.Fatalf("mode = %s", m.Frame.Selection.Mode)
	}
	m = press(m, "right", "c")
	if sel := m.Frame.Selection; sel.Coord != (series.Position{Row: 0, Col: 1}) {
		t.Errorf("label pick selection = %+v", sel)
	}
}

func TestInspectSliceAndVisibility(t *testing.T) {
	m := NewInspectModel(context.Background(), testGraph(t, selection.ItemRowSlice))
	m = press(m, "down", "enter")
	if m.Frame.Slice == nil || m.Frame.Slice.Orientation != selection.KindRow || m.Frame.Slice.Index != 1 {
		t.Fatalf("slice = %+v", m.Frame.Slice)
	}

	m = press(m, "s")
	if m.Frame.SlicingActive {
		t.Error("s should close the slice view")
	}

	m = press(m, "s")
	if !m.Frame.SlicingActive {
		t.Fatal("s should reopen the slice view")
	}

	m = press(m, "v")
	if sf, _ := m.Frame.SeriesFrame("sales"); sf.Visible {
		t.Error("v should hide the current series")
	}
	if !m.Frame.Selection.Valid() {
		t.Error("hiding the selected series should keep the selection")
	}
	if m.Frame.SlicingActive {
		t.Error("hidden series cannot be sliced")
	}
}

func TestInspectView(t *testing.T) {
	m := NewInspectModel(context.Background(), testGraph(t, selection.Item))
	m = press(m, "enter")

	view := m.View()
	for _, want := range []string{"Scene Inspector", "north", "Q3", "sales", "costs", "selected sales (0,0)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q", want)
		}
	}
}
