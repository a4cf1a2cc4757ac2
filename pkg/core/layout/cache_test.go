package layout

import (
	"testing"

	"github.com/matzehuels/barscene/pkg/core/axis"
	"github.com/matzehuels/barscene/pkg/core/series"
)

func TestCacheRebuildAndResolve(t *testing.T) {
	s := series.New("s", series.NewArray(series.Values(1, 0, 3), series.Values(4, 5, 6)))
	in := testInput(t, s, Window{RowMax: 1, ColMax: 2}, axis.Range{Min: 0, Max: 10})
	c := NewCache()

	got := c.Rebuild(in)
	if len(got) != 6 {
		t.Fatalf("Rebuild() len = %d, want 6", len(got))
	}

	tests := []struct {
		name  string
		index int
		want  series.Position
		ok    bool
	}{
		{"first bar", 0, series.Position{Row: 0, Col: 0}, true},
		{"second row", 4, series.Position{Row: 1, Col: 1}, true},
		{"zero height bar", 1, series.InvalidPosition, false},
		{"negative index", -1, series.InvalidPosition, false},
		{"past the end", 6, series.InvalidPosition, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := c.Resolve("s", tt.index)
			if ok != tt.ok || p != tt.want {
				t.Errorf("Resolve(%d) = %v, %v; want %v, %v", tt.index, p, ok, tt.want, tt.ok)
			}
		})
	}

	if _, ok := c.Resolve("missing", 0); ok {
		t.Error("Resolve() on unknown series should fail")
	}
}

func TestCacheRefresh(t *testing.T) {
	data := series.NewArray(series.Values(1, 2), series.Values(3, 4))
	s := series.New("s", data)
	in := testInput(t, s, Window{RowMax: 1, ColMax: 1}, axis.Range{Min: 0, Max: 10})
	c := NewCache()
	c.Rebuild(in)

	data.SetItem(0, 0, series.Item{Value: 8})
	got, rebuilt := c.Refresh(in)
	if rebuilt {
		t.Error("Refresh() rebuilt although the bar set is unchanged")
	}
	if !approx(got[0].Height, 0.8) {
		t.Errorf("refreshed height = %v, want 0.8", got[0].Height)
	}

	data.AddRows(series.Values(5, 6))
	in.Window.RowMax = 2
	got, rebuilt = c.Refresh(in)
	if !rebuilt {
		t.Error("Refresh() should rebuild when the bar count changes")
	}
	if len(got) != 6 {
		t.Errorf("len = %d, want 6", len(got))
	}
}

func TestCachePublishedListIsStable(t *testing.T) {
	data := series.NewArray(series.Values(1, 2))
	s := series.New("s", data)
	in := testInput(t, s, Window{ColMax: 1}, axis.Range{Min: 0, Max: 10})
	c := NewCache()
	c.Rebuild(in)

	snap := c.Snapshot("s")
	front := c.Front("s")

	data.SetItem(0, 1, series.Item{Value: 9})
	c.Refresh(in)

	if front[1].Value != 2 {
		t.Errorf("previous front changed after one write: value = %v", front[1].Value)
	}
	if snap[1].Value != 2 {
		t.Errorf("snapshot changed: value = %v", snap[1].Value)
	}
	if got := c.Front("s")[1].Value; got != 9 {
		t.Errorf("new front value = %v, want 9", got)
	}
}

func TestCacheUpdate(t *testing.T) {
	s := series.New("s", series.NewArray(series.Values(1, 2)))
	in := testInput(t, s, Window{ColMax: 1}, axis.Range{Min: 0, Max: 10})
	c := NewCache()
	c.Rebuild(in)

	c.Update("s", func(list []BarInstance) { list[1].Selected = true })
	if front := c.Front("s"); front[0].Selected || !front[1].Selected {
		t.Errorf("Update() not applied: %v %v", front[0].Selected, front[1].Selected)
	}
	if c.Update("missing", func([]BarInstance) {}) != nil {
		t.Error("Update() on unknown series should return nil")
	}
}

func TestCacheNamesAndRemove(t *testing.T) {
	c := NewCache()
	for _, name := range []string{"b", "a"} {
		s := series.New(name, series.NewArray(series.Values(1)))
		c.Rebuild(testInput(t, s, Window{}, axis.Range{Min: 0, Max: 1}))
	}
	if got := c.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", got)
	}
	c.Remove("a")
	if c.Front("a") != nil {
		t.Error("Front() after Remove() should be nil")
	}
}

func TestIndexOf(t *testing.T) {
	s := series.New("s", series.NewArray(series.Values(1, 2, 3), series.Values(4), series.Values(5, 6)))
	list := Build(testInput(t, s, Window{RowMax: 2, ColMax: 2}, axis.Range{Min: 0, Max: 10}))

	tests := []struct {
		p    series.Position
		want int
	}{
		{series.Position{Row: 0, Col: 0}, 0},
		{series.Position{Row: 0, Col: 2}, 2},
		{series.Position{Row: 1, Col: 0}, 3},
		{series.Position{Row: 2, Col: 1}, 5},
		{series.Position{Row: 1, Col: 1}, -1},
		{series.Position{Row: 3, Col: 0}, -1},
	}
	for _, tt := range tests {
		if got := IndexOf(list, tt.p); got != tt.want {
			t.Errorf("IndexOf(%v) = %d, want %d", tt.p, got, tt.want)
		}
	}
}
