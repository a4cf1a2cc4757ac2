package series

import (
	"fmt"
	"reflect"
	"testing"
)

type recorder struct {
	events []string
}

func (r *recorder) ArrayReset()                   { r.events = append(r.events, "reset") }
func (r *recorder) RowsAdded(start, count int)    { r.add("added", start, count) }
func (r *recorder) RowsChanged(start, count int)  { r.add("changed", start, count) }
func (r *recorder) RowsRemoved(start, count int)  { r.add("removed", start, count) }
func (r *recorder) RowsInserted(start, count int) { r.add("inserted", start, count) }
func (r *recorder) ItemChanged(row, col int)      { r.add("item", row, col) }

func (r *recorder) add(kind string, a, b int) {
	r.events = append(r.events, fmt.Sprintf("%s %d %d", kind, a, b))
}

func TestArrayNotifications(t *testing.T) {
	a := NewArray(Values(1, 2), Values(3))
	rec := &recorder{}
	unsubscribe := a.Subscribe(rec)

	a.AddRows(Values(4, 5, 6))
	a.InsertRows(1, Values(9), Values(8))
	a.SetRows(0, Values(0, 0))
	a.RemoveRows(3, 10)
	a.SetItem(0, 1, Item{Value: 7})
	a.SetItem(40, 1, Item{Value: 7}) // ignored
	a.Reset(nil)

	unsubscribe()
	a.AddRows(Values(1))

	want := []string{
		"added 2 1",
		"inserted 1 2",
		"changed 0 1",
		"removed 3 2",
		"item 0 1",
		"reset",
	}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestArrayInsertKeepsOrder(t *testing.T) {
	a := NewArray(Values(0), Values(1), Values(2))
	a.InsertRows(1, Values(10), Values(11))

	var got []float64
	for i := 0; i < a.RowCount(); i++ {
		got = append(got, a.RowAt(i)[0].Value)
	}
	want := []float64{0, 10, 11, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func TestArrayLimits(t *testing.T) {
	a := NewArray(
		Values(1, -4, 9),
		Values(2),
		Values(-1, 3, 12, 5),
	)
	tests := []struct {
		name             string
		r0, r1, c0, c1   int
		wantMin, wantMax float64
	}{
		{"all", 0, 2, 0, 3, -4, 12},
		{"first column", 0, 2, 0, 0, -1, 2},
		{"window past end", 1, 10, 1, 10, 0, 12},
		{"positive only includes zero", 1, 1, 0, 0, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := a.Limits(tt.r0, tt.r1, tt.c0, tt.c1)
			if min != tt.wantMin || max != tt.wantMax {
				t.Errorf("Limits() = (%v, %v), want (%v, %v)", min, max, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestArrayRaggedAccess(t *testing.T) {
	a := NewArray(Values(1, 2, 3), Values(4))
	if a.MaxColumnCount() != 3 {
		t.Errorf("MaxColumnCount() = %d, want 3", a.MaxColumnCount())
	}
	if a.Contains(1, 1) {
		t.Error("Contains(1,1) should be false for a short row")
	}
	if _, ok := a.ItemAt(-1, 0); ok {
		t.Error("ItemAt(-1,0) should fail")
	}
	if a.ColumnCount(5) != 0 {
		t.Error("ColumnCount of missing row should be 0")
	}
}

func TestStyleColorForRow(t *testing.T) {
	s := Style{BaseColor: "#000000", RowColors: []string{"#111111", "#222222"}}
	tests := []struct {
		row  int
		want string
	}{
		{0, "#111111"},
		{1, "#222222"},
		{4, "#111111"},
	}
	for _, tt := range tests {
		if got := s.ColorForRow(tt.row); got != tt.want {
			t.Errorf("ColorForRow(%d) = %q, want %q", tt.row, got, tt.want)
		}
	}
	if got := (Style{BaseColor: "#abcdef"}).ColorForRow(3); got != "#abcdef" {
		t.Errorf("ColorForRow without row colors = %q", got)
	}
}

func TestPosition(t *testing.T) {
	if InvalidPosition.Valid() {
		t.Error("InvalidPosition should not be valid")
	}
	if got := (Position{Row: 2, Col: 3}).String(); got != "(2,3)" {
		t.Errorf("String() = %q", got)
	}
	s := New("s", NewArray(Values(1)))
	if s.SelectedBar != InvalidPosition || !s.Visible {
		t.Errorf("New() = %+v", s)
	}
}
