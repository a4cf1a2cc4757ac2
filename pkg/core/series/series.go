// Package series holds the data side of a bar scene: named series of
// row x column items backed by an [Array] that reports every mutation to
// its listeners.
//
// A [Series] is owned by the caller. Scenes keep non-owning references to
// the series attached to them and subscribe to the backing array; the
// series itself never refers back to a scene.
package series

import "fmt"

// Position addresses an item by row and column.
type Position struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`
}

// InvalidPosition marks "no selection".
var InvalidPosition = Position{Row: -1, Col: -1}

// Valid reports whether p is not the invalid sentinel.
func (p Position) Valid() bool { return p != InvalidPosition }

// String formats p as "(row,col)".
func (p Position) String() string {
	if !p.Valid() {
		return "(none)"
	}
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Default colors used when a series sets none.
const (
	DefaultBaseColor            = "#5b8ff9"
	DefaultSingleHighlightColor = "#f6bd16"
	DefaultMultiHighlightColor  = "#e8684a"
)

// Style holds the color settings of a series. Colors are CSS hex strings.
type Style struct {
	BaseColor            string   `json:"base_color" bson:"base_color" toml:"base_color"`
	RowColors            []string `json:"row_colors,omitempty" bson:"row_colors,omitempty" toml:"row_colors"`
	SingleHighlightColor string   `json:"single_highlight_color" bson:"single_highlight_color" toml:"single_highlight_color"`
	MultiHighlightColor  string   `json:"multi_highlight_color" bson:"multi_highlight_color" toml:"multi_highlight_color"`
}

// DefaultStyle returns the default series colors.
func DefaultStyle() Style {
	return Style{
		BaseColor:            DefaultBaseColor,
		SingleHighlightColor: DefaultSingleHighlightColor,
		MultiHighlightColor:  DefaultMultiHighlightColor,
	}
}

// WithDefaults fills empty colors from DefaultStyle.
func (s Style) WithDefaults() Style {
	d := DefaultStyle()
	if s.BaseColor == "" {
		s.BaseColor = d.BaseColor
	}
	if s.SingleHighlightColor == "" {
		s.SingleHighlightColor = d.SingleHighlightColor
	}
	if s.MultiHighlightColor == "" {
		s.MultiHighlightColor = d.MultiHighlightColor
	}
	return s
}

// ColorForRow returns the row color for row, cycling through RowColors, or
// the base color when none are set.
func (s Style) ColorForRow(row int) string {
	if len(s.RowColors) == 0 || row < 0 {
		return s.BaseColor
	}
	return s.RowColors[row%len(s.RowColors)]
}

// Series is a named set of items contributing bars to a scene.
type Series struct {
	Name    string
	Visible bool
	Style   Style

	// SelectedBar is the selected position within this series, or
	// InvalidPosition.
	SelectedBar Position

	data *Array
}

// New returns a visible series over data with default colors.
func New(name string, data *Array) *Series {
	if data == nil {
		data = NewArray()
	}
	return &Series{
		Name:        name,
		Visible:     true,
		Style:       DefaultStyle(),
		SelectedBar: InvalidPosition,
		data:        data,
	}
}

// Data returns the backing array.
func (s *Series) Data() *Array { return s.data }

// RowCount returns the number of rows in the backing array.
func (s *Series) RowCount() int { return s.data.RowCount() }

// Contains reports whether p addresses an existing item.
func (s *Series) Contains(p Position) bool { return s.data.Contains(p.Row, p.Col) }

// Window is an inclusive range of rows and columns. Scenes use it as the
// data window that clips which items become bars.
type Window struct {
	RowMin int `json:"row_min" bson:"row_min"`
	RowMax int `json:"row_max" bson:"row_max"`
	ColMin int `json:"col_min" bson:"col_min"`
	ColMax int `json:"col_max" bson:"col_max"`
}

// Rows returns the number of rows the window spans.
func (w Window) Rows() int { return w.RowMax - w.RowMin + 1 }

// Cols returns the number of columns the window spans.
func (w Window) Cols() int { return w.ColMax - w.ColMin + 1 }

// Contains reports whether p lies inside the window.
func (w Window) Contains(p Position) bool {
	return p.Row >= w.RowMin && p.Row <= w.RowMax && p.Col >= w.ColMin && p.Col <= w.ColMax
}
