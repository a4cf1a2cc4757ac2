package layout

import (
	"math"

	"github.com/matzehuels/barscene/pkg/core/normalize"
	"github.com/matzehuels/barscene/pkg/core/scale"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
)

// floorGap lifts bars off the floor plane so their bases do not z-fight
// with it.
const floorGap = 0.015

// Vec3 is a 3D vector.
type Vec3 struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z" bson:"z"`
}

// BarInstance is one fully laid-out bar.
type BarInstance struct {
	// Coord is the absolute (row, col) of the item in its series.
	Coord       series.Position `json:"coord" bson:"coord"`
	Series      string          `json:"series" bson:"series"`
	VisualIndex int             `json:"visual_index" bson:"visual_index"`

	Position Vec3 `json:"position" bson:"position"`
	Scale    Vec3 `json:"scale" bson:"scale"`
	// Rotation holds Euler angles in degrees. Y carries the item rotation,
	// X is -180 for bars below the floor.
	Rotation Vec3 `json:"rotation" bson:"rotation"`

	Value  float64 `json:"value" bson:"value"`
	Height float64 `json:"height" bson:"height"`

	Selected  bool           `json:"selected,omitempty" bson:"selected,omitempty"`
	Highlight selection.Kind `json:"highlight,omitempty" bson:"highlight,omitempty"`
	Color     string         `json:"color" bson:"color"`
	Pickable  bool           `json:"pickable" bson:"pickable"`
}

// Window is the data window on the row and column axes.
type Window = series.Window

// Offsets places series side by side within a cell.
type Offsets struct {
	Visible int
	Step    float64
	Start   float64
	Margin  float64
	// ScaleX and ScaleZ shrink bar footprints so all series fit in one cell.
	ScaleX float64
	ScaleZ float64
}

// SeriesOffsets computes offsets for visible series with the given margin.
// With uniform scaling the bar depth shrinks together with its width.
func SeriesOffsets(visible int, margin scale.Size, uniform bool) Offsets {
	if visible < 1 {
		visible = 1
	}
	n := float64(visible)
	o := Offsets{Visible: visible, Step: 1 / n, Margin: margin.Width}
	o.Start = -((n - 1) * 0.5) * (o.Step - o.Step*o.Margin)
	o.ScaleX = 1 / n
	o.ScaleZ = 1
	if uniform {
		o.ScaleZ = o.ScaleX
	}
	return o
}

// Position returns the in-cell offset of the series with visualIndex.
func (o Offsets) Position(visualIndex int) float64 {
	vi := float64(visualIndex)
	return o.Start + 0.5 + o.Step*(vi-vi*o.Margin)
}

// Input is everything needed to lay out one series.
type Input struct {
	Series      *series.Series
	VisualIndex int
	Window      Window
	Scale       scale.Scale
	Normalizer  normalize.Normalizer
	Offsets     Offsets
	// ZeroEpsilon is the threshold below which a bar counts as zero
	// height. 0 means exact comparison.
	ZeroEpsilon float64
}

// Build lays out every item of in.Series inside the window, clipped to the
// actual (possibly ragged) data. Instances are ordered row-major.
func Build(in Input) []BarInstance {
	return BuildInto(nil, in)
}

// BuildInto is Build appending into dst.
func BuildInto(dst []BarInstance, in Input) []BarInstance {
	data := in.Series.Data()
	lastRow := minInt(in.Window.RowMax, data.RowCount()-1)
	for row := in.Window.RowMin; row <= lastRow; row++ {
		r := data.RowAt(row)
		lastCol := minInt(in.Window.ColMax, len(r)-1)
		for col := in.Window.ColMin; col <= lastCol; col++ {
			b := BarInstance{
				Coord:       series.Position{Row: row, Col: col},
				Series:      in.Series.Name,
				VisualIndex: in.VisualIndex,
				Color:       in.Series.Style.ColorForRow(row),
			}
			place(in, r[col], &b)
			dst = append(dst, b)
		}
	}
	return dst
}

// Count returns how many instances Build would produce.
func Count(in Input) int {
	data := in.Series.Data()
	n := 0
	lastRow := minInt(in.Window.RowMax, data.RowCount()-1)
	for row := in.Window.RowMin; row <= lastRow; row++ {
		lastCol := minInt(in.Window.ColMax, data.ColumnCount(row)-1)
		if lastCol >= in.Window.ColMin {
			n += lastCol - in.Window.ColMin + 1
		}
	}
	return n
}

// Place recomputes the geometry of b from the current data. It returns
// false when b.Coord no longer addresses an item inside the window.
func Place(in Input, b *BarInstance) bool {
	if !in.Window.Contains(b.Coord) {
		return false
	}
	item, ok := in.Series.Data().ItemAt(b.Coord.Row, b.Coord.Col)
	if !ok {
		return false
	}
	b.VisualIndex = in.VisualIndex
	place(in, item, b)
	return true
}

func place(in Input, item series.Item, b *BarInstance) {
	s := in.Scale
	h := in.Normalizer.HeightAt(item.Value)
	if math.IsNaN(h) || math.IsInf(h, 0) {
		h = 0
	}
	seriesPos := in.Offsets.Position(in.VisualIndex)

	row := float64(b.Coord.Row - in.Window.RowMin)
	col := float64(b.Coord.Col - in.Window.ColMin)
	colPos := (col + seriesPos) * s.Specs.Spacing.Width
	rowPos := (row + 0.5) * s.Specs.Spacing.Height

	y := h - in.Normalizer.BackgroundAdjustment
	if h < 0 {
		y -= floorGap
	} else {
		y += floorGap
	}

	b.Value = item.Value
	b.Height = h
	b.Position = Vec3{
		X: (colPos - s.RowWidth) / s.ScaleFactor,
		Y: y,
		Z: (s.ColumnDepth - rowPos) / s.ScaleFactor,
	}
	b.Rotation = Vec3{Y: item.Rotation}
	if h < 0 {
		b.Rotation.X = -180
	}

	if normalize.IsZero(h, in.ZeroEpsilon) {
		b.Scale = Vec3{}
		b.Pickable = false
		return
	}
	b.Scale = Vec3{
		X: s.XScale * in.Offsets.ScaleX,
		Y: math.Abs(h),
		Z: s.ZScale * in.Offsets.ScaleZ,
	}
	b.Pickable = true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
