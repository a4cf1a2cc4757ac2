package sink

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/core/layout"
	"github.com/matzehuels/barscene/pkg/core/selection"
)

const (
	defaultUnit    = 120.0
	padding        = 24.0
	labelMargin    = 0.15
	slicePanelGap  = 40.0
	sliceBarHeight = 0.8 // panel height per unit of bar height, in units
	fallbackColor  = "#999999"
	selectedStroke = "#111111"

	// Isometric projection: x runs down-right, z runs down-left, y runs up.
	isoX = 0.8660254037844386 // cos 30°
	isoY = 0.5                // sin 30°
)

const barInteractionCSS = `
    .bar polygon { stroke: rgba(0,0,0,0.25); stroke-width: 0.5; stroke-linejoin: round; }
    .bar.selected polygon { stroke: ` + selectedStroke + `; stroke-width: 2; }
    .bar:hover polygon { stroke-width: 1.5; }
    .label { font-family: sans-serif; font-size: 11px; fill: #333; }
    .title { font-family: sans-serif; font-size: 16px; font-weight: bold; fill: #222; }`

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	unit   float64
	floor  bool
	labels bool
	slice  bool
	title  string
}

func WithUnit(u float64) SVGOption     { return func(r *svgRenderer) { r.unit = u } }
func WithFloor() SVGOption             { return func(r *svgRenderer) { r.floor = true } }
func WithLabels() SVGOption            { return func(r *svgRenderer) { r.labels = true } }
func WithSlicePanel() SVGOption        { return func(r *svgRenderer) { r.slice = true } }
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// RenderSVG draws a frame as an isometric bar chart. Each bar is a box
// spanning its position plus and minus its scale on every axis. Bars are
// painted back to front; zero-height bars and hidden series are skipped.
// Item rotations are not drawn.
func RenderSVG(f bars.Frame, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var body bytes.Buffer
	var bb bounds
	if r.floor {
		r.renderFloor(&body, &bb, f)
	}
	for _, b := range sortedBars(f) {
		r.renderBar(&body, &bb, b, f)
	}
	if r.labels {
		r.renderLabels(&body, &bb, f)
	}
	if r.slice && f.SlicingActive && f.Slice != nil {
		r.renderSlicePanel(&body, &bb, f)
	}
	if r.title != "" {
		bb.add(bb.minX, bb.minY-28)
		fmt.Fprintf(&body, `  <text class="title" x="%.2f" y="%.2f">%s</text>`+"\n", bb.minX, bb.minY+18, escape(r.title))
	}
	if bb.empty() {
		bb.add(0, 0)
	}

	x, y := bb.minX-padding, bb.minY-padding
	w, h := bb.maxX-bb.minX+2*padding, bb.maxY-bb.minY+2*padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.2f %.2f %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		x, y, w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", barInteractionCSS)
	buf.Write(body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{unit: defaultUnit}
	for _, opt := range opts {
		opt(&r)
	}
	if r.unit <= 0 {
		r.unit = defaultUnit
	}
	return r
}

type point struct{ X, Y float64 }

func (r *svgRenderer) project(x, y, z float64) point {
	return point{X: (x - z) * isoX * r.unit, Y: ((x+z)*isoY - y) * r.unit}
}

type bounds struct {
	minX, minY, maxX, maxY float64
	set                    bool
}

func (b *bounds) empty() bool { return !b.set }

func (b *bounds) add(x, y float64) {
	if !b.set {
		*b = bounds{minX: x, minY: y, maxX: x, maxY: y, set: true}
		return
	}
	b.minX, b.maxX = math.Min(b.minX, x), math.Max(b.maxX, x)
	b.minY, b.maxY = math.Min(b.minY, y), math.Max(b.maxY, y)
}

// sortedBars returns the drawable bars ordered far to near.
func sortedBars(f bars.Frame) []layout.BarInstance {
	var out []layout.BarInstance
	for _, s := range f.Series {
		if !s.Visible {
			continue
		}
		for _, b := range s.Bars {
			if b.Pickable {
				out = append(out, b)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b layout.BarInstance) int {
		if c := cmp.Compare(a.Position.X+a.Position.Z, b.Position.X+b.Position.Z); c != 0 {
			return c
		}
		return cmp.Compare(a.Position.Y, b.Position.Y)
	})
	return out
}

func (r *svgRenderer) renderFloor(buf *bytes.Buffer, bb *bounds, f bars.Frame) {
	w, d := f.SceneExtent.Width, f.SceneExtent.Height
	y := -f.BackgroundAdjustment
	corners := []point{
		r.project(-w, y, -d),
		r.project(w, y, -d),
		r.project(w, y, d),
		r.project(-w, y, d),
	}
	fmt.Fprintf(buf, `  <polygon class="floor" points="%s" fill="#f2f2f2" stroke="#cccccc"/>`+"\n", points(bb, corners))
}

func (r *svgRenderer) renderBar(buf *bytes.Buffer, bb *bounds, b layout.BarInstance, f bars.Frame) {
	p, s := b.Position, b.Scale
	x0, x1 := p.X-s.X, p.X+s.X
	y0, y1 := p.Y-s.Y, p.Y+s.Y
	z0, z1 := p.Z-s.Z, p.Z+s.Z

	top := []point{r.project(x0, y1, z0), r.project(x1, y1, z0), r.project(x1, y1, z1), r.project(x0, y1, z1)}
	right := []point{r.project(x1, y0, z0), r.project(x1, y1, z0), r.project(x1, y1, z1), r.project(x1, y0, z1)}
	front := []point{r.project(x0, y0, z1), r.project(x1, y0, z1), r.project(x1, y1, z1), r.project(x0, y1, z1)}

	topColor, rightColor, frontColor := shades(b.Color)

	class := "bar"
	if b.Selected {
		class += " selected"
	}
	if b.Highlight != selection.KindNone {
		class += " highlight-" + b.Highlight.String()
	}
	fmt.Fprintf(buf, `  <g class="%s" data-series="%s" data-row="%d" data-col="%d" data-value="%g">`+"\n",
		class, escape(b.Series), b.Coord.Row, b.Coord.Col, b.Value)
	fmt.Fprintf(buf, `    <polygon points="%s" fill="%s"/>`+"\n", points(bb, right), rightColor)
	fmt.Fprintf(buf, `    <polygon points="%s" fill="%s"/>`+"\n", points(bb, front), frontColor)
	fmt.Fprintf(buf, `    <polygon points="%s" fill="%s"/>`+"\n", points(bb, top), topColor)
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderLabels(buf *bytes.Buffer, bb *bounds, f bars.Frame) {
	y := -f.BackgroundAdjustment
	rows, cols := labelPositions(f)
	for i, label := range f.RowLabels {
		z, ok := rows[f.Window.RowMin+i]
		if !ok || label == "" {
			continue
		}
		pt := r.project(-f.SceneExtent.Width-labelMargin, y, z)
		bb.add(pt.X-float64(len(label))*6, pt.Y)
		fmt.Fprintf(buf, `  <text class="label row-label" x="%.2f" y="%.2f" text-anchor="end">%s</text>`+"\n",
			pt.X, pt.Y, escape(label))
	}
	for i, label := range f.ColumnLabels {
		x, ok := cols[f.Window.ColMin+i]
		if !ok || label == "" {
			continue
		}
		pt := r.project(x, y, f.SceneExtent.Height+labelMargin)
		bb.add(pt.X-float64(len(label))*6, pt.Y+12)
		fmt.Fprintf(buf, `  <text class="label column-label" x="%.2f" y="%.2f" text-anchor="end">%s</text>`+"\n",
			pt.X, pt.Y+12, escape(label))
	}
}

// labelPositions returns the world z of each row and the world x of each
// column, taken from the first visible series that has a bar there.
func labelPositions(f bars.Frame) (rows, cols map[int]float64) {
	rows, cols = map[int]float64{}, map[int]float64{}
	for _, s := range f.Series {
		if !s.Visible {
			continue
		}
		for _, b := range s.Bars {
			if _, ok := rows[b.Coord.Row]; !ok {
				rows[b.Coord.Row] = b.Position.Z
			}
			if _, ok := cols[b.Coord.Col]; !ok {
				cols[b.Coord.Col] = b.Position.X
			}
		}
	}
	return rows, cols
}

// renderSlicePanel draws the slice view as a flat chart below the scene.
func (r *svgRenderer) renderSlicePanel(buf *bytes.Buffer, bb *bounds, f bars.Frame) {
	v := f.Slice
	baseline := bb.maxY + slicePanelGap + sliceBarHeight*r.unit
	originX := (bb.minX + bb.maxX) / 2

	title := fmt.Sprintf("%s %d", v.Orientation, v.Index)
	fmt.Fprintf(buf, `  <g class="slice" data-orientation="%s" data-index="%d">`+"\n", v.Orientation, v.Index)
	fmt.Fprintf(buf, `    <text class="label" x="%.2f" y="%.2f" text-anchor="middle">%s</text>`+"\n",
		originX, baseline-sliceBarHeight*r.unit-8, escape(title))
	bb.add(originX, baseline-sliceBarHeight*r.unit-20)

	for _, b := range v.Bars {
		if !b.Pickable {
			continue
		}
		cx := originX + b.Position.X*r.unit
		w := 2 * b.Scale.X * r.unit
		h := b.Height * sliceBarHeight * r.unit
		y := baseline - math.Max(h, 0)
		color := b.Color
		if color == "" {
			color = fallbackColor
		}
		class := "bar"
		if b.Highlight != selection.KindNone {
			class += " selected"
		}
		fmt.Fprintf(buf, `    <rect class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			class, cx-w/2, y, w, math.Abs(h), color)
		bb.add(cx-w/2, y)
		bb.add(cx+w/2, y+math.Abs(h))
	}
	fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#999999"/>`+"\n",
		bb.minX, baseline, bb.maxX, baseline)
	buf.WriteString("  </g>\n")
}

// shades returns the top, right and front face colors for a base color.
// Side faces are blended towards black in Lab space.
func shades(hex string) (top, right, front string) {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(fallbackColor)
	}
	black := colorful.Color{}
	return c.Hex(), c.BlendLab(black, 0.25).Clamped().Hex(), c.BlendLab(black, 0.4).Clamped().Hex()
}

func points(bb *bounds, pts []point) string {
	var buf bytes.Buffer
	for i, p := range pts {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%.2f,%.2f", p.X, p.Y)
		bb.add(p.X, p.Y)
	}
	return buf.String()
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
