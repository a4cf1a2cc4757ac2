package scene

import (
	"fmt"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/core/series"
	"github.com/matzehuels/barscene/pkg/errors"
)

// =============================================================================
// Dataset ↔ Series Conversion
// =============================================================================

// FromSeries converts live series to their serialization format. Rotations
// are only written when at least one item is rotated.
func FromSeries(list []*series.Series) Dataset {
	ds := Dataset{Series: make([]Series, len(list))}
	for i, s := range list {
		ds.Series[i] = seriesFrom(s)
	}
	return ds
}

func seriesFrom(s *series.Series) Series {
	data := s.Data()
	out := Series{
		Name:         s.Name,
		Hidden:       !s.Visible,
		Style:        s.Style,
		Rows:         make([][]float64, data.RowCount()),
		RowLabels:    copyStrings(data.RowLabels()),
		ColumnLabels: copyStrings(data.ColumnLabels()),
	}
	out.Style.RowColors = copyStrings(s.Style.RowColors)

	rotated := false
	rotations := make([][]float64, data.RowCount())
	for i, row := range data.Rows() {
		out.Rows[i] = make([]float64, len(row))
		rotations[i] = make([]float64, len(row))
		for j, item := range row {
			out.Rows[i][j] = item.Value
			rotations[i][j] = item.Rotation
			if item.Rotation != 0 {
				rotated = true
			}
		}
	}
	if rotated {
		out.Rotations = rotations
	}
	return out
}

// ToSeries validates the dataset and converts it to live series.
func (d Dataset) ToSeries() ([]*series.Series, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	out := make([]*series.Series, len(d.Series))
	for i, sd := range d.Series {
		out[i] = sd.toSeries()
	}
	return out, nil
}

func (sd Series) toSeries() *series.Series {
	rows := make([]series.Row, len(sd.Rows))
	for i, values := range sd.Rows {
		row := make(series.Row, len(values))
		for j, v := range values {
			row[j] = series.Item{Value: v, Rotation: sd.rotation(i, j)}
		}
		rows[i] = row
	}
	data := series.NewArray(rows...)
	if len(sd.RowLabels) > 0 || len(sd.ColumnLabels) > 0 {
		data.SetLabels(copyStrings(sd.RowLabels), copyStrings(sd.ColumnLabels))
	}

	s := series.New(sd.Name, data)
	s.Visible = !sd.Hidden
	s.Style = sd.Style.WithDefaults()
	s.Style.RowColors = copyStrings(sd.Style.RowColors)
	return s
}

func (sd Series) rotation(row, col int) float64 {
	if row < len(sd.Rotations) && col < len(sd.Rotations[row]) {
		return sd.Rotations[row][col]
	}
	return 0
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}

// =============================================================================
// Document ↔ Graph Conversion
// =============================================================================

// Build creates a graph from the document: series are attached in order,
// the config is applied and the stored selection restored. A stored
// selection that no longer fits the data resolves to no selection.
//
// opts are applied after the config, so a caller can add a logger or
// override settings.
func (d Document) Build(opts ...bars.Option) (*bars.Graph, error) {
	c := d.Config
	if err := c.Validate(); err != nil {
		return nil, err
	}
	list, err := d.Dataset.ToSeries()
	if err != nil {
		return nil, err
	}

	all := append([]bars.Option{
		bars.WithParams(c.Params),
		bars.WithSelectionMode(c.Mode),
		bars.WithZeroEpsilon(c.ZeroEpsilon),
	}, opts...)
	g := bars.New(all...)

	for _, s := range list {
		if err := g.AddSeries(s); err != nil {
			return nil, fmt.Errorf("attach series %s: %w", s.Name, err)
		}
	}
	if c.Primary != "" {
		p := g.SeriesByName(c.Primary)
		if p == nil {
			return nil, errors.New(errors.ErrCodeSeriesNotFound, "primary series %q not found", c.Primary)
		}
		if err := g.SetPrimarySeries(p); err != nil {
			return nil, err
		}
	}

	if r := c.ValueRange; r != nil {
		if err := g.SetValueRange(r.Min, r.Max); err != nil {
			return nil, err
		}
	}
	g.SetValueReversed(c.ValueReversed || (c.ValueRange != nil && c.ValueRange.Reversed))
	if r := c.RowRange; r != nil {
		g.SetRowRange(r.Min, r.Max)
	}
	if r := c.ColumnRange; r != nil {
		g.SetColumnRange(r.Min, r.Max)
	}

	if sel := d.Selection; sel != nil {
		g.SetSelectedBar(sel.Position(), g.SeriesByName(sel.Series), sel.Slice)
	}
	return g, nil
}

// Capture reads the data, settings and selection of a live graph back into
// a document, keeping the identity fields of d. The frame is left unchanged.
func Capture(d Document, g *bars.Graph) Document {
	d.Version = FormatVersion
	d.Dataset = FromSeries(g.Series())

	c := Config{
		Params:      g.Params(),
		Mode:        g.SelectionMode(),
		ZeroEpsilon: g.ZeroEpsilon(),
	}
	if v := g.ValueAxis(); !v.Auto {
		r := v.Range
		c.ValueRange = &r
	}
	c.ValueReversed = g.ValueAxis().Range.Reversed
	if a := g.RowAxis(); !a.Auto {
		c.RowRange = &Span{Min: a.Min, Max: a.Max}
	}
	if a := g.ColumnAxis(); !a.Auto {
		c.ColumnRange = &Span{Min: a.Min, Max: a.Max}
	}
	if p := g.PrimarySeries(); p != nil && len(g.Series()) > 0 && g.Series()[0] != p {
		c.Primary = p.Name
	}
	d.Config = c

	d.Selection = nil
	if st := g.Selection(); st.Valid() {
		d.Selection = &Selection{
			Series: st.Series.Name,
			Row:    st.Coord.Row,
			Col:    st.Coord.Col,
			Slice:  g.SlicingActive(),
		}
	}
	return d
}
