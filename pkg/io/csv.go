package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/barscene/pkg/core/series"
	"github.com/matzehuels/barscene/pkg/errors"
	"github.com/matzehuels/barscene/pkg/scene"
)

// ReadCSV reads one series from comma-separated values. Rows may have
// different lengths. Trailing empty cells are dropped, other empty cells
// read as 0. Lines starting with '#' are comments.
func ReadCSV(r io.Reader, opts Options) (scene.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return scene.Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read csv")
	}
	name := opts.Name
	if name == "" {
		name = defaultSeriesName
	}
	s, err := parseGrid(name, records, opts)
	if err != nil {
		return scene.Dataset{}, err
	}
	return scene.Dataset{Series: []scene.Series{s}}, nil
}

// WriteCSV writes one series. Column labels become a header row and row
// labels a leading column. Rotations are not written.
func WriteCSV(w io.Writer, s scene.Series) error {
	cw := csv.NewWriter(w)
	withRowLabels := len(s.RowLabels) > 0

	if len(s.ColumnLabels) > 0 {
		var header []string
		if withRowLabels {
			header = append(header, "")
		}
		header = append(header, s.ColumnLabels...)
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, row := range s.Rows {
		rec := make([]string, 0, len(row)+1)
		if withRowLabels {
			label := ""
			if i < len(s.RowLabels) {
				label = s.RowLabels[i]
			}
			rec = append(rec, label)
		}
		for _, v := range row {
			rec = append(rec, formatValue(v))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// parseGrid turns a grid of cell strings into a series. CSV and XLSX share
// it so both formats read the same way.
func parseGrid(name string, records [][]string, opts Options) (scene.Series, error) {
	s := scene.Series{Name: name, Style: series.DefaultStyle(), Rows: [][]float64{}}

	start := 0
	if opts.Header && len(records) > 0 {
		header := records[0]
		if opts.RowLabels && len(header) > 0 {
			header = header[1:]
		}
		s.ColumnLabels = trimCells(append([]string(nil), header...))
		start = 1
	}

	hasRowLabels := false
	for i, rec := range records[start:] {
		line := start + i + 1
		colOffset := 1
		if opts.RowLabels {
			label := ""
			if len(rec) > 0 {
				label = strings.TrimSpace(rec[0])
				rec = rec[1:]
			}
			if label != "" {
				hasRowLabels = true
			}
			s.RowLabels = append(s.RowLabels, label)
			colOffset = 2
		}

		rec = trimCells(rec)
		row := make([]float64, len(rec))
		for j, cell := range rec {
			v, err := parseValue(cell)
			if err != nil {
				return scene.Series{}, errors.New(errors.ErrCodeInvalidDataset,
					"%s: line %d, column %d: invalid value %q", name, line, j+colOffset, cell)
			}
			row[j] = v
		}
		s.Rows = append(s.Rows, row)
	}
	if !hasRowLabels {
		s.RowLabels = nil
	}
	if len(s.ColumnLabels) == 0 {
		s.ColumnLabels = nil
	}
	return s, nil
}

// trimCells trims spaces in place and drops trailing empty cells.
func trimCells(cells []string) []string {
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return cells[:n]
}

func parseValue(cell string) (float64, error) {
	if cell == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not finite")
	}
	return v, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
