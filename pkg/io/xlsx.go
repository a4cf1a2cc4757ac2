package io

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/barscene/pkg/errors"
	"github.com/matzehuels/barscene/pkg/scene"
)

// ReadXLSX reads a workbook with one series per sheet, named after the
// sheet. Hidden sheets become hidden series. Cells are read as raw values
// and parsed like CSV cells.
func ReadXLSX(r io.Reader, opts Options) (scene.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return scene.Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "open workbook")
	}
	defer f.Close()

	var ds scene.Dataset
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return scene.Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "sheet %s", sheet)
		}
		s, err := parseGrid(sheet, rows, opts)
		if err != nil {
			return scene.Dataset{}, err
		}
		if visible, err := f.GetSheetVisible(sheet); err == nil && !visible {
			s.Hidden = true
		}
		ds.Series = append(ds.Series, s)
	}
	return ds, nil
}

// WriteXLSX writes one sheet per series. Column labels go into the first
// row and row labels into the first column, so the workbook reads back
// with Header and RowLabels set accordingly. Hidden series become hidden
// sheets, except the first, which Excel requires to stay visible. Sheet
// names follow Excel's rules, so series names longer than 31 characters
// fail.
func WriteXLSX(w io.Writer, ds scene.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	for i, s := range ds.Series {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
				return fmt.Errorf("sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
		if err := writeSheet(f, s); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
	}
	for i, s := range ds.Series {
		if s.Hidden && i > 0 {
			if err := f.SetSheetVisible(s.Name, false); err != nil {
				return fmt.Errorf("sheet %s: %w", s.Name, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s scene.Series) error {
	withRowLabels := len(s.RowLabels) > 0
	firstCol := 1
	if withRowLabels {
		firstCol = 2
	}

	line := 1
	if len(s.ColumnLabels) > 0 {
		header := make([]any, 0, len(s.ColumnLabels))
		for _, l := range s.ColumnLabels {
			header = append(header, l)
		}
		if err := setRow(f, s.Name, firstCol, line, header); err != nil {
			return err
		}
		line++
	}

	for i, row := range s.Rows {
		if withRowLabels && i < len(s.RowLabels) {
			if err := setRow(f, s.Name, 1, line, []any{s.RowLabels[i]}); err != nil {
				return err
			}
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := setRow(f, s.Name, firstCol, line, values); err != nil {
			return err
		}
		line++
	}
	return nil
}

func setRow(f *excelize.File, sheet string, col, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
