// Package io imports and exports bar scene datasets.
//
// # Overview
//
// A dataset ([scene.Dataset]) is a list of named series, each a ragged grid
// of values with optional labels and styling. This package reads and writes
// it in four formats:
//
//   - json: the [scene] wire format, all fields
//   - toml: the same fields as an array of [[series]] tables
//   - csv: a single series, one row per line
//   - xlsx: one series per sheet, named after the sheet
//
// # Grid Formats
//
// CSV and XLSX carry bare cells. [Options] says how to interpret them:
// Header takes column labels from the first row, RowLabels takes row labels
// from the first column. Empty cells inside a row read as 0 and trailing
// empty cells are dropped, so rows may have different lengths:
//
//	,Q1,Q2,Q3
//	north,4,7,1
//	south,2,,5
//	east,3
//
// Values must be finite numbers. Errors name the series, line and column.
//
// # Import
//
// Use [Import] to read a file, detecting the format from its extension, or
// [Read] for any io.Reader:
//
//	ds, err := io.Import("sales.csv", io.Options{Header: true, RowLabels: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Every import is validated with [scene.Dataset.Validate].
//
// # Export
//
// Use [Export] or [Write]. CSV export requires exactly one series and drops
// rotations and styling; the other formats keep everything except xlsx,
// which keeps values, labels and visibility only.
package io
