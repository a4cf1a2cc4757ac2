package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/barscene/pkg/errors"
	"github.com/matzehuels/barscene/pkg/scene"
)

// Dataset formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Formats lists every supported format.
var Formats = []string{FormatJSON, FormatTOML, FormatCSV, FormatXLSX}

// defaultSeriesName names single-series input without a better source.
const defaultSeriesName = "data"

// Options controls how grid formats (CSV, XLSX) map cells to series.
// JSON and TOML carry names and labels themselves and ignore them.
type Options struct {
	// Format overrides detection from the file extension.
	Format string `json:"format,omitempty" toml:"format"`

	// Name is the series name for CSV input. Import defaults it to the file
	// base name.
	Name string `json:"name,omitempty" toml:"name"`

	// Header treats the first row as column labels.
	Header bool `json:"header,omitempty" toml:"header"`

	// RowLabels treats the first column as row labels.
	RowLabels bool `json:"row_labels,omitempty" toml:"row_labels"`
}

// DetectFormat returns the format implied by the extension of path.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"cannot detect dataset format of %q (use one of: %s)", path, strings.Join(Formats, ", "))
}

// Read decodes a dataset in the given format from r and validates it.
func Read(r io.Reader, format string, opts Options) (scene.Dataset, error) {
	var (
		ds  scene.Dataset
		err error
	)
	switch format {
	case FormatJSON:
		ds, err = ReadJSON(r)
	case FormatTOML:
		ds, err = ReadTOML(r)
	case FormatCSV:
		ds, err = ReadCSV(r, opts)
	case FormatXLSX:
		ds, err = ReadXLSX(r, opts)
	default:
		return scene.Dataset{}, errors.ValidateFormat(format, Formats...)
	}
	if err != nil {
		return scene.Dataset{}, err
	}
	if err := ds.Validate(); err != nil {
		return scene.Dataset{}, err
	}
	return ds, nil
}

// Import reads the dataset file at path. The format comes from
// opts.Format or the file extension.
func Import(path string, opts Options) (scene.Dataset, error) {
	format := opts.Format
	if format == "" {
		f, err := DetectFormat(path)
		if err != nil {
			return scene.Dataset{}, err
		}
		format = f
	}
	if opts.Name == "" {
		opts.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return scene.Dataset{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
		}
		return scene.Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := Read(f, format, opts)
	if err != nil {
		return scene.Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Write encodes ds in the given format. CSV holds a single series.
func Write(w io.Writer, format string, ds scene.Dataset) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, ds)
	case FormatTOML:
		return WriteTOML(w, ds)
	case FormatCSV:
		if len(ds.Series) != 1 {
			return errors.New(errors.ErrCodeUnsupported,
				"csv holds exactly one series, dataset has %d", len(ds.Series))
		}
		return WriteCSV(w, ds.Series[0])
	case FormatXLSX:
		return WriteXLSX(w, ds)
	}
	return errors.ValidateFormat(format, Formats...)
}

// Export writes ds to path in the format implied by its extension.
func Export(path string, ds scene.Dataset) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, format, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
