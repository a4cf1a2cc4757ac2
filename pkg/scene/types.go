package scene

import (
	"math"
	"time"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/core/axis"
	"github.com/matzehuels/barscene/pkg/core/scale"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
	"github.com/matzehuels/barscene/pkg/errors"
)

// FormatVersion is the current document format version.
const FormatVersion = 1

// =============================================================================
// Dataset - Series Data
// =============================================================================

// Dataset is the canonical serialization format for scene data.
type Dataset struct {
	Series []Series `json:"series" bson:"series" toml:"series"`
}

// Series is one named series of row-major values. Rows may be ragged.
type Series struct {
	Name   string       `json:"name" bson:"name" toml:"name"`
	Hidden bool         `json:"hidden,omitempty" bson:"hidden,omitempty" toml:"hidden"`
	Style  series.Style `json:"style" bson:"style" toml:"style"`
	Rows   [][]float64  `json:"rows" bson:"rows" toml:"rows"`

	// Rotations holds per-item rotations in degrees, indexed like Rows.
	// Missing entries mean no rotation.
	Rotations [][]float64 `json:"rotations,omitempty" bson:"rotations,omitempty" toml:"rotations"`

	RowLabels    []string `json:"row_labels,omitempty" bson:"row_labels,omitempty" toml:"row_labels"`
	ColumnLabels []string `json:"column_labels,omitempty" bson:"column_labels,omitempty" toml:"column_labels"`
}

// Validate checks names and values. Values must be finite.
func (d Dataset) Validate() error {
	seen := make(map[string]bool, len(d.Series))
	for _, s := range d.Series {
		if err := errors.ValidateSeriesName(s.Name); err != nil {
			return err
		}
		if seen[s.Name] {
			return errors.New(errors.ErrCodeInvalidDataset, "duplicate series %q", s.Name)
		}
		seen[s.Name] = true
		for i, row := range s.Rows {
			for j, v := range row {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return errors.New(errors.ErrCodeInvalidDataset,
						"series %q: value at (%d,%d) is not finite", s.Name, i, j)
				}
			}
		}
	}
	return nil
}

// Names returns the series names in order.
func (d Dataset) Names() []string {
	out := make([]string, len(d.Series))
	for i, s := range d.Series {
		out[i] = s.Name
	}
	return out
}

// =============================================================================
// Config - Scene Settings
// =============================================================================

// Span is an inclusive index window on a category axis.
type Span struct {
	Min int `json:"min" bson:"min" toml:"min"`
	Max int `json:"max" bson:"max" toml:"max"`
}

// Config holds the scene settings that are not part of the data.
// Nil ranges leave the matching axis auto-adjusting.
type Config struct {
	Params      scale.Params   `json:"params" bson:"params" toml:"params"`
	Mode        selection.Mode `json:"mode" bson:"mode" toml:"mode"`
	ZeroEpsilon float64        `json:"zero_epsilon,omitempty" bson:"zero_epsilon,omitempty" toml:"zero_epsilon"`

	ValueRange    *axis.Range `json:"value_range,omitempty" bson:"value_range,omitempty" toml:"value_range"`
	ValueReversed bool        `json:"value_reversed,omitempty" bson:"value_reversed,omitempty" toml:"value_reversed"`
	RowRange      *Span       `json:"row_range,omitempty" bson:"row_range,omitempty" toml:"row_range"`
	ColumnRange   *Span       `json:"column_range,omitempty" bson:"column_range,omitempty" toml:"column_range"`

	// Primary names the series that supplies axis labels. Empty means the
	// first series.
	Primary string `json:"primary,omitempty" bson:"primary,omitempty" toml:"primary"`
}

// DefaultConfig returns the default layout parameters and selection mode.
func DefaultConfig() Config {
	return Config{
		Params: scale.DefaultParams(),
		Mode:   selection.DefaultMode,
	}
}

// Validate checks every setting.
func (c Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if err := c.Mode.Validate(); err != nil {
		return err
	}
	if c.ZeroEpsilon < 0 || math.IsNaN(c.ZeroEpsilon) {
		return errors.New(errors.ErrCodeInvalidConfig, "zero epsilon must be >= 0, got %v", c.ZeroEpsilon)
	}
	if r := c.ValueRange; r != nil && !(r.Max >= r.Min) {
		return errors.New(errors.ErrCodeInvalidConfig, "value range max %v is below min %v", r.Max, r.Min)
	}
	if err := c.RowRange.validate("row"); err != nil {
		return err
	}
	return c.ColumnRange.validate("column")
}

func (s *Span) validate(name string) error {
	if s != nil && (s.Min < 0 || s.Max < s.Min) {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid %s range [%d, %d]", name, s.Min, s.Max)
	}
	return nil
}

// =============================================================================
// Document - Stored Scene
// =============================================================================

// Selection is a serialized selection.
type Selection struct {
	Series string `json:"series" bson:"series"`
	Row    int    `json:"row" bson:"row"`
	Col    int    `json:"col" bson:"col"`
	Slice  bool   `json:"slice,omitempty" bson:"slice,omitempty"`
}

// Position returns the selected coordinate.
func (s Selection) Position() series.Position { return series.Position{Row: s.Row, Col: s.Col} }

// Document is a complete scene: data, settings, selection and optionally
// the last synchronized frame. It is the unit of storage and transfer.
type Document struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	Version   int       `json:"version" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	Dataset   Dataset    `json:"dataset" bson:"dataset"`
	Config    Config     `json:"config" bson:"config"`
	Selection *Selection `json:"selection,omitempty" bson:"selection,omitempty"`

	Frame *bars.Frame `json:"frame,omitempty" bson:"frame,omitempty"`
}

// New returns an unsaved document.
func New(name string, ds Dataset, cfg Config) Document {
	now := time.Now().UTC()
	return Document{
		Name:      name,
		Version:   FormatVersion,
		CreatedAt: now,
		UpdatedAt: now,
		Dataset:   ds,
		Config:    cfg,
	}
}

// Validate checks the dataset and config.
func (d Document) Validate() error {
	if d.Version > FormatVersion {
		return errors.New(errors.ErrCodeUnsupported, "document version %d is newer than %d", d.Version, FormatVersion)
	}
	if err := d.Dataset.Validate(); err != nil {
		return err
	}
	return d.Config.Validate()
}
