// Package scale derives the global scene scale of a bar grid.
//
// A bar grid is described by its row and column counts and by the requested
// [Params]. [Specs] converts the thickness ratio and spacing into per-bar
// thickness and per-cell spacing, [MaxSceneSize] bounds the footprint of the
// grid and [Recompute] turns all of it into the [Scale] the layout engine
// uses to place bars in world space.
//
// Degenerate grids (no rows, no columns, non-positive thickness) never yield
// NaN or Inf. [Recompute] reports them with ok == false and the caller keeps
// the previous scale.
package scale

import (
	"math"

	"github.com/matzehuels/barscene/pkg/errors"
)

// Size is a width/height pair. For bar specs, Width runs along columns and
// Height runs along rows (the depth axis).
type Size struct {
	Width  float64 `json:"width" bson:"width" toml:"width"`
	Height float64 `json:"height" bson:"height" toml:"height"`
}

// Params are the user-facing layout parameters of a scene.
type Params struct {
	// ThicknessRatio is bar width divided by bar depth. Must be > 0.
	ThicknessRatio float64 `json:"thickness_ratio" bson:"thickness_ratio" toml:"thickness_ratio"`

	// Spacing between bars. Relative spacing is a fraction of the bar
	// thickness, absolute spacing is in scene units.
	Spacing         Size `json:"spacing" bson:"spacing" toml:"spacing"`
	SpacingRelative bool `json:"spacing_relative" bson:"spacing_relative" toml:"spacing_relative"`

	// SeriesMargin shrinks each bar when several series share a cell.
	// Both components must lie in [0, 1).
	SeriesMargin Size `json:"series_margin" bson:"series_margin" toml:"series_margin"`

	// FloorLevel is the value treated as zero height.
	FloorLevel float64 `json:"floor_level" bson:"floor_level" toml:"floor_level"`

	// UniformSeriesScaling scales bar depth together with width when
	// several series are visible.
	UniformSeriesScaling bool `json:"uniform_series_scaling,omitempty" bson:"uniform_series_scaling,omitempty" toml:"uniform_series_scaling"`
}

// DefaultParams returns square bars with relative spacing of one thickness.
func DefaultParams() Params {
	return Params{
		ThicknessRatio:  1,
		Spacing:         Size{Width: 1, Height: 1},
		SpacingRelative: true,
	}
}

// Validate checks the parameter invariants.
func (p Params) Validate() error {
	if !(p.ThicknessRatio > 0) || math.IsInf(p.ThicknessRatio, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "thickness ratio must be > 0, got %v", p.ThicknessRatio)
	}
	if p.Spacing.Width < 0 || p.Spacing.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "bar spacing must be non-negative, got %vx%v", p.Spacing.Width, p.Spacing.Height)
	}
	if !inUnit(p.SeriesMargin.Width) || !inUnit(p.SeriesMargin.Height) {
		return errors.New(errors.ErrCodeInvalidConfig, "series margin must lie in [0,1), got %vx%v", p.SeriesMargin.Width, p.SeriesMargin.Height)
	}
	if math.IsNaN(p.FloorLevel) || math.IsInf(p.FloorLevel, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "floor level must be finite")
	}
	return nil
}

func inUnit(v float64) bool { return v >= 0 && v < 1 }

// BarSpecs are the cached per-bar dimensions derived from Params.
type BarSpecs struct {
	Thickness Size `json:"thickness" bson:"thickness"`
	Spacing   Size `json:"spacing" bson:"spacing"`
}

// Specs converts a thickness ratio and spacing into bar specs.
func Specs(p Params) BarSpecs {
	thick := Size{Width: 1, Height: 1 / p.ThicknessRatio}
	var sp Size
	if p.SpacingRelative {
		sp = Size{
			Width:  thick.Width * 2 * (p.Spacing.Width + 1),
			Height: thick.Height * 2 * (p.Spacing.Height + 1),
		}
	} else {
		sp = Size{
			Width:  thick.Width*2 + p.Spacing.Width*2,
			Height: thick.Height*2 + p.Spacing.Height*2,
		}
	}
	return BarSpecs{Thickness: thick, Spacing: sp}
}

// MaxSceneSize bounds the footprint of a rows x cols grid. Grids with an
// extreme aspect ratio get a smaller budget than square grids of equal area.
// It returns 0 for empty grids.
func MaxSceneSize(rows, cols int) float64 {
	if rows <= 0 || cols <= 0 {
		return 0
	}
	r, c := float64(rows), float64(cols)
	ratio := math.Min(c/r, r/c)
	return 2 * math.Sqrt(ratio*c*r)
}

// Scale is the output of one scale recompute.
type Scale struct {
	Rows, Cols int

	Specs        BarSpecs
	MaxSceneSize float64

	// RowWidth and ColumnDepth are the half extents of the grid in spacing units.
	RowWidth    float64
	ColumnDepth float64

	// ScaleFactor converts spacing units into world units.
	ScaleFactor float64

	// XScale and ZScale are the per-bar footprint after series margins.
	XScale float64
	ZScale float64

	// XScaleFactor and ZScaleFactor are the whole-scene extents used for
	// the background plane.
	XScaleFactor float64
	ZScaleFactor float64
}

// Recompute derives the scene scale for a rows x cols window. ok is false
// for degenerate input; the returned Scale is then the zero value.
func Recompute(rows, cols int, p Params) (s Scale, ok bool) {
	if rows <= 0 || cols <= 0 || !(p.ThicknessRatio > 0) {
		return Scale{}, false
	}

	s.Rows, s.Cols = rows, cols
	s.Specs = Specs(p)
	s.MaxSceneSize = MaxSceneSize(rows, cols)

	r, c := float64(rows), float64(cols)
	s.RowWidth = c * s.Specs.Spacing.Width * 0.5
	s.ColumnDepth = r * s.Specs.Spacing.Height * 0.5
	maxDim := math.Max(s.RowWidth, s.ColumnDepth)
	s.ScaleFactor = math.Min(c*(maxDim/s.MaxSceneSize), r*(maxDim/s.MaxSceneSize))
	if !(s.ScaleFactor > 0) || math.IsInf(s.ScaleFactor, 0) {
		return Scale{}, false
	}

	s.XScale = s.Specs.Thickness.Width / s.ScaleFactor
	s.ZScale = s.Specs.Thickness.Height / s.ScaleFactor
	s.XScale -= s.XScale * p.SeriesMargin.Width
	s.ZScale -= s.ZScale * p.SeriesMargin.Height

	s.XScaleFactor = s.RowWidth / s.ScaleFactor
	s.ZScaleFactor = s.ColumnDepth / s.ScaleFactor
	return s, true
}

// Calculator caches the last good Scale and reuses it when a recompute is
// degenerate.
type Calculator struct {
	current Scale
	valid   bool
}

// Update recomputes the scale. On degenerate input the previous scale is
// kept and Update returns false.
func (c *Calculator) Update(rows, cols int, p Params) bool {
	s, ok := Recompute(rows, cols, p)
	if !ok {
		return false
	}
	c.current, c.valid = s, true
	return true
}

// Current returns the last good scale and whether one exists.
func (c *Calculator) Current() (Scale, bool) { return c.current, c.valid }
