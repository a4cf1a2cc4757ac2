package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/barscene/pkg/core/axis"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/pipeline"
	"github.com/matzehuels/barscene/pkg/scene"
)

// sceneFlags binds the flags shared by commands that build a scene. The
// pipeline options are the flag targets, so a config file decoded into the
// same struct only needs the changed flags re-applied on top.
type sceneFlags struct {
	opts    pipeline.Options
	config  string
	output  string
	noCache bool

	valueMin, valueMax float64
	rowMin, rowMax     int
	colMin, colMax     int
}

func newSceneFlags() *sceneFlags {
	f := &sceneFlags{}
	f.opts.Scene = scene.DefaultConfig()
	f.opts.SetRenderDefaults()
	f.opts.Logger = nil
	return f
}

func (f *sceneFlags) register(fs *pflag.FlagSet) {
	o := &f.opts

	fs.StringVar(&f.config, "config", "", "TOML file with pipeline options (flags take precedence)")
	fs.StringVarP(&f.output, "output", "o", "", "output base path (default: <input> without extension)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&o.Refresh, "refresh", false, "recompute and overwrite cached results")

	// Import
	fs.StringVar(&o.Import.Format, "input-format", "", "dataset format: csv, toml, json, xlsx (default: from extension)")
	fs.StringVar(&o.Import.Name, "name", "", "series name for CSV input (default: file name)")
	fs.BoolVar(&o.Import.Header, "header", false, "first CSV/XLSX row holds column labels")
	fs.BoolVar(&o.Import.RowLabels, "row-labels", false, "first CSV/XLSX column holds row labels")

	// Scene
	fs.Var(&modeValue{&o.Scene.Mode}, "mode", "selection mode, e.g. item, item|row, item|column|slice")
	fs.Float64Var(&o.Scene.Params.ThicknessRatio, "thickness", o.Scene.Params.ThicknessRatio, "bar width divided by bar depth")
	fs.Float64Var(&o.Scene.Params.Spacing.Width, "spacing-x", o.Scene.Params.Spacing.Width, "spacing between columns")
	fs.Float64Var(&o.Scene.Params.Spacing.Height, "spacing-z", o.Scene.Params.Spacing.Height, "spacing between rows")
	fs.BoolVar(&o.Scene.Params.SpacingRelative, "relative-spacing", o.Scene.Params.SpacingRelative, "spacing is a fraction of bar thickness")
	fs.Float64Var(&o.Scene.Params.SeriesMargin.Width, "margin-x", 0, "series margin across columns, in [0, 1)")
	fs.Float64Var(&o.Scene.Params.SeriesMargin.Height, "margin-z", 0, "series margin across rows, in [0, 1)")
	fs.Float64Var(&o.Scene.Params.FloorLevel, "floor-level", 0, "value drawn at zero height")
	fs.BoolVar(&o.Scene.Params.UniformSeriesScaling, "uniform", false, "scale bar depth with width for multiple series")
	fs.Float64Var(&o.Scene.ZeroEpsilon, "zero-epsilon", 0, "heights at or below this are not pickable")
	fs.BoolVar(&o.Scene.ValueReversed, "reversed", false, "reverse the value axis")
	fs.StringVar(&o.Scene.Primary, "primary", "", "series that supplies axis labels")
	fs.Float64Var(&f.valueMin, "value-min", 0, "fixed value axis minimum (with --value-max)")
	fs.Float64Var(&f.valueMax, "value-max", 0, "fixed value axis maximum (with --value-min)")
	fs.IntVar(&f.rowMin, "row-min", 0, "first row of the data window")
	fs.IntVar(&f.rowMax, "row-max", 0, "last row of the data window")
	fs.IntVar(&f.colMin, "col-min", 0, "first column of the data window")
	fs.IntVar(&f.colMax, "col-max", 0, "last column of the data window")

	// Render
	fs.StringSliceVarP(&o.Formats, "format", "f", o.Formats, "output formats: svg, png, pdf, json")
	fs.Float64Var(&o.Unit, "unit", o.Unit, "SVG pixels per scene unit")
	fs.BoolVar(&o.Floor, "floor", false, "draw the floor plane")
	fs.BoolVar(&o.Labels, "labels", false, "draw row and column labels")
	fs.BoolVar(&o.SlicePanel, "slice-panel", false, "draw the slice cross-section next to the scene")
	fs.StringVar(&o.Title, "title", "", "title for SVG output and JSON name")
	fs.Float64Var(&o.PNGScale, "png-scale", o.PNGScale, "PNG scale factor")
	fs.BoolVar(&o.Compact, "compact", false, "write JSON without indentation")
}

// resolve applies the config file, the window flags and the input path,
// and returns the options for one run.
func (f *sceneFlags) resolve(cmd *cobra.Command, input string) (pipeline.Options, error) {
	if f.config != "" {
		if err := applyConfigFile(cmd.Flags(), f.config, &f.opts); err != nil {
			return pipeline.Options{}, err
		}
	}

	opts := f.opts
	opts.Input = input

	fs := cmd.Flags()
	if fs.Changed("value-min") || fs.Changed("value-max") {
		opts.Scene.ValueRange = &axis.Range{Min: f.valueMin, Max: f.valueMax}
	}
	if fs.Changed("row-min") || fs.Changed("row-max") {
		opts.Scene.RowRange = &scene.Span{Min: f.rowMin, Max: f.rowMax}
	}
	if fs.Changed("col-min") || fs.Changed("col-max") {
		opts.Scene.ColumnRange = &scene.Span{Min: f.colMin, Max: f.colMax}
	}
	return opts, nil
}

// applyConfigFile decodes a TOML config into opts and then restores every
// flag set on the command line, so flags override the file.
func applyConfigFile(fs *pflag.FlagSet, path string, opts *pipeline.Options) error {
	type setFlag struct {
		flag  *pflag.Flag
		value string
		slice []string
	}
	var changed []setFlag
	fs.Visit(func(fl *pflag.Flag) {
		s := setFlag{flag: fl, value: fl.Value.String()}
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			s.slice = sv.GetSlice()
		}
		changed = append(changed, s)
	})

	if _, err := toml.DecodeFile(path, opts); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	for _, s := range changed {
		if sv, ok := s.flag.Value.(pflag.SliceValue); ok {
			if err := sv.Replace(s.slice); err != nil {
				return err
			}
			continue
		}
		if err := s.flag.Value.Set(s.value); err != nil {
			return fmt.Errorf("flag --%s: %w", s.flag.Name, err)
		}
	}
	return nil
}

// modeValue adapts a selection mode to pflag.Value.
type modeValue struct{ m *selection.Mode }

func (v *modeValue) String() string {
	if v.m == nil {
		return selection.DefaultMode.String()
	}
	return v.m.String()
}

func (v *modeValue) Set(s string) error {
	m, err := selection.ParseMode(s)
	if err != nil {
		return err
	}
	*v.m = m
	return nil
}

func (v *modeValue) Type() string { return "mode" }
