// Package pipeline runs the barscene load → sync → render pipeline.
//
// The same pipeline serves the CLI and the API server, so both produce
// identical frames and artifacts for identical input.
//
// # Stages
//
//  1. Load: import a dataset file (CSV, TOML, JSON or XLSX)
//  2. Sync: build a [bars.Graph] from the dataset and scene settings and
//     run one sync cycle
//  3. Render: encode the frame as JSON, SVG, PNG or PDF
//
// Every stage is cached through a [cache.Cache]. Keys hash everything that
// influences the stage output, so a changed option never returns a stale
// result.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "sales.csv",
//	    Scene:   scene.DefaultConfig(),
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Stages also run on their own:
//
//	ds, err := runner.Load(ctx, opts)
//	frame, err := runner.Sync(ctx, pipeline.NewDocument(ds, opts), opts)
//	artifacts, err := runner.Render(ctx, frame, opts)
package pipeline

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/cache"
	"github.com/matzehuels/barscene/pkg/core/scale"
	"github.com/matzehuels/barscene/pkg/core/series"
	"github.com/matzehuels/barscene/pkg/errors"
	dsio "github.com/matzehuels/barscene/pkg/io"
	"github.com/matzehuels/barscene/pkg/render/sink"
	"github.com/matzehuels/barscene/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultUnit is the SVG size of one world unit in pixels.
	DefaultUnit = 120.0

	// DefaultPNGScale renders PNG output at twice the SVG size.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It is decoded from API requests (JSON)
// and config files (TOML); the CLI binds its flags to the same fields.
type Options struct {
	// Load options
	Input   string       `json:"input,omitempty" toml:"input"`
	Import  dsio.Options `json:"import" toml:"import"`
	Refresh bool         `json:"refresh,omitempty" toml:"-"`

	// Scene options
	Scene     scene.Config            `json:"scene" toml:"scene"`
	Styles    map[string]series.Style `json:"styles,omitempty" toml:"styles"`
	Selection *scene.Selection        `json:"selection,omitempty" toml:"selection"`

	// Render options
	Formats    []string `json:"formats,omitempty" toml:"formats"`
	Unit       float64  `json:"unit,omitempty" toml:"unit"`
	Floor      bool     `json:"floor,omitempty" toml:"floor"`
	Labels     bool     `json:"labels,omitempty" toml:"labels"`
	SlicePanel bool     `json:"slice_panel,omitempty" toml:"slice_panel"`
	Title      string   `json:"title,omitempty" toml:"title"`
	PNGScale   float64  `json:"png_scale,omitempty" toml:"png_scale"`
	Compact    bool     `json:"compact,omitempty" toml:"compact"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Document  scene.Document
	Frame     bars.Frame
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SeriesCount int
	BarCount    int
	LoadTime    time.Duration
	SyncTime    time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool
	SyncHit   bool
	RenderHit bool // all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every stage's options and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForSync(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad requires an input file and resolves its format.
func (o *Options) ValidateForLoad() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input file is required")
	}
	if o.Import.Format == "" {
		f, err := dsio.DetectFormat(o.Input)
		if err != nil {
			return err
		}
		o.Import.Format = f
	}
	if err := errors.ValidateFormat(o.Import.Format, dsio.Formats...); err != nil {
		return err
	}
	if o.Import.Name == "" {
		o.Import.Name = strings.TrimSuffix(filepath.Base(o.Input), filepath.Ext(o.Input))
	}
	o.setLogger()
	return nil
}

// SetSceneDefaults replaces all-zero layout parameters with
// [scale.DefaultParams]. Partial parameters are kept as given.
func (o *Options) SetSceneDefaults() {
	if o.Scene.Params == (scale.Params{}) {
		o.Scene.Params = scale.DefaultParams()
	}
	o.setLogger()
}

// ValidateForSync applies scene defaults and validates the scene settings
// and styles.
func (o *Options) ValidateForSync() error {
	o.SetSceneDefaults()
	if err := o.Scene.Validate(); err != nil {
		return err
	}
	for name := range o.Styles {
		if err := errors.ValidateSeriesName(name); err != nil {
			return err
		}
	}
	return nil
}

// SetRenderDefaults renders SVG at the default unit when nothing is set.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Unit == 0 {
		o.Unit = DefaultUnit
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	o.setLogger()
}

// ValidateForRender applies render defaults and checks the formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	for _, f := range o.Formats {
		if err := errors.ValidateFormat(f, Formats...); err != nil {
			return err
		}
	}
	if o.Unit < 0 || o.PNGScale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "unit and png scale must be positive")
	}
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// DatasetKeyOpts returns cache key options for loading.
func (o *Options) DatasetKeyOpts() cache.DatasetKeyOpts {
	return cache.DatasetKeyOpts{
		Format:    o.Import.Format,
		Name:      o.Import.Name,
		Header:    o.Import.Header,
		RowLabels: o.Import.RowLabels,
	}
}

// ArtifactKeyOpts returns cache key options for one output format. Options
// that do not affect the format are left out, so that for example a JSON
// artifact is shared across SVG settings.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatJSON:
		k.Title = o.Title
		k.Compact = o.Compact
	case FormatPNG:
		k.Scale = o.PNGScale
		fallthrough
	default:
		k.Unit = o.Unit
		k.Floor = o.Floor
		k.Labels = o.Labels
		k.Slice = o.SlicePanel
		k.Title = o.Title
	}
	return k
}

// SVGOptions returns the sink options for SVG based formats.
func (o *Options) SVGOptions() []sink.SVGOption {
	opts := []sink.SVGOption{sink.WithUnit(o.Unit)}
	if o.Floor {
		opts = append(opts, sink.WithFloor())
	}
	if o.Labels {
		opts = append(opts, sink.WithLabels())
	}
	if o.SlicePanel {
		opts = append(opts, sink.WithSlicePanel())
	}
	if o.Title != "" {
		opts = append(opts, sink.WithTitle(o.Title))
	}
	return opts
}

// NewDocument combines a loaded dataset with the scene options. Styles
// named in opts replace the styles of matching series.
func NewDocument(ds scene.Dataset, opts Options) scene.Document {
	ds = applyStyles(ds, opts.Styles)
	d := scene.New(opts.Import.Name, ds, opts.Scene)
	if opts.Selection != nil {
		sel := *opts.Selection
		d.Selection = &sel
	}
	return d
}

func applyStyles(ds scene.Dataset, styles map[string]series.Style) scene.Dataset {
	if len(styles) == 0 {
		return ds
	}
	out := scene.Dataset{Series: make([]scene.Series, len(ds.Series))}
	copy(out.Series, ds.Series)
	for i, s := range out.Series {
		if st, ok := styles[s.Name]; ok {
			out.Series[i].Style = st.WithDefaults()
		}
	}
	return out
}
