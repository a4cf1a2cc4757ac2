package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/barscene/pkg/cache"
	"github.com/matzehuels/barscene/pkg/core/scale"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
	"github.com/matzehuels/barscene/pkg/errors"
	dsio "github.com/matzehuels/barscene/pkg/io"
	"github.com/matzehuels/barscene/pkg/observability"
	"github.com/matzehuels/barscene/pkg/scene"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil)
}

func TestValidateForRender(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"svg"}, false},
		{[]string{"svg", "png", "pdf", "json"}, false},
		{nil, false},
		{[]string{"SVG"}, true},
		{[]string{"svg", "gif"}, true},
	}
	for _, tt := range tests {
		o := Options{Formats: tt.formats}
		err := o.ValidateForRender()
		if (err != nil) != tt.wantErr {
			t.Errorf("formats %v: error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("formats %v: code = %s", tt.formats, errors.GetCode(err))
		}
	}

	o := Options{}
	o.SetRenderDefaults()
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG || o.Unit != DefaultUnit || o.PNGScale != DefaultPNGScale {
		t.Errorf("render defaults = %v unit %v scale %v", o.Formats, o.Unit, o.PNGScale)
	}
}

func TestValidateForLoad(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantFormat string
		wantName   string
		wantCode   errors.Code
	}{
		{"missing input", Options{}, "", "", errors.ErrCodeInvalidInput},
		{"detected", Options{Input: "data/sales.csv"}, "csv", "sales", ""},
		{"explicit format", Options{Input: "sales.dat", Import: importOpts("toml", "")}, "toml", "sales", ""},
		{"explicit name", Options{Input: "a.xlsx", Import: importOpts("", "costs")}, "xlsx", "costs", ""},
		{"unknown extension", Options{Input: "sales.dat"}, "", "", errors.ErrCodeInvalidFormat},
		{"unknown format", Options{Input: "a.csv", Import: importOpts("yaml", "")}, "", "", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLoad()
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Errorf("error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tt.opts.Import.Format != tt.wantFormat || tt.opts.Import.Name != tt.wantName {
				t.Errorf("import = %+v, want format %s name %s", tt.opts.Import, tt.wantFormat, tt.wantName)
			}
			if tt.opts.Logger == nil {
				t.Error("logger not set")
			}
		})
	}
}

func TestValidateForSync(t *testing.T) {
	o := Options{}
	if err := o.ValidateForSync(); err != nil {
		t.Fatal(err)
	}
	if o.Scene.Params != scale.DefaultParams() {
		t.Errorf("params = %+v, want defaults", o.Scene.Params)
	}

	partial := Options{Scene: scene.Config{Params: scale.Params{ThicknessRatio: 2}}}
	partial.SetSceneDefaults()
	if partial.Scene.Params.ThicknessRatio != 2 || partial.Scene.Params.SpacingRelative {
		t.Errorf("partial params replaced: %+v", partial.Scene.Params)
	}

	bad := Options{Scene: scene.DefaultConfig()}
	bad.Scene.Mode = selection.Slice
	if err := bad.ValidateForSync(); !errors.Is(err, errors.ErrCodeInvalidSelectionMode) {
		t.Errorf("slice without orientation error = %v", err)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{Unit: 50, Floor: true, Title: "t", PNGScale: 3, Compact: true}

	tests := []struct {
		format string
		want   cache.ArtifactKeyOpts
	}{
		{FormatSVG, cache.ArtifactKeyOpts{Format: "svg", Unit: 50, Floor: true, Title: "t"}},
		{FormatPDF, cache.ArtifactKeyOpts{Format: "pdf", Unit: 50, Floor: true, Title: "t"}},
		{FormatPNG, cache.ArtifactKeyOpts{Format: "png", Unit: 50, Floor: true, Title: "t", Scale: 3}},
		{FormatJSON, cache.ArtifactKeyOpts{Format: "json", Title: "t", Compact: true}},
	}
	for _, tt := range tests {
		if got := o.ArtifactKeyOpts(tt.format); got != tt.want {
			t.Errorf("ArtifactKeyOpts(%s) = %+v, want %+v", tt.format, got, tt.want)
		}
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	input := writeInput(t, "sales.csv", ",Q1,Q2\nnorth,4,7\nsouth,2,5\n")

	opts := Options{
		Input:   input,
		Import:  importOpts("", ""),
		Scene:   scene.DefaultConfig(),
		Formats: []string{FormatSVG, FormatJSON},
		Labels:  true,
	}
	opts.Import.Header = true
	opts.Import.RowLabels = true

	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.SeriesCount != 1 || res.Stats.BarCount != 4 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.Document.Name != "sales" || res.Document.Frame == nil {
		t.Errorf("document = %q, frame %v", res.Document.Name, res.Document.Frame)
	}
	if res.CacheInfo != (CacheInfo{}) {
		t.Errorf("first run cache info = %+v", res.CacheInfo)
	}
	if svg := string(res.Artifacts[FormatSVG]); !strings.Contains(svg, ">north</text>") {
		t.Error("svg lacks row labels")
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"row_labels"`) {
		t.Error("json lacks row labels")
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if again.CacheInfo != (CacheInfo{LoadHit: true, SyncHit: true, RenderHit: true}) {
		t.Errorf("second run cache info = %+v", again.CacheInfo)
	}
	if string(again.Artifacts[FormatSVG]) != string(res.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	fresh, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo != (CacheInfo{}) {
		t.Errorf("refresh cache info = %+v", fresh.CacheInfo)
	}
}

func TestSyncIgnoresDocumentIdentity(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	ds := scene.Dataset{Series: []scene.Series{{Name: "a", Style: series.DefaultStyle(), Rows: [][]float64{{1, 2}}}}}
	opts := Options{Scene: scene.DefaultConfig()}

	first := NewDocument(ds, opts)
	first.ID = "one"
	if _, hit, err := r.SyncWithCacheInfo(ctx, first, opts); err != nil || hit {
		t.Fatalf("first sync hit = %v, err = %v", hit, err)
	}
	second := NewDocument(ds, opts)
	second.ID = "two"
	if _, hit, _ := r.SyncWithCacheInfo(ctx, second, opts); !hit {
		t.Error("same content should hit the frame cache")
	}

	second.Config.Params.FloorLevel = 1
	if _, hit, _ := r.SyncWithCacheInfo(ctx, second, opts); hit {
		t.Error("changed config should miss")
	}
}

func TestStylesAndSelection(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	ds := scene.Dataset{Series: []scene.Series{
		{Name: "a", Style: series.DefaultStyle(), Rows: [][]float64{{1, 2}}},
		{Name: "b", Style: series.DefaultStyle(), Rows: [][]float64{{3, 4}}},
	}}
	opts := Options{
		Scene:     scene.DefaultConfig(),
		Styles:    map[string]series.Style{"b": {BaseColor: "#ff0000"}},
		Selection: &scene.Selection{Series: "a", Row: 0, Col: 1},
	}

	d := NewDocument(ds, opts)
	if ds.Series[1].Style.BaseColor == "#ff0000" {
		t.Error("NewDocument modified the dataset")
	}
	f, err := r.Sync(ctx, d, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, ok := f.Bar("b", series.Position{Row: 0, Col: 0})
	if !ok || b.Color != "#ff0000" {
		t.Errorf("styled bar = %+v", b)
	}
	if f.Selection.Series != "a" || f.Selection.Coord != (series.Position{Row: 0, Col: 1}) {
		t.Errorf("selection = %+v", f.Selection)
	}
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	_, err := r.Load(ctx, Options{Input: filepath.Join(t.TempDir(), "missing.csv")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}

	bad := writeInput(t, "bad.csv", "1,x\n")
	_, err = r.Load(ctx, Options{Input: bad})
	if !errors.Is(err, errors.ErrCodeInvalidDataset) || !strings.Contains(err.Error(), "bad.csv") {
		t.Errorf("bad value error = %v", err)
	}
}

func TestRenderFormatUnknown(t *testing.T) {
	opts := Options{Scene: scene.DefaultConfig()}
	ds := scene.Dataset{Series: []scene.Series{{Name: "a", Style: series.DefaultStyle(), Rows: [][]float64{{1}}}}}
	f, err := NewRunner(nil, nil, nil).Sync(context.Background(), NewDocument(ds, opts), opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := RenderFormat(context.Background(), f, "gif", opts); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v", err)
	}
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
}

func (h *countingCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[keyType]++
}

func (h *countingCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses[keyType]++
}

func TestCacheHooks(t *testing.T) {
	hooks := &countingCacheHooks{hits: map[string]int{}, misses: map[string]int{}}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	r := newTestRunner(t)
	opts := Options{Input: writeInput(t, "a.csv", "1,2\n"), Scene: scene.DefaultConfig()}
	for i := 0; i < 2; i++ {
		if _, err := r.Execute(ctx, opts); err != nil {
			t.Fatal(err)
		}
	}

	for _, kt := range []string{cache.KeyTypeDataset, cache.KeyTypeFrame, cache.KeyTypeArtifact} {
		if hooks.misses[kt] != 1 || hooks.hits[kt] != 1 {
			t.Errorf("%s: hits %d misses %d, want 1 and 1", kt, hooks.hits[kt], hooks.misses[kt])
		}
	}
}

func importOpts(format, name string) (o dsio.Options) {
	o.Format = format
	o.Name = name
	return o
}
