package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barscene/pkg/core/layout"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
	"github.com/matzehuels/barscene/pkg/pipeline"
)

const testConfig = `
formats = ["png", "json"]
unit = 80.0
labels = true

[import]
header = true

[scene]
mode = "item|row"

[scene.params]
thickness_ratio = 2.0
spacing = { width = 0.5, height = 0.5 }
`

func parseSceneFlags(t *testing.T, args ...string) (pipeline.Options, error) {
	t.Helper()
	f := newSceneFlags()
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd.Flags())
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatal(err)
	}
	return f.resolve(cmd, "data.csv")
}

func TestSceneFlagsDefaults(t *testing.T) {
	opts, err := parseSceneFlags(t)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Input != "data.csv" {
		t.Errorf("input = %q", opts.Input)
	}
	if !reflect.DeepEqual(opts.Formats, []string{pipeline.FormatSVG}) || opts.Unit != pipeline.DefaultUnit {
		t.Errorf("render defaults = %v unit %v", opts.Formats, opts.Unit)
	}
	if opts.Scene.Mode != selection.DefaultMode || opts.Scene.Params.ThicknessRatio <= 0 {
		t.Errorf("scene defaults = %+v", opts.Scene)
	}
	if opts.Scene.ValueRange != nil || opts.Scene.RowRange != nil || opts.Scene.ColumnRange != nil {
		t.Error("ranges set without flags")
	}
}

func TestSceneFlagsRanges(t *testing.T) {
	opts, err := parseSceneFlags(t, "--value-max", "10", "--col-min", "1", "--col-max", "3", "--mode", "item+column")
	if err != nil {
		t.Fatal(err)
	}
	if r := opts.Scene.ValueRange; r == nil || r.Min != 0 || r.Max != 10 {
		t.Errorf("value range = %+v", r)
	}
	if r := opts.Scene.ColumnRange; r == nil || r.Min != 1 || r.Max != 3 {
		t.Errorf("column range = %+v", r)
	}
	if opts.Scene.RowRange != nil {
		t.Errorf("row range = %+v", opts.Scene.RowRange)
	}
	if opts.Scene.Mode != selection.ItemAndColumn {
		t.Errorf("mode = %s", opts.Scene.Mode)
	}
}

func TestConfigFilePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barscene.toml")
	if err := os.WriteFile(path, []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}

	opts, err := parseSceneFlags(t, "--config", path, "--unit", "200", "-f", "svg", "--mode", "item")
	if err != nil {
		t.Fatal(err)
	}

	// From the file.
	if !opts.Labels || !opts.Import.Header {
		t.Errorf("labels %v header %v, want both from config", opts.Labels, opts.Import.Header)
	}
	if opts.Scene.Params.ThicknessRatio != 2 || opts.Scene.Params.Spacing.Width != 0.5 {
		t.Errorf("params = %+v", opts.Scene.Params)
	}
	// Flags win.
	if opts.Unit != 200 {
		t.Errorf("unit = %v, want flag value 200", opts.Unit)
	}
	if !reflect.DeepEqual(opts.Formats, []string{"svg"}) {
		t.Errorf("formats = %v, want flag value", opts.Formats)
	}
	if opts.Scene.Mode != selection.Item {
		t.Errorf("mode = %s, want flag value item", opts.Scene.Mode)
	}
}

func TestConfigFileErrors(t *testing.T) {
	if _, err := parseSceneFlags(t, "--config", filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing config file accepted")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("[scene]\nmode = \"diagonal\"\n"), 0644)
	if _, err := parseSceneFlags(t, "--config", path); err == nil || !strings.Contains(err.Error(), "diagonal") {
		t.Errorf("bad mode error = %v", err)
	}
}

func TestModeValue(t *testing.T) {
	m := selection.Item
	v := &modeValue{&m}
	if err := v.Set("item,row,slice"); err != nil {
		t.Fatal(err)
	}
	if m != selection.ItemRowSlice || v.String() != "item|row|slice" {
		t.Errorf("mode = %s", v.String())
	}
	if err := v.Set("everything"); err == nil {
		t.Error("unknown flag accepted")
	}
	if (&modeValue{}).String() != selection.DefaultMode.String() {
		t.Error("zero modeValue should print the default mode")
	}
}

func TestSliceMode(t *testing.T) {
	tests := []struct {
		orientation string
		multi       bool
		want        selection.Mode
		wantErr     bool
	}{
		{"row", false, selection.ItemRowSlice, false},
		{"column", false, selection.ItemColumnSlice, false},
		{"column", true, selection.ItemColumnSlice | selection.MultiSeries, false},
		{"diagonal", false, selection.None, true},
	}
	for _, tt := range tests {
		got, err := sliceMode(tt.orientation, tt.multi)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("sliceMode(%q, %v) = %s, %v", tt.orientation, tt.multi, got, err)
		}
		if err == nil && got.Validate() != nil {
			t.Errorf("sliceMode(%q) is not a valid mode", tt.orientation)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "data/sales.csv", "data/sales"},
		{"", "noext", "noext"},
		{"out/chart.svg", "sales.csv", "out/chart"},
		{"out/chart.PNG", "sales.csv", "out/chart"},
		{"out/chart.v2", "sales.csv", "out/chart.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "scene")
	paths, err := writeArtifacts(base, []string{"svg", "json"}, map[string][]byte{
		"svg":  []byte("<svg/>"),
		"json": []byte("{}"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{base + ".svg", base + ".json"}; !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	if data, _ := os.ReadFile(base + ".svg"); string(data) != "<svg/>" {
		t.Errorf("svg = %q", data)
	}
}

func TestCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{"default", "", filepath.Join(home, ".cache", appName)},
		{"xdg", "/tmp/custom-cache", filepath.Join("/tmp/custom-cache", appName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			got, err := cacheDir()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("cacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBarTable(t *testing.T) {
	bars := []layout.BarInstance{
		{Series: "sales", Coord: series.Position{Row: 0, Col: 1}, Value: 4.5, Height: 0.45, Highlight: selection.KindItem},
		{Series: "sales", Coord: series.Position{Row: 0, Col: 2}, Value: 7, Height: 0.7, Highlight: selection.KindRow},
	}
	out := barTable(bars)
	for _, want := range []string{"Series", "Highlight", "sales", "4.5", "0.700", "item", "row"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
