// Package render holds helpers shared by the output sinks.
//
// [ToPDF] and [ToPNG] convert an SVG document with the external
// rsvg-convert tool from librsvg. [Available] reports whether the tool is
// installed, which callers use to skip raster output in tests and to fail
// early in the CLI.
//
// The sinks themselves live in the [sink] subpackage.
//
// [sink]: github.com/matzehuels/barscene/pkg/render/sink
package render
