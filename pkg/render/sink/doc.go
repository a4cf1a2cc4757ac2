// Package sink writes synchronized bar frames to output formats.
//
// # Formats
//
//   - [RenderJSON]: the full [bars.Frame], optionally named and compacted
//   - [RenderSVG]: an isometric drawing of the scene
//   - [RenderPNG], [RenderPDF]: the SVG converted with rsvg-convert
//
// # SVG
//
// The scene is drawn in isometric projection with world x running down to
// the right, z down to the left and y up. Every visible bar becomes a group
// of three shaded faces carrying data-series, data-row, data-col and
// data-value attributes, so a browser can map a click back to
// [bars.Graph.Pick] arguments:
//
//	svg := sink.RenderSVG(frame, sink.WithFloor(), sink.WithLabels())
//
// The selected bar gets the "selected" class. With [WithSlicePanel] and an
// active slice, the slice view is drawn as a flat chart below the scene.
package sink
