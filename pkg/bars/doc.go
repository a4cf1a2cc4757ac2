// Package bars assembles the core engine into a bar scene.
//
// A [Graph] owns the axes, the layout parameters, the selection and the
// per-series instance caches of one scene. Series are attached with
// [Graph.AddSeries]; from then on every mutation of their backing array is
// reported to the graph, which records what changed and, where needed,
// fits the auto-adjusting axes and shifts or clears the selection.
//
// # Update cycle
//
// Nothing is recomputed eagerly. [Graph.Sync] runs one cycle in a fixed
// order:
//
//  1. Scene scale, when spacing, thickness, margins, the data window or the
//     series list changed
//  2. Normalization and layout, rebuilding series whose bar set changed and
//     refreshing the geometry of the others
//  3. Selection highlights
//  4. The slice view, when slicing is active
//
// and returns an immutable [Frame] for the renderer.
//
// # Picking
//
// A picking collaborator reports hits against the latest frame.
// [Graph.Pick] maps a (series, instance index) hit back to a data
// coordinate and selects it, [Graph.PickBackground] clears the selection
// and [Graph.PickAxisLabel] selects a whole row or column from a label.
//
// # Errors
//
// Invalid configuration is rejected with a warning on the graph's logger
// and leaves the previous value in place; the setter also returns the error.
// Out-of-bounds selections silently resolve to "no selection".
package bars
