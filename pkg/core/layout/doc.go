// Package layout places bars in world space.
//
// # Overview
//
// For every visible series, [Build] walks the items inside the current data
// [Window] and produces one [BarInstance] per item. Each instance carries
// everything a renderer needs: position, scale, rotation, color and whether
// the bar can be picked.
//
// # Placement
//
// Cells are laid out on a grid whose pitch is the bar spacing from
// [scale.BarSpecs]. Within a cell, several visible series sit side by side:
// [SeriesOffsets] splits the cell into equal steps, shrinks each step by the
// series margin and centres the group. Hidden series do not take a slot.
//
// The vertical position is the normalized height from [normalize] minus the
// background adjustment, lifted by a small gap away from the floor plane.
// Bars below the floor are flipped 180 degrees about the X axis; per-item
// rotations are applied about the vertical axis.
//
// Bars whose height is zero are collapsed to a zero scale and marked
// non-pickable, so they never intercept picks meant for the floor.
//
// # Caching
//
// A [Cache] keeps the published instance list of each series behind an
// atomic double buffer. [Cache.Rebuild] regenerates a list, [Cache.Refresh]
// recomputes geometry in place when the set of bars is unchanged, and
// [Cache.Resolve] maps a pick (series, instance index) back to the data
// coordinate.
//
// [scale.BarSpecs]: github.com/matzehuels/barscene/pkg/core/scale
// [normalize]: github.com/matzehuels/barscene/pkg/core/normalize
package layout
