// Package selection holds the selection state of a bar scene.
//
// A scene has exactly one selection: a (row, column) coordinate and the
// series it belongs to, or nothing. [Machine.SetSelectedBar] validates the
// coordinate against the data of the series and resolves anything that does
// not address an existing item to "no selection". It also drives the slice
// view through the [GraphHandle] of the owning scene.
//
// The selection [Mode] decides which bars are highlighted for a selection.
// [Machine.IsSelected] classifies a bar as the selected item, part of the
// selected row or column, or not selected at all:
//
//	m := selection.NewMachine(selection.ItemAndRow)
//	m.SetSelectedBar(graph, series.Position{Row: 2, Col: 3}, s, false)
//	m.IsSelected(2, 3, s) // KindItem
//	m.IsSelected(2, 0, s) // KindRow
//
// Data notifications keep the selection consistent: inserting rows before
// the selected row shifts it, removing the selected row clears it.
package selection
