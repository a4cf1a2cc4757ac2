// Package pkg provides the libraries behind barscene, a 3D bar chart scene
// model.
//
// # Overview
//
// A scene holds one or more named series of values laid out on a row and
// column grid. Every value becomes a bar instance with a position, a scale
// and a color, ready for a renderer to draw. On top of the geometry sits a
// selection model: picking a bar highlights it, its row or column, and can
// open a slice view of one row or column across every series.
//
// The pkg directory is organized into four areas:
//
//  1. [core] - Building blocks: series data, axes, scaling, layout,
//     selection and slicing
//  2. [bars] - The scene graph that ties them together and emits frames
//  3. [scene], [io] - Serializable documents and dataset import/export
//  4. [pipeline], [cache], [store] - Load, sync and render with caching
//     and persistence
//
// # Architecture
//
// The typical data flow:
//
//	CSV / TOML / JSON / XLSX
//	         ↓
//	    [io] package (import a dataset)
//	         ↓
//	    [scene] package (document + config → graph)
//	         ↓
//	    [bars] package (sync → frame)
//	         ↓
//	    [render/sink] package (SVG/PNG/PDF/JSON output)
//
// # Quick Start
//
//	ds, err := io.Import("sales.csv", io.Options{Header: true, RowLabels: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d := scene.New("sales", ds, scene.DefaultConfig())
//	g, err := d.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g.SetSelectedBar(series.Position{Row: 0, Col: 1}, g.SeriesByName("sales"), false)
//	f := g.Sync(ctx)
//	svg := sink.RenderSVG(f, sink.WithLabels())
//
// # Main Packages
//
// ## Core
//
// [core/series] - Ragged value arrays with labels and per-series styles.
//
// [core/axis] - Row and column category axes and the value axis with its
// auto-adjusted or fixed range.
//
// [core/scale] - Scene parameters (thickness, spacing, margins) and the
// scale derived from them and the data window.
//
// [core/normalize] - Maps values to bar heights relative to the floor.
//
// [core/layout] - Builds bar instances and caches them per series.
//
// [core/selection] - Selection modes and the selection state machine.
//
// [core/slice] - The slice view of one row or column.
//
// [core/change] - Dirty flags and the rebuild tracker used by sync.
//
// ## Scene
//
// [bars] - The graph: series, axes, parameters and selection, synced into
// frames. Listeners receive change notifications.
//
// [scene] - Documents that store a dataset, a config, a selection and the
// last frame.
//
// [io] - Dataset readers and writers.
//
// ## Infrastructure
//
// [pipeline] - Load → sync → render, used by the CLI and the server.
//
// [cache] - Content-addressed caches (null, file, redis) for datasets,
// frames and artifacts.
//
// [store] - Scene document stores (memory, file, mongo).
//
// [render] - SVG to PNG and PDF conversion.
//
// [render/sink] - Frame output as SVG, JSON, PNG and PDF.
//
// [observability] - Hooks for pipeline, graph, cache and HTTP events.
//
// [errors] - Error codes shared by every package.
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/bars/...      # Specific package
//	go test -run Example        # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/core
// [core/series]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/core/series
// [core/axis]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/core/axis
// [core/scale]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/core/scale
// [core/normalize]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/core/normalize
// [core/layout]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/core/layout
// [core/selection]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/core/selection
// [core/slice]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/core/slice
// [core/change]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/core/change
// [bars]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/bars
// [scene]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/scene
// [io]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/store
// [render]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/render/sink
// [observability]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/barscene/pkg/errors
package pkg
