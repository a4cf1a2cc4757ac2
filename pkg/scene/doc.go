// Package scene provides the serialization types for bar scenes.
//
// This package defines the wire format used for dataset files, API
// payloads, cached results and stored scenes.
//
// # Core Types
//
//   - [Dataset], [Series]: named series of row-major values
//   - [Config]: layout parameters, selection mode and axis windows
//   - [Selection]: a stored selection
//   - [Document]: all of the above plus identity, timestamps and
//     optionally the last synchronized frame
//
// # Converting Between Types
//
//	ds := scene.FromSeries(g.Series())      // live series → Dataset
//	list, err := ds.ToSeries()              // Dataset → live series
//	g, err := doc.Build(bars.WithLogger(l)) // Document → *bars.Graph
//	doc = scene.Capture(doc, g)             // *bars.Graph → Document
//
// # Document Format
//
//	{
//	  "id": "4c1f…",
//	  "version": 1,
//	  "dataset": {"series": [{"name": "sales", "rows": [[1, 2], [3, 4]]}]},
//	  "config": {"mode": "item|row", "params": {"thickness_ratio": 1, …}},
//	  "selection": {"series": "sales", "row": 1, "col": 0}
//	}
//
// Every type carries json and bson tags; [Document.ID] maps to the Mongo
// _id field.
package scene
