package sink

import (
	"encoding/json"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/core/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	name        string
	compact     bool
	visibleOnly bool
}

// WithJSONName records the scene name in the output.
func WithJSONName(name string) JSONOption { return func(r *jsonRenderer) { r.name = name } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONVisibleOnly leaves hidden series and zero-height bars out of the
// output. Bar indices then no longer match the instance indices used by
// [bars.Graph.Pick].
func WithJSONVisibleOnly() JSONOption { return func(r *jsonRenderer) { r.visibleOnly = true } }

type jsonOutput struct {
	Name string `json:"name,omitempty"`
	bars.Frame
}

// RenderJSON encodes a frame. The output carries every field of
// [bars.Frame] plus an optional scene name.
func RenderJSON(f bars.Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	if r.visibleOnly {
		f = visibleFrame(f)
	}
	out := jsonOutput{Name: r.name, Frame: f}
	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}

func visibleFrame(f bars.Frame) bars.Frame {
	series := make([]bars.SeriesFrame, 0, len(f.Series))
	for _, s := range f.Series {
		if !s.Visible {
			continue
		}
		kept := make([]layout.BarInstance, 0, len(s.Bars))
		for _, b := range s.Bars {
			if b.Pickable {
				kept = append(kept, b)
			}
		}
		s.Bars = kept
		series = append(series, s)
	}
	f.Series = series
	return f
}
