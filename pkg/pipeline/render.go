package pipeline

import (
	"context"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/errors"
	"github.com/matzehuels/barscene/pkg/render/sink"
)

// RenderFormat renders one output format of a frame without caching.
func RenderFormat(ctx context.Context, f bars.Frame, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		jsonOpts := []sink.JSONOption{sink.WithJSONName(opts.Title)}
		if opts.Compact {
			jsonOpts = append(jsonOpts, sink.WithJSONCompact())
		}
		return sink.RenderJSON(f, jsonOpts...)
	case FormatSVG:
		return sink.RenderSVG(f, opts.SVGOptions()...), nil
	case FormatPNG:
		return sink.RenderPNG(ctx, f,
			sink.WithPNGSVGOptions(opts.SVGOptions()...),
			sink.WithScale(opts.PNGScale))
	case FormatPDF:
		return sink.RenderPDF(ctx, f, opts.SVGOptions()...)
	}
	return nil, errors.ValidateFormat(format, Formats...)
}
