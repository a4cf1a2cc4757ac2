package sink

import (
	"context"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/render"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG renders the frame as SVG and rasterizes it with rsvg-convert.
func RenderPNG(ctx context.Context, f bars.Frame, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	return render.ToPNG(ctx, RenderSVG(f, r.svgOpts...), r.scale)
}

// RenderPDF renders the frame as SVG and converts it with rsvg-convert.
func RenderPDF(ctx context.Context, f bars.Frame, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(f, opts...))
}
