// Package render converts rendered SVG into other output formats.
//
// Diagrams themselves are produced by the [nodelink] subpackage, which turns
// a products graph into Graphviz DOT and SVG. [ToPDF] and [ToPNG] convert
// that SVG with the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/beltflow/pkg/render/nodelink
package render
